// Package email renders lead templates and delivers them through a pluggable provider.
package email

import (
	"regexp"
	"strings"

	apperrors "lead-automation/internal/common/errors"
	"lead-automation/internal/models"
)

// Template ids.
const (
	TemplateWelcome  = "welcome"
	TemplateFollowUp = "followUp"
	TemplateNurture  = "nurture"
)

type Template struct {
	Subject string
	HTML    string
}

var placeholder = regexp.MustCompile(`\{\{([^{}]+)\}\}`)

// Templates is the built-in catalogue keyed by template id.
var Templates = map[string]Template{
	TemplateWelcome: {
		Subject: "Welcome to {{brandName}}!",
		HTML: `<h2>Welcome {{firstName}}!</h2>
<p>Thank you for your interest in our services. We're excited to help you achieve your goals.</p>
<p>Our team will be in touch with you shortly to discuss your needs in detail.</p>
<p>Best regards,<br>The {{brandName}} Team</p>`,
	},
	TemplateFollowUp: {
		Subject: "Following up on your inquiry",
		HTML: `<h2>Hi {{firstName}},</h2>
<p>I wanted to follow up on your recent inquiry about our services.</p>
<p>Based on your information, I believe we can help you with:</p>
<ul>
  <li>Automated lead generation</li>
  <li>AI-powered lead qualification</li>
  <li>Streamlined follow-up processes</li>
</ul>
<p>Would you like to schedule a quick 15-minute call to discuss your specific needs?</p>
<p>Best regards,<br>Your {{brandName}} Representative</p>`,
	},
	TemplateNurture: {
		Subject: "Exclusive insights for {{firstName}}",
		HTML: `<h2>Hi {{firstName}},</h2>
<p>I hope this email finds you well. I wanted to share some valuable insights that might interest you:</p>
<h3>Latest Industry Trends:</h3>
<ul>
  <li>AI automation is increasing lead conversion by 40%</li>
  <li>Personalized follow-ups improve response rates by 65%</li>
  <li>Real-time lead scoring helps prioritize high-value prospects</li>
</ul>
<p>If you'd like to learn how these trends can benefit your business, I'd be happy to share more details.</p>
<p>Best regards,<br>Your {{brandName}} Team</p>`,
	},
}

// Render replaces each {{key}} with vars[key] in a single pass. Placeholders
// without a value are kept verbatim and substituted values are never re-scanned.
func Render(text string, vars map[string]string) string {
	return placeholder.ReplaceAllStringFunc(text, func(match string) string {
		key := match[2 : len(match)-2]
		if v, ok := vars[key]; ok {
			return v
		}
		return match
	})
}

// Resolve renders the subject and body of a built-in template.
func Resolve(templateID string, vars map[string]string) (subject, html string, err error) {
	tpl, ok := Templates[templateID]
	if !ok {
		return "", "", apperrors.NewTemplateNotFoundError("email", templateID)
	}
	return Render(tpl.Subject, vars), Render(tpl.HTML, vars), nil
}

// Personalize derives template variables from a lead and the active brand name.
func Personalize(lead models.Lead, brandName string) map[string]string {
	firstName := lead.FirstName()
	if firstName == "" {
		firstName = "there"
	}
	fullName := strings.TrimSpace(lead.Name)
	if fullName == "" {
		fullName = "Valued Customer"
	}
	company := lead.Company
	if company == "" {
		company = "your company"
	}
	return map[string]string{
		"firstName": firstName,
		"fullName":  fullName,
		"email":     lead.Email,
		"company":   company,
		"brandName": brandName,
	}
}
