// Package sms renders text templates and delivers them through Textbelt or SNS.
package sms

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
	TemplateReminder = "reminder"
	TemplateNurture  = "nurture"
	TemplateUrgent   = "urgent"
)

const defaultSupportPhone = "(555) 123-4567"

var placeholder = regexp.MustCompile(`\{\{([^{}]+)\}\}`)

var Templates = map[string]string{
	TemplateWelcome:  "Hi {{firstName}}! Thank you for your interest in {{brandName}}. Our team will contact you shortly to discuss your needs. Reply STOP to opt out.",
	TemplateFollowUp: "Hi {{firstName}}, this is a quick follow-up on your inquiry. Are you available for a brief call this week? Reply YES or NO.",
	TemplateReminder: "Hi {{firstName}}, just a friendly reminder about our scheduled call today at {{time}}. Looking forward to speaking with you!",
	TemplateNurture:  "Hi {{firstName}}! Did you know that AI automation can increase your lead conversion by 40%? Let's discuss how this can benefit your business.",
	TemplateUrgent:   "Hi {{firstName}}, we have an exclusive offer that expires soon. Would you like to learn more? Call us at {{supportPhone}}.",
}

// Render substitutes {{key}} placeholders in one pass; unknown keys stay verbatim.
func Render(text string, vars map[string]string) string {
	return placeholder.ReplaceAllStringFunc(text, func(match string) string {
		if v, ok := vars[match[2:len(match)-2]]; ok {
			return v
		}
		return match
	})
}

func Resolve(templateID string, vars map[string]string) (string, error) {
	tpl, ok := Templates[templateID]
	if !ok {
		return "", apperrors.NewTemplateNotFoundError("sms", templateID)
	}
	return Render(tpl, vars), nil
}

// Personalize derives template variables from a lead and the active branding.
func Personalize(lead models.Lead, brandName, supportPhone string) map[string]string {
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
	if supportPhone == "" {
		supportPhone = defaultSupportPhone
	}
	return map[string]string{
		"firstName":    firstName,
		"fullName":     fullName,
		"company":      company,
		"brandName":    brandName,
		"supportPhone": supportPhone,
	}
}
