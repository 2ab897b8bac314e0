// Package clientconfig holds the per-tenant branding and prompt bundle and the
// provider that loads, switches and persists it.
package clientconfig

// ClientConfig is the branding and prompt bundle for one tenant.
type ClientConfig struct {
	ClientID       string     `json:"clientId"`
	CompanyName    string     `json:"companyName"`
	LogoURL        *string    `json:"logoUrl"`
	PrimaryColor   string     `json:"primaryColor"`
	SecondaryColor string     `json:"secondaryColor"`
	AccentColor    string     `json:"accentColor"`
	Industry       string     `json:"industry"`
	Features       Features   `json:"features"`
	Branding       *Branding  `json:"branding,omitempty"`
	AIPrompts      *AIPrompts `json:"aiPrompts,omitempty"`
}

type Features struct {
	AIChat           bool `json:"aiChat"`
	Analytics        bool `json:"analytics"`
	Automation       bool `json:"automation"`
	SMSIntegration   bool `json:"smsIntegration"`
	EmailIntegration bool `json:"emailIntegration"`
}

type Branding struct {
	AppName      string `json:"appName"`
	Tagline      string `json:"tagline"`
	SupportEmail string `json:"supportEmail"`
	SupportPhone string `json:"supportPhone,omitempty"`
}

type AIPrompts struct {
	Qualification string `json:"qualification"`
	Conversation  string `json:"conversation"`
}

// Theme is the color token triple.
type Theme struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Accent    string `json:"accent"`
}

// Industry describes one built-in template.
type Industry struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	Config ClientConfig `json:"config"`
}

const (
	DefaultIndustry = "general"

	defaultQualificationPrompt = "You are a professional lead qualification assistant."
	defaultConversationPrompt  = "You are a helpful assistant for lead management."
)

// Prompts returns the configured prompts, or the generic pair when none are set.
func (c ClientConfig) Prompts() AIPrompts {
	if c.AIPrompts == nil {
		return AIPrompts{
			Qualification: defaultQualificationPrompt,
			Conversation:  defaultConversationPrompt,
		}
	}
	return *c.AIPrompts
}

func (c ClientConfig) Theme() Theme {
	return Theme{
		Primary:   c.PrimaryColor,
		Secondary: c.SecondaryColor,
		Accent:    c.AccentColor,
	}
}

// BrandingOrDefault returns the configured branding, or the default branding when unset.
func (c ClientConfig) BrandingOrDefault() Branding {
	if c.Branding == nil {
		return *DefaultConfig().Branding
	}
	return *c.Branding
}
