package clientconfig

// DefaultConfig returns a fresh copy of the built-in default configuration.
func DefaultConfig() ClientConfig {
	return ClientConfig{
		ClientID:       "demo",
		CompanyName:    "LeadGenius Pro",
		PrimaryColor:   "#2196F3",
		SecondaryColor: "#1976D2",
		AccentColor:    "#FF9800",
		Industry:       DefaultIndustry,
		Features: Features{
			AIChat:           true,
			Analytics:        true,
			Automation:       true,
			SMSIntegration:   true,
			EmailIntegration: true,
		},
		Branding: &Branding{
			AppName:      "LeadGenius Pro",
			Tagline:      "AI-Powered Lead Management",
			SupportEmail: "support@leadgeniuspro.com",
			SupportPhone: "+1 (555) 123-4567",
		},
	}
}

// industryTemplate holds the keys an industry overrides on top of the defaults.
type industryTemplate struct {
	id             string
	companyName    string
	primaryColor   string
	secondaryColor string
	accentColor    string
	branding       Branding
	prompts        AIPrompts
}

var industries = []industryTemplate{
	{
		id:             "realestate",
		companyName:    "RealEstate Pro",
		primaryColor:   "#4CAF50",
		secondaryColor: "#388E3C",
		accentColor:    "#FF5722",
		branding: Branding{
			AppName:      "RealEstate Pro",
			Tagline:      "Smart Real Estate Lead Management",
			SupportEmail: "support@realestatepro.com",
		},
		prompts: AIPrompts{
			Qualification: "You are a real estate lead qualification AI. Focus on buyer/seller intent, budget, timeline, and property preferences.",
			Conversation:  "You are a real estate assistant helping qualify property leads. Ask about budget, location preferences, timeline, and property type.",
		},
	},
	{
		id:             "legal",
		companyName:    "Legal Lead Manager",
		primaryColor:   "#3F51B5",
		secondaryColor: "#303F9F",
		accentColor:    "#FF9800",
		branding: Branding{
			AppName:      "Legal Lead Manager",
			Tagline:      "Professional Legal Lead Management",
			SupportEmail: "support@legalleadmanager.com",
		},
		prompts: AIPrompts{
			Qualification: "You are a legal lead qualification AI. Focus on case type, urgency, budget, and legal needs assessment.",
			Conversation:  "You are a legal intake assistant. Help qualify legal leads by understanding their case type, urgency, and legal needs.",
		},
	},
	{
		id:             "insurance",
		companyName:    "Insurance Tracker",
		primaryColor:   "#607D8B",
		secondaryColor: "#455A64",
		accentColor:    "#4CAF50",
		branding: Branding{
			AppName:      "Insurance Tracker",
			Tagline:      "Intelligent Insurance Lead Management",
			SupportEmail: "support@insurancetracker.com",
		},
		prompts: AIPrompts{
			Qualification: "You are an insurance lead qualification AI. Focus on coverage needs, current policies, budget, and risk assessment.",
			Conversation:  "You are an insurance advisor assistant. Help qualify insurance leads by understanding their coverage needs and current situation.",
		},
	},
	{
		id:             "healthcare",
		companyName:    "HealthLead Pro",
		primaryColor:   "#E91E63",
		secondaryColor: "#C2185B",
		accentColor:    "#00BCD4",
		branding: Branding{
			AppName:      "HealthLead Pro",
			Tagline:      "Healthcare Lead Management System",
			SupportEmail: "support@healthleadpro.com",
		},
		prompts: AIPrompts{
			Qualification: "You are a healthcare lead qualification AI. Focus on medical needs, insurance coverage, urgency, and service requirements.",
			Conversation:  "You are a healthcare intake assistant. Help qualify patient leads by understanding their medical needs and coverage.",
		},
	},
	{
		id:             "automotive",
		companyName:    "AutoLead Manager",
		primaryColor:   "#FF5722",
		secondaryColor: "#D84315",
		accentColor:    "#2196F3",
		branding: Branding{
			AppName:      "AutoLead Manager",
			Tagline:      "Drive More Sales with Smart Leads",
			SupportEmail: "support@autoleadmanager.com",
		},
		prompts: AIPrompts{
			Qualification: "You are an automotive lead qualification AI. Focus on vehicle preferences, budget, timeline, trade-in, and financing needs.",
			Conversation:  "You are an automotive sales assistant. Help qualify car buying leads by understanding their vehicle needs and budget.",
		},
	},
}

func findIndustry(id string) (industryTemplate, bool) {
	for _, t := range industries {
		if t.id == id {
			return t, true
		}
	}
	return industryTemplate{}, false
}

// IndustryConfig merges the industry's template over the defaults. Top-level
// keys are replaced whole, so an industry's branding replaces the default branding.
// Unknown industries yield the defaults.
func IndustryConfig(industry string) ClientConfig {
	cfg := DefaultConfig()
	t, ok := findIndustry(industry)
	if !ok {
		return cfg
	}

	branding := t.branding
	prompts := t.prompts

	cfg.CompanyName = t.companyName
	cfg.PrimaryColor = t.primaryColor
	cfg.SecondaryColor = t.secondaryColor
	cfg.AccentColor = t.accentColor
	cfg.Branding = &branding
	cfg.AIPrompts = &prompts
	cfg.Industry = t.id
	return cfg
}

// AvailableIndustries lists the built-in industries in a stable order.
func AvailableIndustries() []Industry {
	out := make([]Industry, 0, len(industries))
	for _, t := range industries {
		out = append(out, Industry{
			ID:     t.id,
			Name:   t.companyName,
			Config: IndustryConfig(t.id),
		})
	}
	return out
}
