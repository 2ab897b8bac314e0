package generateresponse

import "lead-automation/internal/common/completion"

// LeadContext is what the assistant knows about the prospect.
type LeadContext struct {
	Name     string `json:"name,omitempty"`
	Interest string `json:"interest,omitempty"`
	Budget   string `json:"budget,omitempty"`
}

type Input struct {
	Messages []completion.Message `json:"messages"`
	Lead     LeadContext          `json:"lead"`
}

type Output struct {
	Reply string `json:"reply"`
}
