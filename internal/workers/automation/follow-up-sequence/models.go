package followupsequence

import (
	"lead-automation/internal/common/email"
	"lead-automation/internal/models"
)

// DefaultSequence is used when the caller names none.
const DefaultSequence = email.TemplateFollowUp

type Input struct {
	Lead         models.Lead `json:"lead"`
	SequenceType string      `json:"sequenceType,omitempty"`
}

// Result reports which channels a sequence reached.
type Result struct {
	SequenceType     string   `json:"sequenceType"`
	EmailSent        bool     `json:"emailSent"`
	SMSSent          bool     `json:"smsSent"`
	WebhookTriggered bool     `json:"webhookTriggered"`
	Errors           []string `json:"errors"`
	Success          bool     `json:"success"`
	Message          string   `json:"message"`
}

// sequenceEvent is the email_sequence webhook body.
type sequenceEvent struct {
	SequenceType string      `json:"sequenceType"`
	Lead         models.Lead `json:"lead"`
}
