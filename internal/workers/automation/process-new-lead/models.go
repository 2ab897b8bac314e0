package processnewlead

import (
	"time"

	"lead-automation/internal/common/email"
	"lead-automation/internal/common/sms"
	"lead-automation/internal/models"
)

type Input struct {
	Lead models.Lead `json:"lead"`
}

// Step names as they appear in outcome error strings.
const (
	StepStore         = "Store"
	StepQualification = "AI qualification"
	StepWebhook       = "Webhook"
	StepEmail         = "Email"
	StepSMS           = "SMS"
)

// Score thresholds for follow-up planning.
const (
	hotLeadScore  = 8
	warmLeadScore = 6
)

// FollowUpPlan is one deferred message derived from the qualification score.
type FollowUpPlan struct {
	Channel    string
	TemplateID string
	Delay      time.Duration
}

// PlanFollowUps maps a score to the follow-ups it warrants: hot leads get an
// email and an SMS after two hours, warm leads an email after a day, and
// everyone else a nurture email after three days.
func PlanFollowUps(score int) []FollowUpPlan {
	switch {
	case score >= hotLeadScore:
		return []FollowUpPlan{
			{Channel: models.ChannelEmail, TemplateID: email.TemplateFollowUp, Delay: 2 * time.Hour},
			{Channel: models.ChannelSMS, TemplateID: sms.TemplateFollowUp, Delay: 120 * time.Minute},
		}
	case score >= warmLeadScore:
		return []FollowUpPlan{
			{Channel: models.ChannelEmail, TemplateID: email.TemplateFollowUp, Delay: 24 * time.Hour},
		}
	default:
		return []FollowUpPlan{
			{Channel: models.ChannelEmail, TemplateID: email.TemplateNurture, Delay: 72 * time.Hour},
		}
	}
}
