// internal/models/outcome.go
package models

import "time"

// Follow-up channels.
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

// WorkflowOutcome aggregates one automation run.
type WorkflowOutcome struct {
	RunID            string               `json:"runId"`
	LeadID           string               `json:"leadId,omitempty"`
	Stored           bool                 `json:"stored"`
	Qualified        bool                 `json:"aiQualified"`
	WebhookTriggered bool                 `json:"webhookTriggered"`
	EmailSent        bool                 `json:"emailSent"`
	SMSSent          bool                 `json:"smsSent"`
	Errors           []string             `json:"errors"`
	Success          bool                 `json:"success"`
	Qualification    *QualificationResult `json:"qualification,omitempty"`
	FollowUps        []ScheduledFollowUp  `json:"followUps,omitempty"`
	StartedAt        time.Time            `json:"startedAt"`
	CompletedAt      time.Time            `json:"completedAt"`
}

// ScheduledFollowUp is one deferred message requested from the scheduler.
type ScheduledFollowUp struct {
	Channel    string        `json:"channel"`
	TemplateID string        `json:"templateId"`
	Delay      time.Duration `json:"delay"`
	RunAt      time.Time     `json:"runAt"`
}

// ToMap flattens the outcome for Zeebe job variables.
func (o *WorkflowOutcome) ToMap() map[string]interface{} {
	errs := make([]interface{}, 0, len(o.Errors))
	for _, e := range o.Errors {
		errs = append(errs, e)
	}
	followUps := make([]interface{}, 0, len(o.FollowUps))
	for _, f := range o.FollowUps {
		followUps = append(followUps, map[string]interface{}{
			"channel":    f.Channel,
			"templateId": f.TemplateID,
			"runAt":      f.RunAt.UTC().Format(time.RFC3339),
		})
	}

	out := map[string]interface{}{
		"runId":            o.RunID,
		"leadId":           o.LeadID,
		"stored":           o.Stored,
		"aiQualified":      o.Qualified,
		"webhookTriggered": o.WebhookTriggered,
		"emailSent":        o.EmailSent,
		"smsSent":          o.SMSSent,
		"errors":           errs,
		"success":          o.Success,
		"followUps":        followUps,
	}
	if o.Qualification != nil {
		out["leadScore"] = o.Qualification.Score
		out["qualification"] = o.Qualification.Qualification
		out["priority"] = o.Qualification.Priority
	}
	return out
}
