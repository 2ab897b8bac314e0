// Package scheduler enqueues delayed follow-ups on asynq and runs the worker that fires them.
package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"

	"lead-automation/internal/models"
)

const TaskFollowUpDeliver = "lead.followup.deliver"

// FollowUpPayload carries everything needed to send one deferred message.
type FollowUpPayload struct {
	RunID      string      `json:"runId,omitempty"`
	LeadID     string      `json:"leadId,omitempty"`
	Channel    string      `json:"channel"`
	TemplateID string      `json:"templateId"`
	Lead       models.Lead `json:"lead"`
}

func NewFollowUpTask(payload FollowUpPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskFollowUpDeliver, data), nil
}

func ParseFollowUpPayload(task *asynq.Task) (FollowUpPayload, error) {
	var payload FollowUpPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return FollowUpPayload{}, err
	}
	return payload, nil
}
