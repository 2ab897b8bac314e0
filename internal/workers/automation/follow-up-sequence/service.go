package followupsequence

import (
	"context"
	"fmt"
	"strings"

	"lead-automation/internal/clientconfig"
	"lead-automation/internal/common/email"
	apperrors "lead-automation/internal/common/errors"
	"lead-automation/internal/common/logger"
	"lead-automation/internal/common/metrics"
	"lead-automation/internal/common/scheduler"
	"lead-automation/internal/common/sms"
	"lead-automation/internal/common/webhook"
	"lead-automation/internal/models"
)

type Dispatcher interface {
	Post(ctx context.Context, eventType string, payload interface{}) (*webhook.Ack, error)
}

type Sender interface {
	Send(ctx context.Context, to, templateID string, vars map[string]string) (string, error)
}

type ConfigSource interface {
	Current() clientconfig.ClientConfig
}

type ServiceDependencies struct {
	Email    Sender
	SMS      Sender
	Webhooks Dispatcher
	Configs  ConfigSource
	Logger   logger.Logger
}

type Service struct {
	deps   ServiceDependencies
	logger logger.Logger
}

func NewService(deps ServiceDependencies) *Service {
	return &Service{
		deps:   deps,
		logger: deps.Logger.WithFields(map[string]interface{}{"component": TaskType}),
	}
}

// Trigger sends the sequence template by email, by SMS when the lead has a
// phone, and announces it on the email_sequence webhook. Each channel is
// attempted regardless of the others; success means none of them failed.
func (s *Service) Trigger(ctx context.Context, lead models.Lead, sequenceType string) *Result {
	if strings.TrimSpace(sequenceType) == "" {
		sequenceType = DefaultSequence
	}
	branding := s.deps.Configs.Current().BrandingOrDefault()

	result := &Result{SequenceType: sequenceType, Errors: []string{}}

	if _, err := s.deps.Email.Send(ctx, lead.Email, sequenceType, email.Personalize(lead, branding.AppName)); err != nil {
		result.Errors = append(result.Errors, "Email: "+apperrors.Describe(err))
		metrics.MessagesSent.WithLabelValues(models.ChannelEmail, metrics.StatusFailed).Inc()
	} else {
		result.EmailSent = true
		metrics.MessagesSent.WithLabelValues(models.ChannelEmail, metrics.StatusOK).Inc()
	}

	if lead.Phone != "" {
		vars := sms.Personalize(lead, branding.AppName, branding.SupportPhone)
		if _, err := s.deps.SMS.Send(ctx, lead.Phone, sequenceType, vars); err != nil {
			result.Errors = append(result.Errors, "SMS: "+apperrors.Describe(err))
			metrics.MessagesSent.WithLabelValues(models.ChannelSMS, metrics.StatusFailed).Inc()
		} else {
			result.SMSSent = true
			metrics.MessagesSent.WithLabelValues(models.ChannelSMS, metrics.StatusOK).Inc()
		}
	}

	event := sequenceEvent{SequenceType: sequenceType, Lead: lead}
	if _, err := s.deps.Webhooks.Post(ctx, webhook.EventEmailSequence, event); err != nil {
		result.Errors = append(result.Errors, "Webhook: "+apperrors.Describe(err))
	} else {
		result.WebhookTriggered = true
	}

	result.Success = len(result.Errors) == 0
	result.Message = fmt.Sprintf("%s sequence triggered", sequenceType)

	s.logger.Info("follow-up sequence triggered", map[string]interface{}{
		"sequenceType": sequenceType,
		"success":      result.Success,
		"errors":       len(result.Errors),
	})
	return result
}

// Deliver sends one scheduled follow-up on its channel.
func (s *Service) Deliver(ctx context.Context, payload scheduler.FollowUpPayload) error {
	branding := s.deps.Configs.Current().BrandingOrDefault()
	lead := payload.Lead

	var err error
	switch payload.Channel {
	case models.ChannelEmail:
		_, err = s.deps.Email.Send(ctx, lead.Email, payload.TemplateID, email.Personalize(lead, branding.AppName))
	case models.ChannelSMS:
		vars := sms.Personalize(lead, branding.AppName, branding.SupportPhone)
		_, err = s.deps.SMS.Send(ctx, lead.Phone, payload.TemplateID, vars)
	default:
		return apperrors.NewValidationError("unknown follow-up channel", payload.Channel)
	}

	if err != nil {
		metrics.MessagesSent.WithLabelValues(payload.Channel, metrics.StatusFailed).Inc()
		return err
	}
	metrics.MessagesSent.WithLabelValues(payload.Channel, metrics.StatusOK).Inc()

	s.logger.Info("follow-up delivered", map[string]interface{}{
		"runId":      payload.RunID,
		"leadId":     payload.LeadID,
		"channel":    payload.Channel,
		"templateId": payload.TemplateID,
	})
	return nil
}
