package sms

import (
	"context"

	apperrors "lead-automation/internal/common/errors"
	"lead-automation/internal/common/logger"
	"lead-automation/internal/common/validation"
)

// Sender resolves templates, normalizes the number and hands off to a Provider.
type Sender struct {
	provider Provider
	logger   logger.Logger
}

func NewSender(provider Provider, log logger.Logger) *Sender {
	return &Sender{
		provider: provider,
		logger:   log.WithFields(map[string]interface{}{"component": "sms", "provider": provider.Name()}),
	}
}

func (s *Sender) Send(ctx context.Context, phone, templateID string, vars map[string]string) (string, error) {
	normalized := validation.NormalizePhone(phone)
	if normalized == "" || normalized == "+" {
		return "", apperrors.NewValidationError("phone number is required", "")
	}

	message, err := Resolve(templateID, vars)
	if err != nil {
		return "", err
	}

	messageID, err := s.provider.Deliver(ctx, normalized, message)
	if err != nil {
		s.logger.Warn("sms delivery failed", map[string]interface{}{
			"templateId": templateID,
			"error":      err.Error(),
		})
		return "", err
	}

	s.logger.Info("sms sent", map[string]interface{}{
		"templateId": templateID,
		"messageId":  messageID,
	})
	return messageID, nil
}

func (s *Sender) CheckConnectivity(ctx context.Context) error {
	return s.provider.CheckConnectivity(ctx)
}
