package email

import (
	"context"
	"strings"

	apperrors "lead-automation/internal/common/errors"
	"lead-automation/internal/common/logger"
)

// Sender resolves templates and hands rendered messages to a Provider.
type Sender struct {
	provider  Provider
	fromName  string
	fromEmail string
	logger    logger.Logger
}

func NewSender(provider Provider, fromName, fromEmail string, log logger.Logger) *Sender {
	return &Sender{
		provider:  provider,
		fromName:  fromName,
		fromEmail: fromEmail,
		logger:    log.WithFields(map[string]interface{}{"component": "email", "provider": provider.Name()}),
	}
}

// Send renders templateID with vars and delivers it to `to`.
func (s *Sender) Send(ctx context.Context, to, templateID string, vars map[string]string) (string, error) {
	if strings.TrimSpace(to) == "" {
		return "", apperrors.NewValidationError("email recipient is required", "")
	}

	subject, html, err := Resolve(templateID, vars)
	if err != nil {
		return "", err
	}

	toName := vars["firstName"]
	if toName == "" {
		toName = "Valued Customer"
	}

	messageID, err := s.provider.Deliver(ctx, Envelope{
		FromName:  s.fromName,
		FromEmail: s.fromEmail,
		To:        to,
		ToName:    toName,
		Subject:   subject,
		HTML:      html,
	})
	if err != nil {
		s.logger.Warn("email delivery failed", map[string]interface{}{
			"templateId": templateID,
			"error":      err.Error(),
		})
		return "", err
	}

	s.logger.Info("email sent", map[string]interface{}{
		"templateId": templateID,
		"messageId":  messageID,
	})
	return messageID, nil
}

func (s *Sender) CheckConnectivity(ctx context.Context) error {
	return s.provider.CheckConnectivity(ctx)
}
