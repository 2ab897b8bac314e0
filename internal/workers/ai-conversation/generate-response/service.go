package generateresponse

import (
	"context"
	"fmt"
	"strings"

	"lead-automation/internal/clientconfig"
	"lead-automation/internal/common/completion"
	apperrors "lead-automation/internal/common/errors"
	"lead-automation/internal/common/logger"
)

const fallbackConversationPrompt = "You help qualify leads and provide excellent customer service."

type Completer interface {
	Complete(ctx context.Context, messages []completion.Message, opts completion.Options) (string, error)
}

type Service struct {
	completer Completer
	opts      completion.Options
	logger    logger.Logger
}

func NewService(completer Completer, opts completion.Options, log logger.Logger) *Service {
	return &Service{
		completer: completer,
		opts:      opts,
		logger:    log.WithFields(map[string]interface{}{"component": TaskType}),
	}
}

// Respond continues the conversation as the tenant's assistant.
func (s *Service) Respond(ctx context.Context, cfg clientconfig.ClientConfig, conversation []completion.Message, lead LeadContext) (string, error) {
	if len(conversation) == 0 {
		return "", apperrors.NewValidationError("conversation is empty", "at least one message is required")
	}

	messages := make([]completion.Message, 0, len(conversation)+1)
	messages = append(messages, completion.Message{Role: completion.RoleSystem, Content: SystemPrompt(cfg, lead)})
	for i, msg := range conversation {
		if msg.Role != completion.RoleUser && msg.Role != completion.RoleAssistant {
			return "", apperrors.NewValidationError("invalid message role", fmt.Sprintf("messages[%d].role: %q", i, msg.Role))
		}
		messages = append(messages, msg)
	}

	reply, err := s.completer.Complete(ctx, messages, s.opts)
	if err != nil {
		s.logger.Warn("conversation completion failed", map[string]interface{}{
			"errorCode": string(apperrors.CodeOf(err)),
			"error":     err.Error(),
		})
		return "", err
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", apperrors.NewParseError("completion", "empty reply")
	}
	return reply, nil
}

// SystemPrompt frames the assistant with the tenant's branding and what is known about the lead.
func SystemPrompt(cfg clientconfig.ClientConfig, lead LeadContext) string {
	branding := cfg.BrandingOrDefault()
	prompt := cfg.Prompts().Conversation
	if strings.TrimSpace(prompt) == "" {
		prompt = fallbackConversationPrompt
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are an AI assistant for %s (%s).\n", branding.AppName, cfg.CompanyName)
	b.WriteString(prompt)
	b.WriteString("\n\nLead Context:\n")
	fmt.Fprintf(&b, "- Name: %s\n", orDefault(lead.Name, "Prospect"))
	fmt.Fprintf(&b, "- Interest: %s\n", orDefault(lead.Interest, "General inquiry"))
	fmt.Fprintf(&b, "- Budget: %s\n", orDefault(lead.Budget, "Not specified"))
	b.WriteString("\nBe professional, helpful, and focus on understanding their needs.\n")
	b.WriteString("Keep responses concise and ask qualifying questions when appropriate.")
	return b.String()
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
