package qualifylead

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"lead-automation/internal/clientconfig"
	"lead-automation/internal/common/completion"
	apperrors "lead-automation/internal/common/errors"
	"lead-automation/internal/common/logger"
	"lead-automation/internal/common/validation"
	"lead-automation/internal/models"
)

const (
	systemInstruction = "You are a professional lead qualification assistant. Always respond with valid JSON."
	fallbackPrompt    = "You are a professional lead qualification AI."
	parseService      = "qualification"
)

var schema = validation.MustCompileSchema(resultSchema)

// Completer is the chat-completion capability the service needs.
type Completer interface {
	Complete(ctx context.Context, messages []completion.Message, opts completion.Options) (string, error)
}

type Service struct {
	completer Completer
	options   completion.Options
	logger    logger.Logger
}

func NewService(completer Completer, opts completion.Options, log logger.Logger) *Service {
	return &Service{
		completer: completer,
		options:   opts,
		logger:    log.WithFields(map[string]interface{}{"component": TaskType}),
	}
}

// Qualify scores lead using the qualification prompt from cfg.
func (s *Service) Qualify(ctx context.Context, cfg clientconfig.ClientConfig, lead models.Lead) (*models.QualificationResult, error) {
	messages := []completion.Message{
		{Role: completion.RoleSystem, Content: systemInstruction},
		{Role: completion.RoleUser, Content: BuildPrompt(cfg.Prompts().Qualification, lead)},
	}

	text, err := s.completer.Complete(ctx, messages, s.options)
	if err != nil {
		return nil, err
	}

	result, err := ParseResult(text)
	if err != nil {
		s.logger.Warn("qualification response rejected", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	s.logger.Info("lead qualified", map[string]interface{}{
		"score":    result.Score,
		"priority": result.Priority,
	})
	return result, nil
}

// BuildPrompt renders the user prompt sent for qualification.
func BuildPrompt(qualificationPrompt string, lead models.Lead) string {
	if strings.TrimSpace(qualificationPrompt) == "" {
		qualificationPrompt = fallbackPrompt
	}

	var b strings.Builder
	b.WriteString(qualificationPrompt)
	b.WriteString("\nAnalyze this lead and provide a qualification score from 1-10 and brief reasoning.\n\n")
	b.WriteString("Lead Information:\n")
	fmt.Fprintf(&b, "- Name: %s\n", orDefault(lead.Name, "Not provided"))
	fmt.Fprintf(&b, "- Email: %s\n", orDefault(lead.Email, "Not provided"))
	fmt.Fprintf(&b, "- Phone: %s\n", orDefault(lead.Phone, "Not provided"))
	fmt.Fprintf(&b, "- Message: %s\n", orDefault(lead.Message, "Not provided"))
	fmt.Fprintf(&b, "- Source: %s\n", orDefault(lead.Source, "Website"))
	b.WriteString(`
Respond in JSON format:
{
  "score": 8,
  "qualification": "Hot Lead",
  "reasoning": "Shows strong buying intent with specific requirements",
  "nextAction": "Schedule viewing appointment",
  "priority": "High"
}
`)
	return b.String()
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// ParseResult decodes completion text into a result. Text that is not JSON,
// lacks a field, or carries a score outside [1,10] yields a PARSE_ERROR.
func ParseResult(text string) (*models.QualificationResult, error) {
	var doc interface{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &doc); err != nil {
		return nil, apperrors.NewParseError(parseService, "response is not valid JSON")
	}

	res, err := schema.Validate(doc)
	if err != nil {
		return nil, apperrors.NewParseError(parseService, err.Error())
	}
	if !res.Valid {
		return nil, apperrors.NewParseError(parseService, strings.Join(res.GetErrorMessages(), "; "))
	}

	var raw struct {
		Score         float64 `json:"score"`
		Qualification string  `json:"qualification"`
		Reasoning     string  `json:"reasoning"`
		NextAction    string  `json:"nextAction"`
		Priority      string  `json:"priority"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &raw); err != nil {
		return nil, apperrors.NewParseError(parseService, err.Error())
	}

	return &models.QualificationResult{
		Score:         int(raw.Score),
		Qualification: raw.Qualification,
		Reasoning:     raw.Reasoning,
		NextAction:    raw.NextAction,
		Priority:      raw.Priority,
	}, nil
}
