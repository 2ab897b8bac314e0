// Package completion adapts an OpenAI-compatible chat-completions endpoint.
package completion

import (
	"context"
	"net/http"
	"strings"
	"time"

	apperrors "lead-automation/internal/common/errors"
	apphttp "lead-automation/internal/common/http"
)

const serviceName = "openai"

// Chat roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Options struct {
	MaxTokens   int
	Temperature float64
}

type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *apphttp.Client
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

func NewClient(cfg Config) *Client {
	if cfg.Model == "" {
		cfg.Model = "gpt-3.5-turbo"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		http:    apphttp.NewClient(serviceName, cfg.Timeout),
	}
}

func (c *Client) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + c.apiKey}
}

// Complete returns choices[0].message.content for the given conversation.
func (c *Client) Complete(ctx context.Context, messages []Message, opts Options) (string, error) {
	if len(messages) == 0 {
		return "", apperrors.NewValidationError("completion requires at least one message", "")
	}

	req := chatRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}

	var resp chatResponse
	if _, err := c.http.DoJSON(ctx, http.MethodPost, c.baseURL+"/chat/completions", c.headers(), req, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", apperrors.NewParseError(serviceName, "response carried no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// CheckConnectivity lists the available models.
func (c *Client) CheckConnectivity(ctx context.Context) error {
	_, err := c.http.DoJSON(ctx, http.MethodGet, c.baseURL+"/models", c.headers(), nil, nil)
	return err
}
