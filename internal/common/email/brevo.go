package email

import (
	"context"
	"net/http"
	"strings"
	"time"

	apperrors "lead-automation/internal/common/errors"
	apphttp "lead-automation/internal/common/http"
)

const brevoService = "brevo"

type brevoContact struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type brevoRequest struct {
	Sender      brevoContact   `json:"sender"`
	To          []brevoContact `json:"to"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
}

type brevoResponse struct {
	MessageID string `json:"messageId"`
}

// BrevoProvider sends through the Brevo transactional email API.
type BrevoProvider struct {
	baseURL string
	apiKey  string
	http    *apphttp.Client
}

func NewBrevoProvider(baseURL, apiKey string, timeout time.Duration) *BrevoProvider {
	return &BrevoProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    apphttp.NewClient(brevoService, timeout),
	}
}

func (b *BrevoProvider) Name() string { return brevoService }

func (b *BrevoProvider) Deliver(ctx context.Context, env Envelope) (string, error) {
	req := brevoRequest{
		Sender:      brevoContact{Name: env.FromName, Email: env.FromEmail},
		To:          []brevoContact{{Name: env.ToName, Email: env.To}},
		Subject:     env.Subject,
		HTMLContent: env.HTML,
	}

	var resp brevoResponse
	if _, err := b.http.DoJSON(ctx, http.MethodPost, b.baseURL+"/smtp/email", b.headers(), req, &resp); err != nil {
		return "", err
	}
	if resp.MessageID == "" {
		return "", apperrors.NewParseError(brevoService, "response carried no messageId")
	}
	return resp.MessageID, nil
}

func (b *BrevoProvider) CheckConnectivity(ctx context.Context) error {
	_, err := b.http.DoJSON(ctx, http.MethodGet, b.baseURL+"/account", b.headers(), nil, nil)
	return err
}

func (b *BrevoProvider) headers() map[string]string {
	return map[string]string{"api-key": b.apiKey}
}
