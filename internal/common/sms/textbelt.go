package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "lead-automation/internal/common/errors"
	apphttp "lead-automation/internal/common/http"
)

const textbeltService = "textbelt"

type textbeltRequest struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
	Key     string `json:"key,omitempty"`
}

// textID accepts the id as either a JSON string or number.
type textID string

func (t *textID) UnmarshalJSON(b []byte) error {
	raw := string(bytes.TrimSpace(b))
	if raw == "null" {
		*t = ""
		return nil
	}
	*t = textID(strings.Trim(raw, `"`))
	return nil
}

type textbeltResponse struct {
	Success        bool   `json:"success"`
	TextID         textID `json:"textId"`
	QuotaRemaining int    `json:"quotaRemaining"`
	Error          string `json:"error"`
}

type quotaResponse struct {
	Success        bool `json:"success"`
	QuotaRemaining int  `json:"quotaRemaining"`
}

// TextbeltProvider sends through the Textbelt HTTP API.
type TextbeltProvider struct {
	baseURL string
	apiKey  string
	http    *apphttp.Client
}

func NewTextbeltProvider(baseURL, apiKey string, timeout time.Duration) *TextbeltProvider {
	return &TextbeltProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    apphttp.NewClient(textbeltService, timeout),
	}
}

func (p *TextbeltProvider) Name() string { return textbeltService }

// Deliver posts the text. Textbelt reports refusals with HTTP 200 and success=false.
func (p *TextbeltProvider) Deliver(ctx context.Context, phone, message string) (string, error) {
	var resp textbeltResponse
	req := textbeltRequest{Phone: phone, Message: message, Key: p.apiKey}
	if _, err := p.http.DoJSON(ctx, http.MethodPost, p.baseURL+"/text", nil, req, &resp); err != nil {
		return "", err
	}
	if !resp.Success {
		reason := resp.Error
		if reason == "" {
			reason = "Failed to send SMS"
		}
		return "", apperrors.NewRejectedError(textbeltService, reason)
	}
	return string(resp.TextID), nil
}

// Quota returns the remaining credits on the configured key.
func (p *TextbeltProvider) Quota(ctx context.Context) (int, error) {
	if p.apiKey == "" {
		return 0, apperrors.NewNotConfiguredError(textbeltService, "api key is empty")
	}
	var resp quotaResponse
	if _, err := p.http.DoJSON(ctx, http.MethodGet, p.baseURL+"/quota/"+url.PathEscape(p.apiKey), nil, nil, &resp); err != nil {
		return 0, err
	}
	if !resp.Success {
		return 0, apperrors.NewRejectedError(textbeltService, "quota lookup failed")
	}
	return resp.QuotaRemaining, nil
}

func (p *TextbeltProvider) CheckConnectivity(ctx context.Context) error {
	_, err := p.Quota(ctx)
	return err
}

var _ json.Unmarshaler = (*textID)(nil)
