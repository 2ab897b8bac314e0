// internal/common/http/client.go
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "lead-automation/internal/common/errors"
)

const maxResponseBytes = 4 << 20

// Client performs JSON requests against one remote service and folds every
// failure into the shared error taxonomy.
type Client struct {
	service    string
	httpClient *http.Client
}

func NewClient(service string, timeout time.Duration) *Client {
	return &Client{
		service: service,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// WithHTTPClient swaps the underlying transport, mainly for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

func (c *Client) Service() string {
	return c.service
}

// DoJSON sends body (if non-nil) as JSON and decodes a 2xx response into out (if non-nil).
// It returns the HTTP status code when a response was received.
//
// Failures map to: TRANSPORT_ERROR when no response arrived, PROTOCOL_ERROR for non-2xx,
// PARSE_ERROR when the body cannot be decoded into out.
func (c *Client) DoJSON(ctx context.Context, method, url string, headers map[string]string, body, out interface{}) (int, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, apperrors.NewValidationError(fmt.Sprintf("failed to encode %s request", c.service), err.Error())
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, apperrors.NewTransportError(c.service, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, apperrors.NewTransportError(c.service, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, apperrors.NewTransportError(c.service, fmt.Errorf("failed to read response body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, apperrors.NewProtocolError(c.service, resp.StatusCode, string(raw))
	}

	if out == nil {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return resp.StatusCode, apperrors.NewParseError(c.service, err.Error())
	}

	return resp.StatusCode, nil
}
