// Package airtable is the REST data-store adapter for lead records.
package airtable

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "lead-automation/internal/common/errors"
	apphttp "lead-automation/internal/common/http"
	"lead-automation/internal/models"
)

const serviceName = "airtable"

// Client talks to one Airtable table.
type Client struct {
	baseURL string
	baseID  string
	token   string
	table   string
	http    *apphttp.Client
}

type Config struct {
	BaseURL string
	BaseID  string
	Token   string
	Table   string
	Timeout time.Duration
}

type recordsResponse struct {
	Records []models.Record `json:"records"`
	Offset  string          `json:"offset,omitempty"`
}

func NewClient(cfg Config) *Client {
	if cfg.Table == "" {
		cfg.Table = "Leads"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		baseID:  cfg.BaseID,
		token:   cfg.Token,
		table:   cfg.Table,
		http:    apphttp.NewClient(serviceName, cfg.Timeout),
	}
}

func (c *Client) tableURL() string {
	return fmt.Sprintf("%s/%s/%s", c.baseURL, c.baseID, url.PathEscape(c.table))
}

func (c *Client) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + c.token}
}

// Create stores one record and returns it with its assigned id.
func (c *Client) Create(ctx context.Context, fields map[string]interface{}) (*models.Record, error) {
	payload := map[string]interface{}{
		"records": []map[string]interface{}{{"fields": fields}},
	}

	var resp recordsResponse
	if _, err := c.http.DoJSON(ctx, http.MethodPost, c.tableURL(), c.headers(), payload, &resp); err != nil {
		return nil, err
	}
	if len(resp.Records) == 0 || resp.Records[0].ID == "" {
		return nil, apperrors.NewParseError(serviceName, "create response carried no records")
	}
	return &resp.Records[0], nil
}

// Update patches fields onto an existing record and returns the echoed record.
func (c *Client) Update(ctx context.Context, id string, fields map[string]interface{}) (*models.Record, error) {
	if id == "" {
		return nil, apperrors.NewValidationError("record id is required", "")
	}

	endpoint := fmt.Sprintf("%s/%s", c.tableURL(), url.PathEscape(id))
	var record models.Record
	if _, err := c.http.DoJSON(ctx, http.MethodPatch, endpoint, c.headers(), map[string]interface{}{"fields": fields}, &record); err != nil {
		return nil, err
	}
	if record.ID == "" {
		return nil, apperrors.NewParseError(serviceName, "update response carried no record id")
	}
	return &record, nil
}

// List returns every record in the table, following offset pagination.
func (c *Client) List(ctx context.Context) ([]models.Record, error) {
	var all []models.Record
	offset := ""

	for {
		endpoint := c.tableURL()
		if offset != "" {
			endpoint += "?offset=" + url.QueryEscape(offset)
		}

		var page recordsResponse
		if _, err := c.http.DoJSON(ctx, http.MethodGet, endpoint, c.headers(), nil, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Records...)

		if page.Offset == "" {
			break
		}
		offset = page.Offset
	}

	if all == nil {
		all = []models.Record{}
	}
	return all, nil
}

// CheckConnectivity reads at most one record.
func (c *Client) CheckConnectivity(ctx context.Context) error {
	var page recordsResponse
	_, err := c.http.DoJSON(ctx, http.MethodGet, c.tableURL()+"?maxRecords=1", c.headers(), nil, &page)
	return err
}
