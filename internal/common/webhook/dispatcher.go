// Package webhook posts automation events to per-event receiver URLs.
package webhook

import (
	"context"
	"net/http"
	"sync"
	"time"

	apperrors "lead-automation/internal/common/errors"
	apphttp "lead-automation/internal/common/http"
)

// Event types.
const (
	EventLeadCapture       = "lead_capture"
	EventEmailSequence     = "email_sequence"
	EventSMSNotification   = "sms_notification"
	EventLeadQualification = "lead_qualification"
	EventTest              = "test"
)

const serviceName = "webhook"

// Envelope is the JSON body of every event.
type Envelope struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp string      `json:"timestamp"`
	Source    string      `json:"source"`
}

// Ack is a receiver's acknowledgement; only the status is meaningful.
type Ack struct {
	EventType  string `json:"eventType"`
	StatusCode int    `json:"statusCode"`
}

// Dispatcher resolves an event type to its URL and posts the envelope.
type Dispatcher struct {
	mu     sync.RWMutex
	urls   map[string]string
	source string
	http   *apphttp.Client
	now    func() time.Time
}

func NewDispatcher(urls map[string]string, source string, timeout time.Duration) *Dispatcher {
	if source == "" {
		source = "mobile_app"
	}
	d := &Dispatcher{
		urls:   make(map[string]string, len(urls)),
		source: source,
		http:   apphttp.NewClient(serviceName, timeout),
		now:    time.Now,
	}
	for k, v := range urls {
		d.urls[k] = v
	}
	return d
}

// Post sends payload as an event of eventType.
func (d *Dispatcher) Post(ctx context.Context, eventType string, payload interface{}) (*Ack, error) {
	url := d.urlFor(eventType)
	if url == "" {
		return nil, apperrors.NewNotConfiguredError(serviceName, "no url for event "+eventType)
	}

	env := Envelope{
		Type:      eventType,
		Data:      payload,
		Timestamp: d.now().UTC().Format(time.RFC3339Nano),
		Source:    d.source,
	}

	status, err := d.http.DoJSON(ctx, http.MethodPost, url, nil, env, nil)
	if err != nil {
		return nil, err
	}
	return &Ack{EventType: eventType, StatusCode: status}, nil
}

// UpdateURLs merges urls over the current table. An empty value removes the entry.
func (d *Dispatcher) UpdateURLs(urls map[string]string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for k, v := range urls {
		if v == "" {
			delete(d.urls, k)
			continue
		}
		d.urls[k] = v
	}
}

// URLs returns a copy of the current table.
func (d *Dispatcher) URLs() map[string]string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make(map[string]string, len(d.urls))
	for k, v := range d.urls {
		out[k] = v
	}
	return out
}

// CheckConnectivity posts a test event to the lead capture receiver.
func (d *Dispatcher) CheckConnectivity(ctx context.Context) error {
	url := d.urlFor(EventLeadCapture)
	if url == "" {
		return apperrors.NewNotConfiguredError(serviceName, "no url for event "+EventLeadCapture)
	}
	env := Envelope{
		Type:      EventTest,
		Data:      map[string]string{"message": "Testing webhook connectivity"},
		Timestamp: d.now().UTC().Format(time.RFC3339Nano),
		Source:    d.source,
	}
	_, err := d.http.DoJSON(ctx, http.MethodPost, url, nil, env, nil)
	return err
}

func (d *Dispatcher) urlFor(eventType string) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.urls[eventType]
}
