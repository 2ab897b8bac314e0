// internal/models/lead.go
package models

import "strings"

// Lead status written to the data store on creation.
const LeadStatusNew = "New"

// Lead is a prospective customer submitted for automated follow-up.
// Submission fields are fixed at creation; RecordID, Qualification and Delivery
// are filled in while the automation runs.
type Lead struct {
	Name           string  `json:"name" validate:"required,notblank"`
	Email          string  `json:"email" validate:"required,notblank"`
	Phone          string  `json:"phone,omitempty"`
	Company        string  `json:"company,omitempty"`
	Message        string  `json:"message,omitempty"`
	Source         string  `json:"source,omitempty"`
	EstimatedValue float64 `json:"estimatedValue" validate:"gte=0"`

	RecordID      string               `json:"recordId,omitempty"`
	Qualification *QualificationResult `json:"qualification,omitempty"`
	Delivery      DeliveryStatus       `json:"delivery"`
}

// DeliveryStatus tracks which outbound channels reached the lead.
type DeliveryStatus struct {
	Webhook bool `json:"webhook"`
	Email   bool `json:"email"`
	SMS     bool `json:"sms"`
}

// FirstName returns the substring before the first space, or "" for an empty name.
func (l Lead) FirstName() string {
	name := strings.TrimSpace(l.Name)
	if name == "" {
		return ""
	}
	if i := strings.Index(name, " "); i >= 0 {
		return name[:i]
	}
	return name
}

// Fields maps the submission onto data-store column names.
func (l Lead) Fields() map[string]interface{} {
	fields := map[string]interface{}{
		"Full Name":       l.Name,
		"Email":           l.Email,
		"Estimated Value": l.EstimatedValue,
		"Status":          LeadStatusNew,
	}
	if l.Phone != "" {
		fields["Phone"] = l.Phone
	}
	if l.Company != "" {
		fields["Company"] = l.Company
	}
	if l.Message != "" {
		fields["Message"] = l.Message
	}
	if l.Source != "" {
		fields["Source"] = l.Source
	}
	return fields
}

// Record is a stored lead as returned by the data store.
type Record struct {
	ID          string                 `json:"id"`
	Fields      map[string]interface{} `json:"fields"`
	CreatedTime string                 `json:"createdTime,omitempty"`
}

// StringField returns a field as string, or "" when absent or not a string.
func (r Record) StringField(name string) string {
	if v, ok := r.Fields[name].(string); ok {
		return v
	}
	return ""
}
