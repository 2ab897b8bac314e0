// Package errors provides the standardized error taxonomy shared by every adapter and worker.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Failure taxonomy for remote calls and caller input.
const (
	// ErrCodeTransport: network unreachable, connection reset, transport-level timeout.
	ErrCodeTransport ErrorCode = "TRANSPORT_ERROR"
	// ErrCodeProtocol: the remote service answered with a non-2xx status or refused the request.
	ErrCodeProtocol ErrorCode = "PROTOCOL_ERROR"
	// ErrCodeParse: the response body is not the JSON shape we expect.
	ErrCodeParse ErrorCode = "PARSE_ERROR"
	// ErrCodeValidation: caller-supplied data fails a precondition before any remote call.
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"
)

// Supporting codes. They carry ValidationError semantics: nothing was sent.
const (
	ErrCodeTemplateNotFound ErrorCode = "TEMPLATE_NOT_FOUND"
	ErrCodeNotConfigured    ErrorCode = "NOT_CONFIGURED"
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
)

// Sentinels for errors.Is matching by code.
var (
	ErrTransport  = &StandardError{Code: ErrCodeTransport}
	ErrProtocol   = &StandardError{Code: ErrCodeProtocol}
	ErrParse      = &StandardError{Code: ErrCodeParse}
	ErrValidation = &StandardError{Code: ErrCodeValidation}
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	if e.Details == "" {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
}

// Is reports whether target is a StandardError with the same code.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithMetadata attaches a key to the error's metadata and returns the error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewTransportError wraps a failure to reach a remote service.
func NewTransportError(service string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTransport,
		Message:   fmt.Sprintf("%s unreachable", service),
		Details:   err.Error(),
		Retryable: true,
		Metadata:  map[string]interface{}{"service": service},
		Timestamp: time.Now().UTC(),
	}
}

// NewProtocolError records a non-2xx answer from a remote service.
func NewProtocolError(service string, status int, body string) *StandardError {
	return &StandardError{
		Code:      ErrCodeProtocol,
		Message:   fmt.Sprintf("%s returned status %d", service, status),
		Details:   truncate(strings.TrimSpace(body), 512),
		Retryable: status >= 500 || status == 429,
		Metadata:  map[string]interface{}{"service": service, "status": status},
		Timestamp: time.Now().UTC(),
	}
}

// NewRejectedError records a 2xx answer whose payload reports a failure.
func NewRejectedError(service, reason string) *StandardError {
	return &StandardError{
		Code:      ErrCodeProtocol,
		Message:   fmt.Sprintf("%s rejected the request", service),
		Details:   reason,
		Retryable: false,
		Metadata:  map[string]interface{}{"service": service},
		Timestamp: time.Now().UTC(),
	}
}

// NewParseError records a response body that is not the expected JSON.
func NewParseError(service, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeParse,
		Message:   fmt.Sprintf("unexpected %s response", service),
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{"service": service},
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationError records caller input that fails a precondition.
func NewValidationError(message, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidation,
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTemplateNotFoundError creates a non-retryable template error.
func NewTemplateNotFoundError(channel, templateID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTemplateNotFound,
		Message:   fmt.Sprintf("unknown %s template", channel),
		Details:   fmt.Sprintf("templateId: %s", templateID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotConfiguredError reports a collaborator that has no endpoint or credentials.
func NewNotConfiguredError(service, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotConfigured,
		Message:   fmt.Sprintf("%s not configured", service),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion
// ==========================

// From normalizes any error into a StandardError.
func From(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// CodeOf returns the error code carried by err, or ErrCodeInternal.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	return From(err).Code
}

// Describe renders err for user-visible diagnostics without the code prefix.
func Describe(err error) string {
	stdErr := From(err)
	if stdErr.Details == "" {
		return stdErr.Message
	}
	return stdErr.Message + ": " + stdErr.Details
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	return &BPMNError{
		Code:      string(stdErr.Code),
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		ErrorVariables: map[string]interface{}{
			"errorCategory": GetErrorCategory(stdErr.Code),
			"timestamp":     stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// GetErrorCategory groups codes into the four failure kinds.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeTransport:
		return "TRANSPORT"
	case ErrCodeProtocol:
		return "PROTOCOL"
	case ErrCodeParse:
		return "PARSE"
	case ErrCodeValidation, ErrCodeTemplateNotFound, ErrCodeNotConfigured:
		return "VALIDATION"
	default:
		return "OTHER"
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
