package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardError_Is(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{"transport matches", NewTransportError("airtable", fmt.Errorf("dial tcp: refused")), ErrTransport, true},
		{"protocol matches", NewProtocolError("brevo", 401, "unauthorized"), ErrProtocol, true},
		{"rejected is protocol", NewRejectedError("textbelt", "Out of quota"), ErrProtocol, true},
		{"parse matches", NewParseError("openai", "not json"), ErrParse, true},
		{"validation matches", NewValidationError("invalid lead", "name is required"), ErrValidation, true},
		{"wrapped error matches", fmt.Errorf("store: %w", NewParseError("airtable", "empty records")), ErrParse, true},
		{"different code", NewParseError("openai", "x"), ErrTransport, false},
		{"plain error", fmt.Errorf("boom"), ErrTransport, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stderrors.Is(tt.err, tt.target))
		})
	}
}

func TestStandardError_Error(t *testing.T) {
	err := NewProtocolError("airtable", 422, `{"error":"INVALID_VALUE_FOR_COLUMN"}`)
	assert.Equal(t, `[PROTOCOL_ERROR] airtable returned status 422: {"error":"INVALID_VALUE_FOR_COLUMN"}`, err.Error())

	noDetails := &StandardError{Code: ErrCodeInternal, Message: "unexpected error"}
	assert.Equal(t, "[INTERNAL_ERROR] unexpected error", noDetails.Error())
}

func TestNewProtocolError_Retryable(t *testing.T) {
	assert.True(t, NewProtocolError("svc", 503, "").Retryable)
	assert.True(t, NewProtocolError("svc", 429, "").Retryable)
	assert.False(t, NewProtocolError("svc", 400, "").Retryable)
}

func TestNewProtocolError_TruncatesBody(t *testing.T) {
	body := make([]byte, 2000)
	for i := range body {
		body[i] = 'x'
	}
	err := NewProtocolError("svc", 500, string(body))
	assert.Len(t, err.Details, 515)
}

func TestFrom(t *testing.T) {
	t.Run("keeps standard errors", func(t *testing.T) {
		orig := NewParseError("openai", "bad json")
		got := From(fmt.Errorf("wrap: %w", orig))
		assert.Same(t, orig, got)
	})

	t.Run("normalizes plain errors", func(t *testing.T) {
		got := From(fmt.Errorf("boom"))
		require.NotNil(t, got)
		assert.Equal(t, ErrCodeInternal, got.Code)
		assert.Equal(t, "boom", got.Details)
	})

	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, From(nil))
		assert.Equal(t, ErrorCode(""), CodeOf(nil))
	})
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "unexpected openai response: not json", Describe(NewParseError("openai", "not json")))
	assert.Equal(t, "unexpected error", Describe(&StandardError{Code: ErrCodeInternal, Message: "unexpected error"}))
}

func TestConvertToBPMNError(t *testing.T) {
	stdErr := NewValidationError("invalid lead", "email is required")
	bpmnErr := ConvertToBPMNError(stdErr)

	assert.Equal(t, "VALIDATION_ERROR", bpmnErr.Code)
	assert.False(t, bpmnErr.Retryable)

	vars := bpmnErr.ToErrorVariables()
	assert.Equal(t, "VALIDATION_ERROR", vars["errorCode"])
	assert.Equal(t, "VALIDATION", vars["errorCategory"])
	assert.Equal(t, "email is required", vars["errorDetails"])
}

func TestGetErrorCategory(t *testing.T) {
	tests := map[ErrorCode]string{
		ErrCodeTransport:        "TRANSPORT",
		ErrCodeProtocol:         "PROTOCOL",
		ErrCodeParse:            "PARSE",
		ErrCodeValidation:       "VALIDATION",
		ErrCodeTemplateNotFound: "VALIDATION",
		ErrCodeNotConfigured:    "VALIDATION",
		ErrCodeInternal:         "OTHER",
	}
	for code, want := range tests {
		assert.Equal(t, want, GetErrorCategory(code), string(code))
	}
}
