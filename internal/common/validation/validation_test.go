package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "lead-automation/internal/common/errors"
)

// ==========================
// Contact fields
// ==========================

func TestValidatePhone(t *testing.T) {
	tests := []struct {
		phone string
		want  bool
	}{
		{"+15551234567", true},
		{"(555) 123-4567", true},
		{"555.123.4567", true},
		{"+1 555 123 4567", true},
		{"555-1234", false},
		{"", false},
		{"call me maybe", false},
		{"+1-(---)----", false},
	}
	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidatePhone(tt.phone))
		})
	}
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "+15551234567", NormalizePhone("+1 (555) 123-4567"))
	assert.Equal(t, "5551234567", NormalizePhone("555.123.4567"))
	assert.Equal(t, "15551234567", NormalizePhone("1+555+123+4567"))
	assert.Equal(t, "", NormalizePhone("   "))
}

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("john@x.com"))
	assert.False(t, ValidateEmail("john@"))
	assert.False(t, ValidateEmail("not an email"))
}

// ==========================
// Struct validation
// ==========================

type submission struct {
	Name  string  `validate:"required,notblank"`
	Email string  `validate:"required,notblank"`
	Value float64 `validate:"gte=0"`
}

func TestValidator_Struct(t *testing.T) {
	v := New()

	require.NoError(t, v.Struct("invalid lead", submission{Name: "A", Email: "a@b.co"}))

	err := v.Struct("invalid lead", submission{Value: -1})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeValidation, apperrors.CodeOf(err))
	assert.Contains(t, err.Error(), "name is required")
	assert.Contains(t, err.Error(), "email is required")
	assert.Contains(t, err.Error(), "value must be >= 0")
}

func TestValidator_Struct_BlankIsMissing(t *testing.T) {
	err := New().Struct("invalid lead", submission{Name: "   ", Email: "\t"})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeValidation, apperrors.CodeOf(err))
	assert.Contains(t, err.Error(), "name is required")
	assert.Contains(t, err.Error(), "email is required")
}

// ==========================
// JSON Schema
// ==========================

const scoreSchema = `{
  "type": "object",
  "required": ["score"],
  "properties": {"score": {"type": "integer", "minimum": 1, "maximum": 10}}
}`

func TestSchema_Validate(t *testing.T) {
	s := MustCompileSchema(scoreSchema)

	res, err := s.ValidateJSON(`{"score": 7}`)
	require.NoError(t, err)
	assert.True(t, res.Valid)

	res, err = s.ValidateJSON(`{"score": 11}`)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	require.NotEmpty(t, res.Errors)
	assert.Equal(t, "score", res.Errors[0].Field)

	res, err = s.Validate(map[string]interface{}{})
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.NotEmpty(t, res.GetErrorMessages())
}

func TestCompileSchema_Invalid(t *testing.T) {
	_, err := CompileSchema(`{"type": 12}`)
	assert.Error(t, err)
}
