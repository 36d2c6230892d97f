package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorType_Constants(t *testing.T) {
	tests := []struct {
		name     string
		errType  ErrorType
		expected string
	}{
		{name: "input type error type", errType: ErrTypeInputType, expected: "INPUT_TYPE"},
		{name: "schema error type", errType: ErrTypeSchema, expected: "SCHEMA"},
		{name: "validation error type", errType: ErrTypeValidation, expected: "VALIDATION"},
		{name: "parsing error type", errType: ErrTypeParsing, expected: "PARSING"},
		{name: "not found error type", errType: ErrTypeNotFound, expected: "NOT_FOUND"},
		{name: "storage error type", errType: ErrTypeStorage, expected: "STORAGE"},
		{name: "config error type", errType: ErrTypeConfig, expected: "CONFIG"},
		{name: "render error type", errType: ErrTypeRender, expected: "RENDER"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.errType))
		})
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name        string
		appError    *AppError
		wantMessage string
	}{
		{
			name: "error without cause",
			appError: &AppError{
				Type:    ErrTypeValidation,
				Message: "table is empty",
			},
			wantMessage: "[VALIDATION] table is empty",
		},
		{
			name: "error with cause",
			appError: &AppError{
				Type:    ErrTypeParsing,
				Message: "failed to read csv",
				Cause:   fmt.Errorf("wrong number of fields"),
			},
			wantMessage: "[PARSING] failed to read csv: wrong number of fields",
		},
		{
			name: "error with empty message",
			appError: &AppError{
				Type: ErrTypeRender,
			},
			wantMessage: "[RENDER] ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMessage, tt.appError.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("permission denied")
	err := NewStorageError("failed to write chart", cause)

	assert.Same(t, cause, err.Unwrap())
	assert.ErrorIs(t, err, cause)
	assert.Nil(t, NewValidationError("x").Unwrap())
}

func TestAppError_IsMatchesByType(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		target   error
		expected bool
	}{
		{
			name:     "schema error matches schema sentinel",
			err:      NewSchemaError([]string{"GRAVEDAD"}),
			target:   ErrSchema,
			expected: true,
		},
		{
			name:     "wrapped validation error matches",
			err:      fmt.Errorf("analyze: %w", NewValidationError("unsupported frequency")),
			target:   ErrValidation,
			expected: true,
		},
		{
			name:     "input type error does not match schema",
			err:      NewInputTypeError("input must be a table"),
			target:   ErrSchema,
			expected: false,
		},
		{
			name:     "plain error does not match",
			err:      errors.New("boom"),
			target:   ErrParsing,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, errors.Is(tt.err, tt.target))
		})
	}
}

func TestIsType(t *testing.T) {
	err := fmt.Errorf("load: %w", NewNotFoundError("input file"))

	assert.True(t, IsType(err, ErrTypeNotFound))
	assert.False(t, IsType(err, ErrTypeParsing))
	assert.False(t, IsType(errors.New("plain"), ErrTypeNotFound))
}

func TestAppError_WithContext(t *testing.T) {
	appError := &AppError{Type: ErrTypeConfig, Message: "bad config"}

	result := appError.WithContext("field", "variant")

	assert.Same(t, appError, result)
	require.Contains(t, result.Context, "field")
	assert.Equal(t, "variant", result.Context["field"])
}

func TestNewSchemaError(t *testing.T) {
	err := NewSchemaError([]string{"MUNICIPIO", "GRAVEDAD"})

	assert.Equal(t, ErrTypeSchema, err.Type)
	assert.Equal(t, "[SCHEMA] missing required columns: GRAVEDAD, MUNICIPIO", err.Error())
	assert.Equal(t, []string{"GRAVEDAD", "MUNICIPIO"}, MissingColumns(err))
	assert.Equal(t, []string{"GRAVEDAD", "MUNICIPIO"}, MissingColumns(fmt.Errorf("clean: %w", err)))
	assert.Nil(t, MissingColumns(NewValidationError("x")))
}

func TestHelperConstructors(t *testing.T) {
	cause := errors.New("cause")
	tests := []struct {
		name     string
		err      *AppError
		wantType ErrorType
		wantMsg  string
	}{
		{name: "input type", err: NewInputTypeError("not a table"), wantType: ErrTypeInputType, wantMsg: "not a table"},
		{name: "validation", err: NewValidationError("empty"), wantType: ErrTypeValidation, wantMsg: "empty"},
		{name: "parsing", err: NewParsingError("bad csv", cause), wantType: ErrTypeParsing, wantMsg: "bad csv"},
		{name: "not found", err: NewNotFoundError("input file"), wantType: ErrTypeNotFound, wantMsg: "input file not found"},
		{name: "storage", err: NewStorageError("write failed", cause), wantType: ErrTypeStorage, wantMsg: "write failed"},
		{name: "config", err: NewConfigError("invalid", cause), wantType: ErrTypeConfig, wantMsg: "invalid"},
		{name: "render", err: NewRenderError("plot failed", cause), wantType: ErrTypeRender, wantMsg: "plot failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.Equal(t, tt.wantMsg, tt.err.Message)
			assert.NotNil(t, tt.err.Context)
		})
	}
}
