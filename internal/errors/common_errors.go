package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeInputType  ErrorType = "INPUT_TYPE"
	ErrTypeSchema     ErrorType = "SCHEMA"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeParsing    ErrorType = "PARSING"
	ErrTypeNotFound   ErrorType = "NOT_FOUND"
	ErrTypeStorage    ErrorType = "STORAGE"
	ErrTypeConfig     ErrorType = "CONFIG"
	ErrTypeRender     ErrorType = "RENDER"
)

// Sentinels for errors.Is matching by type only
var (
	ErrInputType  = &AppError{Type: ErrTypeInputType}
	ErrSchema     = &AppError{Type: ErrTypeSchema}
	ErrValidation = &AppError{Type: ErrTypeValidation}
	ErrParsing    = &AppError{Type: ErrTypeParsing}
	ErrNotFound   = &AppError{Type: ErrTypeNotFound}
	ErrStorage    = &AppError{Type: ErrTypeStorage}
	ErrConfig     = &AppError{Type: ErrTypeConfig}
	ErrRender     = &AppError{Type: ErrTypeRender}
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches any AppError of the same type, so errors.Is(err, ErrSchema)
// holds for every schema error regardless of message.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Type == e.Type
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// IsType reports whether err wraps an AppError of the given type
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}

// Helper functions for common error types

// NewInputTypeError is returned when a stage receives something that is not a table
func NewInputTypeError(message string) *AppError {
	return NewAppError(ErrTypeInputType, message, nil)
}

// NewSchemaError lists every required column that is absent
func NewSchemaError(missing []string) *AppError {
	sorted := append([]string(nil), missing...)
	sort.Strings(sorted)
	return NewAppError(ErrTypeSchema, fmt.Sprintf("missing required columns: %s", strings.Join(sorted, ", ")), nil).
		WithContext("missing_columns", sorted)
}

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// NewRenderError creates a chart rendering error
func NewRenderError(message string, cause error) *AppError {
	return NewAppError(ErrTypeRender, message, cause)
}

// MissingColumns extracts the column list from a schema error
func MissingColumns(err error) []string {
	var appErr *AppError
	if !errors.As(err, &appErr) || appErr.Type != ErrTypeSchema {
		return nil
	}
	cols, _ := appErr.Context["missing_columns"].([]string)
	return cols
}
