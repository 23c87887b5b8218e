package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name        string
		appError    *AppError
		wantMessage string
	}{
		{
			name: "error without cause",
			appError: &AppError{
				Type:    ErrTypeParsing,
				Message: "input is not a table",
			},
			wantMessage: "[PARSING] input is not a table",
		},
		{
			name: "error with cause",
			appError: &AppError{
				Type:    ErrTypeStorage,
				Message: "failed to create table",
				Cause:   errors.New("disk full"),
			},
			wantMessage: "[STORAGE] failed to create table: disk full",
		},
		{
			name: "error with empty message",
			appError: &AppError{
				Type: ErrTypeValidation,
			},
			wantMessage: "[VALIDATION] ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMessage, tt.appError.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("original error")
	appErr := NewStorageError("write failed", cause)

	assert.Same(t, cause, appErr.Unwrap())
	assert.True(t, errors.Is(appErr, cause))
	assert.Nil(t, NewAppValidationError("bad").Unwrap())
}

func TestAppError_WithContext(t *testing.T) {
	appErr := &AppError{Type: ErrTypeParsing, Message: "bad header"}

	result := appErr.WithContext("column", "Contact ID").WithContext("line", 1)

	assert.Same(t, appErr, result)
	require.NotNil(t, result.Context)
	assert.Equal(t, "Contact ID", result.Context["column"])
	assert.Equal(t, 1, result.Context["line"])
}

func TestConstructors(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		name     string
		err      *AppError
		wantType ErrorType
		wantMsg  string
	}{
		{"parsing", NewParsingError("bad csv", cause), ErrTypeParsing, "bad csv"},
		{"storage", NewStorageError("bad write", cause), ErrTypeStorage, "bad write"},
		{"validation", NewAppValidationError("bad value"), ErrTypeValidation, "bad value"},
		{"not found", NewNotFoundError("input file"), ErrTypeNotFound, "input file not found"},
		{"permission", NewPermissionError("denied"), ErrTypePermission, "denied"},
		{"config", NewConfigError("bad config", cause), ErrTypeConfig, "bad config"},
		{"export", NewExportError("bad chart", cause), ErrTypeExport, "bad chart"},
		{"cancelled", NewCancelledError("metrics", context.Canceled), ErrTypeCancelled, "metrics cancelled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.Equal(t, tt.wantMsg, tt.err.Message)
			assert.NotNil(t, tt.err.Context)
		})
	}
}

func TestTypeOf(t *testing.T) {
	wrapped := fmt.Errorf("run: %w", NewParsingError("missing column", nil))

	errType, ok := TypeOf(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrTypeParsing, errType)
	assert.True(t, IsType(wrapped, ErrTypeParsing))
	assert.False(t, IsType(wrapped, ErrTypeStorage))

	_, ok = TypeOf(errors.New("plain"))
	assert.False(t, ok)
	assert.False(t, IsType(nil, ErrTypeParsing))
}
