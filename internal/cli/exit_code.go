package cli

import (
	"context"
	"errors"

	apperrors "attributioncli/internal/errors"
)

// Process exit codes
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitUsage     = 2
	ExitInput     = 3
	ExitCancelled = 130
)

// ExitError carries an explicit process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return "exit"
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode maps err to a process exit code by its AppError type.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var coded *ExitError
	if errors.As(err, &coded) && coded.Code > 0 {
		return coded.Code
	}

	if errors.Is(err, context.Canceled) {
		return ExitCancelled
	}

	errType, ok := apperrors.TypeOf(err)
	if !ok {
		return ExitFailure
	}
	switch errType {
	case apperrors.ErrTypeConfig:
		return ExitUsage
	case apperrors.ErrTypeNotFound, apperrors.ErrTypePermission, apperrors.ErrTypeParsing, apperrors.ErrTypeValidation:
		return ExitInput
	case apperrors.ErrTypeCancelled:
		return ExitCancelled
	default:
		return ExitFailure
	}
}
