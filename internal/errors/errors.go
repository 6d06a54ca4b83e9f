package errors

import (
	"errors"
	"fmt"
)

// Domain-specific error types
var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrMessageNotFound indicates the message was not found
	ErrMessageNotFound = errors.New("message not found")

	// ErrFilterNotFound indicates the filter was not found
	ErrFilterNotFound = errors.New("filter not found")

	// ErrSnapshotNotFound indicates the backup snapshot was not found
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrInvalidInput indicates invalid input data
	ErrInvalidInput = errors.New("invalid input")

	// ErrCorruptSnapshot indicates a snapshot failed structural validation
	ErrCorruptSnapshot = errors.New("corrupt snapshot")

	// ErrStorageFailure indicates an underlying store operation failed
	ErrStorageFailure = errors.New("storage failure")

	// ErrRestoreInProgress indicates another exclusive restore is running
	ErrRestoreInProgress = errors.New("restore already in progress")

	// ErrUnauthorized indicates unauthorized access
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInternal indicates an internal server error
	ErrInternal = errors.New("internal server error")
)

// Error codes for API responses
const (
	CodeNotFound          = "NOT_FOUND"
	CodeInvalidInput      = "INVALID_INPUT"
	CodeCorruptSnapshot   = "CORRUPT_SNAPSHOT"
	CodeStorageFailure    = "STORAGE_FAILURE"
	CodeRestoreInProgress = "RESTORE_IN_PROGRESS"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeInternalError     = "INTERNAL_ERROR"
)

// AppError represents an application error with context
type AppError struct {
	Err     error
	Message string
	Code    string
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError
func NewAppError(err error, message string, code string) *AppError {
	return &AppError{
		Err:     err,
		Message: message,
		Code:    code,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrMessageNotFound) ||
		errors.Is(err, ErrFilterNotFound) ||
		errors.Is(err, ErrSnapshotNotFound)
}

// IsInvalidInput checks if the error is an invalid input error
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsCorruptSnapshot checks if the error is a corrupt snapshot error
func IsCorruptSnapshot(err error) bool {
	return errors.Is(err, ErrCorruptSnapshot)
}

// IsStorageFailure checks if the error is a storage failure
func IsStorageFailure(err error) bool {
	return errors.Is(err, ErrStorageFailure)
}

// GetErrorCode returns the appropriate error code for an error
func GetErrorCode(err error) string {
	switch {
	case IsNotFound(err):
		return CodeNotFound
	case IsInvalidInput(err):
		return CodeInvalidInput
	case IsCorruptSnapshot(err):
		return CodeCorruptSnapshot
	case errors.Is(err, ErrRestoreInProgress):
		return CodeRestoreInProgress
	case IsStorageFailure(err):
		return CodeStorageFailure
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthorized
	default:
		return CodeInternalError
	}
}
