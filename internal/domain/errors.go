package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrRecordNotFound signals a missing record.
	ErrRecordNotFound = errors.New("record not found")
	// ErrFileNotFound signals a missing stored file.
	ErrFileNotFound = errors.New("file not found")
	// ErrInvalidInput signals a request that failed domain validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrForbidden signals access to a resource owned by someone else.
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthorized signals a missing or invalid credential.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrOracleUnavailable signals a query analysis provider failure.
	ErrOracleUnavailable = errors.New("oracle unavailable")
	// ErrOracleBudgetExceeded signals that the token budget for oracle calls is spent.
	ErrOracleBudgetExceeded = errors.New("oracle token budget exceeded")
	// ErrSummaryUnavailable signals a summarization provider failure.
	ErrSummaryUnavailable = errors.New("summary unavailable")
	// ErrFileTooLarge signals an upload exceeding the configured size cap.
	ErrFileTooLarge = errors.New("file too large")
)

// FileTooLargeError wraps ErrFileTooLarge with the configured cap.
type FileTooLargeError struct {
	MaxBytes int64
}

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("%s: limit is %d bytes", ErrFileTooLarge.Error(), e.MaxBytes)
}

func (e *FileTooLargeError) Unwrap() error { return ErrFileTooLarge }

// NewFileTooLarge creates a file size limit error.
func NewFileTooLarge(maxBytes int64) error {
	return &FileTooLargeError{MaxBytes: maxBytes}
}
