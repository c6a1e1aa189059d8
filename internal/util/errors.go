// internal/util/errors.go
package util

import (
	"errors"
	"fmt"
)

// Domain errors returned by the ledger services.
var (
	ErrInvalidAmount     = errors.New("amount must be a positive value with at most 2 decimal places")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotFound          = errors.New("resource not found")
	ErrAlreadyProcessed  = errors.New("already processed")
	ErrInvalidSignature  = errors.New("invalid signature")
	ErrStorage           = errors.New("storage error")
	ErrInvalidInput      = errors.New("invalid input provided")
)

// StorageError wraps an unexpected persistence failure. It matches ErrStorage
// via errors.Is and unwraps to the underlying cause.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrStorage, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// NewStorageError wraps err as a StorageError for op. Domain errors pass through untouched.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsDomainError(err) {
		return err
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// IsDomainError reports whether err belongs to the ledger's typed taxonomy
// (anything other than a storage failure).
func IsDomainError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrInsufficientFunds),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrAlreadyProcessed),
		errors.Is(err, ErrInvalidSignature),
		errors.Is(err, ErrInvalidInput):
		return true
	}
	return false
}

// IsError is a thin wrapper over errors.Is used by the HTTP layer.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}

// ErrorReason returns a short machine-readable label for err, used in
// metrics and API error bodies.
func ErrorReason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyProcessed):
		return "already_processed"
	case errors.Is(err, ErrInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	default:
		return "storage"
	}
}
