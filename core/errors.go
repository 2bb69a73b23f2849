package core

import (
	"errors"
	"fmt"
)

// ValidationError reports an invalid caller-supplied argument (empty user id,
// empty agent name, unknown role). It is raised synchronously before any I/O
// and is never worth retrying.
type ValidationError struct {
	Field   string `json:"field"`   // Field that failed validation
	Value   any    `json:"value,omitempty"`
	Message string `json:"message"` // Human-readable error message
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// StorageError wraps a persistence backend failure (timeout, unavailable,
// serialization conflict) with the operation and key it occurred under. The
// store performs no silent retries and keeps no fallback cache; retrying is
// the caller's decision. Both append and clear are safe to replay.
type StorageError struct {
	Op  string
	Key Key
	Err error
}

// Error implements the error interface for StorageError.
func (e *StorageError) Error() string {
	return fmt.Sprintf("history store: %s %s: %v", e.Op, e.Key, e.Err)
}

// Unwrap exposes the underlying backend error to errors.Is/As chains.
func (e *StorageError) Unwrap() error { return e.Err }

// NewStorageError wraps err with operation and key context.
func NewStorageError(op string, key Key, err error) *StorageError {
	return &StorageError{Op: op, Key: key, Err: err}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsStorageError reports whether err is (or wraps) a StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
