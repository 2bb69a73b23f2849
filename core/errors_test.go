package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Field: "role", Message: "must be one of user, assistant, system"}
	want := "validation error for field 'role': must be one of user, assistant, system"
	if err.Error() != want {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestStorageErrorWrapping(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewStorageError("append", NewKey("u1", "gmail"), cause)

	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause to be reachable via errors.Is")
	}
	if got := err.Error(); got != "history store: append u1/gmail: connection refused" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestErrorPredicates(t *testing.T) {
	se := NewStorageError("load", NewKey("u1", "gmail"), errors.New("boom"))
	ve := &ValidationError{Field: "userId", Message: "must not be empty"}

	if !IsStorageError(se) || IsStorageError(ve) {
		t.Fatalf("IsStorageError misclassified")
	}
	if !IsValidationError(ve) || IsValidationError(se) {
		t.Fatalf("IsValidationError misclassified")
	}

	// predicates see through fmt.Errorf wrapping
	wrapped := fmt.Errorf("chat failed: %w", se)
	if !IsStorageError(wrapped) {
		t.Fatalf("expected wrapped storage error to be detected")
	}
}
