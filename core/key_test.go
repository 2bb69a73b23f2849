package core

import (
	"errors"
	"testing"
)

func TestKeyValidate(t *testing.T) {
	if err := NewKey("u1", "gmail").Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var ve *ValidationError
	if err := NewKey("", "gmail").Validate(); !errors.As(err, &ve) || ve.Field != "userId" {
		t.Fatalf("expected userId validation error, got %v", err)
	}
	if err := NewKey("u1", "").Validate(); !errors.As(err, &ve) || ve.Field != "agentName" {
		t.Fatalf("expected agentName validation error, got %v", err)
	}
}

func TestKeyString(t *testing.T) {
	if got := NewKey("u1", "gmail").String(); got != "u1/gmail" {
		t.Fatalf("unexpected key string %q", got)
	}
}
