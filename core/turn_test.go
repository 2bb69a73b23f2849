package core

import (
	"testing"
	"time"
)

func TestRoleValid(t *testing.T) {
	valid := []Role{RoleUser, RoleAssistant, RoleSystem}
	for _, r := range valid {
		if !r.Valid() {
			t.Fatalf("expected %q to be valid", r)
		}
	}
	invalid := []Role{"", "tool", "User", "ASSISTANT"}
	for _, r := range invalid {
		if r.Valid() {
			t.Fatalf("expected %q to be invalid", r)
		}
	}
}

func TestNewTurn(t *testing.T) {
	before := time.Now().UTC()
	turn := NewTurn(RoleUser, "hello")
	after := time.Now().UTC()

	if turn.ID == "" {
		t.Fatalf("expected non-empty id")
	}
	if turn.Role != RoleUser {
		t.Fatalf("expected role %q, got %q", RoleUser, turn.Role)
	}
	if turn.Content != "hello" {
		t.Fatalf("unexpected content %q", turn.Content)
	}
	if turn.CreatedAt.Before(before) || turn.CreatedAt.After(after) {
		t.Fatalf("timestamp %v outside [%v, %v]", turn.CreatedAt, before, after)
	}
	if turn.CreatedAt.Location() != time.UTC {
		t.Fatalf("expected UTC timestamp, got %v", turn.CreatedAt.Location())
	}
}

func TestTurnConstructors(t *testing.T) {
	if got := NewUserTurn("a").Role; got != RoleUser {
		t.Fatalf("expected user role, got %q", got)
	}
	if got := NewAssistantTurn("b").Role; got != RoleAssistant {
		t.Fatalf("expected assistant role, got %q", got)
	}
	if got := NewSystemTurn("c").Role; got != RoleSystem {
		t.Fatalf("expected system role, got %q", got)
	}
	// ids must differ between turns
	if NewUserTurn("x").ID == NewUserTurn("x").ID {
		t.Fatalf("expected unique ids per turn")
	}
}

func TestTurnCloneMetadataIsolation(t *testing.T) {
	turn := NewUserTurn("hi")
	turn.Metadata = map[string]any{"source": "mobile"}

	clone := turn.Clone()
	clone.Metadata["source"] = "web"

	if turn.Metadata["source"] != "mobile" {
		t.Fatalf("clone mutation leaked into original: %#v", turn.Metadata)
	}
}
