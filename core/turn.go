package core

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies who produced a conversation turn.
type Role string

const (
	// RoleUser marks a turn authored by the end user.
	RoleUser Role = "user"
	// RoleAssistant marks a turn authored by an agent.
	RoleAssistant Role = "assistant"
	// RoleSystem marks an injected system turn.
	RoleSystem Role = "system"
)

// Valid reports whether the role is one of the recognized values.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	default:
		return false
	}
}

// Turn is one role-tagged message in a conversation. After persistence it
// should be treated as immutable. It captures:
//   - Correlation (ID)
//   - Authorship (Role)
//   - The message body (Content, may be empty)
//   - Opaque caller metadata passed through unexamined
//   - The append timestamp (UTC, monotonically non-decreasing per key)
type Turn struct {
	ID        string         `json:"id"`
	Role      Role           `json:"role"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// NewTurn creates a turn with a fresh id and UTC timestamp. Prefer the
// role-specific constructors at call sites.
func NewTurn(role Role, content string) Turn {
	return Turn{ID: NewID(), Role: role, Content: content, CreatedAt: time.Now().UTC()}
}

// NewUserTurn creates a user-authored turn.
func NewUserTurn(content string) Turn { return NewTurn(RoleUser, content) }

// NewAssistantTurn creates an agent-authored turn.
func NewAssistantTurn(content string) Turn { return NewTurn(RoleAssistant, content) }

// NewSystemTurn creates a system turn.
func NewSystemTurn(content string) Turn { return NewTurn(RoleSystem, content) }

// Clone returns a copy with its own metadata map so callers can mutate the
// result without affecting stored state.
func (t Turn) Clone() Turn {
	c := t
	c.Metadata = cloneMetadata(t.Metadata)
	return c
}

// NewID generates a new unique identifier for turns.
//
// This function creates a UUID-based unique identifier that can be used
// for turn tracking and correlation across storage backends.
//
// Returns a string representation of a new UUID.
func NewID() string { return uuid.NewString() }

func cloneMetadata(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
