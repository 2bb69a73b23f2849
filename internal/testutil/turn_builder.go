package testutil

import (
	"context"
	"fmt"
	"time"

	"github.com/lifeos/echo/core"
)

// TurnBuilder provides a fluent helper for constructing turns in tests.
// Example:
//
//	turn := NewTurnBuilder().Assistant("hello").At(ts).Build()
//
// Chain only the parts you need; sensible defaults are applied.
type TurnBuilder struct {
	role     core.Role
	content  string
	id       string
	metadata map[string]any
	at       time.Time
}

// NewTurnBuilder creates a builder defaulting to a user turn.
func NewTurnBuilder() *TurnBuilder {
	return &TurnBuilder{role: core.RoleUser}
}

// User sets role user with the given content (chainable).
func (b *TurnBuilder) User(content string) *TurnBuilder {
	b.role, b.content = core.RoleUser, content
	return b
}

// Assistant sets role assistant with the given content (chainable).
func (b *TurnBuilder) Assistant(content string) *TurnBuilder {
	b.role, b.content = core.RoleAssistant, content
	return b
}

// System sets role system with the given content (chainable).
func (b *TurnBuilder) System(content string) *TurnBuilder {
	b.role, b.content = core.RoleSystem, content
	return b
}

// ID overrides the auto-generated turn id. Use where determinism matters.
func (b *TurnBuilder) ID(id string) *TurnBuilder { b.id = id; return b }

// Meta attaches a metadata key/value pair (chainable).
func (b *TurnBuilder) Meta(key string, val any) *TurnBuilder {
	if b.metadata == nil {
		b.metadata = map[string]any{}
	}
	b.metadata[key] = val
	return b
}

// At pins the turn timestamp (chainable).
func (b *TurnBuilder) At(ts time.Time) *TurnBuilder { b.at = ts; return b }

// Build returns the assembled core.Turn.
func (b *TurnBuilder) Build() core.Turn {
	turn := core.NewTurn(b.role, b.content)
	if b.id != "" {
		turn.ID = b.id
	}
	if b.metadata != nil {
		turn.Metadata = b.metadata
	}
	if !b.at.IsZero() {
		turn.CreatedAt = b.at
	}
	return turn
}

// SeedHistory appends numbered user turns ("m0".."m<n-1>") for the key,
// failing the provided fataler on error. Handy for trim and isolation tests.
func SeedHistory(t interface{ Fatalf(string, ...any) }, store core.HistoryStore, key core.Key, n, limit int) {
	for i := 0; i < n; i++ {
		turn := core.NewUserTurn(fmt.Sprintf("m%d", i))
		if err := store.AppendTurn(context.Background(), key, turn, limit); err != nil {
			t.Fatalf("seed append %d failed: %v", i, err)
		}
	}
}
