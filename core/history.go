package core

import (
	"context"
	"time"
)

// Conversation is the per-key memory state: an ordered turn history plus the
// timestamp of the most recent mutation. Turns are kept in insertion order;
// the store never reorders or deduplicates by content.
//
// A key is either absent (no record) or present with 0..limit turns. Absence
// is represented by an empty Conversation on reads, never by an error.
type Conversation struct {
	Key            Key       `json:"key"`
	Turns          []Turn    `json:"turns"`
	LastActivityAt time.Time `json:"last_activity_at"`
}

// AddTurn appends a turn, trims the history to the most recent limit entries
// (oldest discarded first) and advances LastActivityAt. A non-positive limit
// disables trimming.
func (c *Conversation) AddTurn(turn Turn, limit int) {
	c.Turns = append(c.Turns, turn)
	if limit > 0 && len(c.Turns) > limit {
		c.Turns = c.Turns[len(c.Turns)-limit:]
	}
	c.LastActivityAt = turn.CreatedAt
}

// Recent returns up to limit of the most recent turns in chronological
// (oldest-first) order. A non-positive limit returns all turns. The result is
// a defensive copy.
func (c *Conversation) Recent(limit int) []Turn {
	turns := c.Turns
	if limit > 0 && len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	out := make([]Turn, len(turns))
	for i, t := range turns {
		out[i] = t.Clone()
	}
	return out
}

// Clone returns a deep copy of the conversation safe for independent mutation.
func (c *Conversation) Clone() *Conversation {
	clone := &Conversation{Key: c.Key, Turns: make([]Turn, len(c.Turns)), LastActivityAt: c.LastActivityAt}
	for i, t := range c.Turns {
		clone.Turns[i] = t.Clone()
	}
	return clone
}

// HistoryStore persists per-key conversation state.
//
// Contract:
//   - AppendTurn performs append+trim+persist as one atomic write per key;
//     concurrent appends to the same key must not lose an update, appends to
//     different keys proceed independently
//   - Load returns an empty Conversation (not an error) when the key is absent
//   - Clear removes the key entirely and succeeds when it is already absent
//   - Every call is bounded by the implementation's operation timeout and
//     failures are wrapped in *StorageError
type HistoryStore interface {
	AppendTurn(ctx context.Context, key Key, turn Turn, limit int) error
	Load(ctx context.Context, key Key) (*Conversation, error)
	Clear(ctx context.Context, key Key) error
}
