package history

import (
	"context"
	"sync"

	"github.com/lifeos/echo/core"
)

// InMemoryStore is a volatile HistoryStore keeping conversations in a process
// local map. It is safe for concurrent use: a single RWMutex serializes
// writers, so racing appends to the same key never lose an update. Loaded
// conversations are clones to prevent external mutation of internal state.
// State is lost on restart.
type InMemoryStore struct {
	mu            sync.RWMutex
	conversations map[string]*core.Conversation
}

// NewInMemoryStore constructs an empty in-memory history store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{conversations: make(map[string]*core.Conversation)}
}

// AppendTurn adds a turn to the key's conversation, creating it lazily, and
// trims the history to the most recent limit entries.
func (s *InMemoryStore) AppendTurn(ctx context.Context, key core.Key, turn core.Turn, limit int) error {
	if err := ctx.Err(); err != nil {
		return core.NewStorageError("append", key, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.conversations[key.String()]
	if !ok {
		conv = &core.Conversation{Key: key}
		s.conversations[key.String()] = conv
	}
	conv.AddTurn(turn, limit)
	return nil
}

// Load returns a clone of the key's conversation, or an empty conversation
// when the key is absent.
func (s *InMemoryStore) Load(ctx context.Context, key core.Key) (*core.Conversation, error) {
	if err := ctx.Err(); err != nil {
		return nil, core.NewStorageError("load", key, err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if conv, ok := s.conversations[key.String()]; ok {
		return conv.Clone(), nil
	}
	return &core.Conversation{Key: key}, nil
}

// Clear removes the key's conversation entirely. Clearing an absent key is a
// no-op success.
func (s *InMemoryStore) Clear(ctx context.Context, key core.Key) error {
	if err := ctx.Err(); err != nil {
		return core.NewStorageError("clear", key, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conversations, key.String())
	return nil
}

// Len reports how many keys currently hold state. Useful in tests asserting
// the absent/present lifecycle.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conversations)
}
