package history

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/lifeos/echo/core"
)

// Interface compliance (compile-time assertion)
var _ core.HistoryStore = (*InMemoryStore)(nil)

func TestInMemoryStore_AppendTrims(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	key := core.NewKey("u1", "gmail")

	var last core.Turn
	for _, content := range []string{"a", "b", "c", "d"} {
		last = core.NewUserTurn(content)
		if err := store.AppendTurn(ctx, key, last, 3); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	conv, err := store.Load(ctx, key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(conv.Turns) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(conv.Turns))
	}
	for i, want := range []string{"b", "c", "d"} {
		if conv.Turns[i].Content != want {
			t.Fatalf("turn %d: expected %q, got %q", i, want, conv.Turns[i].Content)
		}
	}
	if !conv.LastActivityAt.Equal(last.CreatedAt) {
		t.Fatalf("expected last activity %v, got %v", last.CreatedAt, conv.LastActivityAt)
	}
}

func TestInMemoryStore_KeyIsolation(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	if err := store.AppendTurn(ctx, core.NewKey("u1", "gmail"), core.NewUserTurn("for u1"), 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, key := range []core.Key{core.NewKey("u2", "gmail"), core.NewKey("u1", "calendar")} {
		conv, err := store.Load(ctx, key)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(conv.Turns) != 0 {
			t.Fatalf("expected no turns for %s, got %d", key, len(conv.Turns))
		}
	}
}

func TestInMemoryStore_LoadAbsent(t *testing.T) {
	store := NewInMemoryStore()

	conv, err := store.Load(context.Background(), core.NewKey("u1", "gmail"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(conv.Turns) != 0 {
		t.Fatalf("expected empty conversation, got %d turns", len(conv.Turns))
	}
	if store.Len() != 0 {
		t.Fatalf("load must not create state, got %d keys", store.Len())
	}
}

func TestInMemoryStore_LoadReturnsClone(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	key := core.NewKey("u1", "gmail")

	if err := store.AppendTurn(ctx, key, core.NewUserTurn("original"), 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	conv, _ := store.Load(ctx, key)
	conv.Turns[0].Content = "mutated"

	reloaded, _ := store.Load(ctx, key)
	if reloaded.Turns[0].Content != "original" {
		t.Fatalf("expected stored state untouched, got %q", reloaded.Turns[0].Content)
	}
}

func TestInMemoryStore_ClearIdempotent(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	key := core.NewKey("u1", "gmail")

	if err := store.AppendTurn(ctx, key, core.NewUserTurn("hi"), 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 key, got %d", store.Len())
	}

	if err := store.Clear(ctx, key); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Clear(ctx, key); err != nil {
		t.Fatalf("second clear must succeed, got %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("expected key absent after clear, got %d keys", store.Len())
	}
}

func TestInMemoryStore_ConcurrentAppends(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	key := core.NewKey("u1", "gmail")

	const writers = 50
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			turn := core.NewUserTurn(fmt.Sprintf("m%d", i))
			if err := store.AppendTurn(ctx, key, turn, writers); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	conv, err := store.Load(ctx, key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(conv.Turns) != writers {
		t.Fatalf("lost updates: expected %d turns, got %d", writers, len(conv.Turns))
	}
}

func TestInMemoryStore_ContextCanceled(t *testing.T) {
	store := NewInMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	key := core.NewKey("u1", "gmail")

	err := store.AppendTurn(ctx, key, core.NewUserTurn("hi"), 10)
	if !core.IsStorageError(err) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled in chain, got %v", err)
	}
}
