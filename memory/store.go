package memory

import (
	"context"
	"time"

	"github.com/lifeos/echo/core"
	"github.com/lifeos/echo/logging"
)

// Production defaults for the capacity and rendering knobs. All of them are
// plain configuration on Options so tests can run with tiny limits.
const (
	// DefaultHistoryLimit caps how many turns a key retains.
	DefaultHistoryLimit = 20
	// DefaultWorkingMemoryTurns is how many recent turns the rendered
	// digest includes.
	DefaultWorkingMemoryTurns = 5
	// DefaultTruncateAt bounds the content length per rendered line.
	DefaultTruncateAt = 100
)

// Options configures a Store.
type Options struct {
	// HistoryLimit is the maximum number of turns retained per
	// (user, agent) key. Appends beyond it discard the oldest turns first.
	HistoryLimit int

	// WorkingMemoryTurns is the digest size RenderWorkingMemory uses when
	// the caller passes a non-positive limit.
	WorkingMemoryTurns int

	// TruncateAt is the per-line content cap in the rendered digest.
	TruncateAt int

	// Clock supplies append timestamps. Swapped for a fixed clock in tests.
	Clock func() time.Time

	// Logger receives debug events for store operations.
	Logger logging.Logger
}

// Store is the bounded conversation-memory service. It owns the append
// discipline (validate, stamp, append-then-trim) and the working-memory
// rendering; the atomic per-key write itself is the backend's contract.
//
// A Store is safe for concurrent use as long as its backend is.
type Store struct {
	history core.HistoryStore
	opts    Options
}

// NewStore wraps a history backend with the memory service.
//
//	store := memory.NewStore(history.NewInMemoryStore(), func(o *memory.Options) {
//		o.HistoryLimit = 2
//	})
func NewStore(history core.HistoryStore, optFns ...func(o *Options)) *Store {
	opts := Options{
		HistoryLimit:       DefaultHistoryLimit,
		WorkingMemoryTurns: DefaultWorkingMemoryTurns,
		TruncateAt:         DefaultTruncateAt,
		Clock:              func() time.Time { return time.Now().UTC() },
		Logger:             logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	if opts.WorkingMemoryTurns <= 0 {
		opts.WorkingMemoryTurns = DefaultWorkingMemoryTurns
	}
	if opts.TruncateAt <= 0 {
		opts.TruncateAt = DefaultTruncateAt
	}
	if opts.Clock == nil {
		opts.Clock = func() time.Time { return time.Now().UTC() }
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &Store{history: history, opts: opts}
}

// HistoryLimit returns the configured per-key capacity.
func (s *Store) HistoryLimit() int { return s.opts.HistoryLimit }

// Append validates the input, stamps a new turn and persists it under the
// (userID, agentName) key, trimming the history to the capacity limit. The
// stamped turn is returned. Empty content is allowed; empty identifiers and
// unknown roles are rejected with a ValidationError before any I/O.
func (s *Store) Append(ctx context.Context, userID, agentName string, role core.Role, content string, metadata map[string]any) (core.Turn, error) {
	key := core.NewKey(userID, agentName)
	if err := key.Validate(); err != nil {
		return core.Turn{}, err
	}
	if !role.Valid() {
		return core.Turn{}, &core.ValidationError{
			Field:   "role",
			Value:   string(role),
			Message: "must be one of user, assistant, system",
		}
	}

	// Clone detaches the caller's metadata map from the stored turn.
	turn := core.Turn{
		ID:        core.NewID(),
		Role:      role,
		Content:   content,
		Metadata:  metadata,
		CreatedAt: s.opts.Clock(),
	}.Clone()

	if err := s.history.AppendTurn(ctx, key, turn, s.opts.HistoryLimit); err != nil {
		return core.Turn{}, err
	}

	s.opts.Logger.Debug("turn appended", "key", key.String(), "role", string(role), "turn_id", turn.ID)

	return turn, nil
}

// Recent returns up to limit of the most recent turns for the key in
// chronological (oldest-first) order. A limit beyond the stored count returns
// everything; an absent key yields an empty slice, not an error.
func (s *Store) Recent(ctx context.Context, userID, agentName string, limit int) ([]core.Turn, error) {
	key := core.NewKey(userID, agentName)
	if err := key.Validate(); err != nil {
		return nil, err
	}

	conv, err := s.history.Load(ctx, key)
	if err != nil {
		return nil, err
	}

	return conv.Recent(limit), nil
}

// RenderWorkingMemory produces the plain-text digest of the most recent limit
// turns, one line per turn. A non-positive limit falls back to the configured
// digest size. An absent key (or one with no turns) yields the fixed
// non-empty sentinel so callers can always inject the result into a prompt.
func (s *Store) RenderWorkingMemory(ctx context.Context, userID, agentName string, limit int) (string, error) {
	if limit <= 0 {
		limit = s.opts.WorkingMemoryTurns
	}

	turns, err := s.Recent(ctx, userID, agentName, limit)
	if err != nil {
		return "", err
	}

	return renderTurns(turns, s.opts.TruncateAt), nil
}

// Clear removes the key's stored state entirely, so the key reverts to
// absent. Clearing a key that holds no state is a no-op success.
func (s *Store) Clear(ctx context.Context, userID, agentName string) error {
	key := core.NewKey(userID, agentName)
	if err := key.Validate(); err != nil {
		return err
	}

	if err := s.history.Clear(ctx, key); err != nil {
		return err
	}

	s.opts.Logger.Debug("history cleared", "key", key.String())

	return nil
}
