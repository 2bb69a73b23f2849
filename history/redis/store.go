package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lifeos/echo/core"
)

const (
	defaultKeyPrefix = "echo:history"
	defaultOpTimeout = 5 * time.Second
)

// Options configures the Redis history store.
type Options struct {
	// Client is the shared Redis client. Required; the store does not own
	// it and never closes it.
	Client *redis.Client
	// KeyPrefix namespaces the conversation keys. Defaults to
	// "echo:history".
	KeyPrefix string
	// Timeout bounds each storage operation.
	Timeout time.Duration
}

// Store implements core.HistoryStore on Redis.
type Store struct {
	rdb     *redis.Client
	prefix  string
	timeout time.Duration
}

// New returns a Store backed by the given Redis client.
func New(opts Options) (*Store, error) {
	if opts.Client == nil {
		return nil, errors.New("redis client is required")
	}
	prefix := opts.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultOpTimeout
	}
	return &Store{rdb: opts.Client, prefix: prefix, timeout: timeout}, nil
}

// Ping verifies connectivity.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return nil
}

// AppendTurn pushes the encoded turn, trims the list to the most recent limit
// entries and records the activity timestamp, all in one transaction.
func (s *Store) AppendTurn(ctx context.Context, key core.Key, turn core.Turn, limit int) error {
	payload, err := json.Marshal(fromTurn(turn))
	if err != nil {
		return core.NewStorageError("append", key, err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, s.turnsKey(key), payload)
		if limit > 0 {
			// Negative start keeps the last limit elements.
			pipe.LTrim(ctx, s.turnsKey(key), int64(-limit), -1)
		}
		pipe.Set(ctx, s.activityKey(key), turn.CreatedAt.UTC().Format(time.RFC3339Nano), 0)
		return nil
	})
	if err != nil {
		return core.NewStorageError("append", key, err)
	}
	return nil
}

// Load reads the whole list for the key. An absent key yields an empty
// conversation.
func (s *Store) Load(ctx context.Context, key core.Key) (*core.Conversation, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	raw, err := s.rdb.LRange(ctx, s.turnsKey(key), 0, -1).Result()
	if err != nil {
		return nil, core.NewStorageError("load", key, err)
	}

	conv := &core.Conversation{Key: key, Turns: make([]core.Turn, 0, len(raw))}
	for _, item := range raw {
		var rec turnRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, core.NewStorageError("load", key, err)
		}
		conv.Turns = append(conv.Turns, rec.toTurn())
	}

	stamp, err := s.rdb.Get(ctx, s.activityKey(key)).Result()
	switch {
	case errors.Is(err, redis.Nil):
		// Absent key; LastActivityAt stays zero.
	case err != nil:
		return nil, core.NewStorageError("load", key, err)
	default:
		at, err := time.Parse(time.RFC3339Nano, stamp)
		if err != nil {
			return nil, core.NewStorageError("load", key, err)
		}
		conv.LastActivityAt = at
	}

	return conv, nil
}

// Clear deletes both keys for the conversation. Deleting absent keys is a
// no-op success.
func (s *Store) Clear(ctx context.Context, key core.Key) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.rdb.Del(ctx, s.turnsKey(key), s.activityKey(key)).Err(); err != nil {
		return core.NewStorageError("clear", key, err)
	}
	return nil
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Store) turnsKey(key core.Key) string {
	return fmt.Sprintf("%s:%s", s.prefix, key)
}

func (s *Store) activityKey(key core.Key) string {
	return s.turnsKey(key) + ":activity"
}

type turnRecord struct {
	ID        string         `json:"id"`
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

func fromTurn(turn core.Turn) turnRecord {
	return turnRecord{
		ID:        turn.ID,
		Role:      string(turn.Role),
		Content:   turn.Content,
		Metadata:  turn.Metadata,
		CreatedAt: turn.CreatedAt.UTC(),
	}
}

func (rec turnRecord) toTurn() core.Turn {
	return core.Turn{
		ID:        rec.ID,
		Role:      core.Role(rec.Role),
		Content:   rec.Content,
		Metadata:  rec.Metadata,
		CreatedAt: rec.CreatedAt,
	}
}
