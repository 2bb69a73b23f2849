package mysql

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lifeos/echo/core"
)

const defaultOpTimeout = 5 * time.Second

// Options configures the MySQL history store.
type Options struct {
	// DB is the shared GORM handle. Required; the store does not own it
	// and never closes it.
	DB *gorm.DB
	// Timeout bounds each storage operation.
	Timeout time.Duration
}

// Store implements core.HistoryStore on MySQL.
type Store struct {
	db      *gorm.DB
	timeout time.Duration
}

// New returns a Store backed by the given GORM handle.
func New(opts Options) (*Store, error) {
	if opts.DB == nil {
		return nil, errors.New("gorm db handle is required")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultOpTimeout
	}
	return &Store{db: opts.DB, timeout: timeout}, nil
}

// Migrate creates or updates the conversations table.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&conversationRow{}); err != nil {
		return fmt.Errorf("migrate conversations table: %w", err)
	}
	return nil
}

// Ping verifies connectivity.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to connect to MySQL: %w", err)
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to connect to MySQL: %w", err)
	}
	return nil
}

// AppendTurn appends within one transaction: make sure the row exists, lock
// it, apply append+trim and write back. The insert-if-absent step keeps two
// first-appends for a fresh key from racing past each other; after it, the
// row lock serializes every writer for the key.
func (s *Store) AppendTurn(ctx context.Context, key core.Key, turn core.Turn, limit int) error {
	timeoutCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	err := s.db.WithContext(timeoutCtx).Transaction(func(tx *gorm.DB) error {
		seed := conversationRow{
			UserID:         key.UserID,
			AgentName:      key.AgentName,
			Turns:          turnsJSON{},
			LastActivityAt: turn.CreatedAt.UTC(),
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return err
		}

		var row conversationRow
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND agent_name = ?", key.UserID, key.AgentName).
			First(&row).Error; err != nil {
			return err
		}

		row.apply(fromTurn(turn), limit)

		return tx.Model(&conversationRow{}).
			Where("user_id = ? AND agent_name = ?", key.UserID, key.AgentName).
			Updates(map[string]any{
				"turns":            row.Turns,
				"last_activity_at": row.LastActivityAt,
			}).Error
	})
	if err != nil {
		return core.NewStorageError("append", key, err)
	}
	return nil
}

// Load returns the key's conversation, or an empty one when no row exists.
func (s *Store) Load(ctx context.Context, key core.Key) (*core.Conversation, error) {
	timeoutCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	var row conversationRow
	err := s.db.WithContext(timeoutCtx).
		Where("user_id = ? AND agent_name = ?", key.UserID, key.AgentName).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &core.Conversation{Key: key}, nil
	}
	if err != nil {
		return nil, core.NewStorageError("load", key, err)
	}
	return row.toConversation(), nil
}

// Clear deletes the key's row. Deleting a missing row is a no-op success.
func (s *Store) Clear(ctx context.Context, key core.Key) error {
	timeoutCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	err := s.db.WithContext(timeoutCtx).
		Where("user_id = ? AND agent_name = ?", key.UserID, key.AgentName).
		Delete(&conversationRow{}).Error
	if err != nil {
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

type conversationRow struct {
	UserID         string    `gorm:"column:user_id;primaryKey;size:191"`
	AgentName      string    `gorm:"column:agent_name;primaryKey;size:191"`
	Turns          turnsJSON `gorm:"column:turns"`
	LastActivityAt time.Time `gorm:"column:last_activity_at"`
}

func (conversationRow) TableName() string { return "conversations" }

// apply is the append-then-trim step on the locked row.
func (r *conversationRow) apply(rec turnRecord, limit int) {
	r.Turns = append(r.Turns, rec)
	if limit > 0 && len(r.Turns) > limit {
		r.Turns = r.Turns[len(r.Turns)-limit:]
	}
	r.LastActivityAt = rec.CreatedAt
}

func (r conversationRow) toConversation() *core.Conversation {
	conv := &core.Conversation{
		Key:            core.NewKey(r.UserID, r.AgentName),
		Turns:          make([]core.Turn, len(r.Turns)),
		LastActivityAt: r.LastActivityAt,
	}
	for i, rec := range r.Turns {
		conv.Turns[i] = rec.toTurn()
	}
	return conv
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

// turnsJSON serializes the turn list into a single JSON column.
type turnsJSON []turnRecord

// Value implements driver.Valuer.
func (t turnsJSON) Value() (driver.Value, error) {
	return json.Marshal(t)
}

// Scan implements sql.Scanner.
func (t *turnsJSON) Scan(value any) error {
	if value == nil {
		*t = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, t)
	case string:
		return json.Unmarshal([]byte(v), t)
	default:
		return fmt.Errorf("unsupported turns column type %T", value)
	}
}
