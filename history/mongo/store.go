package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/lifeos/echo/core"
)

const (
	defaultCollection = "conversations"
	defaultOpTimeout  = 5 * time.Second
)

// Options configures the Mongo history store.
type Options struct {
	Client     *mongodriver.Client
	Database   string
	Collection string
	Timeout    time.Duration
}

// Store implements core.HistoryStore on MongoDB.
type Store struct {
	mongo         *mongodriver.Client
	conversations collection
	timeout       time.Duration
}

// New returns a Store backed by MongoDB and ensures the unique key index.
func New(opts Options) (*Store, error) {
	if opts.Client == nil {
		return nil, errors.New("mongo client is required")
	}
	if opts.Database == "" {
		return nil, errors.New("database name is required")
	}
	collectionName := opts.Collection
	if collectionName == "" {
		collectionName = defaultCollection
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultOpTimeout
	}
	coll := mongoCollection{coll: opts.Client.Database(opts.Database).Collection(collectionName)}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := ensureIndexes(ctx, coll); err != nil {
		return nil, err
	}
	return newStoreWithCollection(opts.Client, coll, timeout), nil
}

func newStoreWithCollection(mongoClient *mongodriver.Client, coll collection, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = defaultOpTimeout
	}
	return &Store{mongo: mongoClient, conversations: coll, timeout: timeout}
}

// Ping verifies connectivity to the primary.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.mongo.Ping(ctx, readpref.Primary())
}

// AppendTurn upserts the key's document, pushing the turn and trimming the
// array in the same write. A negative $slice keeps the last limit elements,
// which is exactly the append-then-drop-oldest discipline.
func (s *Store) AppendTurn(ctx context.Context, key core.Key, turn core.Turn, limit int) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	push := bson.M{"$each": bson.A{fromTurn(turn)}}
	if limit > 0 {
		push["$slice"] = -limit
	}
	update := bson.M{
		"$push": bson.M{"turns": push},
		"$set":  bson.M{"last_activity_at": turn.CreatedAt.UTC()},
	}
	if _, err := s.conversations.UpdateOne(ctx, keyFilter(key), update, options.Update().SetUpsert(true)); err != nil {
		return core.NewStorageError("append", key, err)
	}
	return nil
}

// Load returns the key's conversation, or an empty one when no document
// exists.
func (s *Store) Load(ctx context.Context, key core.Key) (*core.Conversation, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var doc conversationDocument
	if err := s.conversations.FindOne(ctx, keyFilter(key)).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return &core.Conversation{Key: key}, nil
		}
		return nil, core.NewStorageError("load", key, err)
	}
	return doc.toConversation(), nil
}

// Clear deletes the key's document. Deleting a missing document is a no-op
// success.
func (s *Store) Clear(ctx context.Context, key core.Key) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.conversations.DeleteOne(ctx, keyFilter(key)); err != nil {
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

func keyFilter(key core.Key) bson.M {
	return bson.M{"user_id": key.UserID, "agent_name": key.AgentName}
}

func ensureIndexes(ctx context.Context, coll collection) error {
	keyIndex := mongodriver.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "agent_name", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	_, err := coll.Indexes().CreateOne(ctx, keyIndex)
	return err
}

type turnDocument struct {
	ID        string         `bson:"id"`
	Role      string         `bson:"role"`
	Content   string         `bson:"content"`
	Metadata  map[string]any `bson:"metadata,omitempty"`
	CreatedAt time.Time      `bson:"created_at"`
}

type conversationDocument struct {
	UserID         string         `bson:"user_id"`
	AgentName      string         `bson:"agent_name"`
	Turns          []turnDocument `bson:"turns"`
	LastActivityAt time.Time      `bson:"last_activity_at"`
}

func fromTurn(turn core.Turn) turnDocument {
	return turnDocument{
		ID:        turn.ID,
		Role:      string(turn.Role),
		Content:   turn.Content,
		Metadata:  turn.Metadata,
		CreatedAt: turn.CreatedAt.UTC(),
	}
}

func (doc turnDocument) toTurn() core.Turn {
	return core.Turn{
		ID:        doc.ID,
		Role:      core.Role(doc.Role),
		Content:   doc.Content,
		Metadata:  doc.Metadata,
		CreatedAt: doc.CreatedAt,
	}
}

func (doc conversationDocument) toConversation() *core.Conversation {
	conv := &core.Conversation{
		Key:            core.NewKey(doc.UserID, doc.AgentName),
		Turns:          make([]core.Turn, len(doc.Turns)),
		LastActivityAt: doc.LastActivityAt,
	}
	for i, td := range doc.Turns {
		conv.Turns[i] = td.toTurn()
	}
	return conv
}

// Thin seams over the driver types so the store logic is unit-testable
// without a running MongoDB.

type collection interface {
	FindOne(ctx context.Context, filter any, opts ...*options.FindOneOptions) singleResult
	UpdateOne(ctx context.Context, filter any, update any,
		opts ...*options.UpdateOptions) (*mongodriver.UpdateResult, error)
	DeleteOne(ctx context.Context, filter any,
		opts ...*options.DeleteOptions) (*mongodriver.DeleteResult, error)
	Indexes() indexView
}

type indexView interface {
	CreateOne(ctx context.Context, model mongodriver.IndexModel,
		opts ...*options.CreateIndexesOptions) (string, error)
}

type singleResult interface {
	Decode(val any) error
}

type mongoCollection struct {
	coll *mongodriver.Collection
}

func (c mongoCollection) FindOne(ctx context.Context, filter any, opts ...*options.FindOneOptions) singleResult {
	return c.coll.FindOne(ctx, filter, opts...)
}

func (c mongoCollection) UpdateOne(ctx context.Context, filter any, update any,
	opts ...*options.UpdateOptions) (*mongodriver.UpdateResult, error) {
	return c.coll.UpdateOne(ctx, filter, update, opts...)
}

func (c mongoCollection) DeleteOne(ctx context.Context, filter any,
	opts ...*options.DeleteOptions) (*mongodriver.DeleteResult, error) {
	return c.coll.DeleteOne(ctx, filter, opts...)
}

func (c mongoCollection) Indexes() indexView {
	return c.coll.Indexes()
}
