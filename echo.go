// Package echo provides a high-level façade over the chat pipeline and its
// services (mention routing, conversation memory, agent executors, HTTP
// surface). Most applications interact with this package by:
//  1. Creating an Echo via New() (optionally overriding the in-memory history store)
//  2. Registering one or more agent executors (mock, anthropic, openai, remote)
//  3. Sending messages with Chat (mention-routed) or ChatWith (explicit agent)
//
// The façade delegates the chat flow to runner.Runner while keeping setup and
// usage ergonomics concise. All defaults are safe for local development and
// testing; production deployments typically supply a durable history store
// and a structured logger.
package echo

import (
	"context"
	"net/http"

	"github.com/lifeos/echo/core"
	"github.com/lifeos/echo/executor"
	"github.com/lifeos/echo/history"
	"github.com/lifeos/echo/logging"
	"github.com/lifeos/echo/memory"
	"github.com/lifeos/echo/router"
	"github.com/lifeos/echo/runner"
	"github.com/lifeos/echo/server"
)

// DefaultAgent handles messages that carry no mention.
const DefaultAgent = "gmail"

// DefaultAliases returns the built-in mention shorthands.
func DefaultAliases() map[string]string {
	return map[string]string{
		"mail": "gmail",
		"cal":  "calendar",
		"mem":  "memory",
	}
}

// Options configures the Echo instance.
type Options struct {
	// DefaultAgent receives messages without a mention.
	DefaultAgent string

	// Aliases maps mention shorthands to canonical agent names.
	Aliases map[string]string

	// HistoryLimit caps the retained turns per (user, agent) conversation.
	HistoryLimit int

	// WorkingMemoryTurns sets how many recent turns the rendered digest covers.
	WorkingMemoryTurns int

	// ComingSoonTemplate formats the canned reply for unimplemented agents.
	// Must contain one %s verb for the agent name.
	ComingSoonTemplate string

	// Store persists conversation history (defaults to in-memory).
	Store core.HistoryStore

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Echo is the high-level façade aggregating the chat pipeline and services.
type Echo struct {
	opts      Options
	store     *memory.Store
	directory *router.Directory
	runner    *runner.Runner
}

// New creates a new Echo instance with optional overrides. Any unset service
// is initialized with an in-memory implementation.
func New(optFns ...func(o *Options)) *Echo {
	opts := Options{
		DefaultAgent:       DefaultAgent,
		Aliases:            DefaultAliases(),
		HistoryLimit:       memory.DefaultHistoryLimit,
		WorkingMemoryTurns: memory.DefaultWorkingMemoryTurns,
		ComingSoonTemplate: router.DefaultComingSoonTemplate,
		Store:              history.NewInMemoryStore(),
		Logger:             logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Store == nil {
		opts.Store = history.NewInMemoryStore()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	store := memory.NewStore(opts.Store, func(o *memory.Options) {
		o.HistoryLimit = opts.HistoryLimit
		o.WorkingMemoryTurns = opts.WorkingMemoryTurns
		o.Logger = opts.Logger
	})

	directory := router.NewDirectory(opts.DefaultAgent, opts.Aliases, func(o *router.DirectoryOptions) {
		if opts.ComingSoonTemplate != "" {
			o.ComingSoonTemplate = opts.ComingSoonTemplate
		}
	})

	run := runner.New(store, directory, func(o *runner.Options) {
		o.Logger = opts.Logger
	})

	return &Echo{
		opts:      opts,
		store:     store,
		directory: directory,
		runner:    run,
	}
}

// RegisterAgent adds (or replaces) the executor serving an agent, marking the
// agent as implemented in the directory.
func (e *Echo) RegisterAgent(name string, ex executor.Executor) {
	e.directory.Register(name, ex)
}

// Chat routes message by its mention (falling back to the default agent),
// records the exchange in conversation memory, and returns the agent's reply.
func (e *Echo) Chat(ctx context.Context, userID, message string) (*runner.Reply, error) {
	return e.runner.Chat(ctx, userID, message)
}

// ChatWith sends message to the named agent, bypassing mention routing.
func (e *Echo) ChatWith(ctx context.Context, userID, agent, message string) (*runner.Reply, error) {
	return e.runner.ChatWith(ctx, userID, agent, message)
}

// History returns up to limit recent turns for the (user, agent) conversation,
// oldest first.
func (e *Echo) History(ctx context.Context, userID, agent string, limit int) ([]core.Turn, error) {
	return e.store.Recent(ctx, userID, agent, limit)
}

// WorkingMemory renders the short context digest for the (user, agent)
// conversation.
func (e *Echo) WorkingMemory(ctx context.Context, userID, agent string) (string, error) {
	return e.store.RenderWorkingMemory(ctx, userID, agent, 0)
}

// ClearMemory removes the (user, agent) conversation entirely. Clearing an
// absent conversation is a no-op.
func (e *Echo) ClearMemory(ctx context.Context, userID, agent string) error {
	return e.store.Clear(ctx, userID, agent)
}

// Directory lists all known agents with their implementation status.
func (e *Echo) Directory() []router.AgentInfo {
	return e.directory.Agents()
}

// Handler returns the HTTP surface of the service, ready to mount on a
// net/http server.
func (e *Echo) Handler() http.Handler {
	return server.New(e.runner, e.store, e.directory, func(o *server.Options) {
		o.Logger = e.opts.Logger
	})
}
