package runner

import (
	"context"
	"fmt"

	"github.com/lifeos/echo/core"
	"github.com/lifeos/echo/executor"
	"github.com/lifeos/echo/logging"
	"github.com/lifeos/echo/memory"
	"github.com/lifeos/echo/router"
)

// Options holds configuration overrides passed to New().
type Options struct {
	// Logger receives pipeline diagnostics. Defaults to a no-op logger.
	Logger logging.Logger
}

// Reply is the outcome of a chat request.
type Reply struct {
	// Text is the agent's answer, or the canned reply for agents that are
	// not implemented yet.
	Text string `json:"text"`
	// Agent is the canonical agent the request was resolved to.
	Agent string `json:"agent"`
	// Routed reports whether a mention in the message decided the agent.
	Routed bool `json:"routed"`
}

// Runner coordinates chat requests: resolves the target agent, maintains
// conversation memory around the call, and invokes the agent's executor.
// Public methods are safe for concurrent use.
type Runner struct {
	store     *memory.Store
	directory *router.Directory
	logger    logging.Logger
}

// New constructs a Runner on top of a memory store and an agent directory.
func New(store *memory.Store, directory *router.Directory, optFns ...func(o *Options)) *Runner {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Runner{
		store:     store,
		directory: directory,
		logger:    opts.Logger,
	}
}

// Chat routes message by its leading mention, falling back to the default
// agent, and runs the pipeline against the resolved target.
func (r *Runner) Chat(ctx context.Context, userID, message string) (*Reply, error) {
	if userID == "" {
		return nil, &core.ValidationError{Field: "userId", Message: "must not be empty"}
	}

	entry, cleaned := r.directory.Dispatch(message)
	_, routed := router.FirstMention(message)

	return r.run(ctx, userID, entry, cleaned, routed)
}

// ChatWith runs the pipeline against an explicitly named agent, bypassing
// mention routing. Aliases resolve to their canonical agent; the message is
// forwarded verbatim.
func (r *Runner) ChatWith(ctx context.Context, userID, agent, message string) (*Reply, error) {
	if userID == "" {
		return nil, &core.ValidationError{Field: "userId", Message: "must not be empty"}
	}

	if agent == "" {
		return nil, &core.ValidationError{Field: "agent", Message: "must not be empty"}
	}

	entry := r.directory.Lookup(r.directory.Resolve(agent))

	return r.run(ctx, userID, entry, message, false)
}

func (r *Runner) run(ctx context.Context, userID string, entry router.Entry, message string, routed bool) (*Reply, error) {
	agent := entry.Agent()

	// Unimplemented agents answer with their canned reply and leave the
	// conversation history for that key untouched.
	if !entry.Implemented() {
		r.logger.Debug("agent not implemented", "agent", agent, "user_id", userID)

		return &Reply{Text: entry.CannedReply(), Agent: agent, Routed: routed}, nil
	}

	// History for the executor excludes the message being handled; the
	// working-memory digest below includes it.
	history := r.recentHistory(ctx, userID, agent)

	r.appendTurn(ctx, userID, agent, core.RoleUser, message)

	reply, err := entry.Executor().Execute(ctx, executor.Request{
		Agent:         agent,
		UserID:        userID,
		Message:       message,
		WorkingMemory: r.workingMemory(ctx, userID, agent),
		History:       history,
	})
	if err != nil {
		return nil, fmt.Errorf("agent %s execution failed: %w", agent, err)
	}

	r.appendTurn(ctx, userID, agent, core.RoleAssistant, reply.Text)

	return &Reply{Text: reply.Text, Agent: agent, Routed: routed}, nil
}

func (r *Runner) recentHistory(ctx context.Context, userID, agent string) []core.Turn {
	turns, err := r.store.Recent(ctx, userID, agent, r.store.HistoryLimit())
	if err != nil {
		r.logger.Warn("loading history failed", "user_id", userID, "agent", agent, "error", err)

		return nil
	}

	return turns
}

func (r *Runner) appendTurn(ctx context.Context, userID, agent string, role core.Role, content string) {
	if _, err := r.store.Append(ctx, userID, agent, role, content, nil); err != nil {
		r.logger.Warn("recording turn failed", "user_id", userID, "agent", agent, "role", string(role), "error", err)
	}
}

func (r *Runner) workingMemory(ctx context.Context, userID, agent string) string {
	digest, err := r.store.RenderWorkingMemory(ctx, userID, agent, 0)
	if err != nil {
		r.logger.Warn("rendering working memory failed", "user_id", userID, "agent", agent, "error", err)

		return memory.NoHistorySentinel
	}

	return digest
}
