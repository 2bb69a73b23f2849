package executor

import (
	"context"
	"fmt"
	"sync"

	"github.com/lifeos/echo/core"
)

// Request captures the normalized input forwarded to a downstream agent.
type Request struct {
	// Agent is the canonical agent id the request is addressed to.
	Agent string `json:"agent"`
	// UserID identifies the end user on whose behalf the agent acts.
	UserID string `json:"user_id"`
	// Message is the instruction text with mention tokens already stripped.
	Message string `json:"message"`
	// WorkingMemory is the rendered digest of recent turns. It is never
	// empty; absent history yields a fixed sentinel line.
	WorkingMemory string `json:"working_memory"`
	// History holds the recent turns in chronological order for adapters
	// that prefer structured messages over the rendered digest.
	History []core.Turn `json:"history,omitempty"`
	// Metadata is passed through unexamined.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Reply is the downstream agent's answer.
type Reply struct {
	Text string `json:"text"`
}

// Executor is the minimal interface the chat pipeline needs to drive a
// downstream agent. Implementations must honor ctx cancellation and wrap
// transport errors with enough context to identify the failing adapter.
type Executor interface {
	Execute(ctx context.Context, req Request) (*Reply, error)

	// Name returns a short identifier for logs and diagnostics.
	Name() string
}

// MockExecutor is a lightweight in-memory Executor useful for tests & examples.
type MockExecutor struct {
	name      string
	mu        sync.Mutex
	responses map[string]string
	err       error
	calls     []Request
}

// NewMockExecutor constructs a MockExecutor identified by name.
func NewMockExecutor(name string) *MockExecutor {
	return &MockExecutor{name: name, responses: make(map[string]string)}
}

// AddResponse registers a deterministic canned reply for a message.
func (m *MockExecutor) AddResponse(message, reply string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[message] = reply
}

// Fail makes every subsequent Execute return err. Pass nil to recover.
func (m *MockExecutor) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns a copy of all recorded requests in arrival order.
func (m *MockExecutor) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.calls))
	copy(out, m.calls)
	return out
}

// Execute implements Executor; returns the canned reply for the message or a
// deterministic echo fallback.
func (m *MockExecutor) Execute(ctx context.Context, req Request) (*Reply, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, req)
	if m.err != nil {
		return nil, m.err
	}
	text := m.responses[req.Message]
	if text == "" {
		text = fmt.Sprintf("Mock reply to: %s", req.Message)
	}
	return &Reply{Text: text}, nil
}

// Name implements Executor.
func (m *MockExecutor) Name() string { return m.name }
