// Package remote provides an executor that forwards requests to a
// downstream agent service over HTTP. The service receives the user
// message together with the rendered working-memory digest and recent
// history, and replies with the agent's text.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lifeos/echo/executor"
)

// Options configures the remote executor.
type Options struct {
	// Timeout bounds each invocation round-trip. Ignored when HTTPClient is set.
	Timeout time.Duration

	// HTTPClient overrides the default client, e.g. to add custom transports.
	HTTPClient *http.Client
}

// maxErrorBody caps how much of an error response is echoed into the error.
const maxErrorBody = 2048

// Executor invokes agents hosted by a remote agent service.
type Executor struct {
	baseURL string
	client  *http.Client
}

// NewExecutor creates a remote executor for the service at baseURL.
func NewExecutor(baseURL string, optFns ...func(o *Options)) *Executor {
	opts := Options{
		Timeout: 30 * time.Second,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	return &Executor{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

type invokeRequest struct {
	UserID        string         `json:"user_id"`
	Message       string         `json:"message"`
	WorkingMemory string         `json:"working_memory,omitempty"`
	History       []historyTurn  `json:"history,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

type historyTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type invokeResponse struct {
	Text string `json:"text"`
}

// Execute posts the request to the remote service and returns its reply.
func (e *Executor) Execute(ctx context.Context, req executor.Request) (*executor.Reply, error) {
	body, err := json.Marshal(buildInvokeRequest(req))
	if err != nil {
		return nil, fmt.Errorf("marshal invoke request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/agents/%s/invoke", e.baseURL, url.PathEscape(req.Agent))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create invoke request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("remote agent error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("remote agent returned status %d: %s", resp.StatusCode, string(payload))
	}

	var out invokeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode invoke response: %w", err)
	}

	return &executor.Reply{Text: out.Text}, nil
}

// Name returns the executor name.
func (e *Executor) Name() string {
	return fmt.Sprintf("remote:%s", e.baseURL)
}

func buildInvokeRequest(req executor.Request) invokeRequest {
	out := invokeRequest{
		UserID:        req.UserID,
		Message:       req.Message,
		WorkingMemory: req.WorkingMemory,
		Metadata:      req.Metadata,
	}

	for _, turn := range req.History {
		if turn.Content == "" {
			continue
		}

		out.History = append(out.History, historyTurn{
			Role:    string(turn.Role),
			Content: turn.Content,
		})
	}

	return out
}

var _ executor.Executor = (*Executor)(nil)
