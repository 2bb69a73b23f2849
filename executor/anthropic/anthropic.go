// Package anthropic drives downstream agents through the Anthropic Messages
// API. Working memory travels in the system prompt; recent turns are replayed
// as structured messages with the cleaned instruction appended last.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/lifeos/echo/core"
	"github.com/lifeos/echo/executor"
)

// Options configures the Anthropic executor (model id, sampling, max tokens,
// API key). Extend via functional options to preserve stability.
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Executor wraps the Anthropic Messages API behind the executor.Executor interface.
type Executor struct {
	client *anthropic.Client
	opts   Options
}

// NewExecutor creates a new Anthropic executor using the official client
func NewExecutor(optFns ...func(o *Options)) *Executor {
	opts := defaultOptions()

	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	client := anthropic.NewClient(clientOpts...)

	return &Executor{
		client: &client,
		opts:   opts,
	}
}

// NewExecutorFromClient creates a new Anthropic executor from an existing client
func NewExecutorFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Executor {
	opts := defaultOptions()

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Executor{
		client: client,
		opts:   opts,
	}
}

func defaultOptions() Options {
	return Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   1024,
	}
}

// Execute sends the request to the Messages API and returns the text reply.
func (e *Executor) Execute(ctx context.Context, req executor.Request) (*executor.Reply, error) {
	messages, systemTexts := buildMessages(req)

	params := anthropic.MessageNewParams{
		Model:       e.opts.Model,
		Messages:    messages,
		MaxTokens:   e.opts.MaxTokens,
		Temperature: anthropic.Float(e.opts.Temperature),
	}

	var systemBlocks []anthropic.TextBlockParam
	if prompt := buildSystemPrompt(req); prompt != "" {
		systemBlocks = append(systemBlocks, anthropic.TextBlockParam{Text: prompt})
	}
	for _, text := range systemTexts {
		systemBlocks = append(systemBlocks, anthropic.TextBlockParam{Text: text})
	}
	if len(systemBlocks) > 0 {
		params.System = systemBlocks
	}

	resp, err := e.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic api error: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.AsText().Text)
		}
	}

	return &executor.Reply{Text: text.String()}, nil
}

// Name implements executor.Executor.
func (e *Executor) Name() string {
	return fmt.Sprintf("anthropic:%s", e.opts.Model)
}

// buildMessages converts the replayed history into Anthropic message format.
// System turns are returned separately since the Messages API carries them
// outside the message list. The cleaned instruction goes last.
func buildMessages(req executor.Request) ([]anthropic.MessageParam, []string) {
	var messages []anthropic.MessageParam
	var systemTexts []string

	for _, turn := range req.History {
		if turn.Content == "" {
			continue
		}
		switch turn.Role {
		case core.RoleAssistant:
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(turn.Content)))
		case core.RoleSystem:
			systemTexts = append(systemTexts, turn.Content)
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(turn.Content)))
		}
	}

	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(req.Message)))

	return messages, systemTexts
}

// buildSystemPrompt frames the agent identity and injects the working-memory
// digest.
func buildSystemPrompt(req executor.Request) string {
	var b strings.Builder
	if req.Agent != "" {
		fmt.Fprintf(&b, "You are the %s assistant.", req.Agent)
	}
	if req.WorkingMemory != "" {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("Recent conversation:\n")
		b.WriteString(req.WorkingMemory)
	}
	return b.String()
}
