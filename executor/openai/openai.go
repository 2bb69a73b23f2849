// Package openai drives downstream agents through the OpenAI Chat Completions
// API. It adapts the normalized executor request (working memory, replayed
// turns, cleaned instruction) into the SDK's message format and back.
package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"

	"github.com/lifeos/echo/core"
	"github.com/lifeos/echo/executor"
)

// Options configure the OpenAI executor.
// Fields mirror a subset of Chat Completion parameters intentionally kept
// minimal; extend via functional options without breaking callers.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
}

// Executor wraps the OpenAI Chat Completions API behind the executor.Executor interface.
type Executor struct {
	client *openai.Client
	opts   Options
}

// NewExecutor creates a new OpenAI executor using the official client
func NewExecutor(optFns ...func(o *Options)) *Executor {
	client := openai.NewClient()
	return NewExecutorFromClient(&client, optFns...)
}

// NewExecutorFromClient creates a new OpenAI executor from an existing client
func NewExecutorFromClient(client *openai.Client, optFns ...func(o *Options)) *Executor {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 1024,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Executor{client: client, opts: opts}
}

// Execute sends the request to the Chat Completions API and returns the text
// reply.
func (e *Executor) Execute(ctx context.Context, req executor.Request) (*executor.Reply, error) {
	params := openai.ChatCompletionNewParams{
		Messages:            buildMessages(req),
		Model:               e.opts.Model,
		Temperature:         openai.Float(e.opts.Temperature),
		MaxCompletionTokens: openai.Int(e.opts.MaxCompletionTokens),
	}

	resp, err := e.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices returned")
	}

	return &executor.Reply{Text: resp.Choices[0].Message.Content}, nil
}

// Name implements executor.Executor.
func (e *Executor) Name() string {
	return fmt.Sprintf("openai:%s", e.opts.Model)
}

// buildMessages converts the normalized request into OpenAI chat messages:
// one system message framing the agent and carrying the working-memory
// digest, the replayed turns, then the cleaned instruction last.
func buildMessages(req executor.Request) []openai.ChatCompletionMessageParamUnion {
	var messages []openai.ChatCompletionMessageParamUnion

	if prompt := buildSystemPrompt(req); prompt != "" {
		messages = append(messages, openai.SystemMessage(prompt))
	}

	for _, turn := range req.History {
		if turn.Content == "" {
			continue
		}
		switch turn.Role {
		case core.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(turn.Content))
		case core.RoleSystem:
			messages = append(messages, openai.SystemMessage(turn.Content))
		default:
			messages = append(messages, openai.UserMessage(turn.Content))
		}
	}

	messages = append(messages, openai.UserMessage(req.Message))

	return messages
}

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
