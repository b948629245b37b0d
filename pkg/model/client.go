package model

import (
	"context"
	"fmt"

	"github.com/avasquez/canvasagent/pkg/tool"
)

// Message is one turn of a model conversation.
type Message struct {
	Role       string                 `json:"role"` // system, user, assistant, tool
	Content    string                 `json:"content"`
	ToolCalls  []ToolCall             `json:"tool_calls,omitempty"`
	ToolCallID string                 `json:"tool_call_id,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// ToolCall is the model's request to invoke one named tool.
type ToolCall struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

// Request carries a conversation plus the tool catalogue to the model.
type Request struct {
	Model        string
	Messages     []Message
	Tools        []tool.Descriptor
	SystemPrompt string
	MaxTokens    int
	Temperature  float64
}

// Response is the model's decision: a final answer when ToolCalls is
// empty, otherwise one or more tool-call requests. Never both.
type Response struct {
	Content   string
	ToolCalls []ToolCall
	Usage     *TokenUsage
}

// TokenUsage tracks token consumption for one completion.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Client abstracts a remote chat-completion endpoint. Implementations
// hold no per-call state; each Complete is a pure function of its
// input modulo the network.
type Client interface {
	Complete(ctx context.Context, req Request) (*Response, error)
	Provider() string
}

// Error marks an upstream model failure. It is terminal for the run
// that triggered it; the agent performs no automatic retry.
type Error struct {
	Provider string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("model call failed (%s): %v", e.Provider, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
