package agent

import (
	"github.com/avasquez/canvasagent/pkg/model"
	"github.com/avasquez/canvasagent/pkg/tool"
)

// State is a phase of a single run.
type State int

const (
	StateIdle State = iota
	StateAwaitingModel
	StateExecutingTools
	StateDone
	StateStepLimitExceeded
	StateFailed
)

// String returns a readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingModel:
		return "awaiting_model"
	case StateExecutingTools:
		return "executing_tools"
	case StateDone:
		return "done"
	case StateStepLimitExceeded:
		return "step_limit_exceeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// runState is the mutable state of one run, never shared across runs.
type runState struct {
	state     State
	messages  []model.Message
	steps     int
	toolCalls []model.ToolCall
	usage     model.TokenUsage
}

func newRunState(query string) *runState {
	return &runState{
		state: StateIdle,
		messages: []model.Message{
			{Role: "user", Content: query},
		},
	}
}

func (r *runState) transition(next State) {
	r.state = next
}

// appendAssistantToolCalls records the model turn that requested tools.
func (r *runState) appendAssistantToolCalls(content string, calls []model.ToolCall) {
	r.messages = append(r.messages, model.Message{
		Role:      "assistant",
		Content:   content,
		ToolCalls: calls,
	})
	r.toolCalls = append(r.toolCalls, calls...)
}

// appendToolResult adds one tool-role message correlated by call id.
func (r *runState) appendToolResult(callID string, result tool.Result) {
	r.messages = append(r.messages, model.Message{
		Role:       "tool",
		Content:    result.Text(),
		ToolCallID: callID,
	})
}
