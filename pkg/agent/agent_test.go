package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avasquez/canvasagent/pkg/model"
	"github.com/avasquez/canvasagent/pkg/tool"
)

// scriptedModel replays a fixed sequence of responses and records the
// requests it receives.
type scriptedModel struct {
	mu        sync.Mutex
	responses []*model.Response
	err       error
	calls     int
	requests  []model.Request
}

func (s *scriptedModel) Provider() string { return "scripted" }

func (s *scriptedModel) Complete(ctx context.Context, req model.Request) (*model.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	idx := s.calls - 1
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	return s.responses[idx], nil
}

type echoTool struct {
	name  string
	panic bool
}

func (e *echoTool) Name() string        { return e.name }
func (e *echoTool) Description() string { return "echoes its input back" }

func (e *echoTool) Parameters() []tool.Parameter {
	return []tool.Parameter{
		{Name: "text", Type: "string", Description: "text to echo", Required: true},
	}
}

func (e *echoTool) Forward(ctx context.Context, args map[string]interface{}) tool.Result {
	if e.panic {
		panic("echo exploded")
	}
	return tool.Ok(fmt.Sprintf("echo: %v", args["text"]))
}

func newTestAgent(t *testing.T, client model.Client, maxSteps int, tools ...tool.Tool) *Agent {
	t.Helper()
	registry, err := tool.NewRegistry(tools...)
	require.NoError(t, err)

	a, err := New(Config{
		Model:    client,
		ModelID:  "test-model",
		Tools:    registry,
		MaxSteps: maxSteps,
		Logger:   zerolog.Nop(),
	})
	require.NoError(t, err)
	return a
}

func toolCallResponse(calls ...model.ToolCall) *model.Response {
	return &model.Response{ToolCalls: calls}
}

func TestNew(t *testing.T) {
	t.Run("should require a model client", func(t *testing.T) {
		registry, err := tool.NewRegistry()
		require.NoError(t, err)
		_, err = New(Config{ModelID: "m", Tools: registry})
		assert.Error(t, err)
	})

	t.Run("should reject negative step limits", func(t *testing.T) {
		registry, err := tool.NewRegistry()
		require.NoError(t, err)
		_, err = New(Config{Model: &scriptedModel{}, ModelID: "m", Tools: registry, MaxSteps: -1})
		assert.Error(t, err)
	})

	t.Run("should default the step limit", func(t *testing.T) {
		registry, err := tool.NewRegistry()
		require.NoError(t, err)
		a, err := New(Config{Model: &scriptedModel{}, ModelID: "m", Tools: registry})
		require.NoError(t, err)
		assert.Equal(t, DefaultMaxSteps, a.maxSteps)
	})
}

func TestRunFinalAnswer(t *testing.T) {
	t.Run("should return the answer when the model uses no tools", func(t *testing.T) {
		client := &scriptedModel{responses: []*model.Response{{Content: "hello there"}}}
		a := newTestAgent(t, client, 5, &echoTool{name: "echo"})

		result, err := a.Run(context.Background(), "say hello")
		require.NoError(t, err)
		assert.Equal(t, "hello there", result.Answer)
		assert.Equal(t, 1, result.Steps)
		assert.Empty(t, result.ToolCalls)
	})

	t.Run("should reject an empty query", func(t *testing.T) {
		a := newTestAgent(t, &scriptedModel{}, 5)
		_, err := a.Run(context.Background(), "  ")
		assert.Error(t, err)
	})
}

func TestRunStepBound(t *testing.T) {
	t.Run("should stop after exactly the configured step limit", func(t *testing.T) {
		for _, maxSteps := range []int{1, 3, 7} {
			client := &scriptedModel{responses: []*model.Response{
				toolCallResponse(model.ToolCall{
					ID:        "call_1",
					Name:      "echo",
					Arguments: map[string]interface{}{"text": "again"},
				}),
			}}
			a := newTestAgent(t, client, maxSteps, &echoTool{name: "echo"})

			_, err := a.Run(context.Background(), "loop forever")
			var limitErr *StepLimitError
			require.ErrorAs(t, err, &limitErr)
			assert.Equal(t, maxSteps, limitErr.Steps)
			assert.Equal(t, maxSteps, client.calls)
		}
	})
}

func TestRunToolResultCorrelation(t *testing.T) {
	t.Run("should append one tool message per call id in request order", func(t *testing.T) {
		client := &scriptedModel{responses: []*model.Response{
			toolCallResponse(
				model.ToolCall{ID: "call_a", Name: "echo", Arguments: map[string]interface{}{"text": "one"}},
				model.ToolCall{ID: "call_b", Name: "echo", Arguments: map[string]interface{}{"text": "two"}},
				model.ToolCall{ID: "call_c", Name: "echo", Arguments: map[string]interface{}{"text": "three"}},
			),
			{Content: "done"},
		}}
		a := newTestAgent(t, client, 5, &echoTool{name: "echo"})

		result, err := a.Run(context.Background(), "echo three things")
		require.NoError(t, err)
		assert.Equal(t, "done", result.Answer)
		assert.Len(t, result.ToolCalls, 3)

		// The second model request carries the tool round's transcript.
		require.Len(t, client.requests, 2)
		messages := client.requests[1].Messages
		require.Len(t, messages, 5) // user, assistant tool-calls, 3 tool results

		assert.Equal(t, "assistant", messages[1].Role)
		require.Len(t, messages[1].ToolCalls, 3)

		wantIDs := []string{"call_a", "call_b", "call_c"}
		wantTexts := []string{"echo: one", "echo: two", "echo: three"}
		for i, msg := range messages[2:] {
			assert.Equal(t, "tool", msg.Role)
			assert.Equal(t, wantIDs[i], msg.ToolCallID)
			assert.Equal(t, wantTexts[i], msg.Content)
		}
	})
}

func TestRunToolFailureIsolation(t *testing.T) {
	t.Run("should recover a panicking tool without aborting the round", func(t *testing.T) {
		client := &scriptedModel{responses: []*model.Response{
			toolCallResponse(
				model.ToolCall{ID: "call_bad", Name: "boom", Arguments: map[string]interface{}{"text": "x"}},
				model.ToolCall{ID: "call_good", Name: "echo", Arguments: map[string]interface{}{"text": "fine"}},
			),
			{Content: "survived"},
		}}
		a := newTestAgent(t, client, 5, &echoTool{name: "echo"}, &echoTool{name: "boom", panic: true})

		result, err := a.Run(context.Background(), "mixed round")
		require.NoError(t, err)
		assert.Equal(t, "survived", result.Answer)

		messages := client.requests[1].Messages
		require.Len(t, messages, 4)
		assert.Contains(t, messages[2].Content, "panicked")
		assert.Equal(t, "call_bad", messages[2].ToolCallID)
		assert.Equal(t, "echo: fine", messages[3].Content)
	})

	t.Run("should synthesize an error result for an unknown tool", func(t *testing.T) {
		client := &scriptedModel{responses: []*model.Response{
			toolCallResponse(model.ToolCall{ID: "call_x", Name: "nonexistent", Arguments: map[string]interface{}{}}),
			{Content: "recovered"},
		}}
		a := newTestAgent(t, client, 5, &echoTool{name: "echo"})

		result, err := a.Run(context.Background(), "call something missing")
		require.NoError(t, err)
		assert.Equal(t, "recovered", result.Answer)

		messages := client.requests[1].Messages
		assert.Contains(t, messages[2].Content, "unknown tool nonexistent")
	})
}

func TestRunModelError(t *testing.T) {
	t.Run("should surface model errors without retrying", func(t *testing.T) {
		modelErr := &model.Error{Provider: "scripted", Err: errors.New("upstream down")}
		client := &scriptedModel{err: modelErr}
		a := newTestAgent(t, client, 5, &echoTool{name: "echo"})

		_, err := a.Run(context.Background(), "anything")
		var got *model.Error
		require.ErrorAs(t, err, &got)
		assert.Equal(t, 1, client.calls)
	})
}

func TestBuildSystemPrompt(t *testing.T) {
	t.Run("should include instructions and the tool catalogue", func(t *testing.T) {
		registry, err := tool.NewRegistry(&echoTool{name: "echo"})
		require.NoError(t, err)
		a, err := New(Config{
			Model:        &scriptedModel{},
			ModelID:      "m",
			Tools:        registry,
			SystemPrompt: "You are a helpful assistant.",
			Logger:       zerolog.Nop(),
		})
		require.NoError(t, err)

		prompt := a.buildSystemPrompt()
		assert.Contains(t, prompt, "You are a helpful assistant.")
		assert.Contains(t, prompt, "echo: echoes its input back")
	})
}
