package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"

	"github.com/avasquez/canvasagent/pkg/model"
	"github.com/avasquez/canvasagent/pkg/tool"
)

// DefaultMaxSteps bounds a run when the config does not set a ceiling.
const DefaultMaxSteps = 10

// DefaultMaxToolWorkers caps concurrent tool executions within one round.
const DefaultMaxToolWorkers = 4

// Config holds the dependencies and limits for an Agent.
type Config struct {
	Model          model.Client
	ModelID        string
	Tools          *tool.Registry
	MaxSteps       int
	MaxToolWorkers int
	SystemPrompt   string
	MaxTokens      int
	Temperature    float64
	Logger         zerolog.Logger
}

// Agent runs bounded multi-step tool-calling conversations. It holds no
// per-run state, so concurrent Run calls on one Agent are safe.
type Agent struct {
	model        model.Client
	modelID      string
	tools        *tool.Registry
	maxSteps     int
	maxWorkers   int
	systemPrompt string
	maxTokens    int
	temperature  float64
	logger       zerolog.Logger
}

// RunResult is the outcome of a completed run.
type RunResult struct {
	Answer    string
	Steps     int
	ToolCalls []model.ToolCall
	Usage     model.TokenUsage
}

// New validates the config and builds an Agent.
func New(cfg Config) (*Agent, error) {
	if cfg.Model == nil {
		return nil, fmt.Errorf("model client is required")
	}
	if cfg.ModelID == "" {
		return nil, fmt.Errorf("model id is required")
	}
	if cfg.Tools == nil {
		return nil, fmt.Errorf("tool registry is required")
	}
	if cfg.MaxSteps < 0 {
		return nil, fmt.Errorf("max steps must be at least 1, got %d", cfg.MaxSteps)
	}

	maxSteps := cfg.MaxSteps
	if maxSteps == 0 {
		maxSteps = DefaultMaxSteps
	}
	maxWorkers := cfg.MaxToolWorkers
	if maxWorkers <= 0 {
		maxWorkers = DefaultMaxToolWorkers
	}

	return &Agent{
		model:        cfg.Model,
		modelID:      cfg.ModelID,
		tools:        cfg.Tools,
		maxSteps:     maxSteps,
		maxWorkers:   maxWorkers,
		systemPrompt: cfg.SystemPrompt,
		maxTokens:    cfg.MaxTokens,
		temperature:  cfg.Temperature,
		logger:       cfg.Logger,
	}, nil
}

// Run executes the query until the model produces a final answer or the
// step ceiling is reached. Model errors are terminal; there is no retry.
func (a *Agent) Run(ctx context.Context, query string) (*RunResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query is empty")
	}

	state := newRunState(query)
	descriptors := a.tools.Descriptors()
	systemPrompt := a.buildSystemPrompt()

	a.logger.Debug().
		Str("model", a.modelID).
		Int("max_steps", a.maxSteps).
		Int("tools", len(descriptors)).
		Msg("starting agent run")

	for state.steps < a.maxSteps {
		state.transition(StateAwaitingModel)

		resp, err := a.model.Complete(ctx, model.Request{
			Model:        a.modelID,
			Messages:     state.messages,
			Tools:        descriptors,
			SystemPrompt: systemPrompt,
			MaxTokens:    a.maxTokens,
			Temperature:  a.temperature,
		})
		if err != nil {
			state.transition(StateFailed)
			a.logger.Error().Err(err).Int("step", state.steps).Msg("model call failed")
			return nil, err
		}
		if resp.Usage != nil {
			state.usage.InputTokens += resp.Usage.InputTokens
			state.usage.OutputTokens += resp.Usage.OutputTokens
		}

		if len(resp.ToolCalls) == 0 {
			state.transition(StateDone)
			state.steps++
			a.logger.Debug().Int("steps", state.steps).Msg("agent run completed")
			return &RunResult{
				Answer:    resp.Content,
				Steps:     state.steps,
				ToolCalls: state.toolCalls,
				Usage:     state.usage,
			}, nil
		}

		state.transition(StateExecutingTools)
		state.appendAssistantToolCalls(resp.Content, resp.ToolCalls)

		results := a.executeRound(ctx, resp.ToolCalls)
		for i, call := range resp.ToolCalls {
			state.appendToolResult(call.ID, results[i])
		}
		state.steps++
	}

	state.transition(StateStepLimitExceeded)
	a.logger.Warn().Int("steps", state.steps).Msg("agent run hit step limit")
	return nil, &StepLimitError{Steps: state.steps}
}

// executeRound runs one round of tool calls concurrently and returns the
// results in request order. Repeated identical calls each execute.
func (a *Agent) executeRound(ctx context.Context, calls []model.ToolCall) []tool.Result {
	results := make([]tool.Result, len(calls))

	p := pool.New().WithMaxGoroutines(a.maxWorkers)
	for i, call := range calls {
		i, call := i, call
		p.Go(func() {
			a.logger.Debug().Str("tool", call.Name).Str("call_id", call.ID).Msg("executing tool")
			results[i] = a.tools.Invoke(ctx, call.Name, call.Arguments)
		})
	}
	p.Wait()

	return results
}

// buildSystemPrompt combines the configured instructions with the tool
// catalogue so the model sees both in one system message.
func (a *Agent) buildSystemPrompt() string {
	var b strings.Builder
	if a.systemPrompt != "" {
		b.WriteString(a.systemPrompt)
	}
	if a.tools.Count() > 0 {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("Available tools:\n")
		for _, desc := range a.tools.Descriptors() {
			fmt.Fprintf(&b, "- %s: %s\n", desc.Name, desc.Description)
		}
	}
	return b.String()
}
