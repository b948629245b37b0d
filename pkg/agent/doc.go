// Package agent runs bounded multi-step tool-calling loops against a
// chat model.
//
// Invariants:
// - A run makes at most MaxSteps model calls, then stops with StepLimitError.
// - Every tool call the model requests gets exactly one result message,
//   delivered in request order.
// - Model failures are terminal for the run; there is no automatic retry.
//
// Usage:
//
//	a, _ := agent.New(agent.Config{Model: client, ModelID: "gpt-4o", Tools: registry})
//	result, _ := a.Run(ctx, "what assignments are due this week?")
//	_ = result.Answer
package agent
