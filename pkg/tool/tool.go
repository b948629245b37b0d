package tool

import (
	"context"
	"fmt"
)

// Tool describes a single callable capability offered to the agent.
// Implementations are constructed once at agent-build time and must be
// safe for concurrent use; ordinary failures (network errors, upstream
// 4xx/5xx, not-found) are reported through Result.Error, never panics.
type Tool interface {
	// Name returns the stable unique identifier of the tool.
	Name() string

	// Description explains when and why the model should invoke the
	// tool; it becomes part of the model's decision context.
	Description() string

	// Parameters enumerates the accepted arguments.
	Parameters() []Parameter

	// Forward performs the tool's side effect with validated arguments.
	Forward(ctx context.Context, args map[string]interface{}) Result
}

// Parameter defines one accepted argument of a tool.
type Parameter struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // string, integer, number, boolean
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Nullable    bool   `json:"nullable,omitempty"`
}

// Result carries the outcome of one tool invocation. Exactly one of
// Output and Error is populated; use Ok and Fail to construct values.
type Result struct {
	Output interface{} `json:"output,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// Ok returns a successful result carrying output.
func Ok(output interface{}) Result {
	if output == nil {
		output = ""
	}
	return Result{Output: output}
}

// Fail returns a failed result with a formatted error description.
func Fail(format string, args ...interface{}) Result {
	return Result{Error: fmt.Sprintf(format, args...)}
}

// Failed reports whether the result describes a failure.
func (r Result) Failed() bool {
	return r.Error != ""
}

// Text renders the result as the text fed back into the conversation.
func (r Result) Text() string {
	if r.Failed() {
		return r.Error
	}
	if s, ok := r.Output.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", r.Output)
}

// Descriptor is the wire-level description of a tool handed to the
// model client: name, description and a JSON-schema input object.
type Descriptor struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"input_schema"`
}

// BuildInputSchema converts a parameter list into a JSON-schema object
// with additionalProperties disabled. Nullable parameters accept null
// alongside their declared type.
func BuildInputSchema(params []Parameter) map[string]interface{} {
	properties := map[string]interface{}{}
	required := []string{}

	for _, p := range params {
		var typ interface{} = p.Type
		if p.Nullable {
			typ = []string{p.Type, "null"}
		}
		properties[p.Name] = map[string]interface{}{
			"type":        typ,
			"description": p.Description,
		}
		if p.Required {
			required = append(required, p.Name)
		}
	}

	schema := map[string]interface{}{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}
