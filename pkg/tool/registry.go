package tool

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/xeipuuv/gojsonschema"
)

// Registry is an immutable name-to-tool mapping built once at agent
// construction time. Argument schemas are compiled up front so every
// call validates against a cached schema.
type Registry struct {
	tools   map[string]Tool
	schemas map[string]*gojsonschema.Schema
	order   []string
}

// NewRegistry builds a registry from an explicit tool list. Duplicate
// names and invalid schemas are construction errors.
func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{
		tools:   make(map[string]Tool, len(tools)),
		schemas: make(map[string]*gojsonschema.Schema, len(tools)),
	}

	for _, t := range tools {
		name := t.Name()
		if name == "" {
			return nil, fmt.Errorf("tool name cannot be empty")
		}
		if t.Description() == "" {
			return nil, fmt.Errorf("tool %s: description cannot be empty", name)
		}
		if _, exists := r.tools[name]; exists {
			return nil, fmt.Errorf("duplicate tool name: %s", name)
		}

		schema, err := gojsonschema.NewSchema(
			gojsonschema.NewGoLoader(BuildInputSchema(t.Parameters())),
		)
		if err != nil {
			return nil, fmt.Errorf("tool %s: failed to compile schema: %w", name, err)
		}

		r.tools[name] = t
		r.schemas[name] = schema
		r.order = append(r.order, name)
	}

	log.Debug().Int("tools", len(r.order)).Msg("Tool registry built")
	return r, nil
}

// Get returns the tool registered under name, or nil.
func (r *Registry) Get(name string) Tool {
	return r.tools[name]
}

// Names returns tool names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	return len(r.order)
}

// Descriptors returns the model-facing descriptions of every tool in
// registration order.
func (r *Registry) Descriptors() []Descriptor {
	descs := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		descs = append(descs, Descriptor{
			Name:        name,
			Description: t.Description(),
			InputSchema: BuildInputSchema(t.Parameters()),
		})
	}
	return descs
}

// Validate checks args against the named tool's compiled schema.
func (r *Registry) Validate(name string, args map[string]interface{}) error {
	schema, ok := r.schemas[name]
	if !ok {
		return fmt.Errorf("unknown tool %s", name)
	}
	if args == nil {
		args = map[string]interface{}{}
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(args))
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	if !result.Valid() {
		first := result.Errors()[0]
		return fmt.Errorf("invalid arguments for %s: %s", name, first.String())
	}
	return nil
}

// Invoke looks up, validates and runs one tool call. It never panics:
// an unknown name, a schema violation or a panicking Forward all come
// back as a failed Result so a single bad call cannot abort the run.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]interface{}) (result Result) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Str("tool", name).Interface("panic", rec).Msg("Tool panicked")
			result = Fail("tool %s panicked: %v", name, rec)
		}
	}()

	t := r.Get(name)
	if t == nil {
		return Fail("unknown tool %s", name)
	}
	if err := r.Validate(name, args); err != nil {
		return Fail("%v", err)
	}

	log.Debug().Str("tool", name).Msg("Executing tool")
	return t.Forward(ctx, args)
}
