// Package tools is the fixed set of operations the agent can call by name.
// A tool never returns an error: every outcome, failures included, is an Observation.
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"go-careers-agent/internal/ai"

	"github.com/charmbracelet/log"
)

// Kind groups tools for the guard rules
type Kind int

const (
	KindRead Kind = iota
	KindInteract
	KindLog
)

// Observation is what the agent sees after a tool call
type Observation struct {
	Text   string
	Failed bool
}

func ok(text string) Observation { return Observation{Text: text} }

func failed(text string) Observation { return Observation{Text: text, Failed: true} }

// Tool is one named operation with its JSON argument schema
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any
	Kind        Kind
	Invoke      func(ctx context.Context, args json.RawMessage) Observation
}

type Registry struct {
	tools  []Tool
	byName map[string]int
	logger *log.Logger
}

// NewRegistry registers tools in the given order. Duplicate names panic, the set is built at startup.
func NewRegistry(logger *log.Logger, tools ...Tool) *Registry {
	if logger == nil {
		logger = log.Default()
	}
	r := &Registry{
		byName: make(map[string]int, len(tools)),
		logger: logger.With("component", "tools"),
	}
	for _, t := range tools {
		if _, dup := r.byName[t.Name]; dup {
			panic(fmt.Sprintf("tools: duplicate tool %q", t.Name))
		}
		r.byName[t.Name] = len(r.tools)
		r.tools = append(r.tools, t)
	}
	return r
}

func (r *Registry) Lookup(name string) (Tool, bool) {
	i, found := r.byName[name]
	if !found {
		return Tool{}, false
	}
	return r.tools[i], true
}

func (r *Registry) Names() []string {
	names := make([]string, len(r.tools))
	for i, t := range r.tools {
		names[i] = t.Name
	}
	return names
}

// Specs describes the tools to the reasoning backend
func (r *Registry) Specs() []ai.ToolSpec {
	specs := make([]ai.ToolSpec, len(r.tools))
	for i, t := range r.tools {
		specs[i] = ai.ToolSpec{Name: t.Name, Description: t.Description, Parameters: t.Parameters}
	}
	return specs
}

// Invoke runs one call. guard may be nil. Unknown tools, refused calls and panics all
// come back as failed observations.
func (r *Registry) Invoke(ctx context.Context, guard *Guard, call ai.ToolCall) (obs Observation) {
	t, found := r.Lookup(call.Name)
	if !found {
		return failed(fmt.Sprintf("Error: unknown tool %q", call.Name))
	}
	args := json.RawMessage(call.Arguments)

	if guard != nil {
		if refusal, allowed := guard.Admit(t, args); !allowed {
			r.logger.Warn("🚫 Tool call refused", "tool", t.Name, "reason", refusal)
			return failed(refusal)
		}
		defer func() { guard.Record(t, obs) }()
	}

	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("❌ Tool panicked", "tool", t.Name, "panic", p)
			obs = failed(fmt.Sprintf("Error: %s crashed: %v", t.Name, p))
		}
	}()
	return t.Invoke(ctx, args)
}

// decode reads tool arguments into T, an empty payload is treated as {}
func decode[T any](args json.RawMessage) (T, error) {
	var v T
	if len(bytes.TrimSpace(args)) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(args, &v); err != nil {
		return v, fmt.Errorf("invalid arguments: %w", err)
	}
	return v, nil
}

func object(required []string, props map[string]any) map[string]any {
	if required == nil {
		required = []string{}
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

func str(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}
