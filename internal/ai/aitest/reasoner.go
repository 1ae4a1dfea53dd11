// Package aitest has scripted reasoning backends for tests.
package aitest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go-careers-agent/internal/ai"
)

// Step produces the next assistant message from the conversation so far
type Step func(history []ai.Message) (ai.Message, error)

// ScriptedReasoner plays Steps in order. Once they run out it keeps repeating Fallback,
// or fails if Fallback is nil.
type ScriptedReasoner struct {
	Steps    []Step
	Fallback Step

	mu        sync.Mutex
	calls     int
	Histories [][]ai.Message
}

func (r *ScriptedReasoner) Next(_ context.Context, history []ai.Message, _ []ai.ToolSpec) (ai.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := make([]ai.Message, len(history))
	copy(snapshot, history)
	r.Histories = append(r.Histories, snapshot)

	i := r.calls
	r.calls++
	if i < len(r.Steps) {
		return r.Steps[i](history)
	}
	if r.Fallback != nil {
		return r.Fallback(history)
	}
	return ai.Message{}, fmt.Errorf("aitest: no scripted step %d", i)
}

func (r *ScriptedReasoner) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// Call builds a tool call with JSON encoded args
func Call(id, name string, args any) ai.ToolCall {
	data, err := json.Marshal(args)
	if err != nil {
		panic(err)
	}
	return ai.ToolCall{ID: id, Name: name, Arguments: string(data)}
}

// Tools returns a step asking for the given calls, with optional assistant text
func Tools(text string, calls ...ai.ToolCall) Step {
	return func([]ai.Message) (ai.Message, error) {
		return ai.Message{Role: ai.RoleAssistant, Content: text, ToolCalls: calls}, nil
	}
}

// Answer returns a step giving the final answer
func Answer(text string) Step {
	return func([]ai.Message) (ai.Message, error) {
		return ai.Message{Role: ai.RoleAssistant, Content: text}, nil
	}
}

// Fail returns a step failing with err
func Fail(err error) Step {
	return func([]ai.Message) (ai.Message, error) {
		return ai.Message{}, err
	}
}

// LastToolResult returns the content of the last tool message in history
func LastToolResult(history []ai.Message) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == ai.RoleTool {
			return history[i].Content
		}
	}
	return ""
}
