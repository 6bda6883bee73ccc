// Package tools provides the function-calling tools exposed to the chatbot.
package tools

import (
	"context"
	"fmt"

	"github.com/cropify/cropify/ai/core/llm"
)

// Tool is a function the LLM can invoke during a chat turn.
type Tool interface {
	// Name returns the tool's function name.
	Name() string

	// Description tells the model when to call the tool.
	Description() string

	// Parameters returns the JSON Schema for the tool input.
	Parameters() string

	// Run executes the tool with a JSON input string and returns a JSON result.
	Run(ctx context.Context, input string) (string, error)
}

// Registry holds the available tools. It is populated once at startup and
// read-only afterwards, so no locking is needed.
type Registry struct {
	tools map[string]Tool
	order []string
}

func NewRegistry() *Registry {
	return &Registry{tools: map[string]Tool{}}
}

// Register adds a tool. Registering the same name twice is a programming error.
func (r *Registry) Register(t Tool) error {
	if _, ok := r.tools[t.Name()]; ok {
		return fmt.Errorf("tool %q already registered", t.Name())
	}
	r.tools[t.Name()] = t
	r.order = append(r.order, t.Name())
	return nil
}

// Get returns the named tool, or nil when unknown.
func (r *Registry) Get(name string) Tool {
	return r.tools[name]
}

// Descriptors returns the tool descriptors in registration order.
func (r *Registry) Descriptors() []llm.ToolDescriptor {
	descriptors := make([]llm.ToolDescriptor, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		descriptors = append(descriptors, llm.ToolDescriptor{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	return descriptors
}
