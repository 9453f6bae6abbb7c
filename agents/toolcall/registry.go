/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package toolcall

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"chainguard.dev/agentfactory/agents/agenttrace"
	"github.com/chainguard-dev/clog"
)

// Registry resolves tool calls to their descriptors.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Descriptor
	order []string
}

// NewRegistry returns a registry holding descriptors.
func NewRegistry(descriptors ...Descriptor) (*Registry, error) {
	r := &Registry{tools: make(map[string]Descriptor, len(descriptors))}
	for _, d := range descriptors {
		if err := r.Register(d); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds d. Names must be unique and every descriptor needs an
// Invoke function.
func (r *Registry) Register(d Descriptor) error {
	switch {
	case d.Name == "":
		return errors.New("tool name is required")
	case d.Invoke == nil:
		return fmt.Errorf("tool %s: invoke function is required", d.Name)
	case d.Parameters != nil && d.Parameters.Type != "object":
		return fmt.Errorf("tool %s: parameters must be an object schema, got %q", d.Name, d.Parameters.Type)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tools[d.Name]; ok {
		return fmt.Errorf("tool %s is already registered", d.Name)
	}
	r.tools[d.Name] = d
	r.order = append(r.order, d.Name)
	return nil
}

// Lookup returns the descriptor registered under name.
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.tools[name]
	return d, ok
}

// Descriptors returns the registered descriptors in registration order.
func (r *Registry) Descriptors() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// resolve finds the descriptor for call and checks its required
// parameters.
func (r *Registry) resolve(call Call) (Descriptor, error) {
	r.mu.RLock()
	d, ok := r.tools[call.Name]
	var available []string
	if !ok {
		available = sortedNames(r.tools)
	}
	r.mu.RUnlock()

	if !ok {
		return Descriptor{}, &UnknownToolError{Name: call.Name, Available: available}
	}
	if missing := d.missing(call.Args); len(missing) > 0 {
		return Descriptor{}, &ParameterError{Tool: d.Name, Missing: missing}
	}
	return d, nil
}

// Invoke validates call against its descriptor and runs it. Unknown tools
// fail with *UnknownToolError and missing required parameters with
// *ParameterError.
func (r *Registry) Invoke(ctx context.Context, call Call) (any, error) {
	d, err := r.resolve(call)
	if err != nil {
		return nil, err
	}
	return d.Invoke(ctx, call.Args)
}

// Dispatch is Invoke that records the call on trace. Calls that cannot be
// resolved are recorded as bad tool calls.
func Dispatch[T any](ctx context.Context, r *Registry, trace *agenttrace.Trace[T], call Call) (any, error) {
	log := clog.FromContext(ctx).With("tool", call.Name).With("tool_call_id", call.ID)

	d, err := r.resolve(call)
	if err != nil {
		log.With("error", err).Warn("Rejected tool call")
		trace.BadToolCall(call.ID, call.Name, call.Args, err)
		return nil, err
	}

	tc := trace.StartToolCall(call.ID, call.Name, call.Args)
	result, err := d.Invoke(trace.Context(), call.Args)
	tc.Complete(result, err)
	if err != nil {
		log.With("error", err).Warn("Tool call failed")
	}
	return result, err
}
