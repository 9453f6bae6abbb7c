/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package toolcall

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"chainguard.dev/agentfactory/agents/schema"
	"github.com/invopop/jsonschema"
)

// Call is one tool invocation requested by a model.
type Call struct {
	ID   string
	Name string
	Args map[string]any
}

// InvokeFunc serves a tool call. The returned value is sent back to the
// model as the tool result.
type InvokeFunc func(ctx context.Context, args map[string]any) (any, error)

// Descriptor describes a tool and the function that serves it.
type Descriptor struct {
	Name        string
	Description string
	// Parameters is an object schema. Nil means the tool takes no
	// parameters.
	Parameters *jsonschema.Schema
	Invoke     InvokeFunc
}

// For returns a descriptor whose parameters are the schema of P. Call
// arguments are decoded into P before fn runs.
func For[P any](name, description string, fn func(ctx context.Context, params P) (any, error)) Descriptor {
	return Descriptor{
		Name:        name,
		Description: description,
		Parameters:  schema.ReflectType[P](),
		Invoke: func(ctx context.Context, args map[string]any) (any, error) {
			params, err := decode[P](args)
			if err != nil {
				return nil, &ParameterError{Tool: name, Err: err}
			}
			return fn(ctx, params)
		},
	}
}

func decode[P any](args map[string]any) (P, error) {
	var params P
	data, err := json.Marshal(args)
	if err != nil {
		return params, err
	}
	err = json.Unmarshal(data, &params)
	return params, err
}

func (d Descriptor) parameters() *jsonschema.Schema {
	if d.Parameters == nil {
		return schema.Object()
	}
	return d.Parameters
}

// missing returns the required parameters absent from args, in schema
// order.
func (d Descriptor) missing(args map[string]any) []string {
	var missing []string
	for _, name := range d.parameters().Required {
		if v, ok := args[name]; !ok || v == nil {
			missing = append(missing, name)
		}
	}
	return missing
}

// UnknownToolError is returned for calls to a tool that is not registered.
type UnknownToolError struct {
	Name      string
	Available []string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool %q (available: %s)", e.Name, strings.Join(e.Available, ", "))
}

// ParameterError is returned when call arguments do not fit the tool's
// parameters.
type ParameterError struct {
	Tool    string
	Missing []string
	Err     error
}

func (e *ParameterError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("tool %s: missing required parameters: %s", e.Tool, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("tool %s: invalid parameters: %v", e.Tool, e.Err)
}

func (e *ParameterError) Unwrap() error { return e.Err }

// ErrorResult is the tool result reported to a model for a failed call.
func ErrorResult(err error) map[string]any {
	return map[string]any{"error": err.Error()}
}

func sortedNames(tools map[string]Descriptor) []string {
	names := make([]string, 0, len(tools))
	for name := range tools {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
