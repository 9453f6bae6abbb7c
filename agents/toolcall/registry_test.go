/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package toolcall_test

import (
	"context"
	"errors"
	"testing"

	"chainguard.dev/agentfactory/agents/agenttrace"
	"chainguard.dev/agentfactory/agents/toolcall"
	"github.com/google/go-cmp/cmp"
)

type writeFile struct {
	Path    string `json:"path" jsonschema:"required,description=Path relative to the workspace"`
	Content string `json:"content" jsonschema:"required"`
	Mode    int    `json:"mode,omitempty"`
}

func newRegistry(t *testing.T, written map[string]string) *toolcall.Registry {
	t.Helper()
	reg, err := toolcall.NewRegistry(
		toolcall.For("write_file", "Write a file.", func(_ context.Context, p writeFile) (any, error) {
			written[p.Path] = p.Content
			return map[string]any{"bytes": len(p.Content)}, nil
		}),
		toolcall.Descriptor{
			Name:        "fail",
			Description: "Always fails.",
			Invoke: func(context.Context, map[string]any) (any, error) {
				return nil, errors.New("disk full")
			},
		},
	)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return reg
}

func TestRegistryInvoke(t *testing.T) {
	written := map[string]string{}
	reg := newRegistry(t, written)

	got, err := reg.Invoke(context.Background(), toolcall.Call{
		ID:   "tc1",
		Name: "write_file",
		Args: map[string]any{"path": "agent.go", "content": "package main", "mode": float64(420)},
	})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"bytes": 12}, got); diff != "" {
		t.Errorf("result (-want, +got): %s", diff)
	}
	if written["agent.go"] != "package main" {
		t.Errorf("written: got = %v, wanted agent.go", written)
	}
}

func TestRegistryInvokeErrors(t *testing.T) {
	tests := []struct {
		name        string
		call        toolcall.Call
		wantUnknown bool
		wantMissing []string
		wantParam   bool
	}{{
		name:        "unknown tool",
		call:        toolcall.Call{Name: "delete_file"},
		wantUnknown: true,
	}, {
		name:        "missing required",
		call:        toolcall.Call{Name: "write_file", Args: map[string]any{"path": "agent.go"}},
		wantMissing: []string{"content"},
		wantParam:   true,
	}, {
		name:        "null required",
		call:        toolcall.Call{Name: "write_file", Args: map[string]any{"path": nil, "content": "x"}},
		wantMissing: []string{"path"},
		wantParam:   true,
	}, {
		name:      "wrong type",
		call:      toolcall.Call{Name: "write_file", Args: map[string]any{"path": 7, "content": "x"}},
		wantParam: true,
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := newRegistry(t, map[string]string{})
			_, err := reg.Invoke(context.Background(), tt.call)

			var unknown *toolcall.UnknownToolError
			if got := errors.As(err, &unknown); got != tt.wantUnknown {
				t.Errorf("UnknownToolError: got = %v, wanted = %v (err: %v)", got, tt.wantUnknown, err)
			}
			if tt.wantUnknown {
				if diff := cmp.Diff([]string{"fail", "write_file"}, unknown.Available); diff != "" {
					t.Errorf("Available (-want, +got): %s", diff)
				}
			}

			var param *toolcall.ParameterError
			if got := errors.As(err, &param); got != tt.wantParam {
				t.Errorf("ParameterError: got = %v, wanted = %v (err: %v)", got, tt.wantParam, err)
			}
			if tt.wantParam {
				if diff := cmp.Diff(tt.wantMissing, param.Missing); diff != "" {
					t.Errorf("Missing (-want, +got): %s", diff)
				}
			}
		})
	}
}

func TestRegistryRegister(t *testing.T) {
	noop := func(context.Context, map[string]any) (any, error) { return nil, nil }

	reg, err := toolcall.NewRegistry(toolcall.Descriptor{Name: "a", Invoke: noop})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	if err := reg.Register(toolcall.Descriptor{Name: "a", Invoke: noop}); err == nil {
		t.Error("Register duplicate: got = nil, wanted error")
	}
	if err := reg.Register(toolcall.Descriptor{Name: "b"}); err == nil {
		t.Error("Register without Invoke: got = nil, wanted error")
	}
	if err := reg.Register(toolcall.Descriptor{Invoke: noop}); err == nil {
		t.Error("Register without name: got = nil, wanted error")
	}
	if err := reg.Register(toolcall.Descriptor{Name: "c", Invoke: noop}); err != nil {
		t.Errorf("Register: %v", err)
	}

	var names []string
	for _, d := range reg.Descriptors() {
		names = append(names, d.Name)
	}
	if diff := cmp.Diff([]string{"a", "c"}, names); diff != "" {
		t.Errorf("Descriptors (-want, +got): %s", diff)
	}
}

func TestDispatchRecordsTrace(t *testing.T) {
	reg := newRegistry(t, map[string]string{})

	var recorded *agenttrace.Trace[string]
	tracer := agenttrace.ByCode[string](func(tr *agenttrace.Trace[string]) { recorded = tr })
	trace := tracer.NewTrace(context.Background(), "Write the agent")

	ctx := context.Background()
	if _, err := toolcall.Dispatch(ctx, reg, trace, toolcall.Call{ID: "1", Name: "write_file", Args: map[string]any{"path": "a.go", "content": "package a"}}); err != nil {
		t.Errorf("Dispatch write_file: %v", err)
	}
	if _, err := toolcall.Dispatch(ctx, reg, trace, toolcall.Call{ID: "2", Name: "fail"}); err == nil {
		t.Error("Dispatch fail: got = nil, wanted error")
	}
	if _, err := toolcall.Dispatch(ctx, reg, trace, toolcall.Call{ID: "3", Name: "missing"}); err == nil {
		t.Error("Dispatch missing: got = nil, wanted error")
	}
	trace.Complete("done", nil)

	if recorded == nil {
		t.Fatal("trace was not recorded")
	}
	if got := len(recorded.ToolCalls); got != 3 {
		t.Fatalf("ToolCalls: got = %d, wanted = 3", got)
	}
	for i, wantErr := range []bool{false, true, true} {
		if got := recorded.ToolCalls[i].Error != nil; got != wantErr {
			t.Errorf("ToolCalls[%d].Error: got = %v, wanted error = %v", i, recorded.ToolCalls[i].Error, wantErr)
		}
	}
}
