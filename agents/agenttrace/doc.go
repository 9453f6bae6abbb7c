/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package agenttrace records agent executions: the prompt, each tool call,
the final result or error, and timing.

# Overview

  - GenerationContext: workflow, harness attempt and model for the execution
  - Trace[T]: one agent execution with a result of type T
  - ToolCall[T]: one tool invocation within a trace
  - Tracer[T]: creates traces and records them on completion

Every trace opens an "agent.execution" OpenTelemetry span and every tool
call an "agent.tool_call" child span.

# Usage

	ctx = agenttrace.WithGenerationContext(ctx, agenttrace.GenerationContext{
		Workflow: "generate-agent",
		Attempt:  2,
		Model:    "claude-sonnet-4",
	})

	tracer := agenttrace.ByCode[string](func(trace *agenttrace.Trace[string]) {
		log.Printf("trace %s took %v", trace.ID, trace.Duration())
	})
	ctx = agenttrace.WithTracer[string](ctx, tracer)

	trace := agenttrace.StartTrace[string](ctx, "Write an agent that summarises RSS feeds")
	tc := trace.StartToolCall("tc1", "write_file", map[string]any{"path": "agent.go"})
	tc.Complete("ok", nil)
	trace.Complete("done", nil)

Higher level grading of traces lives in the evals package.
*/
package agenttrace
