/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// ReasoningContent is a block of model reasoning captured during a trace.
type ReasoningContent struct {
	Thinking string `json:"thinking"`
}

// ToolCall is a single tool invocation within a trace.
type ToolCall[T any] struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Params    map[string]any `json:"params"`
	Result    any            `json:"result"`
	Error     error          `json:"error,omitempty"`
	StartTime time.Time      `json:"start_time"`
	EndTime   time.Time      `json:"end_time"`

	trace *Trace[T]
	mu    sync.Mutex
	span  oteltrace.Span
}

// Trace is one agent execution, from prompt to result.
type Trace[T any] struct {
	ID          string             `json:"id"`
	InputPrompt string             `json:"input_prompt"`
	Generation  GenerationContext  `json:"generation,omitzero"`
	ToolCalls   []*ToolCall[T]     `json:"tool_calls"`
	Reasoning   []ReasoningContent `json:"reasoning,omitempty"`
	Result      T                  `json:"result"`
	Error       error              `json:"error,omitempty"`
	StartTime   time.Time          `json:"start_time"`
	EndTime     time.Time          `json:"end_time"`
	Metadata    map[string]any     `json:"metadata,omitempty"`

	tracer Tracer[T]
	mu     sync.Mutex
	ctx    context.Context
	span   oteltrace.Span
}

func newTraceWithTracer[T any](ctx context.Context, tracer Tracer[T], prompt string) *Trace[T] {
	gen := GetGenerationContext(ctx)

	attrs := append([]attribute.KeyValue{attribute.String("agent.prompt", prompt)}, gen.spanAttributes()...)
	ctx, span := otelTracer().Start(ctx, "agent.execution", oteltrace.WithAttributes(attrs...))

	return &Trace[T]{
		ID:          generateTraceID(),
		InputPrompt: prompt,
		Generation:  gen,
		ToolCalls:   []*ToolCall[T]{},
		StartTime:   time.Now(),
		Metadata:    make(map[string]any),
		tracer:      tracer,
		ctx:         ctx,
		span:        span,
	}
}

// Context returns the context of the trace's execution span.
func (t *Trace[T]) Context() context.Context {
	return t.ctx
}

// StartToolCall starts a tool call. It is added to the trace when completed.
func (t *Trace[T]) StartToolCall(id, name string, params map[string]any) *ToolCall[T] {
	_, span := otelTracer().Start(t.ctx, "agent.tool_call", oteltrace.WithAttributes(
		attribute.String("tool.name", name),
		attribute.String("tool.id", id),
	))
	return &ToolCall[T]{
		ID:        id,
		Name:      name,
		Params:    params,
		StartTime: time.Now(),
		trace:     t,
		span:      span,
	}
}

// BadToolCall records a tool call that could not be dispatched, such as an
// unknown tool or malformed arguments.
func (t *Trace[T]) BadToolCall(id, name string, params map[string]any, err error) {
	_, span := otelTracer().Start(t.ctx, "agent.tool_call", oteltrace.WithAttributes(
		attribute.String("tool.name", name),
		attribute.String("tool.id", id),
	))
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.End()

	now := time.Now()
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ToolCalls = append(t.ToolCalls, &ToolCall[T]{
		ID:        id,
		Name:      name,
		Params:    params,
		Error:     err,
		StartTime: now,
		EndTime:   now,
		trace:     t,
	})
}

// AddReasoning appends a reasoning block to the trace.
func (t *Trace[T]) AddReasoning(thinking string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Reasoning = append(t.Reasoning, ReasoningContent{Thinking: thinking})
}

// RecordTokenUsage annotates the execution span with model token usage.
func (t *Trace[T]) RecordTokenUsage(model string, inputTokens, outputTokens int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.span == nil {
		return
	}
	t.span.SetAttributes(
		attribute.String("model", model),
		attribute.Int64("tokens.input", inputTokens),
		attribute.Int64("tokens.output", outputTokens),
		attribute.Int64("tokens.total", inputTokens+outputTokens),
	)
}

// Complete finishes the tool call and adds it to its trace.
func (tc *ToolCall[T]) Complete(result any, err error) {
	tc.mu.Lock()
	tc.Result = result
	tc.Error = err
	tc.EndTime = time.Now()
	trace, span := tc.trace, tc.span
	tc.mu.Unlock()

	endSpan(span, err)

	trace.mu.Lock()
	defer trace.mu.Unlock()
	trace.ToolCalls = append(trace.ToolCalls, tc)
}

// Duration returns how long the tool call ran, or has been running.
func (tc *ToolCall[T]) Duration() time.Duration {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return elapsed(tc.StartTime, tc.EndTime)
}

// Complete finishes the trace and hands it to its tracer.
func (t *Trace[T]) Complete(result T, err error) {
	t.mu.Lock()
	t.Result = result
	t.Error = err
	t.EndTime = time.Now()
	tracer, span := t.tracer, t.span
	t.mu.Unlock()

	endSpan(span, err)
	tracer.RecordTrace(t)
}

// Duration returns how long the trace ran, or has been running.
func (t *Trace[T]) Duration() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return elapsed(t.StartTime, t.EndTime)
}

// String renders the trace for logs. Long values are truncated.
func (t *Trace[T]) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var sb strings.Builder
	fmt.Fprintf(&sb, "=== Trace %s ===\n", t.ID)
	fmt.Fprintf(&sb, "Prompt: %q\n", t.InputPrompt)
	if !t.Generation.IsZero() {
		fmt.Fprintf(&sb, "Generation: workflow=%s attempt=%d model=%s\n",
			t.Generation.Workflow, t.Generation.Attempt, t.Generation.Model)
	}
	fmt.Fprintf(&sb, "Duration: %v\n", elapsed(t.StartTime, t.EndTime))

	if len(t.Reasoning) > 0 {
		fmt.Fprintf(&sb, "\nReasoning (%d blocks):\n", len(t.Reasoning))
		for i, r := range t.Reasoning {
			fmt.Fprintf(&sb, "  [%d] %s\n", i+1, truncate(r.Thinking, 200))
		}
	}

	if len(t.ToolCalls) == 0 {
		sb.WriteString("\nNo tool calls\n")
	} else {
		fmt.Fprintf(&sb, "\nTool Calls (%d):\n", len(t.ToolCalls))
		for i, tc := range t.ToolCalls {
			// Read fields directly; tc.Duration would take the tool call lock
			// while the trace lock is held.
			fmt.Fprintf(&sb, "  [%d] %s (ID: %s)\n", i+1, tc.Name, tc.ID)
			fmt.Fprintf(&sb, "      Duration: %v\n", elapsed(tc.StartTime, tc.EndTime))
			if len(tc.Params) > 0 {
				sb.WriteString("      Params:\n")
				for k, v := range tc.Params {
					fmt.Fprintf(&sb, "        %s: %v\n", k, v)
				}
			}
			switch {
			case tc.Error != nil:
				fmt.Fprintf(&sb, "      Error: %v\n", tc.Error)
			case tc.Result != nil:
				fmt.Fprintf(&sb, "      Result: %s\n", truncate(fmt.Sprint(tc.Result), 200))
			}
		}
	}

	sb.WriteString("\nCompletion:\n")
	switch {
	case t.Error != nil:
		fmt.Fprintf(&sb, "  Error: %v\n", t.Error)
	case any(t.Result) != nil:
		fmt.Fprintf(&sb, "  Result: %s\n", truncate(fmt.Sprint(t.Result), 500))
	default:
		sb.WriteString("  Result: <nil>\n")
	}

	if len(t.Metadata) > 0 {
		sb.WriteString("\nMetadata:\n")
		for k, v := range t.Metadata {
			fmt.Fprintf(&sb, "  %s: %v\n", k, v)
		}
	}
	return sb.String()
}

func endSpan(span oteltrace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

func elapsed(start, end time.Time) time.Duration {
	if end.IsZero() {
		return time.Since(start)
	}
	return end.Sub(start)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

// generateTraceID returns an ID of the form YYYYMMDD-HHMMSS-xxxxxxxx.
func generateTraceID() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return time.Now().Format("20060102-150405.000000")
	}
	return fmt.Sprintf("%s-%s", time.Now().Format("20060102-150405"), hex.EncodeToString(b))
}
