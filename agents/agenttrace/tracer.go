/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace

import (
	"context"

	"go.opentelemetry.io/otel"
	oteltrace "go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// Tracer creates traces and records them once they complete.
type Tracer[T any] interface {
	// NewTrace creates a new trace for the given prompt.
	NewTrace(ctx context.Context, prompt string) *Trace[T]
	// RecordTrace records a completed trace.
	RecordTrace(trace *Trace[T])
}

// TraceCallback receives completed traces.
type TraceCallback[T any] func(*Trace[T])

// tracerKey is keyed by result type so tracers for different T can share a
// context.
type tracerKey[T any] struct{}

// WithTracer returns a context carrying tracer.
func WithTracer[T any](ctx context.Context, tracer Tracer[T]) context.Context {
	return context.WithValue(ctx, tracerKey[T]{}, tracer)
}

// TracerFromContext returns the tracer for T carried by ctx, falling back to
// a tracer that logs completed traces.
func TracerFromContext[T any](ctx context.Context) Tracer[T] {
	if tracer, ok := ctx.Value(tracerKey[T]{}).(Tracer[T]); ok {
		return tracer
	}
	return NewDefaultTracer[T](ctx)
}

// StartTrace starts a trace with the tracer from ctx.
func StartTrace[T any](ctx context.Context, prompt string) *Trace[T] {
	return TracerFromContext[T](ctx).NewTrace(ctx, prompt)
}

type byCodeTracer[T any] struct {
	callbacks []TraceCallback[T]
}

// ByCode returns a Tracer that hands every completed trace to callbacks.
// Callbacks run in parallel and RecordTrace returns once all of them have.
func ByCode[T any](callbacks ...TraceCallback[T]) Tracer[T] {
	return &byCodeTracer[T]{callbacks: callbacks}
}

func (t *byCodeTracer[T]) NewTrace(ctx context.Context, prompt string) *Trace[T] {
	return newTraceWithTracer[T](ctx, t, prompt)
}

func (t *byCodeTracer[T]) RecordTrace(trace *Trace[T]) {
	var g errgroup.Group
	for _, callback := range t.callbacks {
		if callback == nil {
			continue
		}
		g.Go(func() error {
			callback(trace)
			return nil
		})
	}
	_ = g.Wait()
}

func otelTracer() oteltrace.Tracer {
	return otel.Tracer("chainguard.ai.agents.agenttrace",
		oteltrace.WithInstrumentationVersion("1.0.0"))
}
