/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace

import (
	"context"

	"github.com/chainguard-dev/clog"
)

// NewDefaultTracer returns a tracer that logs each completed trace to the
// clog logger carried by ctx.
func NewDefaultTracer[T any](ctx context.Context) Tracer[T] {
	logger := clog.FromContext(ctx)
	return ByCode[T](func(trace *Trace[T]) {
		log := logger.With("trace_id", trace.ID).
			With("duration_ms", trace.Duration().Milliseconds()).
			With("tool_calls", len(trace.ToolCalls))
		if gen := trace.Generation; !gen.IsZero() {
			log = log.With("workflow", gen.Workflow).With("attempt", gen.Attempt)
		}
		if trace.Error != nil {
			log.With("error", trace.Error).Warn("Agent trace failed", "trace", trace.String())
			return
		}
		log.Info("Agent trace completed", "trace", trace.String())
	})
}
