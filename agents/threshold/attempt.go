/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package threshold

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	"github.com/chainguard-dev/clog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// outcome is the result of a single attempt.
type outcome[T any] struct {
	attempt int // 0-based launch ordinal
	value   T
	err     error
	// unexpected is set for errors outside the expected set and for panics.
	unexpected bool
	// cancelled is set when the attempt failed because its run context was
	// cancelled, either by the caller or once the verdict was reached.
	cancelled bool
	// skipped is set when the attempt never ran because its context was
	// cancelled while waiting for admission.
	skipped bool
	start   time.Time
	end     time.Time
}

func (o outcome[T]) label() string {
	var pe *PanicError
	switch {
	case o.err == nil:
		return OutcomeSuccess
	case errors.As(o.err, &pe):
		return OutcomePanic
	case o.cancelled:
		return OutcomeCancelled
	case o.unexpected:
		return OutcomeUnexpected
	default:
		return OutcomeFailure
	}
}

func (o outcome[T]) record() Record {
	return Record{
		Attempt:   o.attempt + 1,
		Outcome:   o.label(),
		Err:       o.err,
		StartTime: o.start,
		EndTime:   o.end,
	}
}

type attemptKey struct{}

// AttemptFromContext returns the 1-based attempt number of the attempt
// running with ctx.
func AttemptFromContext(ctx context.Context) (int, bool) {
	n, ok := ctx.Value(attemptKey{}).(int)
	return n, ok
}

// runAttempt executes op once and classifies its result.
func runAttempt[T any](ctx context.Context, cfg Config, name string, idx int, op Operation[T]) (o outcome[T]) {
	ctx, span := tracer().Start(ctx, "threshold.attempt", oteltrace.WithAttributes(
		attribute.String("threshold.name", name),
		attribute.Int("threshold.attempt", idx+1),
		attribute.Int("threshold.max_attempts", cfg.MaxAttempts),
	))
	log := clog.FromContext(ctx).With("name", name).
		With("attempt", idx+1).
		With("max_attempts", cfg.MaxAttempts)

	log.Info("Starting attempt")
	o.attempt = idx
	o.start = time.Now()

	defer func() {
		if r := recover(); r != nil {
			var zero T
			o.value = zero
			o.err = &PanicError{Attempt: idx + 1, Value: r, Stack: debug.Stack()}
		}
		o.end = time.Now()

		var pe *PanicError
		switch {
		case o.err == nil:
		case errors.As(o.err, &pe):
			o.unexpected = true
		case ctx.Err() != nil && errors.Is(o.err, ctx.Err()):
			o.cancelled = true
		default:
			o.unexpected = !cfg.expected(o.err)
		}

		label := o.label()
		attemptCounter.WithLabelValues(name, label).Inc()
		span.SetAttributes(attribute.String("threshold.outcome", label))

		switch {
		case o.err == nil:
			span.SetStatus(codes.Ok, "")
			log.With("duration", o.end.Sub(o.start)).Info("Attempt succeeded")
		case o.cancelled:
			log.With("duration", o.end.Sub(o.start)).Info("Attempt cancelled")
		case o.unexpected:
			span.RecordError(o.err)
			span.SetStatus(codes.Error, o.err.Error())
			log.With("error", o.err).Error("Attempt failed with unexpected error")
		default:
			span.RecordError(o.err)
			span.SetStatus(codes.Error, o.err.Error())
			log.With("error", o.err).Warn("Attempt failed")
		}
		span.End()
	}()

	o.value, o.err = op(context.WithValue(ctx, attemptKey{}, idx+1))
	return o
}
