/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package threshold

import (
	"context"
	"errors"

	"github.com/chainguard-dev/clog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Run executes op up to cfg.MaxAttempts times, with at most
// cfg.ConcurrencyLimit attempts in flight, and returns the value of the
// first successful attempt once cfg.MinSuccesses attempts have succeeded.
//
// Outcomes are evaluated in completion order. The run stops early when the
// threshold is reached or can no longer be reached; remaining attempts are
// cancelled and awaited before Run returns. An error rejected by
// cfg.Expected is returned as-is. A run that cannot reach the threshold
// returns an *AggregateError.
func Run[T any](ctx context.Context, cfg Config, name string, op Operation[T]) (T, error) {
	var zero T
	if err := cfg.Validate(); err != nil {
		runCounter.WithLabelValues(name, "concurrent", VerdictInvalid).Inc()
		return zero, err
	}

	ctx, span := startRun(ctx, cfg, name, "concurrent")
	log := clog.FromContext(ctx).With("name", name)

	runCtx, cancel := context.WithCancel(ctx)
	sem := semaphore.NewWeighted(int64(cfg.ConcurrencyLimit))
	// Every attempt sends exactly one outcome; the buffer keeps late
	// senders from blocking once the verdict is in.
	outcomes := make(chan outcome[T], cfg.MaxAttempts)

	var g errgroup.Group
	for i := range cfg.MaxAttempts {
		g.Go(func() error {
			if err := sem.Acquire(runCtx, 1); err != nil {
				outcomes <- outcome[T]{attempt: i, err: err, skipped: true}
				return nil
			}
			defer sem.Release(1)
			outcomes <- runAttempt(runCtx, cfg, name, i, op)
			return nil
		})
	}

	t := newTally[T](cfg)
	value, err := func() (T, error) {
		defer func() {
			cancel()
			_ = g.Wait()
		}()
		for range cfg.MaxAttempts {
			o := <-outcomes
			switch {
			case o.skipped:
				// runCtx is only cancelled from outside while we are still
				// consuming outcomes.
				return zero, ctx.Err()
			case o.cancelled:
				t.observe(o)
				return zero, ctx.Err()
			case o.unexpected:
				t.observe(o)
				return zero, o.err
			}
			if t.record(o) != running {
				break
			}
		}
		return t.verdict(name)
	}()

	finishRun(ctx, span, log, t, "concurrent", name, err)
	return value, err
}

// Wrap returns an Operation that runs op through Run with cfg each time it
// is invoked.
func Wrap[T any](cfg Config, name string, op Operation[T]) Operation[T] {
	return func(ctx context.Context) (T, error) {
		return Run(ctx, cfg, name, op)
	}
}

func startRun(ctx context.Context, cfg Config, name, mode string) (context.Context, oteltrace.Span) {
	return tracer().Start(ctx, "threshold.run", oteltrace.WithAttributes(
		attribute.String("threshold.name", name),
		attribute.String("threshold.mode", mode),
		attribute.Int("threshold.max_attempts", cfg.MaxAttempts),
		attribute.Int("threshold.min_successes", cfg.MinSuccesses),
		attribute.Int("threshold.concurrency_limit", cfg.ConcurrencyLimit),
	))
}

// finishRun records the verdict on the span, the log and the run counter,
// then ends the span.
func finishRun[T any](ctx context.Context, span oteltrace.Span, log *clog.Logger, t *tally[T], mode, name string, err error) {
	defer span.End()

	log = log.With("successes", t.successes).
		With("failures", len(t.failures)).
		With("attempts", t.attempts())
	span.SetAttributes(
		attribute.Int("threshold.successes", t.successes),
		attribute.Int("threshold.failures", len(t.failures)),
	)

	var agg *AggregateError
	verdict := VerdictPassed
	switch {
	case err == nil:
		span.SetStatus(codes.Ok, "")
		log.Info("Success threshold reached")
	case errors.As(err, &agg):
		verdict = VerdictFailed
		span.SetStatus(codes.Error, "success threshold not met")
		log.With("min_successes", t.cfg.MinSuccesses).Error("Success threshold not met")
	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		verdict = VerdictCancelled
		span.SetStatus(codes.Error, err.Error())
		log.With("error", err).Warn("Run cancelled")
	default:
		verdict = VerdictAborted
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.With("error", err).Error("Run aborted by unexpected error")
	}
	span.SetAttributes(attribute.String("threshold.verdict", verdict))
	runCounter.WithLabelValues(name, mode, verdict).Inc()
}
