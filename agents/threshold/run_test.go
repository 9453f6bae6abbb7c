/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package threshold_test

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"chainguard.dev/agentfactory/agents/threshold"
)

var errFlaky = errors.New("flaky assertion failed")

// valueError stands in for an operation-specific error type callers match on.
type valueError struct {
	msg string
}

func (e *valueError) Error() string { return e.msg }

func testConfig(maxAttempts, minSuccesses, concurrency int) threshold.Config {
	cfg := threshold.DefaultConfig()
	cfg.MaxAttempts = maxAttempts
	cfg.MinSuccesses = minSuccesses
	cfg.ConcurrencyLimit = concurrency
	return cfg
}

// gated returns an operation whose first n invocations resolve through
// first; later invocations block until their context is cancelled. It also
// returns counters for invocations and for invocations still running.
func gated(n int32, first func() (string, error)) (threshold.Operation[string], *atomic.Int32, *atomic.Int32) {
	var calls, inflight atomic.Int32
	op := func(ctx context.Context) (string, error) {
		inflight.Add(1)
		defer inflight.Add(-1)
		if calls.Add(1) <= n {
			return first()
		}
		<-ctx.Done()
		return "", ctx.Err()
	}
	return op, &calls, &inflight
}

func TestRun_InvalidConfigNeverInvokes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name                string
		maxAttempts         int
		minSucc             int
		concurrency         int
		wantReasonSubstring string
	}{
		{name: "max below min", maxAttempts: 2, minSucc: 3, concurrency: 1, wantReasonSubstring: "max attempts"},
		{name: "zero min", maxAttempts: 3, minSucc: 0, concurrency: 1, wantReasonSubstring: "min successes"},
		{name: "negative min", maxAttempts: 3, minSucc: -1, concurrency: 1, wantReasonSubstring: "min successes"},
		{name: "zero concurrency", maxAttempts: 3, minSucc: 1, concurrency: 0, wantReasonSubstring: "concurrency limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var calls atomic.Int32
			_, err := threshold.Run(context.Background(), testConfig(tt.maxAttempts, tt.minSucc, tt.concurrency), "invalid",
				func(context.Context) (int, error) {
					calls.Add(1)
					return 1, nil
				})

			var cfgErr *threshold.ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("error: got = %v, wanted = *ConfigurationError", err)
			}
			if !strings.Contains(cfgErr.Reason, tt.wantReasonSubstring) {
				t.Errorf("reason: got = %q, wanted substring %q", cfgErr.Reason, tt.wantReasonSubstring)
			}
			if got := calls.Load(); got != 0 {
				t.Errorf("invocations: got = %d, wanted = 0", got)
			}
		})
	}
}

func TestRun_AlwaysSucceeds(t *testing.T) {
	t.Parallel()
	configs := [][3]int{{1, 1, 1}, {3, 2, 2}, {5, 5, 2}, {5, 1, 5}, {8, 3, 3}}
	for _, c := range configs {
		var calls atomic.Int32
		got, err := threshold.Run(context.Background(), testConfig(c[0], c[1], c[2]), "always-ok",
			func(context.Context) (string, error) {
				calls.Add(1)
				return "ok", nil
			})
		if err != nil {
			t.Fatalf("config %v: unexpected error: %v", c, err)
		}
		if got != "ok" {
			t.Errorf("config %v: value: got = %q, wanted = %q", c, got, "ok")
		}
		if n := int(calls.Load()); n < c[1] || n > c[0] {
			t.Errorf("config %v: invocations: got = %d, wanted %d..%d", c, n, c[1], c[0])
		}
	}
}

func TestRun_AlwaysFails(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	_, err := threshold.Run(context.Background(), testConfig(4, 2, 2), "always-fails",
		func(context.Context) (string, error) {
			calls.Add(1)
			return "", &valueError{msg: "boom"}
		})

	var ve *valueError
	if !errors.As(err, &ve) {
		t.Fatalf("error: got = %T, wanted chain containing *valueError", err)
	}
	var agg *threshold.AggregateError
	if !errors.As(err, &agg) {
		t.Fatalf("error: got = %T, wanted *AggregateError", err)
	}
	if !errors.Is(err, threshold.ErrThresholdNotMet) {
		t.Error("errors.Is(err, ErrThresholdNotMet): got = false, wanted = true")
	}
	if agg.Successes != 0 {
		t.Errorf("successes: got = %d, wanted = 0", agg.Successes)
	}
	// Two of four may fail; the third failure decides the run.
	if agg.Attempts != 3 || len(agg.Failures) != 3 {
		t.Errorf("attempts/failures: got = %d/%d, wanted = 3/3", agg.Attempts, len(agg.Failures))
	}
	if got := calls.Load(); got > 4 {
		t.Errorf("invocations: got = %d, wanted <= 4", got)
	}
}

func TestRun_EarlySuccessCancelsRemaining(t *testing.T) {
	t.Parallel()
	op, calls, inflight := gated(2, func() (string, error) { return "ok", nil })

	got, err := threshold.Run(context.Background(), testConfig(5, 2, 2), "early-success", op)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" {
		t.Errorf("value: got = %q, wanted = %q", got, "ok")
	}
	if n := calls.Load(); n >= 5 {
		t.Errorf("invocations: got = %d, wanted < 5", n)
	}
	if n := inflight.Load(); n != 0 {
		t.Errorf("attempts still running after return: got = %d, wanted = 0", n)
	}
}

func TestRun_EarlyFailureCancelsRemaining(t *testing.T) {
	t.Parallel()
	op, calls, inflight := gated(2, func() (string, error) { return "", errFlaky })

	_, err := threshold.Run(context.Background(), testConfig(5, 4, 2), "early-failure", op)

	var agg *threshold.AggregateError
	if !errors.As(err, &agg) {
		t.Fatalf("error: got = %v, wanted *AggregateError", err)
	}
	if !errors.Is(err, errFlaky) {
		t.Errorf("errors.Is(err, errFlaky): got = false, wanted = true")
	}
	if agg.Attempts != 2 || agg.Successes != 0 {
		t.Errorf("attempts/successes: got = %d/%d, wanted = 2/0", agg.Attempts, agg.Successes)
	}
	if n := calls.Load(); n >= 5 {
		t.Errorf("invocations: got = %d, wanted < 5", n)
	}
	if n := inflight.Load(); n != 0 {
		t.Errorf("attempts still running after return: got = %d, wanted = 0", n)
	}
}

func TestRun_UnexpectedErrorEscapes(t *testing.T) {
	t.Parallel()
	errBug := errors.New("nil pointer in tool registry")
	cfg := testConfig(5, 2, 2)
	cfg.Expected = threshold.ExpectErrors(errFlaky)

	op, _, inflight := gated(1, func() (string, error) { return "", errBug })
	_, err := threshold.Run(context.Background(), cfg, "unexpected", op)
	if err != errBug {
		t.Fatalf("error: got = %v, wanted = %v", err, errBug)
	}
	if n := inflight.Load(); n != 0 {
		t.Errorf("attempts still running after return: got = %d, wanted = 0", n)
	}
}

func TestRun_PanicIsUnexpected(t *testing.T) {
	t.Parallel()
	cfg := testConfig(3, 1, 1)
	cfg.Expected = func(error) bool { return true }

	_, err := threshold.Run(context.Background(), cfg, "panics", func(context.Context) (int, error) {
		panic("generated agent has no tools")
	})

	var pe *threshold.PanicError
	if !errors.As(err, &pe) {
		t.Fatalf("error: got = %v, wanted *PanicError", err)
	}
	if pe.Value != "generated agent has no tools" {
		t.Errorf("panic value: got = %v, wanted = %q", pe.Value, "generated agent has no tools")
	}
	if len(pe.Stack) == 0 {
		t.Error("panic stack: got = empty, wanted = captured stack")
	}
}

func TestRun_ConcurrencyBound(t *testing.T) {
	t.Parallel()
	for _, limit := range []int{1, 2, 3} {
		var active, peak atomic.Int32
		_, err := threshold.Run(context.Background(), testConfig(9, 9, limit), "bounded",
			func(context.Context) (int, error) {
				n := active.Add(1)
				defer active.Add(-1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(2 * time.Millisecond)
				return int(n), nil
			})
		if err != nil {
			t.Fatalf("limit %d: unexpected error: %v", limit, err)
		}
		if got := int(peak.Load()); got > limit || got < 1 {
			t.Errorf("limit %d: peak concurrency: got = %d, wanted 1..%d", limit, got, limit)
		}
	}
}

func TestRun_ScenarioAllSucceed(t *testing.T) {
	t.Parallel()
	got, err := threshold.Run(context.Background(), testConfig(3, 2, 2), "scenario-a",
		func(context.Context) (string, error) { return "ok", nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" {
		t.Errorf("value: got = %q, wanted = %q", got, "ok")
	}
}

func TestRun_ScenarioFirstAttemptFails(t *testing.T) {
	t.Parallel()
	op := func(ctx context.Context) (string, error) {
		if n, _ := threshold.AttemptFromContext(ctx); n == 1 {
			return "", errFlaky
		}
		return "ok", nil
	}

	// With one spare failure the remaining attempts carry the run.
	got, err := threshold.Run(context.Background(), testConfig(3, 2, 2), "scenario-b-slack", op)
	if err != nil {
		t.Fatalf("min 2 of 3: unexpected error: %v", err)
	}
	if got != "ok" {
		t.Errorf("min 2 of 3: value: got = %q, wanted = %q", got, "ok")
	}

	// Requiring every attempt to pass leaves no room for the failure.
	_, err = threshold.Run(context.Background(), testConfig(3, 3, 2), "scenario-b-strict", op)
	if !errors.Is(err, errFlaky) {
		t.Errorf("min 3 of 3: error: got = %v, wanted chain containing %v", err, errFlaky)
	}
}

func TestRun_ScenarioSingleAttemptFails(t *testing.T) {
	t.Parallel()
	_, err := threshold.Run(context.Background(), testConfig(1, 1, 1), "scenario-c",
		func(context.Context) (string, error) { return "", &valueError{msg: "boom"} })

	var ve *valueError
	if !errors.As(err, &ve) {
		t.Fatalf("error: got = %T, wanted chain containing *valueError", err)
	}
	msg := err.Error()
	for _, want := range []string{"boom", "0 successes out of 1 attempts", "Required at least 1"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message: got = %q, wanted substring %q", msg, want)
		}
	}
}

func TestRun_ParentContextCancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := threshold.Run(ctx, testConfig(3, 1, 1), "cancelled",
		func(ctx context.Context) (int, error) {
			<-ctx.Done()
			return 0, ctx.Err()
		})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error: got = %v, wanted = %v", err, context.Canceled)
	}
}

func TestRun_ObserverSeesCompletionOrder(t *testing.T) {
	t.Parallel()
	var summary threshold.Summary
	cfg := testConfig(3, 3, 3)
	cfg.Observer = summary.Observe

	// Attempt 1 finishes last even though it starts first.
	_, err := threshold.Run(context.Background(), cfg, "ordering", func(ctx context.Context) (int, error) {
		n, _ := threshold.AttemptFromContext(ctx)
		if n == 1 {
			time.Sleep(50 * time.Millisecond)
		}
		return n, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records := summary.Records()
	if len(records) != 3 {
		t.Fatalf("records: got = %d, wanted = 3", len(records))
	}
	if last := records[len(records)-1].Attempt; last != 1 {
		t.Errorf("last consumed attempt: got = %d, wanted = 1", last)
	}
	if got := summary.Successes(); got != 3 {
		t.Errorf("successes: got = %d, wanted = 3", got)
	}
}

func TestWrap(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	op := threshold.Wrap(testConfig(2, 1, 1), "wrapped", func(context.Context) (int, error) {
		calls.Add(1)
		return 42, nil
	})

	for range 3 {
		got, err := op(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 42 {
			t.Errorf("value: got = %d, wanted = 42", got)
		}
	}
	if n := calls.Load(); n < 3 || n > 6 {
		t.Errorf("invocations: got = %d, wanted 3..6", n)
	}
}

func TestFuncAndCheck(t *testing.T) {
	t.Parallel()
	got, err := threshold.Run(context.Background(), testConfig(1, 1, 1), "func",
		threshold.Func(func() (string, error) { return "sync", nil }))
	if err != nil || got != "sync" {
		t.Errorf("Func: got = (%q, %v), wanted = (%q, nil)", got, err, "sync")
	}

	_, err = threshold.Run(context.Background(), testConfig(2, 2, 1), "check",
		threshold.Check(func(context.Context) error { return errFlaky }))
	if !errors.Is(err, errFlaky) {
		t.Errorf("Check: error: got = %v, wanted chain containing %v", err, errFlaky)
	}
}
