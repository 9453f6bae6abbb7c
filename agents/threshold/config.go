/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package threshold

import (
	"context"
	"fmt"
	"time"
)

// Operation is a single unit of work run by the harness. Every attempt
// invokes the same Operation; it must honor ctx to be cancellable.
type Operation[T any] func(ctx context.Context) (T, error)

// Func adapts a function that does not take a context into an Operation.
// Such attempts cannot be interrupted and are always awaited to completion.
func Func[T any](fn func() (T, error)) Operation[T] {
	return func(context.Context) (T, error) {
		return fn()
	}
}

// Check adapts an error-only check (typically a test body) into an Operation.
func Check(fn func(ctx context.Context) error) Operation[struct{}] {
	return func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	}
}

// Config controls a harness run.
type Config struct {
	// MaxAttempts is the number of attempts that may be made (>= MinSuccesses).
	MaxAttempts int
	// MinSuccesses is the number of successful attempts required (>= 1).
	MinSuccesses int
	// ConcurrencyLimit bounds the number of attempts executing at once (>= 1).
	// Ignored by RunSequential.
	ConcurrencyLimit int
	// Expected reports whether an attempt error is an ordinary failure.
	// Errors it rejects abort the run. Defaults to DefaultExpected.
	Expected func(error) bool
	// Observer, when set, receives a Record for every attempt outcome the
	// harness consumes, in the order they are consumed.
	Observer func(Record)

	// Delay is the pause between sequential attempts.
	Delay time.Duration
	// MaxJitter is the maximum random jitter added to Delay.
	MaxJitter time.Duration
}

// DefaultConfig returns the configuration used for flaky LLM checks:
// four successes out of five attempts, two at a time.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:      5,
		MinSuccesses:     4,
		ConcurrencyLimit: 2,
		Expected:         DefaultExpected,
	}
}

// Validate checks the configuration invariants.
// It returns a *ConfigurationError describing the first violation.
func (c Config) Validate() error {
	var reason string
	switch {
	case c.MinSuccesses < 1:
		reason = fmt.Sprintf("min successes (%d) must be >= 1", c.MinSuccesses)
	case c.MaxAttempts < c.MinSuccesses:
		reason = fmt.Sprintf("max attempts (%d) must be >= min successes (%d)", c.MaxAttempts, c.MinSuccesses)
	case c.ConcurrencyLimit < 1:
		reason = fmt.Sprintf("concurrency limit (%d) must be >= 1", c.ConcurrencyLimit)
	case c.Delay < 0:
		reason = "delay cannot be negative"
	case c.MaxJitter < 0:
		reason = "max jitter cannot be negative"
	default:
		return nil
	}
	return &ConfigurationError{
		MaxAttempts:      c.MaxAttempts,
		MinSuccesses:     c.MinSuccesses,
		ConcurrencyLimit: c.ConcurrencyLimit,
		Reason:           reason,
	}
}

// maxFailures is the number of failures that can be absorbed while the
// threshold is still reachable.
func (c Config) maxFailures() int {
	return c.MaxAttempts - c.MinSuccesses
}

func (c Config) expected(err error) bool {
	if c.Expected == nil {
		return DefaultExpected(err)
	}
	return c.Expected(err)
}
