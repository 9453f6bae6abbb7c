/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package testevals

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"chainguard.dev/agentfactory/agents/evals"
	"chainguard.dev/agentfactory/agents/threshold"
)

// Attempt records the failures of a single attempt of a Threshold test.
// It implements evals.Observer, so trace checks can report into it.
type Attempt struct {
	ctx    context.Context
	number int
	tb     testing.TB

	mu       sync.Mutex
	failures []string
	count    atomic.Int64
}

var _ evals.Observer = (*Attempt)(nil)

// attemptStop unwinds an attempt after Fatalf.
type attemptStop struct{}

// Context returns the attempt's context. It is cancelled once the run's
// verdict is known.
func (a *Attempt) Context() context.Context { return a.ctx }

// Number returns the 1-based attempt ordinal.
func (a *Attempt) Number() int { return a.number }

// Errorf records a failure and continues the attempt.
func (a *Attempt) Errorf(format string, args ...any) {
	a.Fail(fmt.Sprintf(format, args...))
}

// Fatalf records a failure and stops the attempt. It must be called from
// the goroutine running the attempt.
func (a *Attempt) Fatalf(format string, args ...any) {
	a.Fail(fmt.Sprintf(format, args...))
	panic(attemptStop{})
}

// Failed reports whether the attempt recorded any failure.
func (a *Attempt) Failed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.failures) > 0
}

func (a *Attempt) Fail(msg string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failures = append(a.failures, msg)
}

func (a *Attempt) Log(msg string) {
	a.tb.Logf("attempt %d: %s", a.number, msg)
}

func (a *Attempt) Grade(score float64, reasoning string) {
	a.tb.Logf("attempt %d: Grade: %.2f - %s", a.number, score, reasoning)
}

func (a *Attempt) Increment() { a.count.Add(1) }

func (a *Attempt) Total() int64 { return a.count.Load() }

func (a *Attempt) err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.failures) == 0 {
		return nil
	}
	return errors.New(strings.Join(a.failures, "; "))
}

func (a *Attempt) run(fn func(*Attempt)) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(attemptStop); !ok {
				panic(r)
			}
		}
	}()
	fn(a)
}

// Threshold runs fn as a k-of-n test: tb passes when at least
// cfg.MinSuccesses of cfg.MaxAttempts attempts record no failure. Failures
// are recorded on the Attempt rather than on tb, and tb fails once with the
// aggregate message when the threshold is not met.
func Threshold(tb testing.TB, cfg threshold.Config, fn func(*Attempt)) {
	tb.Helper()

	_, err := threshold.Run(tb.Context(), cfg, tb.Name(), func(ctx context.Context) (struct{}, error) {
		n, _ := threshold.AttemptFromContext(ctx)
		a := &Attempt{ctx: ctx, number: n, tb: tb}
		a.run(fn)
		return struct{}{}, a.err()
	})
	if err != nil {
		tb.Error(err)
	}
}
