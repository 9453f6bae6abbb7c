/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package evals

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"chainguard.dev/agentfactory/agents/agenttrace"
	"chainguard.dev/agentfactory/agents/threshold"
	"github.com/chainguard-dev/clog"
)

// ErrNoTrace is reported when an attempt returns without completing a trace.
var ErrNoTrace = errors.New("agent completed no trace")

// EvalError reports an attempt whose trace did not pass its checks.
type EvalError struct {
	Name     string
	Attempt  int
	Failures []string // "check: message"
	Graded   bool
	Grade    float64 // mean grade across graded checks
	MinGrade float64
}

func (e *EvalError) Error() string {
	reasons := make([]string, 0, len(e.Failures)+1)
	reasons = append(reasons, e.Failures...)
	if e.Graded && e.Grade < e.MinGrade {
		reasons = append(reasons, fmt.Sprintf("grade %.2f below minimum %.2f", e.Grade, e.MinGrade))
	}
	return fmt.Sprintf("evaluation %s attempt %d: %s", e.Name, e.Attempt, strings.Join(reasons, "; "))
}

// UntilConfig configures Until.
type UntilConfig struct {
	threshold.Config

	// MinGrade is the lowest acceptable mean grade across graded checks.
	// Zero disables the grade requirement.
	MinGrade float64

	// Model labels the generation context of each attempt.
	Model string

	// Observer, if set, returns the observer that check results for the
	// given attempt are reported to in addition to being collected.
	Observer func(attempt int) Observer
}

// DefaultUntilConfig returns the default harness configuration with no
// grade requirement.
func DefaultUntilConfig() UntilConfig {
	return UntilConfig{Config: threshold.DefaultConfig()}
}

// Validate checks the configuration.
func (c UntilConfig) Validate() error {
	if err := c.Config.Validate(); err != nil {
		return err
	}
	if c.MinGrade < 0 || c.MinGrade > 1 {
		return &threshold.ConfigurationError{
			MaxAttempts:      c.MaxAttempts,
			MinSuccesses:     c.MinSuccesses,
			ConcurrencyLimit: c.ConcurrencyLimit,
			Reason:           fmt.Sprintf("min grade %v outside [0, 1]", c.MinGrade),
		}
	}
	return nil
}

// Until runs an agent under the threshold harness and grades each attempt
// with checks. run must start and complete a trace for T through the tracer
// in its context (agenttrace.StartTrace). An attempt passes when run
// succeeds, a trace was completed, no check failed and the mean grade
// meets cfg.MinGrade. Failed checks surface as *EvalError, which the
// default expected set tallies as an ordinary failure.
//
// Until returns the trace of the first passing attempt.
func Until[T any](ctx context.Context, cfg UntilConfig, name string, run threshold.Operation[T], checks map[string]ObservableTraceCallback[T]) (*Trace[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return threshold.Run(ctx, cfg.Config, name, func(ctx context.Context) (*Trace[T], error) {
		attempt, _ := threshold.AttemptFromContext(ctx)
		ctx = agenttrace.WithGenerationContext(ctx, agenttrace.GenerationContext{
			Workflow: name,
			Attempt:  attempt,
			Model:    cfg.Model,
		})

		var inner Observer
		if cfg.Observer != nil {
			inner = cfg.Observer(attempt)
		} else {
			inner = NewLogObserver(ctx, name)
		}
		root := NewNamespacedObserver(func(ns string) *ResultCollector {
			return NewResultCollector(namespaced{Observer: inner, ns: ns})
		})

		var (
			mu     sync.Mutex
			traced *Trace[T]
		)
		callbacks := append(BuildCallbacks(root, checks), func(tr *Trace[T]) {
			mu.Lock()
			defer mu.Unlock()
			traced = tr
		})
		ctx = agenttrace.WithTracer(ctx, agenttrace.ByCode(callbacks...))

		if _, err := run(ctx); err != nil {
			return nil, err
		}

		mu.Lock()
		defer mu.Unlock()
		if traced == nil {
			return nil, ErrNoTrace
		}

		evalErr := &EvalError{Name: name, Attempt: attempt, MinGrade: cfg.MinGrade}
		var sum float64
		var graded int
		root.Walk(func(ns string, rc *ResultCollector) {
			for _, f := range rc.Failures() {
				evalErr.Failures = append(evalErr.Failures, strings.TrimPrefix(ns, "/")+": "+f)
			}
			for _, g := range rc.Grades() {
				sum += g.Score
				graded++
			}
		})
		if graded > 0 {
			evalErr.Graded = true
			evalErr.Grade = sum / float64(graded)
		}
		if len(evalErr.Failures) > 0 || (evalErr.Graded && evalErr.Grade < cfg.MinGrade) {
			return nil, evalErr
		}

		clog.FromContext(ctx).With("attempt", attempt).
			With("grade", evalErr.Grade).
			Info("Evaluation passed")
		return traced, nil
	})
}

// namespaced prefixes messages with the check namespace.
type namespaced struct {
	Observer
	ns string
}

func (n namespaced) Fail(msg string) { n.Observer.Fail(n.ns + ": " + msg) }
func (n namespaced) Log(msg string) { n.Observer.Log(n.ns + ": " + msg) }
