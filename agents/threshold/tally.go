/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package threshold

// state is the verdict of a run so far.
type state int

const (
	running state = iota
	succeeded
	failed
)

// tally tracks the outcomes of a single run. It is only ever touched by the
// goroutine consuming outcomes, so it needs no locking.
type tally[T any] struct {
	cfg       Config
	successes int
	failures  []error
	first     T
	state     state
}

func newTally[T any](cfg Config) *tally[T] {
	return &tally[T]{cfg: cfg}
}

// record folds an expected outcome into the tally and returns the new state.
// Once a terminal state is reached further outcomes are ignored.
func (t *tally[T]) record(o outcome[T]) state {
	if t.state != running {
		return t.state
	}
	t.observe(o)

	if o.err == nil {
		if t.successes == 0 {
			t.first = o.value
		}
		t.successes++
		if t.successes >= t.cfg.MinSuccesses {
			t.state = succeeded
		}
	} else {
		t.failures = append(t.failures, o.err)
		if len(t.failures) > t.cfg.maxFailures() {
			t.state = failed
		}
	}
	return t.state
}

// observe forwards o to the configured Observer.
func (t *tally[T]) observe(o outcome[T]) {
	if t.cfg.Observer != nil {
		t.cfg.Observer(o.record())
	}
}

// attempts is the number of outcomes recorded.
func (t *tally[T]) attempts() int {
	return t.successes + len(t.failures)
}

// verdict translates the tally into the harness return values. A tally that
// never reached a terminal state is reported as a failure.
func (t *tally[T]) verdict(name string) (T, error) {
	if t.state == succeeded {
		return t.first, nil
	}
	var zero T
	failures := make([]error, len(t.failures))
	copy(failures, t.failures)
	return zero, &AggregateError{
		Name:         name,
		Successes:    t.successes,
		Attempts:     t.attempts(),
		MinSuccesses: t.cfg.MinSuccesses,
		Failures:     failures,
	}
}
