/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package evals

import "sync"

// Grade is a score with its reasoning.
type Grade struct {
	Score     float64
	Reasoning string
}

// ResultCollector wraps an Observer and keeps the failures and grades it
// sees. Failures are forwarded to the inner observer as log lines so the
// collector decides what a failure means.
type ResultCollector struct {
	inner    Observer
	mu       sync.Mutex
	failures []string
	grades   []Grade
}

// NewResultCollector wraps inner.
func NewResultCollector(inner Observer) *ResultCollector {
	return &ResultCollector{inner: inner}
}

func (r *ResultCollector) Fail(msg string) {
	r.inner.Log(msg)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, msg)
}

func (r *ResultCollector) Log(msg string) {
	r.inner.Log(msg)
}

func (r *ResultCollector) Grade(score float64, reasoning string) {
	r.inner.Grade(score, reasoning)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.grades = append(r.grades, Grade{Score: score, Reasoning: reasoning})
}

func (r *ResultCollector) Increment() {
	r.inner.Increment()
}

func (r *ResultCollector) Total() int64 {
	return r.inner.Total()
}

// Failures returns a copy of the collected failure messages.
func (r *ResultCollector) Failures() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.failures))
	copy(out, r.failures)
	return out
}

// Grades returns a copy of the collected grades.
func (r *ResultCollector) Grades() []Grade {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Grade, len(r.grades))
	copy(out, r.grades)
	return out
}

// MeanGrade returns the mean score of the collected grades. ok is false
// when nothing was graded.
func (r *ResultCollector) MeanGrade() (mean float64, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.grades) == 0 {
		return 0, false
	}
	var sum float64
	for _, g := range r.grades {
		sum += g.Score
	}
	return sum / float64(len(r.grades)), true
}
