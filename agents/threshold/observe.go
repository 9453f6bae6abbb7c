/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package threshold

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	oteltrace "go.opentelemetry.io/otel/trace"
)

var (
	attemptCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentfactory_threshold_attempts_total",
			Help: "Total number of harness attempts by outcome",
		},
		[]string{"name", "outcome"},
	)

	runCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentfactory_threshold_runs_total",
			Help: "Total number of harness runs by verdict",
		},
		[]string{"name", "mode", "verdict"},
	)
)

// Attempt outcome labels.
const (
	OutcomeSuccess    = "success"
	OutcomeFailure    = "failure"
	OutcomeUnexpected = "unexpected"
	OutcomePanic      = "panic"
	OutcomeCancelled  = "cancelled"
)

// Run verdict labels.
const (
	VerdictPassed    = "passed"
	VerdictFailed    = "failed"
	VerdictAborted   = "aborted"
	VerdictCancelled = "cancelled"
	VerdictInvalid   = "invalid"
)

func tracer() oteltrace.Tracer {
	return otel.Tracer("chainguard.ai.agents.threshold",
		oteltrace.WithInstrumentationVersion("1.0.0"))
}

// Record describes one consumed attempt outcome.
type Record struct {
	// Attempt is the 1-based attempt number, in launch order.
	Attempt int
	// Outcome is one of the Outcome* labels.
	Outcome   string
	Err       error
	StartTime time.Time
	EndTime   time.Time
}

// Duration returns how long the attempt ran.
func (r Record) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}

// Summary accumulates Records. Its Observe method can be used as
// Config.Observer.
type Summary struct {
	mu      sync.Mutex
	records []Record
}

// Observe appends r to the summary.
func (s *Summary) Observe(r Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, r)
}

// Records returns a copy of the observed records in consumption order.
func (s *Summary) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Successes returns the number of successful records.
func (s *Summary) Successes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.records {
		if r.Outcome == OutcomeSuccess {
			n++
		}
	}
	return n
}
