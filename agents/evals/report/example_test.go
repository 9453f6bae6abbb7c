/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package report_test

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"chainguard.dev/agentfactory/agents/evals"
	"chainguard.dev/agentfactory/agents/evals/report"
	"chainguard.dev/agentfactory/agents/threshold"
)

// quietObserver discards everything but the evaluation count.
type quietObserver struct {
	count int64
}

func (q *quietObserver) Fail(string) {}
func (q *quietObserver) Log(string) {}
func (q *quietObserver) Grade(float64, string) {}
func (q *quietObserver) Increment() { q.count++ }
func (q *quietObserver) Total() int64 { return q.count }

func newTree() *evals.NamespacedObserver[*evals.ResultCollector] {
	return evals.NewNamespacedObserver(func(string) *evals.ResultCollector {
		return evals.NewResultCollector(&quietObserver{})
	})
}

// ExampleSimple reports a generated agent that failed one of two runs.
func ExampleSimple() {
	obs := newTree()
	checks := obs.Child("generate-agent")
	checks.Fail("agent.go does not parse")
	checks.Grade(0.7, "tools are missing descriptions")
	checks.Increment()
	checks.Increment()

	text, failed := report.Simple(obs, 0.8)
	fmt.Printf("Has failures: %t\n", failed)
	fmt.Printf("Report:\n%s", text)

	// Output:
	// Has failures: true
	// Report:
	// generate-agent [❌ 50.0% pass, 0.70 avg] (1/2)
	// ├ 1 [FAIL] agent.go does not parse
	// └ 2 [0.70] tools are missing descriptions
}

// ExampleSimple_nestedNamespaces reports judge criteria per model.
func ExampleSimple_nestedNamespaces() {
	obs := newTree()
	claude := obs.Child("claude").Child("accuracy")
	claude.Grade(0.85, "correct and complete")
	claude.Increment()

	gemini := obs.Child("gemini").Child("accuracy")
	gemini.Fail("judge returned no score")
	gemini.Increment()

	text, _ := report.Simple(obs, 0.8)
	fmt.Printf("Report:\n%s", text)

	// Output:
	// Report:
	// claude
	// └ accuracy [0.85 avg] (1 result)
	// gemini
	// └ accuracy [❌ 0.0%] (0/1)
	//   └ 1 [FAIL] judge returned no score
}

// ExampleAttempts renders the attempts of a harness run.
func ExampleAttempts() {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	records := []threshold.Record{
		{Attempt: 2, Outcome: threshold.OutcomeSuccess, StartTime: start, EndTime: start.Add(1200 * time.Millisecond)},
		{Attempt: 1, Outcome: threshold.OutcomeFailure, Err: errors.New("missing INSTRUCTIONS.md"), StartTime: start, EndTime: start.Add(2 * time.Second)},
		{Attempt: 3, Outcome: threshold.OutcomeSuccess, StartTime: start, EndTime: start.Add(900 * time.Millisecond)},
	}

	text := report.Attempts(records)
	heading, _, _ := strings.Cut(text, "\n")
	fmt.Println(heading)
	// Output: ## Attempts (2/3 succeeded)
}
