/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package evals grades agent traces recorded through the agenttrace package.

# Core Components

  - Observer: receives failures, log lines and grades for an evaluation
  - ObservableTraceCallback: a check run against a completed trace
  - NamespacedObserver: hierarchical observers, one per check
  - ResultCollector: an Observer wrapper that keeps failures and grades
  - MetricsObserver: an Observer that exports Prometheus metrics
  - Until: runs an agent k-of-n times and requires its traces to pass

# Checks

Checks are plain functions over a completed trace:

	checks := map[string]evals.ObservableTraceCallback[*Result]{
		"no-errors":     evals.NoErrors[*Result](),
		"writes-files":  evals.RequiredToolCalls[*Result]([]string{"write_file"}),
		"has-agent-go":  evals.ResultValidator(func(r *Result) error { ... }),
	}

	obs := evals.NewNamespacedObserver(func(name string) *evals.ResultCollector {
		return evals.NewResultCollector(evals.NewLogObserver(ctx, name))
	})
	ctx = agenttrace.WithTracer(ctx, evals.BuildTracer(obs, checks))

# Success Thresholds

Agents are non-deterministic, so a single passing trace says little.
Until runs the agent under the threshold harness and treats an attempt
as failed when any check fails or the mean grade is below MinGrade:

	cfg := evals.DefaultUntilConfig()
	trace, err := evals.Until(ctx, cfg, "generate-agent", generate, checks)

A failed attempt surfaces as an *EvalError inside the harness's
*threshold.AggregateError.
*/
package evals
