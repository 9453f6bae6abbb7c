/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package report renders evaluation results for humans.

  - Simple: a path tree over a NamespacedObserver of ResultCollectors with
    pass rates, mean grades, failures and low grades
  - Attempts: a markdown table of the attempts of one threshold harness run

Usage:

	obs := evals.NewNamespacedObserver(func(name string) *evals.ResultCollector {
		return evals.NewResultCollector(evals.NewLogObserver(ctx, name))
	})
	// ... run evaluations against obs ...
	text, failed := report.Simple(obs, 0.8)

	var summary threshold.Summary
	cfg.Observer = summary.Observe
	_, err := threshold.Run(ctx, cfg, "generate-agent", op)
	fmt.Print(report.Attempts(summary.Records()))

Generators do not modify their inputs and are safe for concurrent use.
*/
package report
