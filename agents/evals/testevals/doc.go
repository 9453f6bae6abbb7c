/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package testevals adapts the evals framework to Go tests.
//
// New and NewPrefix return an evals.Observer that reports failures through
// a testing.TB:
//
//	obs := evals.NewNamespacedObserver(func(name string) evals.Observer {
//		return testevals.NewPrefix(t, name)
//	})
//	tracer := agenttrace.ByCode[string](
//		evals.Inject(obs.Child("tools"), evals.ExactToolCalls[string](1)),
//	)
//
// Threshold runs a test body k-of-n times so that a single bad model
// response does not fail the test:
//
//	testevals.Threshold(t, threshold.Config{MaxAttempts: 5, MinSuccesses: 4, ConcurrencyLimit: 2},
//		func(a *testevals.Attempt) {
//			out, err := agent.Execute(a.Context(), prompt)
//			if err != nil {
//				a.Fatalf("Execute: %v", err)
//			}
//			if !strings.Contains(out, "INSTRUCTIONS.md") {
//				a.Errorf("output does not mention INSTRUCTIONS.md")
//			}
//		})
//
// Attempt also implements evals.Observer, so trace checks can report
// straight into the attempt.
package testevals
