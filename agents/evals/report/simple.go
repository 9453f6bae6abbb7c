/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package report

import (
	"fmt"

	"chainguard.dev/agentfactory/agents/evals"
	"chainguard.dev/sdk/pathtree"
)

// Simple renders the observer tree as a path tree with the pass rate and
// mean grade of every namespace that evaluated something. Failures and
// grades below threshold are listed under their namespace. The boolean
// result reports whether any namespace fell below threshold.
func Simple(obs *evals.NamespacedObserver[*evals.ResultCollector], threshold float64) (string, bool) {
	tree := pathtree.New()
	tree.PrintOption = pathtree.KeyValueLabel
	hasFailure := false

	obs.Walk(func(name string, collector *evals.ResultCollector) {
		s := summarize(collector)
		if s.iterations == 0 {
			return
		}

		value, label := s.format()
		if s.below(threshold) {
			hasFailure = true
			value = "❌ " + value
		}
		if err := tree.Add(name, value, label); err != nil {
			_ = tree.Update(name, value, label)
		}

		n := 0
		for _, failure := range s.failures {
			n++
			_ = tree.Add(fmt.Sprintf("%s/%d", name, n), "FAIL", failure)
		}
		for _, g := range s.grades {
			if g.Score < threshold {
				n++
				_ = tree.Add(fmt.Sprintf("%s/%d", name, n), fmt.Sprintf("%.2f", g.Score), g.Reasoning)
			}
		}
	})

	return tree.String(), hasFailure
}

// summary is the aggregate of one namespace.
type summary struct {
	iterations int64
	failures   []string
	grades     []evals.Grade
	passRate   float64
	avgGrade   float64
}

func summarize(collector *evals.ResultCollector) summary {
	s := summary{
		iterations: collector.Total(),
		failures:   collector.Failures(),
		grades:     collector.Grades(),
	}
	if s.iterations > 0 {
		s.passRate = float64(s.passed()) / float64(s.iterations)
	}
	s.avgGrade, _ = collector.MeanGrade()
	return s
}

func (s summary) passed() int64 {
	return s.iterations - int64(len(s.failures))
}

func (s summary) below(threshold float64) bool {
	return s.passRate < threshold || (len(s.grades) > 0 && s.avgGrade < threshold)
}

// format returns the tree value and label. Pass rates are shown when
// something failed or nothing was graded.
func (s summary) format() (value, label string) {
	ratio := fmt.Sprintf("(%d/%d)", s.passed(), s.iterations)
	switch {
	case len(s.failures) > 0 && len(s.grades) > 0:
		return fmt.Sprintf("%.1f%% pass, %.2f avg", s.passRate*100, s.avgGrade), ratio
	case len(s.grades) > 0:
		word := "results"
		if len(s.grades) == 1 {
			word = "result"
		}
		return fmt.Sprintf("%.2f avg", s.avgGrade), fmt.Sprintf("(%d %s)", len(s.grades), word)
	default:
		return fmt.Sprintf("%.1f%%", s.passRate*100), ratio
	}
}
