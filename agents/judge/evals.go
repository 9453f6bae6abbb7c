/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge

import (
	"errors"
	"fmt"

	"chainguard.dev/agentfactory/agents/evals"
)

// ValidScore checks that the judgement score lies in the range of mode.
func ValidScore(mode JudgmentMode) evals.ObservableTraceCallback[*Judgement] {
	return evals.ResultValidator(func(result *Judgement) error {
		switch mode {
		case GoldenMode, BenchmarkMode, StandaloneMode:
		default:
			return fmt.Errorf("unknown judgment mode: %s", mode)
		}
		low, high := scoreBounds(mode)
		if result.Score < low || result.Score > high {
			return fmt.Errorf("score %.2f is out of range [%.0f, %.0f] for %s mode", result.Score, low, high, mode)
		}
		return nil
	})
}

// HasReasoning checks that the judgement explains its score.
func HasReasoning() evals.ObservableTraceCallback[*Judgement] {
	return evals.ResultValidator(func(result *Judgement) error {
		if result.Reasoning == "" {
			return errors.New("judgment has no reasoning")
		}
		return nil
	})
}

// CheckMode checks the judgement mode.
func CheckMode(expectedMode JudgmentMode) evals.ObservableTraceCallback[*Judgement] {
	return evals.ResultValidator(func(result *Judgement) error {
		if result.Mode != expectedMode {
			return fmt.Errorf("mode %s does not match expected %s", result.Mode, expectedMode)
		}
		return nil
	})
}

// ScoreRange grades a judgement by how close its score falls to the
// expected range: 1.0 inside it, decreasing with the distance outside.
func ScoreRange(minScore, maxScore float64) evals.ObservableTraceCallback[*Judgement] {
	return func(o evals.Observer, trace *evals.Trace[*Judgement]) {
		if trace.Result == nil {
			o.Fail("judgment result is nil")
			return
		}
		score := trace.Result.Score
		grade := rangeGrade(score, minScore, maxScore)
		where := "within"
		if grade < 1 {
			where = "outside"
		}
		o.Grade(grade, fmt.Sprintf("score %.2f is %s expected range [%.2f, %.2f]", score, where, minScore, maxScore))
	}
}

// rangeGrade loses one point per two range widths of distance from the
// nearest bound.
func rangeGrade(score, minScore, maxScore float64) float64 {
	if score >= minScore && score <= maxScore {
		return 1
	}
	distance := min(abs(score-minScore), abs(score-maxScore))
	penalty := min(distance/((maxScore-minScore)*2), 1)
	return max(1-penalty, 0)
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// Evals returns the checks a judge's own traces should pass in mode.
func Evals(mode JudgmentMode) map[string]evals.ObservableTraceCallback[*Judgement] {
	return map[string]evals.ObservableTraceCallback[*Judgement]{
		"no-errors":     evals.NoErrors[*Judgement](),
		"valid-score":   ValidScore(mode),
		"check-mode":    CheckMode(mode),
		"has-reasoning": HasReasoning(),
		"one-tool-call": evals.MaximumNToolCalls[*Judgement](1),
	}
}
