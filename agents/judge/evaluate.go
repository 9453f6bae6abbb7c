/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"chainguard.dev/agentfactory/agents/agenttrace"
	"chainguard.dev/agentfactory/agents/evals"
	"chainguard.dev/agentfactory/agents/threshold"
	"github.com/chainguard-dev/clog"
	"golang.org/x/sync/errgroup"
)

// EvaluateConfig controls how a case is scored.
type EvaluateConfig struct {
	// Threshold is the k-of-n budget each criterion is judged with.
	Threshold threshold.Config
	// PassScore is the score a judgement needs for its attempt to succeed.
	PassScore float64
	// ObserverFor, when set, returns the observer that receives the
	// judgements for the checkpoint at index idx.
	ObserverFor func(idx int, criterion string) evals.Observer
}

// DefaultEvaluateConfig judges each criterion up to three times, requiring
// two judgements of at least 0.75.
func DefaultEvaluateConfig() EvaluateConfig {
	return EvaluateConfig{
		Threshold: threshold.Config{
			MaxAttempts:      3,
			MinSuccesses:     2,
			ConcurrencyLimit: 3,
			Expected:         threshold.DefaultExpected,
		},
		PassScore: 0.75,
	}
}

// Validate checks the threshold budget and the pass score.
func (c EvaluateConfig) Validate() error {
	if err := c.Threshold.Validate(); err != nil {
		return err
	}
	if c.PassScore < -1 || c.PassScore > 1 {
		return fmt.Errorf("pass score %.2f must be between -1 and 1", c.PassScore)
	}
	return nil
}

// NotPassedError fails an attempt whose judgement scored below the pass
// score.
type NotPassedError struct {
	Judgement *Judgement
	PassScore float64
}

func (e *NotPassedError) Error() string {
	return fmt.Sprintf("score %.2f below pass score %.2f: %s", e.Judgement.Score, e.PassScore, e.Judgement.Reasoning)
}

// CriterionResult is the scored outcome of one checkpoint.
type CriterionResult struct {
	Criteria string `json:"criteria"`
	Points   int    `json:"points"`
	Passed   bool   `json:"passed"`
	// Score is the mean score of the judgements received.
	Score       float64  `json:"score"`
	Reasoning   string   `json:"reasoning"`
	Suggestions []string `json:"suggestions,omitempty"`
	Attempts    int      `json:"attempts"`
	Successes   int      `json:"successes"`
}

// Score is the result of evaluating an answer against a case.
type Score struct {
	Obtained int               `json:"obtained_score"`
	Max      int               `json:"max_score"`
	Results  []CriterionResult `json:"results"`
}

// Evaluate scores answer against every checkpoint of c in parallel. Each
// checkpoint is judged under the threshold harness and earns its points
// when enough judgements reach the pass score. Errors other than a missed
// threshold, such as an invalid configuration or cancellation, abort the
// evaluation.
func Evaluate(ctx context.Context, j Interface, c *Case, answer string, cfg EvaluateConfig) (*Score, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid case: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	results := make([]CriterionResult, len(c.Checkpoints))
	g, ctx := errgroup.WithContext(ctx)
	for i, cp := range c.Checkpoints {
		g.Go(func() error {
			r, err := evaluateCheckpoint(ctx, j, c, i, cp, answer, cfg)
			if err != nil {
				return fmt.Errorf("checkpoint %d: %w", i+1, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	score := &Score{Max: c.MaxScore(), Results: results}
	for _, r := range results {
		if r.Passed {
			score.Obtained += r.Points
		}
	}
	clog.FromContext(ctx).With("obtained", score.Obtained).
		With("max", score.Max).
		Info("Evaluated answer")
	return score, nil
}

func evaluateCheckpoint(ctx context.Context, j Interface, c *Case, idx int, cp Checkpoint, answer string, cfg EvaluateConfig) (CriterionResult, error) {
	var obs evals.Observer
	if cfg.ObserverFor != nil {
		obs = cfg.ObserverFor(idx, cp.Criteria)
	}

	var (
		summary    threshold.Summary
		mu         sync.Mutex
		judgements []*Judgement
	)
	hcfg := cfg.Threshold
	hcfg.Observer = func(r threshold.Record) {
		summary.Observe(r)
		if cfg.Threshold.Observer != nil {
			cfg.Threshold.Observer(r)
		}
	}

	request := c.request(cp.Criteria, answer)
	name := fmt.Sprintf("checkpoint-%d", idx+1)
	passed, err := threshold.Run(ctx, hcfg, name, func(ctx context.Context) (*Judgement, error) {
		attempt, _ := threshold.AttemptFromContext(ctx)
		ctx = agenttrace.WithGenerationContext(ctx, agenttrace.GenerationContext{
			Workflow: "judge",
			Attempt:  attempt,
			Model:    c.LLMJudge,
		})
		if obs != nil {
			obs.Increment()
		}

		verdict, err := j.Judge(ctx, request)
		if err != nil {
			if obs != nil {
				obs.Fail(fmt.Sprintf("attempt %d: %v", attempt, err))
			}
			return nil, err
		}

		mu.Lock()
		judgements = append(judgements, verdict)
		mu.Unlock()
		if obs != nil {
			obs.Grade(verdict.Score, verdict.Reasoning)
		}

		if verdict.Score < cfg.PassScore {
			return nil, &NotPassedError{Judgement: verdict, PassScore: cfg.PassScore}
		}
		return verdict, nil
	})

	r := CriterionResult{
		Criteria:  cp.Criteria,
		Points:    cp.Points,
		Attempts:  len(summary.Records()),
		Successes: summary.Successes(),
	}
	switch {
	case err == nil:
		r.Passed = true
		r.Reasoning = passed.Reasoning
		r.Suggestions = passed.Suggestions
	case errors.Is(err, threshold.ErrThresholdNotMet):
		r.Reasoning = err.Error()
		if notPassed := lastNotPassed(err); notPassed != nil {
			r.Reasoning = notPassed.Judgement.Reasoning
			r.Suggestions = notPassed.Judgement.Suggestions
		}
	default:
		return r, err
	}

	mu.Lock()
	defer mu.Unlock()
	if len(judgements) > 0 {
		var sum float64
		for _, v := range judgements {
			sum += v.Score
		}
		r.Score = sum / float64(len(judgements))
	}
	return r, nil
}

// lastNotPassed returns the most recent failing judgement of a missed
// threshold.
func lastNotPassed(err error) *NotPassedError {
	var agg *threshold.AggregateError
	if !errors.As(err, &agg) {
		return nil
	}
	for _, failure := range slices.Backward(agg.Failures) {
		var notPassed *NotPassedError
		if errors.As(failure, &notPassed) {
			return notPassed
		}
	}
	return nil
}
