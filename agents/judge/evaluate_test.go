/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"chainguard.dev/agentfactory/agents/agenttrace"
	"chainguard.dev/agentfactory/agents/evals"
	"chainguard.dev/agentfactory/agents/judge"
	"chainguard.dev/agentfactory/agents/threshold"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var errUnavailable = errors.New("judge unavailable")

func sequentialConfig() judge.EvaluateConfig {
	cfg := judge.DefaultEvaluateConfig()
	cfg.Threshold.ConcurrencyLimit = 1
	return cfg
}

func TestEvaluate(t *testing.T) {
	c := &judge.Case{
		LLMJudge: "fake",
		Mode:     judge.StandaloneMode,
		Checkpoints: []judge.Checkpoint{
			{Criteria: "clear", Points: 2},
			{Criteria: "complete", Points: 1},
			{Criteria: "cites sources", Points: 3},
		},
	}
	// Attempts of a criterion run one at a time, so the first call to
	// "cites sources" is its first attempt.
	var citeCalls atomic.Int32
	j := fakeJudge(func(ctx context.Context, r *judge.Request) (*judge.Judgement, error) {
		switch r.Criterion {
		case "clear":
			return &judge.Judgement{Mode: r.Mode, Score: 0.9, Reasoning: "easy to follow"}, nil
		case "complete":
			return &judge.Judgement{Mode: r.Mode, Score: 0.4, Reasoning: "skips error handling", Suggestions: []string{"handle fetch errors"}}, nil
		default:
			if citeCalls.Add(1) == 1 {
				return nil, errUnavailable
			}
			return &judge.Judgement{Mode: r.Mode, Score: 0.8, Reasoning: "links the RFC"}, nil
		}
	})

	got, err := judge.Evaluate(context.Background(), j, c, "answer", sequentialConfig())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	want := &judge.Score{
		Obtained: 5,
		Max:      6,
		Results: []judge.CriterionResult{{
			Criteria:  "clear",
			Points:    2,
			Passed:    true,
			Score:     0.9,
			Reasoning: "easy to follow",
			Attempts:  2,
			Successes: 2,
		}, {
			Criteria:    "complete",
			Points:      1,
			Score:       0.4,
			Reasoning:   "skips error handling",
			Suggestions: []string{"handle fetch errors"},
			Attempts:    2,
		}, {
			Criteria:  "cites sources",
			Points:    3,
			Passed:    true,
			Score:     0.8,
			Reasoning: "links the RFC",
			Attempts:  3,
			Successes: 2,
		}},
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("Evaluate (-want +got):\n%s", diff)
	}
}

func TestEvaluateRequests(t *testing.T) {
	c := &judge.Case{
		LLMJudge:        "fake-model",
		Mode:            judge.GoldenMode,
		ReferenceAnswer: "reference",
		Checkpoints:     []judge.Checkpoint{{Criteria: "matches", Points: 1}},
	}
	j := fakeJudge(func(ctx context.Context, r *judge.Request) (*judge.Judgement, error) {
		want := &judge.Request{Mode: judge.GoldenMode, ReferenceAnswer: "reference", ActualAnswer: "candidate", Criterion: "matches"}
		if diff := cmp.Diff(want, r); diff != "" {
			t.Errorf("request (-want +got):\n%s", diff)
		}
		gen := agenttrace.GetGenerationContext(ctx)
		if gen.Workflow != "judge" || gen.Model != "fake-model" || gen.Attempt < 1 {
			t.Errorf("generation context: got = %+v", gen)
		}
		return &judge.Judgement{Score: 1, Reasoning: "identical"}, nil
	})

	if _, err := judge.Evaluate(context.Background(), j, c, "candidate", sequentialConfig()); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
}

func TestEvaluateObserver(t *testing.T) {
	c := &judge.Case{
		Mode:        judge.StandaloneMode,
		Checkpoints: []judge.Checkpoint{{Criteria: "flaky", Points: 1}},
	}
	var calls atomic.Int32
	j := fakeJudge(func(context.Context, *judge.Request) (*judge.Judgement, error) {
		if calls.Add(1) == 2 {
			return nil, errUnavailable
		}
		return &judge.Judgement{Score: 0.8, Reasoning: "fine"}, nil
	})

	obs := &recordingObserver{}
	var seen []string
	cfg := sequentialConfig()
	cfg.ObserverFor = func(idx int, criterion string) evals.Observer {
		seen = append(seen, fmt.Sprintf("%d:%s", idx, criterion))
		return obs
	}

	score, err := judge.Evaluate(context.Background(), j, c, "answer", cfg)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if score.Obtained != 1 {
		t.Errorf("Obtained: got = %d, wanted = 1", score.Obtained)
	}
	if diff := cmp.Diff([]string{"0:flaky"}, seen); diff != "" {
		t.Errorf("ObserverFor calls (-want +got):\n%s", diff)
	}
	if obs.Total() != 3 {
		t.Errorf("Total: got = %d, wanted = 3", obs.Total())
	}
	if len(obs.failures) != 1 || len(obs.grades) != 2 {
		t.Errorf("observer: got %d failures and %d grades, wanted 1 and 2", len(obs.failures), len(obs.grades))
	}
}

func TestEvaluateAllAttemptsFail(t *testing.T) {
	c := &judge.Case{
		Mode:        judge.StandaloneMode,
		Checkpoints: []judge.Checkpoint{{Criteria: "reachable", Points: 4}},
	}
	j := fakeJudge(func(context.Context, *judge.Request) (*judge.Judgement, error) {
		return nil, errUnavailable
	})

	score, err := judge.Evaluate(context.Background(), j, c, "answer", sequentialConfig())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	r := score.Results[0]
	if r.Passed || r.Score != 0 || score.Obtained != 0 || score.Max != 4 {
		t.Errorf("Evaluate: got = %+v, wanted an unscored failure", score)
	}
	if r.Reasoning == "" {
		t.Error("Reasoning should describe the failed attempts")
	}
}

func TestEvaluateAborts(t *testing.T) {
	c := &judge.Case{
		Mode:        judge.StandaloneMode,
		Checkpoints: []judge.Checkpoint{{Criteria: "a"}, {Criteria: "b"}},
	}

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		j := fakeJudge(func(ctx context.Context, _ *judge.Request) (*judge.Judgement, error) {
			cancel()
			<-ctx.Done()
			return nil, ctx.Err()
		})
		_, err := judge.Evaluate(ctx, j, c, "answer", sequentialConfig())
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Evaluate: got = %v, wanted context.Canceled", err)
		}
	})

	t.Run("invalid threshold", func(t *testing.T) {
		cfg := judge.DefaultEvaluateConfig()
		cfg.Threshold.MinSuccesses = 5
		_, err := judge.Evaluate(context.Background(), fakeJudge(nil), c, "answer", cfg)
		var cerr *threshold.ConfigurationError
		if !errors.As(err, &cerr) {
			t.Fatalf("Evaluate: got = %v, wanted *threshold.ConfigurationError", err)
		}
	})

	t.Run("invalid pass score", func(t *testing.T) {
		cfg := judge.DefaultEvaluateConfig()
		cfg.PassScore = 2
		if _, err := judge.Evaluate(context.Background(), fakeJudge(nil), c, "answer", cfg); err == nil {
			t.Fatal("Evaluate: wanted error for pass score 2")
		}
	})
}
