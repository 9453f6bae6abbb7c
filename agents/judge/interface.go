/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// JudgmentMode selects how an answer is judged.
type JudgmentMode string

const (
	// GoldenMode scores an answer against a reference answer, 0 to 1.
	GoldenMode JudgmentMode = "golden"
	// BenchmarkMode compares two candidates, -1 (first better) to 1
	// (second better).
	BenchmarkMode JudgmentMode = "benchmark"
	// StandaloneMode scores an answer on its own, 0 to 1.
	StandaloneMode JudgmentMode = "standalone"
)

// Request asks a judge to score one answer against one criterion.
type Request struct {
	Mode JudgmentMode `json:"mode"`
	// ReferenceAnswer is the golden answer, or the first candidate in
	// benchmark mode. It must be empty in standalone mode.
	ReferenceAnswer string `json:"reference_answer,omitempty"`
	ActualAnswer    string `json:"actual_answer"`
	Criterion       string `json:"criterion"`
}

// Validate checks that the request carries what its mode needs.
func (r *Request) Validate() error {
	switch r.Mode {
	case GoldenMode, BenchmarkMode:
		if r.ReferenceAnswer == "" {
			return fmt.Errorf("reference_answer is required for %s mode", r.Mode)
		}
	case StandaloneMode:
		if r.ReferenceAnswer != "" {
			return errors.New("reference_answer must not be provided for standalone mode")
		}
	default:
		return fmt.Errorf("unsupported mode: %q", r.Mode)
	}
	if r.ActualAnswer == "" {
		return errors.New("actual_answer is required")
	}
	if r.Criterion == "" {
		return errors.New("criterion is required")
	}
	return nil
}

// Judgement is a judge's verdict on one criterion.
type Judgement struct {
	Mode        JudgmentMode `json:"mode" jsonschema:"required,enum=golden,enum=benchmark,enum=standalone"`
	Score       float64      `json:"score" jsonschema:"required,description=Score for the criterion"`
	Reasoning   string       `json:"reasoning" jsonschema:"required,description=Why the answer earned this score"`
	Suggestions []string     `json:"suggestions" jsonschema:"description=Specific improvements; empty for a perfect score"`
}

func (j *Judgement) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Grade: %.2f", j.Score)
	if j.Reasoning != "" {
		fmt.Fprintf(&sb, " - %s", j.Reasoning)
	}
	for _, s := range j.Suggestions {
		fmt.Fprintf(&sb, "\n  Suggestion: %s", s)
	}
	return sb.String()
}

// Interface is implemented by LLM judges.
type Interface interface {
	Judge(ctx context.Context, request *Request) (*Judgement, error)
}
