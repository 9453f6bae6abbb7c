/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge

import (
	"context"
	"errors"
	"fmt"

	"chainguard.dev/agentfactory/agents/agenttrace"
	"chainguard.dev/agentfactory/agents/metrics"
	"chainguard.dev/agentfactory/agents/result"
)

// ErrNoVerdict is returned when a model answers without a judgement.
var ErrNoVerdict = errors.New("judge returned no verdict")

type options struct {
	temperature float64
	maxTokens   int64
	retry       RetryConfig
	metrics     *metrics.GenAI
}

func defaultOptions() options {
	return options{
		temperature: 0.1,
		maxTokens:   4096,
		retry:       DefaultRetryConfig(),
		metrics:     metrics.NewGenAI("chainguard.ai.agents"),
	}
}

// Option configures a judge.
type Option func(*options) error

// WithTemperature sets the sampling temperature. The default is 0.1.
func WithTemperature(temperature float64) Option {
	return func(o *options) error {
		if temperature < 0 || temperature > 1 {
			return fmt.Errorf("temperature must be between 0.0 and 1.0, got %f", temperature)
		}
		o.temperature = temperature
		return nil
	}
}

// WithMaxTokens caps the tokens of a verdict. The default is 4096.
func WithMaxTokens(tokens int64) Option {
	return func(o *options) error {
		if tokens <= 0 {
			return fmt.Errorf("max tokens must be positive, got %d", tokens)
		}
		o.maxTokens = tokens
		return nil
	}
}

// WithRetryConfig sets how throttled requests are retried.
func WithRetryConfig(cfg RetryConfig) Option {
	return func(o *options) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		o.retry = cfg
		return nil
	}
}

// WithMetrics records token usage to m instead of the default counters.
func WithMetrics(m *metrics.GenAI) Option {
	return func(o *options) error {
		o.metrics = m
		return nil
	}
}

func applyOptions(opts []Option) (options, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return o, err
		}
	}
	return o, nil
}

// verdictFunc asks a model for the verdict on prompt.
type verdictFunc func(ctx context.Context, prompt string, trace *agenttrace.Trace[*Judgement]) (*Judgement, error)

// judge validates request, renders its prompt and records the model call
// as a trace.
func judge(ctx context.Context, model string, request *Request, output string, verdict verdictFunc) (*Judgement, error) {
	if err := request.Validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	prompt, err := renderPrompt(request, output)
	if err != nil {
		return nil, fmt.Errorf("rendering prompt: %w", err)
	}

	if gen := agenttrace.GetGenerationContext(ctx); gen.Model == "" {
		gen.Model = model
		ctx = agenttrace.WithGenerationContext(ctx, gen)
	}
	trace := agenttrace.StartTrace[*Judgement](ctx, prompt)

	j, err := verdict(trace.Context(), prompt, trace)
	if err == nil {
		err = j.check(request.Mode)
	}
	if err != nil {
		j = nil
	}
	trace.Complete(j, err)
	return j, err
}

// decodeVerdict decodes a JSON verdict from a model response. A verdict
// missing required fields is rejected.
func decodeVerdict(text string) (*Judgement, error) {
	j, err := result.ExtractOutcome[Judgement](text).Result()
	if err != nil {
		return nil, fmt.Errorf("decoding verdict: %w", err)
	}
	return &j, nil
}

// check fills in a missing mode and rejects scores outside the mode's
// range.
func (j *Judgement) check(mode JudgmentMode) error {
	if j == nil {
		return ErrNoVerdict
	}
	switch j.Mode {
	case "":
		j.Mode = mode
	case mode:
	default:
		return fmt.Errorf("verdict mode %q does not match request mode %q", j.Mode, mode)
	}
	low, high := scoreBounds(mode)
	if j.Score < low || j.Score > high {
		return fmt.Errorf("score %.2f outside [%.0f, %.0f] for %s mode", j.Score, low, high, mode)
	}
	return nil
}

func scoreBounds(mode JudgmentMode) (float64, float64) {
	if mode == BenchmarkMode {
		return -1, 1
	}
	return 0, 1
}
