/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"chainguard.dev/agentfactory/agents/agenttrace"
	"chainguard.dev/agentfactory/agents/evals"
)

// NewGoldenEval returns a check that judges a trace's result against
// goldenAnswer for criterion and grades the trace with the score.
// callbacks receive the judge's own traces.
func NewGoldenEval[T any](j Interface, criterion, goldenAnswer string, callbacks ...evals.TraceCallback[*Judgement]) evals.ObservableTraceCallback[T] {
	return newEval[T](j, GoldenMode, criterion, goldenAnswer, callbacks)
}

// NewStandaloneEval returns a check that judges a trace's result on its
// own for criterion.
func NewStandaloneEval[T any](j Interface, criterion string, callbacks ...evals.TraceCallback[*Judgement]) evals.ObservableTraceCallback[T] {
	return newEval[T](j, StandaloneMode, criterion, "", callbacks)
}

func newEval[T any](j Interface, mode JudgmentMode, criterion, reference string, callbacks []evals.TraceCallback[*Judgement]) evals.ObservableTraceCallback[T] {
	return func(o evals.Observer, trace *evals.Trace[T]) {
		if isNilResult(trace.Result) {
			o.Fail("Failed to extract response: trace has no result")
			return
		}
		data, err := json.MarshalIndent(trace.Result, "", "  ")
		if err != nil {
			o.Fail(fmt.Sprintf("Failed to extract response: %v", err))
			return
		}

		// The judge's traces go to callbacks rather than the default
		// logging tracer, labelled with the judged trace's generation.
		ctx := agenttrace.WithTracer(context.Background(), agenttrace.ByCode(callbacks...))
		ctx = agenttrace.WithGenerationContext(ctx, trace.Generation)

		verdict, err := j.Judge(ctx, &Request{
			Mode:            mode,
			ReferenceAnswer: reference,
			ActualAnswer:    string(data),
			Criterion:       criterion,
		})
		if err != nil {
			o.Fail(fmt.Sprintf("Judge failed: %v", err))
			return
		}
		o.Grade(verdict.Score, verdict.Reasoning)
		for _, s := range verdict.Suggestions {
			o.Log("  Suggestion: " + s)
		}
	}
}

func isNilResult[T any](value T) bool {
	v := reflect.ValueOf(value)
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return v.IsNil()
	default:
		return false
	}
}
