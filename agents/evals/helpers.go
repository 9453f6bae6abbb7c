/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package evals

import (
	"fmt"
	"reflect"
	"slices"

	"chainguard.dev/agentfactory/agents/agenttrace"
)

// toolCallCount fails the evaluation when ok rejects the number of tool
// calls; want describes the accepted counts.
func toolCallCount[T any](ok func(int) bool, want string) ObservableTraceCallback[T] {
	return func(o Observer, trace *Trace[T]) {
		if got := len(trace.ToolCalls); !ok(got) {
			o.Fail(fmt.Sprintf("tool call count: got = %d, wanted %s", got, want))
		}
	}
}

// ExactToolCalls requires exactly n tool calls.
func ExactToolCalls[T any](n int) ObservableTraceCallback[T] {
	return toolCallCount[T](func(got int) bool { return got == n }, fmt.Sprintf("= %d", n))
}

// MinimumNToolCalls requires at least n tool calls.
func MinimumNToolCalls[T any](n int) ObservableTraceCallback[T] {
	return toolCallCount[T](func(got int) bool { return got >= n }, fmt.Sprintf(">= %d", n))
}

// MaximumNToolCalls allows at most n tool calls.
func MaximumNToolCalls[T any](n int) ObservableTraceCallback[T] {
	return toolCallCount[T](func(got int) bool { return got <= n }, fmt.Sprintf("<= %d", n))
}

// RangeToolCalls requires between lo and hi tool calls, inclusive.
func RangeToolCalls[T any](lo, hi int) ObservableTraceCallback[T] {
	return toolCallCount[T](func(got int) bool { return got >= lo && got <= hi }, fmt.Sprintf("= %d..%d", lo, hi))
}

// NoToolCalls requires that no tools were called.
func NoToolCalls[T any]() ObservableTraceCallback[T] {
	return ExactToolCalls[T](0)
}

// OnlyToolCalls requires every tool call to use one of toolNames.
func OnlyToolCalls[T any](toolNames ...string) ObservableTraceCallback[T] {
	return func(o Observer, trace *Trace[T]) {
		for _, tc := range trace.ToolCalls {
			if !slices.Contains(toolNames, tc.Name) {
				o.Fail(fmt.Sprintf("unexpected tool call %q, only allowed: %v", tc.Name, toolNames))
				return
			}
		}
	}
}

// RequiredToolCalls requires each of toolNames to be called at least once.
func RequiredToolCalls[T any](toolNames []string) ObservableTraceCallback[T] {
	return func(o Observer, trace *Trace[T]) {
		var missing []string
		for _, name := range toolNames {
			if !slices.ContainsFunc(trace.ToolCalls, func(tc *ToolCall[T]) bool { return tc.Name == name }) {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			slices.Sort(missing)
			o.Fail(fmt.Sprintf("missing required tool calls: %v", missing))
		}
	}
}

// ToolCallValidator runs validator over every tool call and fails on the
// first error.
func ToolCallValidator[T any](validator func(o Observer, tc *ToolCall[T]) error) ObservableTraceCallback[T] {
	return func(o Observer, trace *Trace[T]) {
		for i, tc := range trace.ToolCalls {
			if err := validator(o, tc); err != nil {
				o.Fail(fmt.Sprintf("tool call %d (%s) validation failed: %v", i, tc.Name, err))
				return
			}
		}
	}
}

// ToolCallNamed runs validator over the tool calls named name and fails if
// there are none.
func ToolCallNamed[T any](name string, validator func(o Observer, tc *ToolCall[T]) error) ObservableTraceCallback[T] {
	return func(o Observer, trace *Trace[T]) {
		found := false
		for _, tc := range trace.ToolCalls {
			if tc.Name != name {
				continue
			}
			found = true
			if err := validator(o, tc); err != nil {
				o.Fail(fmt.Sprintf("tool call %s validation failed: %v", name, err))
				return
			}
		}
		if !found {
			o.Fail(fmt.Sprintf("tool call named %q: got = not found, wanted = found", name))
		}
	}
}

// NoErrors requires that neither the trace nor any tool call failed.
func NoErrors[T any]() ObservableTraceCallback[T] {
	return func(o Observer, trace *Trace[T]) {
		if trace.Error != nil {
			o.Fail(fmt.Sprintf("trace error: got = %v, wanted = nil", trace.Error))
			return
		}
		for _, tc := range trace.ToolCalls {
			if tc.Error != nil {
				o.Fail(fmt.Sprintf("tool call %s error: got = %v, wanted = nil", tc.Name, tc.Error))
				return
			}
		}
	}
}

// ResultValidator runs validator over the trace result. A nil result
// fails without calling validator.
func ResultValidator[T any](validator func(result T) error) ObservableTraceCallback[T] {
	return func(o Observer, trace *Trace[T]) {
		if isNil(trace.Result) {
			o.Fail("result is nil")
			return
		}
		if err := validator(trace.Result); err != nil {
			o.Fail(err.Error())
		}
	}
}

// MinimumGrade runs grader and additionally fails the evaluation when the
// grade it assigns is below minScore.
func MinimumGrade[T any](minScore float64, grader ObservableTraceCallback[T]) ObservableTraceCallback[T] {
	return func(o Observer, trace *Trace[T]) {
		gc := &gradeCapture{Observer: o}
		grader(gc, trace)
		if gc.graded && gc.score < minScore {
			o.Fail(fmt.Sprintf("grade: got = %.2f, wanted >= %.2f", gc.score, minScore))
		}
	}
}

// gradeCapture remembers the grade passed through it.
type gradeCapture struct {
	Observer
	graded bool
	score  float64
}

func (g *gradeCapture) Grade(score float64, reasoning string) {
	g.graded, g.score = true, score
	g.Observer.Grade(score, reasoning)
}

// BuildCallbacks injects each check in checks with the child of observer
// named after it.
func BuildCallbacks[T any, O Observer](observer *NamespacedObserver[O], checks map[string]ObservableTraceCallback[T]) []TraceCallback[T] {
	callbacks := make([]TraceCallback[T], 0, len(checks))
	for name, check := range checks {
		callbacks = append(callbacks, Inject(observer.Child(name), check))
	}
	return callbacks
}

// BuildTracer returns a ByCode tracer running checks against observer.
func BuildTracer[T any, O Observer](observer *NamespacedObserver[O], checks map[string]ObservableTraceCallback[T]) agenttrace.Tracer[T] {
	return agenttrace.ByCode(BuildCallbacks(observer, checks)...)
}

func isNil(value any) bool {
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
