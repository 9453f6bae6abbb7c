/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge_test

import (
	"context"
	"sync"

	"chainguard.dev/agentfactory/agents/agenttrace"
	"chainguard.dev/agentfactory/agents/judge"
)

// fakeJudge serves judgements from a function.
type fakeJudge func(ctx context.Context, r *judge.Request) (*judge.Judgement, error)

func (f fakeJudge) Judge(ctx context.Context, r *judge.Request) (*judge.Judgement, error) {
	return f(ctx, r)
}

// traces collects the judge traces recorded under ctx.
type traces struct {
	mu  sync.Mutex
	all []*agenttrace.Trace[*judge.Judgement]
}

func (tr *traces) context(ctx context.Context) context.Context {
	return agenttrace.WithTracer(ctx, agenttrace.ByCode(func(t *agenttrace.Trace[*judge.Judgement]) {
		tr.mu.Lock()
		defer tr.mu.Unlock()
		tr.all = append(tr.all, t)
	}))
}

func (tr *traces) get() []*agenttrace.Trace[*judge.Judgement] {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return append([]*agenttrace.Trace[*judge.Judgement](nil), tr.all...)
}

type recordingObserver struct {
	mu       sync.Mutex
	failures []string
	logs     []string
	grades   []float64
	count    int64
}

func (r *recordingObserver) Fail(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, msg)
}

func (r *recordingObserver) Log(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, msg)
}

func (r *recordingObserver) Grade(score float64, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.grades = append(r.grades, score)
}

func (r *recordingObserver) Increment() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count++
}

func (r *recordingObserver) Total() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}
