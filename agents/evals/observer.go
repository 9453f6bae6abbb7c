/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package evals

import (
	"context"
	"path"
	"slices"
	"sync"
	"sync/atomic"

	"chainguard.dev/agentfactory/agents/agenttrace"
	"github.com/chainguard-dev/clog"
)

// Trace and ToolCall are the agenttrace types checks operate on.
type (
	Trace[T any]         = agenttrace.Trace[T]
	ToolCall[T any]      = agenttrace.ToolCall[T]
	TraceCallback[T any] = agenttrace.TraceCallback[T]
)

// Observer receives the outcome of evaluating a trace.
type Observer interface {
	// Fail marks the evaluation as failed. Called at most once per trace.
	Fail(string)
	// Log records a message.
	Log(string)
	// Grade assigns a score in [0, 1] with reasoning. Called at most once per trace.
	Grade(score float64, reasoning string)
	// Increment is called each time a trace is evaluated.
	Increment()
	// Total returns the number of evaluated traces.
	Total() int64
}

// ObservableTraceCallback is a check run against a completed trace.
type ObservableTraceCallback[T any] func(Observer, *Trace[T])

// Inject binds obs to callback, producing a TraceCallback for a tracer.
func Inject[T any](obs Observer, callback ObservableTraceCallback[T]) TraceCallback[T] {
	return func(trace *Trace[T]) {
		obs.Increment()
		callback(obs, trace)
	}
}

// NamespacedObserver is a tree of observers addressed by slash-separated
// names. Each node delegates to its own inner Observer.
type NamespacedObserver[T Observer] struct {
	name     string
	inner    T
	factory  func(string) T
	mu       sync.Mutex
	children map[string]*NamespacedObserver[T]
}

// NewNamespacedObserver returns a root observer named "/".
func NewNamespacedObserver[T Observer](factory func(string) T) *NamespacedObserver[T] {
	return &NamespacedObserver[T]{
		name:     "/",
		inner:    factory("/"),
		factory:  factory,
		children: make(map[string]*NamespacedObserver[T]),
	}
}

func (n *NamespacedObserver[T]) Fail(msg string) { n.inner.Fail(msg) }
func (n *NamespacedObserver[T]) Log(msg string) { n.inner.Log(msg) }
func (n *NamespacedObserver[T]) Grade(score float64, why string) { n.inner.Grade(score, why) }
func (n *NamespacedObserver[T]) Increment() { n.inner.Increment() }
func (n *NamespacedObserver[T]) Total() int64 { return n.inner.Total() }

// Inner returns the Observer of this node.
func (n *NamespacedObserver[T]) Inner() T {
	return n.inner
}

// Child returns the named child, creating it on first use.
func (n *NamespacedObserver[T]) Child(name string) *NamespacedObserver[T] {
	n.mu.Lock()
	defer n.mu.Unlock()

	if child, ok := n.children[name]; ok {
		return child
	}
	childPath := path.Join(n.name, name)
	child := &NamespacedObserver[T]{
		name:     childPath,
		inner:    n.factory(childPath),
		factory:  n.factory,
		children: make(map[string]*NamespacedObserver[T]),
	}
	n.children[name] = child
	return child
}

// Walk visits this node and then its children depth-first, in name order.
func (n *NamespacedObserver[T]) Walk(visitor func(string, T)) {
	visitor(n.name, n.inner)

	n.mu.Lock()
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	n.mu.Unlock()
	slices.Sort(names)

	for _, name := range names {
		n.mu.Lock()
		child := n.children[name]
		n.mu.Unlock()
		child.Walk(visitor)
	}
}

// logObserver reports to the clog logger of a context.
type logObserver struct {
	log   *clog.Logger
	count atomic.Int64
}

// NewLogObserver returns an Observer that logs failures, messages and
// grades through the logger carried by ctx.
func NewLogObserver(ctx context.Context, namespace string) Observer {
	return &logObserver{log: clog.FromContext(ctx).With("namespace", namespace)}
}

func (l *logObserver) Fail(msg string) { l.log.Warn("Evaluation failed", "reason", msg) }
func (l *logObserver) Log(msg string) { l.log.Info(msg) }
func (l *logObserver) Grade(score float64, reasoning string) {
	l.log.With("score", score).Info("Evaluation graded", "reasoning", reasoning)
}
func (l *logObserver) Increment() { l.count.Add(1) }
func (l *logObserver) Total() int64 { return l.count.Load() }
