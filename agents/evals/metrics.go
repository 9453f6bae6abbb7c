/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package evals

import (
	"reflect"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	evaluationCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentfactory_evaluations_total",
			Help: "Total number of agent evaluations performed",
		},
		[]string{"tracer_type", "namespace"},
	)

	failureCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentfactory_evaluation_failures_total",
			Help: "Total number of failed evaluations",
		},
		[]string{"tracer_type", "namespace"},
	)

	gradeGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "agentfactory_evaluation_grade",
			Help: "Most recent evaluation grade (0.0-1.0)",
		},
		[]string{"tracer_type", "namespace"},
	)
)

// MetricsObserver is an Observer that exports evaluation counts, failures
// and the latest grade, labelled by result type and namespace.
type MetricsObserver struct {
	count       atomic.Int64
	evalCounter prometheus.Counter
	failCounter prometheus.Counter
	gradeGauge  prometheus.Gauge
}

// NewMetricsObserver returns a MetricsObserver for traces with result type T.
func NewMetricsObserver[T any](namespace string) *MetricsObserver {
	labels := prometheus.Labels{
		"tracer_type": reflect.TypeFor[T]().String(),
		"namespace":   namespace,
	}
	return &MetricsObserver{
		evalCounter: evaluationCounter.With(labels),
		failCounter: failureCounter.With(labels),
		gradeGauge:  gradeGauge.With(labels),
	}
}

func (m *MetricsObserver) Increment() {
	m.count.Add(1)
	m.evalCounter.Inc()
}

func (m *MetricsObserver) Fail(string) {
	m.failCounter.Inc()
}

func (m *MetricsObserver) Grade(score float64, _ string) {
	m.gradeGauge.Set(score)
}

// Log is a no-op.
func (m *MetricsObserver) Log(string) {}

func (m *MetricsObserver) Total() int64 {
	return m.count.Load()
}
