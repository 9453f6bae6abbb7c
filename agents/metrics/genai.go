/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package metrics

import (
	"context"

	"chainguard.dev/agentfactory/agents/agenttrace"
	"github.com/chainguard-dev/clog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// AttributeEnricher adds request-scoped attributes before a measurement is
// recorded.
type AttributeEnricher func(ctx context.Context, baseAttrs []attribute.KeyValue) []attribute.KeyValue

// GenerationAttributes labels measurements with the workflow and model of
// the generation context carried by ctx. It is the default enricher.
func GenerationAttributes(ctx context.Context, baseAttrs []attribute.KeyValue) []attribute.KeyValue {
	return agenttrace.GetGenerationContext(ctx).EnrichAttributes(baseAttrs)
}

// GenAI counts token usage and tool calls of model requests.
type GenAI struct {
	promptTokens     metric.Int64Counter
	completionTokens metric.Int64Counter
	toolCalls        metric.Int64Counter
	enrich           AttributeEnricher
}

// Option configures NewGenAI.
type Option func(*options)

type options struct {
	provider metric.MeterProvider
	enrich   AttributeEnricher
}

// WithMeterProvider records to provider instead of the global one.
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(o *options) { o.provider = provider }
}

// WithAttributeEnricher replaces GenerationAttributes. A nil enricher
// records only the base attributes.
func WithAttributeEnricher(enrich AttributeEnricher) Option {
	return func(o *options) { o.enrich = enrich }
}

// NewGenAI creates the counters on the meter named meterName. A counter that
// cannot be created is logged and replaced by a no-op so that callers never
// fail on metrics.
func NewGenAI(meterName string, opts ...Option) *GenAI {
	o := options{provider: otel.GetMeterProvider(), enrich: GenerationAttributes}
	for _, opt := range opts {
		opt(&o)
	}
	meter := o.provider.Meter(meterName, metric.WithInstrumentationVersion("1.0.0"))

	counter := func(name, description, unit string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(description), metric.WithUnit(unit))
		if err != nil {
			clog.WarnContextf(context.Background(), "Failed to create counter %s on meter %s, it will be disabled: %v", name, meterName, err)
			return noop.Int64Counter{}
		}
		return c
	}

	return &GenAI{
		promptTokens:     counter("genai.token.prompt", "The number of prompt tokens used", "{tokens}"),
		completionTokens: counter("genai.token.completion", "The number of completion tokens used", "{tokens}"),
		toolCalls:        counter("genai.tool.calls", "The number of tool calls made during execution", "{calls}"),
		enrich:           o.enrich,
	}
}

func (m *GenAI) attributes(ctx context.Context, base []attribute.KeyValue, extra []attribute.KeyValue) metric.MeasurementOption {
	if m.enrich != nil {
		base = m.enrich(ctx, base)
	}
	return metric.WithAttributes(append(base, extra...)...)
}

// RecordTokens records prompt and completion token usage for model.
func (m *GenAI) RecordTokens(ctx context.Context, model string, promptTokens, completionTokens int64, attrs ...attribute.KeyValue) {
	if m == nil {
		return
	}
	opt := m.attributes(ctx, []attribute.KeyValue{attribute.String("model", model)}, attrs)
	m.promptTokens.Add(ctx, promptTokens, opt)
	m.completionTokens.Add(ctx, completionTokens, opt)
}

// RecordToolCall records one invocation of toolName requested by model.
func (m *GenAI) RecordToolCall(ctx context.Context, model, toolName string, attrs ...attribute.KeyValue) {
	if m == nil {
		return
	}
	m.toolCalls.Add(ctx, 1, m.attributes(ctx, []attribute.KeyValue{
		attribute.String("model", model),
		attribute.String("tool", toolName),
	}, attrs))
}
