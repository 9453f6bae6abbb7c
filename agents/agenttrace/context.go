/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
)

// GenerationContext describes the generation run an agent execution belongs
// to. It labels spans and metrics so that repeated attempts of the same
// workflow can be told apart.
type GenerationContext struct {
	Workflow string `json:"workflow,omitempty"` // e.g. "generate-agent" or "judge/accuracy"
	Attempt  int    `json:"attempt,omitempty"`  // 1-based harness attempt, 0 outside a harness
	Model    string `json:"model,omitempty"`
}

// IsZero reports whether no generation context was set.
func (g GenerationContext) IsZero() bool {
	return g == GenerationContext{}
}

// EnrichAttributes appends the generation context to baseAttrs.
//
// Only bounded values are added: the workflow name and model. The attempt
// ordinal is left to spans since it would multiply every series by the
// attempt budget.
func (g GenerationContext) EnrichAttributes(baseAttrs []attribute.KeyValue) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, len(baseAttrs), len(baseAttrs)+2)
	copy(attrs, baseAttrs)
	if g.Workflow != "" {
		attrs = append(attrs, attribute.String("workflow", g.Workflow))
	}
	if g.Model != "" {
		attrs = append(attrs, attribute.String("model", g.Model))
	}
	return attrs
}

// spanAttributes returns the attributes recorded on agent spans.
func (g GenerationContext) spanAttributes() []attribute.KeyValue {
	var attrs []attribute.KeyValue
	if g.Workflow != "" {
		attrs = append(attrs, attribute.String("generation.workflow", g.Workflow))
	}
	if g.Attempt > 0 {
		attrs = append(attrs, attribute.Int("generation.attempt", g.Attempt))
	}
	if g.Model != "" {
		attrs = append(attrs, attribute.String("generation.model", g.Model))
	}
	return attrs
}

type generationContextKey struct{}

// WithGenerationContext attaches gen to ctx.
func WithGenerationContext(ctx context.Context, gen GenerationContext) context.Context {
	return context.WithValue(ctx, generationContextKey{}, gen)
}

// GetGenerationContext returns the generation context attached to ctx, or
// the zero value.
func GetGenerationContext(ctx context.Context) GenerationContext {
	gen, _ := ctx.Value(generationContextKey{}).(GenerationContext)
	return gen
}
