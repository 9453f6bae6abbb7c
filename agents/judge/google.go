/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge

import (
	"context"
	"fmt"

	"chainguard.dev/agentfactory/agents/agenttrace"
	"chainguard.dev/agentfactory/agents/schema"
	"chainguard.dev/agentfactory/agents/toolcall"
	"google.golang.org/genai"
)

type gemini struct {
	client *genai.Client
	model  string
	opts   options
}

var _ Interface = (*gemini)(nil)

// NewGemini returns a judge that asks a Gemini model for a verdict
// constrained to the Judgement schema.
func NewGemini(client *genai.Client, model string, opts ...Option) (Interface, error) {
	o, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	return &gemini{client: client, model: model, opts: o}, nil
}

func (g *gemini) Judge(ctx context.Context, request *Request) (*Judgement, error) {
	return judge(ctx, g.model, request, jsonOutput(request.Mode), g.verdict)
}

func (g *gemini) verdict(ctx context.Context, prompt string, trace *agenttrace.Trace[*Judgement]) (*Judgement, error) {
	config := &genai.GenerateContentConfig{
		Temperature:      ptr(float32(g.opts.temperature)),
		MaxOutputTokens:  int32(g.opts.maxTokens),
		ResponseMIMEType: "application/json",
		ResponseSchema:   toolcall.GeminiSchema(schema.ReflectType[Judgement]()),
	}

	resp, err := withBackoff(ctx, g.opts.retry, "gemini_judge", isRetryableVertexError, func() (*genai.GenerateContentResponse, error) {
		return g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	})
	if err != nil {
		return nil, fmt.Errorf("requesting verdict from %s: %w", g.model, err)
	}

	if resp.UsageMetadata != nil {
		in, out := int64(resp.UsageMetadata.PromptTokenCount), int64(resp.UsageMetadata.CandidatesTokenCount)
		g.opts.metrics.RecordTokens(ctx, g.model, in, out)
		trace.RecordTokenUsage(g.model, in, out)
	}

	text := resp.Text()
	if text == "" {
		return nil, ErrNoVerdict
	}
	return decodeVerdict(text)
}

func ptr[T any](v T) *T {
	return &v
}
