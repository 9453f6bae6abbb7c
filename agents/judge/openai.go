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
	"chainguard.dev/agentfactory/agents/schema"
	"github.com/openai/openai-go"
)

type openAI struct {
	client openai.Client
	model  string
	opts   options
}

var _ Interface = (*openAI)(nil)

// NewOpenAI returns a judge that asks an OpenAI chat model for a verdict
// in the Judgement JSON schema.
func NewOpenAI(client openai.Client, model string, opts ...Option) (Interface, error) {
	o, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	return &openAI{client: client, model: model, opts: o}, nil
}

func (o *openAI) Judge(ctx context.Context, request *Request) (*Judgement, error) {
	return judge(ctx, o.model, request, jsonOutput(request.Mode), o.verdict)
}

func (o *openAI) verdict(ctx context.Context, prompt string, trace *agenttrace.Trace[*Judgement]) (*Judgement, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        "judgement",
					Description: openai.String("Verdict for one criterion"),
					Schema:      schema.ReflectType[Judgement](),
				},
			},
		},
		Temperature:         openai.Float(o.opts.temperature),
		MaxCompletionTokens: openai.Int(o.opts.maxTokens),
	}

	completion, err := withBackoff(ctx, o.opts.retry, "openai_judge", isRetryableOpenAIError, func() (*openai.ChatCompletion, error) {
		return o.client.Chat.Completions.New(ctx, params)
	})
	if err != nil {
		return nil, fmt.Errorf("requesting verdict from %s: %w", o.model, err)
	}

	o.opts.metrics.RecordTokens(ctx, o.model, completion.Usage.PromptTokens, completion.Usage.CompletionTokens)
	trace.RecordTokenUsage(o.model, completion.Usage.PromptTokens, completion.Usage.CompletionTokens)

	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return nil, ErrNoVerdict
	}
	return decodeVerdict(completion.Choices[0].Message.Content)
}

func isRetryableOpenAIError(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 429, 500, 502, 503, 504:
			return true
		}
	}
	return false
}
