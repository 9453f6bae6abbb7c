/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge

import (
	"context"
	"fmt"

	"chainguard.dev/agentfactory/agents/agenttrace"
	"chainguard.dev/agentfactory/agents/toolcall"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/chainguard-dev/clog"
)

const submitTool = "submit_judgement"

type claude struct {
	client anthropic.Client
	model  string
	opts   options
}

var _ Interface = (*claude)(nil)

// NewClaude returns a judge that asks a Claude model for its verdict
// through a forced submit_judgement tool call.
func NewClaude(client anthropic.Client, model string, opts ...Option) (Interface, error) {
	o, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	return &claude{client: client, model: model, opts: o}, nil
}

func (c *claude) Judge(ctx context.Context, request *Request) (*Judgement, error) {
	return judge(ctx, c.model, request, toolOutput(request.Mode), c.verdict)
}

func (c *claude) verdict(ctx context.Context, prompt string, trace *agenttrace.Trace[*Judgement]) (*Judgement, error) {
	var submitted *Judgement
	tools, err := toolcall.NewRegistry(toolcall.For(submitTool, "Submit the verdict for the criterion.",
		func(_ context.Context, j Judgement) (any, error) {
			submitted = &j
			return "Verdict recorded.", nil
		}))
	if err != nil {
		return nil, err
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.opts.maxTokens,
		Messages: []anthropic.MessageParam{{
			Role:    anthropic.MessageParamRoleUser,
			Content: []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(prompt)},
		}},
		Tools: tools.ClaudeTools(),
		ToolChoice: anthropic.ToolChoiceUnionParam{
			OfTool: &anthropic.ToolChoiceToolParam{Name: submitTool},
		},
		Temperature: anthropic.Float(c.opts.temperature),
	}

	message, err := withBackoff(ctx, c.opts.retry, "claude_judge", isRetryableClaudeError, func() (*anthropic.Message, error) {
		return c.client.Messages.New(ctx, params)
	})
	if err != nil {
		return nil, fmt.Errorf("requesting verdict from %s: %w", c.model, err)
	}

	c.opts.metrics.RecordTokens(ctx, c.model, message.Usage.InputTokens, message.Usage.OutputTokens)
	trace.RecordTokenUsage(c.model, message.Usage.InputTokens, message.Usage.OutputTokens)

	for _, block := range message.Content {
		switch block.Type {
		case "thinking":
			trace.AddReasoning(block.Thinking)
		case "tool_use":
			c.opts.metrics.RecordToolCall(ctx, c.model, block.Name)
			call, err := toolcall.FromClaude(anthropic.ToolUseBlock{
				ID:    block.ID,
				Name:  block.Name,
				Input: block.Input,
			})
			if err != nil {
				trace.BadToolCall(call.ID, call.Name, nil, err)
				continue
			}
			// Failures are recorded on the trace; a missing verdict is
			// reported below.
			_, _ = toolcall.Dispatch(ctx, tools, trace, call)
		}
	}

	if submitted == nil {
		clog.FromContext(ctx).With("model", c.model).
			With("stop_reason", message.StopReason).
			Warn("Claude did not submit a verdict")
		return nil, ErrNoVerdict
	}
	return submitted, nil
}
