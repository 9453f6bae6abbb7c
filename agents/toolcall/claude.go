/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package toolcall

import (
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
)

// Claude renders d as a Claude tool definition.
func (d Descriptor) Claude() anthropic.ToolParam {
	params := d.parameters()
	return anthropic.ToolParam{
		Name:        d.Name,
		Description: anthropic.String(d.Description),
		InputSchema: anthropic.ToolInputSchemaParam{
			Properties: params.Properties,
			Required:   params.Required,
		},
	}
}

// ClaudeTools renders every registered descriptor for a Claude request.
func (r *Registry) ClaudeTools() []anthropic.ToolUnionParam {
	descriptors := r.Descriptors()
	tools := make([]anthropic.ToolUnionParam, 0, len(descriptors))
	for _, d := range descriptors {
		tool := d.Claude()
		tools = append(tools, anthropic.ToolUnionParam{OfTool: &tool})
	}
	return tools
}

// FromClaude converts a Claude tool use block into a Call.
func FromClaude(block anthropic.ToolUseBlock) (Call, error) {
	call := Call{ID: block.ID, Name: block.Name}
	if len(block.Input) == 0 {
		return call, nil
	}
	if err := json.Unmarshal(block.Input, &call.Args); err != nil {
		return call, &ParameterError{Tool: block.Name, Err: fmt.Errorf("parsing tool input: %w", err)}
	}
	return call, nil
}
