/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package toolcall describes the tools an agent may call and dispatches
// the calls a model makes.
//
// A Descriptor pairs a tool's name, description and JSON schema parameters
// with the function that serves it. For derives the schema from a Go type:
//
//	type writeFile struct {
//		Path    string `json:"path" jsonschema:"required"`
//		Content string `json:"content" jsonschema:"required"`
//	}
//
//	reg, err := toolcall.NewRegistry(
//		toolcall.For("write_file", "Write a file to the workspace.",
//			func(ctx context.Context, p writeFile) (any, error) {
//				return nil, sandbox.WriteFile(p.Path, []byte(p.Content))
//			}),
//	)
//
// The registry renders its descriptors for Claude (ClaudeTools) and Gemini
// (GeminiTools), and Dispatch validates and invokes a model's call while
// recording it on the agent trace.
package toolcall
