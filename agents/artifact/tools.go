/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package artifact

import (
	"context"
	"strings"

	"chainguard.dev/agentfactory/agents/toolcall"
)

type readFileParams struct {
	Path string `json:"path" jsonschema:"required,description=File path relative to the workspace"`
}

type writeFileParams struct {
	Path    string `json:"path" jsonschema:"required,description=File path relative to the workspace"`
	Content string `json:"content" jsonschema:"required,description=Complete file content"`
}

type listFilesParams struct{}

// Tools returns read_file, write_file and list_files tools over sb. Go
// files are checked for syntax errors when written, and the errors are
// reported to the model alongside the write.
func Tools(sb *Sandbox) []toolcall.Descriptor {
	return []toolcall.Descriptor{
		toolcall.For("read_file", "Read a file from the workspace.",
			func(_ context.Context, p readFileParams) (any, error) {
				data, err := sb.ReadFile(p.Path)
				if err != nil {
					return nil, err
				}
				return map[string]any{"path": p.Path, "content": string(data)}, nil
			}),
		toolcall.For("write_file", "Write a file to the workspace, replacing any existing content.",
			func(_ context.Context, p writeFileParams) (any, error) {
				if err := sb.WriteFile(p.Path, []byte(p.Content)); err != nil {
					return nil, err
				}
				result := map[string]any{"path": p.Path, "bytes": len(p.Content)}
				if strings.HasSuffix(p.Path, ".go") {
					if err := ValidateGoSource(p.Path, []byte(p.Content)); err != nil {
						result["syntax_error"] = err.Error()
					}
				}
				return result, nil
			}),
		toolcall.For("list_files", "List the files in the workspace.",
			func(context.Context, listFilesParams) (any, error) {
				files, err := sb.Files()
				if err != nil {
					return nil, err
				}
				return map[string]any{"files": files}, nil
			}),
	}
}
