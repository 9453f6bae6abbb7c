/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package artifact_test

import (
	"strings"
	"testing"

	"chainguard.dev/agentfactory/agents/artifact"
)

func TestUnusedDeclarations(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want int
	}{{
		name: "clean",
		src:  "package agent\n\nfunc Run() int { x := 1; return x }\n",
	}, {
		name: "unused local",
		src:  "package agent\n\nfunc Run() int { x := 1; return 2 }\n",
		want: 1,
	}, {
		name: "unresolved import is not reported",
		src:  "package agent\n\nimport \"example.com/llm\"\n\nfunc Run() string { return llm.Ask() }\n",
	}, {
		name: "unused alongside unresolved import",
		src:  "package agent\n\nimport \"example.com/llm\"\n\nfunc Run() string { n := 3; return llm.Ask() }\n",
		want: 1,
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := artifact.UnusedDeclarations("agent.go", []byte(tt.src))
			if err != nil {
				t.Fatalf("UnusedDeclarations: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("unused: got = %q, wanted %d entries", got, tt.want)
			}
		})
	}
}

func TestTidy(t *testing.T) {
	got, err := artifact.Tidy("agent.go", []byte("package agent\nimport \"fmt\"\nfunc Run(){}"))
	if err != nil {
		t.Fatalf("Tidy: %v", err)
	}
	if strings.Contains(string(got), `"fmt"`) {
		t.Errorf("Tidy: got = %q, wanted the unused import removed", got)
	}
	if !strings.Contains(string(got), "func Run() {}\n") {
		t.Errorf("Tidy: got = %q, wanted gofmt output", got)
	}
}
