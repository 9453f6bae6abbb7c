/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package artifact_test

import (
	"context"
	"errors"
	"testing"

	"chainguard.dev/agentfactory/agents/artifact"
	"github.com/stretchr/testify/require"
)

func TestRepair(t *testing.T) {
	broken := []byte("package main\n\nfunc main() {\n")
	var problems []*artifact.SyntaxError
	fixer := artifact.FixerFunc(func(_ context.Context, src []byte, problem *artifact.SyntaxError) ([]byte, error) {
		problems = append(problems, problem)
		if len(problems) == 1 {
			return src, nil
		}
		return append(src, "}"...), nil
	})

	got, err := artifact.Repair(context.Background(), artifact.DefaultRepairConfig(), "agent.go", broken, fixer)
	require.NoError(t, err)
	require.Equal(t, "package main\n\nfunc main() {\n}\n", string(got))
	require.Len(t, problems, 2)
	require.Equal(t, "agent.go", problems[0].Name)
}

func TestRepairFormatsValidSource(t *testing.T) {
	fixer := artifact.FixerFunc(func(context.Context, []byte, *artifact.SyntaxError) ([]byte, error) {
		t.Fatal("valid source should not be fixed")
		return nil, nil
	})
	got, err := artifact.Repair(context.Background(), artifact.RepairConfig{}, "agent.go", []byte("package main\nfunc main(){}"), fixer)
	require.NoError(t, err)
	require.Equal(t, "package main\n\nfunc main() {}\n", string(got))
}

func TestRepairGivesUp(t *testing.T) {
	calls := 0
	fixer := artifact.FixerFunc(func(_ context.Context, src []byte, _ *artifact.SyntaxError) ([]byte, error) {
		calls++
		return src, nil
	})

	_, err := artifact.Repair(context.Background(), artifact.RepairConfig{MaxRetries: 2}, "agent.go", []byte("package main\nfunc"), fixer)
	var rerr *artifact.RepairError
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, 2, rerr.Retries)
	require.Equal(t, 2, calls)

	var serr *artifact.SyntaxError
	require.ErrorAs(t, err, &serr, "RepairError should unwrap to the last syntax error")
}

func TestRepairErrors(t *testing.T) {
	errModel := errors.New("model unavailable")
	failing := artifact.FixerFunc(func(context.Context, []byte, *artifact.SyntaxError) ([]byte, error) {
		return nil, errModel
	})
	broken := []byte("package main\nfunc")

	_, err := artifact.Repair(context.Background(), artifact.DefaultRepairConfig(), "agent.go", broken, failing)
	require.ErrorIs(t, err, errModel)

	_, err = artifact.Repair(context.Background(), artifact.RepairConfig{MaxRetries: -1}, "agent.go", broken, failing)
	require.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = artifact.Repair(ctx, artifact.DefaultRepairConfig(), "agent.go", broken, failing)
	require.ErrorIs(t, err, context.Canceled)
}

func TestRepairRemovesUnusedImports(t *testing.T) {
	fixer := artifact.FixerFunc(func(context.Context, []byte, *artifact.SyntaxError) ([]byte, error) {
		t.Fatal("unused imports should be dropped without a fix")
		return nil, nil
	})
	src := []byte("package agent\n\nimport (\n\t\"os\"\n\t\"strings\"\n)\n\nfunc Run(s string) string { return strings.ToUpper(s) }\n")

	got, err := artifact.Repair(context.Background(), artifact.DefaultRepairConfig(), "agent.go", src, fixer)
	require.NoError(t, err)
	require.NotContains(t, string(got), `"os"`)
	require.Contains(t, string(got), `"strings"`)
	require.Contains(t, string(got), "func Run(s string) string { return strings.ToUpper(s) }\n")
}

func TestRepairUnusedVariable(t *testing.T) {
	src := []byte("package agent\n\nimport \"os\"\n\nfunc Run() int { x := 1; return 2 }\n")
	var problems []*artifact.SyntaxError
	fixer := artifact.FixerFunc(func(_ context.Context, src []byte, problem *artifact.SyntaxError) ([]byte, error) {
		problems = append(problems, problem)
		require.NotContains(t, string(src), `"os"`, "the fixer should see the tidied source")
		return []byte("package agent\n\nfunc Run() int { return 2 }\n"), nil
	})

	got, err := artifact.Repair(context.Background(), artifact.DefaultRepairConfig(), "agent.go", src, fixer)
	require.NoError(t, err)
	require.Equal(t, "package agent\n\nfunc Run() int { return 2 }\n", string(got))
	require.Len(t, problems, 1)
	require.Len(t, problems[0].Errors, 1)
	require.Contains(t, problems[0].Errors[0], "declared and not used")
}

func TestRepairUnusedVariableGivesUp(t *testing.T) {
	src := []byte("package agent\n\nfunc Run() int { x := 1; return 2 }\n")
	fixer := artifact.FixerFunc(func(_ context.Context, src []byte, _ *artifact.SyntaxError) ([]byte, error) {
		return src, nil
	})

	_, err := artifact.Repair(context.Background(), artifact.RepairConfig{MaxRetries: 1}, "agent.go", src, fixer)
	var rerr *artifact.RepairError
	require.ErrorAs(t, err, &rerr)
	require.Contains(t, rerr.Last.Error(), "declared and not used")
}
