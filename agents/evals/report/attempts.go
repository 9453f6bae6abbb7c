/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package report

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"chainguard.dev/agentfactory/agents/threshold"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
)

// attemptColumns are right-aligned where they hold numbers.
var attemptColumns = []struct {
	header string
	align  tw.Align
}{
	{"Attempt", tw.AlignRight},
	{"Outcome", tw.AlignLeft},
	{"Duration", tw.AlignRight},
	{"Error", tw.AlignLeft},
}

// attemptsTable returns a markdown table for attempt records. Errors are cut
// to one line before they reach it, so rows are never wrapped.
func attemptsTable(w io.Writer) *tablewriter.Table {
	headers := make([]string, 0, len(attemptColumns))
	align := make([]tw.Align, 0, len(attemptColumns))
	for _, c := range attemptColumns {
		headers = append(headers, c.header)
		align = append(align, c.align)
	}
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{
				Alignment:  tw.CellAlignment{PerColumn: align},
				Formatting: tw.CellFormatting{AutoFormat: tw.Off},
			},
			Row: tw.CellConfig{
				Alignment: tw.CellAlignment{PerColumn: align},
			},
		}),
		tablewriter.WithHeader(headers),
		tablewriter.WithRenderer(renderer.NewBlueprint()),
		tablewriter.WithRendition(tw.Rendition{
			Symbols: tw.NewSymbols(tw.StyleMarkdown),
			Borders: tw.Border{Left: tw.On, Right: tw.On, Top: tw.Off, Bottom: tw.Off},
		}),
		tablewriter.WithRowAutoWrap(tw.WrapNone),
	)
}

// Attempts renders harness records as a markdown table in the order the
// harness consumed them, headed by the success count.
func Attempts(records []threshold.Record) string {
	var buf bytes.Buffer
	table := attemptsTable(&buf)

	successes := 0
	for _, r := range records {
		if r.Outcome == threshold.OutcomeSuccess {
			successes++
		}
		errText := "-"
		if r.Err != nil {
			errText = firstLine(r.Err.Error(), 60)
		}
		_ = table.Append([]string{
			strconv.Itoa(r.Attempt),
			outcomeCell(r.Outcome),
			r.Duration().Round(time.Millisecond).String(),
			errText,
		})
	}
	_ = table.Render()

	return fmt.Sprintf("## Attempts (%d/%d succeeded)\n\n%s", successes, len(records), buf.String())
}

func outcomeCell(outcome string) string {
	switch outcome {
	case threshold.OutcomeSuccess:
		return "✅ " + outcome
	case threshold.OutcomeCancelled:
		return "⏹️ " + outcome
	default:
		return "❌ " + outcome
	}
}

// firstLine returns the first line of s, cut to at most n runes.
func firstLine(s string, n int) string {
	s, _, _ = strings.Cut(s, "\n")
	if r := []rune(s); len(r) > n {
		s = string(r[:n-3]) + "..."
	}
	return s
}
