/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge

import (
	"fmt"
	"strings"
	"text/template"
)

const rubric = `Scoring rubric:
- 1.0: fully meets the criterion. Wording or style differences that do not change meaning are not penalised. Suggestions must be empty.
- 0.75-0.99: meets the criterion with minor gaps. Give the specific minor improvements that justify the deduction.
- 0.50-0.74: partially meets the criterion with notable gaps. Give improvements addressing each gap.
- 0.25-0.49: significant problems with some correct elements. Give improvements for each major problem.
- 0.0-0.24: fails the criterion. Give the fundamental corrections needed.
Suggestions name specific missing or wrong elements, not general advice.`

var prompts = map[JudgmentMode]*template.Template{
	GoldenMode: template.Must(template.New("golden").Parse(`<task>
Evaluate a response against a reference answer for one criterion.
</task>

<reference_answer>
{{.ReferenceAnswer}}
</reference_answer>

<response>
{{.ActualAnswer}}
</response>

<criterion>
{{.Criterion}}
</criterion>

<instructions>
Compare the response to the reference answer only with respect to the criterion and score it from 0.0 to 1.0.

{{.Rubric}}
</instructions>

{{.Output}}`)),

	BenchmarkMode: template.Must(template.New("benchmark").Parse(`<task>
Compare two candidate responses for one criterion.
</task>

<first_candidate>
{{.ReferenceAnswer}}
</first_candidate>

<second_candidate>
{{.ActualAnswer}}
</second_candidate>

<criterion>
{{.Criterion}}
</criterion>

<instructions>
Score from -1.0 to 1.0: -1.0 means the first candidate is clearly better, 0.0 means they are equivalent and 1.0 means the second candidate is clearly better. Suggestions improve the weaker candidate.
</instructions>

{{.Output}}`)),

	StandaloneMode: template.Must(template.New("standalone").Parse(`<task>
Evaluate a response for one criterion. There is no reference answer.
</task>

<response>
{{.ActualAnswer}}
</response>

<criterion>
{{.Criterion}}
</criterion>

<instructions>
Judge the response only with respect to the criterion and score it from 0.0 to 1.0.

{{.Rubric}}
</instructions>

{{.Output}}`)),
}

// renderPrompt renders the prompt for the request's mode. output describes
// how the verdict must be returned.
func renderPrompt(r *Request, output string) (string, error) {
	tmpl, ok := prompts[r.Mode]
	if !ok {
		return "", fmt.Errorf("unsupported mode: %q", r.Mode)
	}
	var sb strings.Builder
	err := tmpl.Execute(&sb, struct {
		*Request
		Rubric string
		Output string
	}{r, rubric, output})
	return sb.String(), err
}

func toolOutput(mode JudgmentMode) string {
	return fmt.Sprintf(`<output_format>
Submit your verdict by calling the %s tool with mode %q.
</output_format>`, submitTool, mode)
}

func jsonOutput(mode JudgmentMode) string {
	return fmt.Sprintf(`<output_format>
Return a JSON object: {"mode": %q, "score": number, "reasoning": string, "suggestions": [string]}
</output_format>`, mode)
}
