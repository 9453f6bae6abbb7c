/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package result extracts structured values from model responses.

Models usually wrap JSON in markdown fences and surround it with prose.
ExtractJSON returns the payload and Extract decodes it:

	m, err := result.Extract[Manifest](response)

ExtractOutcome reports how much of the value arrived. Fields tagged
`jsonschema:"required"` that the model left out make the outcome partial
instead of failing it, so callers can keep what was produced:

	outcome := result.ExtractOutcome[Manifest](response)
	switch outcome.Status {
	case result.StatusCompleted:
		use(outcome.Value)
	case result.StatusPartial:
		repair(outcome.Value, outcome.Cause)
	case result.StatusFailed:
		return outcome.Cause
	}
*/
package result
