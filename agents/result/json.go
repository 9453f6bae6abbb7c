/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package result

import (
	"encoding/json"
	"strings"
)

const fence = "```"

// ExtractJSON returns the JSON payload of a model response. The first
// ```json block on its own lines wins, and an empty block yields "".
// Otherwise fences and whitespace around the whole response are stripped.
func ExtractJSON(text string) string {
	if body, ok := fencedBlock(text); ok {
		return body
	}

	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, fence+"json") && strings.HasSuffix(text, fence) {
		text = strings.TrimPrefix(text, fence+"json")
	} else {
		text = strings.TrimPrefix(text, fence)
	}
	return strings.TrimSpace(strings.TrimSuffix(text, fence))
}

// fencedBlock returns the body of the first ```json block. An unterminated
// block runs to the end of text.
func fencedBlock(text string) (string, bool) {
	var body []string
	open := false
	for line := range strings.SplitSeq(text, "\n") {
		switch {
		case !open && line == fence+"json":
			open = true
		case open && line == fence:
			return strings.TrimSpace(strings.Join(body, "\n")), true
		case open:
			body = append(body, line)
		}
	}
	return strings.TrimSpace(strings.Join(body, "\n")), open
}

// Extract decodes the JSON payload of a model response into T.
func Extract[T any](text string) (T, error) {
	var v T
	err := json.Unmarshal([]byte(ExtractJSON(text)), &v)
	return v, err
}
