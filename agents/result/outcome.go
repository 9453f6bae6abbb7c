/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package result

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"chainguard.dev/agentfactory/agents/schema"
)

// Status is the variant of an Outcome.
type Status int

const (
	// StatusCompleted means the operation produced its full value.
	StatusCompleted Status = iota
	// StatusPartial means the operation produced a usable value but stopped
	// short, for the reason held in Cause.
	StatusPartial
	// StatusFailed means the operation produced nothing usable.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusCompleted:
		return "completed"
	case StatusPartial:
		return "partially completed"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Outcome is the result of an operation that may finish only partway.
// Partial results travel in the return value rather than inside an error.
type Outcome[T any] struct {
	Status Status
	Value  T
	Cause  error
}

// Completed returns a completed outcome holding value.
func Completed[T any](value T) Outcome[T] {
	return Outcome[T]{Status: StatusCompleted, Value: value}
}

// PartiallyCompleted returns an outcome holding the partial value and the
// reason it is incomplete.
func PartiallyCompleted[T any](partial T, cause error) Outcome[T] {
	return Outcome[T]{Status: StatusPartial, Value: partial, Cause: cause}
}

// Failed returns a failed outcome.
func Failed[T any](cause error) Outcome[T] {
	return Outcome[T]{Status: StatusFailed, Cause: cause}
}

// Usable reports whether Value holds something the caller can act on.
func (o Outcome[T]) Usable() bool {
	return o.Status != StatusFailed
}

// Result collapses the outcome into Go's (value, error) form. A partial
// outcome returns its value together with a *PartialError.
func (o Outcome[T]) Result() (T, error) {
	switch o.Status {
	case StatusCompleted:
		return o.Value, nil
	case StatusPartial:
		return o.Value, &PartialError{Cause: o.Cause}
	default:
		var zero T
		return zero, o.Cause
	}
}

func (o Outcome[T]) String() string {
	if o.Cause == nil {
		return o.Status.String()
	}
	return fmt.Sprintf("%s: %v", o.Status, o.Cause)
}

// PartialError marks an error that accompanies a usable partial value.
type PartialError struct {
	Cause error
}

func (e *PartialError) Error() string { return "partially completed: " + e.Cause.Error() }

func (e *PartialError) Unwrap() error { return e.Cause }

// MissingFieldsError lists required fields absent from a decoded response.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// ErrNoJSON is the cause of a failed outcome whose response held no JSON.
var ErrNoJSON = errors.New("response contains no JSON")

// ExtractOutcome decodes the JSON payload of a model response into T.
// Fields tagged `jsonschema:"required"` that are absent or null make the
// outcome partial; a response that does not decode fails.
func ExtractOutcome[T any](text string) Outcome[T] {
	payload := ExtractJSON(text)
	if payload == "" {
		return Failed[T](ErrNoJSON)
	}

	var v T
	if err := json.Unmarshal([]byte(payload), &v); err != nil {
		return Failed[T](fmt.Errorf("decoding response: %w", err))
	}

	if missing := missingFields(schema.ReflectType[T]().Required, payload); len(missing) > 0 {
		return PartiallyCompleted(v, &MissingFieldsError{Fields: missing})
	}
	return Completed(v)
}

var null = []byte("null")

func missingFields(required []string, payload string) []string {
	if len(required) == 0 {
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &fields); err != nil {
		return nil
	}
	var missing []string
	for _, name := range required {
		if raw, ok := fields[name]; !ok || bytes.Equal(bytes.TrimSpace(raw), null) {
			missing = append(missing, name)
		}
	}
	slices.Sort(missing)
	return missing
}
