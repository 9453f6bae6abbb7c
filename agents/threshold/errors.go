/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package threshold

import (
	"errors"
	"fmt"
	"strings"
)

// ErrThresholdNotMet is matched by every *AggregateError. It is also what an
// AggregateError unwraps to when no attempt failure was captured.
var ErrThresholdNotMet = errors.New("success threshold not met")

// ConfigurationError reports a Config that violates its invariants.
// It is returned before any attempt is made.
type ConfigurationError struct {
	MaxAttempts      int
	MinSuccesses     int
	ConcurrencyLimit int
	Reason           string
}

func (e *ConfigurationError) Error() string {
	return "invalid threshold configuration: " + e.Reason
}

// PanicError wraps a value recovered from a panicking attempt.
type PanicError struct {
	// Attempt is the 1-based attempt number.
	Attempt int
	Value   any
	Stack   []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("attempt %d panicked: %v", e.Attempt, e.Value)
}

// AggregateError is returned when the success threshold was not met.
type AggregateError struct {
	// Name identifies the operation being run.
	Name string
	// Successes is the number of successful attempts observed.
	Successes int
	// Attempts is the number of attempt outcomes observed.
	Attempts int
	// MinSuccesses is the number of successes that were required.
	MinSuccesses int
	// Failures holds every captured attempt error in completion order.
	Failures []error
}

func (e *AggregateError) Error() string {
	var sb strings.Builder
	if e.Name != "" {
		sb.WriteString(e.Name)
		sb.WriteString(": ")
	}
	fmt.Fprintf(&sb, "Test failed with %d successes out of %d attempts. Required at least %d successes.",
		e.Successes, e.Attempts, e.MinSuccesses)
	if len(e.Failures) > 0 {
		sb.WriteString("\nErrors encountered:")
		for i, err := range e.Failures {
			fmt.Fprintf(&sb, "\n%d. %v", i+1, err)
		}
	}
	return sb.String()
}

// Unwrap returns the most recent captured failure, so errors.Is and
// errors.As see the same kind of error the operation itself produced.
func (e *AggregateError) Unwrap() error {
	if len(e.Failures) == 0 {
		return ErrThresholdNotMet
	}
	return e.Failures[len(e.Failures)-1]
}

// Is reports whether target is ErrThresholdNotMet.
func (e *AggregateError) Is(target error) bool {
	return target == ErrThresholdNotMet
}
