/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package threshold

import (
	"context"
	"errors"
)

// DefaultExpected treats every error as an ordinary attempt failure except
// context cancellation, deadline expiry and recovered panics.
func DefaultExpected(err error) bool {
	var pe *PanicError
	switch {
	case err == nil:
		return false
	case errors.As(err, &pe):
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	}
	return true
}

// ExpectErrors matches errors that wrap any of the given sentinel values.
func ExpectErrors(targets ...error) func(error) bool {
	return func(err error) bool {
		for _, target := range targets {
			if errors.Is(err, target) {
				return true
			}
		}
		return false
	}
}

// ExpectAs matches errors that have an error of type E in their chain.
func ExpectAs[E error]() func(error) bool {
	return func(err error) bool {
		var target E
		return errors.As(err, &target)
	}
}

// AnyOf matches errors accepted by at least one of the predicates.
func AnyOf(preds ...func(error) bool) func(error) bool {
	return func(err error) bool {
		for _, pred := range preds {
			if pred != nil && pred(err) {
				return true
			}
		}
		return false
	}
}
