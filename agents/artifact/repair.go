/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package artifact

import (
	"context"
	"errors"
	"fmt"

	"github.com/chainguard-dev/clog"
)

// Fixer proposes a corrected version of a source file with syntax errors,
// typically by asking a model.
type Fixer interface {
	Fix(ctx context.Context, src []byte, problem *SyntaxError) ([]byte, error)
}

// FixerFunc adapts a function to Fixer.
type FixerFunc func(ctx context.Context, src []byte, problem *SyntaxError) ([]byte, error)

func (f FixerFunc) Fix(ctx context.Context, src []byte, problem *SyntaxError) ([]byte, error) {
	return f(ctx, src, problem)
}

// RepairConfig bounds the repair loop.
type RepairConfig struct {
	// MaxRetries is the number of fixes requested before giving up.
	MaxRetries int
}

// DefaultRepairConfig allows three fixes.
func DefaultRepairConfig() RepairConfig {
	return RepairConfig{MaxRetries: 3}
}

// Validate rejects a negative retry budget.
func (c RepairConfig) Validate() error {
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries (%d) cannot be negative", c.MaxRetries)
	}
	return nil
}

// RepairError is returned when the retries are spent and the artifact
// still does not compile on its own. Source holds the last candidate.
type RepairError struct {
	Retries int
	Source  []byte
	Last    *SyntaxError
}

func (e *RepairError) Error() string {
	return fmt.Sprintf("artifact still invalid after %d repairs: %v", e.Retries, e.Last)
}

func (e *RepairError) Unwrap() error { return e.Last }

// Repair validates the Go file name and asks fixer to correct it until it
// parses and has no unused declarations, or cfg.MaxRetries fixes have been
// tried. The valid artifact is returned tidied: unused imports removed and
// gofmt-formatted.
func Repair(ctx context.Context, cfg RepairConfig, name string, src []byte, fixer Fixer) ([]byte, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := clog.FromContext(ctx).With("artifact", name)

	for retry := 0; ; retry++ {
		tidied, err := check(name, src)
		if err == nil {
			if retry > 0 {
				log.With("repairs", retry).Info("Repaired artifact")
			}
			return tidied, nil
		}

		var serr *SyntaxError
		if !errors.As(err, &serr) {
			return nil, err
		}
		if tidied != nil {
			src = tidied
		}
		if retry >= cfg.MaxRetries {
			log.With("repairs", retry).With("error", serr).Warn("Giving up on artifact repair")
			return nil, &RepairError{Retries: retry, Source: src, Last: serr}
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		log.With("retry", retry+1).
			With("max_retries", cfg.MaxRetries).
			With("errors", len(serr.Errors)).
			Info("Requesting artifact fix")
		if src, err = fixer.Fix(ctx, src, serr); err != nil {
			return nil, fmt.Errorf("fixing %s: %w", name, err)
		}
	}
}
