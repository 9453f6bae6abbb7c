/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/chainguard-dev/clog"
)

// RetryConfig bounds the retries of a single model request that hit a
// rate limit or an overloaded backend. It is independent of the harness
// attempts a criterion is judged with.
type RetryConfig struct {
	MaxRetries  int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
	MaxJitter   time.Duration
}

// DefaultRetryConfig returns 5 retries backing off from 1s to 60s.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:  5,
		BaseBackoff: time.Second,
		MaxBackoff:  time.Minute,
		MaxJitter:   500 * time.Millisecond,
	}
}

// Validate rejects negative values.
func (c RetryConfig) Validate() error {
	if c.MaxRetries < 0 || c.BaseBackoff < 0 || c.MaxBackoff < 0 || c.MaxJitter < 0 {
		return errors.New("retry configuration values cannot be negative")
	}
	return nil
}

func (c RetryConfig) backoff(retry int) time.Duration {
	d := min(c.BaseBackoff<<retry, c.MaxBackoff)
	if c.MaxJitter > 0 {
		if n, err := rand.Int(rand.Reader, big.NewInt(int64(c.MaxJitter))); err == nil {
			d += time.Duration(n.Int64())
		}
	}
	return d
}

// withBackoff calls fn until it succeeds, fails with an error retryable
// rejects, or the retries are spent.
func withBackoff[T any](ctx context.Context, cfg RetryConfig, operation string, retryable func(error) bool, fn func() (T, error)) (T, error) {
	var (
		result T
		err    error
	)
	for retry := 0; ; retry++ {
		result, err = fn()
		if err == nil || !retryable(err) {
			return result, err
		}
		if retry >= cfg.MaxRetries {
			return result, fmt.Errorf("%s failed after %d retries: %w", operation, cfg.MaxRetries, err)
		}

		wait := cfg.backoff(retry)
		clog.FromContext(ctx).With("operation", operation).
			With("retry", retry+1).
			With("backoff", wait).
			With("error", err).
			Warn("Model request throttled, retrying")

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-time.After(wait):
		}
	}
}

func isRetryableClaudeError(err error) bool {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 429, 503, 504, 529:
			return true
		}
	}
	return false
}

// The genai SDK does not expose typed status errors for every backend, so
// Vertex errors are matched on their text.
func isRetryableVertexError(err error) bool {
	msg := err.Error()
	for _, marker := range []string{"429", "503", "RESOURCE_EXHAUSTED", "Resource exhausted", "rate limit", "Overloaded", "quota exceeded"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
