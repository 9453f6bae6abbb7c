/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package threshold

import (
	"context"
	"crypto/rand"
	"math/big"
	"time"

	"github.com/chainguard-dev/clog"
)

// RunSequential is the blocking form of Run: attempts execute one at a time
// with cfg.Delay plus up to cfg.MaxJitter between them. It stops as soon as
// the verdict is decided and follows the same error contract as Run.
func RunSequential[T any](ctx context.Context, cfg Config, name string, op Operation[T]) (T, error) {
	var zero T
	if cfg.ConcurrencyLimit == 0 {
		cfg.ConcurrencyLimit = 1
	}
	if err := cfg.Validate(); err != nil {
		runCounter.WithLabelValues(name, "sequential", VerdictInvalid).Inc()
		return zero, err
	}

	ctx, span := startRun(ctx, cfg, name, "sequential")
	log := clog.FromContext(ctx).With("name", name)

	t := newTally[T](cfg)
	value, err := func() (T, error) {
		for i := range cfg.MaxAttempts {
			if i > 0 {
				if err := pause(ctx, cfg); err != nil {
					return zero, err
				}
			}
			o := runAttempt(ctx, cfg, name, i, op)
			if o.cancelled {
				t.observe(o)
				return zero, ctx.Err()
			}
			if o.unexpected {
				t.observe(o)
				return zero, o.err
			}
			if t.record(o) != running {
				break
			}
		}
		return t.verdict(name)
	}()

	finishRun(ctx, span, log, t, "sequential", name, err)
	return value, err
}

// pause waits cfg.Delay plus random jitter, or until ctx is done.
func pause(ctx context.Context, cfg Config) error {
	wait := cfg.Delay
	if cfg.MaxJitter > 0 {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(cfg.MaxJitter)))
		if err == nil {
			wait += time.Duration(n.Int64())
		}
	}
	if wait <= 0 {
		return ctx.Err()
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}
