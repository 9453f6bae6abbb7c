/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package threshold runs a non-deterministic operation repeatedly and accepts
it once it has succeeded a minimum number of times.

LLM-driven work (generating an agent, judging an answer, running a generated
agent against its evaluation case) does not pass or fail deterministically.
The harness in this package makes such checks statistically meaningful: it
runs up to MaxAttempts copies of the same operation, at most
ConcurrencyLimit at a time, and stops as soon as the verdict is decided.

# Verdicts

Outcomes are consumed in completion order. The run succeeds as soon as
MinSuccesses attempts have succeeded, returning the value of the first
success. It fails as soon as more than MaxAttempts-MinSuccesses attempts
have failed, since the threshold can no longer be reached. Outstanding
attempts are cancelled through their context and awaited before Run
returns, so no goroutine outlives the call.

	cfg := threshold.DefaultConfig()
	cfg.MaxAttempts, cfg.MinSuccesses = 5, 3

	agent, err := threshold.Run(ctx, cfg, "generate-agent", func(ctx context.Context) (*Agent, error) {
		return generator.Generate(ctx, prompt)
	})

# Expected and unexpected failures

Config.Expected decides which errors count as ordinary failures of a flaky
attempt. Anything else is treated as a defect: it is returned unchanged and
immediately, without waiting for the threshold. Panics inside an attempt are
recovered into *PanicError and are always unexpected.

An attempt that fails with its own context's error after the run context
was cancelled is neither: it is labelled cancelled. That covers attempts
still in flight once the verdict is reached.

	cfg.Expected = threshold.AnyOf(
		threshold.ExpectErrors(ErrJudgeDisagrees),
		threshold.ExpectAs[*ValidationError](),
	)

When the threshold is not met Run returns an *AggregateError. Its message
lists every captured failure, and it unwraps to the most recent one, so
callers matching on the operation's own error types with errors.Is or
errors.As keep working.

# Sequential runs

RunSequential is the blocking variant: attempts run one at a time with
Config.Delay (plus up to Config.MaxJitter) between them. It uses the same
verdict rules and error contract as Run.
*/
package threshold
