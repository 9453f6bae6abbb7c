/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Command thresholdrun runs a command until it succeeds a required number
// of times out of a bounded number of attempts. It is meant for flaky
// LLM-driven checks such as generated-agent test suites:
//
//	THRESHOLD_MAX_ATTEMPTS=5 THRESHOLD_MIN_SUCCESSES=4 thresholdrun go test ./generated/...
//
// Each attempt runs with THRESHOLD_ATTEMPT set to its 1-based number. The
// attempt table is printed when the run completes and the exit status is
// non-zero when the threshold is not met.
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"chainguard.dev/agentfactory/agents/evals/report"
	"chainguard.dev/agentfactory/agents/threshold"
	"github.com/chainguard-dev/clog"
	_ "github.com/chainguard-dev/clog/gcp/init"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sethvargo/go-envconfig"
)

type config struct {
	MaxAttempts  int           `env:"THRESHOLD_MAX_ATTEMPTS,default=5"`
	MinSuccesses int           `env:"THRESHOLD_MIN_SUCCESSES,default=4"`
	Concurrency  int           `env:"THRESHOLD_CONCURRENCY,default=2"`
	Sequential   bool          `env:"THRESHOLD_SEQUENTIAL,default=false"`
	Delay        time.Duration `env:"THRESHOLD_DELAY,default=0s"`
	MaxJitter    time.Duration `env:"THRESHOLD_MAX_JITTER,default=0s"`
	Name         string        `env:"THRESHOLD_NAME"`

	// MetricsPort serves /metrics while the run is in progress. Zero
	// disables the endpoint.
	MetricsPort int `env:"METRICS_PORT,default=0"`
}

func (c config) threshold() threshold.Config {
	return threshold.Config{
		MaxAttempts:      c.MaxAttempts,
		MinSuccesses:     c.MinSuccesses,
		ConcurrencyLimit: c.Concurrency,
		Expected:         threshold.DefaultExpected,
		Delay:            c.Delay,
		MaxJitter:        c.MaxJitter,
	}
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var cfg config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		clog.FatalContextf(ctx, "processing config: %v", err)
	}
	args := os.Args[1:]
	if len(args) == 0 {
		clog.FatalContextf(ctx, "usage: thresholdrun command [args...]")
	}
	if cfg.Name == "" {
		cfg.Name = args[0]
	}

	if cfg.MetricsPort != 0 {
		go serveMetrics(ctx, cfg.MetricsPort)
	}

	summary, err := run(ctx, cfg, args)
	fmt.Println(report.Attempts(summary.Records()))
	if err != nil {
		clog.ErrorContextf(ctx, "%v", err)
		os.Exit(1)
	}
}

// run executes args under the harness and returns the consumed attempt
// records.
func run(ctx context.Context, cfg config, args []string) (*threshold.Summary, error) {
	summary := &threshold.Summary{}
	tcfg := cfg.threshold()
	tcfg.Observer = summary.Observe

	harness := threshold.Run[struct{}]
	if cfg.Sequential {
		harness = threshold.RunSequential[struct{}]
	}
	_, err := harness(ctx, tcfg, cfg.Name, threshold.Check(func(ctx context.Context) error {
		return command(ctx, args)
	}))
	return summary, err
}

// CommandError is an attempt whose command exited unsuccessfully.
type CommandError struct {
	ExitCode int
	// Output is the tail of the combined stdout and stderr.
	Output string
}

func (e *CommandError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("exit status %d", e.ExitCode)
	}
	return fmt.Sprintf("exit status %d: %s", e.ExitCode, e.Output)
}

const outputTail = 2048

func command(ctx context.Context, args []string) error {
	attempt, _ := threshold.AttemptFromContext(ctx)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Env = append(os.Environ(), "THRESHOLD_ATTEMPT="+strconv.Itoa(attempt))

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &CommandError{ExitCode: exitErr.ExitCode(), Output: tail(out.String(), outputTail)}
	}
	if err != nil {
		return fmt.Errorf("running %s: %w", args[0], err)
	}
	clog.FromContext(ctx).With("attempt", attempt).Debug("Command succeeded", "output_bytes", out.Len())
	return nil
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}

func serveMetrics(ctx context.Context, port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		clog.ErrorContextf(ctx, "serving metrics: %v", err)
	}
}

