/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Command evaljudge scores a generated agent's answer against an
// evaluation case with an LLM judge:
//
//	EVAL_CASE=case.yaml EVAL_ANSWER=agent.go evaljudge
//
// Every checkpoint of the case is judged several times and earns its
// points when enough judgements pass. The per-checkpoint report is printed
// and the score is written as JSON to EVAL_OUTPUT.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"chainguard.dev/agentfactory/agents/evals"
	"chainguard.dev/agentfactory/agents/evals/report"
	"chainguard.dev/agentfactory/agents/judge"
	"github.com/chainguard-dev/clog"
	_ "github.com/chainguard-dev/clog/gcp/init"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sethvargo/go-envconfig"
)

type config struct {
	Case   string `env:"EVAL_CASE,required"`
	Answer string `env:"EVAL_ANSWER,required"`
	Output string `env:"EVAL_OUTPUT,default=evaluation_results.json"`
	// Judge overrides the llm_judge of the case.
	Judge string `env:"EVAL_JUDGE"`

	MaxAttempts  int     `env:"EVAL_MAX_ATTEMPTS,default=3"`
	MinSuccesses int     `env:"EVAL_MIN_SUCCESSES,default=2"`
	Concurrency  int     `env:"EVAL_CONCURRENCY,default=3"`
	PassScore    float64 `env:"EVAL_PASS_SCORE,default=0.75"`

	ProjectID string `env:"GOOGLE_CLOUD_PROJECT"`
	Region    string `env:"GOOGLE_CLOUD_REGION,default=us-central1"`

	MetricsPort int `env:"METRICS_PORT,default=0"`
}

func (c config) evaluate() judge.EvaluateConfig {
	ecfg := judge.DefaultEvaluateConfig()
	ecfg.Threshold.MaxAttempts = c.MaxAttempts
	ecfg.Threshold.MinSuccesses = c.MinSuccesses
	ecfg.Threshold.ConcurrencyLimit = c.Concurrency
	ecfg.PassScore = c.PassScore
	return ecfg
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var cfg config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		clog.FatalContextf(ctx, "processing config: %v", err)
	}
	if cfg.MetricsPort != 0 {
		go serveMetrics(ctx, cfg.MetricsPort)
	}

	c, err := judge.LoadCase(cfg.Case)
	if err != nil {
		clog.FatalContextf(ctx, "loading case: %v", err)
	}
	if cfg.Judge != "" {
		c.LLMJudge = cfg.Judge
	}
	if c.LLMJudge == "" {
		clog.FatalContextf(ctx, "no judge: set llm_judge in the case or EVAL_JUDGE")
	}
	answer, err := os.ReadFile(cfg.Answer)
	if err != nil {
		clog.FatalContextf(ctx, "reading answer: %v", err)
	}

	j, err := judge.Open(ctx, c.LLMJudge, cfg.ProjectID, cfg.Region)
	if err != nil {
		clog.FatalContextf(ctx, "creating judge %s: %v", c.LLMJudge, err)
	}
	clog.InfoContextf(ctx, "Judging %d checkpoints with %s", len(c.Checkpoints), c.LLMJudge)

	score, tree, err := evaluate(ctx, j, c, string(answer), cfg.evaluate())
	if err != nil {
		clog.FatalContextf(ctx, "evaluating: %v", err)
	}

	out, _ := report.Simple(tree, cfg.PassScore)
	fmt.Println(out)
	fmt.Printf("Score: %d/%d\n", score.Obtained, score.Max)

	if err := writeScore(cfg.Output, score); err != nil {
		clog.FatalContextf(ctx, "writing results: %v", err)
	}
	clog.InfoContextf(ctx, "Wrote results to %s", cfg.Output)
}

// evaluate scores answer and collects every judgement in a tree keyed by
// checkpoint.
func evaluate(ctx context.Context, j judge.Interface, c *judge.Case, answer string, ecfg judge.EvaluateConfig) (*judge.Score, *evals.NamespacedObserver[*evals.ResultCollector], error) {
	tree := evals.NewNamespacedObserver(func(name string) *evals.ResultCollector {
		return evals.NewResultCollector(evals.NewLogObserver(ctx, name))
	})
	ecfg.ObserverFor = func(idx int, criterion string) evals.Observer {
		return tree.Child(namespace(idx, criterion))
	}
	score, err := judge.Evaluate(ctx, j, c, answer, ecfg)
	return score, tree, err
}

// namespace turns a checkpoint into a single tree node name. The 1-based
// index keeps criteria that only differ after the cut apart.
func namespace(idx int, criterion string) string {
	name := strings.Join(strings.Fields(strings.ReplaceAll(criterion, "/", " ")), " ")
	if r := []rune(name); len(r) > 60 {
		name = string(r[:57]) + "..."
	}
	return fmt.Sprintf("%d. %s", idx+1, name)
}

func writeScore(path string, score *judge.Score) error {
	data, err := json.MarshalIndent(score, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
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
