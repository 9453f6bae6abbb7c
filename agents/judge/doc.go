/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package judge scores answers with an LLM acting as a judge.

A judge receives a Request naming a mode, the answer and one criterion,
and returns a Judgement with a score, its reasoning and suggestions.

# Modes

  - GoldenMode compares the answer to a reference answer, 0.0 to 1.0.
  - BenchmarkMode compares two candidates, -1.0 to 1.0.
  - StandaloneMode judges the answer on its own, 0.0 to 1.0.

# Judges

NewClaude forces the model to call a submit_judgement tool whose
parameters are the Judgement schema. NewGemini and NewOpenAI constrain the
response to that schema. NewVertex serves Claude and Gemini models through
Vertex AI, and Open resolves provider-qualified names such as
"openai/gpt-4.1". Every call is recorded as an agenttrace trace and its
token usage is counted by the metrics package.

# Cases

A Case lists the checkpoints an answer is scored on:

	llm_judge: openai/gpt-4.1
	checkpoints:
	  - criteria: The agent is a single Go file
	    points: 2
	  - criteria: Feed fetch errors are handled

Evaluate judges every checkpoint in parallel. LLM judges are noisy, so
each checkpoint runs under the threshold harness and earns its points only
when enough judgements reach the pass score:

	c, err := judge.LoadCase("case.yaml")
	j, err := judge.Open(ctx, c.LLMJudge, "", "us-central1")
	score, err := judge.Evaluate(ctx, j, c, answer, judge.DefaultEvaluateConfig())
	fmt.Printf("%d/%d\n", score.Obtained, score.Max)

# Evals

NewGoldenEval and NewStandaloneEval turn a judge into an evals check on
agent traces. ValidScore, HasReasoning, CheckMode and ScoreRange check the
judge's own traces.
*/
package judge
