/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Checkpoint is one criterion of a Case and the points it is worth.
type Checkpoint struct {
	Criteria string `yaml:"criteria" json:"criteria"`
	// Points defaults to 1.
	Points int `yaml:"points,omitempty" json:"points,omitempty"`
}

// Case is an evaluation case: the judge to use and the checkpoints an
// answer is scored on. Cases are written in YAML; JSON cases parse too.
type Case struct {
	// LLMJudge names the judge model, see Open.
	LLMJudge string `yaml:"llm_judge" json:"llm_judge"`
	// Mode defaults to standalone, or golden when a reference answer is
	// given.
	Mode            JudgmentMode `yaml:"mode,omitempty" json:"mode,omitempty"`
	ReferenceAnswer string       `yaml:"reference_answer,omitempty" json:"reference_answer,omitempty"`
	Checkpoints     []Checkpoint `yaml:"checkpoints" json:"checkpoints"`
}

// LoadCase reads and parses the case at path.
func LoadCase(path string) (*Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading case: %w", err)
	}
	c, err := ParseCase(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// ParseCase parses a case, applies defaults and validates it.
func ParseCase(data []byte) (*Case, error) {
	var c Case
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing case: %w", err)
	}
	c.defaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Case) defaults() {
	if c.Mode == "" {
		c.Mode = StandaloneMode
		if c.ReferenceAnswer != "" {
			c.Mode = GoldenMode
		}
	}
	for i := range c.Checkpoints {
		if c.Checkpoints[i].Points == 0 {
			c.Checkpoints[i].Points = 1
		}
	}
}

// Validate checks that every checkpoint has criteria and positive points
// and that the reference answer fits the mode.
func (c *Case) Validate() error {
	if len(c.Checkpoints) == 0 {
		return errors.New("case has no checkpoints")
	}
	for i, cp := range c.Checkpoints {
		if cp.Criteria == "" {
			return fmt.Errorf("checkpoint %d: criteria is required", i+1)
		}
		if cp.Points < 0 {
			return fmt.Errorf("checkpoint %d: points must be positive, got %d", i+1, cp.Points)
		}
	}
	switch c.Mode {
	case GoldenMode, BenchmarkMode:
		if c.ReferenceAnswer == "" {
			return fmt.Errorf("reference_answer is required for %s mode", c.Mode)
		}
	case StandaloneMode:
		if c.ReferenceAnswer != "" {
			return errors.New("reference_answer must not be provided for standalone mode")
		}
	default:
		return fmt.Errorf("unsupported mode: %q", c.Mode)
	}
	return nil
}

// MaxScore returns the sum of the checkpoint points.
func (c *Case) MaxScore() int {
	var total int
	for _, cp := range c.Checkpoints {
		total += cp.Points
	}
	return total
}

func (c *Case) request(criterion, answer string) *Request {
	return &Request{
		Mode:            c.Mode,
		ReferenceAnswer: c.ReferenceAnswer,
		ActualAnswer:    answer,
		Criterion:       criterion,
	}
}
