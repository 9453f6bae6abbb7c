/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package report

import (
	"chainguard.dev/agentfactory/agents/evals"
)

// Generator renders an observer tree and reports whether any evaluation fell
// below threshold.
type Generator func(obs *evals.NamespacedObserver[*evals.ResultCollector], threshold float64) (string, bool)

var _ Generator = Simple
