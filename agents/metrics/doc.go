/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package metrics records OpenTelemetry counters for model requests: prompt
// tokens, completion tokens and tool calls. Measurements are labelled with
// the model and, through GenerationAttributes, the workflow of the
// agenttrace.GenerationContext carried by the request context.
package metrics
