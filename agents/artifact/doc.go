/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package artifact checks and stores the Go files an agent generates.
//
// ValidateGoSource reports syntax errors and UnusedDeclarations the locals
// the compiler would reject. Repair tidies imports with Tidy and feeds the
// remaining problems back to a Fixer until the file is clean. Sandbox is the
// directory generated files are written to, and Tools exposes it to a model
// as tool calls.
package artifact
