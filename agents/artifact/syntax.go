/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package artifact

import (
	"errors"
	"fmt"
	"go/parser"
	"go/scanner"
	"go/token"
	"strings"
)

// SyntaxError lists the problems that keep a Go source file from compiling
// on its own: parse errors, or declarations that are never used.
type SyntaxError struct {
	Name string
	// Errors are positioned messages, such as "agent.go:3:1: expected '}'".
	Errors []string
}

func (e *SyntaxError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("%s: %s", e.Name, e.Errors[0])
	}
	return fmt.Sprintf("%s: %d errors:\n%s", e.Name, len(e.Errors), strings.Join(e.Errors, "\n"))
}

// ValidateGoSource parses src as the Go file name. It returns a
// *SyntaxError listing every error found.
func ValidateGoSource(name string, src []byte) error {
	_, err := parser.ParseFile(token.NewFileSet(), name, src, parser.AllErrors|parser.SkipObjectResolution)
	if err == nil {
		return nil
	}

	var list scanner.ErrorList
	if !errors.As(err, &list) {
		return &SyntaxError{Name: name, Errors: []string{err.Error()}}
	}
	serr := &SyntaxError{Name: name, Errors: make([]string, 0, len(list))}
	for _, e := range list {
		serr.Errors = append(serr.Errors, e.Error())
	}
	return serr
}
