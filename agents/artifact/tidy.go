/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package artifact

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"strings"

	"golang.org/x/tools/imports"
)

// Tidy rewrites a parsing Go file the way goimports does: unused imports are
// dropped, missing ones added and the result gofmt-formatted.
func Tidy(name string, src []byte) ([]byte, error) {
	out, err := imports.Process(name, src, &imports.Options{
		Comments:  true,
		TabIndent: true,
		TabWidth:  8,
	})
	if err != nil {
		return nil, fmt.Errorf("tidying %s: %w", name, err)
	}
	return out, nil
}

// UnusedDeclarations type-checks src on its own and returns the local
// declarations that are never used, which the compiler rejects. Imports are
// not resolved, so only problems local to the file are reported.
func UnusedDeclarations(name string, src []byte) ([]string, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, name, src, parser.SkipObjectResolution)
	if err != nil {
		return nil, err
	}

	var unused []string
	conf := types.Config{
		Importer:    unresolved{},
		FakeImportC: true,
		Error: func(err error) {
			var terr types.Error
			if errors.As(err, &terr) && strings.Contains(terr.Msg, "declared and not used") {
				unused = append(unused, terr.Error())
			}
		},
	}
	// Errors are collected by conf.Error.
	_, _ = conf.Check(f.Name.Name, fset, []*ast.File{f}, nil)
	return unused, nil
}

type unresolved struct{}

func (unresolved) Import(path string) (*types.Package, error) {
	return nil, fmt.Errorf("import %q not resolved", path)
}

// check validates src and returns it tidied. A file that does not parse,
// or that still has unused declarations once tidied, fails with a
// *SyntaxError; in the latter case the tidied source is returned with it.
func check(name string, src []byte) ([]byte, error) {
	if err := ValidateGoSource(name, src); err != nil {
		return nil, err
	}
	tidied, err := Tidy(name, src)
	if err != nil {
		return nil, err
	}
	unused, err := UnusedDeclarations(name, tidied)
	if err != nil {
		return nil, err
	}
	if len(unused) > 0 {
		return tidied, &SyntaxError{Name: name, Errors: unused}
	}
	return tidied, nil
}
