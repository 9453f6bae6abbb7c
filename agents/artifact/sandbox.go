/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package artifact

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Sandbox is a temporary directory generated artifacts are written to.
// Paths are relative to the sandbox and may not escape it.
type Sandbox struct {
	root string
}

// NewSandbox creates an empty sandbox directory named after prefix.
func NewSandbox(prefix string) (*Sandbox, error) {
	root, err := os.MkdirTemp("", prefix)
	if err != nil {
		return nil, fmt.Errorf("creating sandbox: %w", err)
	}
	return &Sandbox{root: root}, nil
}

// Root returns the sandbox directory.
func (s *Sandbox) Root() string { return s.root }

// Path resolves rel inside the sandbox.
func (s *Sandbox) Path(rel string) (string, error) {
	full := filepath.Join(s.root, filepath.Clean(rel))
	r, err := filepath.Rel(s.root, full)
	if err != nil {
		return "", fmt.Errorf("path %q: %w", rel, err)
	}
	if r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes sandbox", rel)
	}
	return full, nil
}

// WriteFile writes data to rel, creating parent directories.
func (s *Sandbox) WriteFile(rel string, data []byte) error {
	full, err := s.Path(rel)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	return os.WriteFile(full, data, 0o644)
}

// ReadFile reads rel.
func (s *Sandbox) ReadFile(rel string) ([]byte, error) {
	full, err := s.Path(rel)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(full)
}

// Files lists the files in the sandbox as slash-separated relative paths,
// in lexical order.
func (s *Sandbox) Files() ([]string, error) {
	var files []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	return files, err
}

// Close removes the sandbox and everything in it.
func (s *Sandbox) Close() error {
	return os.RemoveAll(s.root)
}
