// Package pathpolicy canonicalises paths and enforces that every
// script-reachable path stays under a single project root.
package pathpolicy

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot is returned whenever a canonicalised path is not the root
// itself or one of its descendants.
var ErrOutsideRoot = errors.New("path escapes project root")

// Policy holds a canonicalised project root and exposes the two operations
// every boundary that accepts a path from script or configuration must call:
// Canonicalize and AssertContained.
type Policy struct {
	root string
}

// New canonicalises rootDir and returns a Policy scoped to it. rootDir must
// already exist.
func New(rootDir string) (*Policy, error) {
	abs, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("resolve project root: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("resolve project root: %w", err)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return nil, fmt.Errorf("resolve project root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project root is not a directory: %s", resolved)
	}
	return &Policy{root: filepath.Clean(resolved)}, nil
}

// Root returns the canonical, absolute project root.
func (p *Policy) Root() string {
	return p.root
}

// Canonicalize resolves symlinks and normalises separators for an existing
// path. The result is not guaranteed to be contained under the root; callers
// that need containment must also call AssertContained.
func (p *Policy) Canonicalize(path string) (string, error) {
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(p.root, abs)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("canonicalize path: %w", err)
	}
	return filepath.Clean(resolved), nil
}

// CanonicalizeOutput canonicalises a path that may not exist yet (a render
// target). It walks up to the nearest existing ancestor to resolve symlinks
// there, then rejoins the non-existent suffix lexically.
func (p *Policy) CanonicalizeOutput(path string) (string, error) {
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(p.root, abs)
	}
	abs = filepath.Clean(abs)

	existing := abs
	var suffix []string
	for {
		if _, err := os.Stat(existing); err == nil {
			break
		} else if !os.IsNotExist(err) {
			return "", fmt.Errorf("canonicalize output path: %w", err)
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			break
		}
		suffix = append([]string{filepath.Base(existing)}, suffix...)
		existing = parent
	}

	resolved, err := filepath.EvalSymlinks(existing)
	if err != nil {
		return "", fmt.Errorf("canonicalize output path: %w", err)
	}
	for _, part := range suffix {
		resolved = filepath.Join(resolved, part)
	}
	return filepath.Clean(resolved), nil
}

// AssertContained fails unless canonicalPath is the root or a descendant of
// it. canonicalPath must already be canonical (see Canonicalize).
func (p *Policy) AssertContained(canonicalPath string) error {
	if canonicalPath == p.root {
		return nil
	}
	rel, err := filepath.Rel(p.root, canonicalPath)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrOutsideRoot, canonicalPath)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) || filepath.IsAbs(rel) {
		return fmt.Errorf("%w: %s", ErrOutsideRoot, canonicalPath)
	}
	return nil
}

// ReadFile canonicalises path, asserts containment, and reads it. This is
// the only way script-driven file reads (imports, schemas, senc.import_*)
// should reach the filesystem.
func (p *Policy) ReadFile(path string) ([]byte, error) {
	canonical, err := p.Canonicalize(path)
	if err != nil {
		return nil, err
	}
	if err := p.AssertContained(canonical); err != nil {
		return nil, err
	}

	parent := filepath.Dir(canonical)
	root, err := os.OpenRoot(parent)
	if err != nil {
		return nil, fmt.Errorf("open parent root: %w", err)
	}
	defer root.Close()

	file, err := root.Open(filepath.Base(canonical))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return io.ReadAll(file)
}

// EnsureDir canonicalises dir as an output path, asserts containment, and
// creates it (and any parents) if missing.
func (p *Policy) EnsureDir(dir string) (string, error) {
	canonical, err := p.CanonicalizeOutput(dir)
	if err != nil {
		return "", err
	}
	if err := p.AssertContained(canonical); err != nil {
		return "", err
	}
	if err := os.MkdirAll(canonical, 0o750); err != nil {
		return "", fmt.Errorf("create directory %s: %w", canonical, err)
	}
	return canonical, nil
}

// WriteFile canonicalises path as an output path, asserts containment,
// creates its parent directories, and writes data. path is expected to
// already be canonical and contained (the planner's planning step
// checks this); WriteFile re-asserts it at the point of the actual
// filesystem boundary crossing.
func (p *Policy) WriteFile(path string, data []byte) error {
	canonical, err := p.CanonicalizeOutput(path)
	if err != nil {
		return err
	}
	if err := p.AssertContained(canonical); err != nil {
		return err
	}
	if _, err := p.EnsureDir(filepath.Dir(canonical)); err != nil {
		return err
	}
	if err := os.WriteFile(canonical, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", canonical, err)
	}
	return nil
}
