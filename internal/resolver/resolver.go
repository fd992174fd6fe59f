// Package resolver turns an import specifier encountered inside a script
// module into a concrete, policy-contained file on disk (C3).
package resolver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sencbuild/senc/internal/manifest"
	"github.com/sencbuild/senc/internal/pathpolicy"
)

// Kind classifies the media of a resolved module.
type Kind int

const (
	KindJS Kind = iota
	KindTS
	KindJSON
	KindYAML
)

func (k Kind) String() string {
	switch k {
	case KindJS:
		return "js"
	case KindTS:
		return "ts"
	case KindJSON:
		return "json"
	case KindYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// Resolved is an absolute, canonical, project-root-contained module path
// plus its media kind.
type Resolved struct {
	Path string
	Kind Kind
}

// Attributes are the import-attribute clause (`with { ... }` / `assert {
// ... }`) attached to the import that triggered resolution, keyed by
// attribute name.
type Attributes map[string]string

var (
	// ErrSpecifierNotFound reports that no candidate file existed for a
	// specifier after extension probing.
	ErrSpecifierNotFound = errors.New("specifier not found")
	// ErrJSONWithoutAttribute reports a JSON resolution missing the
	// required `type: "json"` import attribute.
	ErrJSONWithoutAttribute = errors.New("JSON import requires a type: \"json\" import attribute")
	// ErrPackageMissingModule reports a bare specifier resolving to a
	// package directory whose manifest has no module entry.
	ErrPackageMissingModule = errors.New("package has no module entry")
)

var candidateExtensions = []string{".ts", ".js", ".json"}

// Resolver resolves import specifiers under a single project root.
type Resolver struct {
	policy *pathpolicy.Policy
}

// New builds a Resolver scoped to policy's project root.
func New(policy *pathpolicy.Policy) *Resolver {
	return &Resolver{policy: policy}
}

// Resolve resolves specifier as imported from a module located in
// importerDir (an absolute directory path already known to be contained).
func (r *Resolver) Resolve(importerDir, specifier string, attrs Attributes) (Resolved, error) {
	var (
		basePath string
		err      error
	)

	switch classify(specifier) {
	case specifierRelative:
		basePath = filepath.Join(importerDir, specifier)
	case specifierAbsolute:
		basePath = specifier
	case specifierBare:
		basePath, err = r.resolveBare(importerDir, specifier)
		if err != nil {
			return Resolved{}, err
		}
	}

	resolved, err := r.probe(basePath)
	if err != nil {
		return Resolved{}, fmt.Errorf("resolve %q from %s: %w", specifier, importerDir, err)
	}

	if resolved.Kind == KindJSON && attrs["type"] != "json" {
		return Resolved{}, fmt.Errorf("resolve %q from %s: %w", specifier, importerDir, ErrJSONWithoutAttribute)
	}

	canonical, err := r.policy.Canonicalize(resolved.Path)
	if err != nil {
		return Resolved{}, fmt.Errorf("resolve %q from %s: %w", specifier, importerDir, err)
	}
	if err := r.policy.AssertContained(canonical); err != nil {
		return Resolved{}, fmt.Errorf("resolve %q from %s: %w", specifier, importerDir, err)
	}

	return Resolved{Path: canonical, Kind: resolved.Kind}, nil
}

type specifierClass int

const (
	specifierRelative specifierClass = iota
	specifierAbsolute
	specifierBare
)

func classify(specifier string) specifierClass {
	switch {
	case strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../"):
		return specifierRelative
	case filepath.IsAbs(specifier):
		return specifierAbsolute
	default:
		return specifierBare
	}
}

// resolveBare walks upward from importerDir looking for a node_modules
// directory containing the named package, then returns the path the
// extension prober should start from: either the package's subpath (when
// the specifier carries one) or its manifest's module entry.
func (r *Resolver) resolveBare(importerDir, specifier string) (string, error) {
	pkgName, subpath := splitBareSpecifier(specifier)

	packageDir, found, err := r.findPackageDir(importerDir, pkgName)
	if err != nil {
		return "", err
	}
	if !found {
		return "", fmt.Errorf("%w: package %q not found in any node_modules", ErrSpecifierNotFound, pkgName)
	}

	m, err := manifest.Load(r.policy, packageDir)
	if err != nil {
		if errors.Is(err, manifest.ErrMissingModuleEntry) {
			return "", fmt.Errorf("%w: %v", ErrPackageMissingModule, err)
		}
		return "", err
	}

	if subpath != "" {
		return filepath.Join(packageDir, subpath), nil
	}
	return filepath.Join(packageDir, m.Module), nil
}

// splitBareSpecifier separates a package name (including an optional
// @scope/ prefix) from any subpath that follows it.
func splitBareSpecifier(specifier string) (pkgName, subpath string) {
	parts := strings.Split(specifier, "/")
	if strings.HasPrefix(specifier, "@") && len(parts) >= 2 {
		pkgName = strings.Join(parts[:2], "/")
		if len(parts) > 2 {
			subpath = strings.Join(parts[2:], "/")
		}
		return pkgName, subpath
	}
	pkgName = parts[0]
	if len(parts) > 1 {
		subpath = strings.Join(parts[1:], "/")
	}
	return pkgName, subpath
}

func (r *Resolver) findPackageDir(fromDir, pkgName string) (string, bool, error) {
	dir := fromDir
	for {
		candidate := filepath.Join(dir, "node_modules", filepath.FromSlash(pkgName))
		info, err := os.Stat(candidate)
		if err == nil && info.IsDir() {
			return candidate, true, nil
		}
		if err != nil && !os.IsNotExist(err) {
			return "", false, err
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// probe applies the exact-path / extension / index-file search order of
// spec §4.3 step 1 to basePath.
func (r *Resolver) probe(basePath string) (Resolved, error) {
	if info, err := os.Stat(basePath); err == nil && !info.IsDir() {
		return Resolved{Path: basePath, Kind: kindOf(basePath)}, nil
	}

	for _, ext := range candidateExtensions {
		candidate := basePath + ext
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return Resolved{Path: candidate, Kind: kindOf(candidate)}, nil
		}
	}

	if info, err := os.Stat(basePath); err == nil && info.IsDir() {
		for _, name := range []string{"index.ts", "index.js"} {
			candidate := filepath.Join(basePath, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return Resolved{Path: candidate, Kind: kindOf(candidate)}, nil
			}
		}
	}

	return Resolved{}, fmt.Errorf("%w: %s", ErrSpecifierNotFound, basePath)
}

func kindOf(path string) Kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts", ".tsx", ".mts", ".cts":
		return KindTS
	case ".json":
		return KindJSON
	case ".yaml", ".yml":
		return KindYAML
	default:
		return KindJS
	}
}
