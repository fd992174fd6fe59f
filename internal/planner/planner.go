// Package planner implements the output planning algorithm (C7): turning
// an entrypoint's artifacts into a list of absolute output paths and
// serialised bytes, applying the defaulting rules, schema validation,
// and the within-entrypoint collision check.
package planner

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sencbuild/senc/internal/artifact"
	"github.com/sencbuild/senc/internal/hostops"
	"github.com/sencbuild/senc/internal/pathpolicy"
	"github.com/sencbuild/senc/internal/renderer"
)

// ErrConflictingOutputDirectives reports that an artifact set both
// out_path and out_ext.
var ErrConflictingOutputDirectives = errors.New("out_path and out_ext are mutually exclusive")

// ErrDuplicateOutputPath reports that two artifacts from the same
// entrypoint resolved to the same output path.
var ErrDuplicateOutputPath = errors.New("duplicate output path within entrypoint")

// ValidationError reports schema violations for one artifact.
type ValidationError struct {
	OutputPath string
	Violations []hostops.Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s: %s", v.Field, v.Description))
	}
	return fmt.Sprintf("schema validation failed for %s: %s", e.OutputPath, strings.Join(parts, "; "))
}

// PlannedFile is one entry of a render plan: an absolute, policy-
// contained output path paired with its serialised bytes.
type PlannedFile struct {
	AbsPath string
	Bytes   []byte
}

var sentinelSuffixes = []string{".sen.ts", ".sen.js"}

// DefaultOutputPath strips an entrypoint's sentinel suffix and returns
// the relative path its default artifact would be written to, given
// ext (including the leading dot).
func DefaultOutputPath(entrypointRelPath, ext string) string {
	return stripSentinel(entrypointRelPath) + ext
}

func stripSentinel(relPath string) string {
	for _, suffix := range sentinelSuffixes {
		if strings.HasSuffix(relPath, suffix) {
			return strings.TrimSuffix(relPath, suffix)
		}
	}
	return strings.TrimSuffix(relPath, filepath.Ext(relPath))
}

// Plan computes the render plan for one entrypoint's artifacts.
// entrypointRelPath is the entrypoint's path relative to the input
// root (e.g. "widgets/thing.sen.ts"); entrypointDir is its absolute
// directory, used to resolve schema_path. outputRoot is the absolute,
// policy-contained output directory.
func Plan(policy *pathpolicy.Policy, outputRoot, entrypointRelPath, entrypointDir string, artifacts artifact.List) ([]PlannedFile, error) {
	seen := make(map[string]bool, len(artifacts))
	plans := make([]PlannedFile, 0, len(artifacts))

	for i, a := range artifacts {
		relOutPath, kind, err := effectivePlacement(a, entrypointRelPath)
		if err != nil {
			return nil, fmt.Errorf("artifact %d: %w", i, err)
		}

		if a.SchemaPath != nil {
			if err := validateArtifact(policy, entrypointDir, relOutPath, a); err != nil {
				return nil, err
			}
		}

		prefix := ""
		if a.OutPrefix != nil {
			prefix = *a.OutPrefix
		}
		bytes, err := renderer.Render(kind, a.Data, prefix)
		if err != nil {
			return nil, fmt.Errorf("artifact %d (%s): %w", i, relOutPath, err)
		}

		absPath := filepath.Join(outputRoot, filepath.FromSlash(relOutPath))
		canonical, err := policy.CanonicalizeOutput(absPath)
		if err != nil {
			return nil, fmt.Errorf("artifact %d (%s): %w", i, relOutPath, err)
		}
		if err := policy.AssertContained(canonical); err != nil {
			return nil, fmt.Errorf("artifact %d (%s): %w", i, relOutPath, err)
		}

		if seen[canonical] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateOutputPath, relOutPath)
		}
		seen[canonical] = true

		plans = append(plans, PlannedFile{AbsPath: canonical, Bytes: bytes})
	}

	return plans, nil
}

func effectivePlacement(a artifact.Artifact, entrypointRelPath string) (string, renderer.Kind, error) {
	if a.OutPath != nil && a.OutExt != nil {
		return "", 0, ErrConflictingOutputDirectives
	}

	switch {
	case a.OutPath != nil:
		return *a.OutPath, kindFor(a.OutType, *a.OutPath), nil
	case a.OutExt != nil:
		relPath := DefaultOutputPath(entrypointRelPath, *a.OutExt)
		return relPath, kindFor(a.OutType, relPath), nil
	default:
		relPath := DefaultOutputPath(entrypointRelPath, ".json")
		return relPath, renderer.KindJSON, nil
	}
}

func kindFor(outType *string, path string) renderer.Kind {
	if outType != nil {
		if *outType == "yaml" {
			return renderer.KindYAML
		}
		return renderer.KindJSON
	}
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yml" || ext == ".yaml" {
		return renderer.KindYAML
	}
	return renderer.KindJSON
}

func validateArtifact(policy *pathpolicy.Policy, entrypointDir, relOutPath string, a artifact.Artifact) error {
	schemaAbsPath := filepath.Join(entrypointDir, filepath.FromSlash(*a.SchemaPath))
	schemaBytes, err := policy.ReadFile(schemaAbsPath)
	if err != nil {
		return fmt.Errorf("load schema for %s: %w", relOutPath, err)
	}

	violations, err := hostops.ValidateAgainstSchema(schemaBytes, a.Data)
	if err != nil {
		return fmt.Errorf("validate schema for %s: %w", relOutPath, err)
	}
	if len(violations) > 0 {
		return &ValidationError{OutputPath: relOutPath, Violations: violations}
	}
	return nil
}
