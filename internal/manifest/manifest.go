// Package manifest reads the subset of a package descriptor (package.json)
// the module resolver is allowed to consult: the package's primary name and
// its ESM entry point. Every other field, including "exports", is ignored.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/sencbuild/senc/internal/pathpolicy"
)

// ErrMissingModuleEntry is returned when a package descriptor has no
// "module" field; the bare-specifier resolver cannot complete without one.
var ErrMissingModuleEntry = errors.New("package manifest has no module entry")

const fileName = "package.json"

// Manifest is the resolver-relevant subset of a package descriptor.
type Manifest struct {
	Name   string
	Module string
}

type rawManifest struct {
	Name   string `json:"name"`
	Module string `json:"module"`
}

// Load reads package.json from packageDir, subject to policy containment,
// and returns its name and module fields. An absent module field is
// reported as ErrMissingModuleEntry rather than treated as "no manifest".
func Load(policy *pathpolicy.Policy, packageDir string) (Manifest, error) {
	path := filepath.Join(packageDir, fileName)
	data, err := policy.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read package manifest %s: %w", path, err)
	}

	var raw rawManifest
	if err := json.Unmarshal(data, &raw); err != nil {
		return Manifest{}, fmt.Errorf("parse package manifest %s: %w", path, err)
	}
	if raw.Module == "" {
		return Manifest{}, fmt.Errorf("%s: %w", path, ErrMissingModuleEntry)
	}

	return Manifest{Name: raw.Name, Module: raw.Module}, nil
}
