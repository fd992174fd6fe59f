// Package config loads optional project-wide defaults from
// senc.config.toml at the project root. Everything it reads can be
// overridden by CLI flags; nothing in it reaches the network.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/sencbuild/senc/internal/hostops"
)

const fileName = "senc.config.toml"

// Values are the resolved project defaults.
type Values struct {
	OutputDir string
	LogLevel  hostops.Level
}

// Overrides are the optional fields a senc.config.toml may set. A nil
// field leaves the corresponding default untouched.
type Overrides struct {
	OutputDir *string `toml:"output_dir"`
	LogLevel  *string `toml:"loglevel"`
}

// Defaults returns the built-in project defaults used when no config
// file is present or a field is left unset.
func Defaults() Values {
	return Values{OutputDir: "out", LogLevel: hostops.LevelInfo}
}

// Apply layers o over base, returning the resolved Values.
func (o Overrides) Apply(base Values) (Values, error) {
	resolved := base
	if o.OutputDir != nil {
		resolved.OutputDir = *o.OutputDir
	}
	if o.LogLevel != nil {
		level, err := hostops.ParseLevel(*o.LogLevel)
		if err != nil {
			return Values{}, fmt.Errorf("%s: %w", fileName, err)
		}
		resolved.LogLevel = level
	}
	return resolved, nil
}

// Load reads senc.config.toml from projectRoot if present, layers it
// over Defaults(), and returns the resolved Values. A missing config
// file is not an error.
func Load(projectRoot string) (Values, error) {
	path := filepath.Join(projectRoot, fileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Defaults(), nil
		}
		return Values{}, fmt.Errorf("read %s: %w", path, err)
	}

	var overrides Overrides
	if err := toml.Unmarshal(data, &overrides); err != nil {
		return Values{}, fmt.Errorf("parse %s: %w", path, err)
	}

	return overrides.Apply(Defaults())
}
