package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sencbuild/senc/internal/hostops"
)

func TestLoadReturnsDefaultsWhenConfigAbsent(t *testing.T) {
	v, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if v != Defaults() {
		t.Fatalf("got %+v, want %+v", v, Defaults())
	}
}

func TestLoadAppliesOverridesFromFile(t *testing.T) {
	root := t.TempDir()
	content := "output_dir = \"dist\"\nloglevel = \"debug\"\n"
	if err := os.WriteFile(filepath.Join(root, fileName), []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	v, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if v.OutputDir != "dist" {
		t.Fatalf("OutputDir = %q, want dist", v.OutputDir)
	}
	if v.LogLevel != hostops.LevelDebug {
		t.Fatalf("LogLevel = %v, want debug", v.LogLevel)
	}
}

func TestLoadRejectsUnknownLogLevel(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, fileName), []byte("loglevel = \"verbose\"\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(root); err == nil {
		t.Fatal("expected error for unknown log level")
	}
}
