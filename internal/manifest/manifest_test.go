package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sencbuild/senc/internal/pathpolicy"
)

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, fileName), []byte(content), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
}

func TestLoadReturnsNameAndModule(t *testing.T) {
	root := t.TempDir()
	pkgDir := filepath.Join(root, "node_modules", "lodash-es")
	writeManifest(t, pkgDir, `{"name":"lodash-es","module":"lodash.js","exports":{".":"./lodash.js"}}`)

	policy, err := pathpolicy.New(root)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	m, err := Load(policy, pkgDir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Name != "lodash-es" || m.Module != "lodash.js" {
		t.Fatalf("unexpected manifest: %+v", m)
	}
}

func TestLoadRejectsMissingModuleField(t *testing.T) {
	root := t.TempDir()
	pkgDir := filepath.Join(root, "node_modules", "no-module")
	writeManifest(t, pkgDir, `{"name":"no-module"}`)

	policy, err := pathpolicy.New(root)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = Load(policy, pkgDir)
	if !errors.Is(err, ErrMissingModuleEntry) {
		t.Fatalf("expected ErrMissingModuleEntry, got %v", err)
	}
}

func TestLoadRejectsManifestOutsideRoot(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "root")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("mkdir root: %v", err)
	}
	outside := filepath.Join(parent, "node_modules", "evil")
	writeManifest(t, outside, `{"name":"evil","module":"index.js"}`)

	policy, err := pathpolicy.New(root)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := Load(policy, outside); err == nil {
		t.Fatal("expected error for manifest outside root")
	}
}
