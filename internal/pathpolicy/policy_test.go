package pathpolicy

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadFileReadsInsideRoot(t *testing.T) {
	rootDir := t.TempDir()
	targetPath := filepath.Join(rootDir, "nested", "file.txt")
	if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
		t.Fatalf("create parent dir: %v", err)
	}
	if err := os.WriteFile(targetPath, []byte("hello"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	policy, err := New(rootDir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	data, err := policy.ReadFile(targetPath)
	if err != nil {
		t.Fatalf("ReadFile returned error: %v", err)
	}
	if got := string(data); got != "hello" {
		t.Fatalf("unexpected content: got %q", got)
	}
}

func TestReadFileRejectsPathTraversalOutsideRoot(t *testing.T) {
	parentDir := t.TempDir()
	rootDir := filepath.Join(parentDir, "root")
	if err := os.MkdirAll(rootDir, 0o755); err != nil {
		t.Fatalf("create root dir: %v", err)
	}
	outsidePath := filepath.Join(parentDir, "secret.txt")
	if err := os.WriteFile(outsidePath, []byte("secret"), 0o600); err != nil {
		t.Fatalf("write outside file: %v", err)
	}

	policy, err := New(rootDir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = policy.ReadFile(outsidePath)
	if err == nil {
		t.Fatal("expected error for outside path, got nil")
	}
	if !strings.Contains(err.Error(), "escapes project root") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestReadFileRejectsTraversalViaDotDot(t *testing.T) {
	parentDir := t.TempDir()
	rootDir := filepath.Join(parentDir, "root")
	if err := os.MkdirAll(rootDir, 0o755); err != nil {
		t.Fatalf("create root dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(parentDir, "secret.txt"), []byte("s"), 0o600); err != nil {
		t.Fatalf("write outside file: %v", err)
	}

	policy, err := New(rootDir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = policy.ReadFile(filepath.Join(rootDir, "..", "secret.txt"))
	if err == nil {
		t.Fatal("expected error for traversal path")
	}
}

func TestEnsureDirCreatesUnderRoot(t *testing.T) {
	rootDir := t.TempDir()
	policy, err := New(rootDir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	created, err := policy.EnsureDir(filepath.Join(rootDir, "a", "b", "c"))
	if err != nil {
		t.Fatalf("EnsureDir: %v", err)
	}
	info, err := os.Stat(created)
	if err != nil || !info.IsDir() {
		t.Fatalf("expected directory at %s", created)
	}
}

func TestEnsureDirRejectsEscape(t *testing.T) {
	parentDir := t.TempDir()
	rootDir := filepath.Join(parentDir, "root")
	if err := os.MkdirAll(rootDir, 0o755); err != nil {
		t.Fatalf("create root dir: %v", err)
	}
	policy, err := New(rootDir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = policy.EnsureDir(filepath.Join(parentDir, "outside"))
	if err == nil {
		t.Fatal("expected error for escape, got nil")
	}
}

func TestNewRejectsNonDirectory(t *testing.T) {
	rootDir := t.TempDir()
	rootFile := filepath.Join(rootDir, "root-file")
	if err := os.WriteFile(rootFile, []byte("not-a-dir"), 0o600); err != nil {
		t.Fatalf("write root file: %v", err)
	}

	if _, err := New(rootFile); err == nil {
		t.Fatal("expected error when root is not a directory")
	}
}
