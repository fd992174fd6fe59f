package mainlocator

import (
	"errors"
	"testing"
)

func TestFindLocatesNamedFunctionExport(t *testing.T) {
	src := []byte("export function main() {\n  return { ok: true };\n}\n")
	loc, err := Find(src, "entry.sen.js")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if loc.Line != 1 {
		t.Fatalf("Line = %d, want 1", loc.Line)
	}
}

func TestFindLocatesConstExport(t *testing.T) {
	src := []byte("export const main = () => ({ ok: true });\n")
	if _, err := Find(src, "entry.sen.ts"); err != nil {
		t.Fatalf("Find: %v", err)
	}
}

func TestFindLocatesRenamedExportClause(t *testing.T) {
	src := []byte("function build() { return {}; }\nexport { build as main };\n")
	loc, err := Find(src, "entry.sen.js")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if loc.Line != 2 {
		t.Fatalf("Line = %d, want 2", loc.Line)
	}
}

func TestFindRejectsMissingMainExport(t *testing.T) {
	src := []byte("export function helper() { return 1; }\n")
	_, err := Find(src, "entry.sen.js")
	if !errors.Is(err, ErrNoMainExport) {
		t.Fatalf("expected ErrNoMainExport, got %v", err)
	}
}

func TestFindIgnoresNonExportedMain(t *testing.T) {
	src := []byte("function main() { return 1; }\n")
	_, err := Find(src, "entry.sen.js")
	if !errors.Is(err, ErrNoMainExport) {
		t.Fatalf("expected ErrNoMainExport, got %v", err)
	}
}

func TestFindRejectsUnsupportedExtension(t *testing.T) {
	if _, err := Find([]byte("export function main() {}"), "entry.sen.txt"); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}
