package transpile

import (
	"strings"
	"testing"
)

func TestTransformStripsTypeAnnotations(t *testing.T) {
	src := `interface Point { x: number; y: number }
export function add(a: number, b: number): number {
  return a + b;
}`
	out, err := Transform([]byte(src), LoaderTS, "add.sen.ts")
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	code := string(out)
	if strings.Contains(code, "interface") || strings.Contains(code, ": number") {
		t.Fatalf("type syntax survived transpilation: %s", code)
	}
}

func TestTransformLowersExportToCommonJS(t *testing.T) {
	src := `export const main = () => ({ value: 1 });`
	out, err := Transform([]byte(src), LoaderJS, "main.sen.js")
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	code := string(out)
	if strings.Contains(code, "export const") {
		t.Fatalf("ESM export syntax survived transpilation: %s", code)
	}
	if !strings.Contains(code, "module.exports") && !strings.Contains(code, "__export") && !strings.Contains(code, "exports.main") {
		t.Fatalf("expected CommonJS export form, got: %s", code)
	}
}

func TestTransformLowersImportToRequire(t *testing.T) {
	src := `import { helper } from "./lib/helper";
export const main = () => helper();`
	out, err := Transform([]byte(src), LoaderJS, "main.sen.js")
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	code := string(out)
	if strings.Contains(code, "import {") {
		t.Fatalf("ESM import syntax survived transpilation: %s", code)
	}
	if !strings.Contains(code, "require(") {
		t.Fatalf("expected require() call, got: %s", code)
	}
}

func TestTransformIsPure(t *testing.T) {
	src := `export const main = () => ({ value: 1 });`
	first, err := Transform([]byte(src), LoaderJS, "main.sen.js")
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	second, err := Transform([]byte(src), LoaderJS, "main.sen.js")
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if string(first) != string(second) {
		t.Fatalf("Transform is not deterministic:\n%s\nvs\n%s", first, second)
	}
}

func TestTransformReportsSyntaxErrors(t *testing.T) {
	_, err := Transform([]byte("const x = ;"), LoaderJS, "broken.sen.js")
	if err == nil {
		t.Fatal("expected syntax error")
	}
}

func TestLoaderForExtension(t *testing.T) {
	cases := map[string]Loader{
		".ts":  LoaderTS,
		".mts": LoaderTS,
		".cts": LoaderTS,
		".tsx": LoaderTSX,
		".js":  LoaderJS,
		".mjs": LoaderJS,
	}
	for ext, want := range cases {
		if got := LoaderForExtension(ext); got != want {
			t.Errorf("LoaderForExtension(%q) = %v, want %v", ext, got, want)
		}
	}
}
