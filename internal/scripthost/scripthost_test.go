package scripthost

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sencbuild/senc/internal/hostops"
	"github.com/sencbuild/senc/internal/pathpolicy"
	"github.com/sencbuild/senc/internal/resolver"
	"github.com/sencbuild/senc/internal/testutil"
)

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	testutil.MustWriteFile(t, path, content)
}

func newHost(t *testing.T, root string) *Host {
	t.Helper()
	policy, err := pathpolicy.New(root)
	if err != nil {
		t.Fatalf("pathpolicy.New: %v", err)
	}
	res := resolver.New(policy)
	logger := hostops.NewLogger(hostops.LevelError)
	return New(policy, res, logger)
}

func TestRunSynchronousMainReturnsPlainObject(t *testing.T) {
	root := t.TempDir()
	entry := testutil.MustWriteEntrypoint(t, root, "entry.sen.ts", `
		export function main(): { id: number; msg: string } {
			return { id: 5, msg: "hello world" };
		}
	`)

	h := newHost(t, root)
	v, err := h.Run(context.Background(), "entry.sen.ts", entry)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	obj := v.ToObject(nil)
	if obj.Get("id").ToInteger() != 5 {
		t.Fatalf("id = %v, want 5", obj.Get("id"))
	}
}

func TestRunAwaitsAsyncMain(t *testing.T) {
	root := t.TempDir()
	entry := testutil.MustWriteEntrypoint(t, root, "entry.sen.js", `
		export async function main() {
			return { done: true };
		}
	`)

	h := newHost(t, root)
	v, err := h.Run(context.Background(), "entry.sen.js", entry)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !v.ToObject(nil).Get("done").ToBoolean() {
		t.Fatal("expected done: true")
	}
}

func TestRunResolvesRelativeImport(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "lib", "helper.ts"), `
		export function greet(name: string): string {
			return "hi " + name;
		}
	`)
	entry := filepath.Join(root, "entry.sen.ts")
	mustWrite(t, entry, `
		import { greet } from "./lib/helper";
		export function main() {
			return { greeting: greet("world") };
		}
	`)

	h := newHost(t, root)
	v, err := h.Run(context.Background(), "entry.sen.ts", entry)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if v.ToObject(nil).Get("greeting").String() != "hi world" {
		t.Fatalf("greeting = %v", v.ToObject(nil).Get("greeting"))
	}
}

func TestRunFailsOnEscapingImport(t *testing.T) {
	root := t.TempDir()
	parent := filepath.Dir(root)
	mustWrite(t, filepath.Join(parent, "secret.js"), "export const x = 1;")
	entry := filepath.Join(root, "entry.sen.js")
	mustWrite(t, entry, `
		import { x } from "../secret";
		export function main() { return { x: x }; }
	`)

	h := newHost(t, root)
	if _, err := h.Run(context.Background(), "entry.sen.js", entry); err == nil {
		t.Fatal("expected outside-project-root error")
	}
}

func TestRunThrownErrorCarriesSourceLocation(t *testing.T) {
	root := t.TempDir()
	entry := testutil.MustWriteEntrypoint(t, root, "entry.sen.js", `
		export function main() {
			throw new Error("boom");
		}
	`)

	h := newHost(t, root)
	_, err := h.Run(context.Background(), "entry.sen.js", entry)
	if err == nil {
		t.Fatal("expected a thrown error")
	}
	scriptErr, ok := err.(*ScriptError)
	if !ok {
		t.Fatalf("expected *ScriptError, got %T (%v)", err, err)
	}
	if scriptErr.Message == "" {
		t.Fatal("expected a non-empty message")
	}
	if scriptErr.File == "" || scriptErr.Line == 0 {
		t.Fatalf("expected a source location, got file=%q line=%d column=%d", scriptErr.File, scriptErr.Line, scriptErr.Column)
	}
}

func TestRunFailsWithoutMainExport(t *testing.T) {
	root := t.TempDir()
	entry := filepath.Join(root, "entry.sen.js")
	mustWrite(t, entry, `export function helper() { return 1; }`)

	h := newHost(t, root)
	if _, err := h.Run(context.Background(), "entry.sen.js", entry); err == nil {
		t.Fatal("expected error for missing main export")
	}
}

func TestRunNoAmbientCapabilities(t *testing.T) {
	root := t.TempDir()
	entry := filepath.Join(root, "entry.sen.js")
	mustWrite(t, entry, `
		export function main() {
			return { hasFetch: typeof fetch !== "undefined", hasProcess: typeof process !== "undefined" };
		}
	`)

	h := newHost(t, root)
	v, err := h.Run(context.Background(), "entry.sen.js", entry)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	obj := v.ToObject(nil)
	if obj.Get("hasFetch").ToBoolean() || obj.Get("hasProcess").ToBoolean() {
		t.Fatal("expected no ambient fetch/process capability")
	}
}

func TestRunRejectsAlreadyCanceledContext(t *testing.T) {
	root := t.TempDir()
	entry := filepath.Join(root, "entry.sen.js")
	mustWrite(t, entry, `export function main() { return { ok: true }; }`)

	h := newHost(t, root)
	if _, err := h.Run(testutil.CanceledContext(), "entry.sen.js", entry); err == nil {
		t.Fatal("expected error for already-canceled context")
	}
}

func TestRunImportsJSONWithTypeAttribute(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "data.json"), `{"a":1}`)
	entry := filepath.Join(root, "entry.sen.js")
	mustWrite(t, entry, `
		import data from "./data.json" with { type: "json" };
		export function main() { return { a: data.a }; }
	`)

	h := newHost(t, root)
	v, err := h.Run(context.Background(), "entry.sen.js", entry)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if v.ToObject(nil).Get("a").ToInteger() != 1 {
		t.Fatalf("a = %v, want 1", v.ToObject(nil).Get("a"))
	}
}
