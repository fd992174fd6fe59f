// Package scripthost instantiates one script engine per entrypoint,
// wires in the ops, prelude, and resolver, runs the entrypoint as a
// CommonJS module, and awaits the result of its exported main (C6).
package scripthost

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/eventloop"

	"github.com/sencbuild/senc/internal/hostops"
	"github.com/sencbuild/senc/internal/jsvalue"
	"github.com/sencbuild/senc/internal/pathpolicy"
	"github.com/sencbuild/senc/internal/prelude"
	"github.com/sencbuild/senc/internal/resolver"
	"github.com/sencbuild/senc/internal/transpile"
)

// ScriptError wraps an exception thrown inside the engine while a module
// is evaluated or main is called, with the entrypoint it came from and,
// when the engine could locate one, the offending source position. A
// rejection of the promise main returns is reported as a plain error,
// not as a ScriptError, and carries no source position.
type ScriptError struct {
	Entrypoint string
	File       string
	Line       int
	Column     int
	Message    string
}

func (e *ScriptError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("%s: %s", e.Entrypoint, e.Message)
	}
	return fmt.Sprintf("%s: %s:%d:%d: %s", e.Entrypoint, e.File, e.Line, e.Column, e.Message)
}

// Host runs entrypoints, each in its own isolated engine. A Host holds
// only immutable references, so one Host may serve many entrypoints,
// concurrently; every Run call builds and discards a fresh engine.
type Host struct {
	policy   *pathpolicy.Policy
	resolver *resolver.Resolver
	logger   *hostops.Logger
}

// New builds a Host scoped to policy's project root.
func New(policy *pathpolicy.Policy, res *resolver.Resolver, logger *hostops.Logger) *Host {
	return &Host{policy: policy, resolver: res, logger: logger}
}

type moduleRecord struct {
	exports *goja.Object
}

// Run instantiates a fresh engine, evaluates entrypointAbsPath as a
// CommonJS module, locates its exported main, invokes it, awaits the
// result if it is a promise, and returns the settled value. The engine
// is discarded when Run returns.
func (h *Host) Run(ctx context.Context, entrypointRelPath, entrypointAbsPath string) (goja.Value, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	loop := eventloop.NewEventLoop()
	modules := make(map[string]*moduleRecord)

	var result goja.Value
	var runErr error

	loop.Run(func(rt *goja.Runtime) {
		h.installNative(rt, entrypointRelPath)

		if _, err := rt.RunString(prelude.Source()); err != nil {
			runErr = fmt.Errorf("install prelude: %w", err)
			return
		}

		exports, err := h.loadModule(rt, modules, entrypointAbsPath)
		if err != nil {
			runErr = err
			return
		}

		mainVal := exports.Get("main")
		if mainVal == nil || goja.IsUndefined(mainVal) {
			runErr = fmt.Errorf("%s: exported main is undefined", entrypointAbsPath)
			return
		}
		mainFn, ok := goja.AssertFunction(mainVal)
		if !ok {
			runErr = fmt.Errorf("%s: exported main is not callable", entrypointAbsPath)
			return
		}

		retVal, callErr := mainFn(goja.Undefined())
		if callErr != nil {
			runErr = scriptError(entrypointRelPath, callErr)
			return
		}

		awaitResult(rt, retVal, func(settled goja.Value, awaitErr error) {
			result, runErr = settled, awaitErr
		})
	})

	if runErr != nil {
		return nil, runErr
	}
	return result, nil
}

// stackFrameLocation matches the "at ... file:line:col" / "at file:line:col"
// frames goja's own Exception.Error() writes from its captured call stack,
// independent of whether the thrown value was an Error object or not.
var stackFrameLocation = regexp.MustCompile(`at\s+(?:[^\s()]+\s+\()?([^\s():]+):(\d+):(\d+)\)?`)

func scriptError(entrypoint string, err error) *ScriptError {
	exc, ok := err.(*goja.Exception)
	if !ok {
		return &ScriptError{Entrypoint: entrypoint, Message: err.Error()}
	}

	se := &ScriptError{Entrypoint: entrypoint, Message: exc.Value().String()}
	if m := stackFrameLocation.FindStringSubmatch(exc.Error()); m != nil {
		se.File = m[1]
		se.Line, _ = strconv.Atoi(m[2])
		se.Column, _ = strconv.Atoi(m[3])
	}
	return se
}

// awaitResult settles v synchronously: if it is a thenable, it attaches
// fulfillment/rejection handlers (whose execution the surrounding
// eventloop.Run call drains before returning); otherwise v is already
// the final value.
func awaitResult(rt *goja.Runtime, v goja.Value, done func(goja.Value, error)) {
	obj, ok := v.(*goja.Object)
	if !ok {
		done(v, nil)
		return
	}
	thenFn, ok := goja.AssertFunction(obj.Get("then"))
	if !ok {
		done(v, nil)
		return
	}

	onFulfilled := rt.ToValue(func(call goja.FunctionCall) goja.Value {
		done(firstArg(call), nil)
		return goja.Undefined()
	})
	onRejected := rt.ToValue(func(call goja.FunctionCall) goja.Value {
		done(nil, fmt.Errorf("main() rejected: %s", firstArg(call).String()))
		return goja.Undefined()
	})

	if _, err := thenFn(obj, onFulfilled, onRejected); err != nil {
		done(nil, err)
	}
}

func firstArg(call goja.FunctionCall) goja.Value {
	if len(call.Arguments) == 0 {
		return goja.Undefined()
	}
	return call.Arguments[0]
}

// installNative wires the single native binding (__senc_native) the
// prelude script depends on, plus senc.import_json/import_yaml's
// underlying file reads.
func (h *Host) installNative(rt *goja.Runtime, entrypointRelPath string) {
	native := rt.NewObject()
	_ = native.Set("log", func(level, message string) {
		lvl, err := hostops.ParseLevel(level)
		if err != nil {
			lvl = hostops.LevelInfo
		}
		h.logger.Log(lvl, entrypointRelPath, message)
	})
	_ = native.Set("relPath", func(base, p string) (string, error) {
		return hostops.RelPath(base, p)
	})
	_ = native.Set("importJSON", func(absPath string) (goja.Value, error) {
		data, err := h.policy.ReadFile(absPath)
		if err != nil {
			return nil, err
		}
		parsed, err := jsvalue.ParseJSON(data)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", absPath, err)
		}
		return jsvalue.ToGoja(rt, parsed), nil
	})
	_ = native.Set("importYAML", func(absPath string) (goja.Value, error) {
		data, err := h.policy.ReadFile(absPath)
		if err != nil {
			return nil, err
		}
		parsed, err := jsvalue.ParseYAML(data)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", absPath, err)
		}
		return jsvalue.ToGoja(rt, parsed), nil
	})
	rt.Set("__senc_native", native)
}

// loadModule parses (JSON/YAML) or transpiles and evaluates the module
// at absPath, an already-resolved canonical path, caching it by that
// path so repeated requires (and import cycles) share one instance.
// Imports inside the module are resolved by the require function it is
// given.
func (h *Host) loadModule(rt *goja.Runtime, modules map[string]*moduleRecord, absPath string) (*goja.Object, error) {
	if rec, ok := modules[absPath]; ok {
		return rec.exports, nil
	}

	kind := resolver.KindJS
	switch filepath.Ext(absPath) {
	case ".ts", ".tsx", ".mts", ".cts":
		kind = resolver.KindTS
	case ".json":
		kind = resolver.KindJSON
	case ".yaml", ".yml":
		kind = resolver.KindYAML
	}

	if kind == resolver.KindJSON || kind == resolver.KindYAML {
		data, err := h.policy.ReadFile(absPath)
		if err != nil {
			return nil, err
		}
		parse := jsvalue.ParseJSON
		if kind == resolver.KindYAML {
			parse = jsvalue.ParseYAML
		}
		parsed, err := parse(data)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", absPath, err)
		}
		exports := rt.NewObject()
		_ = exports.Set("default", jsvalue.ToGoja(rt, parsed))
		// Marks the exports as an ES module so the transpiler's default-
		// import helper reads the "default" property instead of wrapping
		// the whole exports object as the default.
		_ = exports.Set("__esModule", true)
		modules[absPath] = &moduleRecord{exports: exports}
		return exports, nil
	}

	source, err := h.policy.ReadFile(absPath)
	if err != nil {
		return nil, err
	}

	loader := transpile.LoaderJS
	if kind == resolver.KindTS {
		loader = transpile.LoaderTS
	}
	transpiled, err := transpile.Transform(source, loader, absPath)
	if err != nil {
		return nil, fmt.Errorf("transpile %s: %w", absPath, err)
	}
	code := string(transpiled)

	exports := rt.NewObject()
	moduleObj := rt.NewObject()
	_ = moduleObj.Set("exports", exports)
	modules[absPath] = &moduleRecord{exports: exports}

	dir := filepath.Dir(absPath)
	attrs := scanImportAttributes(source)
	requireFn := func(specifier string) (goja.Value, error) {
		resolved, err := h.resolver.Resolve(dir, specifier, attrs[specifier])
		if err != nil {
			return nil, fmt.Errorf("require(%q) from %s: %w", specifier, absPath, err)
		}
		childExports, err := h.loadModule(rt, modules, resolved.Path)
		if err != nil {
			return nil, err
		}
		return childExports, nil
	}

	wrapperSrc := "(function(module, exports, require, __projectroot, __dirname, __filename) {\n" + code + "\n})"
	prog, err := goja.Compile(absPath, wrapperSrc, false)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", absPath, err)
	}
	wrapperVal, err := rt.RunProgram(prog)
	if err != nil {
		return nil, scriptError(absPath, err)
	}
	wrapperFn, ok := goja.AssertFunction(wrapperVal)
	if !ok {
		return nil, fmt.Errorf("compile %s: wrapper did not produce a function", absPath)
	}

	_, err = wrapperFn(goja.Undefined(),
		moduleObj,
		exports,
		rt.ToValue(requireFn),
		rt.ToValue(h.policy.Root()),
		rt.ToValue(dir),
		rt.ToValue(absPath),
	)
	if err != nil {
		return nil, scriptError(absPath, err)
	}

	finalExports, ok := moduleObj.Get("exports").(*goja.Object)
	if !ok {
		return nil, fmt.Errorf("%s: module.exports was replaced with a non-object value", absPath)
	}
	modules[absPath] = &moduleRecord{exports: finalExports}
	return finalExports, nil
}
