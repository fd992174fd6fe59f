// Package transpile strips TypeScript syntax from a source file and lowers
// ES module import/export syntax to the CommonJS shape the script host's
// embedded engine (which has no native module loader of its own) can
// execute (C2).
package transpile

import (
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// Loader selects how the source text should be parsed.
type Loader int

const (
	LoaderJS Loader = iota
	LoaderTS
	LoaderTSX
)

// LoaderForExtension picks a Loader from a file extension (including the
// leading dot), defaulting to plain JS for anything unrecognised.
func LoaderForExtension(ext string) Loader {
	switch strings.ToLower(ext) {
	case ".ts", ".mts", ".cts":
		return LoaderTS
	case ".tsx":
		return LoaderTSX
	default:
		return LoaderJS
	}
}

func (l Loader) esbuildLoader() api.Loader {
	switch l {
	case LoaderTS:
		return api.LoaderTS
	case LoaderTSX:
		return api.LoaderTSX
	default:
		return api.LoaderJS
	}
}

// Transform is a pure function: identical input bytes and loader always
// produce identical output bytes. It erases type annotations and
// type-only constructs, performs no type checking, and rewrites
// import/export statements into require/module.exports form.
func Transform(source []byte, loader Loader, sourceFile string) ([]byte, error) {
	result := api.Transform(string(source), api.TransformOptions{
		Loader:       loader.esbuildLoader(),
		Format:       api.FormatCommonJS,
		Target:       api.ES2022,
		Sourcefile:   sourceFile,
		Sourcemap:    api.SourceMapNone,
		LogLevel:     api.LogLevelSilent,
		MinifySyntax: false,
	})
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("transpile %s: %s", sourceFile, formatMessages(result.Errors))
	}
	return result.Code, nil
}

func formatMessages(messages []api.Message) string {
	parts := make([]string, 0, len(messages))
	for _, msg := range messages {
		if msg.Location != nil {
			parts = append(parts, fmt.Sprintf("%s:%d:%d: %s", msg.Location.File, msg.Location.Line, msg.Location.Column, msg.Text))
			continue
		}
		parts = append(parts, msg.Text)
	}
	return strings.Join(parts, "; ")
}
