// Package prelude holds the fixed script-visible global surface (C5):
// console, path, senc.*, and the Artifact/ArtifactList marker protocol.
// The prelude itself is plain JavaScript, evaluated once per engine
// instance before any user module runs; this package only exposes its
// source text and the Go-side helpers that recognise its markers.
package prelude

import (
	_ "embed"

	"github.com/dop251/goja"
)

//go:embed prelude.js
var source string

// Source returns the prelude script. It references a single native
// binding, `__senc_native`, that the script host must install on the
// runtime's global object before evaluating it.
func Source() string {
	return source
}

const (
	outDataMarker      = "__is_senc_out_data"
	outDataArrayMarker = "__is_senc_out_data_array"
)

// IsOutData reports whether v carries the Artifact marker.
func IsOutData(v goja.Value) bool {
	return hasMarker(v, outDataMarker)
}

// IsOutDataArray reports whether v carries the ArtifactList marker.
func IsOutDataArray(v goja.Value) bool {
	return hasMarker(v, outDataArrayMarker)
}

func hasMarker(v goja.Value, marker string) bool {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return false
	}
	obj, ok := v.(*goja.Object)
	if !ok {
		return false
	}
	return obj.Get(marker) != nil && obj.Get(marker).ToBoolean()
}
