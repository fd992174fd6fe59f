// Package artifact defines the data the output planner and renderer
// operate on: the value(s) returned from an entrypoint's main function,
// normalised out of the script engine's representation.
package artifact

import (
	"errors"
	"fmt"

	"github.com/dop251/goja"

	"github.com/sencbuild/senc/internal/jsvalue"
	"github.com/sencbuild/senc/internal/prelude"
)

// ErrMissingData reports that an OutData artifact never set its `data`
// field.
var ErrMissingData = errors.New("artifact data is required")

// Artifact is one OutData value: a payload plus optional output
// placement, serialisation, and validation directives.
type Artifact struct {
	Data       any
	OutPath    *string
	OutExt     *string
	OutType    *string
	OutPrefix  *string
	SchemaPath *string
}

// List is an ordered sequence of Artifacts, normalised from whatever
// shape an entrypoint's main function returned.
type List []Artifact

var recognisedFields = []string{"data", "out_path", "out_ext", "out_type", "out_prefix", "schema_path"}

// FromMainResult normalises the value returned by an entrypoint's main
// function into the ordered artifact list defined by the output
// planning rules: an ArtifactList is used as-is, a single Artifact is
// wrapped in a one-element list, and anything else becomes the `data`
// field of a single default-metadata artifact.
func FromMainResult(v goja.Value) (List, error) {
	if v == nil || goja.IsUndefined(v) {
		return nil, fmt.Errorf("main() returned no value")
	}

	if prelude.IsOutDataArray(v) {
		return listFromArray(v)
	}
	if prelude.IsOutData(v) {
		a, err := artifactFromObject(v.(*goja.Object))
		if err != nil {
			return nil, err
		}
		return List{a}, nil
	}

	data, err := jsvalue.FromGoja(v)
	if err != nil {
		return nil, fmt.Errorf("convert main() return value: %w", err)
	}
	return List{{Data: data}}, nil
}

func listFromArray(v goja.Value) (List, error) {
	obj := v.(*goja.Object)
	length := obj.Get("length").ToInteger()
	out := make(List, 0, length)
	for i := int64(0); i < length; i++ {
		elem := obj.Get(fmt.Sprintf("%d", i))
		if !prelude.IsOutData(elem) {
			return nil, fmt.Errorf("ArtifactList element %d does not carry the Artifact marker", i)
		}
		a, err := artifactFromObject(elem.(*goja.Object))
		if err != nil {
			return nil, fmt.Errorf("ArtifactList element %d: %w", i, err)
		}
		out = append(out, a)
	}
	return out, nil
}

func artifactFromObject(obj *goja.Object) (Artifact, error) {
	var a Artifact
	dataSet := false
	for _, field := range recognisedFields {
		raw := obj.Get(field)
		if raw == nil || goja.IsUndefined(raw) {
			continue
		}
		switch field {
		case "data":
			data, err := jsvalue.FromGoja(raw)
			if err != nil {
				return Artifact{}, fmt.Errorf("data: %w", err)
			}
			a.Data = data
			dataSet = true
		case "out_path":
			a.OutPath = strPtr(raw.String())
		case "out_ext":
			a.OutExt = strPtr(raw.String())
		case "out_type":
			a.OutType = strPtr(raw.String())
		case "out_prefix":
			a.OutPrefix = strPtr(raw.String())
		case "schema_path":
			a.SchemaPath = strPtr(raw.String())
		}
	}
	if !dataSet {
		return Artifact{}, ErrMissingData
	}
	return a, nil
}

func strPtr(s string) *string { return &s }
