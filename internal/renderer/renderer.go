// Package renderer serialises an artifact's data to its final on-disk
// byte representation (C8): JSON or YAML, with an optional verbatim
// prefix.
package renderer

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Kind selects the serialisation format.
type Kind int

const (
	KindJSON Kind = iota
	KindYAML
)

// Render serialises data as kind, prepending prefix verbatim if it is
// non-empty.
func Render(kind Kind, data any, prefix string) ([]byte, error) {
	payload, err := marshal(kind, data)
	if err != nil {
		return nil, err
	}
	if prefix == "" {
		return payload, nil
	}
	out := make([]byte, 0, len(prefix)+len(payload))
	out = append(out, prefix...)
	out = append(out, payload...)
	return out, nil
}

func marshal(kind Kind, data any) ([]byte, error) {
	switch kind {
	case KindJSON:
		payload, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("render json: %w", err)
		}
		return append(payload, '\n'), nil
	case KindYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return nil, fmt.Errorf("render yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("render yaml: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown render kind %v", kind)
	}
}
