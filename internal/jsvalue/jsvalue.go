// Package jsvalue bridges values observed inside the script engine and
// values parsed from JSON/YAML documents to a Go representation that
// preserves key insertion order, since plain map[string]any loses it and
// the renderer's round-trip invariant depends on it being kept.
package jsvalue

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/dop251/goja"
	"gopkg.in/yaml.v3"
)

// OrderedMap is a JSON/YAML-object-shaped value that remembers the order
// its keys were first set in.
type OrderedMap struct {
	keys   []string
	values map[string]any
}

// New returns an empty OrderedMap.
func New() *OrderedMap {
	return &OrderedMap{values: make(map[string]any)}
}

// Set assigns key to value, appending key to the order if it is new.
func (m *OrderedMap) Set(key string, value any) {
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value stored for key and whether it was present.
func (m *OrderedMap) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (m *OrderedMap) Keys() []string {
	return m.keys
}

// Len returns the number of entries.
func (m *OrderedMap) Len() int {
	return len(m.keys)
}

// MarshalJSON renders the map with its keys in insertion order.
func (m *OrderedMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')
		valBytes, err := json.Marshal(m.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(valBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML renders the map as a YAML mapping node with its keys in
// insertion order.
func (m *OrderedMap) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, key := range m.keys {
		keyNode := &yaml.Node{}
		if err := keyNode.Encode(key); err != nil {
			return nil, fmt.Errorf("encode key %q: %w", key, err)
		}
		valNode := &yaml.Node{}
		if err := valNode.Encode(m.values[key]); err != nil {
			return nil, fmt.Errorf("encode value for key %q: %w", key, err)
		}
		node.Content = append(node.Content, keyNode, valNode)
	}
	return node, nil
}

// FromGoja converts a value observed inside the script engine into a Go
// tree of nil / bool / int64 / float64 / string / []any / *OrderedMap,
// preserving the own-enumerable-property order goja reports for objects.
func FromGoja(v goja.Value) (any, error) {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, nil
	}

	obj, ok := v.(*goja.Object)
	if !ok {
		return v.Export(), nil
	}

	switch obj.ClassName() {
	case "Array":
		return arrayFromGoja(obj)
	case "Object":
		return objectFromGoja(obj)
	default:
		return obj.Export(), nil
	}
}

func arrayFromGoja(obj *goja.Object) ([]any, error) {
	length := obj.Get("length").ToInteger()
	out := make([]any, 0, length)
	for i := int64(0); i < length; i++ {
		elem := obj.Get(strconv.FormatInt(i, 10))
		conv, err := FromGoja(elem)
		if err != nil {
			return nil, fmt.Errorf("array element %d: %w", i, err)
		}
		out = append(out, conv)
	}
	return out, nil
}

func objectFromGoja(obj *goja.Object) (*OrderedMap, error) {
	om := New()
	for _, key := range obj.Keys() {
		conv, err := FromGoja(obj.Get(key))
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", key, err)
		}
		om.Set(key, conv)
	}
	return om, nil
}

// ToGoja converts a Go tree produced by ParseJSON/ParseYAML back into a
// goja.Value inside runtime, preserving OrderedMap key order as the
// resulting JS object's own-property order.
func ToGoja(runtime *goja.Runtime, v any) goja.Value {
	switch val := v.(type) {
	case nil:
		return goja.Null()
	case *OrderedMap:
		obj := runtime.NewObject()
		for _, key := range val.keys {
			inner, _ := val.Get(key)
			_ = obj.Set(key, ToGoja(runtime, inner))
		}
		return obj
	case []any:
		items := make([]any, len(val))
		for i, elem := range val {
			items[i] = ToGoja(runtime, elem)
		}
		return runtime.NewArray(items...)
	default:
		return runtime.ToValue(val)
	}
}
