package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
	"reflect"
	"slices"
	"strings"
)

// IsReservedKey reports whether key belongs to the system namespace. Keys starting
// with "_" or "$" are never treated as user properties.
func IsReservedKey(key string) bool {
	return strings.HasPrefix(key, "_") || strings.HasPrefix(key, "$")
}

// PropertyMap is a string-keyed map that remembers insertion order. Re-setting an
// existing key keeps its original position. A nil *PropertyMap reads as empty, but
// encoding/json renders a nil pointer field as null without consulting MarshalJSON,
// so documents and elements always hold a non-nil map.
type PropertyMap struct {
	keys   []string
	values map[string]any
}

// NewPropertyMap returns an empty PropertyMap.
func NewPropertyMap() *PropertyMap {
	return &PropertyMap{values: make(map[string]any)}
}

// PropertiesFromMap builds a PropertyMap from a plain map. Go maps carry no order,
// so keys are inserted in sorted order to keep the result deterministic.
func PropertiesFromMap(src map[string]any) *PropertyMap {
	m := NewPropertyMap()
	keys := make([]string, 0, len(src))
	for k := range src {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		m.Set(k, src[k])
	}
	return m
}

// PropertiesFrom converts any JSON-encodable value into a PropertyMap using its
// JSON object form. Values are normalized to the generic JSON types.
func PropertiesFrom(v any) (*PropertyMap, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding properties: %w", err)
	}
	m := NewPropertyMap()
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("decoding properties: %w", err)
	}
	return m, nil
}

// Len returns the number of keys.
func (m *PropertyMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m *PropertyMap) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Get returns the value stored under key.
func (m *PropertyMap) Get(key string) (any, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present.
func (m *PropertyMap) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Set stores value under key and returns the map for chaining.
func (m *PropertyMap) Set(key string, value any) *PropertyMap {
	if m.values == nil {
		m.values = make(map[string]any)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
	return m
}

// Delete removes key and reports whether it was present.
func (m *PropertyMap) Delete(key string) bool {
	if m == nil {
		return false
	}
	if _, ok := m.values[key]; !ok {
		return false
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
	return true
}

// All iterates over key/value pairs in insertion order.
func (m *PropertyMap) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		if m == nil {
			return
		}
		for _, k := range m.keys {
			if !yield(k, m.values[k]) {
				return
			}
		}
	}
}

// Clone returns a shallow copy.
func (m *PropertyMap) Clone() *PropertyMap {
	out := NewPropertyMap()
	for k, v := range m.All() {
		out.Set(k, v)
	}
	return out
}

// Merge copies every pair of other into m, overwriting existing keys.
func (m *PropertyMap) Merge(other *PropertyMap) *PropertyMap {
	for k, v := range other.All() {
		m.Set(k, v)
	}
	return m
}

// UserProperties returns a copy without reserved keys.
func (m *PropertyMap) UserProperties() *PropertyMap {
	out := NewPropertyMap()
	for k, v := range m.All() {
		if !IsReservedKey(k) {
			out.Set(k, v)
		}
	}
	return out
}

// ToMap returns the contents as a plain map.
func (m *PropertyMap) ToMap() map[string]any {
	out := make(map[string]any, m.Len())
	for k, v := range m.All() {
		out[k] = v
	}
	return out
}

// Decode unmarshals the map into v through its JSON form.
func (m *PropertyMap) Decode(v any) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding properties: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding properties: %w", err)
	}
	return nil
}

// Matches reports whether every pair in example is present in m with an equal value.
// An empty example matches everything.
func (m *PropertyMap) Matches(example *PropertyMap) bool {
	for k, want := range example.All() {
		got, ok := m.Get(k)
		if !ok || !ValuesEqual(got, want) {
			return false
		}
	}
	return true
}

// ValuesEqual compares two property values by their JSON meaning, so 1 and 1.0 are
// equal and nested maps compare regardless of key order.
func ValuesEqual(a, b any) bool {
	na, errA := normalizeValue(a)
	nb, errB := normalizeValue(b)
	if errA != nil || errB != nil {
		return reflect.DeepEqual(a, b)
	}
	return reflect.DeepEqual(na, nb)
}

func normalizeValue(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarshalJSON encodes the map as a JSON object in insertion order.
func (m *PropertyMap) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, fmt.Errorf("encoding property %q: %w", k, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping the key order of the input.
func (m *PropertyMap) UnmarshalJSON(data []byte) error {
	m.keys = nil
	m.values = make(map[string]any)

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("reading properties: %w", err)
	}
	if tok == nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("properties must be a JSON object")
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("reading property key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected property key %v", tok)
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("reading property %q: %w", key, err)
		}
		m.Set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("reading properties: %w", err)
	}
	return nil
}
