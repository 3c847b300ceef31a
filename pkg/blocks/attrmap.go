// SPDX-FileCopyrightText: © 2025 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

package blocks

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// AttrMap is a string keyed map that keeps its insertion order. Block
// attributes go through it so their order in delimiters and sourced
// results stays stable.
//
// A nil *AttrMap reads as empty. An empty map marshals to an empty JSON
// object, never to null.
type AttrMap struct {
	keys   []string
	values map[string]any
}

// NewAttrMap returns a new, empty attribute map.
func NewAttrMap() *AttrMap {
	return &AttrMap{values: map[string]any{}}
}

// Len returns the number of stored attributes.
func (m *AttrMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Has returns true when name is present.
func (m *AttrMap) Has(name string) bool {
	if m == nil {
		return false
	}
	_, ok := m.values[name]
	return ok
}

// Get returns the value stored under name.
func (m *AttrMap) Get(name string) (any, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.values[name]
	return v, ok
}

// Set stores value under name. An existing name keeps its original
// position.
func (m *AttrMap) Set(name string, value any) {
	if m.values == nil {
		m.values = map[string]any{}
	}
	if _, ok := m.values[name]; !ok {
		m.keys = append(m.keys, name)
	}
	m.values[name] = value
}

// Keys returns the attribute names in insertion order.
func (m *AttrMap) Keys() []string {
	if m == nil {
		return nil
	}
	return slices.Clone(m.keys)
}

// Clone returns a shallow copy of the map. Cloning a nil map returns a
// new, empty one.
func (m *AttrMap) Clone() *AttrMap {
	if m == nil {
		return NewAttrMap()
	}
	return &AttrMap{
		keys:   slices.Clone(m.keys),
		values: maps.Clone(m.values),
	}
}

// MarshalJSON implements json.Marshaler. Attributes are written in
// insertion order and an empty map yields an empty object, never null.
func (m *AttrMap) MarshalJSON() ([]byte, error) {
	if m.Len() == 0 {
		return []byte("{}"), nil
	}

	buf := new(bytes.Buffer)
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := marshalNoEscape(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler, keeping the top level key
// order of the decoded object.
func (m *AttrMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("cannot decode %v as attributes", tok)
	}

	m.keys = m.keys[:0]
	if m.values == nil {
		m.values = map[string]any{}
	} else {
		clear(m.values)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("invalid attribute key %v", tok)
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return err
		}
		m.Set(key, value)
	}

	_, err = dec.Token()
	return err
}

// marshalNoEscape encodes v to JSON without escaping HTML characters, so
// markup carrying values stay readable in API responses.
func marshalNoEscape(v any) ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
