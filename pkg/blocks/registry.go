// SPDX-FileCopyrightText: © 2025 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

package blocks

import (
	"fmt"
)

// Source enumerates the attribute sourcing strategies.
type Source int

// Sourcing strategies. SourceNone is the zero value and marks attributes
// that only exist in the block delimiter.
const (
	SourceNone Source = iota
	SourceAttribute
	SourceHTML
	SourceText
	SourceTag
	SourceRaw
	SourceQuery
	SourceMeta
	SourceNode
	SourceChildren
)

var sourceNames = map[Source]string{
	SourceNone:      "",
	SourceAttribute: "attribute",
	SourceHTML:      "html",
	SourceText:      "text",
	SourceTag:       "tag",
	SourceRaw:       "raw",
	SourceQuery:     "query",
	SourceMeta:      "meta",
	SourceNode:      "node",
	SourceChildren:  "children",
}

// String implements fmt.Stringer.
func (s Source) String() string {
	if name, ok := sourceNames[s]; ok {
		return name
	}
	return fmt.Sprintf("source(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s Source) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. An empty value maps
// to [SourceNone].
func (s *Source) UnmarshalText(text []byte) error {
	name := string(text)
	for v, n := range sourceNames {
		if n == name {
			*s = v
			return nil
		}
	}
	return fmt.Errorf("unknown attribute source %q", name)
}

// Attribute describes how a single block attribute gets its value. Which
// fields apply depends on Source; Default applies to all of them.
type Attribute struct {
	Name      string       `json:"name"`
	Source    Source       `json:"source,omitempty"`
	Selector  string       `json:"selector,omitempty"`
	Attribute string       `json:"attribute,omitempty"`
	Multiline string       `json:"multiline,omitempty"`
	Meta      string       `json:"meta,omitempty"`
	Default   any          `json:"default,omitempty"`
	Query     []*Attribute `json:"query,omitempty"`
}

// BlockType is the sourcing definition of one block type. Attributes keep
// their declaration order.
type BlockType struct {
	Name       string       `json:"name"`
	Attributes []*Attribute `json:"attributes,omitempty"`
}

// Registry provides the block type definitions available to a parser.
//
// GetAll must return a mapping that stays stable for the duration of a
// parse call; the parser never mutates it.
type Registry interface {
	GetAll() map[string]*BlockType
}

// RegistryMap is a plain, immutable [Registry].
type RegistryMap map[string]*BlockType

// GetAll implements [Registry].
func (r RegistryMap) GetAll() map[string]*BlockType {
	return r
}
