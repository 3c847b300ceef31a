// SPDX-FileCopyrightText: © 2025 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package blocks extracts structured attribute data from block delimited
// content, as produced by block based editors.
//
// Content is first tokenized into a tree of raw blocks ([Tokenize]). A
// [Parser] then combines this tree with a [Registry] of block type
// definitions and sources every declared attribute from the block's inner
// HTML, its delimiter attributes or post metadata. The result is a tree of
// [SourcedBlock] values holding data only, no markup.
package blocks

import (
	"strings"
)

// blockMarker is the delimiter prefix identifying block content.
const blockMarker = "<!-- wp:"

// HasBlocks returns true when content contains at least one block
// delimiter marker.
func HasBlocks(content string) bool {
	return strings.Contains(content, blockMarker)
}

// Block is a raw block as produced by tokenization. Markup living outside
// of any delimited block appears as freeform blocks with an empty name.
type Block struct {
	Name        string
	Attrs       *AttrMap
	InnerHTML   string
	InnerBlocks []*Block
}

// IsFreeform returns true when the block holds markup found outside of any
// delimited block.
func (b *Block) IsFreeform() bool {
	return b.Name == ""
}

// isWhitespace reports a freeform block containing only whitespace.
func (b *Block) isWhitespace() bool {
	return b.IsFreeform() && strings.TrimSpace(b.InnerHTML) == ""
}

// MarshalJSON implements json.Marshaler. A freeform block encodes its name
// as null and attrs always encodes as an object.
func (b *Block) MarshalJSON() ([]byte, error) {
	var name any
	if !b.IsFreeform() {
		name = b.Name
	}
	attrs := b.Attrs
	if attrs == nil {
		attrs = NewAttrMap()
	}
	return marshalNoEscape(struct {
		Name        any      `json:"blockName"`
		Attrs       *AttrMap `json:"attrs"`
		InnerHTML   string   `json:"innerHTML"`
		InnerBlocks []*Block `json:"innerBlocks"`
	}{name, attrs, b.InnerHTML, nonNil(b.InnerBlocks)})
}

// SourcedBlock is a block once its attributes are sourced.
type SourcedBlock struct {
	Name        string
	Attributes  *AttrMap
	InnerBlocks []*SourcedBlock
}

// MarshalJSON implements json.Marshaler. A freeform block encodes its name
// as null, attributes always encodes as an object, possibly empty, and
// innerBlocks is only present on blocks that have some.
func (b *SourcedBlock) MarshalJSON() ([]byte, error) {
	var name any
	if b.Name != "" {
		name = b.Name
	}
	attrs := b.Attributes
	if attrs == nil {
		attrs = NewAttrMap()
	}
	return marshalNoEscape(struct {
		Name        any             `json:"name"`
		Attributes  *AttrMap        `json:"attributes"`
		InnerBlocks []*SourcedBlock `json:"innerBlocks,omitempty"`
	}{name, attrs, b.InnerBlocks})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
