// SPDX-FileCopyrightText: © 2025 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

package blocks

import (
	"encoding/json"
	"regexp"
	"strings"
)

// TokenizeFunc turns raw content into a sequence of block trees. The
// default implementation is [Tokenize].
type TokenizeFunc func(content string) ([]*Block, error)

// tokenHead matches the start of a block delimiter, up to and including
// the whitespace after the block name. Attributes and the comment closer
// are scanned manually from there.
var tokenHead = regexp.MustCompile(`<!--\s+(/)?wp:([a-z][a-z0-9_-]*)(/[a-z][a-z0-9_-]*)?\s+`)

type tokenKind int

const (
	tokNone tokenKind = iota
	tokVoid
	tokOpener
	tokCloser
)

type token struct {
	kind   tokenKind
	name   string
	attrs  *AttrMap
	start  int
	length int
}

// Tokenize parses content into a tree of raw blocks. Markup sitting
// outside of any delimiter becomes freeform blocks. The function is
// total: malformed delimiters degrade to freeform content, unterminated
// blocks close at the end of input and invalid attribute JSON reads as an
// empty attribute set. The error return satisfies [TokenizeFunc] and is
// always nil.
func Tokenize(content string) ([]*Block, error) {
	t := &tokenizer{document: content, output: []*Block{}}
	for t.proceed() {
	}
	return t.output, nil
}

type frame struct {
	block            *Block
	tokenStart       int
	tokenLength      int
	prevOffset       int
	leadingHTMLStart int
}

type tokenizer struct {
	document string
	offset   int
	output   []*Block
	stack    []*frame
}

func freeform(innerHTML string) *Block {
	return &Block{Attrs: NewAttrMap(), InnerHTML: innerHTML, InnerBlocks: []*Block{}}
}

// proceed consumes the next token and updates the block tree. It returns
// false once the document is exhausted.
func (t *tokenizer) proceed() bool {
	tok := t.nextToken()
	stackDepth := len(t.stack)

	leadingHTMLStart := -1
	if tok.start > t.offset {
		leadingHTMLStart = t.offset
	}

	switch tok.kind {
	case tokVoid:
		b := &Block{Name: tok.name, Attrs: tok.attrs, InnerBlocks: []*Block{}}
		if stackDepth == 0 {
			if leadingHTMLStart >= 0 {
				t.output = append(t.output, freeform(t.document[leadingHTMLStart:tok.start]))
			}
			t.output = append(t.output, b)
		} else {
			t.addInnerBlock(b, tok.start, tok.length, -1)
		}
		t.offset = tok.start + tok.length
		return true

	case tokOpener:
		t.stack = append(t.stack, &frame{
			block:            &Block{Name: tok.name, Attrs: tok.attrs, InnerBlocks: []*Block{}},
			tokenStart:       tok.start,
			tokenLength:      tok.length,
			prevOffset:       tok.start + tok.length,
			leadingHTMLStart: leadingHTMLStart,
		})
		t.offset = tok.start + tok.length
		return true

	case tokCloser:
		if stackDepth == 0 {
			// A closer without an opener. Bail out and keep the rest of
			// the document as freeform content.
			t.addFreeform()
			return false
		}
		if stackDepth == 1 {
			t.addBlockFromStack(tok.start)
			t.offset = tok.start + tok.length
			return true
		}
		// Close the current block and attach it to its parent.
		top := t.stack[len(t.stack)-1]
		t.stack = t.stack[:len(t.stack)-1]
		top.block.InnerHTML += t.document[top.prevOffset:tok.start]
		top.prevOffset = tok.start + tok.length
		t.addInnerBlock(top.block, top.tokenStart, top.tokenLength, top.prevOffset)
		t.offset = tok.start + tok.length
		return true
	}

	// No more tokens.
	if stackDepth == 0 {
		t.addFreeform()
		return false
	}
	// Unterminated blocks close at the end of input, assuming as many
	// missing closers as needed.
	for len(t.stack) > 0 {
		t.addBlockFromStack(-1)
	}
	return false
}

// addInnerBlock appends b to the innermost open block, moving the markup
// between the parent's last position and the token into the parent's
// inner HTML.
func (t *tokenizer) addInnerBlock(b *Block, tokenStart, tokenLength, lastOffset int) {
	parent := t.stack[len(t.stack)-1]
	parent.block.InnerBlocks = append(parent.block.InnerBlocks, b)
	if html := t.document[parent.prevOffset:tokenStart]; html != "" {
		parent.block.InnerHTML += html
	}
	if lastOffset >= 0 {
		parent.prevOffset = lastOffset
	} else {
		parent.prevOffset = tokenStart + tokenLength
	}
}

// addBlockFromStack closes the innermost open block and appends it to the
// output. endOffset bounds its trailing inner HTML; a negative value
// reads to the end of the document.
func (t *tokenizer) addBlockFromStack(endOffset int) {
	top := t.stack[len(t.stack)-1]
	t.stack = t.stack[:len(t.stack)-1]

	var html string
	if endOffset >= 0 {
		html = t.document[top.prevOffset:endOffset]
	} else {
		html = t.document[top.prevOffset:]
	}
	if html != "" {
		top.block.InnerHTML += html
	}
	if top.leadingHTMLStart >= 0 {
		t.output = append(t.output, freeform(t.document[top.leadingHTMLStart:top.tokenStart]))
	}
	t.output = append(t.output, top.block)
}

// addFreeform turns the remaining document into a freeform block.
func (t *tokenizer) addFreeform() {
	if t.offset >= len(t.document) {
		return
	}
	t.output = append(t.output, freeform(t.document[t.offset:]))
}

// nextToken scans the document for the next valid block delimiter.
// Comments that look like a delimiter but are not well formed are skipped
// over and read as regular markup.
func (t *tokenizer) nextToken() token {
	from := t.offset
	for {
		rel := tokenHead.FindStringSubmatchIndex(t.document[from:])
		if rel == nil {
			return token{kind: tokNone, start: len(t.document)}
		}
		start := from + rel[0]
		pos := from + rel[1]

		closer := rel[2] >= 0
		name := t.document[from+rel[4] : from+rel[5]]
		if rel[6] >= 0 {
			name += t.document[from+rel[6] : from+rel[7]]
		} else {
			// A name without a namespace lives in the core one.
			name = "core/" + name
		}

		attrs := NewAttrMap()
		if pos < len(t.document) && t.document[pos] == '{' {
			end := t.attrsEnd(pos)
			if end < 0 {
				from = start + len("<!--")
				continue
			}
			raw := t.document[pos:end]
			pos = end
			ws := countSpaces(t.document, pos)
			if ws == 0 {
				from = start + len("<!--")
				continue
			}
			pos += ws
			if err := json.Unmarshal([]byte(raw), attrs); err != nil {
				attrs = NewAttrMap()
			}
		}

		void := false
		switch {
		case strings.HasPrefix(t.document[pos:], "/-->"):
			void = true
			pos += 4
		case strings.HasPrefix(t.document[pos:], "-->"):
			pos += 3
		default:
			from = start + len("<!--")
			continue
		}

		kind := tokOpener
		switch {
		case closer:
			kind = tokCloser
		case void:
			kind = tokVoid
		}
		return token{kind: kind, name: name, attrs: attrs, start: start, length: pos - start}
	}
}

// attrsEnd returns the position after the attributes JSON object starting
// at pos. The object ends at the first closing brace followed by
// whitespace and the comment closer. It returns -1 when no such position
// exists.
func (t *tokenizer) attrsEnd(pos int) int {
	i := pos
	for {
		j := strings.Index(t.document[i:], "}")
		if j < 0 {
			return -1
		}
		end := i + j + 1
		if ws := countSpaces(t.document, end); ws > 0 {
			rest := t.document[end+ws:]
			if strings.HasPrefix(rest, "-->") || strings.HasPrefix(rest, "/-->") {
				return end
			}
		}
		i = end
	}
}

func countSpaces(s string, pos int) int {
	n := 0
	for pos+n < len(s) {
		switch s[pos+n] {
		case ' ', '\t', '\n', '\r', '\f', '\v':
			n++
		default:
			return n
		}
	}
	return n
}
