// SPDX-FileCopyrightText: © 2025 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

package blocks

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/go-shiori/dom"
)

// run holds the state of a single parse call, so a [Parser] stays
// reentrant.
type run struct {
	p        *Parser
	ctx      context.Context
	postID   int
	filters  Filters
	types    map[string]*BlockType
	warnings []string
}

// warn records a warning message, keeping the first occurrence only.
func (r *run) warn(msg string) {
	if slices.Contains(r.warnings, msg) {
		return
	}
	r.warnings = append(r.warnings, msg)
}

// sourceBlock resolves the attributes of a block and of all its inner
// blocks. It returns nil when filters or an inclusion hook reject the
// block.
func (r *run) sourceBlock(b *Block) (*SourcedBlock, error) {
	included := true
	if len(r.filters.Include) > 0 {
		included = slices.Contains(r.filters.Include, b.Name)
	} else if len(r.filters.Exclude) > 0 {
		included = !slices.Contains(r.filters.Exclude, b.Name)
	}
	for _, f := range r.p.includeFilters {
		included = f(included, b.Name, b)
	}
	if !included {
		return nil, nil
	}

	blockType, registered := r.types[b.Name]
	if !registered {
		r.warn(fmt.Sprintf(
			`Block type "%s" is not server-side registered. Sourced block attributes will not be available.`,
			b.Name,
		))
	}

	// Sourced attributes pile up on a copy of the delimiter attributes.
	attrs := b.Attrs.Clone()

	if registered {
		var scope *Scope
		for _, def := range blockType.Attributes {
			if def.Source == SourceNone {
				// Unsourced attributes live in the delimiter; only their
				// default can add to them.
				if !attrs.Has(def.Name) && def.Default != nil {
					attrs.Set(def.Name, def.Default)
				}
				continue
			}

			if scope == nil {
				var err error
				if scope, err = NewScope(b.InnerHTML); err != nil {
					return nil, err
				}
			}

			value, err := r.resolveAttribute(scope, def)
			if err != nil {
				return nil, err
			}
			if value != nil {
				attrs.Set(def.Name, value)
			}
		}
	}

	res := &SourcedBlock{Name: b.Name, Attributes: attrs}

	for _, inner := range b.InnerBlocks {
		sb, err := r.sourceBlock(inner)
		if err != nil {
			return nil, err
		}
		if sb != nil {
			res.InnerBlocks = append(res.InnerBlocks, sb)
		}
	}

	for _, f := range r.p.transforms {
		if res = f(res, b.Name, r.postID, b); res == nil {
			return nil, nil
		}
	}
	if res.Attributes == nil {
		res.Attributes = NewAttrMap()
	}
	return res, nil
}

// resolveAttribute computes the value of a single attribute definition
// against a block scope. A nil value falls back to the definition
// default.
func (r *run) resolveAttribute(scope *Scope, def *Attribute) (any, error) {
	var value any
	var err error

	switch def.Source {
	case SourceAttribute:
		value = sourceAttr(scope, def)
	case SourceHTML:
		value, err = sourceHTML(scope, def)
	case SourceText:
		value = sourceText(scope, def)
	case SourceTag:
		value = sourceTag(scope, def)
	case SourceRaw:
		value, err = sourceRaw(scope)
	case SourceQuery:
		value, err = r.sourceQuery(scope, def)
	case SourceMeta:
		value = r.sourceMeta(def)
	case SourceNode:
		value = sourceNode(scope, def)
	case SourceChildren:
		value = sourceChildren(scope, def)
	case SourceNone:
		// Handled by the caller, never dispatched here.
	default:
		r.p.log.Warn("unknown attribute source",
			slog.String("source", def.Source.String()),
			slog.String("attribute", def.Name))
	}
	if err != nil {
		return nil, err
	}

	if value == nil {
		value = def.Default
	}
	return value, nil
}

// sourceAttr reads an HTML attribute from the first match.
func sourceAttr(scope *Scope, def *Attribute) any {
	if def.Selector != "" {
		scope = scope.Filter(def.Selector)
	}
	if scope.Count() == 0 {
		return nil
	}
	if v, ok := scope.Attr(def.Attribute); ok {
		return v
	}
	return nil
}

// sourceHTML reads the inner HTML of the first match. With a multiline
// selector, it concatenates the outer HTML of every multiline match
// instead, without any separator.
func sourceHTML(scope *Scope, def *Attribute) (any, error) {
	if def.Selector != "" {
		scope = scope.Filter(def.Selector)
	}
	if scope.Count() == 0 {
		return nil, nil
	}

	if def.Multiline != "" {
		var b strings.Builder
		for sub := range scope.Filter(def.Multiline).Each() {
			h, err := sub.OuterHTML()
			if err != nil {
				return nil, err
			}
			b.WriteString(h)
		}
		return b.String(), nil
	}

	h, err := scope.HTML()
	if err != nil {
		return nil, err
	}
	return h, nil
}

// sourceText reads the text content of the first match.
func sourceText(scope *Scope, def *Attribute) any {
	if def.Selector != "" {
		scope = scope.Filter(def.Selector)
	}
	if scope.Count() == 0 {
		return nil
	}
	return scope.Text()
}

// sourceTag reads the tag name of the first match.
func sourceTag(scope *Scope, def *Attribute) any {
	if def.Selector != "" {
		scope = scope.Filter(def.Selector)
	}
	if scope.Count() == 0 {
		return nil
	}
	return scope.TagName()
}

// sourceRaw reads the whole scope as trimmed inner HTML. Raw sources have
// no selector.
func sourceRaw(scope *Scope) (any, error) {
	if scope.Count() == 0 {
		return nil, nil
	}
	h, err := scope.HTML()
	if err != nil {
		return nil, err
	}
	return strings.TrimSpace(h), nil
}

// sourceQuery builds one attribute record per match, resolving the
// sub-definitions against each match as its own scope. Sub-attributes
// resolving to nil, after their own default, are left out of the record.
func (r *run) sourceQuery(scope *Scope, def *Attribute) (any, error) {
	if def.Selector != "" {
		scope = scope.Filter(def.Selector)
	}

	records := []*AttrMap{}
	for sub := range scope.Each() {
		record := NewAttrMap()
		for _, subDef := range def.Query {
			value, err := r.resolveAttribute(sub, subDef)
			if err != nil {
				return nil, err
			}
			if value != nil {
				record.Set(subDef.Name, value)
			}
		}
		records = append(records, record)
	}
	return records, nil
}

// sourceMeta reads a post metadata value. It yields nil without a post
// context or when the key does not exist.
func (r *run) sourceMeta(def *Attribute) any {
	if r.p.meta == nil || r.postID == 0 || def.Meta == "" {
		return nil
	}
	if !r.p.meta.Exists(r.ctx, r.postID, def.Meta) {
		return nil
	}
	return r.p.meta.Get(r.ctx, r.postID, def.Meta)
}

// sourceNode serializes the first match.
func sourceNode(scope *Scope, def *Attribute) any {
	if def.Selector != "" {
		scope = scope.Filter(def.Selector)
	}
	n := scope.Node()
	if n == nil {
		return nil
	}
	return SerializeNode(n)
}

// sourceChildren serializes the child nodes of the first match. A match
// without child elements yields its raw text as a single value. No match
// yields an empty, non nil sequence.
func sourceChildren(scope *Scope, def *Attribute) any {
	if def.Selector != "" {
		scope = scope.Filter(def.Selector)
	}

	values := []any{}
	if scope.Count() == 0 {
		return values
	}

	match := scope.Node()
	if len(dom.Children(match)) == 0 {
		return []any{dom.TextContent(match)}
	}

	for _, n := range dom.ChildNodes(match) {
		if v := SerializeNode(n); v != nil {
			values = append(values, v)
		}
	}
	return values
}
