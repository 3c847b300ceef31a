// SPDX-FileCopyrightText: © 2025 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

package blocks

import (
	"iter"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Scope is a read only view over a parsed HTML fragment. The fragment is
// wrapped in a minimal document before parsing, so fragments behave like
// full documents and table or list elements keep their structure. The
// initial scope is the document body.
//
// Filtering returns a new scope and never changes the receiver; a scope
// can be narrowed any number of times.
type Scope struct {
	sel *goquery.Selection
}

// NewScope parses fragment and returns a [Scope] rooted at the body of
// its synthetic document.
func NewScope(fragment string) (*Scope, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		"<!DOCTYPE html><html><head></head><body>" + fragment + "</body></html>",
	))
	if err != nil {
		return nil, err
	}
	return &Scope{sel: doc.Find("body").First()}, nil
}

// Count returns the number of matched nodes.
func (s *Scope) Count() int {
	return s.sel.Length()
}

// Filter returns a new scope over the nodes matching selector within the
// current one.
func (s *Scope) Filter(selector string) *Scope {
	return &Scope{sel: s.sel.Find(selector)}
}

// Attr returns the named attribute of the first matched node.
func (s *Scope) Attr(name string) (string, bool) {
	return s.sel.Attr(name)
}

// Text returns the text content of the first matched node.
func (s *Scope) Text() string {
	return s.sel.First().Text()
}

// HTML returns the inner HTML of the first matched node.
func (s *Scope) HTML() (string, error) {
	return s.sel.Html()
}

// OuterHTML returns the outer HTML of the first matched node.
func (s *Scope) OuterHTML() (string, error) {
	return goquery.OuterHtml(s.sel)
}

// TagName returns the lower cased tag name of the first matched node.
func (s *Scope) TagName() string {
	return strings.ToLower(goquery.NodeName(s.sel))
}

// Node returns the first matched node, or nil on an empty scope.
func (s *Scope) Node() *html.Node {
	if s.sel.Length() == 0 {
		return nil
	}
	return s.sel.Get(0)
}

// Each returns an iterator over the matched nodes, in document order, each
// wrapped in its own single node scope.
func (s *Scope) Each() iter.Seq[*Scope] {
	return func(yield func(*Scope) bool) {
		for i := range s.sel.Length() {
			if !yield(&Scope{sel: s.sel.Eq(i)}) {
				return
			}
		}
	}
}
