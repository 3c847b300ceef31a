// SPDX-FileCopyrightText: © 2025 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

package blocks

import (
	"strings"

	"github.com/go-shiori/dom"
	"golang.org/x/net/html"
)

// TreeNode is the serialized form of an element node.
type TreeNode struct {
	Type     string `json:"type"`
	Children []any  `json:"children"`
}

// SerializeNode converts an HTML node into a JSON friendly value. A text
// node yields its text, kept verbatim, or nil when it only holds
// whitespace. An element node yields a [TreeNode] with its serialized
// children, nil results excluded. Any other node kind yields nil.
func SerializeNode(n *html.Node) any {
	switch n.Type {
	case html.TextNode:
		if strings.TrimSpace(n.Data) == "" {
			return nil
		}
		return n.Data
	case html.ElementNode:
		children := []any{}
		for _, c := range dom.ChildNodes(n) {
			if v := SerializeNode(c); v != nil {
				children = append(children, v)
			}
		}
		return &TreeNode{Type: dom.TagName(n), Children: children}
	default:
		return nil
	}
}
