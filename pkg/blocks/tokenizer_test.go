// SPDX-FileCopyrightText: © 2025 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

package blocks_test

import (
	"encoding/json"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"codeberg.org/readeck/blockdata/pkg/blocks"
)

func runTokenize(src string, expected string) func(t *testing.T) {
	return func(t *testing.T) {
		res, err := blocks.Tokenize(src)
		require.NoError(t, err)

		out := new(strings.Builder)
		enc := json.NewEncoder(out)
		enc.SetEscapeHTML(false)
		require.NoError(t, enc.Encode(res))

		require.JSONEq(t, expected, out.String())
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		src      string
		expected string
	}{
		// A simple block
		{
			"<!-- wp:paragraph -->\n<p>Hello</p>\n<!-- /wp:paragraph -->",
			`[{
				"blockName": "core/paragraph",
				"attrs": {},
				"innerHTML": "\n<p>Hello</p>\n",
				"innerBlocks": []
			}]`,
		},
		// A void block with attributes
		{
			`<!-- wp:separator {"opacity":"css"} /-->`,
			`[{
				"blockName": "core/separator",
				"attrs": {"opacity": "css"},
				"innerHTML": "",
				"innerBlocks": []
			}]`,
		},
		// A namespaced block name
		{
			`<!-- wp:acme/recipe {"serves":4} --><div>x</div><!-- /wp:acme/recipe -->`,
			`[{
				"blockName": "acme/recipe",
				"attrs": {"serves": 4},
				"innerHTML": "<div>x</div>",
				"innerBlocks": []
			}]`,
		},
		// Nested blocks keep their own inner HTML
		{
			"<!-- wp:media-text -->\n<div class=\"wrap\">" +
				"<!-- wp:paragraph -->\n<p>Inner</p>\n<!-- /wp:paragraph -->" +
				"</div>\n<!-- /wp:media-text -->",
			`[{
				"blockName": "core/media-text",
				"attrs": {},
				"innerHTML": "\n<div class=\"wrap\"></div>\n",
				"innerBlocks": [{
					"blockName": "core/paragraph",
					"attrs": {},
					"innerHTML": "\n<p>Inner</p>\n",
					"innerBlocks": []
				}]
			}]`,
		},
		// Markup outside of blocks becomes freeform blocks
		{
			"Intro text.<!-- wp:html --><b>x</b><!-- /wp:html -->Outro.",
			`[
				{"blockName": null, "attrs": {}, "innerHTML": "Intro text.", "innerBlocks": []},
				{"blockName": "core/html", "attrs": {}, "innerHTML": "<b>x</b>", "innerBlocks": []},
				{"blockName": null, "attrs": {}, "innerHTML": "Outro.", "innerBlocks": []}
			]`,
		},
		// Whitespace between blocks is kept at this stage
		{
			"<!-- wp:separator /-->\n\n<!-- wp:separator /-->",
			`[
				{"blockName": "core/separator", "attrs": {}, "innerHTML": "", "innerBlocks": []},
				{"blockName": null, "attrs": {}, "innerHTML": "\n\n", "innerBlocks": []},
				{"blockName": "core/separator", "attrs": {}, "innerHTML": "", "innerBlocks": []}
			]`,
		},
		// Invalid attribute JSON degrades to an empty attribute set
		{
			`<!-- wp:paragraph {"broken} --><p>a</p><!-- /wp:paragraph -->`,
			`[{
				"blockName": "core/paragraph",
				"attrs": {},
				"innerHTML": "<p>a</p>",
				"innerBlocks": []
			}]`,
		},
		// Attribute strings may contain the comment closer
		{
			`<!-- wp:acme/note {"content":"x --> y"} --><!-- /wp:acme/note -->`,
			`[{
				"blockName": "acme/note",
				"attrs": {"content": "x --> y"},
				"innerHTML": "",
				"innerBlocks": []
			}]`,
		},
		// An unterminated block closes at the end of input
		{
			"<!-- wp:quote --><p>one",
			`[{
				"blockName": "core/quote",
				"attrs": {},
				"innerHTML": "<p>one",
				"innerBlocks": []
			}]`,
		},
		// A closer without an opener turns the document into freeform
		{
			"<p>text</p><!-- /wp:quote -->",
			`[{
				"blockName": null,
				"attrs": {},
				"innerHTML": "<p>text</p><!-- /wp:quote -->",
				"innerBlocks": []
			}]`,
		},
		// Multiple unterminated blocks collapse piecewise, innermost first
		{
			"<!-- wp:group --><div><!-- wp:quote --><p>q",
			`[
				{"blockName": null, "attrs": {}, "innerHTML": "<div>", "innerBlocks": []},
				{"blockName": "core/quote", "attrs": {}, "innerHTML": "<p>q", "innerBlocks": []},
				{"blockName": "core/group", "attrs": {}, "innerHTML": "<div><!-- wp:quote --><p>q", "innerBlocks": []}
			]`,
		},
		// A comment that only looks like a delimiter stays regular markup
		{
			"<!-- wp:UPPER --><!-- not a block --><!-- wp:spacer /-->",
			`[
				{"blockName": null, "attrs": {}, "innerHTML": "<!-- wp:UPPER --><!-- not a block -->", "innerBlocks": []},
				{"blockName": "core/spacer", "attrs": {}, "innerHTML": "", "innerBlocks": []}
			]`,
		},
		// No delimiter at all
		{
			"<p>Classic content.</p>",
			`[{
				"blockName": null,
				"attrs": {},
				"innerHTML": "<p>Classic content.</p>",
				"innerBlocks": []
			}]`,
		},
		// Empty input yields no block
		{
			"",
			`[]`,
		},
	}

	for i, test := range tests {
		t.Run(strconv.Itoa(i+1), runTokenize(test.src, test.expected))
	}
}

func TestTokenizeAttrsOrder(t *testing.T) {
	res, err := blocks.Tokenize(`<!-- wp:acme/recipe {"zeta":1,"alpha":2,"mid":3} /-->`)
	require.NoError(t, err)
	require.Len(t, res, 1)
	require.Equal(t, []string{"zeta", "alpha", "mid"}, res[0].Attrs.Keys())
}

func TestHasBlocks(t *testing.T) {
	require.True(t, blocks.HasBlocks(`<!-- wp:paragraph --><p>a</p><!-- /wp:paragraph -->`))
	require.True(t, blocks.HasBlocks(`text <!-- wp:spacer /--> text`))
	require.False(t, blocks.HasBlocks("<p>Classic content.</p>"))
	require.False(t, blocks.HasBlocks("<!--wp:paragraph-->"))
	require.False(t, blocks.HasBlocks(""))
}
