// SPDX-FileCopyrightText: © 2025 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

package blocktypes_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"codeberg.org/readeck/blockdata/internal/blocktypes"
	"codeberg.org/readeck/blockdata/pkg/blocks"
)

func TestRegistry(t *testing.T) {
	assert := require.New(t)
	reg := blocktypes.New()

	_, ok := reg.Get("acme/widget")
	assert.False(ok)

	reg.Register(
		&blocks.BlockType{Name: "acme/widget"},
		&blocks.BlockType{Name: "acme/banner"},
	)

	item, ok := reg.Get("acme/widget")
	assert.True(ok)
	assert.Equal("acme/widget", item.Name)

	list := reg.List()
	assert.Len(list, 2)
	assert.Equal("acme/banner", list[0].Name)
	assert.Equal("acme/widget", list[1].Name)

	// A registration replaces the previous definition
	reg.Register(&blocks.BlockType{
		Name:       "acme/widget",
		Attributes: []*blocks.Attribute{{Name: "title", Source: blocks.SourceText}},
	})
	item, _ = reg.Get("acme/widget")
	assert.Len(item.Attributes, 1)

	// Snapshots stay stable over later registrations
	snapshot := reg.GetAll()
	reg.Register(&blocks.BlockType{Name: "acme/footer"})
	assert.Len(snapshot, 2)
	assert.Len(reg.GetAll(), 3)
}

func TestBuiltin(t *testing.T) {
	reg := blocktypes.NewBuiltin()

	for _, name := range []string{
		"core/paragraph", "core/heading", "core/quote", "core/image",
		"core/gallery", "core/list", "core/table", "core/separator",
		"core/more", "core/embed",
	} {
		_, ok := reg.Get(name)
		require.True(t, ok, name)
	}

	runParse := func(content, expected string) func(t *testing.T) {
		return func(t *testing.T) {
			p := blocks.NewParser(reg)
			res, err := p.Parse(context.Background(), content, 0, blocks.Filters{})
			require.NoError(t, err)

			out := new(strings.Builder)
			enc := json.NewEncoder(out)
			enc.SetEscapeHTML(false)
			require.NoError(t, enc.Encode(res))
			require.JSONEq(t, expected, out.String())
		}
	}

	t.Run("list", runParse(
		"<!-- wp:list --><ul><li>one</li><li>two</li></ul><!-- /wp:list -->",
		`{"blocks": [{
			"name": "core/list",
			"attributes": {"values": "<li>one</li><li>two</li>", "ordered": false}
		}]}`,
	))

	t.Run("table", runParse(
		`<!-- wp:table --><figure class="wp-block-table"><table>`+
			`<thead><tr><th scope="col">Name</th></tr></thead>`+
			`<tbody><tr><td>Apples</td></tr></tbody>`+
			`</table></figure><!-- /wp:table -->`,
		`{"blocks": [{
			"name": "core/table",
			"attributes": {
				"head": [{"cells": [{"content": "Name", "tag": "th", "scope": "col"}]}],
				"body": [{"cells": [{"content": "Apples", "tag": "td"}]}],
				"foot": [],
				"hasFixedLayout": false
			}
		}]}`,
	))

	t.Run("separator", runParse(
		"<!-- wp:separator /-->",
		`{"blocks": [{
			"name": "core/separator",
			"attributes": {"opacity": "alpha-channel"}
		}]}`,
	))
}

func TestLoad(t *testing.T) {
	definitions := `
[[types]]
name = "acme/recipe"

  [[types.attributes]]
  name = "title"
  source = "html"
  selector = "h2"

  [[types.attributes]]
  name = "servings"
  source = "attribute"
  selector = ".recipe"
  attribute = "data-servings"
  default = "1"

  [[types.attributes]]
  name = "ingredients"
  source = "query"
  selector = "ul.ingredients li"

    [[types.attributes.query]]
    name = "label"
    source = "html"

[[types]]
name = "acme/byline"

  [[types.attributes]]
  name = "author"
  source = "meta"
  meta = "author_name"
`

	assert := require.New(t)
	reg := blocktypes.New()
	assert.NoError(reg.Load(strings.NewReader(definitions)))

	recipe, ok := reg.Get("acme/recipe")
	assert.True(ok)
	assert.Len(recipe.Attributes, 3)
	assert.Equal(blocks.SourceHTML, recipe.Attributes[0].Source)
	assert.Equal("h2", recipe.Attributes[0].Selector)
	assert.Equal("1", recipe.Attributes[1].Default)
	assert.Equal(blocks.SourceQuery, recipe.Attributes[2].Source)
	assert.Len(recipe.Attributes[2].Query, 1)
	assert.Equal("label", recipe.Attributes[2].Query[0].Name)

	byline, ok := reg.Get("acme/byline")
	assert.True(ok)
	assert.Equal(blocks.SourceMeta, byline.Attributes[0].Source)
	assert.Equal("author_name", byline.Attributes[0].Meta)

	t.Run("override builtin", func(t *testing.T) {
		reg := blocktypes.NewBuiltin()
		require.NoError(t, reg.Load(strings.NewReader(
			"[[types]]\nname = \"core/paragraph\"\n\n"+
				"  [[types.attributes]]\n  name = \"content\"\n  source = \"text\"\n  selector = \"p\"\n",
		)))
		item, _ := reg.Get("core/paragraph")
		require.Len(t, item.Attributes, 1)
		require.Equal(t, blocks.SourceText, item.Attributes[0].Source)
	})

	t.Run("unknown source", func(t *testing.T) {
		err := blocktypes.New().Load(strings.NewReader(
			"[[types]]\nname = \"acme/x\"\n\n  [[types.attributes]]\n  name = \"a\"\n  source = \"wibble\"\n",
		))
		require.ErrorContains(t, err, "unknown attribute source")
	})

	t.Run("missing name", func(t *testing.T) {
		err := blocktypes.New().Load(strings.NewReader(
			"[[types]]\nname = \"\"\n",
		))
		require.ErrorContains(t, err, "has no name")
	})

	t.Run("unnamed attribute", func(t *testing.T) {
		err := blocktypes.New().Load(strings.NewReader(
			"[[types]]\nname = \"acme/x\"\n\n  [[types.attributes]]\n  source = \"text\"\n",
		))
		require.ErrorContains(t, err, "unnamed attribute")
	})
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "types.toml")
	require.NoError(t, os.WriteFile(path, []byte(
		"[[types]]\nname = \"acme/widget\"\n",
	), 0o600))

	reg := blocktypes.New()
	require.NoError(t, reg.LoadFile(path))
	_, ok := reg.Get("acme/widget")
	require.True(t, ok)

	require.Error(t, reg.LoadFile(filepath.Join(t.TempDir(), "absent.toml")))
}
