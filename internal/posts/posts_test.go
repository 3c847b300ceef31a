// SPDX-FileCopyrightText: © 2025 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

package posts_test

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"codeberg.org/readeck/blockdata/internal/db"
	"codeberg.org/readeck/blockdata/internal/posts"
	"codeberg.org/readeck/blockdata/pkg/blocks"
)

func TestMain(m *testing.M) {
	if err := db.Open(":memory:"); err != nil {
		panic(err)
	}
	code := m.Run()
	db.Close() //nolint:errcheck
	os.Exit(code)
}

func TestPosts(t *testing.T) {
	assert := require.New(t)

	p := &posts.Post{
		Title:   "Test post",
		Content: "<!-- wp:paragraph --><p>Hello</p><!-- /wp:paragraph -->",
	}
	assert.NoError(posts.Posts.Create(p))
	assert.Greater(p.ID, 0)
	assert.NotEmpty(p.UID)
	assert.False(p.Created.IsZero())

	// The driver provides the new row id, each create gets its own
	p2 := &posts.Post{Title: "Second post"}
	assert.NoError(posts.Posts.Create(p2))
	assert.Greater(p2.ID, p.ID)
	assert.NoError(p2.Delete())

	found, err := posts.Posts.GetByID(p.ID)
	assert.NoError(err)
	assert.Equal(p.Title, found.Title)
	assert.Equal(p.Content, found.Content)

	byUID, err := posts.Posts.GetByUID(p.UID)
	assert.NoError(err)
	assert.Equal(p.ID, byUID.ID)

	_, err = posts.Posts.GetByID(10000)
	assert.ErrorIs(err, posts.ErrNotFound)

	found.Title = "Updated"
	assert.NoError(found.Save())
	found, err = posts.Posts.GetByID(p.ID)
	assert.NoError(err)
	assert.Equal("Updated", found.Title)

	count := 0
	for item, err := range posts.Posts.All() {
		assert.NoError(err)
		assert.NotEmpty(item.UID)
		count++
	}
	assert.Equal(1, count)

	assert.NoError(found.Delete())
	_, err = posts.Posts.GetByID(p.ID)
	assert.ErrorIs(err, posts.ErrNotFound)
}

func TestPostMeta(t *testing.T) {
	assert := require.New(t)

	p := &posts.Post{Title: "With metadata"}
	assert.NoError(posts.Posts.Create(p))

	assert.NoError(p.SetMeta("author_name", "Jane Doe"))
	assert.NoError(p.SetMeta("rating", 4.5))
	assert.NoError(p.SetMeta("tags", []string{"go", "blocks"}))

	v, ok, err := p.GetMeta("author_name")
	assert.NoError(err)
	assert.True(ok)
	assert.Equal("Jane Doe", v)

	v, ok, err = p.GetMeta("rating")
	assert.NoError(err)
	assert.True(ok)
	assert.Equal(4.5, v)

	v, ok, err = p.GetMeta("tags")
	assert.NoError(err)
	assert.True(ok)
	assert.Equal([]any{"go", "blocks"}, v)

	_, ok, err = p.GetMeta("nope")
	assert.NoError(err)
	assert.False(ok)

	// Values replace existing ones
	assert.NoError(p.SetMeta("author_name", "John Doe"))
	v, _, err = p.GetMeta("author_name")
	assert.NoError(err)
	assert.Equal("John Doe", v)
}

func TestMetaStore(t *testing.T) {
	assert := require.New(t)

	p := &posts.Post{Title: "Store backed"}
	assert.NoError(posts.Posts.Create(p))
	assert.NoError(p.SetMeta("author_name", "Jane Doe"))

	store := posts.NewMetaStore(nil)
	ctx := context.Background()

	assert.True(store.Exists(ctx, p.ID, "author_name"))
	assert.False(store.Exists(ctx, p.ID, "nope"))
	assert.False(store.Exists(ctx, 10000, "author_name"))

	assert.Equal("Jane Doe", store.Get(ctx, p.ID, "author_name"))
	assert.Nil(store.Get(ctx, p.ID, "nope"))
	assert.Nil(store.Get(ctx, 10000, "author_name"))

	// Metadata goes away with its post
	assert.NoError(p.Delete())
	assert.False(store.Exists(ctx, p.ID, "author_name"))
}

func TestMetaStoreParse(t *testing.T) {
	assert := require.New(t)

	p := &posts.Post{
		Title:   "Sourced from storage",
		Content: `<!-- wp:acme/byline --><div>byline</div><!-- /wp:acme/byline -->`,
	}
	assert.NoError(posts.Posts.Create(p))
	assert.NoError(p.SetMeta("author_name", "Jane Doe"))

	registry := blocks.RegistryMap{
		"acme/byline": {Name: "acme/byline", Attributes: []*blocks.Attribute{
			{Name: "author", Source: blocks.SourceMeta, Meta: "author_name", Default: "staff"},
		}},
	}
	parser := blocks.NewParser(registry, blocks.WithMetaStore(posts.NewMetaStore(nil)))

	res, err := parser.Parse(context.Background(), p.Content, p.ID, blocks.Filters{})
	assert.NoError(err)

	out := new(strings.Builder)
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	assert.NoError(enc.Encode(res))
	assert.JSONEq(
		`{"blocks": [{"name": "acme/byline", "attributes": {"author": "Jane Doe"}}]}`,
		out.String())
}
