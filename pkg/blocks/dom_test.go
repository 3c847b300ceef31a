// SPDX-FileCopyrightText: © 2025 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

package blocks_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"codeberg.org/readeck/blockdata/pkg/blocks"
)

func TestScopeFilter(t *testing.T) {
	s, err := blocks.NewScope(`<div class="a"><p>one</p><p>two</p></div><p>three</p>`)
	require.NoError(t, err)

	// The root scope is the document body
	require.Equal(t, 1, s.Count())
	require.Equal(t, "body", s.TagName())

	p := s.Filter("p")
	require.Equal(t, 3, p.Count())

	// Filtering never changes the receiver
	require.Equal(t, 2, s.Filter("div.a").Filter("p").Count())
	require.Equal(t, 3, p.Count())
	require.Equal(t, 1, s.Count())

	require.Equal(t, 0, s.Filter("blockquote").Count())
}

func TestScopeAttr(t *testing.T) {
	s, err := blocks.NewScope(`<figure><img src="image.jpg" alt=""/></figure>`)
	require.NoError(t, err)

	v, ok := s.Filter("img").Attr("src")
	require.True(t, ok)
	require.Equal(t, "image.jpg", v)

	// An empty attribute resolves, a missing one does not
	v, ok = s.Filter("img").Attr("alt")
	require.True(t, ok)
	require.Equal(t, "", v)

	_, ok = s.Filter("img").Attr("title")
	require.False(t, ok)

	_, ok = s.Filter("video").Attr("src")
	require.False(t, ok)
}

func TestScopeText(t *testing.T) {
	s, err := blocks.NewScope(`<figcaption>A <b>nice</b> shot</figcaption><p>other</p>`)
	require.NoError(t, err)

	require.Equal(t, "A nice shot", s.Filter("figcaption").Text())
	// Only the first match is read
	require.Equal(t, "A nice shot", s.Filter("figcaption,p").Text())
}

func TestScopeHTML(t *testing.T) {
	s, err := blocks.NewScope(`<p>Hello <b>World</b></p><p>Second</p>`)
	require.NoError(t, err)

	h, err := s.Filter("p").HTML()
	require.NoError(t, err)
	require.Equal(t, "Hello <b>World</b>", h)

	h, err = s.Filter("p").OuterHTML()
	require.NoError(t, err)
	require.Equal(t, "<p>Hello <b>World</b></p>", h)

	h, err = s.HTML()
	require.NoError(t, err)
	require.Equal(t, "<p>Hello <b>World</b></p><p>Second</p>", h)
}

func TestScopeTagName(t *testing.T) {
	s, err := blocks.NewScope(`<div>block</div><h2>title</h2>`)
	require.NoError(t, err)

	require.Equal(t, "h2", s.Filter("h1,h2,h3").TagName())
	// Document order decides the first match
	require.Equal(t, "div", s.Filter("div,h2").TagName())
	require.Equal(t, "", s.Filter("h4").TagName())
}

func TestScopeEach(t *testing.T) {
	s, err := blocks.NewScope(`<ul><li>one</li><li>two</li><li>three</li></ul>`)
	require.NoError(t, err)

	texts := []string{}
	for sub := range s.Filter("li").Each() {
		require.Equal(t, 1, sub.Count())
		texts = append(texts, sub.Text())
	}
	require.Equal(t, []string{"one", "two", "three"}, texts)
}

func TestScopeTables(t *testing.T) {
	// Table elements need a proper document to keep their structure
	s, err := blocks.NewScope(`<figure><table><thead><tr><th>H</th></tr></thead><tbody><tr><td>B</td></tr></tbody></table></figure>`)
	require.NoError(t, err)

	require.Equal(t, 1, s.Filter("thead tr").Count())
	require.Equal(t, 1, s.Filter("tbody tr").Count())
	require.Equal(t, "th", s.Filter("thead td,thead th").TagName())
	require.Equal(t, "B", s.Filter("tbody td").Text())
}

func TestScopeNode(t *testing.T) {
	s, err := blocks.NewScope(`<p>text</p>`)
	require.NoError(t, err)

	n := s.Filter("p").Node()
	require.NotNil(t, n)
	require.Equal(t, "p", n.Data)

	require.Nil(t, s.Filter("div").Node())
}
