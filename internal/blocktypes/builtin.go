// SPDX-FileCopyrightText: © 2025 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

package blocktypes

import (
	"codeberg.org/readeck/blockdata/pkg/blocks"
)

// builtin holds the definitions of the common editor blocks. They mirror
// the sourcing rules the editor itself applies to its core blocks.
var builtin = []*blocks.BlockType{
	{Name: "core/paragraph", Attributes: []*blocks.Attribute{
		{Name: "content", Source: blocks.SourceHTML, Selector: "p"},
		{Name: "dropCap", Default: false},
	}},
	{Name: "core/heading", Attributes: []*blocks.Attribute{
		{Name: "content", Source: blocks.SourceHTML, Selector: "h1,h2,h3,h4,h5,h6"},
		{Name: "anchor", Source: blocks.SourceAttribute, Selector: "*", Attribute: "id"},
		{Name: "level", Default: float64(2)},
	}},
	{Name: "core/quote", Attributes: []*blocks.Attribute{
		{Name: "value", Source: blocks.SourceHTML, Selector: "blockquote", Multiline: "p"},
		{Name: "citation", Source: blocks.SourceHTML, Selector: "cite"},
	}},
	{Name: "core/pullquote", Attributes: []*blocks.Attribute{
		{Name: "value", Source: blocks.SourceHTML, Selector: "blockquote", Multiline: "p"},
		{Name: "citation", Source: blocks.SourceHTML, Selector: "cite"},
	}},
	{Name: "core/code", Attributes: []*blocks.Attribute{
		{Name: "content", Source: blocks.SourceHTML, Selector: "code"},
	}},
	{Name: "core/preformatted", Attributes: []*blocks.Attribute{
		{Name: "content", Source: blocks.SourceHTML, Selector: "pre"},
	}},
	{Name: "core/verse", Attributes: []*blocks.Attribute{
		{Name: "content", Source: blocks.SourceHTML, Selector: "pre"},
	}},
	{Name: "core/image", Attributes: []*blocks.Attribute{
		{Name: "url", Source: blocks.SourceAttribute, Selector: "img", Attribute: "src"},
		{Name: "alt", Source: blocks.SourceAttribute, Selector: "img", Attribute: "alt", Default: ""},
		{Name: "title", Source: blocks.SourceAttribute, Selector: "img", Attribute: "title"},
		{Name: "caption", Source: blocks.SourceHTML, Selector: "figcaption"},
		{Name: "href", Source: blocks.SourceAttribute, Selector: "figure > a", Attribute: "href"},
	}},
	{Name: "core/gallery", Attributes: []*blocks.Attribute{
		{Name: "images", Source: blocks.SourceQuery, Selector: ".blocks-gallery-item", Query: []*blocks.Attribute{
			{Name: "url", Source: blocks.SourceAttribute, Selector: "img", Attribute: "src"},
			{Name: "link", Source: blocks.SourceAttribute, Selector: "img", Attribute: "data-link"},
			{Name: "alt", Source: blocks.SourceAttribute, Selector: "img", Attribute: "alt", Default: ""},
			{Name: "id", Source: blocks.SourceAttribute, Selector: "img", Attribute: "data-id"},
			{Name: "caption", Source: blocks.SourceHTML, Selector: "figcaption"},
		}},
		{Name: "caption", Source: blocks.SourceHTML, Selector: ".blocks-gallery-caption"},
	}},
	{Name: "core/list", Attributes: []*blocks.Attribute{
		{Name: "values", Source: blocks.SourceHTML, Selector: "ol,ul", Multiline: "li"},
		{Name: "ordered", Default: false},
	}},
	{Name: "core/list-item", Attributes: []*blocks.Attribute{
		{Name: "content", Source: blocks.SourceHTML, Selector: "li"},
	}},
	{Name: "core/table", Attributes: []*blocks.Attribute{
		{Name: "caption", Source: blocks.SourceHTML, Selector: "figcaption"},
		{Name: "head", Source: blocks.SourceQuery, Selector: "thead tr", Query: tableCells},
		{Name: "body", Source: blocks.SourceQuery, Selector: "tbody tr", Query: tableCells},
		{Name: "foot", Source: blocks.SourceQuery, Selector: "tfoot tr", Query: tableCells},
		{Name: "hasFixedLayout", Default: false},
	}},
	{Name: "core/audio", Attributes: []*blocks.Attribute{
		{Name: "src", Source: blocks.SourceAttribute, Selector: "audio", Attribute: "src"},
		{Name: "caption", Source: blocks.SourceHTML, Selector: "figcaption"},
		{Name: "autoplay", Source: blocks.SourceAttribute, Selector: "audio", Attribute: "autoplay"},
		{Name: "loop", Source: blocks.SourceAttribute, Selector: "audio", Attribute: "loop"},
		{Name: "preload", Source: blocks.SourceAttribute, Selector: "audio", Attribute: "preload"},
	}},
	{Name: "core/video", Attributes: []*blocks.Attribute{
		{Name: "src", Source: blocks.SourceAttribute, Selector: "video", Attribute: "src"},
		{Name: "poster", Source: blocks.SourceAttribute, Selector: "video", Attribute: "poster"},
		{Name: "caption", Source: blocks.SourceHTML, Selector: "figcaption"},
		{Name: "autoplay", Source: blocks.SourceAttribute, Selector: "video", Attribute: "autoplay"},
		{Name: "controls", Source: blocks.SourceAttribute, Selector: "video", Attribute: "controls"},
		{Name: "loop", Source: blocks.SourceAttribute, Selector: "video", Attribute: "loop"},
		{Name: "muted", Source: blocks.SourceAttribute, Selector: "video", Attribute: "muted"},
	}},
	{Name: "core/file", Attributes: []*blocks.Attribute{
		{Name: "href", Source: blocks.SourceAttribute, Selector: "a:not([download])", Attribute: "href"},
		{Name: "fileName", Source: blocks.SourceHTML, Selector: "a:not([download])"},
		{Name: "downloadButtonText", Source: blocks.SourceHTML, Selector: "a[download]"},
		{Name: "showDownloadButton", Default: true},
	}},
	{Name: "core/button", Attributes: []*blocks.Attribute{
		{Name: "url", Source: blocks.SourceAttribute, Selector: "a", Attribute: "href"},
		{Name: "text", Source: blocks.SourceHTML, Selector: "a"},
		{Name: "linkTarget", Source: blocks.SourceAttribute, Selector: "a", Attribute: "target"},
		{Name: "rel", Source: blocks.SourceAttribute, Selector: "a", Attribute: "rel"},
	}},
	{Name: "core/buttons"},
	{Name: "core/group", Attributes: []*blocks.Attribute{
		{Name: "tagName", Source: blocks.SourceTag, Default: "div"},
	}},
	{Name: "core/columns"},
	{Name: "core/column"},
	{Name: "core/cover", Attributes: []*blocks.Attribute{
		{Name: "url", Source: blocks.SourceAttribute, Selector: "img", Attribute: "src"},
		{Name: "alt", Source: blocks.SourceAttribute, Selector: "img", Attribute: "alt", Default: ""},
		{Name: "hasParallax", Default: false},
	}},
	{Name: "core/media-text", Attributes: []*blocks.Attribute{
		{Name: "mediaUrl", Source: blocks.SourceAttribute, Selector: "figure img", Attribute: "src"},
		{Name: "mediaAlt", Source: blocks.SourceAttribute, Selector: "figure img", Attribute: "alt", Default: ""},
	}},
	{Name: "core/separator", Attributes: []*blocks.Attribute{
		{Name: "opacity", Default: "alpha-channel"},
	}},
	{Name: "core/more", Attributes: []*blocks.Attribute{
		{Name: "noTeaser", Default: false},
	}},
	{Name: "core/embed", Attributes: []*blocks.Attribute{
		{Name: "caption", Source: blocks.SourceHTML, Selector: "figcaption"},
	}},
	{Name: "core/html", Attributes: []*blocks.Attribute{
		{Name: "content", Source: blocks.SourceRaw},
	}},
	{Name: "core/freeform", Attributes: []*blocks.Attribute{
		{Name: "content", Source: blocks.SourceRaw},
	}},
}

// tableCells sources one record per table cell, keeping the cell markup,
// its tag and its scope attribute.
var tableCells = []*blocks.Attribute{
	{Name: "cells", Source: blocks.SourceQuery, Selector: "td,th", Query: []*blocks.Attribute{
		{Name: "content", Source: blocks.SourceHTML},
		{Name: "tag", Source: blocks.SourceTag, Default: "td"},
		{Name: "scope", Source: blocks.SourceAttribute, Attribute: "scope"},
	}},
}
