// SPDX-FileCopyrightText: © 2025 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

package blocks

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
)

// MetaStore provides post metadata lookups to meta sourced attributes.
// Both methods are soft: storage failures must read as absent values.
type MetaStore interface {
	Exists(ctx context.Context, postID int, key string) bool
	Get(ctx context.Context, postID int, key string) any
}

// UsageRecorder receives a notification at the start of every parse call.
// Implementations must not block.
type UsageRecorder interface {
	RecordUsage()
}

// IncludeFunc can override the inclusion decision made for a block by the
// parse filters. It receives the decision made so far and returns the new
// one.
type IncludeFunc func(included bool, name string, block *Block) bool

// TransformFunc can alter a sourced block before it lands in the result.
// Returning nil removes the block.
type TransformFunc func(sourced *SourcedBlock, name string, postID int, block *Block) *SourcedBlock

// Filters restricts the block types included in a parse result. Include
// and Exclude are mutually exclusive.
type Filters struct {
	Include []string
	Exclude []string
}

// Parser sources block attributes using a registry of block type
// definitions. Each call keeps its own state; a Parser is safe for
// concurrent use as long as its registry does not change underneath it.
type Parser struct {
	registry       Registry
	meta           MetaStore
	tokenize       TokenizeFunc
	usage          UsageRecorder
	log            *slog.Logger
	debug          bool
	includeFilters []IncludeFunc
	transforms     []TransformFunc
}

// Option is a configuration function for [NewParser].
type Option func(*Parser)

// WithMetaStore sets the post metadata store backing meta sourced
// attributes.
func WithMetaStore(s MetaStore) Option {
	return func(p *Parser) {
		p.meta = s
	}
}

// WithTokenizer replaces the default block tokenizer.
func WithTokenizer(f TokenizeFunc) Option {
	return func(p *Parser) {
		p.tokenize = f
	}
}

// WithUsageRecorder sets a recorder notified on each parse call.
func WithUsageRecorder(r UsageRecorder) Option {
	return func(p *Parser) {
		p.usage = r
	}
}

// WithLogger sets the parser's logger.
func WithLogger(log *slog.Logger) Option {
	return func(p *Parser) {
		p.log = log
	}
}

// WithDebug enables debug information in parse results.
func WithDebug(enabled bool) Option {
	return func(p *Parser) {
		p.debug = enabled
	}
}

// WithIncludeFilter appends a filter to the block inclusion chain.
func WithIncludeFilter(f IncludeFunc) Option {
	return func(p *Parser) {
		p.includeFilters = append(p.includeFilters, f)
	}
}

// WithTransform appends a transformer applied to every sourced block.
func WithTransform(f TransformFunc) Option {
	return func(p *Parser) {
		p.transforms = append(p.transforms, f)
	}
}

// NewParser returns a [Parser] using the given registry.
func NewParser(registry Registry, options ...Option) *Parser {
	p := &Parser{
		registry: registry,
		tokenize: Tokenize,
		log:      slog.Default(),
	}
	for _, f := range options {
		f(p)
	}
	return p
}

// Result is a successful parse outcome. Blocks is never nil; Warnings
// keeps the order in which warnings occurred, without duplicates.
type Result struct {
	Blocks   []*SourcedBlock `json:"blocks"`
	Warnings []string        `json:"warnings,omitempty"`
	Debug    *Debug          `json:"debug,omitempty"`
}

// Debug is the extra parse information attached to a [Result] when debug
// is enabled. It only adds to the result and never changes its blocks.
type Debug struct {
	Blocks      []*Block                `json:"blocksParsed"`
	Content     string                  `json:"content"`
	Definitions map[string][]*Attribute `json:"attributeDefinitions"`
}

// Parse extracts the sourced representation of every block in content.
// postID provides the metadata context of meta sourced attributes, 0
// meaning no post. A non nil returned error is always a [*Error].
func (p *Parser) Parse(ctx context.Context, content string, postID int, filters Filters) (result *Result, err error) {
	if len(filters.Include) > 0 && len(filters.Exclude) > 0 {
		return nil, newError(ErrInvalidParams, http.StatusBadRequest,
			"cannot provide include and exclude filters at the same time")
	}

	if p.usage != nil {
		p.usage.RecordUsage()
	}

	if !HasBlocks(content) {
		return nil, newError(ErrNoBlocks, http.StatusBadRequest,
			"post %d does not appear to contain blocks; only block content can be parsed", postID)
	}

	// Attribute sourcing walks markup supplied by the outside world; any
	// fault it triggers must surface as a parser error, never as a crash.
	defer func() {
		if rec := recover(); rec != nil {
			p.log.Error("block parsing failed",
				slog.Int("post_id", postID),
				slog.Any("error", rec))
			result = nil
			err = &Error{
				Code:    ErrParser,
				Message: fmt.Sprintf("error parsing blocks of post %d: %v", postID, rec),
				Status:  http.StatusInternalServerError,
				Details: string(debug.Stack()),
			}
		}
	}()

	rawBlocks, err := p.tokenize(content)
	if err != nil {
		return nil, newError(ErrParser, http.StatusInternalServerError,
			"error parsing blocks of post %d: %v", postID, err)
	}

	// Whitespace between top level blocks carries no data.
	topBlocks := make([]*Block, 0, len(rawBlocks))
	for _, b := range rawBlocks {
		if b.isWhitespace() {
			continue
		}
		topBlocks = append(topBlocks, b)
	}

	r := &run{
		p:       p,
		ctx:     ctx,
		postID:  postID,
		filters: filters,
		types:   p.registry.GetAll(),
	}

	sourced := []*SourcedBlock{}
	for _, b := range topBlocks {
		sb, err := r.sourceBlock(b)
		if err != nil {
			return nil, newError(ErrParser, http.StatusInternalServerError,
				"error parsing blocks of post %d: %v", postID, err)
		}
		if sb != nil {
			sourced = append(sourced, sb)
		}
	}

	result = &Result{Blocks: sourced, Warnings: r.warnings}
	if p.debug {
		defs := map[string][]*Attribute{}
		for _, b := range topBlocks {
			collectDefinitions(defs, r.types, b)
		}
		result.Debug = &Debug{Blocks: topBlocks, Content: content, Definitions: defs}
	}
	return result, nil
}

func collectDefinitions(defs map[string][]*Attribute, types map[string]*BlockType, b *Block) {
	if bt, ok := types[b.Name]; ok {
		defs[b.Name] = bt.Attributes
	}
	for _, inner := range b.InnerBlocks {
		collectDefinitions(defs, types, inner)
	}
}
