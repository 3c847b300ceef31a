// SPDX-FileCopyrightText: © 2025 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package blocktypes provides the registry of block type definitions,
// preloaded with common editor blocks and extensible with TOML
// definition files.
package blocktypes

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/komkom/toml"

	"codeberg.org/readeck/blockdata/pkg/blocks"
)

// Registry is a concurrency safe collection of block type definitions.
type Registry struct {
	mu    sync.RWMutex
	types map[string]*blocks.BlockType
}

// New returns an empty [Registry].
func New() *Registry {
	return &Registry{
		types: map[string]*blocks.BlockType{},
	}
}

// NewBuiltin returns a [Registry] preloaded with the built-in block type
// definitions.
func NewBuiltin() *Registry {
	r := New()
	r.Register(builtin...)
	return r
}

// Register adds definitions to the registry. A definition replaces any
// existing one under the same name.
func (r *Registry) Register(types ...*blocks.BlockType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range types {
		r.types[t.Name] = t
	}
}

// Get returns the definition registered under name.
func (r *Registry) Get(name string) (*blocks.BlockType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[name]
	return t, ok
}

// List returns every registered definition, sorted by name.
func (r *Registry) List() []*blocks.BlockType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res := slices.Collect(maps.Values(r.types))
	slices.SortFunc(res, func(a, b *blocks.BlockType) int {
		return strings.Compare(a.Name, b.Name)
	})
	return res
}

// GetAll implements [blocks.Registry]. It returns a snapshot that later
// registrations leave untouched.
func (r *Registry) GetAll() map[string]*blocks.BlockType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.types)
}

// definitionFile is the shape of a TOML definition file. Definitions
// live in a [[types]] array of tables.
type definitionFile struct {
	Types []*blocks.BlockType `json:"types"`
}

// Load reads TOML block type definitions and registers them.
func (r *Registry) Load(rd io.Reader) error {
	var f definitionFile
	dec := json.NewDecoder(toml.New(rd))
	if err := dec.Decode(&f); err != nil {
		return err
	}

	for i, t := range f.Types {
		if t.Name == "" {
			return fmt.Errorf("definition %d has no name", i+1)
		}
		if err := checkAttributes(t.Name, t.Attributes); err != nil {
			return err
		}
	}

	r.Register(f.Types...)
	return nil
}

// LoadFile loads TOML block type definitions from a file.
func (r *Registry) LoadFile(path string) error {
	fd, err := os.Open(path)
	if err != nil {
		return err
	}
	defer fd.Close() //nolint:errcheck

	if err = r.Load(fd); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func checkAttributes(name string, attributes []*blocks.Attribute) error {
	for _, a := range attributes {
		if a.Name == "" {
			return fmt.Errorf(`block type %q has an unnamed attribute`, name)
		}
		if err := checkAttributes(name, a.Query); err != nil {
			return err
		}
	}
	return nil
}
