// SPDX-FileCopyrightText: © 2025 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package ctxr provides typed access to context storage.
package ctxr

import (
	"context"
)

// Key is a typed handle over a context value. Keys compare by identity;
// two keys created with the same name stay distinct.
type Key[T any] struct {
	name *string
}

// New returns a new [Key] for values of type T. The name only shows up
// in debugging output.
func New[T any](name string) Key[T] {
	return Key[T]{name: &name}
}

// String implements fmt.Stringer.
func (k Key[T]) String() string {
	return "ctxr:" + *k.name
}

// Set returns a new context carrying val.
func (k Key[T]) Set(ctx context.Context, val T) context.Context {
	return context.WithValue(ctx, k.name, val)
}

// Check returns the context value and whether it was present with the
// correct type.
func (k Key[T]) Check(ctx context.Context) (v T, ok bool) {
	v, ok = ctx.Value(k.name).(T)
	return
}

// Get returns the context value. It panics when the value is absent, use
// [Key.Check] when absence is an expected case.
func (k Key[T]) Get(ctx context.Context) T {
	return ctx.Value(k.name).(T)
}
