// SPDX-FileCopyrightText: © 2025 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

package posts

import (
	"context"
	"log/slog"

	"github.com/doug-martin/goqu/v9"

	"codeberg.org/readeck/blockdata/internal/db"
	"codeberg.org/readeck/blockdata/internal/db/types"
	"codeberg.org/readeck/blockdata/pkg/blocks"
)

// meta is a post metadata record in database.
type meta struct {
	ID     int             `db:"id" goqu:"skipinsert,skipupdate"`
	PostID int             `db:"post_id"`
	Name   string          `db:"name"`
	Value  types.JSONValue `db:"value"`
}

// SetMeta stores a metadata value for the post, replacing any existing
// value under the same name.
func (p *Post) SetMeta(name string, value any) error {
	res, err := db.Q().Update(MetaTableName).Prepared(true).
		Set(goqu.Record{"value": types.JSONValue{V: value}}).
		Where(
			goqu.C("post_id").Eq(p.ID),
			goqu.C("name").Eq(name),
		).
		Executor().Exec()
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}

	_, err = db.Q().Insert(MetaTableName).Prepared(true).
		Rows(meta{
			PostID: p.ID,
			Name:   name,
			Value:  types.JSONValue{V: value},
		}).
		Executor().Exec()
	return err
}

// GetMeta returns a metadata value for the post. The second return value
// is false when no value exists under this name.
func (p *Post) GetMeta(name string) (any, bool, error) {
	var m meta
	found, err := db.Q().From(MetaTableName).Prepared(true).
		Where(
			goqu.C("post_id").Eq(p.ID),
			goqu.C("name").Eq(name),
		).
		ScanStruct(&m)
	if err != nil || !found {
		return nil, false, err
	}
	return m.Value.V, true, nil
}

// MetaStore provides the post metadata lookups performed during
// attribute sourcing. Storage errors read as absent values, they never
// interrupt a parse.
type MetaStore struct {
	log *slog.Logger
}

// NewMetaStore returns a [MetaStore] logging its soft failures to log.
func NewMetaStore(log *slog.Logger) *MetaStore {
	if log == nil {
		log = slog.Default()
	}
	return &MetaStore{log: log}
}

var _ blocks.MetaStore = (*MetaStore)(nil)

// Exists returns true when the post holds a metadata value under key.
func (s *MetaStore) Exists(_ context.Context, postID int, key string) bool {
	count, err := db.Q().From(MetaTableName).Prepared(true).
		Where(
			goqu.C("post_id").Eq(postID),
			goqu.C("name").Eq(key),
		).
		Count()
	if err != nil {
		s.log.Warn("metadata lookup failed",
			slog.Int("post_id", postID),
			slog.String("key", key),
			slog.Any("err", err))
		return false
	}
	return count > 0
}

// Get returns the post's metadata value under key, nil when absent.
func (s *MetaStore) Get(_ context.Context, postID int, key string) any {
	var m meta
	found, err := db.Q().From(MetaTableName).Prepared(true).
		Where(
			goqu.C("post_id").Eq(postID),
			goqu.C("name").Eq(key),
		).
		ScanStruct(&m)
	if err != nil {
		s.log.Warn("metadata lookup failed",
			slog.Int("post_id", postID),
			slog.String("key", key),
			slog.Any("err", err))
		return nil
	}
	if !found {
		return nil
	}
	return m.Value.V
}
