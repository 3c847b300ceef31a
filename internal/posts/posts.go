// SPDX-FileCopyrightText: © 2025 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package posts provides the stored post contents and their metadata.
package posts

import (
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"codeberg.org/readeck/blockdata/internal/db"
	"codeberg.org/readeck/blockdata/internal/db/scanner"
)

const (
	// TableName is the post database table.
	TableName = "post"

	// MetaTableName is the post metadata database table.
	MetaTableName = "post_meta"
)

var (
	// Posts is the model manager for [Post] instances.
	Posts = Manager{}

	// ErrNotFound is returned when a post record was not found.
	ErrNotFound = errors.New("not found")
)

// Post is a content record in database.
type Post struct {
	ID      int       `db:"id" goqu:"skipinsert,skipupdate"`
	UID     string    `db:"uid"`
	Created time.Time `db:"created" goqu:"skipupdate"`
	Updated time.Time `db:"updated"`
	Title   string    `db:"title"`
	Content string    `db:"content"`
}

// Manager is a query helper for post entries.
type Manager struct{}

// Query returns a prepared [goqu.SelectDataset] that can be extended later.
func (m *Manager) Query() *goqu.SelectDataset {
	return db.Q().From(goqu.T(TableName).As("p")).Prepared(true)
}

// GetOne executes a select query and returns the first result or an error
// when there's no result.
func (m *Manager) GetOne(expressions ...goqu.Expression) (*Post, error) {
	var p Post
	found, err := m.Query().Where(expressions...).ScanStruct(&p)

	switch {
	case err != nil:
		return nil, err
	case !found:
		return nil, ErrNotFound
	}

	return &p, nil
}

// GetByID returns the post with the given ID.
func (m *Manager) GetByID(id int) (*Post, error) {
	return m.GetOne(goqu.C("id").Eq(id))
}

// GetByUID returns the post with the given UID.
func (m *Manager) GetByUID(uid string) (*Post, error) {
	return m.GetOne(goqu.C("uid").Eq(uid))
}

// All returns an iterator over every post, most recent first.
func (m *Manager) All() scanner.Iterator[Post] {
	return scanner.Iter[Post](m.Query().Order(goqu.C("created").Desc()))
}

// Create inserts a new post in the database.
func (m *Manager) Create(post *Post) error {
	post.Created = time.Now().UTC()
	post.Updated = post.Created
	post.UID = uuid.NewString()

	ds := db.Q().Insert(TableName).
		Rows(post).
		Prepared(true)

	id, err := db.InsertWithID(ds)
	if err != nil {
		return err
	}

	post.ID = id
	return nil
}

// Update updates some post values.
func (p *Post) Update(v interface{}) error {
	if p.ID == 0 {
		return errors.New("no ID")
	}

	_, err := db.Q().Update(TableName).Prepared(true).
		Set(v).
		Where(goqu.C("id").Eq(p.ID)).
		Executor().Exec()

	return err
}

// Save updates all the post values.
func (p *Post) Save() error {
	p.Updated = time.Now().UTC()
	return p.Update(p)
}

// Delete removes a post and its metadata from the database.
func (p *Post) Delete() error {
	_, err := db.Q().Delete(TableName).Prepared(true).
		Where(goqu.C("id").Eq(p.ID)).
		Executor().Exec()

	return err
}
