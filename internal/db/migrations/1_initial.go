// SPDX-FileCopyrightText: © 2025 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

package migrations

import (
	"github.com/doug-martin/goqu/v9"
)

// M1initial creates the post and post_meta tables.
func M1initial(db *goqu.TxDatabase) error {
	statements := []string{
		`CREATE TABLE post (
			id      INTEGER PRIMARY KEY AUTOINCREMENT,
			uid     TEXT NOT NULL UNIQUE,
			created TIMESTAMP NOT NULL,
			updated TIMESTAMP NOT NULL,
			title   TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE post_meta (
			id      INTEGER PRIMARY KEY AUTOINCREMENT,
			post_id INTEGER NOT NULL REFERENCES post (id) ON DELETE CASCADE,
			name    TEXT NOT NULL,
			value   TEXT,
			UNIQUE (post_id, name)
		)`,
		`CREATE INDEX post_meta_post_id_idx ON post_meta (post_id)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
