// SPDX-FileCopyrightText: © 2025 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package db provides the SQLite database connection and its schema
// migrations.
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/doug-martin/goqu/v9"

	// Dialect and driver used by the connection.
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	_ "modernc.org/sqlite"

	"codeberg.org/readeck/blockdata/internal/db/migrations"
)

var database *goqu.Database

// Open opens the database and brings its schema up to date. The source
// is an SQLite path or DSN; ":memory:" provides a transient database.
func Open(source string) error {
	if database != nil {
		return errors.New("database is already open")
	}

	db, err := sql.Open("sqlite", source)
	if err != nil {
		return err
	}

	// SQLite allows one writer only; a single connection avoids lock
	// errors and keeps session pragmas effective.
	db.SetMaxOpenConns(1)

	if _, err = db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return err
	}

	database = goqu.New("sqlite3", db)
	return migrate()
}

// Q returns the database query builder.
func Q() *goqu.Database {
	return database
}

// Close closes the database connection.
func Close() error {
	if database == nil {
		return nil
	}
	defer func() {
		database = nil
	}()
	return database.Db.(*sql.DB).Close()
}

// InsertWithID runs an insert statement and returns the id of the new
// row. The sqlite3 dialect has no RETURNING support, the id comes from
// the driver instead.
func InsertWithID(ds *goqu.InsertDataset) (int, error) {
	res, err := ds.Executor().Exec()
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	return int(id), err
}

// migrate applies every pending migration, using the SQLite user_version
// pragma as the schema version marker.
func migrate() error {
	var version int
	if _, err := database.ScanVal(&version, "PRAGMA user_version"); err != nil {
		return err
	}

	for _, m := range migrations.All() {
		if m.Version <= version {
			continue
		}
		err := database.WithTx(func(tx *goqu.TxDatabase) error {
			if err := m.Run(tx); err != nil {
				return err
			}
			_, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.Version))
			return err
		})
		if err != nil {
			return fmt.Errorf("migration %d: %w", m.Version, err)
		}
		slog.Debug("database migrated", slog.Int("version", m.Version))
	}

	return nil
}
