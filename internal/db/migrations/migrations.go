// SPDX-FileCopyrightText: © 2025 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package migrations holds the database schema migrations.
package migrations

import (
	"github.com/doug-martin/goqu/v9"
)

// Migration is a single schema migration step.
type Migration struct {
	Version int
	Run     func(*goqu.TxDatabase) error
}

// All returns every migration, in version order.
func All() []Migration {
	return []Migration{
		{1, M1initial},
	}
}
