// SPDX-FileCopyrightText: © 2025 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

// blockdata extracts structured attributes from block editor content.
package main

import (
	"os"

	"codeberg.org/readeck/blockdata/internal/app"
)

func main() {
	os.Exit(app.Run())
}
