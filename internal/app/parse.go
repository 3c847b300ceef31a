// SPDX-FileCopyrightText: © 2025 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

package app

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/cristalhq/acmd"
	"golang.org/x/sync/errgroup"

	"codeberg.org/readeck/blockdata/configs"
	"codeberg.org/readeck/blockdata/internal/posts"
	"codeberg.org/readeck/blockdata/pkg/blocks"
)

func init() {
	commands = append(commands, acmd.Command{
		Name:        "parse",
		Description: "Parse block markup files and print their sourced blocks",
		ExecFunc:    runParse,
	})
}

func runParse(ctx context.Context, args []string) error {
	var include, exclude stringsFlag
	var postID int

	var flags appFlags
	fs := flags.Flags()
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: parse [arguments...] [FILE...]")
		fmt.Fprintln(fs.Output(), "  FILE")
		fmt.Fprintln(fs.Output(), "    \tinput files, standard input when empty or \"-\"")
		fs.PrintDefaults()
	}
	fs.Var(&include, "include", "block type to include")
	fs.Var(&include, "i", "block type to include (shorthand)")
	fs.Var(&exclude, "exclude", "block type to exclude")
	fs.Var(&exclude, "x", "block type to exclude (shorthand)")
	fs.IntVar(&postID, "post", 0, "post ID providing the metadata context")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if err := appPreRun(&flags); err != nil {
		return err
	}

	reg, err := loadRegistry()
	if err != nil {
		return err
	}

	options := []blocks.Option{
		blocks.WithDebug(configs.Config.Main.Debug),
	}

	// The database is only needed to resolve metadata.
	if postID > 0 {
		if err := openDatabase(); err != nil {
			return err
		}
		defer appPostRun()
		options = append(options, blocks.WithMetaStore(posts.NewMetaStore(slog.Default())))
	}

	parser := blocks.NewParser(reg, options...)
	filters := blocks.Filters{Include: include, Exclude: exclude}

	files := fs.Args()
	if len(files) == 0 {
		files = []string{"-"}
	}

	results := make([]*blocks.Result, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for i, name := range files {
		g.Go(func() error {
			content, err := readInput(name)
			if err != nil {
				return err
			}

			res, err := parser.Parse(ctx, string(content), postID, filters)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	for i, res := range results {
		for _, w := range res.Warnings {
			fmt.Fprintf(os.Stderr, "%s⚠ %s:%s %s\n", colorYellow, files[i], colorReset, w)
		}
		if err := enc.Encode(res); err != nil {
			return err
		}
	}
	return nil
}
