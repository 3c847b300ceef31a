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
	"strings"

	"github.com/cristalhq/acmd"

	"codeberg.org/readeck/blockdata/internal/posts"
)

func init() {
	commands = append(commands, acmd.Command{
		Name:        "load",
		Description: "Load a post into the database",
		ExecFunc:    runLoad,
	})
}

func runLoad(_ context.Context, args []string) error {
	var title string
	var meta stringsFlag

	var flags appFlags
	fs := flags.Flags()
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: load [arguments...] FILE")
		fmt.Fprintln(fs.Output(), "  FILE")
		fmt.Fprintln(fs.Output(), "    \tcontent file, standard input when \"-\"")
		fs.PrintDefaults()
	}
	fs.StringVar(&title, "title", "", "post title")
	fs.Var(&meta, "meta", "post metadata as name=value, repeatable")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	src := strings.TrimSpace(fs.Arg(0))
	if src == "" {
		return errors.New("content file is required")
	}

	// Metadata values are JSON decoded when possible, so numbers and
	// booleans keep their type. Anything else stays a string.
	type metaPair struct {
		name  string
		value any
	}
	pairs := make([]metaPair, 0, len(meta))
	for _, kv := range meta {
		name, value, found := strings.Cut(kv, "=")
		if !found || name == "" {
			return fmt.Errorf("invalid metadata %q", kv)
		}
		var v any
		if err := json.Unmarshal([]byte(value), &v); err != nil {
			v = value
		}
		pairs = append(pairs, metaPair{name, v})
	}

	if err := appPreRun(&flags); err != nil {
		return err
	}
	if err := openDatabase(); err != nil {
		return err
	}
	defer appPostRun()

	content, err := readInput(src)
	if err != nil {
		return err
	}

	p := &posts.Post{
		Title:   title,
		Content: string(content),
	}
	if err := posts.Posts.Create(p); err != nil {
		return err
	}
	for _, x := range pairs {
		if err := p.SetMeta(x.name, x.value); err != nil {
			return err
		}
	}

	fmt.Printf("%s%s%s%s created (id=%d)\n", bold, colorGreen, p.UID, colorReset, p.ID)
	return nil
}
