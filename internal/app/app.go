// SPDX-FileCopyrightText: © 2025 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package app provides the application commands.
package app

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/cristalhq/acmd"

	"codeberg.org/readeck/blockdata/configs"
	"codeberg.org/readeck/blockdata/internal/blocktypes"
	"codeberg.org/readeck/blockdata/internal/db"
)

// commands hold every application command. Each command file registers
// itself in its init function.
var commands = []acmd.Command{}

const (
	bold        = "\033[1m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorReset  = "\033[0m"
)

// Run starts the command dispatcher and returns the process exit code.
func Run() int {
	r := acmd.RunnerOf(commands, acmd.Config{
		AppName:        "blockdata",
		AppDescription: "Block content attribute sourcing service",
		Version:        configs.Version(),
	})

	if err := r.Run(); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 2
		}
		fmt.Fprintf(os.Stderr, "%s%serror:%s %s\n", bold, colorRed, colorReset, err)
		return 1
	}
	return 0
}

// appFlags holds the flags common to every command.
type appFlags struct {
	configFile string
}

// Flags returns a flag set with the common flags registered.
func (f *appFlags) Flags() *flag.FlagSet {
	fs := flag.NewFlagSet("", flag.ContinueOnError)
	fs.StringVar(&f.configFile, "config", "config.toml", "configuration file")
	return fs
}

// appPreRun loads the configuration and sets up the default logger.
func appPreRun(flags *appFlags) error {
	if err := configs.LoadConfiguration(flags.configFile); err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}
	initLogger()
	return nil
}

// openDatabase opens the database defined in the configuration.
func openDatabase() error {
	return db.Open(configs.Config.Database.Source)
}

// appPostRun releases the resources held by the application.
func appPostRun() {
	if err := db.Close(); err != nil {
		slog.Error("error closing the database", slog.Any("err", err))
	}
}

// loadRegistry returns the block type registry, preloaded with the
// built-in definitions and every definition file from the
// configuration.
func loadRegistry() (*blocktypes.Registry, error) {
	reg := blocktypes.NewBuiltin()
	for _, p := range configs.Config.Registry.Definitions {
		if err := reg.LoadFile(p); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// readInput returns the content of the named file, or of the standard
// input when name is "-".
func readInput(name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(name)
}

// stringsFlag is a repeatable string flag.
type stringsFlag []string

func (f stringsFlag) String() string {
	return strings.Join(f, ",")
}

// Set implements flag.Value.
func (f *stringsFlag) Set(value string) error {
	*f = append(*f, value)
	return nil
}
