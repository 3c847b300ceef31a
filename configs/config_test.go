// SPDX-FileCopyrightText: © 2025 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

package configs

import (
	"log/slog"
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfiguration(t *testing.T) {
	saved := Config
	t.Cleanup(func() { Config = saved })

	t.Run("defaults", func(t *testing.T) {
		Config = saved
		require.NoError(t, LoadConfiguration(""))
		require.Equal(t, slog.LevelInfo, Config.Main.LogLevel)
		require.Equal(t, "127.0.0.1", Config.Server.Host)
		require.Equal(t, 8000, Config.Server.Port)
		require.Equal(t, "data/db.sqlite3", Config.Database.Source)
	})

	t.Run("file", func(t *testing.T) {
		Config = saved
		filename := path.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(filename, []byte(`
[main]
log_level = "DEBUG"
dev_mode = true

[server]
host = "0.0.0.0"
port = 9000
prefix = "/blockdata"

[database]
source = ":memory:"

[registry]
definitions = ["blocks.toml"]
`), 0o600))

		require.NoError(t, LoadConfiguration(filename))
		require.Equal(t, slog.LevelDebug, Config.Main.LogLevel)
		require.True(t, Config.Main.DevMode)
		require.Equal(t, "0.0.0.0", Config.Server.Host)
		require.Equal(t, 9000, Config.Server.Port)
		require.Equal(t, "/blockdata", Config.Server.Prefix)
		require.Equal(t, ":memory:", Config.Database.Source)
		require.Equal(t, []string{"blocks.toml"}, Config.Registry.Definitions)
	})

	t.Run("missing file", func(t *testing.T) {
		Config = saved
		require.NoError(t, LoadConfiguration(path.Join(t.TempDir(), "nope.toml")))
		require.Equal(t, 8000, Config.Server.Port)
	})

	t.Run("invalid file", func(t *testing.T) {
		Config = saved
		filename := path.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(filename, []byte(`[server]
port = "not a number"
`), 0o600))
		require.Error(t, LoadConfiguration(filename))
	})

	t.Run("environment", func(t *testing.T) {
		Config = saved
		t.Setenv("BLOCKDATA_MAIN_LOG_LEVEL", "WARN")
		t.Setenv("BLOCKDATA_SERVER_PORT", "8080")
		t.Setenv("BLOCKDATA_REGISTRY_DEFINITIONS", "a.toml:b.toml")

		require.NoError(t, LoadConfiguration(""))
		require.Equal(t, slog.LevelWarn, Config.Main.LogLevel)
		require.Equal(t, 8080, Config.Server.Port)
		require.Equal(t, []string{"a.toml", "b.toml"}, Config.Registry.Definitions)
	})
}

func TestTrustedProxies(t *testing.T) {
	saved := Config
	t.Cleanup(func() { Config = saved })

	Config.Server.TrustedProxies = []string{
		"10.0.0.0/8",
		"192.168.1.10",
		"fd00::1",
		"not an address",
	}

	res := TrustedProxies()
	require.Len(t, res, 3)
	require.Equal(t, "10.0.0.0/8", res[0].String())
	require.Equal(t, "192.168.1.10/32", res[1].String())
	require.Equal(t, "fd00::1/128", res[2].String())
}
