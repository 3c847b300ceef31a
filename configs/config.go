// SPDX-FileCopyrightText: © 2025 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package configs handles the application configuration. Values are
// loaded from an optional TOML file and can then be overridden by
// environment variables prefixed with BLOCKDATA_.
package configs

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"os"
	"runtime/debug"

	"github.com/caarlos0/env/v11"
	"github.com/komkom/toml"
)

type config struct {
	Main     configMain     `json:"main" envPrefix:"MAIN_"`
	Server   configServer   `json:"server" envPrefix:"SERVER_"`
	Database configDatabase `json:"database" envPrefix:"DATABASE_"`
	Registry configRegistry `json:"registry" envPrefix:"REGISTRY_"`
}

type configMain struct {
	LogLevel slog.Level `json:"log_level" env:"LOG_LEVEL"`
	DevMode  bool       `json:"dev_mode" env:"DEV_MODE"`
	Debug    bool       `json:"debug" env:"DEBUG"`
}

type configServer struct {
	Host           string   `json:"host" env:"HOST"`
	Port           int      `json:"port" env:"PORT"`
	Prefix         string   `json:"prefix" env:"PREFIX"`
	TrustedProxies []string `json:"trusted_proxies" env:"TRUSTED_PROXIES"`
}

type configDatabase struct {
	Source string `json:"source" env:"SOURCE"`
}

type configRegistry struct {
	Definitions []string `json:"definitions" env:"DEFINITIONS" envSeparator:":"`
}

// Config holds the current configuration.
var Config = config{
	Main: configMain{
		LogLevel: slog.LevelInfo,
	},
	Server: configServer{
		Host: "127.0.0.1",
		Port: 8000,
	},
	Database: configDatabase{
		Source: "data/db.sqlite3",
	},
}

// LoadConfiguration loads the configuration from a TOML file and applies
// the environment overrides. A missing file is not an error, the
// defaults and environment then fully define the configuration.
func LoadConfiguration(filename string) error {
	if filename != "" {
		fd, err := os.Open(filename)
		switch {
		case err == nil:
			dec := json.NewDecoder(toml.New(fd))
			err = dec.Decode(&Config)
			fd.Close()
			if err != nil {
				return fmt.Errorf("%s: %w", filename, err)
			}
		case !errors.Is(err, fs.ErrNotExist):
			return err
		}
	}

	return env.ParseWithOptions(&Config, env.Options{Prefix: "BLOCKDATA_"})
}

// TrustedProxies returns the proxy addresses from which the forwarded
// request headers can be trusted. Entries are CIDR networks or plain
// IP addresses. Invalid entries are ignored.
func TrustedProxies() []*net.IPNet {
	res := make([]*net.IPNet, 0, len(Config.Server.TrustedProxies))
	for _, x := range Config.Server.TrustedProxies {
		if _, n, err := net.ParseCIDR(x); err == nil {
			res = append(res, n)
			continue
		}
		if ip := net.ParseIP(x); ip != nil {
			bits := 32
			if ip.To4() == nil {
				bits = 128
			}
			res = append(res, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
		}
	}
	return res
}

var version = "dev"

// Version returns the application version.
func Version() string {
	if version != "dev" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			return info.Main.Version
		}
	}
	return version
}
