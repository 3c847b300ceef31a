// SPDX-FileCopyrightText: © 2025 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

package app

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/cristalhq/acmd"
	"golang.org/x/sync/errgroup"

	"codeberg.org/readeck/blockdata/configs"
	"codeberg.org/readeck/blockdata/internal/api"
	"codeberg.org/readeck/blockdata/internal/metrics"
	"codeberg.org/readeck/blockdata/internal/posts"
	"codeberg.org/readeck/blockdata/internal/server"
	"codeberg.org/readeck/blockdata/pkg/blocks"
)

func init() {
	commands = append(commands, acmd.Command{
		Name:        "serve",
		Description: "Start the HTTP server",
		ExecFunc:    runServe,
	})
}

func runServe(ctx context.Context, args []string) error {
	var flags appFlags
	fs := flags.Flags()

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if err := appPreRun(&flags); err != nil {
		return err
	}
	if err := openDatabase(); err != nil {
		return err
	}
	defer appPostRun()

	reg, err := loadRegistry()
	if err != nil {
		return err
	}

	s := server.New(configs.Config.Server.Prefix, configs.TrustedProxies()...)
	api.SetupRoutes(s, reg,
		blocks.WithMetaStore(posts.NewMetaStore(slog.Default())),
		blocks.WithUsageRecorder(metrics.Usage{}),
		blocks.WithDebug(configs.Config.Main.Debug),
	)

	srv := &http.Server{
		Addr: net.JoinHostPort(
			configs.Config.Server.Host,
			strconv.Itoa(configs.Config.Server.Port),
		),
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server started",
			slog.String("addr", srv.Addr),
			slog.String("prefix", s.Prefix()),
		)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		slog.Info("stopping server")

		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	return g.Wait()
}
