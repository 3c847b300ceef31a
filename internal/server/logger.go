// SPDX-FileCopyrightText: © 2025 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

package server

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"codeberg.org/readeck/blockdata/pkg/http/request"
)

// Logger is a middleware that logs requests.
func Logger() func(next http.Handler) http.Handler {
	return middleware.RequestLogger(&requestLogger{})
}

type requestLogger struct{}

func (l *requestLogger) NewLogEntry(r *http.Request) middleware.LogEntry {
	e := &logEntry{attrs: []slog.Attr{
		slog.String("@id", GetReqID(r)),
		slog.Group("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote_addr", request.GetRealIP(r.Context()).String()),
		),
	}}
	slog.LogAttrs(context.TODO(), slog.LevelDebug,
		"http "+r.Method+" "+r.URL.Path,
		e.attrs...,
	)

	return e
}

type logEntry struct {
	attrs []slog.Attr
}

func (e *logEntry) Write(status, bytes int, _ http.Header, elapsed time.Duration, _ any) {
	slog.LogAttrs(context.TODO(), slog.LevelInfo,
		"http "+strconv.Itoa(status)+" "+http.StatusText(status),
		append(e.attrs,
			slog.Group("response",
				slog.Int("status", status),
				slog.Int("length", bytes),
				slog.Duration("elapsed", elapsed),
			),
		)...,
	)
}

func (e *logEntry) Panic(v any, _ []byte) {
	e.attrs = append(e.attrs, slog.Any("panic", v))
}
