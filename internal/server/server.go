// SPDX-FileCopyrightText: © 2025 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package server is the main Blockdata HTTP server.
// It defines common middlewares and response helpers.
package server

import (
	"log/slog"
	"net"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"codeberg.org/readeck/blockdata/internal/metrics"
	"codeberg.org/readeck/blockdata/pkg/http/request"
)

// Server is a wrapper around chi router.
type Server struct {
	*chi.Mux
	prefix string
}

// New creates a new server. Routes must be added manually before
// calling ListenAndServe.
func New(prefix string, trustedProxies ...*net.IPNet) *Server {
	s := &Server{
		Mux:    chi.NewRouter(),
		prefix: path.Join("/", prefix),
	}

	s.Use(
		middleware.Recoverer,
		request.InitRequest(trustedProxies...),
		Logger(),
		metrics.Middleware,
		SetSecurityHeaders,
		CompressResponse,
		CannonicalPaths,
	)

	return s
}

// Prefix returns the server's path prefix.
func (s *Server) Prefix() string {
	return s.prefix
}

// AddRoute adds a new route to the server, prefixed with the server's
// path prefix.
func (s *Server) AddRoute(pattern string, handler http.Handler) {
	s.Mount(path.Join(s.prefix, pattern), handler)
}

// GetReqID returns the request ID.
func GetReqID(r *http.Request) string {
	return request.GetReqID(r.Context())
}

// Log returns a log entry including the request ID.
func Log(r *http.Request) *slog.Logger {
	return slog.With(slog.String("@id", GetReqID(r)))
}
