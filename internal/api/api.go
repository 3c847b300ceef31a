// SPDX-FileCopyrightText: © 2025 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package api provides the block sourcing HTTP API.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"

	"codeberg.org/readeck/blockdata/configs"
	"codeberg.org/readeck/blockdata/internal/blocktypes"
	"codeberg.org/readeck/blockdata/internal/metrics"
	"codeberg.org/readeck/blockdata/internal/posts"
	"codeberg.org/readeck/blockdata/internal/server"
	"codeberg.org/readeck/blockdata/pkg/blocks"
)

// maxContentSize is the biggest post content accepted by the parse
// route.
const maxContentSize = 8 << 20

// blocksAPI is the block sourcing API router.
type blocksAPI struct {
	chi.Router
	srv      *server.Server
	registry *blocktypes.Registry
	parser   *blocks.Parser
}

// SetupRoutes mounts the API routes and the Prometheus endpoint on the
// server. The options are passed to the parser used by all routes.
func SetupRoutes(s *server.Server, registry *blocktypes.Registry, options ...blocks.Option) {
	api := newBlocksAPI(s, registry, options...)
	s.AddRoute("/api", api)
	s.AddRoute("/metrics", metrics.Handler())
}

// newBlocksAPI returns a blocksAPI with its routes set up.
func newBlocksAPI(s *server.Server, registry *blocktypes.Registry, options ...blocks.Option) *blocksAPI {
	r := chi.NewRouter()
	api := &blocksAPI{r, s, registry, blocks.NewParser(registry, options...)}

	r.Get("/info", api.serverInfo)
	r.Post("/parse", api.parseContent)
	r.Get("/posts/{id}/blocks", api.postBlocks)
	r.Get("/blocktypes", api.blockTypeList)

	return api
}

// serverInfo returns the server information.
func (api *blocksAPI) serverInfo(w http.ResponseWriter, r *http.Request) {
	server.Render(w, r, http.StatusOK, map[string]string{
		"name":    "blockdata",
		"version": configs.Version(),
	})
}

// parsePayload is the JSON alternative to a raw markup body on the
// parse route.
type parsePayload struct {
	Content string   `json:"content"`
	PostID  int      `json:"postId"`
	Include []string `json:"include"`
	Exclude []string `json:"exclude"`
}

// parseContent sources the blocks of the content carried by the request
// body. The body is either raw block markup or a JSON payload wrapping
// the content with a post ID and filters.
func (api *blocksAPI) parseContent(w http.ResponseWriter, r *http.Request) {
	var content string
	var postID int
	filters := filterParams(r)

	body, err := readBody(w, r)
	if err != nil {
		server.TextMsg(w, r, http.StatusRequestEntityTooLarge, "content too large")
		return
	}

	if isJSONRequest(r) {
		var payload parsePayload
		if err := json.Unmarshal(body, &payload); err != nil {
			server.TextMsg(w, r, http.StatusBadRequest, "invalid JSON payload")
			return
		}
		content = payload.Content
		postID = payload.PostID
		if payload.Include != nil {
			filters.Include = payload.Include
		}
		if payload.Exclude != nil {
			filters.Exclude = payload.Exclude
		}
	} else {
		// Only sniffed text content can be block markup. This catches
		// clients sending files as they are.
		if len(body) > 0 {
			if mtype := mimetype.Detect(body); !strings.HasPrefix(mtype.String(), "text/") {
				server.TextMsg(w, r, http.StatusUnsupportedMediaType,
					"unsupported content type "+mtype.String())
				return
			}
		}
		content = string(body)
	}

	api.renderBlocks(w, r, content, postID, filters)
}

// postBlocks sources the blocks of a stored post's content, with the
// post as metadata context.
func (api *blocksAPI) postBlocks(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		server.TextMsg(w, r, http.StatusBadRequest, "invalid post ID")
		return
	}

	p, err := posts.Posts.GetByID(id)
	if err != nil {
		if errors.Is(err, posts.ErrNotFound) {
			server.TextMsg(w, r, http.StatusNotFound, "post not found")
			return
		}
		server.Err(w, r, err)
		return
	}

	api.renderBlocks(w, r, p.Content, p.ID, filterParams(r))
}

// blockTypeList returns every registered block type definition.
func (api *blocksAPI) blockTypeList(w http.ResponseWriter, r *http.Request) {
	server.Render(w, r, http.StatusOK, api.registry.List())
}

func (api *blocksAPI) renderBlocks(w http.ResponseWriter, r *http.Request,
	content string, postID int, filters blocks.Filters,
) {
	start := time.Now()
	res, err := api.parser.Parse(r.Context(), content, postID, filters)
	metrics.ObserveParse(time.Since(start), res, err)

	if err != nil {
		server.Err(w, r, err)
		return
	}
	server.Render(w, r, http.StatusOK, res)
}

// filterParams reads the include and exclude filters from the request's
// query string. Both are comma separated block type names.
func filterParams(r *http.Request) blocks.Filters {
	return blocks.Filters{
		Include: splitParam(r.URL.Query().Get("include")),
		Exclude: splitParam(r.URL.Query().Get("exclude")),
	}
}

func splitParam(value string) []string {
	var res []string
	for p := range strings.SplitSeq(value, ",") {
		if p = strings.TrimSpace(p); p != "" {
			res = append(res, p)
		}
	}
	return res
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	return io.ReadAll(http.MaxBytesReader(w, r.Body, maxContentSize))
}

func isJSONRequest(r *http.Request) bool {
	ct, _, _ := strings.Cut(r.Header.Get("Content-Type"), ";")
	switch strings.TrimSpace(strings.ToLower(ct)) {
	case "application/json", "text/json":
		return true
	}
	return false
}
