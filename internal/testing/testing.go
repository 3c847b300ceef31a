// SPDX-FileCopyrightText: © 2025 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package testing provides tools to test the HTTP routes.
package testing

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/kinbiko/jsonassert"
	"github.com/stretchr/testify/require"

	"codeberg.org/readeck/blockdata/configs"
	"codeberg.org/readeck/blockdata/internal/api"
	"codeberg.org/readeck/blockdata/internal/blocktypes"
	"codeberg.org/readeck/blockdata/internal/db"
	"codeberg.org/readeck/blockdata/internal/metrics"
	"codeberg.org/readeck/blockdata/internal/posts"
	"codeberg.org/readeck/blockdata/internal/server"
	"codeberg.org/readeck/blockdata/pkg/blocks"
)

// TestApp holds information of the application for testing.
type TestApp struct {
	Srv      *server.Server
	Registry *blocktypes.Registry
	Posts    map[string]*posts.Post
}

// NewTestApp initializes TestApp with a default configuration, a few
// posts, and an http muxer ready to accept requests.
func NewTestApp(t *testing.T) *TestApp {
	configs.Config.Main.LogLevel = slog.LevelError
	configs.Config.Database.Source = ":memory:"

	if err := db.Open(configs.Config.Database.Source); err != nil {
		t.Fatal(err)
	}
	// Even when fixture loading fails the connection must not leak into
	// the next test.
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("error closing database: %s", err)
		}
	})

	ta := &TestApp{
		Registry: blocktypes.NewBuiltin(),
		Posts:    map[string]*posts.Post{},
	}
	ta.loadFixtures(t)

	ta.Srv = server.New("")
	api.SetupRoutes(ta.Srv, ta.Registry,
		blocks.WithMetaStore(posts.NewMetaStore(slog.Default())),
		blocks.WithUsageRecorder(metrics.Usage{}),
	)

	return ta
}

func (ta *TestApp) loadFixtures(t *testing.T) {
	ta.Registry.Register(&blocks.BlockType{
		Name: "acme/byline",
		Attributes: []*blocks.Attribute{
			{Name: "author", Source: blocks.SourceMeta, Meta: "author", Default: "staff"},
		},
	})

	for name, p := range map[string]*posts.Post{
		"simple": {
			Title: "Hello",
			Content: `<!-- wp:paragraph --><p>Hello <b>World</b></p><!-- /wp:paragraph -->` +
				`<!-- wp:acme/byline /-->`,
		},
		"noblocks": {
			Title:   "Empty",
			Content: `Plain text without any block delimiter.`,
		},
	} {
		if err := posts.Posts.Create(p); err != nil {
			t.Fatal(err)
		}
		ta.Posts[name] = p
	}

	if err := ta.Posts["simple"].SetMeta("author", "Jane Doe"); err != nil {
		t.Fatal(err)
	}
}

// Client creates a new [Client] instance.
func (ta *TestApp) Client() *Client {
	return &Client{
		app:    ta,
		URL:    &url.URL{Scheme: "http", Host: "blockdata.example.org"},
		Header: http.Header{},
	}
}

// Client is a thin HTTP client over the main server router.
type Client struct {
	app    *TestApp
	URL    *url.URL
	Header http.Header
}

// NewRequest creates a new [http.Request].
//
// body of types [io.Reader], []byte, string or nil are passed as is.
// Otherwise, the body is marshaled and the Content-Type is set to
// "application/json".
func (c *Client) NewRequest(method, target string, body any) (*http.Request, error) {
	header := http.Header{}
	maps.Copy(header, c.Header)

	var b io.Reader

	switch t := body.(type) {
	case io.Reader:
		b = t
	case []byte:
		b = bytes.NewReader(t)
	case string:
		b = strings.NewReader(t)
	case nil:
		b = nil
	default:
		b = new(bytes.Buffer)
		if err := json.NewEncoder(b.(io.Writer)).Encode(t); err != nil {
			return nil, err
		}
		header.Set("Content-Type", "application/json")
	}

	req := httptest.NewRequest(method, target, b)
	req.URL.Host = c.URL.Host
	req.URL.Scheme = c.URL.Scheme
	req.Host = c.URL.Host

	maps.Copy(req.Header, header)

	return req, nil
}

// Request performs a request using httptest tools. It returns a
// Response instance that can be evaluated for testing purposes.
func (c *Client) Request(t *testing.T, req *http.Request) *Response {
	w := httptest.NewRecorder()
	c.app.Srv.ServeHTTP(w, req)

	rsp, err := NewResponse(w, req)
	if err != nil {
		t.Fatal(err)
	}

	return rsp
}

// RT prepares a [RequestTest] and returns a function that receives a
// [testing.T] variable, runs the request and performs the assertions.
func (c *Client) RT(options ...TestOption) func(t *testing.T) bool {
	return func(t *testing.T) bool {
		return c.Run(t, RT(options...))
	}
}

// Run runs the request from [RequestTest] and performs the assertions.
func (c *Client) Run(t *testing.T, rt *RequestTest) bool {
	return t.Run(rt.Name, func(t *testing.T) {
		req, err := c.NewRequest(rt.Method, rt.Target, rt.Body)
		if err != nil {
			t.Fatal(err)
		}
		maps.Copy(req.Header, rt.Header)

		rsp := c.Request(t, req)
		for _, f := range rt.Assert {
			f(t, rsp)
		}
	})
}

// Sequence returns a function that receives a [testing.T] variable and
// runs the given [RequestTest] list.
func (c *Client) Sequence(tests ...*RequestTest) func(t *testing.T) bool {
	return func(t *testing.T) bool {
		for _, rt := range tests {
			if !c.Run(t, rt) {
				return false
			}
		}
		return true
	}
}

type (
	// TestOption is an option for [RequestTest].
	TestOption func(rt *RequestTest)

	// RspAssertion is a [Response] assertion function.
	RspAssertion func(t *testing.T, rsp *Response)

	// RequestTest contains data that are used to perform requests.
	RequestTest struct {
		Name   string
		Method string
		Target string
		Body   any
		Header http.Header
		Assert []RspAssertion
	}
)

// RT creates a new [RequestTest].
func RT(options ...TestOption) *RequestTest {
	rt := &RequestTest{
		Method: http.MethodGet,
		Header: http.Header{},
	}

	for _, f := range options {
		f(rt)
	}

	if rt.Name == "" {
		rt.Name = rt.Method + "[" + rt.Target + "]"
	}

	return rt
}

// WithName sets the [RequestTest.Name].
func WithName(name string) TestOption {
	return func(rt *RequestTest) {
		rt.Name = name
	}
}

// WithMethod sets the [RequestTest.Method].
func WithMethod(method string) TestOption {
	return func(rt *RequestTest) {
		rt.Method = method
	}
}

// WithTarget sets the [RequestTest.Target].
func WithTarget(target string) TestOption {
	return func(rt *RequestTest) {
		rt.Target = target
	}
}

// WithBody sets the [RequestTest.Body].
func WithBody(body any) TestOption {
	return func(rt *RequestTest) {
		rt.Body = body
	}
}

// WithHeader adds a value to [RequestTest.Header].
func WithHeader(name, value string) TestOption {
	return func(rt *RequestTest) {
		rt.Header.Add(name, value)
	}
}

// WithAssert adds an [RspAssertion] to the [RequestTest.Assert].
func WithAssert(assertion RspAssertion) TestOption {
	return func(rt *RequestTest) {
		rt.Assert = append(rt.Assert, assertion)
	}
}

// AssertStatus checks the response's expected status.
func AssertStatus(status int) TestOption {
	return WithAssert(func(t *testing.T, rsp *Response) {
		rsp.AssertStatus(t, status)
	})
}

// AssertContains checks that the response's body contains the expected string.
func AssertContains(expected string) TestOption {
	return WithAssert(func(t *testing.T, rsp *Response) {
		rsp.AssertContains(t, expected)
	})
}

// AssertJSON checks that the response's JSON matches what we expect.
func AssertJSON(expected string) TestOption {
	return WithAssert(func(t *testing.T, rsp *Response) {
		rsp.AssertJSON(t, expected)
	})
}

// Response is a wrapper around [http.Response] that provides
// assertion helpers.
type Response struct {
	*http.Response
	Request *http.Request
	URL     *url.URL
	Body    []byte
	JSON    any
}

// NewResponse creates a new [Response] from a recorder.
func NewResponse(w *httptest.ResponseRecorder, req *http.Request) (*Response, error) {
	r := &Response{
		Response: w.Result(),
		Request:  req,
		URL:      req.URL,
	}

	var err error
	if r.Body, err = io.ReadAll(r.Response.Body); err != nil {
		return nil, err
	}

	if strings.HasPrefix(r.Header.Get("content-type"), "application/json") {
		if err := json.Unmarshal(r.Body, &r.JSON); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// AssertStatus checks the response's expected status.
func (r *Response) AssertStatus(t *testing.T, expected int) {
	require.Equal(t, expected, r.StatusCode)
}

// AssertContains checks that the response's body contains the expected string.
func (r *Response) AssertContains(t *testing.T, expected string) {
	require.Contains(t, string(r.Body), expected)
}

// AssertJSON checks that the response's JSON matches what we expect.
func (r *Response) AssertJSON(t *testing.T, expected string) {
	jsonassert.New(t).Assertf(string(r.Body), "%s", expected)
	if t.Failed() {
		t.Errorf("Received JSON: %s\n", string(r.Body))
		t.FailNow()
	}
}
