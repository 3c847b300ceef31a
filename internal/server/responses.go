// SPDX-FileCopyrightText: © 2025 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

// Message is used by the server's Msg() method.
type Message struct {
	Status  int     `json:"status"`
	Message string  `json:"message"`
	Errors  []error `json:"-"`
}

// Render converts any value to JSON and sends the response.
func Render(w http.ResponseWriter, r *http.Request, status int, value interface{}) {
	b := &bytes.Buffer{}
	enc := json.NewEncoder(b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		Log(r).Error("encoding error", slog.Any("err", err))
		http.Error(w, http.StatusText(500), 500)
		return
	}

	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
	}
	if status >= 100 {
		w.WriteHeader(status)
	}
	w.Write(b.Bytes())
}

// Msg sends a JSON formatted message response.
func Msg(w http.ResponseWriter, r *http.Request, message *Message) {
	Render(w, r, message.Status, message)

	// Log errors only in debug
	logger := Log(r)
	if message.Status >= 400 && logger.Enabled(context.Background(), slog.LevelDebug) {
		attrs := make([]slog.Attr, 1+len(message.Errors))
		attrs[0] = slog.Int("status", message.Status)
		for i, e := range message.Errors {
			attrs[i+1] = slog.Any("err", e)
		}
		logger.LogAttrs(context.Background(), slog.LevelWarn, message.Message, attrs...)
	}
}

// TextMsg sends a JSON formatted message response with a status and a message.
func TextMsg(w http.ResponseWriter, r *http.Request, status int, msg string) {
	Msg(w, r, &Message{
		Status:  status,
		Message: msg,
	})
}

// Status sends a text plain response with the given status code.
func Status(w http.ResponseWriter, _ *http.Request, status int) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	fmt.Fprintln(w, http.StatusText(status))
}

// Err renders an error.
// If the error is "classic", it returns a 500 response and logs the
// error. If the error provides a StatusCode(), Log() or MarshalJSON()
// method we use them when applicable.
func Err(w http.ResponseWriter, r *http.Request, err error) {
	status := 500
	if e, ok := err.(interface{ StatusCode() int }); ok {
		// If the error has a StatusCode() method, use this instead
		status = e.StatusCode()
	}

	if e, ok := err.(interface{ Log(*slog.Logger) }); ok {
		// If the error has a Log() method, use this instead
		e.Log(Log(r))
	} else if status >= 500 {
		Log(r).Error("server error", slog.Any("err", err))
	}

	if e, ok := err.(json.Marshaler); ok {
		// If the error provides a JSON marshaller, we render it as JSON.
		Render(w, r, status, e)
		return
	}

	msg := err.Error()
	if status >= 500 {
		msg = http.StatusText(status)
	}
	TextMsg(w, r, status, msg)
}
