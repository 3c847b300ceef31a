// SPDX-FileCopyrightText: © 2025 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

package blocks

import (
	"encoding/json"
	"fmt"
)

// Error codes carried by [Error].
const (
	ErrInvalidParams = "invalid-params"
	ErrNoBlocks      = "no-blocks"
	ErrParser        = "parser-error"
)

// Error is the structured failure returned by [Parser.Parse]. It carries
// the HTTP status the condition maps to, so it can render as an API
// response without further translation.
type Error struct {
	Code    string
	Message string
	Status  int
	Details string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// StatusCode returns the HTTP status associated with the error.
func (e *Error) StatusCode() int {
	return e.Status
}

// MarshalJSON implements json.Marshaler.
func (e *Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Status  int    `json:"status"`
		Details string `json:"details,omitempty"`
	}{e.Code, e.Message, e.Status, e.Details})
}

func newError(code string, status int, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Status:  status,
	}
}
