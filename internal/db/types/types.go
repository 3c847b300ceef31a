// SPDX-FileCopyrightText: © 2025 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package types provides data types for database columns.
package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONValue stores any JSON encodable value in a text column. A NULL
// column reads as a nil value.
type JSONValue struct {
	V any
}

// Value implements driver.Valuer.
func (v JSONValue) Value() (driver.Value, error) {
	if v.V == nil {
		return nil, nil
	}
	data, err := json.Marshal(v.V)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (v *JSONValue) Scan(src any) error {
	v.V = nil
	if src == nil {
		return nil
	}

	var data []byte
	switch x := src.(type) {
	case []byte:
		data = x
	case string:
		data = []byte(x)
	default:
		return fmt.Errorf("unsupported type %T", src)
	}

	return json.Unmarshal(data, &v.V)
}
