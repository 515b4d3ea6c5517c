// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package pgerror

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// Error is the flattened form of an error as reported to a SQL client.
type Error struct {
	Code    string
	Message string
	Hint    string
	Detail  string
}

// Error implements the error interface.
func (pg *Error) Error() string { return pg.Message }

// Format renders the error the way the SQL shell displays it.
func (pg *Error) Format(s fmt.State, verb rune) {
	var buf strings.Builder
	fmt.Fprintf(&buf, "ERROR: %s\nSQLSTATE: %s", pg.Message, pg.Code)
	if pg.Detail != "" {
		fmt.Fprintf(&buf, "\nDETAIL: %s", pg.Detail)
	}
	if pg.Hint != "" {
		fmt.Fprintf(&buf, "\nHINT: %s", pg.Hint)
	}
	_, _ = s.Write([]byte(buf.String()))
}

// Flatten turns any error into a pgerror with fields populated. Returns a
// nil ptr if err was nil to start with.
func Flatten(err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    GetPGCode(err).String(),
		Message: err.Error(),
		Hint:    strings.Join(errors.GetAllHints(err), "\n--\n"),
		Detail:  strings.Join(errors.GetAllDetails(err), "\n--\n"),
	}
}
