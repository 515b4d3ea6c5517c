// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package clierror reports command errors to the user and maps them to
// process exit codes.
package clierror

import (
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/usercatalog/pkg/cli/exit"
	"github.com/cockroachdb/usercatalog/pkg/kv"
	"github.com/cockroachdb/usercatalog/pkg/sql/pgwire/pgerror"
)

// Error wraps an error with an explicit exit code.
type Error struct {
	exitCode exit.Code
	cause    error
}

// NewError wraps err with exitCode.
func NewError(err error, exitCode exit.Code) error {
	return &Error{exitCode: exitCode, cause: err}
}

// Error implements the error interface.
func (e *Error) Error() string { return e.cause.Error() }

// Cause implements causer.
func (e *Error) Cause() error { return e.cause }

// Unwrap implements the Go 1.13 wrapper interface.
func (e *Error) Unwrap() error { return e.cause }

// Format implements fmt.Formatter.
func (e *Error) Format(s fmt.State, verb rune) { errors.FormatError(e, s, verb) }

// FormatError implements errors.Formatter.
func (e *Error) FormatError(p errors.Printer) error {
	if p.Detail() {
		p.Printf("error with exit code: %s", e.exitCode)
	}
	return e.cause
}

// ExitCode returns the exit code for err: the one of an explicit Error,
// otherwise one derived from the kv error markers.
func ExitCode(err error) exit.Code {
	var cliErr *Error
	switch {
	case err == nil:
		return exit.Success()
	case errors.As(err, &cliErr):
		return cliErr.exitCode
	case kv.IsAmbiguousResult(err):
		return exit.StatementOutcomeUnknown()
	case kv.IsUnavailable(err):
		return exit.MetaNodeUnavailable()
	}
	return exit.UnspecifiedError()
}

// OutputError prints err to w the way the SQL shell displays errors.
func OutputError(w io.Writer, err error) {
	fmt.Fprintf(w, "%v\n", pgerror.Flatten(err))
}
