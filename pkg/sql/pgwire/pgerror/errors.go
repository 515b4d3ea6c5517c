// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package pgerror annotates errors with PostgreSQL SQLSTATE codes. Codes are
// carried by an error wrapper registered with the errors library so that
// they survive encoding across the network.
package pgerror

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/usercatalog/pkg/sql/pgwire/pgcode"
	"github.com/gogo/protobuf/proto"
)

// New creates an error with a code.
func New(code pgcode.Code, msg string) error {
	err := errors.NewWithDepth(1, msg)
	return WithCandidateCode(err, code)
}

// Newf creates an error with a code and a formatted message.
func Newf(code pgcode.Code, format string, args ...interface{}) error {
	err := errors.NewWithDepthf(1, format, args...)
	return WithCandidateCode(err, code)
}

// Wrapf wraps an error and adds a pg error code. The code is used only if
// the underlying error does not have one already.
func Wrapf(err error, code pgcode.Code, format string, args ...interface{}) error {
	err = errors.WrapWithDepthf(1, err, format, args...)
	return WithCandidateCode(err, code)
}

// WithCandidateCode decorates the error with a candidate postgres error
// code. It is called "candidate" because the code is only used if there is
// no code already attached further down the chain.
func WithCandidateCode(err error, code pgcode.Code) error {
	if err == nil {
		return nil
	}
	return &withCandidateCode{cause: err, code: code.String()}
}

// HasCandidateCode returns true iff there is a candidate code in the chain.
func HasCandidateCode(err error) bool {
	return errors.HasType(err, (*withCandidateCode)(nil))
}

// GetPGCode retrieves the pg code of an error. The innermost candidate code
// wins; errors without any code report pgcode.Uncategorized.
func GetPGCode(err error) pgcode.Code {
	code := pgcode.Uncategorized
	for ; err != nil; err = errors.UnwrapOnce(err) {
		if c, ok := err.(*withCandidateCode); ok {
			code = pgcode.MakeCode(c.code)
		}
	}
	return code
}

type withCandidateCode struct {
	cause error
	code  string
}

var _ error = (*withCandidateCode)(nil)
var _ errors.SafeFormatter = (*withCandidateCode)(nil)
var _ fmt.Formatter = (*withCandidateCode)(nil)

func (w *withCandidateCode) Error() string { return w.cause.Error() }
func (w *withCandidateCode) Cause() error  { return w.cause }
func (w *withCandidateCode) Unwrap() error { return w.cause }

// Format implements the fmt.Formatter interface.
func (w *withCandidateCode) Format(s fmt.State, verb rune) { errors.FormatError(w, s, verb) }

// SafeFormatError implements errors.SafeFormatter.
func (w *withCandidateCode) SafeFormatError(p errors.Printer) (next error) {
	if p.Detail() {
		p.Printf("candidate pg code: %s", errors.Safe(w.code))
	}
	return w.cause
}

func encodeWithCandidateCode(
	_ context.Context, err error,
) (msgPrefix string, safeDetails []string, payload proto.Message) {
	w := err.(*withCandidateCode)
	return "", []string{w.code}, nil
}

func decodeWithCandidateCode(
	_ context.Context, cause error, _ string, safeDetails []string, _ proto.Message,
) error {
	code := pgcode.Uncategorized.String()
	if len(safeDetails) > 0 {
		code = safeDetails[0]
	}
	return &withCandidateCode{cause: cause, code: code}
}

func init() {
	key := errors.GetTypeKey((*withCandidateCode)(nil))
	errors.RegisterWrapperEncoder(key, encodeWithCandidateCode)
	errors.RegisterWrapperDecoder(key, decodeWithCandidateCode)
}
