// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package pgerror

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/usercatalog/pkg/sql/pgwire/pgcode"
)

// WithHint decorates an error with a code and a user-facing hint.
func WithHint(err error, code pgcode.Code, hint string) error {
	return WithCandidateCode(errors.WithHint(err, hint), code)
}

// IsSQLRetryableError returns true if the error is one a client may retry
// by reissuing the whole statement.
func IsSQLRetryableError(err error) bool {
	switch GetPGCode(err) {
	case pgcode.CannotConnectNow, pgcode.ConnectionFailure, pgcode.SerializationFailure:
		return true
	}
	return false
}
