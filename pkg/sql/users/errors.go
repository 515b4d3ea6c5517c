// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package users

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
	"github.com/cockroachdb/usercatalog/pkg/kv"
	"github.com/cockroachdb/usercatalog/pkg/security/username"
	"github.com/cockroachdb/usercatalog/pkg/sql/pgwire/pgcode"
	"github.com/cockroachdb/usercatalog/pkg/sql/pgwire/pgerror"
)

var (
	// ErrUserAlreadyExists marks errors for the creation of a name that is
	// already taken.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrUserNotFound marks errors for operations on an absent user.
	ErrUserNotFound = errors.New("user does not exist")
	// ErrForbiddenPrivilegeChange marks errors for mutations the privilege
	// guard rejects.
	ErrForbiddenPrivilegeChange = errors.New("forbidden privilege change")
	// ErrNotBootstrapped is returned by Open when the keyspace holds no
	// cluster identity.
	ErrNotBootstrapped = errors.New("cluster is not bootstrapped")
)

// NewUserAlreadyExistsError creates an error marked with
// ErrUserAlreadyExists.
func NewUserAlreadyExistsError(u username.SQLUsername) error {
	return pgerror.WithCandidateCode(
		errors.Mark(errors.Newf("user %s already exists", u), ErrUserAlreadyExists),
		pgcode.DuplicateObject)
}

// NewUserNotFoundError creates an error marked with ErrUserNotFound.
func NewUserNotFoundError(u username.SQLUsername) error {
	return pgerror.WithCandidateCode(
		errors.Mark(errors.Newf("user %s does not exist", u), ErrUserNotFound),
		pgcode.UndefinedObject)
}

// NewForbiddenPrivilegeChangeError creates an error marked with
// ErrForbiddenPrivilegeChange.
func NewForbiddenPrivilegeChangeError(format string, args ...interface{}) error {
	return pgerror.WithCandidateCode(
		errors.Mark(errors.NewWithDepthf(1, format, args...), ErrForbiddenPrivilegeChange),
		pgcode.InsufficientPrivilege)
}

// wrapKVError annotates an error returned by the keyspace. Unavailability
// and ambiguous results keep their kv markers and gain the SQLSTATE a
// client uses to decide whether to retry.
func wrapKVError(err error, write bool, op redact.SafeString, u username.SQLUsername) error {
	if write && !kv.IsAmbiguousResult(err) && errors.IsAny(err, context.DeadlineExceeded, context.Canceled) {
		err = kv.NewAmbiguousResultError(err)
	}
	if u.Undefined() {
		err = errors.Wrap(err, string(op))
	} else {
		err = errors.Wrapf(err, "%s %s", op, u)
	}
	switch {
	case kv.IsAmbiguousResult(err):
		return pgerror.WithCandidateCode(err, pgcode.StatementCompletionUnknown)
	case kv.IsUnavailable(err):
		return pgerror.WithCandidateCode(err, pgcode.CannotConnectNow)
	case errors.IsAny(err, context.DeadlineExceeded, context.Canceled):
		return pgerror.WithCandidateCode(err, pgcode.QueryCanceled)
	}
	return err
}
