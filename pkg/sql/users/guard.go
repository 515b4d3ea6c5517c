// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package users

import (
	"github.com/cockroachdb/usercatalog/pkg/security/password"
)

// Mutation describes the changes an ALTER USER applies to a record. A nil
// field leaves the record unchanged.
type Mutation struct {
	Credential         password.Credential
	IsAdmin            *bool
	MustChangePassword *bool
	Comment            *string
}

// Empty returns true if the mutation changes nothing.
func (m Mutation) Empty() bool {
	return m.Credential == nil && m.IsAdmin == nil && m.MustChangePassword == nil && m.Comment == nil
}

// Apply applies the mutation to rec.
func (m Mutation) Apply(rec *UserRecord) {
	if m.Credential != nil {
		rec.Credential = m.Credential
	}
	if m.IsAdmin != nil {
		rec.IsAdmin = *m.IsAdmin
	}
	if m.MustChangePassword != nil {
		rec.MustChangePassword = *m.MustChangePassword
	}
	if m.Comment != nil {
		rec.Comment = *m.Comment
	}
}

// Guard enforces the rules that protect the bootstrap superuser. The rules
// are checked in order and the first match decides:
//
//  1. a mutation of a protected user that touches the admin flag is
//     forbidden, even when it would not change the value;
//  2. dropping a protected user is forbidden;
//  3. any other password or admin change on an existing user is permitted;
//  4. a created user is never an admin and never protected.
//
// Guard is stateless; the protected status comes from the record itself,
// which the store resolved at bootstrap.
type Guard struct{}

// CheckCreate normalizes a record about to be created.
func (Guard) CheckCreate(rec *UserRecord) error {
	rec.IsAdmin = false
	rec.IsProtected = false
	return nil
}

// CheckAlter returns an error if m may not be applied to rec.
func (Guard) CheckAlter(rec UserRecord, m Mutation) error {
	if rec.IsProtected && m.IsAdmin != nil {
		return NewForbiddenPrivilegeChangeError(
			"cannot change the admin privilege of protected user %s", rec.Name)
	}
	return nil
}

// CheckDrop returns an error if rec may not be dropped.
func (Guard) CheckDrop(rec UserRecord) error {
	if rec.IsProtected {
		return NewForbiddenPrivilegeChangeError("cannot drop protected user %s", rec.Name)
	}
	return nil
}
