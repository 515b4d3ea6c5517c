// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package clusterschema

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/usercatalog/pkg/security/password"
	"github.com/cockroachdb/usercatalog/pkg/security/username"
	"github.com/cockroachdb/usercatalog/pkg/sql/users"
)

// UsersTableName is the name of the users table.
const UsersTableName = "users"

var clusterSchemaUsers = virtualSchemaTable{
	name: UsersTableName,
	comment: `users of the cluster
The credential is never exposed.`,
	columns: []Column{
		{Name: "user_name", Type: TypeString},
		{Name: "is_admin", Type: TypeBool},
		{Name: "is_protected", Type: TypeBool},
		{Name: "user_options", Type: TypeJSON},
	},
	populate: func(ctx context.Context, s *users.Store, addRow func(...Datum) error) (retErr error) {
		it, err := s.List(ctx)
		if err != nil {
			return err
		}
		defer func() { retErr = errors.CombineErrors(retErr, it.Close()) }()
		var ok bool
		for ok, err = it.Next(ctx); ok; ok, err = it.Next(ctx) {
			if err := addUserRow(it.Cur(), addRow); err != nil {
				return err
			}
		}
		return err
	},
	indexes: []virtualIndex{{
		column: "user_name",
		populate: func(
			ctx context.Context, constraint Datum, s *users.Store, addRow func(...Datum) error,
		) (bool, error) {
			name, ok := constraint.(DString)
			if !ok {
				return true, nil
			}
			u, err := username.MakeSQLUsernameFromUserInput(string(name))
			if err != nil {
				// No stored user can have an invalid name.
				return true, nil
			}
			rec, err := s.Get(ctx, u)
			if errors.Is(err, users.ErrUserNotFound) {
				return true, nil
			}
			if err != nil {
				return true, err
			}
			return true, addUserRow(rec, addRow)
		},
	}},
}

type userOptions struct {
	HashMethod         string `json:"hash_method,omitempty"`
	MustChangePassword bool   `json:"must_change_password,omitempty"`
	Comment            string `json:"comment,omitempty"`
}

func addUserRow(rec users.UserRecord, addRow func(...Datum) error) error {
	opts := userOptions{
		MustChangePassword: rec.MustChangePassword,
		Comment:            rec.Comment,
	}
	if m := rec.Credential.Method(); m != password.HashMissingPassword {
		opts.HashMethod = m.String()
	}
	j, err := json.Marshal(opts)
	if err != nil {
		return errors.NewAssertionErrorWithWrappedErrf(err, "encoding options of user %s", rec.Name)
	}
	return addRow(
		DString(rec.Name.Normalized()), // user_name
		DBool(rec.IsAdmin),             // is_admin
		DBool(rec.IsProtected),         // is_protected
		DJSON(j),                       // user_options
	)
}
