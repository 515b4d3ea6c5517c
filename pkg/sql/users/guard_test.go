// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package users

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/usercatalog/pkg/security/password"
	"github.com/cockroachdb/usercatalog/pkg/security/username"
	"github.com/cockroachdb/usercatalog/pkg/sql/pgwire/pgcode"
	"github.com/cockroachdb/usercatalog/pkg/sql/pgwire/pgerror"
	"github.com/stretchr/testify/require"
)

func TestGuard(t *testing.T) {
	yes, no := true, false
	comment := "hello"
	root := UserRecord{Name: username.RootUserName(), IsAdmin: true, IsProtected: true}
	alice := UserRecord{Name: username.MakeSQLUsernameFromPreNormalizedString("alice")}

	var g Guard
	testCases := []struct {
		name      string
		rec       UserRecord
		m         Mutation
		forbidden bool
	}{
		{"root-revoke-admin", root, Mutation{IsAdmin: &no}, true},
		// Re-asserting the current value is still a change of the flag.
		{"root-regrant-admin", root, Mutation{IsAdmin: &yes}, true},
		{"root-admin-with-password", root, Mutation{IsAdmin: &no, Credential: password.Credential("x")}, true},
		{"root-password", root, Mutation{Credential: password.Credential("x")}, false},
		{"root-comment", root, Mutation{Comment: &comment}, false},
		{"alice-grant-admin", alice, Mutation{IsAdmin: &yes}, false},
		{"alice-revoke-admin", alice, Mutation{IsAdmin: &no}, false},
		{"alice-password", alice, Mutation{Credential: password.Credential("x")}, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := g.CheckAlter(tc.rec, tc.m)
			if !tc.forbidden {
				require.NoError(t, err)
				return
			}
			require.True(t, errors.Is(err, ErrForbiddenPrivilegeChange), "%+v", err)
			require.Equal(t, pgcode.InsufficientPrivilege, pgerror.GetPGCode(err))
		})
	}

	err := g.CheckDrop(root)
	require.True(t, errors.Is(err, ErrForbiddenPrivilegeChange), "%+v", err)
	require.EqualError(t, err, "cannot drop protected user root")
	require.NoError(t, g.CheckDrop(alice))

	rec := UserRecord{Name: alice.Name, IsAdmin: true, IsProtected: true}
	require.NoError(t, g.CheckCreate(&rec))
	require.False(t, rec.IsAdmin)
	require.False(t, rec.IsProtected)
}

func TestMutationApply(t *testing.T) {
	yes := true
	empty := ""
	rec := UserRecord{Name: username.MakeSQLUsernameFromPreNormalizedString("alice"), Comment: "old"}
	require.True(t, Mutation{}.Empty())

	m := Mutation{Credential: password.Credential("cred"), IsAdmin: &yes, MustChangePassword: &yes, Comment: &empty}
	require.False(t, m.Empty())
	m.Apply(&rec)
	require.Equal(t, password.Credential("cred"), rec.Credential)
	require.True(t, rec.IsAdmin)
	require.True(t, rec.MustChangePassword)
	require.Equal(t, "", rec.Comment)
}
