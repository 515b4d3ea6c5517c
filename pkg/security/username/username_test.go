// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package username

import (
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
	"github.com/cockroachdb/usercatalog/pkg/sql/pgwire/pgcode"
	"github.com/cockroachdb/usercatalog/pkg/sql/pgwire/pgerror"
	"github.com/stretchr/testify/require"
)

func TestMakeSQLUsernameFromUserInput(t *testing.T) {
	testCases := []struct {
		username string
		expErr   error
	}{
		{"user001", nil},
		{"User001", nil},
		{"_svc.account-1", nil},
		{"9lives", nil},
		{"root", nil},
		{"", ErrUsernameEmpty},
		{"-leading-dash", ErrUsernameInvalid},
		{"has space", ErrUsernameInvalid},
		{"semi;colon", ErrUsernameInvalid},
		{strings.Repeat("a", MaxUsernameLength+1), ErrUsernameTooLong},
	}
	for _, tc := range testCases {
		t.Run(tc.username, func(t *testing.T) {
			u, err := MakeSQLUsernameFromUserInput(tc.username)
			if tc.expErr == nil {
				require.NoError(t, err)
				require.Equal(t, tc.username, u.Normalized())
				return
			}
			require.True(t, errors.Is(err, tc.expErr), "expected %v, got %v", tc.expErr, err)
			require.Equal(t, pgcode.InvalidName, pgerror.GetPGCode(err))
		})
	}
}

func TestUnicodeNormalization(t *testing.T) {
	// "é" as a single code point and as "e" plus a combining acute accent.
	composed, err := MakeSQLUsernameFromUserInput("jos\u00e9")
	require.NoError(t, err)
	decomposed, err := MakeSQLUsernameFromUserInput("jose\u0301")
	require.NoError(t, err)
	require.Equal(t, composed, decomposed)
	require.Equal(t, "jos\u00e9", decomposed.Normalized())
}

func TestCaseSensitivity(t *testing.T) {
	lower := MakeSQLUsernameFromPreNormalizedString("alice")
	upper := MakeSQLUsernameFromPreNormalizedString("Alice")
	require.NotEqual(t, lower, upper)
	require.True(t, upper.Less(lower))
	require.False(t, MakeSQLUsernameFromPreNormalizedString("Root").IsRootUser())
	require.True(t, RootUserName().IsRootUser())
}

func TestSQLIdentifier(t *testing.T) {
	require.Equal(t, "user001", MakeSQLUsernameFromPreNormalizedString("user001").SQLIdentifier())
	require.Equal(t, `"svc.bot"`, MakeSQLUsernameFromPreNormalizedString("svc.bot").SQLIdentifier())
	require.Equal(t, `"a""b"`, MakeSQLUsernameFromPreNormalizedString(`a"b`).SQLIdentifier())
}

func TestSafeFormat(t *testing.T) {
	require.EqualValues(t, "‹alice›", redact.Sprint(MakeSQLUsernameFromPreNormalizedString("alice")))
	require.EqualValues(t, "root", redact.Sprint(RootUserName()))
}
