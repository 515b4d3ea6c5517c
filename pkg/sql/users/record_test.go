// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package users

import (
	"testing"

	"github.com/cockroachdb/usercatalog/pkg/security/password"
	"github.com/cockroachdb/usercatalog/pkg/security/username"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestRecordEncoding(t *testing.T) {
	for _, rec := range []UserRecord{
		{Name: username.MakeSQLUsernameFromPreNormalizedString("alice"), ID: uuid.New()},
		{
			Name:               username.RootUserName(),
			ID:                 uuid.New(),
			Credential:         password.Credential("SCRAM-SHA-256$4096:c2FsdA==$c3RvcmVk:c2VydmVy"),
			IsAdmin:            true,
			IsProtected:        true,
			MustChangePassword: true,
			Comment:            "bootstrap superuser",
		},
	} {
		got, err := DecodeUserRecord(rec.Encode())
		require.NoError(t, err)
		if diff := cmp.Diff(rec, got, cmp.AllowUnexported(username.SQLUsername{})); diff != "" {
			t.Errorf("unexpected record (-want +got):\n%s", diff)
		}
	}
}

func TestRecordDecodingSkipsUnknownFields(t *testing.T) {
	rec := UserRecord{Name: username.MakeSQLUsernameFromPreNormalizedString("bob"), ID: uuid.New(), IsAdmin: true}
	b := rec.Encode()
	b = protowire.AppendTag(b, 42, protowire.BytesType)
	b = protowire.AppendString(b, "from the future")
	b = protowire.AppendTag(b, 43, protowire.VarintType)
	b = protowire.AppendVarint(b, 7)

	got, err := DecodeUserRecord(b)
	require.NoError(t, err)
	require.Equal(t, rec.Name, got.Name)
	require.True(t, got.IsAdmin)
}

func TestRecordDecodingErrors(t *testing.T) {
	_, err := DecodeUserRecord(nil)
	require.ErrorContains(t, err, "missing user name")

	b := UserRecord{Name: username.MakeSQLUsernameFromPreNormalizedString("bob")}.Encode()
	_, err = DecodeUserRecord(b[:len(b)-3])
	require.Error(t, err)

	var bad []byte
	bad = protowire.AppendTag(bad, recordNameField, protowire.BytesType)
	bad = protowire.AppendString(bad, "bob")
	bad = protowire.AppendTag(bad, recordIDField, protowire.BytesType)
	bad = protowire.AppendBytes(bad, []byte{1, 2, 3})
	_, err = DecodeUserRecord(bad)
	require.ErrorContains(t, err, "decoding user id")
}

func TestRecordFormatHidesCredential(t *testing.T) {
	rec := UserRecord{
		Name:       username.MakeSQLUsernameFromPreNormalizedString("carol"),
		Credential: password.Credential("SCRAM-SHA-256$4096:c2FsdA==$c3RvcmVk:c2VydmVy"),
	}
	require.NotContains(t, rec.String(), "c3RvcmVk")
	require.Contains(t, rec.String(), "scram-sha-256")
	require.Contains(t, rec.String(), "carol")
}

func TestClusterIdentityEncoding(t *testing.T) {
	id := ClusterIdentity{ClusterID: uuid.New(), SuperUser: username.RootUserName()}
	got, err := DecodeClusterIdentity(id.Encode())
	require.NoError(t, err)
	require.Equal(t, id, got)

	_, err = DecodeClusterIdentity(nil)
	require.Error(t, err)
}
