// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package users

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
	"github.com/cockroachdb/usercatalog/pkg/security/password"
	"github.com/cockroachdb/usercatalog/pkg/security/username"
	"github.com/google/uuid"
	"google.golang.org/protobuf/encoding/protowire"
)

// UserRecord is the persisted form of a security principal.
type UserRecord struct {
	// Name is the unique, case-sensitive user name. It never changes.
	Name username.SQLUsername
	// ID is assigned at creation and never changes.
	ID uuid.UUID
	// Credential is the verifiable password representation. Empty means the
	// user has no password and cannot authenticate with one.
	Credential password.Credential
	IsAdmin    bool
	// IsProtected is true exactly for the bootstrap superuser.
	IsProtected bool

	MustChangePassword bool
	Comment            string
}

// Clone returns a deep copy of the record.
func (r UserRecord) Clone() UserRecord {
	if r.Credential != nil {
		r.Credential = append(password.Credential(nil), r.Credential...)
	}
	return r
}

// SafeFormat implements redact.SafeFormatter. The credential is never
// printed.
func (r UserRecord) SafeFormat(p redact.SafePrinter, _ rune) {
	p.Printf("user %s (id=%s admin=%v protected=%v credential=%s)",
		r.Name, redact.Safe(r.ID.String()), redact.Safe(r.IsAdmin), redact.Safe(r.IsProtected),
		r.Credential)
}

func (r UserRecord) String() string { return redact.StringWithoutMarkers(r) }

// Field numbers of the record encoding. Numbers are never reused.
const (
	recordNameField               protowire.Number = 1
	recordIDField                 protowire.Number = 2
	recordCredentialField         protowire.Number = 3
	recordIsAdminField            protowire.Number = 4
	recordIsProtectedField        protowire.Number = 5
	recordMustChangePasswordField protowire.Number = 6
	recordCommentField            protowire.Number = 7
)

// Encode returns the wire encoding of the record. Values for which the
// field is at its zero value are omitted.
func (r UserRecord) Encode() []byte {
	var b []byte
	b = protowire.AppendTag(b, recordNameField, protowire.BytesType)
	b = protowire.AppendString(b, r.Name.Normalized())
	b = protowire.AppendTag(b, recordIDField, protowire.BytesType)
	b = protowire.AppendBytes(b, r.ID[:])
	if len(r.Credential) > 0 {
		b = protowire.AppendTag(b, recordCredentialField, protowire.BytesType)
		b = protowire.AppendBytes(b, r.Credential)
	}
	b = appendBool(b, recordIsAdminField, r.IsAdmin)
	b = appendBool(b, recordIsProtectedField, r.IsProtected)
	b = appendBool(b, recordMustChangePasswordField, r.MustChangePassword)
	if r.Comment != "" {
		b = protowire.AppendTag(b, recordCommentField, protowire.BytesType)
		b = protowire.AppendString(b, r.Comment)
	}
	return b
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeBool(v))
}

// DecodeUserRecord parses the wire encoding of a record. Unknown fields
// are skipped so that older binaries can read records written by newer
// ones.
func DecodeUserRecord(b []byte) (UserRecord, error) {
	var r UserRecord
	var sawName bool
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return UserRecord{}, errors.Wrap(protowire.ParseError(n), "decoding user record")
		}
		b = b[n:]
		switch {
		case num == recordNameField && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return UserRecord{}, errors.Wrap(protowire.ParseError(n), "decoding user name")
			}
			r.Name = username.MakeSQLUsernameFromPreNormalizedString(v)
			sawName = true
			b = b[n:]
		case num == recordIDField && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return UserRecord{}, errors.Wrap(protowire.ParseError(n), "decoding user id")
			}
			id, err := uuid.FromBytes(v)
			if err != nil {
				return UserRecord{}, errors.Wrap(err, "decoding user id")
			}
			r.ID = id
			b = b[n:]
		case num == recordCredentialField && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return UserRecord{}, errors.Wrap(protowire.ParseError(n), "decoding credential")
			}
			r.Credential = append(password.Credential(nil), v...)
			b = b[n:]
		case num == recordCommentField && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return UserRecord{}, errors.Wrap(protowire.ParseError(n), "decoding comment")
			}
			r.Comment = v
			b = b[n:]
		case typ == protowire.VarintType &&
			(num == recordIsAdminField || num == recordIsProtectedField || num == recordMustChangePasswordField):
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return UserRecord{}, errors.Wrap(protowire.ParseError(n), "decoding flag")
			}
			flag := protowire.DecodeBool(v)
			switch num {
			case recordIsAdminField:
				r.IsAdmin = flag
			case recordIsProtectedField:
				r.IsProtected = flag
			case recordMustChangePasswordField:
				r.MustChangePassword = flag
			}
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return UserRecord{}, errors.Wrapf(protowire.ParseError(n), "skipping field %d", redact.Safe(num))
			}
			b = b[n:]
		}
	}
	if !sawName || r.Name.Undefined() {
		return UserRecord{}, errors.New("decoding user record: missing user name")
	}
	return r, nil
}

// ClusterIdentity is written once at bootstrap and identifies the cluster
// and its protected superuser.
type ClusterIdentity struct {
	ClusterID uuid.UUID
	SuperUser username.SQLUsername
}

const (
	identityClusterIDField protowire.Number = 1
	identitySuperUserField protowire.Number = 2
)

// Encode returns the wire encoding of the identity.
func (c ClusterIdentity) Encode() []byte {
	var b []byte
	b = protowire.AppendTag(b, identityClusterIDField, protowire.BytesType)
	b = protowire.AppendBytes(b, c.ClusterID[:])
	b = protowire.AppendTag(b, identitySuperUserField, protowire.BytesType)
	b = protowire.AppendString(b, c.SuperUser.Normalized())
	return b
}

// DecodeClusterIdentity parses the wire encoding of a cluster identity.
func DecodeClusterIdentity(b []byte) (ClusterIdentity, error) {
	var c ClusterIdentity
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return ClusterIdentity{}, errors.Wrap(protowire.ParseError(n), "decoding cluster identity")
		}
		b = b[n:]
		switch {
		case num == identityClusterIDField && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return ClusterIdentity{}, errors.Wrap(protowire.ParseError(n), "decoding cluster id")
			}
			id, err := uuid.FromBytes(v)
			if err != nil {
				return ClusterIdentity{}, errors.Wrap(err, "decoding cluster id")
			}
			c.ClusterID = id
			b = b[n:]
		case num == identitySuperUserField && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return ClusterIdentity{}, errors.Wrap(protowire.ParseError(n), "decoding superuser")
			}
			c.SuperUser = username.MakeSQLUsernameFromPreNormalizedString(v)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return ClusterIdentity{}, errors.Wrap(protowire.ParseError(n), "decoding cluster identity")
			}
			b = b[n:]
		}
	}
	if c.SuperUser.Undefined() {
		return ClusterIdentity{}, errors.New("decoding cluster identity: missing superuser")
	}
	return c, nil
}
