// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package keys defines the layout of the meta keyspace. Every key begins
// with MetaPrefix; user records live under UsersPrefix, one key per user,
// so that a scan over UsersSpan visits users in name order.
package keys

import (
	"bytes"
	"strconv"

	"github.com/cockroachdb/usercatalog/pkg/security/username"
)

var (
	// MetaPrefix is the prefix of all keys written by the user catalog.
	MetaPrefix = []byte("/meta/")
	// ClusterIdentityKey holds the cluster identity written at bootstrap.
	ClusterIdentityKey = makeKey(MetaPrefix, []byte("cluster/identity"))
	// UsersPrefix is the prefix of all user record keys.
	UsersPrefix = makeKey(MetaPrefix, []byte("users/"))
)

func makeKey(keys ...[]byte) []byte {
	return bytes.Join(keys, nil)
}

// UserKey returns the key of the record for the given user.
func UserKey(u username.SQLUsername) []byte {
	key := make([]byte, 0, len(UsersPrefix)+len(u.Normalized()))
	key = append(key, UsersPrefix...)
	key = append(key, u.Normalized()...)
	return key
}

// DecodeUserKey extracts the username from a user record key.
func DecodeUserKey(key []byte) (username.SQLUsername, bool) {
	if !bytes.HasPrefix(key, UsersPrefix) || len(key) == len(UsersPrefix) {
		return username.SQLUsername{}, false
	}
	return username.MakeSQLUsernameFromPreNormalizedString(string(key[len(UsersPrefix):])), true
}

// UsersSpan returns the [start, end) span containing every user record.
func UsersSpan() (start, end []byte) {
	return UsersPrefix, PrefixEnd(UsersPrefix)
}

// PrefixEnd determines the end key given key as a prefix, that is the key
// that sorts precisely behind all keys starting with prefix: "1" is added
// to the final byte and the carry propagated. An empty key yields 0xff.
func PrefixEnd(key []byte) []byte {
	if len(key) == 0 {
		return []byte{0xff}
	}
	end := append([]byte(nil), key...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i] = end[i] + 1
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	// This statement will only be reached if the key is already a maximal
	// byte string (i.e. already \xff...).
	return key
}

// PrettyPrint returns a human readable form of a meta key.
func PrettyPrint(key []byte) string {
	if u, ok := DecodeUserKey(key); ok {
		return "/Meta/Users/" + strconv.Quote(u.Normalized())
	}
	if bytes.Equal(key, ClusterIdentityKey) {
		return "/Meta/ClusterIdentity"
	}
	return strconv.Quote(string(key))
}
