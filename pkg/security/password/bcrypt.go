// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package password

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"

	"github.com/cockroachdb/errors"
	"golang.org/x/crypto/bcrypt"
)

// BCrypt cost should increase along with computation power.
// For estimates, see: http://security.stackexchange.com/questions/17207/recommended-of-rounds-for-bcrypt
// For now, we use the library's default cost.
const DefaultBcryptCost = bcrypt.DefaultCost

// bcrypt only looks at the first 72 bytes of its input, so the cleartext is
// digested first.
func bcryptInput(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}

func hashBcrypt(password string, cost int) (Credential, error) {
	h, err := bcrypt.GenerateFromPassword(bcryptInput(password), cost)
	if err != nil {
		return nil, errors.Wrap(err, "hashing password")
	}
	return Credential(h), nil
}

func compareBcrypt(cred Credential, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword(cred, bcryptInput(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "checking bcrypt credential")
	}
	return true, nil
}

func isBcryptHash(c Credential) bool {
	for _, p := range [][]byte{[]byte("$2a$"), []byte("$2b$"), []byte("$2y$")} {
		if bytes.HasPrefix(c, p) {
			return true
		}
	}
	return false
}
