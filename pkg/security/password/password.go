// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package password turns cleartext passwords into stored credentials and
// verifies candidate passwords against them. Three storage formats are
// understood: bcrypt, SCRAM-SHA-256 in the PostgreSQL text encoding, and
// argon2id in the PHC string encoding. The format of an existing credential
// is detected from its prefix, so credentials written with one method
// remain verifiable after the configured default changes.
package password

import (
	"bytes"
	"context"
	"crypto/rand"
	"io"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
	"github.com/cockroachdb/usercatalog/pkg/sql/pgwire/pgcode"
	"github.com/cockroachdb/usercatalog/pkg/sql/pgwire/pgerror"
)

// MaxPasswordLength is the longest cleartext password accepted, in bytes.
const MaxPasswordLength = 1024

// ErrInvalidCredentialInput is reported when a cleartext password is
// empty, too long or not valid UTF-8.
var ErrInvalidCredentialInput = errors.New("invalid password")

// HashMethod identifies a credential storage format.
type HashMethod int8

const (
	// HashInvalidMethod represents an unknown or unparseable format.
	HashInvalidMethod HashMethod = iota
	// HashMissingPassword represents a user without a password.
	HashMissingPassword
	// HashBCrypt is the bcrypt format, applied over a SHA-256 digest.
	HashBCrypt
	// HashSCRAMSHA256 is the PostgreSQL-compatible SCRAM-SHA-256 format.
	HashSCRAMSHA256
	// HashArgon2id is the argon2id format.
	HashArgon2id
)

var methodNames = map[HashMethod]string{
	HashInvalidMethod:   "<invalid>",
	HashMissingPassword: "<none>",
	HashBCrypt:          "crdb-bcrypt",
	HashSCRAMSHA256:     "scram-sha-256",
	HashArgon2id:        "argon2id",
}

// String implements fmt.Stringer.
func (m HashMethod) String() string {
	if s, ok := methodNames[m]; ok {
		return s
	}
	return methodNames[HashInvalidMethod]
}

// SafeValue implements redact.SafeValue.
func (m HashMethod) SafeValue() {}

// LookupMethod returns the HashMethod for a configuration string.
func LookupMethod(s string) (HashMethod, error) {
	switch s {
	case "crdb-bcrypt", "bcrypt":
		return HashBCrypt, nil
	case "scram-sha-256":
		return HashSCRAMSHA256, nil
	case "argon2id":
		return HashArgon2id, nil
	}
	return HashInvalidMethod, errors.Newf("unknown password hash method %q", s)
}

// Credential is the opaque stored form of a password. It never contains
// the cleartext.
type Credential []byte

// Method returns the storage format of the credential.
func (c Credential) Method() HashMethod {
	switch {
	case len(c) == 0:
		return HashMissingPassword
	case isBcryptHash(c):
		return HashBCrypt
	case bytes.HasPrefix(c, scramPrefix):
		return HashSCRAMSHA256
	case bytes.HasPrefix(c, argon2Prefix):
		return HashArgon2id
	}
	return HashInvalidMethod
}

// SafeFormat implements redact.SafeFormatter. Only the method is printed.
func (c Credential) SafeFormat(p redact.SafePrinter, _ rune) {
	p.Printf("<credential %s>", c.Method())
}

// String implements fmt.Stringer.
func (c Credential) String() string { return redact.StringWithoutMarkers(c) }

// Argon2Params configures the argon2id key derivation.
type Argon2Params struct {
	Time    uint32
	Memory  uint32
	Threads uint8
	KeyLen  uint32
}

// Hasher produces credentials from cleartext passwords. The zero value is
// not usable; start from DefaultHasher.
type Hasher struct {
	Method          HashMethod
	BcryptCost      int
	SCRAMIterations int
	Argon2          Argon2Params

	// Rand is the source of salt bytes; crypto/rand when nil.
	Rand io.Reader
}

// DefaultHasher returns a Hasher producing SCRAM-SHA-256 credentials with
// the default parameters for every method.
func DefaultHasher() Hasher {
	return Hasher{
		Method:          HashSCRAMSHA256,
		BcryptCost:      DefaultBcryptCost,
		SCRAMIterations: DefaultSCRAMIterations,
		Argon2:          DefaultArgon2Params,
	}
}

// ValidatePassword checks that a cleartext password is acceptable input.
func ValidatePassword(password string) error {
	var err error
	switch {
	case password == "":
		err = errors.Wrap(ErrInvalidCredentialInput, "empty passwords are not permitted")
	case len(password) > MaxPasswordLength:
		err = errors.Wrapf(ErrInvalidCredentialInput,
			"password exceeds the maximum length of %d bytes", redact.Safe(MaxPasswordLength))
	case !utf8.ValidString(password):
		err = errors.Wrap(ErrInvalidCredentialInput, "password is not valid UTF-8")
	default:
		return nil
	}
	return pgerror.WithCandidateCode(err, pgcode.InvalidParameterValue)
}

// Hash validates the cleartext password and produces a salted credential.
// Two calls with the same input produce different credentials that both
// verify.
func (h Hasher) Hash(ctx context.Context, password string) (Credential, error) {
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch h.Method {
	case HashBCrypt:
		return hashBcrypt(password, h.BcryptCost)
	case HashSCRAMSHA256:
		salt, err := h.salt(scramSaltSize)
		if err != nil {
			return nil, err
		}
		return hashSCRAM(password, salt, h.SCRAMIterations)
	case HashArgon2id:
		salt, err := h.salt(argon2SaltSize)
		if err != nil {
			return nil, err
		}
		return hashArgon2id(password, salt, h.Argon2), nil
	}
	return nil, errors.AssertionFailedf("unsupported hash method %s", h.Method)
}

func (h Hasher) salt(n int) ([]byte, error) {
	r := h.Rand
	if r == nil {
		r = rand.Reader
	}
	salt := make([]byte, n)
	if _, err := io.ReadFull(r, salt); err != nil {
		return nil, errors.Wrap(err, "generating salt")
	}
	return salt, nil
}

// CompareHashAndPassword verifies a candidate password against a stored
// credential. A user without a credential never matches. An error is
// returned only when the credential itself cannot be interpreted.
func CompareHashAndPassword(ctx context.Context, cred Credential, password string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if password == "" || len(password) > MaxPasswordLength {
		return false, nil
	}
	switch cred.Method() {
	case HashMissingPassword:
		return false, nil
	case HashBCrypt:
		return compareBcrypt(cred, password)
	case HashSCRAMSHA256:
		return compareSCRAM(cred, password)
	case HashArgon2id:
		return compareArgon2id(cred, password)
	}
	return false, errors.Newf("stored credential has an unknown format")
}
