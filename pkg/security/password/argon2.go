// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package password

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/crypto/argon2"
)

// DefaultArgon2Params are the argon2id parameters used for new credentials.
var DefaultArgon2Params = Argon2Params{
	Time:    1,
	Memory:  64 * 1024,
	Threads: 4,
	KeyLen:  32,
}

const argon2SaltSize = 16

// Bounds on the parameters accepted from a stored credential. Outside of
// them argon2.IDKey panics or allocates unreasonable amounts of memory.
const (
	maxArgon2Time   = 64
	maxArgon2Memory = 4 << 20 // KiB
)

var argon2Prefix = []byte("$argon2id$")

func hashArgon2id(password string, salt []byte, params Argon2Params) Credential {
	key := argon2.IDKey([]byte(password), salt, params.Time, params.Memory, params.Threads, params.KeyLen)
	enc := base64.RawStdEncoding
	return Credential(fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, params.Memory, params.Time, params.Threads,
		enc.EncodeToString(salt), enc.EncodeToString(key)))
}

func parseArgon2id(cred Credential) (params Argon2Params, salt, key []byte, err error) {
	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, key
	parts := strings.Split(string(cred), "$")
	if len(parts) != 6 {
		return params, nil, nil, errors.New("malformed argon2id credential")
	}
	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return params, nil, nil, errors.Newf("unsupported argon2 version in credential")
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.Memory, &params.Time, &params.Threads); err != nil {
		return params, nil, nil, errors.Wrap(err, "malformed argon2id parameters")
	}
	if params.Time < 1 || params.Time > maxArgon2Time ||
		params.Threads < 1 || params.Memory > maxArgon2Memory {
		return params, nil, nil, errors.Newf("malformed argon2id parameters: m=%d,t=%d,p=%d",
			params.Memory, params.Time, params.Threads)
	}
	enc := base64.RawStdEncoding
	if salt, err = enc.DecodeString(parts[4]); err != nil {
		return params, nil, nil, errors.Wrap(err, "malformed argon2id salt")
	}
	if key, err = enc.DecodeString(parts[5]); err != nil {
		return params, nil, nil, errors.Wrap(err, "malformed argon2id key")
	}
	if len(key) == 0 {
		return params, nil, nil, errors.New("malformed argon2id key: empty")
	}
	params.KeyLen = uint32(len(key))
	return params, salt, key, nil
}

func compareArgon2id(cred Credential, password string) (bool, error) {
	params, salt, key, err := parseArgon2id(cred)
	if err != nil {
		return false, err
	}
	candidate := argon2.IDKey([]byte(password), salt, params.Time, params.Memory, params.Threads, params.KeyLen)
	return subtle.ConstantTimeCompare(candidate, key) == 1, nil
}
