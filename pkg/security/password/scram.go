// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package password

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"regexp"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/xdg-go/scram"
	"github.com/xdg-go/stringprep"
)

// DefaultSCRAMIterations is the iteration count used for new SCRAM
// credentials. It matches the PostgreSQL default raised to a cost roughly
// comparable with bcrypt's default.
const DefaultSCRAMIterations = 10610

const scramSaltSize = 16

var scramPrefix = []byte("SCRAM-SHA-256$")

// scramRE matches the PostgreSQL text encoding:
//
//	SCRAM-SHA-256$<iterations>:<salt>$<StoredKey>:<ServerKey>
var scramRE = regexp.MustCompile(`^SCRAM-SHA-256\$(\d+):([A-Za-z0-9+/]+=*)\$([A-Za-z0-9+/]+=*):([A-Za-z0-9+/]+=*)$`)

// prepareSCRAMPassword applies SASLprep. As in PostgreSQL, a password
// that cannot be prepared is used as-is.
func prepareSCRAMPassword(password string) string {
	prepared, err := stringprep.SASLprep.Prepare(password)
	if err != nil {
		return password
	}
	return prepared
}

func scramCredentials(password string, salt []byte, iters int) (scram.StoredCredentials, error) {
	client, err := scram.SHA256.NewClientUnprepped("" /* username: unused */, prepareSCRAMPassword(password), "" /* authzID: unused */)
	if err != nil {
		return scram.StoredCredentials{}, errors.Wrap(err, "computing SCRAM credentials")
	}
	return client.GetStoredCredentials(scram.KeyFactors{Salt: string(salt), Iters: iters}), nil
}

func hashSCRAM(password string, salt []byte, iters int) (Credential, error) {
	if iters <= 0 {
		return nil, errors.AssertionFailedf("invalid SCRAM iteration count %d", iters)
	}
	creds, err := scramCredentials(password, salt, iters)
	if err != nil {
		return nil, err
	}
	enc := base64.StdEncoding
	return Credential(fmt.Sprintf("SCRAM-SHA-256$%d:%s$%s:%s",
		iters,
		enc.EncodeToString(salt),
		enc.EncodeToString(creds.StoredKey),
		enc.EncodeToString(creds.ServerKey))), nil
}

type scramParts struct {
	iters     int
	salt      []byte
	storedKey []byte
	serverKey []byte
}

func parseSCRAM(cred Credential) (scramParts, error) {
	m := scramRE.FindSubmatch(cred)
	if m == nil {
		return scramParts{}, errors.New("malformed SCRAM credential")
	}
	var p scramParts
	var err error
	if p.iters, err = strconv.Atoi(string(m[1])); err != nil || p.iters <= 0 {
		return scramParts{}, errors.New("malformed SCRAM iteration count")
	}
	enc := base64.StdEncoding
	for i, dst := range []*[]byte{&p.salt, &p.storedKey, &p.serverKey} {
		if *dst, err = enc.DecodeString(string(m[i+2])); err != nil {
			return scramParts{}, errors.Wrap(err, "malformed SCRAM credential")
		}
	}
	return p, nil
}

func compareSCRAM(cred Credential, password string) (bool, error) {
	p, err := parseSCRAM(cred)
	if err != nil {
		return false, err
	}
	creds, err := scramCredentials(password, p.salt, p.iters)
	if err != nil {
		return false, err
	}
	storedOK := subtle.ConstantTimeCompare(creds.StoredKey, p.storedKey)
	serverOK := subtle.ConstantTimeCompare(creds.ServerKey, p.serverKey)
	return storedOK&serverOK == 1, nil
}
