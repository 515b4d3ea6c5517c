// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package password

import (
	"bytes"
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"golang.org/x/term"
)

// PromptForPassword prompts for a password twice, returning the read string
// if they match, or an error.
func PromptForPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	fmt.Fprint(os.Stderr, "Enter password: ")
	one, err := term.ReadPassword(fd)
	if err != nil {
		return "", errors.Wrap(err, "reading password")
	}
	fmt.Fprint(os.Stderr, "\nConfirm password: ")
	two, err := term.ReadPassword(fd)
	if err != nil {
		return "", errors.Wrap(err, "reading password")
	}
	// Make sure stderr moves on to the next line.
	fmt.Fprint(os.Stderr, "\n")
	if !bytes.Equal(one, two) {
		return "", errors.New("password mismatch")
	}
	return string(one), nil
}
