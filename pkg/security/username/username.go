// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package username defines the type used to name principals in the user
// catalog.
package username

import (
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
	"github.com/cockroachdb/usercatalog/pkg/sql/pgwire/pgcode"
	"github.com/cockroachdb/usercatalog/pkg/sql/pgwire/pgerror"
	"golang.org/x/text/unicode/norm"
)

// SQLUsername represents a username valid inside SQL.
//
// Unlike PostgreSQL identifiers elsewhere in the system, user names are
// case-sensitive: "Alice" and "alice" name two different principals. The
// zero value is the empty username and is never valid for a stored user.
type SQLUsername struct {
	u string
}

// RootUser is the default cluster administrator.
const RootUser = "root"

// MaxUsernameLength is the maximum length of a username, in bytes.
const MaxUsernameLength = 63

// ErrUsernameEmpty indicates that an empty string was used as username.
var ErrUsernameEmpty = errors.New("username is empty")

// ErrUsernameTooLong indicates that a username string was too long.
var ErrUsernameTooLong = errors.New("username is too long")

// ErrUsernameInvalid indicates that an invalid string was used as username.
var ErrUsernameInvalid = errors.New("username is invalid")

// usernameRE is the pattern used to validate usernames.
var usernameRE = regexp.MustCompile(`^[\p{L}0-9_][-\p{L}0-9_.]*$`)

const usernameHint = "Usernames are case sensitive, must start with a letter, " +
	"digit or underscore, must contain only letters, digits, periods, " +
	"dashes, or underscores, and must not exceed 63 characters."

// MakeSQLUsernameFromUserInput validates a username coming from a client
// statement or a configuration value. The name is converted to Unicode
// normalization form C; case is preserved.
func MakeSQLUsernameFromUserInput(u string) (SQLUsername, error) {
	username := SQLUsername{norm.NFC.String(u)}
	return username, username.ValidateForCreation()
}

// MakeSQLUsernameFromPreNormalizedString takes a string containing a
// username that was previously validated, e.g. one read back from the
// store, and converts it to a SQLUsername without re-validating it.
func MakeSQLUsernameFromPreNormalizedString(u string) SQLUsername {
	return SQLUsername{u}
}

// RootUserName is the SQLUsername for RootUser.
func RootUserName() SQLUsername { return SQLUsername{RootUser} }

// ValidateForCreation checks that a username matches the naming rules.
func (s SQLUsername) ValidateForCreation() error {
	if s.u == "" {
		return pgerror.WithCandidateCode(ErrUsernameEmpty, pgcode.InvalidName)
	}
	if len(s.u) > MaxUsernameLength {
		return pgerror.WithHint(errors.Wrapf(ErrUsernameTooLong, "%q", s.u),
			pgcode.InvalidName, usernameHint)
	}
	if !usernameRE.MatchString(s.u) {
		return pgerror.WithHint(errors.Wrapf(ErrUsernameInvalid, "%q", s.u),
			pgcode.InvalidName, usernameHint)
	}
	return nil
}

// IsRootUser is true iff the username designates the root user.
func (s SQLUsername) IsRootUser() bool { return s.u == RootUser }

// Undefined is true iff the username is an empty string.
func (s SQLUsername) Undefined() bool { return len(s.u) == 0 }

// Normalized returns the stored form of the username. Usernames are
// case-sensitive so this is the string as provided.
func (s SQLUsername) Normalized() string { return s.u }

// SQLIdentifier returns the username in a form suitable for parsing as a
// SQL identifier, quoting it when necessary.
func (s SQLUsername) SQLIdentifier() string {
	if usernameRE.MatchString(s.u) && !strings.ContainsAny(s.u, "-.") {
		return s.u
	}
	return `"` + strings.ReplaceAll(s.u, `"`, `""`) + `"`
}

// Less compares two usernames.
func (s SQLUsername) Less(u SQLUsername) bool { return s.u < u.u }

// String implements the fmt.Stringer interface.
func (s SQLUsername) String() string { return s.u }

// SafeFormat implements the redact.SafeFormatter interface. Usernames are
// considered sensitive data; root is the one exception.
func (s SQLUsername) SafeFormat(p redact.SafePrinter, _ rune) {
	if s.IsRootUser() {
		p.SafeString(RootUser)
		return
	}
	p.Print(s.u)
}
