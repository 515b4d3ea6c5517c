// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package cliflags defines the command line flags of the usercatalog
// binary.
package cliflags

import (
	"fmt"
	"strings"
)

// FlagInfo contains the static information for a CLI flag and helper
// to format the description.
type FlagInfo struct {
	// Name of the flag as used on the command line.
	Name string

	// Shorthand is the short form of the flag (optional).
	Shorthand string

	// EnvVar is the name of the environment variable through which the flag
	// value can be controlled (optional).
	EnvVar string

	// Description of the flag.
	Description string
}

// Usage returns a formatted usage string for the flag, including the
// environment variable, if any.
func (f FlagInfo) Usage() string {
	s := strings.TrimSpace(f.Description)
	if f.EnvVar != "" {
		s = fmt.Sprintf("%s\nEnvironment variable: %s", s, f.EnvVar)
	}
	return s
}

// Flags shared by several commands.
var (
	Config = FlagInfo{
		Name:        "config",
		EnvVar:      "USERCATALOG_CONFIG",
		Description: `Path of a YAML configuration file. Flags override its values.`,
	}

	Verbosity = FlagInfo{
		Name:        "v",
		EnvVar:      "USERCATALOG_VERBOSITY",
		Description: `Log verbosity level.`,
	}

	RedactableLogs = FlagInfo{
		Name:        "redactable-logs",
		EnvVar:      "USERCATALOG_REDACTABLE_LOGS",
		Description: `Keep redaction markers around sensitive values in the log output.`,
	}

	InMemory = FlagInfo{
		Name:   "in-memory",
		EnvVar: "USERCATALOG_IN_MEMORY",
		Description: `
Use an engine that is discarded when the process exits. For "start" the
node stores nothing on disk; for "sql" and "user" the statements run
against an embedded engine instead of a meta node.`,
	}

	SuperUser = FlagInfo{
		Name:        "superuser",
		EnvVar:      "USERCATALOG_SUPERUSER",
		Description: `Name of the protected administrator created when the cluster is bootstrapped.`,
	}

	PasswordHashMethod = FlagInfo{
		Name:   "password-hash-method",
		EnvVar: "USERCATALOG_PASSWORD_HASH_METHOD",
		Description: `
Storage format of new passwords: scram-sha-256, crdb-bcrypt or argon2id.`,
	}

	StatementTimeout = FlagInfo{
		Name:        "statement-timeout",
		EnvVar:      "USERCATALOG_STATEMENT_TIMEOUT",
		Description: `Maximum duration of a statement. Zero disables the timeout.`,
	}
)

// Flags of the start command.
var (
	StoreDir = FlagInfo{
		Name:        "store",
		Shorthand:   "s",
		EnvVar:      "USERCATALOG_STORE",
		Description: `Directory of the durable metadata engine.`,
	}

	ListenAddr = FlagInfo{
		Name:        "listen-addr",
		EnvVar:      "USERCATALOG_LISTEN_ADDR",
		Description: `Address the meta node serves the KV API and metrics on.`,
	}
)

// InitialPasswordEnv names the environment variable holding the superuser's
// password applied when "start" bootstraps an empty store.
const InitialPasswordEnv = "USERCATALOG_SUPERUSER_PASSWORD"

// Flags of the client commands.
var (
	MetaAddr = FlagInfo{
		Name:        "meta-addr",
		EnvVar:      "USERCATALOG_META_ADDR",
		Description: `Base URL of the meta node.`,
	}

	Execute = FlagInfo{
		Name:      "execute",
		Shorthand: "e",
		Description: `
Execute the SQL statement(s) on the command line, then exit. This flag may
be specified multiple times and each value may contain multiple semicolon
separated statements. If omitted, statements are read from standard input.`,
	}

	TableDisplayFormat = FlagInfo{
		Name: "format",
		Description: `
Selects how to display table rows in results: pretty, tsv or csv. Defaults
to pretty when the output is a terminal, tsv otherwise.`,
	}
)
