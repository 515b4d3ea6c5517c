// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package base holds the configuration shared by the meta node and the
// command line clients.
package base

import (
	"bytes"
	"net"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/usercatalog/pkg/security/password"
	"github.com/cockroachdb/usercatalog/pkg/security/username"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// Config is the configuration of a meta node or client. It can be loaded
// from a YAML file whose keys are the yaml tags below; command line flags
// override the file.
type Config struct {
	// StoreDir is the directory of the durable engine. Required unless
	// InMemory is set.
	StoreDir string `yaml:"store_dir"`
	// InMemory selects an engine that does not persist across restarts.
	InMemory bool `yaml:"in_memory"`
	// ListenAddr is the host:port the meta node serves on.
	ListenAddr string `yaml:"listen_addr"`
	// MetaAddr is the base URL of the meta node used by clients.
	MetaAddr string `yaml:"meta_addr"`
	// SuperUser names the protected administrator created at bootstrap.
	SuperUser string `yaml:"superuser"`
	// InitialPassword is the superuser's cleartext password, used only when
	// an empty keyspace is bootstrapped. It is never read from a file.
	InitialPassword string `yaml:"-"`
	// HashMethod is the storage format of new credentials.
	HashMethod string `yaml:"password_hash_method"`
	// BcryptCost is the cost of new crdb-bcrypt credentials.
	BcryptCost int `yaml:"bcrypt_cost"`
	// SCRAMIterations is the iteration count of new SCRAM credentials.
	SCRAMIterations int `yaml:"scram_iterations"`
	// StatementTimeout bounds each statement. Zero disables the timeout.
	StatementTimeout time.Duration `yaml:"statement_timeout"`
	// RedactableLogs keeps redaction markers in the log output.
	RedactableLogs bool `yaml:"redactable_logs"`
	// Verbosity is the log verbosity level.
	Verbosity int `yaml:"verbosity"`
}

// DefaultConfig returns a Config with every field set to its default.
func DefaultConfig() Config {
	h := password.DefaultHasher()
	return Config{
		ListenAddr:       DefaultListenAddr,
		MetaAddr:         DefaultMetaAddr,
		SuperUser:        username.RootUser,
		HashMethod:       h.Method.String(),
		BcryptCost:       h.BcryptCost,
		SCRAMIterations:  h.SCRAMIterations,
		StatementTimeout: DefaultStatementTimeout,
	}
}

// LoadFile merges the YAML file at path into c. Keys absent from the file
// keep their current value; unknown keys are an error.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "reading config file")
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		// An empty file decodes to io.EOF.
		if len(bytes.TrimSpace(data)) == 0 {
			return nil
		}
		return errors.Wrapf(err, "parsing config file %s", path)
	}
	return nil
}

// Validate rejects invalid values and combinations.
func (c *Config) Validate() error {
	if c.InMemory && c.StoreDir != "" {
		return errors.New("store_dir cannot be combined with in_memory")
	}
	if !c.InMemory && c.StoreDir == "" {
		return errors.New("store_dir is required unless in_memory is set")
	}
	if _, _, err := net.SplitHostPort(c.ListenAddr); err != nil {
		return errors.Wrapf(err, "invalid listen_addr %q", c.ListenAddr)
	}
	if _, err := c.SuperUserName(); err != nil {
		return errors.Wrap(err, "invalid superuser")
	}
	if _, err := c.Hasher(); err != nil {
		return err
	}
	if c.StatementTimeout < 0 {
		return errors.Newf("statement_timeout must not be negative, got %s", c.StatementTimeout)
	}
	return nil
}

// SuperUserName returns the validated superuser name.
func (c *Config) SuperUserName() (username.SQLUsername, error) {
	return username.MakeSQLUsernameFromUserInput(c.SuperUser)
}

// Hasher returns the credential hasher described by the configuration.
func (c *Config) Hasher() (password.Hasher, error) {
	m, err := password.LookupMethod(c.HashMethod)
	if err != nil {
		return password.Hasher{}, errors.Wrap(err, "invalid password_hash_method")
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return password.Hasher{}, errors.Newf("bcrypt_cost must be between %d and %d, got %d",
			bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost)
	}
	if c.SCRAMIterations < MinSCRAMIterations {
		return password.Hasher{}, errors.Newf("scram_iterations must be at least %d, got %d",
			MinSCRAMIterations, c.SCRAMIterations)
	}
	h := password.DefaultHasher()
	h.Method = m
	h.BcryptCost = c.BcryptCost
	h.SCRAMIterations = c.SCRAMIterations
	return h, nil
}
