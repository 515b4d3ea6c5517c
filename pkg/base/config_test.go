// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package base_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/usercatalog/pkg/base"
	"github.com/cockroachdb/usercatalog/pkg/security/password"
	"github.com/cockroachdb/usercatalog/pkg/testutils"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := base.DefaultConfig()
	// The default config needs a store.
	require.Error(t, cfg.Validate())
	cfg.StoreDir = t.TempDir()
	require.NoError(t, cfg.Validate())

	h, err := cfg.Hasher()
	require.NoError(t, err)
	require.Equal(t, password.HashSCRAMSHA256, h.Method)
	su, err := cfg.SuperUserName()
	require.NoError(t, err)
	require.True(t, su.IsRootUser())

	testCfg := base.TestConfig()
	require.NoError(t, testCfg.Validate())
	require.True(t, testCfg.InMemory)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(*base.Config)
		err    string
	}{
		{"ok", func(*base.Config) {}, ""},
		{"both stores", func(c *base.Config) { c.StoreDir = "/tmp/x" }, "cannot be combined"},
		{"no store", func(c *base.Config) { c.InMemory = false }, "store_dir is required"},
		{"listen addr", func(c *base.Config) { c.ListenAddr = "nope" }, "invalid listen_addr"},
		{"superuser", func(c *base.Config) { c.SuperUser = "bad name" }, "invalid superuser"},
		{"method", func(c *base.Config) { c.HashMethod = "md5" }, "unknown password hash method"},
		{"bcrypt cost", func(c *base.Config) { c.BcryptCost = 99 }, "bcrypt_cost must be between 4 and 31"},
		{"scram", func(c *base.Config) { c.SCRAMIterations = 10 }, "scram_iterations must be at least 4096"},
		{"timeout", func(c *base.Config) { c.StatementTimeout = -time.Second }, "must not be negative"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base.TestConfig()
			tc.modify(&cfg)
			err := cfg.Validate()
			if !testutils.IsError(err, tc.err) {
				t.Fatalf("expected error %q, got %v", tc.err, err)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	write := func(name, contents string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
		return path
	}

	cfg := base.DefaultConfig()
	require.NoError(t, cfg.LoadFile(write("ok.yaml", `
store_dir: /var/lib/usercatalog
superuser: admin
password_hash_method: argon2id
statement_timeout: 3s
verbosity: 2
`)))
	require.Equal(t, "/var/lib/usercatalog", cfg.StoreDir)
	require.Equal(t, "admin", cfg.SuperUser)
	require.Equal(t, "argon2id", cfg.HashMethod)
	require.Equal(t, 3*time.Second, cfg.StatementTimeout)
	require.Equal(t, 2, cfg.Verbosity)
	// Unset keys keep their defaults.
	require.Equal(t, base.DefaultListenAddr, cfg.ListenAddr)
	require.NoError(t, cfg.Validate())

	require.NoError(t, cfg.LoadFile(write("empty.yaml", "")))
	require.Equal(t, "admin", cfg.SuperUser)

	err := cfg.LoadFile(write("unknown.yaml", "colour: blue\n"))
	require.True(t, testutils.IsError(err, "field colour not found"), "%v", err)

	err = cfg.LoadFile(filepath.Join(dir, "missing.yaml"))
	require.True(t, testutils.IsError(err, "reading config file"), "%v", err)
}
