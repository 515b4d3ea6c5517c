// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package base

import "golang.org/x/crypto/bcrypt"

// TestConfig returns a Config for tests: an in-memory engine on a random
// local port, with cheap crdb-bcrypt credentials.
func TestConfig() Config {
	cfg := DefaultConfig()
	cfg.InMemory = true
	cfg.ListenAddr = "127.0.0.1:0"
	cfg.HashMethod = "crdb-bcrypt"
	cfg.BcryptCost = bcrypt.MinCost
	return cfg
}
