// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package base

import "time"

const (
	// DefaultListenAddr is the address a meta node serves on.
	DefaultListenAddr = "localhost:26258"

	// DefaultMetaAddr is the URL clients use to reach a meta node.
	DefaultMetaAddr = "http://" + DefaultListenAddr

	// DefaultStatementTimeout bounds each DCL statement.
	DefaultStatementTimeout = 10 * time.Second

	// DefaultShutdownTimeout bounds the graceful shutdown of a meta node.
	DefaultShutdownTimeout = 5 * time.Second

	// MinSCRAMIterations is the smallest SCRAM iteration count accepted.
	MinSCRAMIterations = 4096
)
