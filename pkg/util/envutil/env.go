// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package envutil reads the USERCATALOG_* environment variables.
package envutil

import (
	"context"
	"os"
	"strings"

	"github.com/cockroachdb/redact"
	"github.com/cockroachdb/usercatalog/pkg/util/log"
)

// Prefix is the prefix every recognized environment variable must carry.
const Prefix = "USERCATALOG_"

// EnvString returns the value of the named variable and whether it was
// set. The name must carry Prefix.
func EnvString(name string) (string, bool) {
	checkVarName(name)
	s, ok := os.LookupEnv(name)
	if ok {
		log.VEventf(context.Background(), 1, "using %s from environment", redact.Safe(name))
	}
	return s, ok
}

// EnvOrDefaultString returns the value of the named variable, or value if
// it is not set.
func EnvOrDefaultString(name, value string) string {
	if s, ok := EnvString(name); ok {
		return s
	}
	return value
}

func checkVarName(name string) {
	if !strings.HasPrefix(name, Prefix) || strings.ToUpper(name) != name {
		panic("invalid environment variable name: " + name)
	}
}
