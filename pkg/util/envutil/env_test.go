// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package envutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnvString(t *testing.T) {
	const name = "USERCATALOG_ENVUTIL_TEST"
	_, ok := EnvString(name)
	require.False(t, ok)
	require.Equal(t, "dflt", EnvOrDefaultString(name, "dflt"))

	t.Setenv(name, "")
	s, ok := EnvString(name)
	require.True(t, ok)
	require.Equal(t, "", s)

	t.Setenv(name, "v")
	require.Equal(t, "v", EnvOrDefaultString(name, "dflt"))
}

func TestInvalidName(t *testing.T) {
	require.Panics(t, func() { EnvString("HOME") })
	require.Panics(t, func() { EnvString("USERCATALOG_lower") })
}
