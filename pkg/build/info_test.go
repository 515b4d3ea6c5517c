// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package build

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGetInfo(t *testing.T) {
	defer TestingOverrideTag("v1.2.3")()
	defer func(prev string) { utcTime = prev }(utcTime)
	utcTime = "2026/10/01 12:30:00"

	info := GetInfo()
	require.Equal(t, "v1.2.3", info.Tag)
	require.Equal(t, runtime.Version(), info.GoVersion)
	require.Equal(t, time.Date(2026, 10, 1, 12, 30, 0, 0, time.UTC), info.GoTime())
	require.Contains(t, info.Short(), "usercatalog v1.2.3")
	require.False(t, IsRelease())
}

func TestGoTimeUnset(t *testing.T) {
	require.True(t, Info{}.GoTime().IsZero())
}
