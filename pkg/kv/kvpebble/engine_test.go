// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package kvpebble

import (
	"context"
	"testing"

	"github.com/cockroachdb/pebble/vfs"
	"github.com/cockroachdb/usercatalog/pkg/kv"
	"github.com/cockroachdb/usercatalog/pkg/kv/kvtestutils"
	"github.com/stretchr/testify/require"
)

func openInMem(t *testing.T) *Engine {
	e, err := Open(context.Background(), Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, e.Close()) })
	return e
}

func TestEngine(t *testing.T) {
	kvtestutils.RunDBTests(t, func(t *testing.T) kv.DB {
		return openInMem(t)
	})
}

func TestEngineReopen(t *testing.T) {
	ctx := context.Background()
	fs := vfs.NewMem()
	opts := Options{Dir: "/data", FS: fs}

	e, err := Open(ctx, opts)
	require.NoError(t, err)
	require.NoError(t, e.CPut(ctx, []byte("/meta/users/alice"), []byte("rec"), nil))
	require.NoError(t, e.Close())

	_, err = e.Get(ctx, []byte("/meta/users/alice"))
	require.True(t, kv.IsUnavailable(err), "%+v", err)
	// Closing twice is a no-op.
	require.NoError(t, e.Close())

	e, err = Open(ctx, opts)
	require.NoError(t, err)
	defer func() { require.NoError(t, e.Close()) }()
	v, err := e.Get(ctx, []byte("/meta/users/alice"))
	require.NoError(t, err)
	require.Equal(t, []byte("rec"), v)
}

func TestOpenRequiresDir(t *testing.T) {
	_, err := Open(context.Background(), Options{})
	require.Error(t, err)
}
