// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package kvtestutils_test

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/usercatalog/pkg/kv"
	"github.com/cockroachdb/usercatalog/pkg/kv/kvmem"
	"github.com/cockroachdb/usercatalog/pkg/kv/kvtestutils"
	"github.com/stretchr/testify/require"
)

func TestFaultyDBPassthrough(t *testing.T) {
	kvtestutils.RunDBTests(t, func(t *testing.T) kv.DB {
		return kvtestutils.NewFaultyDB(kvmem.New())
	})
}

func TestFaultyDB(t *testing.T) {
	ctx := context.Background()
	f := kvtestutils.NewFaultyDB(kvmem.New())

	require.NoError(t, f.Put(ctx, []byte("a"), []byte("1")))
	require.Equal(t, 1, f.Writes())

	f.SetUnavailable(true)
	_, err := f.Get(ctx, []byte("a"))
	require.True(t, kv.IsUnavailable(err), "%+v", err)
	require.True(t, kv.IsUnavailable(f.CPut(ctx, []byte("a"), []byte("2"), []byte("1"))))
	_, err = f.Scan(ctx, []byte("a"), []byte("b"))
	require.True(t, kv.IsUnavailable(err), "%+v", err)
	require.Equal(t, 1, f.Writes())
	f.SetUnavailable(false)

	// A hook that races a write in front of the caller's CPut.
	f.SetBeforeWrite(func(ctx context.Context, key []byte) error {
		return f.Wrapped().Put(ctx, key, []byte("raced"))
	})
	err = f.CPut(ctx, []byte("a"), []byte("2"), []byte("1"))
	var cfe *kv.ConditionFailedError
	require.True(t, errors.As(err, &cfe), "%+v", err)
	require.Equal(t, []byte("raced"), cfe.ActualValue)

	boom := errors.New("boom")
	f.SetBeforeWrite(func(context.Context, []byte) error { return boom })
	require.ErrorIs(t, f.Del(ctx, []byte("a")), boom)
	f.SetBeforeWrite(nil)
	require.NoError(t, f.Del(ctx, []byte("a")))

	// A fault on the second key of a batch keeps the first one unwritten.
	f.SetBeforeWrite(func(_ context.Context, key []byte) error {
		if string(key) == "c" {
			return kv.NewUnavailableErrorf("injected: no quorum")
		}
		return nil
	})
	err = f.CPutBatch(ctx, []kv.CondWrite{
		{Key: []byte("b"), Value: []byte("1")},
		{Key: []byte("c"), Value: []byte("1")},
	})
	require.True(t, kv.IsUnavailable(err), "%+v", err)
	v, err := f.Wrapped().Get(ctx, []byte("b"))
	require.NoError(t, err)
	require.Nil(t, v)
}
