// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package kvtestutils

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/usercatalog/pkg/kv"
	"github.com/cockroachdb/usercatalog/pkg/testutils/skip"
	"github.com/stretchr/testify/require"
)

// ScanAll drains an iterator over [start, end).
func ScanAll(t testing.TB, db kv.DB, start, end []byte) []kv.KeyValue {
	ctx := context.Background()
	it, err := db.Scan(ctx, start, end)
	require.NoError(t, err)
	defer func() { require.NoError(t, it.Close()) }()
	var res []kv.KeyValue
	var ok bool
	for ok, err = it.Next(ctx); ok; ok, err = it.Next(ctx) {
		res = append(res, it.Cur())
	}
	require.NoError(t, err)
	return res
}

// RunDBTests runs the behavioral contract of kv.DB against the databases
// returned by open. Each subtest opens a fresh, empty database.
func RunDBTests(t *testing.T, open func(t *testing.T) kv.DB) {
	ctx := context.Background()

	t.Run("get-missing", func(t *testing.T) {
		db := open(t)
		v, err := db.Get(ctx, []byte("a"))
		require.NoError(t, err)
		require.Nil(t, v)
	})

	t.Run("put-get-del", func(t *testing.T) {
		db := open(t)
		require.NoError(t, db.Put(ctx, []byte("a"), []byte("1")))
		v, err := db.Get(ctx, []byte("a"))
		require.NoError(t, err)
		require.Equal(t, []byte("1"), v)

		require.NoError(t, db.Del(ctx, []byte("a")))
		v, err = db.Get(ctx, []byte("a"))
		require.NoError(t, err)
		require.Nil(t, v)
		// Deleting an absent key is fine.
		require.NoError(t, db.Del(ctx, []byte("a")))
	})

	t.Run("cput", func(t *testing.T) {
		db := open(t)
		key := []byte("k")
		require.NoError(t, db.CPut(ctx, key, []byte("v1"), nil))

		err := db.CPut(ctx, key, []byte("v2"), nil)
		var cfe *kv.ConditionFailedError
		require.True(t, errors.As(err, &cfe), "%+v", err)
		require.Equal(t, []byte("v1"), cfe.ActualValue)

		err = db.CPut(ctx, key, []byte("v2"), []byte("other"))
		require.True(t, errors.As(err, &cfe), "%+v", err)
		require.Equal(t, []byte("v1"), cfe.ActualValue)

		require.NoError(t, db.CPut(ctx, key, []byte("v2"), []byte("v1")))
		v, err := db.Get(ctx, key)
		require.NoError(t, err)
		require.Equal(t, []byte("v2"), v)

		// A nil value deletes.
		require.NoError(t, db.CPut(ctx, key, nil, []byte("v2")))
		v, err = db.Get(ctx, key)
		require.NoError(t, err)
		require.Nil(t, v)

		err = db.CPut(ctx, key, []byte("v3"), []byte("v2"))
		require.True(t, errors.As(err, &cfe), "%+v", err)
		require.Nil(t, cfe.ActualValue)
	})

	t.Run("cput-batch", func(t *testing.T) {
		db := open(t)
		require.NoError(t, db.Put(ctx, []byte("a"), []byte("1")))
		require.NoError(t, db.Put(ctx, []byte("b"), []byte("2")))
		get := func(k string) []byte {
			v, err := db.Get(ctx, []byte(k))
			require.NoError(t, err)
			return v
		}

		// The failing condition on b leaves a untouched.
		err := db.CPutBatch(ctx, []kv.CondWrite{
			{Key: []byte("a"), Value: nil, ExpValue: []byte("1")},
			{Key: []byte("b"), Value: nil, ExpValue: []byte("stale")},
		})
		var cfe *kv.ConditionFailedError
		require.True(t, errors.As(err, &cfe), "%+v", err)
		require.Equal(t, []byte("2"), cfe.ActualValue)
		require.Equal(t, []byte("1"), get("a"))
		require.Equal(t, []byte("2"), get("b"))

		require.NoError(t, db.CPutBatch(ctx, []kv.CondWrite{
			{Key: []byte("a"), Value: nil, ExpValue: []byte("1")},
			{Key: []byte("b"), Value: []byte("3"), ExpValue: []byte("2")},
			{Key: []byte("c"), Value: []byte("4"), ExpValue: nil},
		}))
		require.Nil(t, get("a"))
		require.Equal(t, []byte("3"), get("b"))
		require.Equal(t, []byte("4"), get("c"))

		err = db.CPutBatch(ctx, []kv.CondWrite{
			{Key: []byte("c"), Value: nil, ExpValue: []byte("4")},
			{Key: []byte("c"), Value: nil, ExpValue: []byte("4")},
		})
		require.ErrorContains(t, err, "duplicate key")
		require.Equal(t, []byte("4"), get("c"))

		require.NoError(t, db.CPutBatch(ctx, nil))
	})

	t.Run("scan-bounds", func(t *testing.T) {
		db := open(t)
		for _, k := range []string{"a", "b/1", "b/2", "b/3", "c"} {
			require.NoError(t, db.Put(ctx, []byte(k), []byte(k)))
		}
		var keys []string
		for _, kvp := range ScanAll(t, db, []byte("b/"), []byte("b0")) {
			keys = append(keys, string(kvp.Key))
			require.Equal(t, kvp.Key, kvp.Value)
		}
		require.Equal(t, []string{"b/1", "b/2", "b/3"}, keys)
		require.Empty(t, ScanAll(t, db, []byte("d"), []byte("e")))
	})

	t.Run("scan-large", func(t *testing.T) {
		db := open(t)
		const n = 300
		for i := 0; i < n; i++ {
			require.NoError(t, db.Put(ctx, []byte(fmt.Sprintf("k%04d", i)), []byte(strconv.Itoa(i))))
		}
		kvs := ScanAll(t, db, []byte("k"), []byte("l"))
		require.Len(t, kvs, n)
		for i, kvp := range kvs {
			require.Equal(t, fmt.Sprintf("k%04d", i), string(kvp.Key))
		}
	})

	t.Run("scan-snapshot", func(t *testing.T) {
		db := open(t)
		require.NoError(t, db.Put(ctx, []byte("a"), []byte("1")))
		require.NoError(t, db.Put(ctx, []byte("b"), []byte("2")))
		it, err := db.Scan(ctx, []byte("a"), []byte("z"))
		require.NoError(t, err)
		defer func() { require.NoError(t, it.Close()) }()

		require.NoError(t, db.Put(ctx, []byte("b"), []byte("changed")))
		require.NoError(t, db.Put(ctx, []byte("c"), []byte("3")))

		var got []string
		var ok bool
		for ok, err = it.Next(ctx); ok; ok, err = it.Next(ctx) {
			got = append(got, fmt.Sprintf("%s=%s", it.Cur().Key, it.Cur().Value))
		}
		require.NoError(t, err)
		require.Equal(t, []string{"a=1", "b=2"}, got)
	})

	t.Run("cput-linearizable", func(t *testing.T) {
		skip.UnderShort(t)
		db := open(t)
		key := []byte("counter")
		require.NoError(t, db.Put(ctx, key, []byte("0")))
		const workers, increments = 4, 25
		var wg sync.WaitGroup
		errCh := make(chan error, workers)
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < increments; {
					cur, err := db.Get(ctx, key)
					if err != nil {
						errCh <- err
						return
					}
					n, err := strconv.Atoi(string(cur))
					if err != nil {
						errCh <- err
						return
					}
					err = db.CPut(ctx, key, []byte(strconv.Itoa(n+1)), cur)
					if errors.HasType(err, (*kv.ConditionFailedError)(nil)) {
						continue
					}
					if err != nil {
						errCh <- err
						return
					}
					i++
				}
			}()
		}
		wg.Wait()
		close(errCh)
		for err := range errCh {
			require.NoError(t, err)
		}
		v, err := db.Get(ctx, key)
		require.NoError(t, err)
		require.Equal(t, strconv.Itoa(workers*increments), string(v))
	})

	t.Run("canceled", func(t *testing.T) {
		db := open(t)
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := db.Get(cctx, []byte("a"))
		require.Error(t, err)
	})
}
