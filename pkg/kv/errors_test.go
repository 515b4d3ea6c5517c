// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package kv

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestConditionFailedErrorEncoding(t *testing.T) {
	ctx := context.Background()
	for _, tc := range []struct {
		name   string
		actual []byte
	}{
		{"absent", nil},
		{"empty", []byte{}},
		{"value", []byte("v1")},
	} {
		t.Run(tc.name, func(t *testing.T) {
			orig := errors.Wrap(&ConditionFailedError{ActualValue: tc.actual}, "cput")
			enc := errors.EncodeError(ctx, orig)
			dec := errors.DecodeError(ctx, enc)

			var cfe *ConditionFailedError
			require.True(t, errors.As(dec, &cfe))
			require.Equal(t, tc.actual, cfe.ActualValue)
			require.Equal(t, orig.Error(), dec.Error())
		})
	}
}

func TestMarkersSurviveEncoding(t *testing.T) {
	ctx := context.Background()

	unavail := errors.Wrap(NewUnavailableErrorf("no leader for range %d", 1), "get")
	require.True(t, IsUnavailable(unavail))
	require.False(t, IsAmbiguousResult(unavail))
	dec := errors.DecodeError(ctx, errors.EncodeError(ctx, unavail))
	require.True(t, IsUnavailable(dec))

	amb := NewAmbiguousResultError(context.DeadlineExceeded)
	require.True(t, IsAmbiguousResult(amb))
	require.False(t, IsUnavailable(amb))
	require.True(t, errors.Is(amb, context.DeadlineExceeded))
	dec = errors.DecodeError(ctx, errors.EncodeError(ctx, amb))
	require.True(t, IsAmbiguousResult(dec))

	require.NoError(t, MarkUnavailable(nil))
	require.True(t, IsUnavailable(MarkUnavailable(errors.New("connection refused"))))
}

func TestSliceIterator(t *testing.T) {
	ctx := context.Background()
	it := NewSliceIterator([]KeyValue{
		{Key: []byte("a"), Value: []byte("1")},
		{Key: []byte("b"), Value: []byte("2")},
	})
	var keys []string
	var ok bool
	var err error
	for ok, err = it.Next(ctx); ok; ok, err = it.Next(ctx) {
		keys = append(keys, string(it.Cur().Key))
	}
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, keys)
	ok, err = it.Next(ctx)
	require.False(t, ok)
	require.NoError(t, err)
	require.NoError(t, it.Close())
}
