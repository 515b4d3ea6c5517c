// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package contextutil

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestRunWithTimeout(t *testing.T) {
	ctx := context.Background()
	err := RunWithTimeout(ctx, "foo", 1, func(ctx context.Context) error {
		time.Sleep(10 * time.Millisecond)
		return nil
	})
	require.NoError(t, err, "no timeout error if nobody touched the context")

	err = RunWithTimeout(ctx, "foo", 1, func(ctx context.Context) error {
		time.Sleep(10 * time.Millisecond)
		return errors.Wrap(ctx.Err(), "custom error")
	})
	require.EqualError(t, err, `operation "foo" timed out after 1ns`)
	var netErr net.Error
	require.True(t, errors.As(err, &netErr))
	require.True(t, netErr.Timeout())
	require.True(t, errors.Is(err, context.DeadlineExceeded))
	require.True(t, errors.HasType(err, (*TimeoutError)(nil)))
}

// TestRunWithTimeoutWithoutDeadlineExceeded ensures that when a timeout on the
// context occurs but the underlying error does not have
// context.DeadlineExceeded as its cause, the returned error is still a
// TimeoutError wrapping the returned error.
func TestRunWithTimeoutWithoutDeadlineExceeded(t *testing.T) {
	notDeadlineExceeded := errors.New(context.DeadlineExceeded.Error())
	err := RunWithTimeout(context.Background(), "foo", 1, func(ctx context.Context) error {
		<-ctx.Done()
		return notDeadlineExceeded
	})
	var te *TimeoutError
	require.True(t, errors.As(err, &te))
	require.Equal(t, "foo", te.Operation())
	require.True(t, errors.Is(err, notDeadlineExceeded))
}

func TestRunWithoutTimeout(t *testing.T) {
	sentinel := errors.New("boom")
	err := RunWithTimeout(context.Background(), "foo", 0, func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		require.False(t, ok)
		return sentinel
	})
	require.Same(t, sentinel, err)
}
