// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package kvrest

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/usercatalog/pkg/kv"
	"github.com/cockroachdb/usercatalog/pkg/kv/kvmem"
	"github.com/cockroachdb/usercatalog/pkg/kv/kvtestutils"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T, db kv.DB) *Client {
	ts := httptest.NewServer(NewServer(db))
	t.Cleanup(ts.Close)
	return NewClient(ts.URL, ts.Client())
}

func TestClient(t *testing.T) {
	kvtestutils.RunDBTests(t, func(t *testing.T) kv.DB {
		return startServer(t, kvmem.New())
	})
}

func TestKeyEncoding(t *testing.T) {
	for _, key := range []string{"my_key", "/meta/users/alice", "Hello, 世界", "a/b?c#d", "\x00\xff"} {
		enc := encodeKey([]byte(key))
		require.NotContains(t, enc, "/")
		dec, err := decodeKey(enc)
		require.NoError(t, err)
		require.Equal(t, key, string(dec))
	}
	_, err := decodeKey("not*base64")
	require.Error(t, err)
}

func TestRESTEndpoints(t *testing.T) {
	ts := httptest.NewServer(NewServer(kvmem.New()))
	defer ts.Close()

	testCases := []struct {
		method, path, payload string
		status                int
		response              string
	}{
		{"GET", HealthPath, "", 200, `{"status":"ok"}`},
		{"GET", keyPath + encodeKey([]byte("k")), "", 200, `{"value":null}`},
		{"PUT", keyPath + encodeKey([]byte("k")), `{"value":"dg=="}`, 200, `{}`},
		{"GET", keyPath + encodeKey([]byte("k")), "", 200, `{"value":"dg=="}`},
		{"POST", scanPath, `{"start":"aw==","end":"bA=="}`, 200, `{"kvs":[{"key":"aw==","value":"dg=="}]}`},
		{"DELETE", keyPath + encodeKey([]byte("k")), "", 200, `{}`},
		{"GET", keyPath + "not*base64", "", 400, ""},
		{"POST", cputPath, `{"bogus":1}`, 400, ""},
		{"POST", cputPath, `{"value":"dg=="}`, 400, ""},
		{"PATCH", keyPath + encodeKey([]byte("k")), "", 405, ""},
	}
	for _, c := range testCases {
		t.Run(c.method+" "+c.path, func(t *testing.T) {
			req, err := http.NewRequest(c.method, ts.URL+c.path, strings.NewReader(c.payload))
			require.NoError(t, err)
			resp, err := ts.Client().Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			b, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			require.Equal(t, c.status, resp.StatusCode, "%s", b)
			if c.response != "" {
				require.JSONEq(t, c.response, string(b))
			}
		})
	}
}

func TestClientErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("condition-failed", func(t *testing.T) {
		c := startServer(t, kvmem.New())
		require.NoError(t, c.Put(ctx, []byte("k"), []byte("v1")))
		err := c.CPut(ctx, []byte("k"), []byte("v2"), nil)
		var cfe *kv.ConditionFailedError
		require.True(t, errors.As(err, &cfe), "%+v", err)
		require.Equal(t, []byte("v1"), cfe.ActualValue)
	})

	t.Run("backend-unavailable", func(t *testing.T) {
		f := kvtestutils.NewFaultyDB(kvmem.New())
		c := startServer(t, f)
		f.SetUnavailable(true)
		_, err := c.Get(ctx, []byte("k"))
		require.True(t, kv.IsUnavailable(err), "%+v", err)
		require.True(t, kv.IsUnavailable(c.CPut(ctx, []byte("k"), []byte("v"), nil)))
	})

	t.Run("connection-refused", func(t *testing.T) {
		ts := httptest.NewServer(NewServer(kvmem.New()))
		c := NewClient(ts.URL, ts.Client())
		require.NoError(t, c.Health(ctx))
		ts.Close()
		_, err := c.Get(ctx, []byte("k"))
		require.True(t, kv.IsUnavailable(err), "%+v", err)
		err = c.Put(ctx, []byte("k"), []byte("v"))
		require.True(t, kv.IsUnavailable(err), "%+v", err)
	})

	t.Run("write-timeout-is-ambiguous", func(t *testing.T) {
		f := kvtestutils.NewFaultyDB(kvmem.New())
		unblock := make(chan struct{})
		f.SetBeforeWrite(func(ctx context.Context, _ []byte) error {
			select {
			case <-unblock:
			case <-ctx.Done():
			}
			return nil
		})
		c := startServer(t, f)
		defer close(unblock)

		tctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()
		err := c.CPut(tctx, []byte("k"), []byte("v"), nil)
		require.True(t, kv.IsAmbiguousResult(err), "%+v", err)
		require.True(t, errors.Is(err, context.DeadlineExceeded), "%+v", err)
	})

	t.Run("read-timeout-is-not-ambiguous", func(t *testing.T) {
		tctx, cancel := context.WithCancel(ctx)
		cancel()
		c := startServer(t, kvmem.New())
		_, err := c.Get(tctx, []byte("k"))
		require.ErrorIs(t, err, context.Canceled)
		require.False(t, kv.IsAmbiguousResult(err))
	})

	t.Run("empty-key", func(t *testing.T) {
		c := startServer(t, kvmem.New())
		_, err := c.Get(ctx, nil)
		require.Error(t, err)
	})
}
