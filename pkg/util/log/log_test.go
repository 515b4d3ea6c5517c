// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package log

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/logtags"
	"github.com/cockroachdb/redact"
	"github.com/stretchr/testify/require"
)

func TestFormatWithContextTags(t *testing.T) {
	ctx := logtags.AddTag(context.Background(), "n", 1)
	ctx = logtags.AddTag(ctx, "stmt", "alter-user")
	ctx = logtags.AddTag(ctx, "noval", nil)
	require.Equal(t, "[n=1,stmt=alter-user,noval] hello world",
		FormatWithContextTags(ctx, "hello %s", "world"))
}

func TestRedactableOutput(t *testing.T) {
	var buf bytes.Buffer
	defer SetOutput(&buf)()
	defer SetRedactable(false)

	ctx := context.Background()
	SetRedactable(true)
	Infof(ctx, "user %s, safe %s", "alice", redact.Safe("created"))
	SetRedactable(false)
	Warningf(ctx, "user %s dropped", "bob")

	out := buf.String()
	require.Contains(t, out, "user ‹alice›, safe created")
	require.Contains(t, out, "user bob dropped")
	require.Contains(t, out, "WARN")
}

func TestVEventf(t *testing.T) {
	var buf bytes.Buffer
	defer SetOutput(&buf)()
	defer SetVModule(0)

	ctx := context.Background()
	VEventf(ctx, 2, "hidden")
	require.NotContains(t, buf.String(), "hidden")

	SetVModule(2)
	require.True(t, V(1))
	VEventf(ctx, 2, "shown")
	require.Contains(t, buf.String(), "shown")
}

func TestEveryN(t *testing.T) {
	start := time.Now()
	e := Every(time.Minute)
	require.True(t, e.shouldLog(start))
	require.False(t, e.shouldLog(start.Add(time.Second)))
	require.True(t, e.shouldLog(start.Add(time.Minute)))

	var zero EveryN
	require.True(t, zero.shouldLog(start))
	require.True(t, zero.shouldLog(start))
}

func TestFatalf(t *testing.T) {
	var buf bytes.Buffer
	defer SetOutput(&buf)()
	var code int
	SetExitFunc(func(c int) { code = c })
	defer ResetExitFunc()

	Fatalf(context.Background(), "store corrupted")
	require.Equal(t, 255, code)
	require.Contains(t, buf.String(), "FATAL: store corrupted")
}

func TestStdLogger(t *testing.T) {
	var buf bytes.Buffer
	defer SetOutput(&buf)()

	ctx := logtags.AddTag(context.Background(), "n", "meta")
	l := NewStdLogger(ctx, SeverityError, "http: ")
	l.Print("accept failed")
	l.Print("http: TLS handshake error from 10.0.0.1:5000: EOF")

	out := buf.String()
	require.Contains(t, out, "[n=meta] http: accept failed")
	require.NotContains(t, out, "handshake")
}
