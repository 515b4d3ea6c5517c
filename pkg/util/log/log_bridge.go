// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package log

import (
	"bytes"
	"context"
	stdLog "log"
	"regexp"

	"github.com/cockroachdb/redact"
)

// NewStdLogger creates a *stdLog.Logger that forwards messages to this
// package's logger with the specified severity. It is meant for library
// hooks such as http.Server.ErrorLog.
func NewStdLogger(ctx context.Context, severity Severity, prefix string) *stdLog.Logger {
	return stdLog.New(logBridge{ctx: ctx, sev: severity}, prefix, 0)
}

// logBridge provides the Write method connecting a standard logger to
// output().
type logBridge struct {
	ctx context.Context
	sev Severity
}

var ignoredLogMessagesRe = regexp.MustCompile(
	// The HTTP package complains when a client opens a TCP connection
	// and immediately closes it. We don't care.
	`http: TLS handshake error from .*: EOF\s*$`,
)

// Write passes one standard logging line to the logger for lb.sev.
func (lb logBridge) Write(b []byte) (n int, err error) {
	if ignoredLogMessagesRe.Match(b) {
		return len(b), nil
	}
	// The standard logger's output is of unknown sensitivity.
	msg := string(bytes.TrimRight(b, "\n"))
	output(lb.ctx, lb.sev, "%s", []interface{}{redact.Unsafe(msg)})
	return len(b), nil
}
