// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package log implements context-aware leveled logging. Log tags attached to
// the context with logtags are rendered as a bracketed prefix, and arguments
// pass through redact so that sensitive values can be marked in the output.
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/cockroachdb/logtags"
	"github.com/cockroachdb/redact"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Severity identifies the importance of a log entry.
type Severity int

const (
	// SeverityInfo is used for informational messages.
	SeverityInfo Severity = iota
	// SeverityWarning is used for situations which may need attention.
	SeverityWarning
	// SeverityError is used for errors which do not stop the process.
	SeverityError
	// SeverityFatal is used for errors which terminate the process.
	SeverityFatal
)

// Level specifies a level of verbosity for V logs.
type Level int32

type loggingT struct {
	logger     atomic.Pointer[zap.Logger]
	redactable atomic.Bool
	verbosity  atomic.Int32
}

var mainLog loggingT

func init() {
	mainLog.logger.Store(newLogger(os.Stderr))
}

func newLogger(w io.Writer) *zap.Logger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.AddSync(w),
		zapcore.DebugLevel,
	)
	// Skip the exported entry point and output().
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2))
}

// SetOutput redirects all log output to w and returns a function that
// restores the previous destination.
func SetOutput(w io.Writer) (restore func()) {
	prev := mainLog.logger.Swap(newLogger(w))
	return func() {
		mainLog.logger.Store(prev)
	}
}

// SetRedactable controls whether redaction markers are kept in the output.
func SetRedactable(enabled bool) {
	mainLog.redactable.Store(enabled)
}

// SetVModule sets the global verbosity level used by V and VEventf.
func SetVModule(level int) {
	mainLog.verbosity.Store(int32(level))
}

// V returns true if the logging verbosity is at least the given level.
func V(level Level) bool {
	return Level(mainLog.verbosity.Load()) >= level
}

// Infof logs to the INFO severity.
func Infof(ctx context.Context, format string, args ...interface{}) {
	output(ctx, SeverityInfo, format, args)
}

// Info logs a message to the INFO severity.
func Info(ctx context.Context, msg string) {
	output(ctx, SeverityInfo, "%s", []interface{}{redact.Safe(msg)})
}

// Warningf logs to the WARNING severity.
func Warningf(ctx context.Context, format string, args ...interface{}) {
	output(ctx, SeverityWarning, format, args)
}

// Errorf logs to the ERROR severity.
func Errorf(ctx context.Context, format string, args ...interface{}) {
	output(ctx, SeverityError, format, args)
}

// Fatalf logs to the FATAL severity and terminates the process.
func Fatalf(ctx context.Context, format string, args ...interface{}) {
	output(ctx, SeverityFatal, format, args)
	exit(255)
}

// VEventf logs at INFO severity if the verbosity is at least level.
func VEventf(ctx context.Context, level Level, format string, args ...interface{}) {
	if V(level) {
		output(ctx, SeverityInfo, format, args)
	}
}

// FormatWithContextTags formats the string and prepends the context tags.
// Redaction markers are not included.
func FormatWithContextTags(ctx context.Context, format string, args ...interface{}) string {
	return makeMessage(ctx, format, args).StripMarkers()
}

func makeMessage(ctx context.Context, format string, args []interface{}) redact.RedactableString {
	var buf redact.StringBuilder
	if tags := logtags.FromContext(ctx); tags != nil {
		buf.SafeRune('[')
		for i, t := range tags.Get() {
			if i > 0 {
				buf.SafeRune(',')
			}
			buf.SafeString(redact.SafeString(t.Key()))
			if v := t.Value(); v != nil {
				buf.SafeRune('=')
				buf.Print(v)
			}
		}
		buf.SafeString("] ")
	}
	buf.Printf(format, args...)
	return buf.RedactableString()
}

func output(ctx context.Context, sev Severity, format string, args []interface{}) {
	msg := makeMessage(ctx, format, args)
	var text string
	if mainLog.redactable.Load() {
		text = string(msg)
	} else {
		text = msg.StripMarkers()
	}
	logger := mainLog.logger.Load()
	switch sev {
	case SeverityInfo:
		logger.Info(text)
	case SeverityWarning:
		logger.Warn(text)
	case SeverityError:
		logger.Error(text)
	case SeverityFatal:
		// zap's Fatal would exit before exitFunc can be intercepted.
		logger.Error(fmt.Sprintf("FATAL: %s", text))
		_ = logger.Sync()
	}
}
