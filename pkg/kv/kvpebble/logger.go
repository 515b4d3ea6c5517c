// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package kvpebble

import (
	"context"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/usercatalog/pkg/util/log"
)

// pebbleLogger routes pebble's internal logging through pkg/util/log, with
// the context tags of the opening context.
type pebbleLogger struct {
	ctx context.Context
}

var _ pebble.Logger = (*pebbleLogger)(nil)

func (l *pebbleLogger) Infof(format string, args ...interface{}) {
	log.Infof(l.ctx, "pebble: %s", fmt.Sprintf(format, args...))
}

func (l *pebbleLogger) Errorf(format string, args ...interface{}) {
	log.Errorf(l.ctx, "pebble: %s", fmt.Sprintf(format, args...))
}

func (l *pebbleLogger) Fatalf(format string, args ...interface{}) {
	log.Fatalf(l.ctx, "pebble: %s", fmt.Sprintf(format, args...))
}
