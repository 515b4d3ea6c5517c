// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package log

import (
	"os"

	"github.com/cockroachdb/usercatalog/pkg/util/syncutil"
)

var exitOverride struct {
	syncutil.Mutex
	f func(int)
}

// SetExitFunc allows setting a function that will be called to exit
// the process when a Fatal message is generated.
//
// Call with a nil function to undo.
func SetExitFunc(f func(int)) {
	exitOverride.Lock()
	defer exitOverride.Unlock()
	exitOverride.f = f
}

// ResetExitFunc undoes any prior call to SetExitFunc.
func ResetExitFunc() {
	SetExitFunc(nil)
}

// exit terminates the process, or calls the function installed with
// SetExitFunc.
func exit(code int) {
	exitOverride.Lock()
	f := exitOverride.f
	exitOverride.Unlock()
	if f == nil {
		os.Exit(code)
	}
	f(code)
}
