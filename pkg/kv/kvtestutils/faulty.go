// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package kvtestutils contains helpers for testing code built on kv.DB.
package kvtestutils

import (
	"context"

	"github.com/cockroachdb/usercatalog/pkg/kv"
	"github.com/cockroachdb/usercatalog/pkg/util/syncutil"
)

// FaultyDB wraps a kv.DB and injects failures under test control.
type FaultyDB struct {
	wrapped kv.DB

	mu struct {
		syncutil.Mutex
		unavailable bool
		beforeWrite func(ctx context.Context, key []byte) error
		writes      int
	}
}

var _ kv.DB = (*FaultyDB)(nil)

// NewFaultyDB wraps db.
func NewFaultyDB(db kv.DB) *FaultyDB {
	return &FaultyDB{wrapped: db}
}

// SetUnavailable makes every operation fail with an unavailability error
// until called again with false.
func (f *FaultyDB) SetUnavailable(unavailable bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mu.unavailable = unavailable
}

// SetBeforeWrite installs a hook run before every Put, CPut and Del, and
// once per key of a CPutBatch before any of the batch is applied. A
// non-nil error from the hook is returned in place of the write, so a
// failing hook on any key of a batch leaves every key of it unwritten. The hook
// may write to the wrapped DB to simulate a concurrent writer.
func (f *FaultyDB) SetBeforeWrite(fn func(ctx context.Context, key []byte) error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mu.beforeWrite = fn
}

// Writes returns the number of key writes that passed the injected faults.
func (f *FaultyDB) Writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mu.writes
}

// Wrapped returns the underlying DB.
func (f *FaultyDB) Wrapped() kv.DB {
	return f.wrapped
}

func (f *FaultyDB) check() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mu.unavailable {
		return kv.NewUnavailableErrorf("injected: no quorum")
	}
	return nil
}

func (f *FaultyDB) beforeWrite(ctx context.Context, key []byte) error {
	if err := f.check(); err != nil {
		return err
	}
	f.mu.Lock()
	fn := f.mu.beforeWrite
	f.mu.Unlock()
	if fn != nil {
		if err := fn(ctx, key); err != nil {
			return err
		}
	}
	f.mu.Lock()
	f.mu.writes++
	f.mu.Unlock()
	return nil
}

// Get implements kv.DB.
func (f *FaultyDB) Get(ctx context.Context, key []byte) ([]byte, error) {
	if err := f.check(); err != nil {
		return nil, err
	}
	return f.wrapped.Get(ctx, key)
}

// Put implements kv.DB.
func (f *FaultyDB) Put(ctx context.Context, key, value []byte) error {
	if err := f.beforeWrite(ctx, key); err != nil {
		return err
	}
	return f.wrapped.Put(ctx, key, value)
}

// CPut implements kv.DB.
func (f *FaultyDB) CPut(ctx context.Context, key, value, expValue []byte) error {
	if err := f.beforeWrite(ctx, key); err != nil {
		return err
	}
	return f.wrapped.CPut(ctx, key, value, expValue)
}

// CPutBatch implements kv.DB.
func (f *FaultyDB) CPutBatch(ctx context.Context, writes []kv.CondWrite) error {
	for _, w := range writes {
		if err := f.beforeWrite(ctx, w.Key); err != nil {
			return err
		}
	}
	return f.wrapped.CPutBatch(ctx, writes)
}

// Del implements kv.DB.
func (f *FaultyDB) Del(ctx context.Context, key []byte) error {
	if err := f.beforeWrite(ctx, key); err != nil {
		return err
	}
	return f.wrapped.Del(ctx, key)
}

// Scan implements kv.DB.
func (f *FaultyDB) Scan(ctx context.Context, start, end []byte) (kv.Iterator, error) {
	if err := f.check(); err != nil {
		return nil, err
	}
	return f.wrapped.Scan(ctx, start, end)
}
