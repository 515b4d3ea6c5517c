// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package kvpebble provides a durable single-node kv.DB on top of a pebble
// LSM. Conditional writes are serialized by the engine so that a CPut's read
// and write are atomic with respect to every other write.
package kvpebble

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/cockroachdb/usercatalog/pkg/kv"
	"github.com/cockroachdb/usercatalog/pkg/util/log"
	"github.com/cockroachdb/usercatalog/pkg/util/syncutil"
)

// Options configures an Engine.
type Options struct {
	// Dir is the data directory. It may be empty when InMemory is set.
	Dir string
	// FS overrides the filesystem. Defaults to vfs.Default.
	FS vfs.FS
	// InMemory opens the engine on a fresh in-memory filesystem.
	InMemory bool
}

// Engine is a pebble-backed kv.DB.
type Engine struct {
	db *pebble.DB

	// mu serializes writes and guards closed.
	mu struct {
		syncutil.RWMutex
		closed bool
	}
}

var _ kv.DB = (*Engine)(nil)

// Open opens or creates the engine described by opts.
func Open(ctx context.Context, opts Options) (*Engine, error) {
	fs := opts.FS
	if opts.InMemory {
		fs = vfs.NewMem()
	}
	if fs == nil {
		fs = vfs.Default
	}
	dir := opts.Dir
	if dir == "" {
		if !opts.InMemory {
			return nil, errors.New("kvpebble: a data directory is required")
		}
		dir = "/"
	}
	db, err := pebble.Open(dir, &pebble.Options{
		FS:     fs,
		Logger: &pebbleLogger{ctx: ctx},
	})
	if err != nil {
		return nil, errors.Wrapf(err, "opening pebble engine at %s", dir)
	}
	log.Infof(ctx, "opened pebble engine at %s", dir)
	return &Engine{db: db}, nil
}

// Close closes the engine. Subsequent operations report unavailability.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mu.closed {
		return nil
	}
	e.mu.closed = true
	return e.db.Close()
}

func errClosed() error {
	return kv.NewUnavailableErrorf("pebble engine is closed")
}

func (e *Engine) getLocked(key []byte) ([]byte, bool, error) {
	e.mu.AssertRHeld()
	v, closer, err := e.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	defer closer.Close()
	return append([]byte{}, v...), true, nil
}

// Get implements kv.DB.
func (e *Engine) Get(ctx context.Context, key []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.mu.closed {
		return nil, errClosed()
	}
	v, _, err := e.getLocked(key)
	return v, err
}

func (e *Engine) setLocked(key, value []byte) error {
	e.mu.AssertHeld()
	if value == nil {
		return e.db.Delete(key, pebble.Sync)
	}
	return e.db.Set(key, value, pebble.Sync)
}

// Put implements kv.DB.
func (e *Engine) Put(ctx context.Context, key, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mu.closed {
		return errClosed()
	}
	if value == nil {
		value = []byte{}
	}
	return e.setLocked(key, value)
}

// CPut implements kv.DB.
func (e *Engine) CPut(ctx context.Context, key, value, expValue []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mu.closed {
		return errClosed()
	}
	cur, ok, err := e.getLocked(key)
	if err != nil {
		return err
	}
	if !kv.ValuesMatch(cur, ok, expValue) {
		return &kv.ConditionFailedError{ActualValue: cur}
	}
	return e.setLocked(key, value)
}

// CPutBatch implements kv.DB. The conditions are checked while holding the
// write lock and the writes are committed in a single pebble batch.
func (e *Engine) CPutBatch(ctx context.Context, writes []kv.CondWrite) error {
	if err := kv.ValidateBatch(writes); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mu.closed {
		return errClosed()
	}
	b := e.db.NewBatch()
	defer b.Close()
	for _, w := range writes {
		cur, ok, err := e.getLocked(w.Key)
		if err != nil {
			return err
		}
		if !kv.ValuesMatch(cur, ok, w.ExpValue) {
			return &kv.ConditionFailedError{ActualValue: cur}
		}
		if w.Value == nil {
			err = b.Delete(w.Key, nil)
		} else {
			err = b.Set(w.Key, w.Value, nil)
		}
		if err != nil {
			return err
		}
	}
	return b.Commit(pebble.Sync)
}

// Del implements kv.DB.
func (e *Engine) Del(ctx context.Context, key []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mu.closed {
		return errClosed()
	}
	return e.setLocked(key, nil)
}

// Scan implements kv.DB.
func (e *Engine) Scan(ctx context.Context, start, end []byte) (kv.Iterator, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.mu.closed {
		return nil, errClosed()
	}
	snap := e.db.NewSnapshot()
	opts := &pebble.IterOptions{LowerBound: start}
	if len(end) > 0 {
		opts.UpperBound = end
	}
	iter, err := snap.NewIter(opts)
	if err != nil {
		return nil, errors.CombineErrors(err, snap.Close())
	}
	return &iterator{snap: snap, iter: iter}, nil
}

type iterator struct {
	snap    *pebble.Snapshot
	iter    *pebble.Iterator
	started bool
	valid   bool
}

// Next implements kv.Iterator.
func (it *iterator) Next(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if it.iter == nil {
		return false, nil
	}
	if !it.started {
		it.started = true
		it.valid = it.iter.First()
	} else if it.valid {
		it.valid = it.iter.Next()
	}
	if !it.valid {
		return false, it.iter.Error()
	}
	return true, nil
}

// Cur implements kv.Iterator.
func (it *iterator) Cur() kv.KeyValue {
	return kv.KeyValue{
		Key:   append([]byte(nil), it.iter.Key()...),
		Value: append([]byte{}, it.iter.Value()...),
	}
}

// Close implements kv.Iterator.
func (it *iterator) Close() error {
	if it.iter == nil {
		return nil
	}
	err := errors.CombineErrors(it.iter.Close(), it.snap.Close())
	it.iter, it.snap = nil, nil
	return err
}
