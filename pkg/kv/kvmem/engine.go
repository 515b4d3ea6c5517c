// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package kvmem provides an in-memory kv.DB backed by a copy-on-write
// B-tree. It is linearizable by construction and is used by tests and by
// single-process deployments that need no durability.
package kvmem

import (
	"bytes"
	"context"

	"github.com/cockroachdb/usercatalog/pkg/kv"
	"github.com/cockroachdb/usercatalog/pkg/util/syncutil"
	"github.com/google/btree"
)

const (
	btreeDegree = 16
	scanBatch   = 64
)

type item struct {
	key   []byte
	value []byte
}

// Less implements btree.Item.
func (i *item) Less(than btree.Item) bool {
	return bytes.Compare(i.key, than.(*item).key) < 0
}

// Engine is an in-memory kv.DB.
type Engine struct {
	mu struct {
		syncutil.RWMutex
		tree   *btree.BTree
		closed bool
	}
}

var _ kv.DB = (*Engine)(nil)

// New returns an empty Engine.
func New() *Engine {
	e := &Engine{}
	e.mu.tree = btree.New(btreeDegree)
	return e
}

// Close releases the engine. Subsequent operations report unavailability.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mu.closed = true
	e.mu.tree = nil
}

func (e *Engine) getLocked(key []byte) ([]byte, bool) {
	e.mu.AssertRHeld()
	i := e.mu.tree.Get(&item{key: key})
	if i == nil {
		return nil, false
	}
	return i.(*item).value, true
}

func (e *Engine) setLocked(key, value []byte) {
	e.mu.AssertHeld()
	if value == nil {
		e.mu.tree.Delete(&item{key: key})
		return
	}
	e.mu.tree.ReplaceOrInsert(&item{
		key:   append([]byte(nil), key...),
		value: append([]byte{}, value...),
	})
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
	v, ok := e.getLocked(key)
	if !ok {
		return nil, nil
	}
	return append([]byte{}, v...), nil
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
	e.setLocked(key, value)
	return nil
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
	cur, ok := e.getLocked(key)
	if !kv.ValuesMatch(cur, ok, expValue) {
		var actual []byte
		if ok {
			actual = append([]byte{}, cur...)
		}
		return &kv.ConditionFailedError{ActualValue: actual}
	}
	e.setLocked(key, value)
	return nil
}

// CPutBatch implements kv.DB. All conditions are evaluated and all writes
// applied under one exclusive lock.
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
	for _, w := range writes {
		cur, ok := e.getLocked(w.Key)
		if !kv.ValuesMatch(cur, ok, w.ExpValue) {
			var actual []byte
			if ok {
				actual = append([]byte{}, cur...)
			}
			return &kv.ConditionFailedError{ActualValue: actual}
		}
	}
	for _, w := range writes {
		e.setLocked(w.Key, w.Value)
	}
	return nil
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
	e.setLocked(key, nil)
	return nil
}

// Scan implements kv.DB. The iterator reads from a lazy clone of the tree,
// so writes that commit after Scan returns are not observed.
func (e *Engine) Scan(ctx context.Context, start, end []byte) (kv.Iterator, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// Clone mutates copy-on-write state on the original tree.
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mu.closed {
		return nil, errClosed()
	}
	return &iterator{
		snap: e.mu.tree.Clone(),
		next: append([]byte(nil), start...),
		end:  append([]byte(nil), end...),
	}, nil
}

func errClosed() error {
	return kv.NewUnavailableErrorf("in-memory engine is closed")
}

type iterator struct {
	snap *btree.BTree
	next []byte
	end  []byte
	buf  []kv.KeyValue
	cur  kv.KeyValue
	done bool
}

func (it *iterator) fill() {
	it.buf = it.buf[:0]
	visit := func(i btree.Item) bool {
		if len(it.buf) == scanBatch {
			return false
		}
		kvi := i.(*item)
		it.buf = append(it.buf, kv.KeyValue{
			Key:   append([]byte(nil), kvi.key...),
			Value: append([]byte{}, kvi.value...),
		})
		return true
	}
	from := &item{key: it.next}
	if len(it.end) == 0 {
		it.snap.AscendGreaterOrEqual(from, visit)
	} else {
		it.snap.AscendRange(from, &item{key: it.end}, visit)
	}
	if len(it.buf) < scanBatch {
		it.done = true
		return
	}
	// Resume right after the last key of the batch.
	last := it.buf[len(it.buf)-1].Key
	it.next = append(append([]byte(nil), last...), 0)
}

// Next implements kv.Iterator.
func (it *iterator) Next(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if it.snap == nil {
		return false, nil
	}
	if len(it.buf) == 0 {
		if it.done {
			return false, nil
		}
		it.fill()
		if len(it.buf) == 0 {
			return false, nil
		}
	}
	it.cur = it.buf[0]
	it.buf = it.buf[1:]
	return true, nil
}

// Cur implements kv.Iterator.
func (it *iterator) Cur() kv.KeyValue {
	return it.cur
}

// Close implements kv.Iterator.
func (it *iterator) Close() error {
	it.snap = nil
	it.buf = nil
	return nil
}
