// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package kv defines the contract the user catalog consumes from the
// replicated metadata keyspace. Implementations must provide linearizable
// single-key reads and writes and snapshot-consistent scans; replication
// and leader election are the implementation's concern.
package kv

import (
	"bytes"
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
)

// KeyValue represents a single key/value pair.
type KeyValue struct {
	Key   []byte
	Value []byte
}

func (kv KeyValue) String() string {
	return fmt.Sprintf("%q=%q", kv.Key, kv.Value)
}

// DB is a handle to the metadata keyspace. A DB is safe for concurrent use
// by multiple goroutines.
//
// Every method may block on a round trip to the consensus leader and must
// honor ctx cancellation. An error satisfying IsUnavailable means the
// operation could not be committed (no leader, no quorum, engine closed);
// an error satisfying IsAmbiguousResult means a write may or may not have
// been applied. Implementations do not retry either internally.
type DB interface {
	// Get returns the value for key, or nil if the key is absent.
	Get(ctx context.Context, key []byte) ([]byte, error)
	// Put unconditionally sets the value for key.
	Put(ctx context.Context, key, value []byte) error
	// CPut conditionally sets the value for key if the existing value
	// equals expValue. A nil expValue requires the key to be absent; a nil
	// value deletes the key. If the condition does not hold the returned
	// error is a *ConditionFailedError carrying the actual value.
	CPut(ctx context.Context, key, value, expValue []byte) error
	// CPutBatch applies several conditional puts as one atomic write:
	// either every condition holds and every write commits together, or
	// nothing is written. A failed condition is reported as a
	// *ConditionFailedError for the first failing key in batch order. Keys
	// must be distinct and non-empty.
	CPutBatch(ctx context.Context, writes []CondWrite) error
	// Del unconditionally deletes key. Deleting an absent key is not an
	// error.
	Del(ctx context.Context, key []byte) error
	// Scan returns an iterator over [start, end) reading from a consistent
	// snapshot taken when Scan is called. Writes committed afterwards are
	// not observed. The caller must Close the iterator.
	Scan(ctx context.Context, start, end []byte) (Iterator, error)
}

// Iterator is a forward iterator over key/value pairs returned by Scan.
//
//	it, err := db.Scan(ctx, start, end)
//	...
//	defer func() { retErr = errors.CombineErrors(retErr, it.Close()) }()
//	var ok bool
//	for ok, err = it.Next(ctx); ok; ok, err = it.Next(ctx) {
//	  kv := it.Cur()
//	}
type Iterator interface {
	// Next advances the iterator. It returns false when the iterator is
	// exhausted or an error occurred.
	Next(ctx context.Context) (bool, error)
	// Cur returns the current pair. The returned slices are owned by the
	// caller.
	Cur() KeyValue
	// Close releases the resources held by the iterator.
	Close() error
}

// CondWrite is one conditional put of a CPutBatch. Value and ExpValue
// follow the CPut conventions: a nil ExpValue requires the key to be absent
// and a nil Value deletes the key.
type CondWrite struct {
	Key      []byte
	Value    []byte
	ExpValue []byte
}

// ValidateBatch checks the shape of a CPutBatch request.
func ValidateBatch(writes []CondWrite) error {
	seen := make(map[string]struct{}, len(writes))
	for _, w := range writes {
		if len(w.Key) == 0 {
			return errors.New("empty key in batch")
		}
		if _, ok := seen[string(w.Key)]; ok {
			return errors.Newf("duplicate key %q in batch", w.Key)
		}
		seen[string(w.Key)] = struct{}{}
	}
	return nil
}

// ValuesMatch reports whether the current state of a key satisfies the
// expected value of a CPut. exists is false if the key is absent.
func ValuesMatch(cur []byte, exists bool, expValue []byte) bool {
	if expValue == nil {
		return !exists
	}
	return exists && bytes.Equal(cur, expValue)
}

// SliceIterator is an Iterator over a materialized list of pairs.
type SliceIterator struct {
	kvs []KeyValue
	pos int
}

var _ Iterator = (*SliceIterator)(nil)

// NewSliceIterator returns an Iterator over kvs.
func NewSliceIterator(kvs []KeyValue) *SliceIterator {
	return &SliceIterator{kvs: kvs, pos: -1}
}

// Next implements Iterator.
func (it *SliceIterator) Next(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if it.pos+1 >= len(it.kvs) {
		it.pos = len(it.kvs)
		return false, nil
	}
	it.pos++
	return true, nil
}

// Cur implements Iterator.
func (it *SliceIterator) Cur() KeyValue {
	return it.kvs[it.pos]
}

// Close implements Iterator.
func (it *SliceIterator) Close() error {
	it.kvs = nil
	return nil
}
