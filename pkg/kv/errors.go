// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package kv

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/gogo/protobuf/proto"
	"github.com/gogo/protobuf/types"
)

// ConditionFailedError indicates that the expected value of a CPut was not
// found, either because it was missing or was not equal. The error carries
// the actual value of the key, nil if absent.
type ConditionFailedError struct {
	ActualValue []byte
}

var _ error = (*ConditionFailedError)(nil)

// Error implements error.
func (e *ConditionFailedError) Error() string {
	if e.ActualValue == nil {
		return "unexpected value: <nil>"
	}
	return fmt.Sprintf("unexpected value: %d bytes", len(e.ActualValue))
}

// ErrUnavailable is the marker of errors reporting that the metadata
// keyspace cannot currently commit or serve an operation.
var ErrUnavailable = errors.New("metadata keyspace unavailable")

// ErrAmbiguousResult is the marker of errors reporting that a write may or
// may not have been committed.
var ErrAmbiguousResult = errors.New("result is ambiguous")

// NewUnavailableErrorf creates an error marked with ErrUnavailable.
func NewUnavailableErrorf(format string, args ...interface{}) error {
	return errors.Mark(errors.NewWithDepthf(1, format, args...), ErrUnavailable)
}

// MarkUnavailable marks err with ErrUnavailable.
func MarkUnavailable(err error) error {
	if err == nil {
		return nil
	}
	return errors.Mark(err, ErrUnavailable)
}

// NewAmbiguousResultError wraps the cause of an interrupted write.
func NewAmbiguousResultError(cause error) error {
	return errors.Mark(errors.WrapWithDepth(1, cause, "result is ambiguous"), ErrAmbiguousResult)
}

// IsUnavailable returns true if err reports an unavailable keyspace.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// IsAmbiguousResult returns true if err reports a write with an unknown
// outcome.
func IsAmbiguousResult(err error) bool {
	return errors.Is(err, ErrAmbiguousResult)
}

func encodeConditionFailed(
	_ context.Context, err error,
) (msg string, safeDetails []string, payload proto.Message) {
	e := err.(*ConditionFailedError)
	if e.ActualValue == nil {
		return e.Error(), nil, nil
	}
	return e.Error(), nil, &types.BytesValue{Value: e.ActualValue}
}

func decodeConditionFailed(
	_ context.Context, _ string, _ []string, payload proto.Message,
) error {
	e := &ConditionFailedError{}
	if pb, ok := payload.(*types.BytesValue); ok {
		e.ActualValue = pb.Value
		if e.ActualValue == nil {
			e.ActualValue = []byte{}
		}
	}
	return e
}

func init() {
	key := errors.GetTypeKey((*ConditionFailedError)(nil))
	errors.RegisterLeafEncoder(key, encodeConditionFailed)
	errors.RegisterLeafDecoder(key, decodeConditionFailed)
}
