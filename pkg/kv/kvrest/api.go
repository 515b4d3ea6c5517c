// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package kvrest exposes a kv.DB over HTTP and provides the matching
// client. A meta node serves the keyspace with Server; every other process
// reaches it through Client, which itself implements kv.DB.
//
// Requests and successful responses are JSON. Failed requests carry an
// errorspb.EncodedError in protobuf form so that error types and markers
// survive the round trip.
package kvrest

import (
	"encoding/base64"

	"github.com/cockroachdb/errors"
)

const (
	// KVPrefix is the path prefix of the key/value endpoints.
	KVPrefix = "/kv/v1/"
	// HealthPath answers 200 while the server is serving.
	HealthPath = "/health"

	keyPath   = KVPrefix + "key/"
	cputPath  = KVPrefix + "cput"
	batchPath = KVPrefix + "cput-batch"
	scanPath  = KVPrefix + "scan"

	contentTypeHeader = "Content-Type"
	jsonContentType   = "application/json"
	protoContentType  = "application/x-protobuf"
)

type getResponse struct {
	Value []byte `json:"value"`
}

type putRequest struct {
	Value []byte `json:"value"`
}

type cputRequest struct {
	Key      []byte `json:"key"`
	Value    []byte `json:"value"`
	ExpValue []byte `json:"exp_value"`
}

type cputBatchRequest struct {
	Writes []cputRequest `json:"writes"`
}

type scanRequest struct {
	Start []byte `json:"start"`
	End   []byte `json:"end"`
}

type keyValue struct {
	Key   []byte `json:"key"`
	Value []byte `json:"value"`
}

type scanResponse struct {
	KVs []keyValue `json:"kvs"`
}

type healthResponse struct {
	Status string `json:"status"`
}

// encodeKey renders key as a single URL path segment.
func encodeKey(key []byte) string {
	return base64.RawURLEncoding.EncodeToString(key)
}

func decodeKey(s string) ([]byte, error) {
	key, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid key %q", s)
	}
	return key, nil
}
