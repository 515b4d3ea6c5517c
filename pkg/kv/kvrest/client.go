// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package kvrest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/errors/errorspb"
	"github.com/cockroachdb/usercatalog/pkg/kv"
	"github.com/gogo/protobuf/proto"
)

// maxResponseBytes bounds the size of a response body read by the client.
const maxResponseBytes = 64 << 20

// Client is a kv.DB talking to a Server.
type Client struct {
	baseURL string
	hc      *http.Client
}

var _ kv.DB = (*Client)(nil)

// NewClient returns a client for the server at baseURL, for example
// "http://localhost:26258". A nil hc uses a default http.Client.
func NewClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{baseURL: strings.TrimSuffix(baseURL, "/"), hc: hc}
}

// Health returns nil if the server answers its health check.
func (c *Client) Health(ctx context.Context) error {
	var resp healthResponse
	return c.do(ctx, http.MethodGet, HealthPath, nil, &resp, false /* write */)
}

// Get implements kv.DB.
func (c *Client) Get(ctx context.Context, key []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, errors.New("empty key")
	}
	var resp getResponse
	if err := c.do(ctx, http.MethodGet, keyPath+encodeKey(key), nil, &resp, false /* write */); err != nil {
		return nil, err
	}
	return resp.Value, nil
}

// Put implements kv.DB.
func (c *Client) Put(ctx context.Context, key, value []byte) error {
	if len(key) == 0 {
		return errors.New("empty key")
	}
	if value == nil {
		value = []byte{}
	}
	return c.do(ctx, http.MethodPut, keyPath+encodeKey(key), putRequest{Value: value}, nil, true /* write */)
}

// CPut implements kv.DB.
func (c *Client) CPut(ctx context.Context, key, value, expValue []byte) error {
	if len(key) == 0 {
		return errors.New("empty key")
	}
	req := cputRequest{Key: key, Value: value, ExpValue: expValue}
	return c.do(ctx, http.MethodPost, cputPath, req, nil, true /* write */)
}

// CPutBatch implements kv.DB. The batch travels in one request and is
// applied by the server's DB as a unit.
func (c *Client) CPutBatch(ctx context.Context, writes []kv.CondWrite) error {
	if err := kv.ValidateBatch(writes); err != nil {
		return err
	}
	req := cputBatchRequest{Writes: make([]cputRequest, len(writes))}
	for i, w := range writes {
		req.Writes[i] = cputRequest{Key: w.Key, Value: w.Value, ExpValue: w.ExpValue}
	}
	return c.do(ctx, http.MethodPost, batchPath, req, nil, true /* write */)
}

// Del implements kv.DB.
func (c *Client) Del(ctx context.Context, key []byte) error {
	if len(key) == 0 {
		return errors.New("empty key")
	}
	return c.do(ctx, http.MethodDelete, keyPath+encodeKey(key), nil, nil, true /* write */)
}

// Scan implements kv.DB. The server evaluates the whole span against one
// snapshot and returns it in a single response.
func (c *Client) Scan(ctx context.Context, start, end []byte) (kv.Iterator, error) {
	var resp scanResponse
	if err := c.do(ctx, http.MethodPost, scanPath, scanRequest{Start: start, End: end}, &resp, false /* write */); err != nil {
		return nil, err
	}
	kvs := make([]kv.KeyValue, len(resp.KVs))
	for i, p := range resp.KVs {
		kvs[i] = kv.KeyValue{Key: p.Key, Value: p.Value}
	}
	return kv.NewSliceIterator(kvs), nil
}

func (c *Client) do(
	ctx context.Context, method, path string, reqBody, respBody interface{}, write bool,
) error {
	// A context that is already done never reached the server.
	if err := ctx.Err(); err != nil {
		return err
	}
	var body io.Reader
	if reqBody != nil {
		b, err := json.Marshal(reqBody)
		if err != nil {
			return errors.Wrap(err, "encoding request")
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errors.Wrap(err, "building request")
	}
	if body != nil {
		req.Header.Set(contentTypeHeader, jsonContentType)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			if write {
				return kv.NewAmbiguousResultError(errors.Wrapf(ctxErr, "%s %s", method, path))
			}
			return ctxErr
		}
		return kv.MarkUnavailable(errors.Wrap(err, "contacting meta service"))
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if write {
			return kv.NewAmbiguousResultError(errors.Wrap(err, "reading response"))
		}
		return kv.MarkUnavailable(errors.Wrap(err, "reading response"))
	}

	if resp.StatusCode == http.StatusOK {
		if respBody == nil {
			return nil
		}
		return errors.Wrap(json.Unmarshal(data, respBody), "decoding response")
	}
	return c.decodeError(ctx, resp, data, write)
}

func (c *Client) decodeError(ctx context.Context, resp *http.Response, data []byte, write bool) error {
	var err error
	if resp.Header.Get(contentTypeHeader) == protoContentType {
		var enc errorspb.EncodedError
		if perr := proto.Unmarshal(data, &enc); perr != nil {
			err = errors.Wrapf(perr, "decoding error response (%s)", resp.Status)
		} else {
			err = errors.DecodeError(ctx, enc)
		}
	} else {
		err = errors.Newf("meta service returned %s: %s", resp.Status, strings.TrimSpace(string(data)))
	}
	switch resp.StatusCode {
	case http.StatusServiceUnavailable:
		if !kv.IsUnavailable(err) {
			err = kv.MarkUnavailable(err)
		}
	case http.StatusGatewayTimeout:
		if write && !kv.IsAmbiguousResult(err) {
			err = kv.NewAmbiguousResultError(err)
		}
	}
	return err
}
