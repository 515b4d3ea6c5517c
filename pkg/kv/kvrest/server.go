// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package kvrest

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/usercatalog/pkg/kv"
	"github.com/cockroachdb/usercatalog/pkg/util/log"
	"github.com/gogo/protobuf/proto"
	"github.com/gorilla/mux"
)

// Server serves a kv.DB over HTTP.
type Server struct {
	db     kv.DB
	router *mux.Router
}

var _ http.Handler = (*Server)(nil)

// NewServer returns a handler serving db.
func NewServer(db kv.DB) *Server {
	s := &Server{db: db, router: mux.NewRouter()}
	routes := []struct {
		path    string
		method  string
		handler http.HandlerFunc
	}{
		{keyPath + "{key}", http.MethodGet, s.handleGet},
		{keyPath + "{key}", http.MethodPut, s.handlePut},
		{keyPath + "{key}", http.MethodDelete, s.handleDel},
		{cputPath, http.MethodPost, s.handleCPut},
		{batchPath, http.MethodPost, s.handleCPutBatch},
		{scanPath, http.MethodPost, s.handleScan},
		{HealthPath, http.MethodGet, s.handleHealth},
	}
	for _, r := range routes {
		s.router.HandleFunc(r.path, r.handler).Methods(r.method)
	}
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func writeJSONResponse(ctx context.Context, w http.ResponseWriter, code int, payload interface{}) {
	res, err := json.Marshal(payload)
	if err != nil {
		writeError(ctx, w, errors.NewAssertionErrorWithWrappedErrf(err, "encoding response"))
		return
	}
	w.Header().Set(contentTypeHeader, jsonContentType)
	w.WriteHeader(code)
	if _, err := w.Write(res); err != nil {
		log.Warningf(ctx, "writing response: %v", err)
	}
}

// errorStatus maps err to the status code the client relies on to
// classify it.
func errorStatus(err error) int {
	switch {
	case errors.HasType(err, (*kv.ConditionFailedError)(nil)):
		return http.StatusConflict
	case kv.IsUnavailable(err):
		return http.StatusServiceUnavailable
	case errors.IsAny(err, context.Canceled, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// unavailableLogEvery limits warnings while the engine rejects requests.
var unavailableLogEvery = log.Every(10 * time.Second)

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	code := errorStatus(err)
	switch {
	case code == http.StatusInternalServerError:
		log.Errorf(ctx, "kv request failed: %+v", err)
	case code == http.StatusServiceUnavailable && unavailableLogEvery.ShouldLog():
		log.Warningf(ctx, "kv request failed: %v", err)
	default:
		log.VEventf(ctx, 2, "kv request failed: %v", err)
	}
	enc := errors.EncodeError(ctx, err)
	body, merr := proto.Marshal(&enc)
	if merr != nil {
		http.Error(w, err.Error(), code)
		return
	}
	w.Header().Set(contentTypeHeader, protoContentType)
	w.WriteHeader(code)
	if _, werr := w.Write(body); werr != nil {
		log.Warningf(ctx, "writing error response: %v", werr)
	}
}

func decodeBody(r *http.Request, into interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return errors.Wrap(dec.Decode(into), "decoding request body")
}

func (s *Server) routeKey(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	key, err := decodeKey(mux.Vars(r)["key"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	return key, true
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key, ok := s.routeKey(w, r)
	if !ok {
		return
	}
	v, err := s.db.Get(ctx, key)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSONResponse(ctx, w, http.StatusOK, getResponse{Value: v})
}

func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key, ok := s.routeKey(w, r)
	if !ok {
		return
	}
	var req putRequest
	if err := decodeBody(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.db.Put(ctx, key, req.Value); err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSONResponse(ctx, w, http.StatusOK, struct{}{})
}

func (s *Server) handleDel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key, ok := s.routeKey(w, r)
	if !ok {
		return
	}
	if err := s.db.Del(ctx, key); err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSONResponse(ctx, w, http.StatusOK, struct{}{})
}

func (s *Server) handleCPut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req cputRequest
	if err := decodeBody(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Key) == 0 {
		http.Error(w, "missing key", http.StatusBadRequest)
		return
	}
	if err := s.db.CPut(ctx, req.Key, req.Value, req.ExpValue); err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSONResponse(ctx, w, http.StatusOK, struct{}{})
}

func (s *Server) handleCPutBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req cputBatchRequest
	if err := decodeBody(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writes := make([]kv.CondWrite, len(req.Writes))
	for i, cw := range req.Writes {
		writes[i] = kv.CondWrite{Key: cw.Key, Value: cw.Value, ExpValue: cw.ExpValue}
	}
	if err := kv.ValidateBatch(writes); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.db.CPutBatch(ctx, writes); err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSONResponse(ctx, w, http.StatusOK, struct{}{})
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req scanRequest
	if err := decodeBody(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	resp, err := s.scan(ctx, req)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSONResponse(ctx, w, http.StatusOK, resp)
}

func (s *Server) scan(ctx context.Context, req scanRequest) (_ scanResponse, retErr error) {
	it, err := s.db.Scan(ctx, req.Start, req.End)
	if err != nil {
		return scanResponse{}, err
	}
	defer func() { retErr = errors.CombineErrors(retErr, it.Close()) }()
	resp := scanResponse{KVs: []keyValue{}}
	var ok bool
	for ok, err = it.Next(ctx); ok; ok, err = it.Next(ctx) {
		cur := it.Cur()
		resp.KVs = append(resp.KVs, keyValue{Key: cur.Key, Value: cur.Value})
	}
	return resp, err
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(r.Context(), w, http.StatusOK, healthResponse{Status: "ok"})
}
