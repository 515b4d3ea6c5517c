// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package server implements the meta node: the process owning the durable
// metadata keyspace. It bootstraps the superuser on first start and serves
// the keyspace to DCL executors over HTTP.
package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/logtags"
	"github.com/cockroachdb/usercatalog/pkg/base"
	"github.com/cockroachdb/usercatalog/pkg/kv/kvpebble"
	"github.com/cockroachdb/usercatalog/pkg/kv/kvrest"
	"github.com/cockroachdb/usercatalog/pkg/security/password"
	"github.com/cockroachdb/usercatalog/pkg/security/username"
	"github.com/cockroachdb/usercatalog/pkg/sql/dcl"
	"github.com/cockroachdb/usercatalog/pkg/sql/users"
	"github.com/cockroachdb/usercatalog/pkg/util/log"
	"github.com/cockroachdb/usercatalog/pkg/util/syncutil"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StatusVarsPath is the path of the Prometheus endpoint.
const StatusVarsPath = "/_status/vars"

// Server is a meta node.
type Server struct {
	cfg        base.Config
	ambientCtx context.Context
	engine     *kvpebble.Engine
	store      *users.Store
	hasher     password.Hasher
	registry   *prometheus.Registry
	dclMetrics *dcl.Metrics
	httpServer *http.Server

	mu struct {
		syncutil.Mutex
		ln      net.Listener
		serveCh chan error
		stopped bool
	}
}

// NewServer opens the engine described by cfg and bootstraps it if it is
// empty. Metrics are registered with registry; a fresh registry is used
// when it is nil.
func NewServer(ctx context.Context, cfg base.Config, registry *prometheus.Registry) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	ctx = logtags.AddTag(ctx, "n", "meta")

	hasher, err := cfg.Hasher()
	if err != nil {
		return nil, err
	}
	su, err := cfg.SuperUserName()
	if err != nil {
		return nil, err
	}
	var cred password.Credential
	if cfg.InitialPassword != "" {
		if cred, err = hasher.Hash(ctx, cfg.InitialPassword); err != nil {
			return nil, errors.Wrap(err, "hashing initial superuser password")
		}
	}

	engine, err := kvpebble.Open(ctx, kvpebble.Options{Dir: cfg.StoreDir, InMemory: cfg.InMemory})
	if err != nil {
		return nil, err
	}
	s := &Server{
		cfg:        cfg,
		ambientCtx: ctx,
		engine:     engine,
		hasher:     hasher,
		registry:   registry,
	}
	if err := s.bootstrap(ctx, su, cred); err != nil {
		_ = engine.Close()
		return nil, err
	}

	hm := newHTTPMetrics(registry)
	s.dclMetrics = dcl.NewMetrics(registry)

	kvHandler := kvrest.NewServer(engine)
	router := mux.NewRouter()
	router.PathPrefix(kvrest.KVPrefix).Handler(kvHandler)
	router.Path(kvrest.HealthPath).Handler(kvHandler)
	router.Path(StatusVarsPath).Methods(http.MethodGet).Handler(
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{
			ErrorLog: log.NewStdLogger(ctx, log.SeverityWarning, "metrics: "),
		}))

	s.httpServer = &http.Server{
		Handler:           hm.instrument(router),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          log.NewStdLogger(ctx, log.SeverityError, "http: "),
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	return s, nil
}

func (s *Server) bootstrap(
	ctx context.Context, su username.SQLUsername, cred password.Credential,
) error {
	identity, err := users.Bootstrap(ctx, s.engine, users.BootstrapOptions{
		SuperUser:  su,
		Credential: cred,
	})
	if err != nil {
		return errors.Wrap(err, "bootstrapping")
	}
	if s.store, err = users.Open(ctx, s.engine); err != nil {
		return err
	}
	log.Infof(ctx, "cluster %s, superuser %s", identity.ClusterID, identity.SuperUser)
	return nil
}

// Start listens on the configured address and serves in the background
// until Stop is called.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mu.stopped {
		return errors.New("server is stopped")
	}
	if s.mu.ln != nil {
		return errors.New("server already started")
	}
	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return errors.Wrapf(err, "listening on %s", s.cfg.ListenAddr)
	}
	s.mu.ln = ln
	s.mu.serveCh = make(chan error, 1)
	go func(ch chan<- error) {
		ch <- s.httpServer.Serve(ln)
	}(s.mu.serveCh)
	log.Infof(s.ambientCtx, "serving on %s", ln.Addr())
	return nil
}

// Addr returns the address the server listens on, or "" before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mu.ln == nil {
		return ""
	}
	return s.mu.ln.Addr().String()
}

// URL returns the base URL of the KV API.
func (s *Server) URL() string {
	return "http://" + s.Addr()
}

// Stop shuts the HTTP server down, waiting for in-flight requests until
// ctx is done, and closes the engine. It is idempotent.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mu.stopped {
		return nil
	}
	s.mu.stopped = true

	var err error
	if s.mu.ln != nil {
		err = s.httpServer.Shutdown(ctx)
		if serveErr := <-s.mu.serveCh; !errors.Is(serveErr, http.ErrServerClosed) {
			err = errors.CombineErrors(err, serveErr)
		}
	}
	err = errors.CombineErrors(err, s.engine.Close())
	log.Infof(s.ambientCtx, "stopped")
	return err
}

// Store returns the user store over the node's engine.
func (s *Server) Store() *users.Store { return s.store }

// Registry returns the registry the node's metrics are registered with.
func (s *Server) Registry() *prometheus.Registry { return s.registry }

// Executor returns a DCL executor running against the node's engine
// directly. Its metrics are exported on StatusVarsPath.
func (s *Server) Executor() *dcl.Executor {
	return dcl.NewExecutor(dcl.ExecutorConfig{
		Store:            s.store,
		Hasher:           s.hasher,
		Metrics:          s.dclMetrics,
		StatementTimeout: s.cfg.StatementTimeout,
	})
}
