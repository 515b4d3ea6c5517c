// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package dcl

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/usercatalog/pkg/kv"
	"github.com/cockroachdb/usercatalog/pkg/security/password"
	"github.com/cockroachdb/usercatalog/pkg/sql/users"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the statement metrics of an Executor.
type Metrics struct {
	Statements  *prometheus.CounterVec
	Latency     *prometheus.HistogramVec
	CatalogRows prometheus.Counter
}

// NewMetrics creates the metrics and registers them with reg, if not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Statements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sql",
			Subsystem: "dcl",
			Name:      "statements_total",
			Help:      "Number of user management statements executed, by statement and outcome.",
		}, []string{"stmt", "outcome"}),
		Latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sql",
			Subsystem: "dcl",
			Name:      "statement_duration_seconds",
			Help:      "Latency of user management statements.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 16),
		}, []string{"stmt"}),
		CatalogRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sql",
			Subsystem: "catalog",
			Name:      "rows_read_total",
			Help:      "Number of rows returned from cluster_schema tables.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Statements, m.Latency, m.CatalogRows)
	}
	return m
}

// metricLabel is the stmt label of a statement.
func metricLabel(stmt Statement) string {
	switch stmt.(type) {
	case *CreateUser:
		return "create_user"
	case *AlterUser:
		return "alter_user"
	case *DropUser:
		return "drop_user"
	case *Select:
		return "select"
	}
	return "unknown"
}

// outcome classifies the result of a statement.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, users.ErrUserAlreadyExists):
		return "already_exists"
	case errors.Is(err, users.ErrUserNotFound):
		return "not_found"
	case errors.Is(err, users.ErrForbiddenPrivilegeChange):
		return "forbidden"
	case errors.Is(err, password.ErrInvalidCredentialInput):
		return "invalid_credential"
	case kv.IsAmbiguousResult(err):
		return "ambiguous"
	case kv.IsUnavailable(err):
		return "unavailable"
	}
	return "error"
}

func (m *Metrics) record(stmt Statement, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	label := metricLabel(stmt)
	m.Statements.WithLabelValues(label, outcome(err)).Inc()
	m.Latency.WithLabelValues(label).Observe(elapsed.Seconds())
}
