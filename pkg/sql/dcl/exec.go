// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package dcl

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/logtags"
	"github.com/cockroachdb/usercatalog/pkg/security/password"
	"github.com/cockroachdb/usercatalog/pkg/sql/catalog/clusterschema"
	"github.com/cockroachdb/usercatalog/pkg/sql/users"
	"github.com/cockroachdb/usercatalog/pkg/util/contextutil"
	"github.com/cockroachdb/usercatalog/pkg/util/log"
)

// ExecutorConfig configures an Executor.
type ExecutorConfig struct {
	Store  *users.Store
	Hasher password.Hasher
	// Metrics may be nil.
	Metrics *Metrics
	// StatementTimeout bounds each statement. Zero means no timeout.
	StatementTimeout time.Duration
}

// Executor runs statements against a user store.
type Executor struct {
	store   *users.Store
	guard   users.Guard
	hasher  password.Hasher
	schema  *clusterschema.Schema
	metrics *Metrics
	timeout time.Duration
}

// NewExecutor creates an Executor.
func NewExecutor(cfg ExecutorConfig) *Executor {
	return &Executor{
		store:   cfg.Store,
		hasher:  cfg.Hasher,
		schema:  clusterschema.NewSchema(cfg.Store),
		metrics: cfg.Metrics,
		timeout: cfg.StatementTimeout,
	}
}

// Metrics returns the metrics the executor records to, or nil.
func (e *Executor) Metrics() *Metrics { return e.metrics }

// Result is the outcome of a statement.
type Result struct {
	// Tag is the command tag, e.g. "CREATE USER".
	Tag string
	// RowsAffected counts the users dropped by DROP USER.
	RowsAffected int
	// Columns and Rows are set for queries.
	Columns []clusterschema.Column
	Rows    []clusterschema.Row
}

// ExecSQL parses sql and executes its statements in order, stopping at the
// first error. The results of the statements that ran are returned along
// with the error.
func (e *Executor) ExecSQL(ctx context.Context, sql string) ([]*Result, error) {
	stmts, err := Parse(sql)
	if err != nil {
		return nil, err
	}
	results := make([]*Result, 0, len(stmts))
	for _, stmt := range stmts {
		res, err := e.Exec(ctx, stmt)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// Exec executes one statement within the statement timeout. A failed
// statement leaves every record unchanged, except that a statement whose
// write timed out may or may not have been applied; such errors satisfy
// kv.IsAmbiguousResult.
func (e *Executor) Exec(ctx context.Context, stmt Statement) (*Result, error) {
	label := metricLabel(stmt)
	ctx = logtags.AddTag(ctx, "stmt", label)
	start := time.Now()
	var res *Result
	err := contextutil.RunWithTimeout(ctx, label, e.timeout, func(ctx context.Context) error {
		var err error
		res, err = e.exec(ctx, stmt)
		return err
	})
	e.metrics.record(stmt, err, time.Since(start))
	if err != nil {
		log.VEventf(ctx, 1, "%s failed: %v", stmt, err)
		return nil, err
	}
	log.VEventf(ctx, 2, "%s", stmt)
	return res, nil
}

func (e *Executor) exec(ctx context.Context, stmt Statement) (*Result, error) {
	switch n := stmt.(type) {
	case *CreateUser:
		return e.createUser(ctx, n)
	case *AlterUser:
		return e.alterUser(ctx, n)
	case *DropUser:
		return e.dropUser(ctx, n)
	case *Select:
		return e.query(ctx, n)
	}
	return nil, errors.AssertionFailedf("unknown statement type %T", stmt)
}

// hashPassword resolves a PASSWORD option. NULL yields an empty, non-nil
// credential that clears the password.
func (e *Executor) hashPassword(ctx context.Context, opt UserOption) (password.Credential, error) {
	if opt.Null {
		return password.Credential{}, nil
	}
	return e.hasher.Hash(ctx, opt.Str)
}

func (e *Executor) createUser(ctx context.Context, n *CreateUser) (*Result, error) {
	if err := n.Name.ValidateForCreation(); err != nil {
		return nil, err
	}
	rec := users.UserRecord{Name: n.Name}
	// Password hashing happens before the store is touched.
	for _, opt := range n.Options {
		switch opt.Kind {
		case OptionPassword:
			cred, err := e.hashPassword(ctx, opt)
			if err != nil {
				return nil, err
			}
			rec.Credential = cred
		case OptionMustChangePassword:
			rec.MustChangePassword = opt.Bool
		case OptionComment:
			if !opt.Null {
				rec.Comment = opt.Str
			}
		default:
			return nil, errors.AssertionFailedf("option %s in CREATE USER", opt.Kind)
		}
	}
	if err := e.guard.CheckCreate(&rec); err != nil {
		return nil, err
	}
	_, err := e.store.Create(ctx, rec)
	if n.IfNotExists && errors.Is(err, users.ErrUserAlreadyExists) {
		log.VEventf(ctx, 2, "user %s already exists, skipping", n.Name)
		err = nil
	}
	if err != nil {
		return nil, err
	}
	return &Result{Tag: n.StatementTag()}, nil
}

func (e *Executor) alterUser(ctx context.Context, n *AlterUser) (*Result, error) {
	var m users.Mutation
	for _, opt := range n.Options {
		opt := opt
		switch opt.Kind {
		case OptionPassword:
			cred, err := e.hashPassword(ctx, opt)
			if err != nil {
				return nil, err
			}
			m.Credential = cred
		case OptionGrantedAdmin:
			m.IsAdmin = &opt.Bool
		case OptionMustChangePassword:
			m.MustChangePassword = &opt.Bool
		case OptionComment:
			if opt.Null {
				opt.Str = ""
			}
			m.Comment = &opt.Str
		}
	}
	// The guard runs inside the mutator so that it judges the record
	// version the conditional put is checked against.
	_, err := e.store.Update(ctx, n.Name, func(rec *users.UserRecord) error {
		if err := e.guard.CheckAlter(*rec, m); err != nil {
			return err
		}
		m.Apply(rec)
		return nil
	})
	if n.IfExists && errors.Is(err, users.ErrUserNotFound) {
		log.VEventf(ctx, 2, "user %s does not exist, skipping", n.Name)
		err = nil
	}
	if err != nil {
		return nil, err
	}
	return &Result{Tag: n.StatementTag()}, nil
}

func (e *Executor) dropUser(ctx context.Context, n *DropUser) (*Result, error) {
	// The guard vetoes the whole statement, so a rejected name leaves the
	// other names in place.
	dropped, err := e.store.DeleteMany(ctx, n.Names, n.IfExists, e.guard.CheckDrop)
	if err != nil {
		return nil, err
	}
	return &Result{Tag: n.StatementTag(), RowsAffected: dropped}, nil
}

func (e *Executor) query(ctx context.Context, n *Select) (*Result, error) {
	t, err := e.schema.LookupTable(n.Schema, n.Table)
	if err != nil {
		return nil, err
	}
	out, err := t.Select(ctx, n.Columns, n.Filters)
	if err != nil {
		return nil, err
	}
	if e.metrics != nil {
		e.metrics.CatalogRows.Add(float64(len(out.Rows)))
	}
	return &Result{Tag: n.StatementTag(), Columns: out.Columns, Rows: out.Rows}, nil
}
