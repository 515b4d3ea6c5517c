// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package cli

import (
	"context"
	"io"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/usercatalog/pkg/kv/kvmem"
	"github.com/cockroachdb/usercatalog/pkg/kv/kvrest"
	"github.com/cockroachdb/usercatalog/pkg/sql/dcl"
	"github.com/cockroachdb/usercatalog/pkg/sql/users"
	"github.com/cockroachdb/usercatalog/pkg/util/log"
	"github.com/spf13/cobra"
)

var sqlShellCmd = &cobra.Command{
	Use:   "sql [options]",
	Short: "run user management statements",
	Long: `
Run CREATE USER, ALTER USER and DROP USER statements and queries over
cluster_schema.users. Statements come from -e, or from standard input when
-e is not given.
`,
	Args: cobra.NoArgs,
	RunE: runSQL,
}

// openStore returns a user store: an embedded, freshly bootstrapped one with
// --in-memory, otherwise one reached through the meta node at --meta-addr.
func openStore(ctx context.Context) (_ *users.Store, cleanup func(), _ error) {
	cfg := &cliCtx.cfg
	if !cfg.InMemory {
		client := kvrest.NewClient(cfg.MetaAddr, &http.Client{})
		store, err := users.Open(ctx, client)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "connecting to %s", cfg.MetaAddr)
		}
		return store, func() {}, nil
	}
	su, err := cfg.SuperUserName()
	if err != nil {
		return nil, nil, err
	}
	engine := kvmem.New()
	if _, err := users.Bootstrap(ctx, engine, users.BootstrapOptions{SuperUser: su}); err != nil {
		return nil, nil, err
	}
	store, err := users.Open(ctx, engine)
	if err != nil {
		return nil, nil, err
	}
	log.VEventf(ctx, 1, "using an embedded in-memory engine")
	return store, engine.Close, nil
}

func makeExecutor(ctx context.Context) (_ *dcl.Executor, cleanup func(), _ error) {
	hasher, err := cliCtx.cfg.Hasher()
	if err != nil {
		return nil, nil, err
	}
	store, cleanup, err := openStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	return dcl.NewExecutor(dcl.ExecutorConfig{
		Store:            store,
		Hasher:           hasher,
		StatementTimeout: cliCtx.cfg.StatementTimeout,
	}), cleanup, nil
}

func runSQL(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	exec, cleanup, err := makeExecutor(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	stmts := cliCtx.execStmts
	if len(stmts) == 0 {
		input, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return errors.Wrap(err, "reading statements")
		}
		stmts = []string{string(input)}
	}
	out := cmd.OutOrStdout()
	for _, sql := range stmts {
		results, err := exec.ExecSQL(ctx, sql)
		for _, res := range results {
			if perr := printResult(out, res, cliCtx.tableDisplayFormat); perr != nil {
				return perr
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}
