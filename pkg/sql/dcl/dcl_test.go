// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package dcl_test

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/cockroachdb/datadriven"
	"github.com/cockroachdb/usercatalog/pkg/keys"
	"github.com/cockroachdb/usercatalog/pkg/kv"
	"github.com/cockroachdb/usercatalog/pkg/kv/kvmem"
	"github.com/cockroachdb/usercatalog/pkg/kv/kvtestutils"
	"github.com/cockroachdb/usercatalog/pkg/security/password"
	"github.com/cockroachdb/usercatalog/pkg/security/username"
	"github.com/cockroachdb/usercatalog/pkg/sql/dcl"
	"github.com/cockroachdb/usercatalog/pkg/sql/pgwire/pgerror"
	"github.com/cockroachdb/usercatalog/pkg/sql/users"
	"github.com/cockroachdb/usercatalog/pkg/testutils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testHasher = password.Hasher{Method: password.HashBCrypt, BcryptCost: bcrypt.MinCost}

type testEnv struct {
	db    *kvtestutils.FaultyDB
	store *users.Store
	exec  *dcl.Executor
}

func newTestEnv(t *testing.T, reg prometheus.Registerer) *testEnv {
	ctx := context.Background()
	db := kvtestutils.NewFaultyDB(kvmem.New())
	cred, err := testHasher.Hash(ctx, "rootpw")
	require.NoError(t, err)
	_, err = users.Bootstrap(ctx, db, users.BootstrapOptions{Credential: cred})
	require.NoError(t, err)
	s, err := users.Open(ctx, db)
	require.NoError(t, err)
	return &testEnv{
		db:    db,
		store: s,
		exec: dcl.NewExecutor(dcl.ExecutorConfig{
			Store:   s,
			Hasher:  testHasher,
			Metrics: dcl.NewMetrics(reg),
		}),
	}
}

func formatResult(b *strings.Builder, res *dcl.Result) {
	if res.Columns == nil {
		b.WriteString(res.Tag)
		if res.Tag == "DROP USER" {
			fmt.Fprintf(b, " %d", res.RowsAffected)
		}
		b.WriteByte('\n')
		return
	}
	names := make([]string, len(res.Columns))
	for i, c := range res.Columns {
		names[i] = c.Name
	}
	b.WriteString(strings.Join(names, " "))
	b.WriteByte('\n')
	for _, row := range res.Rows {
		b.WriteString(strings.Join(row.Strings(), " "))
		b.WriteByte('\n')
	}
}

func TestDCL(t *testing.T) {
	datadriven.Walk(t, testutils.TestDataPath(t), func(t *testing.T, path string) {
		env := newTestEnv(t, nil)
		datadriven.RunTest(t, path, func(t *testing.T, d *datadriven.TestData) string {
			ctx := context.Background()
			switch d.Cmd {
			case "exec":
				var b strings.Builder
				results, err := env.exec.ExecSQL(ctx, d.Input)
				for _, res := range results {
					formatResult(&b, res)
				}
				if err != nil {
					fmt.Fprintf(&b, "%v\n", pgerror.Flatten(err))
				}
				return b.String()

			case "parse":
				stmts, err := dcl.Parse(d.Input)
				if err != nil {
					return fmt.Sprintf("%v\n", pgerror.Flatten(err))
				}
				var b strings.Builder
				for _, s := range stmts {
					fmt.Fprintf(&b, "%s\n", s)
				}
				return b.String()

			case "authenticate":
				var user, pw string
				d.ScanArgs(t, "user", &user)
				d.ScanArgs(t, "password", &pw)
				ok, err := env.store.Authenticate(ctx, username.MakeSQLUsernameFromPreNormalizedString(user), pw)
				if err != nil {
					return fmt.Sprintf("%v\n", pgerror.Flatten(err))
				}
				return fmt.Sprintf("%t\n", ok)

			case "unavailable":
				env.db.SetUnavailable(true)
				return ""

			case "available":
				env.db.SetUnavailable(false)
				return ""

			case "fail-write":
				// Writes to the named user's record fail as if the keyspace
				// lost quorum.
				var user string
				d.ScanArgs(t, "user", &user)
				failKey := keys.UserKey(username.MakeSQLUsernameFromPreNormalizedString(user))
				env.db.SetBeforeWrite(func(_ context.Context, key []byte) error {
					if bytes.Equal(key, failKey) {
						return kv.NewUnavailableErrorf("injected: no quorum")
					}
					return nil
				})
				return ""

			case "clear-faults":
				env.db.SetBeforeWrite(nil)
				env.db.SetUnavailable(false)
				return ""

			default:
				d.Fatalf(t, "unknown command %s", d.Cmd)
				return ""
			}
		})
	})
}
