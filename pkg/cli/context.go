// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package cli

import (
	"github.com/cockroachdb/usercatalog/pkg/base"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// cliCtx captures the command line parameters of the current command.
var cliCtx struct {
	// cfg is the configuration after flags, environment variables and the
	// config file have been applied.
	cfg base.Config
	// configFile is the value of --config.
	configFile string
	// execStmts is the list of statements given with -e.
	execStmts []string
	// tableDisplayFormat selects how query results are printed.
	tableDisplayFormat tableDisplayFormat
}

// initCLIDefaults resets cliCtx and the flags of every command, so that
// successive invocations of Run within one process start afresh.
func initCLIDefaults() {
	cliCtx.cfg = base.DefaultConfig()
	cliCtx.configFile = ""
	cliCtx.execStmts = nil
	cliCtx.tableDisplayFormat = tableDisplayTSV
	if isInteractive {
		cliCtx.tableDisplayFormat = tableDisplayPretty
	}
	versionIncludesDeps = false

	var reset func(cmd *cobra.Command)
	reset = func(cmd *cobra.Command) {
		resetFlags := func(f *pflag.Flag) { f.Changed = false }
		cmd.Flags().VisitAll(resetFlags)
		cmd.PersistentFlags().VisitAll(resetFlags)
		for _, c := range cmd.Commands() {
			reset(c)
		}
	}
	reset(usercatalogCmd)
}
