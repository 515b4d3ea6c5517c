// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package cli implements the usercatalog command line: the meta node and
// the clients issuing user management statements.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/cockroachdb/usercatalog/pkg/build"
	"github.com/cockroachdb/usercatalog/pkg/cli/clierror"
	"github.com/cockroachdb/usercatalog/pkg/cli/exit"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// Proxy to allow overrides in tests.
var stderr io.Writer = os.Stderr

var versionIncludesDeps bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "output version information",
	Long: `
Output build version information.
`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		info := build.GetInfo()
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 1, 2, ' ', 0)
		fmt.Fprintf(tw, "Build Tag:   %s\n", info.Tag)
		fmt.Fprintf(tw, "Build Time:  %s\n", info.Time)
		fmt.Fprintf(tw, "Revision:    %s\n", info.Revision)
		fmt.Fprintf(tw, "Platform:    %s\n", info.Platform)
		fmt.Fprintf(tw, "Go Version:  %s\n", info.GoVersion)
		if versionIncludesDeps {
			fmt.Fprintf(tw, "Build Deps:\n\t%s\n", strings.Join(info.Dependencies, "\n\t"))
		}
		_ = tw.Flush()
	},
}

var usercatalogCmd = &cobra.Command{
	Use:   "usercatalog [command] (flags)",
	Short: "user catalog meta node and client",
	Long: `
The user catalog stores the cluster's users, their credentials and their
admin privilege. "start" runs the meta node holding the catalog; "sql" and
"user" manage users through it.
`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// isInteractive indicates whether both stdin and stdout refer to the
// terminal.
var isInteractive = isatty.IsTerminal(os.Stdout.Fd()) &&
	isatty.IsTerminal(os.Stdin.Fd())

func init() {
	cobra.EnableCommandSorting = false

	usercatalogCmd.AddCommand(
		startCmd,
		sqlShellCmd,
		userCmd,
		versionCmd,
	)
	usercatalogCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return clierror.NewError(err, exit.CommandLineFlagError())
	})
}

// Main is the entry point of the usercatalog binary.
func Main() {
	if err := Run(os.Args[1:]); err != nil {
		clierror.OutputError(stderr, err)
		exit.WithCode(clierror.ExitCode(err))
	}
}

// Run executes the command line args.
func Run(args []string) error {
	return RunContext(context.Background(), args)
}

// RunContext executes the command line args. Canceling ctx stops a running
// meta node.
func RunContext(ctx context.Context, args []string) error {
	initCLIDefaults()
	usercatalogCmd.SetArgs(args)
	return usercatalogCmd.ExecuteContext(ctx)
}
