// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/cockroachdb/usercatalog/pkg/base"
	"github.com/cockroachdb/usercatalog/pkg/build"
	"github.com/cockroachdb/usercatalog/pkg/cli/cliflags"
	"github.com/cockroachdb/usercatalog/pkg/server"
	"github.com/cockroachdb/usercatalog/pkg/util/envutil"
	"github.com/cockroachdb/usercatalog/pkg/util/log"
	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start [options]",
	Short: "start a meta node",
	Long: `
Start a meta node serving the metadata keyspace. On first start the node
bootstraps the cluster and creates the protected superuser, whose initial
password is read from the ` + cliflags.InitialPasswordEnv + ` environment
variable, if set.
`,
	Args: cobra.NoArgs,
	RunE: runStart,
}

// drainSignals are the signals that trigger a graceful shutdown.
var drainSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

func runStart(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := cliCtx.cfg
	if pw, ok := envutil.EnvString(cliflags.InitialPasswordEnv); ok {
		cfg.InitialPassword = pw
	}

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, drainSignals...)
	defer signal.Stop(signalCh)

	s, err := server.NewServer(ctx, cfg, nil)
	if err != nil {
		return err
	}
	if err := s.Start(ctx); err != nil {
		_ = s.Stop(ctx)
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 1, 2, ' ', 0)
	fmt.Fprintf(tw, "usercatalog node starting\n")
	fmt.Fprintf(tw, "build:\t%s\n", build.GetInfo().Short())
	fmt.Fprintf(tw, "meta addr:\t%s\n", s.URL())
	fmt.Fprintf(tw, "status vars:\t%s%s\n", s.URL(), server.StatusVarsPath)
	if cfg.InMemory {
		fmt.Fprintf(tw, "store:\tin-memory\n")
	} else {
		fmt.Fprintf(tw, "store:\t%s\n", cfg.StoreDir)
	}
	fmt.Fprintf(tw, "superuser:\t%s\n", cfg.SuperUser)
	_ = tw.Flush()

	select {
	case sig := <-signalCh:
		log.Infof(ctx, "received signal %s, shutting down", sig)
	case <-ctx.Done():
		log.Infof(ctx, "shutting down")
	}
	stopCtx, cancel := context.WithTimeout(context.Background(), base.DefaultShutdownTimeout)
	defer cancel()
	return s.Stop(stopCtx)
}
