// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package cli

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/usercatalog/pkg/base"
	"github.com/cockroachdb/usercatalog/pkg/cli/clierror"
	"github.com/cockroachdb/usercatalog/pkg/cli/cliflags"
	"github.com/cockroachdb/usercatalog/pkg/cli/exit"
	"github.com/cockroachdb/usercatalog/pkg/util/envutil"
	"github.com/cockroachdb/usercatalog/pkg/util/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// flagEnvVars maps flag names to the environment variable read when the
// flag is not given on the command line.
var flagEnvVars = map[string]string{}

func registerEnvVar(flagInfo cliflags.FlagInfo) {
	if flagInfo.EnvVar != "" {
		flagEnvVars[flagInfo.Name] = flagInfo.EnvVar
	}
}

// StringFlag creates a string flag and registers it with the FlagSet.
func StringFlag(f *pflag.FlagSet, valPtr *string, flagInfo cliflags.FlagInfo) {
	f.StringVarP(valPtr, flagInfo.Name, flagInfo.Shorthand, *valPtr, flagInfo.Usage())
	registerEnvVar(flagInfo)
}

// IntFlag creates an int flag and registers it with the FlagSet.
func IntFlag(f *pflag.FlagSet, valPtr *int, flagInfo cliflags.FlagInfo) {
	f.IntVarP(valPtr, flagInfo.Name, flagInfo.Shorthand, *valPtr, flagInfo.Usage())
	registerEnvVar(flagInfo)
}

// BoolFlag creates a bool flag and registers it with the FlagSet.
func BoolFlag(f *pflag.FlagSet, valPtr *bool, flagInfo cliflags.FlagInfo) {
	f.BoolVarP(valPtr, flagInfo.Name, flagInfo.Shorthand, *valPtr, flagInfo.Usage())
	registerEnvVar(flagInfo)
}

// DurationFlag creates a duration flag and registers it with the FlagSet.
func DurationFlag(f *pflag.FlagSet, valPtr *time.Duration, flagInfo cliflags.FlagInfo) {
	f.DurationVarP(valPtr, flagInfo.Name, flagInfo.Shorthand, *valPtr, flagInfo.Usage())
	registerEnvVar(flagInfo)
}

// VarFlag creates a flag with a custom value type and registers it with
// the FlagSet.
func VarFlag(f *pflag.FlagSet, value pflag.Value, flagInfo cliflags.FlagInfo) {
	f.VarP(value, flagInfo.Name, flagInfo.Shorthand, flagInfo.Usage())
	registerEnvVar(flagInfo)
}

// StringArrayFlag creates a repeatable string flag and registers it with
// the FlagSet.
func StringArrayFlag(f *pflag.FlagSet, valPtr *[]string, flagInfo cliflags.FlagInfo) {
	f.StringArrayVarP(valPtr, flagInfo.Name, flagInfo.Shorthand, nil, flagInfo.Usage())
	registerEnvVar(flagInfo)
}

// configFields lists the configuration fields a config file can set, with
// the flag overriding each one, if any.
var configFields = []struct {
	flag cliflags.FlagInfo
	copy func(dst, src *base.Config)
}{
	{cliflags.StoreDir, func(d, s *base.Config) { d.StoreDir = s.StoreDir }},
	{cliflags.InMemory, func(d, s *base.Config) { d.InMemory = s.InMemory }},
	{cliflags.ListenAddr, func(d, s *base.Config) { d.ListenAddr = s.ListenAddr }},
	{cliflags.MetaAddr, func(d, s *base.Config) { d.MetaAddr = s.MetaAddr }},
	{cliflags.SuperUser, func(d, s *base.Config) { d.SuperUser = s.SuperUser }},
	{cliflags.PasswordHashMethod, func(d, s *base.Config) { d.HashMethod = s.HashMethod }},
	{cliflags.StatementTimeout, func(d, s *base.Config) { d.StatementTimeout = s.StatementTimeout }},
	{cliflags.RedactableLogs, func(d, s *base.Config) { d.RedactableLogs = s.RedactableLogs }},
	{cliflags.Verbosity, func(d, s *base.Config) { d.Verbosity = s.Verbosity }},
	{cliflags.FlagInfo{}, func(d, s *base.Config) { d.BcryptCost = s.BcryptCost }},
	{cliflags.FlagInfo{}, func(d, s *base.Config) { d.SCRAMIterations = s.SCRAMIterations }},
}

func setFlagFromEnv(f *pflag.Flag) error {
	envVar, ok := flagEnvVars[f.Name]
	if !ok || f.Changed {
		return nil
	}
	if value, set := envutil.EnvString(envVar); set {
		if err := f.Value.Set(value); err != nil {
			return errors.Wrapf(err, "invalid value %q for %s", value, envVar)
		}
		f.Changed = true
	}
	return nil
}

// resolveConfig applies, in increasing order of precedence, the config
// file and the environment to the flags not given on the command line, and
// then configures logging.
func resolveConfig(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	if f := flags.Lookup(cliflags.Config.Name); f != nil {
		if err := setFlagFromEnv(f); err != nil {
			return clierror.NewError(err, exit.CommandLineFlagError())
		}
	}
	if cliCtx.configFile != "" {
		fileCfg := base.DefaultConfig()
		if err := fileCfg.LoadFile(cliCtx.configFile); err != nil {
			return clierror.NewError(err, exit.CommandLineFlagError())
		}
		for _, field := range configFields {
			if f := flags.Lookup(field.flag.Name); f == nil || !f.Changed {
				field.copy(&cliCtx.cfg, &fileCfg)
			}
		}
	}
	var envErr error
	flags.VisitAll(func(f *pflag.Flag) {
		if envErr == nil {
			envErr = setFlagFromEnv(f)
		}
	})
	if envErr != nil {
		return clierror.NewError(envErr, exit.CommandLineFlagError())
	}

	log.SetVModule(cliCtx.cfg.Verbosity)
	log.SetRedactable(cliCtx.cfg.RedactableLogs)
	return nil
}

// clientFlags registers the flags of the commands talking to a meta node.
func clientFlags(f *pflag.FlagSet) {
	StringFlag(f, &cliCtx.cfg.MetaAddr, cliflags.MetaAddr)
	BoolFlag(f, &cliCtx.cfg.InMemory, cliflags.InMemory)
	StringFlag(f, &cliCtx.cfg.SuperUser, cliflags.SuperUser)
	StringFlag(f, &cliCtx.cfg.HashMethod, cliflags.PasswordHashMethod)
	DurationFlag(f, &cliCtx.cfg.StatementTimeout, cliflags.StatementTimeout)
}

func init() {
	initCLIDefaults()

	usercatalogCmd.PersistentPreRunE = resolveConfig
	{
		pf := usercatalogCmd.PersistentFlags()
		StringFlag(pf, &cliCtx.configFile, cliflags.Config)
		IntFlag(pf, &cliCtx.cfg.Verbosity, cliflags.Verbosity)
		BoolFlag(pf, &cliCtx.cfg.RedactableLogs, cliflags.RedactableLogs)
	}

	{
		f := startCmd.Flags()
		StringFlag(f, &cliCtx.cfg.StoreDir, cliflags.StoreDir)
		BoolFlag(f, &cliCtx.cfg.InMemory, cliflags.InMemory)
		StringFlag(f, &cliCtx.cfg.ListenAddr, cliflags.ListenAddr)
		StringFlag(f, &cliCtx.cfg.SuperUser, cliflags.SuperUser)
		StringFlag(f, &cliCtx.cfg.HashMethod, cliflags.PasswordHashMethod)
		DurationFlag(f, &cliCtx.cfg.StatementTimeout, cliflags.StatementTimeout)
	}

	{
		f := sqlShellCmd.Flags()
		clientFlags(f)
		StringArrayFlag(f, &cliCtx.execStmts, cliflags.Execute)
		VarFlag(f, &cliCtx.tableDisplayFormat, cliflags.TableDisplayFormat)
	}

	clientFlags(userSetPasswordCmd.Flags())

	versionCmd.Flags().BoolVar(&versionIncludesDeps, "build-deps", false,
		"include the linked modules and their versions")
}
