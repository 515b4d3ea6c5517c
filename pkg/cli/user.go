// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/usercatalog/pkg/security/password"
	"github.com/cockroachdb/usercatalog/pkg/security/username"
	"github.com/cockroachdb/usercatalog/pkg/sql/dcl"
	"github.com/spf13/cobra"
)

var userCmd = &cobra.Command{
	Use:   "user [command]",
	Short: "manage users",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Usage()
	},
}

var userSetPasswordCmd = &cobra.Command{
	Use:   "set-password [options] <username>",
	Short: "set a user's password",
	Long: `
Prompt for a new password and set it for the given user. When standard input
is not a terminal the password is read from its first line.
`,
	Args: cobra.ExactArgs(1),
	RunE: runSetPassword,
}

// promptForPassword is overridden in tests.
var promptForPassword = password.PromptForPassword

func readPassword(cmd *cobra.Command) (string, error) {
	if isInteractive {
		return promptForPassword()
	}
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", errors.Wrap(err, "reading password")
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func runSetPassword(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	name, err := username.MakeSQLUsernameFromUserInput(args[0])
	if err != nil {
		return err
	}
	pw, err := readPassword(cmd)
	if err != nil {
		return err
	}
	exec, cleanup, err := makeExecutor(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	stmt := &dcl.AlterUser{
		Name:    name,
		Options: []dcl.UserOption{{Kind: dcl.OptionPassword, Str: pw}},
	}
	res, err := exec.Exec(ctx, stmt)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), res.Tag)
	return nil
}

func init() {
	userCmd.AddCommand(userSetPasswordCmd)
}
