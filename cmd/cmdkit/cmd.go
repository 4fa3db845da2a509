// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/invowk/cmdkit/pkg/types"
)

// newCmdCommand creates `cmdkit cmd`, which hands its raw arguments to the
// runtime. Flag parsing is left to the runtime because every command
// declares its own flags.
func newCmdCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "cmd [key...] [args] [flags]",
		Short: "Run or list commands from the command tree",
		Long: `Run a command from the merged command tree.

A key is either slash-delimited ('scaffold/cloud/aws') or given as separate
segments ('scaffold cloud aws'). A group key lists its children; --help after
a command key shows its arguments and flags.

Global options understood here:
  --config <path>   load configuration from path
  --dry-run         run the command's dry-run phase instead of Run`,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if code := app.Runtime.Run(cmd.Context(), args); code != types.ExitSuccess {
				return &ExitError{Code: code}
			}
			return nil
		},
	}
}
