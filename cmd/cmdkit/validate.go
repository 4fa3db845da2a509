// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/invowk/cmdkit/internal/discovery"
	"github.com/invowk/cmdkit/pkg/cli"
	"github.com/invowk/cmdkit/pkg/types"
)

// newValidateCommand creates `cmdkit validate`: it merges the tree and loads
// every command file, reporting everything it finds.
func newValidateCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check command sources and command files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()

			s, err := app.session(cmd.Context())
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), ErrorStyle.Render("✗ ")+formatErrorForDisplay(cli.Actionable(err), app.verbose))
				return &ExitError{Code: types.ExitFailure}
			}

			for _, d := range s.Diagnostics() {
				style := WarningStyle
				if d.Severity == discovery.SeverityError {
					style = ErrorStyle
				}
				fmt.Fprintln(w, style.Render(d.String()))
			}

			errs := s.Check()
			for _, err := range errs {
				fmt.Fprintln(cmd.ErrOrStderr(), ErrorStyle.Render("✗ ")+formatErrorForDisplay(cli.Actionable(err), app.verbose))
			}
			if len(errs) > 0 {
				return &ExitError{Code: types.ExitFailure}
			}

			fmt.Fprintln(w, SuccessStyle.Render(fmt.Sprintf("✓ %d entries, all command files valid", s.Tree.Len())))
			return nil
		},
	}
}
