// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/invowk/cmdkit/internal/commandtree"
)

func newListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every key of the command tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.session(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()

			entries := s.Tree.Entries()
			if len(entries) == 0 {
				fmt.Fprintln(w, SubtitleStyle.Render("(no commands found)"))
				return nil
			}

			width := 0
			for _, e := range entries {
				width = max(width, len(e.Key))
			}
			for _, e := range entries {
				pad := strings.Repeat(" ", width-len(e.Key)+2)
				fmt.Fprintf(w, "%s%s%-7s  %s\n", CmdStyle.Render(string(e.Key)), pad, e.Kind, SubtitleStyle.Render(origin(e)))
			}
			return nil
		},
	}
}

func origin(e commandtree.Entry) string {
	if e.Implicit {
		return "(implicit)"
	}
	return e.Origin()
}
