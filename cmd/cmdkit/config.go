// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/invowk/cmdkit/internal/config"
	"github.com/invowk/cmdkit/internal/issue"
)

// newConfigCommand creates the `cmdkit config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage cmdkit configuration",
		Long: `Manage cmdkit configuration.

Configuration is read from the first of:
  - the file given with --config
  - cmdkit.cue in the config directory
    (Linux: $XDG_CONFIG_HOME/cmdkit, macOS: ~/Library/Application Support/cmdkit,
    Windows: %APPDATA%\cmdkit)
  - cmdkit.cue in the working directory

Any value can be overridden with a CMDKIT_ environment variable
(for example CMDKIT_UI_VERBOSE=true).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var format string
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, path, err := app.loadConfig(cmd.Context())
			if err != nil {
				if app.verbose {
					if rendered, rerr := issue.Get(issue.ConfigLoadFailedId).Render("dark"); rerr == nil {
						fmt.Fprint(cmd.ErrOrStderr(), rendered)
					}
				}
				return err
			}

			out, err := config.Render(cfg, format)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if path == "" {
				path = SubtitleStyle.Render("(using defaults)")
			}
			fmt.Fprintf(w, "%s %s\n\n", TitleStyle.Render("# Config file:"), path)
			fmt.Fprint(w, out)
			return nil
		},
	}
	showCmd.Flags().StringVar(&format, "format", config.FormatCUE, "output format (cue or toml)")
	cfgCmd.AddCommand(showCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, created, err := config.CreateDefaultConfig(app.Fs)
			if err != nil {
				return err
			}
			if !created {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", WarningStyle.Render("Configuration already exists:"), path)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", SuccessStyle.Render("Created"), path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the default configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := config.DefaultConfigPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})

	return cfgCmd
}
