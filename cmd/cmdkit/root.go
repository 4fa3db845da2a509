// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the cmdkit command-line interface.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/invowk/cmdkit/internal/config"
	"github.com/invowk/cmdkit/internal/issue"
	"github.com/invowk/cmdkit/pkg/types"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the cmdkit command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cmdkit",
		Short: "A command runtime for slash-keyed command trees",
		Long: TitleStyle.Render("cmdkit") + SubtitleStyle.Render(" - A command runtime for slash-keyed command trees") + `

cmdkit resolves a command key such as 'scaffold/cloud/aws' against a tree
merged from command directories and commands registered from Go code,
validates its arguments and flags, and runs its lifecycle.

Command files are CUE files; their path below a source directory is their key.

` + SubtitleStyle.Render("Examples:") + `
  cmdkit cmd                       List top-level commands
  cmdkit cmd scaffold              List the commands in a group
  cmdkit cmd scaffold/cloud/aws    Run a command
  cmdkit list                      List every key
  cmdkit validate                  Check every command file
  cmdkit config show               Show current configuration`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&app.configPath, config.ConfigFlag, "", "config file (default is $XDG_CONFIG_HOME/cmdkit/cmdkit.cue)")

	rootCmd.AddCommand(newCmdCommand(app))
	rootCmd.AddCommand(newListCommand(app))
	rootCmd.AddCommand(newValidateCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI with the process arguments and exits.
func Execute() {
	os.Exit(Run(os.Args[1:]))
}

// Run runs the CLI with args on the OS streams and returns the exit status.
func Run(args []string) int {
	app := NewApp(Dependencies{})
	return int(run(context.Background(), app, args))
}

func run(ctx context.Context, app *App, args []string) types.ExitCode {
	rootCmd := NewRootCommand(app)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	err := fang.Execute(
		ctx,
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(func(w io.Writer, styles fang.Styles, err error) {
			var exitErr *ExitError
			if errors.As(err, &exitErr) && exitErr.Err == nil {
				return
			}
			fang.DefaultErrorHandler(w, styles, err)
		}),
	)
	if err == nil {
		return types.ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return types.ExitFailure
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
