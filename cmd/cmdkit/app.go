// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/spf13/afero"

	"github.com/invowk/cmdkit/internal/config"
	"github.com/invowk/cmdkit/pkg/cli"
)

type (
	// Dependencies are the collaborators of the CLI. Zero values are
	// replaced with OS defaults by NewApp.
	Dependencies struct {
		Fs     afero.Fs
		Config config.Provider
		Stdout io.Writer
		Stderr io.Writer
		// Runtime runs `cmdkit cmd`. Embedders pass one holding their
		// in-process commands.
		Runtime *cli.Runtime
	}

	// App wires the cobra commands to the runtime.
	App struct {
		Fs      afero.Fs
		Config  config.Provider
		Runtime *cli.Runtime
		stdout  io.Writer
		stderr  io.Writer

		// set by the root command's persistent flags
		configPath string
		verbose    bool
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Fs == nil {
		deps.Fs = afero.NewOsFs()
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider(deps.Fs)
	}
	if deps.Runtime == nil {
		deps.Runtime = cli.New(
			cli.WithFs(deps.Fs),
			cli.WithConfigProvider(deps.Config),
			cli.WithOutput(deps.Stdout, deps.Stderr),
		)
	}

	return &App{
		Fs:      deps.Fs,
		Config:  deps.Config,
		Runtime: deps.Runtime,
		stdout:  deps.Stdout,
		stderr:  deps.Stderr,
	}
}

// session loads the merged command tree honouring the root --config flag.
func (a *App) session(ctx context.Context) (*cli.Session, error) {
	var argv []string
	if a.configPath != "" {
		argv = []string{"--" + config.ConfigFlag, a.configPath}
	}
	return a.Runtime.Load(ctx, argv)
}

func (a *App) loadConfig(ctx context.Context) (*config.Config, string, error) {
	return a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: a.configPath})
}
