// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/afero"

	"github.com/invowk/cmdkit/internal/commandtree"
	"github.com/invowk/cmdkit/internal/config"
	"github.com/invowk/cmdkit/internal/discovery"
	"github.com/invowk/cmdkit/internal/logsink"
	"github.com/invowk/cmdkit/internal/resolve"
	"github.com/invowk/cmdkit/pkg/command"
	"github.com/invowk/cmdkit/pkg/types"
)

type (
	// Runtime resolves argv to a command and runs it.
	Runtime struct {
		fs       afero.Fs
		provider config.Provider
		registry *Registry
		stdout   io.Writer
		stderr   io.Writer
		log      command.Log
		diag     *slog.Logger
	}

	// Option configures a Runtime.
	Option func(*Runtime)
)

// New returns a runtime reading command sources and configuration from the
// OS filesystem and writing to os.Stdout and os.Stderr.
func New(opts ...Option) *Runtime {
	r := &Runtime{
		fs:       afero.NewOsFs(),
		registry: NewRegistry(),
		stdout:   os.Stdout,
		stderr:   os.Stderr,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.provider == nil {
		r.provider = config.NewProvider(r.fs)
	}
	if r.log == nil {
		r.log = logsink.New(r.stderr, "")
	}
	return r
}

// WithFs replaces the filesystem used for command sources, configuration
// and file-valued fields.
func WithFs(fsys afero.Fs) Option {
	return func(r *Runtime) { r.fs = fsys }
}

// WithConfigProvider replaces the configuration provider.
func WithConfigProvider(p config.Provider) Option {
	return func(r *Runtime) { r.provider = p }
}

// WithOutput sets the writers handed to commands. Log lines go to stderr.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(r *Runtime) {
		r.stdout = stdout
		r.stderr = stderr
	}
}

// WithLog replaces the sink used for framework and command log lines.
func WithLog(log command.Log) Option {
	return func(r *Runtime) { r.log = log }
}

// WithDiagnostics sets the structured logger for framework diagnostics.
func WithDiagnostics(log *slog.Logger) Option {
	return func(r *Runtime) { r.diag = log }
}

// WithRegistry shares an existing registry.
func WithRegistry(reg *Registry) Option {
	return func(r *Runtime) { r.registry = reg }
}

// Registry returns the in-process command registry.
func (r *Runtime) Registry() *Registry { return r.registry }

// Register adds an in-process command. See Registry.Register.
func (r *Runtime) Register(key string, def command.Definition) error {
	return r.registry.Register(key, def)
}

// Run resolves argv and runs the matching command. Every failure is reported
// on the log sink; the returned code is the process exit status.
func (r *Runtime) Run(ctx context.Context, argv []string) types.ExitCode {
	s, err := r.Load(ctx, argv)
	if err != nil {
		reportError(r.log, r.stderr, err, false, config.ColorSchemeAuto)
		return types.ExitFailure
	}
	return s.Dispatch(ctx, s.Argv)
}

// Load resolves configuration, discovers command sources and merges them
// with the registry, sealing it. The returned session can dispatch any
// number of invocations against the same tree.
func (r *Runtime) Load(ctx context.Context, argv []string) (*Session, error) {
	res, err := config.ResolveConfig(ctx, r.provider, argv)
	if err != nil {
		return nil, err
	}
	cfg := res.Config

	diag := r.diag
	if diag == nil {
		diag = logsink.NewDiagnostics(r.stderr, cfg.UI.Verbose)
	}

	hooks := discovery.New(r.fs, diag)
	sources := make([]commandtree.Source, 0, len(cfg.Sources))
	for _, src := range cfg.Sources {
		sources = append(sources, commandtree.Source{Path: src.Path, Root: src.Root})
	}
	found, err := hooks.Discover(sources)
	if err != nil {
		return nil, err
	}

	tree, err := commandtree.Merge(found, r.registry.seal(), r.log, commandtree.WithMaxDistance(cfg.Suggest.MaxDistance))
	if err != nil {
		return nil, err
	}

	return &Session{
		Config:     cfg,
		ConfigPath: res.ResolvedPath,
		Tree:       tree,
		Argv:       res.RemainingArgv,
		runtime:    r,
		hooks:      hooks,
		resolver:   resolve.New(r.fs),
		defs:       make(map[commandtree.Key]*command.Definition),
	}, nil
}

// Stdout returns the writer handed to commands as their standard output.
func (r *Runtime) Stdout() io.Writer { return r.stdout }

// Stderr returns the writer log lines are written to.
func (r *Runtime) Stderr() io.Writer { return r.stderr }
