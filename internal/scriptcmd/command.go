// SPDX-License-Identifier: MPL-2.0

package scriptcmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/invowk/cmdkit/pkg/command"
	"github.com/invowk/cmdkit/pkg/types"
)

// InvokeBuiltin is the script command that runs another command key.
const InvokeBuiltin = "cmdkit-invoke"

type (
	// Spec holds the scripts and settings declared by a command file.
	Spec struct {
		// Path is the command file, used for error positions and relative workdirs.
		Path    string
		Run     string
		Init    string
		DryRun  string
		Cleanup string
		Workdir string
		Env     map[string]string
	}

	// Command adapts a Spec to the command lifecycle.
	Command struct {
		spec    Spec
		scripts map[command.Phase]*syntax.File
	}

	// ScriptError reports a script that could not be parsed.
	ScriptError struct {
		Phase command.Phase
		Path  string
		Err   error
	}
)

var (
	_ command.Initializer   = (*Command)(nil)
	_ command.DryRunner     = (*Command)(nil)
	_ command.Cleaner       = (*Command)(nil)
	_ command.PhaseDeclarer = (*Command)(nil)
)

func (e *ScriptError) Error() string {
	return fmt.Sprintf("%s: invalid %s script: %v", e.Path, e.Phase, e.Err)
}

func (e *ScriptError) Unwrap() error { return e.Err }

// New parses every script of spec.
func New(spec Spec) (*Command, error) {
	c := &Command{spec: spec, scripts: make(map[command.Phase]*syntax.File)}
	for phase, src := range spec.sources() {
		if strings.TrimSpace(src) == "" {
			continue
		}
		prog, err := syntax.NewParser().Parse(strings.NewReader(src), string(phase))
		if err != nil {
			return nil, &ScriptError{Phase: phase, Path: spec.Path, Err: err}
		}
		c.scripts[phase] = prog
	}
	return c, nil
}

func (s Spec) sources() map[command.Phase]string {
	return map[command.Phase]string{
		command.PhaseRun:     s.Run,
		command.PhaseInit:    s.Init,
		command.PhaseDryRun:  s.DryRun,
		command.PhaseCleanup: s.Cleanup,
	}
}

// Declares reports whether the command file declares a script for p.
func (c *Command) Declares(p command.Phase) bool {
	_, ok := c.scripts[p]
	return ok
}

// Run runs the run script. Its exit status is the result.
func (c *Command) Run(ctx context.Context, cc *command.Context) (any, error) {
	return c.exec(ctx, cc, command.PhaseRun)
}

// DryRun runs the dryRun script.
func (c *Command) DryRun(ctx context.Context, cc *command.Context) (any, error) {
	return c.exec(ctx, cc, command.PhaseDryRun)
}

// Init runs the init script; a non-zero status is an error.
func (c *Command) Init(ctx context.Context, cc *command.Context) error {
	return c.mustSucceed(ctx, cc, command.PhaseInit)
}

// Cleanup runs the cleanup script; a non-zero status is an error.
func (c *Command) Cleanup(ctx context.Context, cc *command.Context) error {
	return c.mustSucceed(ctx, cc, command.PhaseCleanup)
}

func (c *Command) mustSucceed(ctx context.Context, cc *command.Context, phase command.Phase) error {
	code, err := c.exec(ctx, cc, phase)
	if err != nil {
		return err
	}
	if !code.IsSuccess() {
		return fmt.Errorf("%s script exited with status %d", phase, code)
	}
	return nil
}

func (c *Command) exec(ctx context.Context, cc *command.Context, phase command.Phase) (types.ExitCode, error) {
	prog, ok := c.scripts[phase]
	if !ok {
		return types.ExitSuccess, nil
	}

	stdout, stderr := cc.Stdout, cc.Stderr
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	opts := []interp.RunnerOption{
		interp.Env(expand.ListEnviron(c.environ(cc)...)),
		interp.StdIO(nil, stdout, stderr),
		interp.ExecHandlers(c.execHandler(cc)),
	}
	if dir := c.workdir(); dir != "" {
		opts = append(opts, interp.Dir(dir))
	}
	// "--" keeps tokens like "-v" from being read as shell options.
	if len(cc.RawArgs) > 0 {
		opts = append(opts, interp.Params(append([]string{"--"}, cc.RawArgs...)...))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		return types.ExitFailure, fmt.Errorf("failed to create interpreter: %w", err)
	}

	if err := runner.Run(ctx, prog); err != nil {
		var status interp.ExitStatus
		if errors.As(err, &status) {
			return types.ExitCode(status), nil
		}
		return types.ExitFailure, fmt.Errorf("%s script failed: %w", phase, err)
	}
	return types.ExitSuccess, nil
}

func (c *Command) workdir() string {
	dir := c.spec.Workdir
	if dir == "" || filepath.IsAbs(dir) || c.spec.Path == "" {
		return dir
	}
	return filepath.Join(filepath.Dir(c.spec.Path), dir)
}

func (c *Command) environ(cc *command.Context) []string {
	env := os.Environ()
	for k, v := range c.spec.Env {
		env = append(env, k+"="+v)
	}
	env = append(env, paramEnv("ARG_", cc.Args)...)
	env = append(env, paramEnv("FLAG_", cc.Flags)...)
	env = append(env, "CMDKIT_COMMAND="+cc.Key)
	if cc.DryRun {
		env = append(env, "CMDKIT_DRY_RUN=1")
	}
	return env
}

// execHandler serves the invoke builtin and defers everything else.
func (c *Command) execHandler(cc *command.Context) func(interp.ExecHandlerFunc) interp.ExecHandlerFunc {
	return func(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
		return func(ctx context.Context, args []string) error {
			if len(args) == 0 || args[0] != InvokeBuiltin {
				return next(ctx, args)
			}
			if len(args) < 2 {
				return fmt.Errorf("usage: %s <key> [args...]", InvokeBuiltin)
			}
			if cc.Invoke == nil {
				return fmt.Errorf("%s: no command tree available", InvokeBuiltin)
			}
			code, err := cc.Invoke(args[1])(ctx, args[2:]...)
			if err != nil {
				return err
			}
			if code != 0 {
				return interp.ExitStatus(types.ExitCode(code).Clamp())
			}
			return nil
		}
	}
}
