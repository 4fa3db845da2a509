// SPDX-License-Identifier: MPL-2.0

package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/invowk/cmdkit/pkg/command"
	"github.com/invowk/cmdkit/pkg/types"
)

// DefaultDryRunFlags are the flag names that request a dry run.
var DefaultDryRunFlags = []string{"dry-run", "dryRun", "dry_run"}

type (
	// Invocation is a command whose input already passed validation.
	Invocation struct {
		Key        string
		Definition *command.Definition
		Values     command.Values
		// RawArgs are the positional tokens as typed.
		RawArgs []string
		// Invoke builds invokers for other keys of the same tree (optional).
		Invoke func(key string) command.Invoker
		Stdout io.Writer
		Stderr io.Writer
		// DryRun requests the DryRun phase in addition to any dry-run flag
		// found in Values.Flags.
		DryRun bool
	}

	// Result contains the outcome of one execution.
	Result struct {
		// ExitCode is the process exit status.
		ExitCode types.ExitCode
		// Value is what Run or DryRun returned.
		Value any
		// Error is the first error raised by a phase, if any.
		Error error
		// DryRun reports whether DryRun replaced Run.
		DryRun bool
		// Phases lists the phases that were entered, in order.
		Phases []command.Phase
	}

	// Executor runs the lifecycle of a single command.
	Executor struct {
		log         command.Log
		dryRunFlags []string
	}

	// Option configures an Executor.
	Option func(*Executor)
)

// NewExecutor returns an executor writing start, completion and failure
// lines to log.
func NewExecutor(log command.Log, opts ...Option) *Executor {
	e := &Executor{log: log, dryRunFlags: DefaultDryRunFlags}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithDryRunFlags replaces the flag names that select DryRun.
func WithDryRunFlags(names ...string) Option {
	return func(e *Executor) {
		if len(names) > 0 {
			e.dryRunFlags = names
		}
	}
}

// Success returns true if the command executed successfully
func (r *Result) Success() bool {
	return r.ExitCode == 0 && r.Error == nil
}

// Execute runs the phases of inv in order. Failures in any phase are caught
// here, logged once, and reported through the result rather than returned.
func (e *Executor) Execute(ctx context.Context, inv Invocation) *Result {
	res := &Result{}
	def := inv.Definition
	if def == nil || def.New == nil {
		res.Error = &PhaseError{Key: inv.Key, Phase: command.PhaseRun, Err: errors.New("command has no constructor")}
		return e.fail(res)
	}

	var cmd command.Command
	if err := guard(inv.Key, command.PhaseRun, func() error {
		cmd = def.New()
		if cmd == nil {
			return errors.New("constructor returned nil")
		}
		return nil
	}); err != nil {
		res.Error = err
		return e.fail(res)
	}

	cc, err := e.newContext(inv)
	if err != nil {
		res.Error = &PhaseError{Key: inv.Key, Phase: command.PhaseConfigureContext, Err: err}
		return e.fail(res)
	}

	e.log.Info("Running", inv.Key)

	if configurer, ok := cmd.(command.ContextConfigurer); ok && command.Declares(cmd, command.PhaseConfigureContext) {
		res.Phases = append(res.Phases, command.PhaseConfigureContext)
		if err := guard(inv.Key, command.PhaseConfigureContext, func() error { return configurer.ConfigureContext(ctx, cc) }); err != nil {
			res.Error = err
			return e.fail(res)
		}
	}

	cleanup := func() error {
		cleaner, ok := cmd.(command.Cleaner)
		if !ok || !command.Declares(cmd, command.PhaseCleanup) {
			return nil
		}
		res.Phases = append(res.Phases, command.PhaseCleanup)
		return guard(inv.Key, command.PhaseCleanup, func() error { return cleaner.Cleanup(ctx, cc) })
	}

	if initializer, ok := cmd.(command.Initializer); ok && command.Declares(cmd, command.PhaseInit) {
		res.Phases = append(res.Phases, command.PhaseInit)
		if err := guard(inv.Key, command.PhaseInit, func() error { return initializer.Init(ctx, cc) }); err != nil {
			res.Error = err
			if cleanupErr := cleanup(); cleanupErr != nil {
				e.log.Error(cleanupErr)
			}
			return e.fail(res)
		}
	}

	phase, run := command.PhaseRun, cmd.Run
	if dryRunner, ok := cmd.(command.DryRunner); ok && cc.DryRun && command.Declares(cmd, command.PhaseDryRun) {
		phase, run = command.PhaseDryRun, dryRunner.DryRun
		res.DryRun = true
	}
	res.Phases = append(res.Phases, phase)
	runErr := guard(inv.Key, phase, func() error {
		v, err := run(ctx, cc)
		res.Value = v
		return err
	})

	cleanupErr := cleanup()

	switch {
	case runErr != nil:
		res.Error = runErr
		if cleanupErr != nil {
			e.log.Error(cleanupErr)
		}
		return e.fail(res)
	case cleanupErr != nil:
		res.Error = cleanupErr
		return e.fail(res)
	}

	if code, ok := types.ExitCodeFromResult(res.Value); ok {
		res.ExitCode = code
	}
	if res.ExitCode.IsSuccess() {
		e.log.Success(inv.Key, "completed")
	} else {
		e.log.Warn(inv.Key, "finished with exit code", res.ExitCode)
	}
	return res
}

func (e *Executor) fail(res *Result) *Result {
	res.ExitCode = types.ExitFailure
	e.log.Error(res.Error)
	return res
}

func (e *Executor) newContext(inv Invocation) (*command.Context, error) {
	stdout, stderr := inv.Stdout, inv.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	cc := &command.Context{
		Key:     inv.Key,
		Args:    orEmpty(inv.Values.Args),
		Flags:   orEmpty(inv.Values.Flags),
		RawArgs: inv.RawArgs,
		Log:     e.log,
		Invoke:  inv.Invoke,
		Stdout:  stdout,
		Stderr:  stderr,
		DryRun:  inv.DryRun || DryRunRequested(inv.Values.Flags, e.dryRunFlags),
	}

	if inv.Definition.Params != nil {
		params, err := DecodeParams(inv.Definition.Params(), inv.Values)
		if err != nil {
			return nil, err
		}
		cc.Params = params
	}
	return cc, nil
}

// DryRunRequested reports whether any of names is set to a truthy value in
// flags. Booleans, non-zero numbers and strings accepted by
// strconv.ParseBool count as truthy.
func DryRunRequested(flags map[string]any, names []string) bool {
	for _, name := range names {
		v, ok := flags[name]
		if !ok {
			continue
		}
		if truthy(v) {
			return true
		}
	}
	return false
}

func truthy(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(x))
		return err == nil && b
	case int:
		return x != 0
	case int64:
		return x != 0
	case float64:
		return x != 0
	default:
		return false
	}
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

// guard runs fn and converts a panic into a PanicError.
func guard(key string, phase command.Phase, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PhaseError{Key: key, Phase: phase, Err: &PanicError{Value: r, Stack: debug.Stack()}}
		}
	}()
	if err := fn(); err != nil {
		return &PhaseError{Key: key, Phase: phase, Err: err}
	}
	return nil
}

// PhaseError reports the phase a command failed in.
type PhaseError struct {
	Key   string
	Phase command.Phase
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s: %s failed: %v", e.Key, e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error { return e.Err }

// PanicError carries a value recovered from a panicking phase.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}
