// SPDX-License-Identifier: MPL-2.0

package command

import (
	"context"
	"io"

	"github.com/invowk/cmdkit/pkg/schema"
)

// Phase names a lifecycle phase.
type Phase string

const (
	PhaseConfigureContext Phase = "configureContext"
	PhaseInit             Phase = "init"
	PhaseRun              Phase = "run"
	PhaseDryRun           Phase = "dryRun"
	PhaseCleanup          Phase = "cleanup"
)

type (
	// Command is a runnable command. Run returns an optional result; numeric
	// results become the process exit code.
	Command interface {
		Run(ctx context.Context, c *Context) (any, error)
	}

	// ContextConfigurer injects services and subcommand invokers into the
	// context before any other phase runs.
	ContextConfigurer interface {
		ConfigureContext(ctx context.Context, c *Context) error
	}

	// Initializer runs before Run or DryRun.
	Initializer interface {
		Init(ctx context.Context, c *Context) error
	}

	// DryRunner replaces Run when a dry-run flag is set.
	DryRunner interface {
		DryRun(ctx context.Context, c *Context) (any, error)
	}

	// Cleaner runs after Run or DryRun, whether they failed or not.
	Cleaner interface {
		Cleanup(ctx context.Context, c *Context) error
	}

	// PhaseDeclarer lets a command report which optional phases it really
	// provides when its method set implements more than it uses, as a single
	// adapter type backing many commands does.
	PhaseDeclarer interface {
		Declares(p Phase) bool
	}

	// Invoker runs another command of the same tree with argv and returns its
	// exit code.
	Invoker func(ctx context.Context, argv ...string) (int, error)

	// Log is the sink commands write user-facing output to. Values are
	// joined with spaces.
	Log interface {
		Info(v ...any)
		Warn(v ...any)
		Error(v ...any)
		Success(v ...any)
	}

	// Context is the per-invocation environment handed to every phase.
	Context struct {
		// Key is the command key being executed.
		Key string
		// Args and Flags hold the validated values.
		Args  map[string]any
		Flags map[string]any
		// Params is the typed params value when the definition declares one.
		Params any
		// RawArgs are the positional tokens before validation.
		RawArgs []string
		Log     Log
		// Services is populated by ConfigureContext.
		Services map[string]any
		// Commands holds named subcommand invokers, populated by ConfigureContext.
		Commands map[string]Invoker
		// Invoke returns an invoker for another key of the same tree.
		Invoke func(key string) Invoker
		Stdout io.Writer
		Stderr io.Writer
		DryRun bool
	}

	// Definition is what a source produces for a command key.
	Definition struct {
		Description string
		// New builds a fresh command per invocation.
		New         func() Command
		ArgsSchema  schema.Schema
		FlagsSchema schema.Schema
		// Params returns a pointer to a struct the validated values are
		// decoded into (args and flags merged, flags win).
		Params   func() any
		Validate ValidateFunc
		// Source describes where the definition came from, for diagnostics.
		Source string
	}
)

// Declares reports whether cmd provides the optional phase p.
func Declares(cmd Command, p Phase) bool {
	var ok bool
	switch p {
	case PhaseRun:
		return cmd != nil
	case PhaseConfigureContext:
		_, ok = cmd.(ContextConfigurer)
	case PhaseInit:
		_, ok = cmd.(Initializer)
	case PhaseDryRun:
		_, ok = cmd.(DryRunner)
	case PhaseCleanup:
		_, ok = cmd.(Cleaner)
	}
	if !ok {
		return false
	}
	if d, isDeclarer := cmd.(PhaseDeclarer); isDeclarer {
		return d.Declares(p)
	}
	return true
}

// Service returns the service stored under name, typed as T.
func Service[T any](c *Context, name string) (T, bool) {
	var zero T
	if c == nil || c.Services == nil {
		return zero, false
	}
	v, ok := c.Services[name].(T)
	if !ok {
		return zero, false
	}
	return v, true
}

// SetService stores a service, allocating the bag on first use.
func (c *Context) SetService(name string, svc any) {
	if c.Services == nil {
		c.Services = make(map[string]any)
	}
	c.Services[name] = svc
}

// AddCommand registers a named subcommand invoker for key.
func (c *Context) AddCommand(name, key string) {
	if c.Invoke == nil {
		return
	}
	if c.Commands == nil {
		c.Commands = make(map[string]Invoker)
	}
	c.Commands[name] = c.Invoke(key)
}
