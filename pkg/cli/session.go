// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/invowk/cmdkit/internal/commandtree"
	"github.com/invowk/cmdkit/internal/config"
	"github.com/invowk/cmdkit/internal/discovery"
	"github.com/invowk/cmdkit/internal/issue"
	"github.com/invowk/cmdkit/internal/lifecycle"
	"github.com/invowk/cmdkit/internal/resolve"
	"github.com/invowk/cmdkit/internal/validation"
	"github.com/invowk/cmdkit/pkg/command"
	"github.com/invowk/cmdkit/pkg/types"
)

// maxInvokeDepth bounds nested Invoke chains.
const maxInvokeDepth = 32

// ErrInvokeDepth is returned by an Invoker nested too deeply.
var ErrInvokeDepth = errors.New("command invocation nested too deeply")

type invokeDepthKey struct{}

// Session is a merged command tree with the configuration it was built
// from.
type Session struct {
	Config     *config.Config
	ConfigPath string
	Tree       *commandtree.Tree
	// Argv is what remained of the input after framework flags were removed.
	Argv []string

	runtime  *Runtime
	hooks    *discovery.Hooks
	resolver *resolve.Resolver
	defs     map[commandtree.Key]*command.Definition
}

// Diagnostics returns what discovery reported while scanning sources.
func (s *Session) Diagnostics() []discovery.Diagnostic {
	return s.hooks.Diagnostics()
}

// Dispatch runs argv against the tree: a command runs through validation and
// its lifecycle, a group (or a help flag) prints a listing, and an unknown
// key is reported with a suggestion.
func (s *Session) Dispatch(ctx context.Context, argv []string) types.ExitCode {
	key, rest := s.Tree.SplitKey(argv)

	rest, help, err := extractSwitches(rest, s.Config.HelpFlags, nil)
	if err != nil {
		s.runtime.log.Error(err)
		return types.ExitFailure
	}

	switch m := s.Tree.Match(key, help).(type) {
	case commandtree.UnknownMatch:
		s.reportUnknown(m)
		return types.ExitFailure
	case commandtree.GroupMatch:
		if err := s.printListing(m); err != nil {
			s.report(err)
			return types.ExitFailure
		}
		return types.ExitSuccess
	case commandtree.CommandMatch:
		return s.execute(ctx, m.Entry, rest)
	default:
		return types.ExitFailure
	}
}

// Invoke returns an invoker that dispatches key with extra argv through the
// full pipeline of this session.
func (s *Session) Invoke(key string) command.Invoker {
	return func(ctx context.Context, argv ...string) (int, error) {
		depth, _ := ctx.Value(invokeDepthKey{}).(int)
		if depth >= maxInvokeDepth {
			return int(types.ExitFailure), fmt.Errorf("invoke %q: %w", key, ErrInvokeDepth)
		}
		ctx = context.WithValue(ctx, invokeDepthKey{}, depth+1)

		tokens := make([]string, 0, len(argv)+1)
		tokens = append(tokens, key)
		tokens = append(tokens, argv...)
		return int(s.Dispatch(ctx, tokens)), nil
	}
}

// Definition returns the definition behind a command entry, loading command
// files on first use.
func (s *Session) Definition(e commandtree.Entry) (*command.Definition, error) {
	if e.Definition != nil {
		return e.Definition, nil
	}
	if def, ok := s.defs[e.Key]; ok {
		return def, nil
	}
	if !e.IsCommand() || e.Path == "" {
		return nil, &commandtree.MissingBuilderError{Key: e.Key, Source: e.Origin()}
	}
	def, err := s.hooks.LoadCommandModule(e.Path)
	if err != nil {
		return nil, err
	}
	s.defs[e.Key] = def
	return def, nil
}

// Check loads every command of the tree and returns the errors found.
func (s *Session) Check() []error {
	var errs []error
	for _, e := range s.Tree.Entries() {
		if !e.IsCommand() {
			continue
		}
		if _, err := s.Definition(e); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func (s *Session) execute(ctx context.Context, e commandtree.Entry, tokens []string) types.ExitCode {
	log := s.runtime.log

	def, err := s.Definition(e)
	if err != nil {
		s.report(err)
		return types.ExitFailure
	}

	inv, err := parseInvocation(string(e.Key), def.FlagsSchema, tokens, s.Config.DryRunFlags)
	if errors.Is(err, pflag.ErrHelp) {
		if err := s.printListing(commandtree.GroupMatch{Entry: e}); err != nil {
			s.report(err)
			return types.ExitFailure
		}
		return types.ExitSuccess
	}
	if err != nil {
		s.reportValidation(e.Key, []command.ValidationError{{
			Path:    []string{"flags"},
			Message: err.Error(),
			Code:    "invalid_flag",
		}})
		return types.ExitFailure
	}

	res := validation.NewPipeline(s.resolver, log).Validate(ctx, validation.Input{
		Key:        string(e.Key),
		Args:       inv.Positional,
		Flags:      inv.Flags,
		Definition: def,
	})
	if !res.Success {
		s.reportValidation(e.Key, res.Errors)
		return types.ExitFailure
	}

	var values command.Values
	if res.Data != nil {
		values = *res.Data
	}

	out := lifecycle.NewExecutor(log, lifecycle.WithDryRunFlags(s.Config.DryRunFlags...)).Execute(ctx, lifecycle.Invocation{
		Key:        string(e.Key),
		Definition: def,
		Values:     values,
		RawArgs:    inv.Positional,
		Invoke:     s.Invoke,
		Stdout:     s.runtime.stdout,
		Stderr:     s.runtime.stderr,
		DryRun:     inv.DryRun,
	})
	return out.ExitCode
}

func (s *Session) reportUnknown(m commandtree.UnknownMatch) {
	log := s.runtime.log
	log.Error("Unknown command:", m.Key)
	if m.Suggestion != "" {
		log.Info(fmt.Sprintf("Did you mean: %s?", m.Suggestion))
	}
	if s.Config.UI.Verbose {
		renderIssue(s.runtime.stderr, issue.CommandNotFoundId, s.Config.UI.ColorScheme)
	}
}

func (s *Session) reportValidation(key commandtree.Key, errs []command.ValidationError) {
	log := s.runtime.log
	log.Error(fmt.Sprintf("Validation failed for %s:", key))
	for _, e := range errs {
		log.Error("  " + e.String())
	}
	if s.Config.UI.Verbose {
		renderIssue(s.runtime.stderr, issue.ValidationFailedId, s.Config.UI.ColorScheme)
	}
}

func (s *Session) report(err error) {
	reportError(s.runtime.log, s.runtime.stderr, err, s.Config.UI.Verbose, s.Config.UI.ColorScheme)
}
