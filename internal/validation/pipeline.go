// SPDX-License-Identifier: MPL-2.0

package validation

import (
	"context"
	"fmt"
	"strconv"

	"github.com/invowk/cmdkit/internal/resolve"
	"github.com/invowk/cmdkit/pkg/command"
)

const (
	// CodeResolutionFailed marks a field whose file could not be loaded.
	CodeResolutionFailed = "resolution_failed"
	// CodeTooManyArguments marks positional tokens no args field accepts.
	CodeTooManyArguments = "too_many_arguments"
)

type (
	// Pipeline resolves and validates one invocation.
	Pipeline struct {
		resolver *resolve.Resolver
		log      command.Log
	}

	// Input is the raw invocation handed to the pipeline.
	Input struct {
		Key        string
		Args       []string
		Flags      map[string]any
		Definition *command.Definition
	}
)

// NewPipeline returns a pipeline using r for field resolution and log as the
// sink handed to custom validators.
func NewPipeline(r *resolve.Resolver, log command.Log) *Pipeline {
	return &Pipeline{resolver: r, log: log}
}

// Validate runs the default flow, or the definition's custom validator when
// it has one. A custom validator controls whether the default flow runs at
// all through ValidateContext.RootValidate.
func (p *Pipeline) Validate(ctx context.Context, in Input) command.ValidationResult {
	def := in.Definition
	if def == nil {
		def = &command.Definition{}
	}
	if def.Validate == nil {
		return p.root(ctx, in.Args, in.Flags, def)
	}

	var (
		last    command.Values
		hasLast bool
	)
	vc := &command.ValidateContext{
		Key:   in.Key,
		Args:  cloneStrings(in.Args),
		Flags: cloneMap(in.Flags),
		Log:   p.log,
		RootValidate: func(ctx context.Context) command.ValidationResult {
			res := p.root(ctx, in.Args, in.Flags, def)
			if res.Success && res.Data != nil {
				last = cloneValues(*res.Data)
				hasLast = true
			}
			return res
		},
		Params: func() (command.Values, bool) {
			if !hasLast {
				return command.Values{}, false
			}
			return cloneValues(last), true
		},
	}

	res := def.Validate(ctx, vc)
	if res.Success && res.Data == nil {
		if hasLast {
			data := cloneValues(last)
			res.Data = &data
		} else {
			args, _ := resolve.MapArgs(in.Args, def.ArgsSchema)
			res.Data = &command.Values{Args: args, Flags: cloneMap(in.Flags)}
		}
	}
	if !res.Success && len(res.Errors) == 0 {
		res.Errors = []command.ValidationError{{Message: "validation failed", Code: "custom"}}
	}
	return res
}

// root is the default two-phase flow. It works on copies so repeated calls
// observe the same input.
func (p *Pipeline) root(ctx context.Context, rawArgs []string, rawFlags map[string]any, def *command.Definition) command.ValidationResult {
	args, extra, argErrs := p.resolver.ResolveArgs(ctx, cloneStrings(rawArgs), def.ArgsSchema)
	flags, flagErrs := p.resolver.ResolveFlags(ctx, cloneMap(rawFlags), def.FlagsSchema)

	if len(argErrs) > 0 || len(flagErrs) > 0 {
		var errs []command.ValidationError
		errs = append(errs, fieldErrors(prefixArgs, argErrs)...)
		errs = append(errs, fieldErrors(prefixFlags, flagErrs)...)
		return command.Invalid(errs...)
	}

	res := ValidateAll(args, flags, def.ArgsSchema, def.FlagsSchema)
	if len(extra) > 0 {
		first := len(rawArgs) - len(extra)
		for i, tok := range extra {
			res.Errors = append(res.Errors, command.ValidationError{
				Path:    []string{prefixArgs, strconv.Itoa(first + i)},
				Message: fmt.Sprintf("unexpected argument %q", tok),
				Code:    CodeTooManyArguments,
			})
		}
		res.Success = false
		res.Data = nil
	}
	return res
}

func fieldErrors(prefix string, errs []resolve.FieldError) []command.ValidationError {
	out := make([]command.ValidationError, 0, len(errs))
	for _, fe := range errs {
		out = append(out, command.ValidationError{
			Path:    append([]string{prefix}, fe.Path...),
			Message: fe.Err.Error(),
			Code:    CodeResolutionFailed,
		})
	}
	return out
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return cloneMap(x)
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return cloneStrings(x)
	default:
		return v
	}
}

func cloneValues(v command.Values) command.Values {
	return command.Values{Args: cloneMap(v.Args), Flags: cloneMap(v.Flags)}
}
