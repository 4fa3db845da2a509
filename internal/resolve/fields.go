// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/invowk/cmdkit/pkg/schema"
)

// maxParallel bounds concurrent file reads during field resolution.
const maxParallel = 8

// FieldError is a hard resolution failure for one field. Path is relative to
// the args or flags object.
type FieldError struct {
	Path []string
	Err  error
}

func (e FieldError) Error() string { return e.Err.Error() }

func (e FieldError) Unwrap() error { return e.Err }

type job struct {
	name string
	raw  any
	s    schema.Schema
}

// ResolveFlags resolves every declared flag present in flags. Undeclared
// flags are copied unchanged. Errors are returned in declaration order.
func (r *Resolver) ResolveFlags(ctx context.Context, flags map[string]any, s schema.Schema) (map[string]any, []FieldError) {
	out := make(map[string]any, len(flags))
	for k, v := range flags {
		out[k] = v
	}
	if s == nil {
		return out, nil
	}

	var jobs []job
	for _, f := range s.Fields() {
		if raw, ok := flags[f.Name]; ok {
			jobs = append(jobs, job{name: f.Name, raw: raw, s: f.Schema})
		}
	}
	return out, r.run(ctx, jobs, out)
}

// ResolveArgs maps positional tokens onto the args schema's fields in
// declaration order and resolves them. When the last field is an array it
// collects every remaining token. Tokens left over are returned as extra.
func (r *Resolver) ResolveArgs(ctx context.Context, tokens []string, s schema.Schema) (map[string]any, []string, []FieldError) {
	values, extra := MapArgs(tokens, s)
	if s == nil {
		return values, nil, nil
	}

	var jobs []job
	for _, f := range s.Fields() {
		if raw, ok := values[f.Name]; ok {
			jobs = append(jobs, job{name: f.Name, raw: raw, s: f.Schema})
		}
	}
	return values, extra, r.run(ctx, jobs, values)
}

// MapArgs assigns tokens to fields without resolving them.
func MapArgs(tokens []string, s schema.Schema) (map[string]any, []string) {
	values := make(map[string]any)
	if s == nil {
		return values, nil
	}

	fields := s.Fields()
	i := 0
	for fi, f := range fields {
		if i >= len(tokens) {
			break
		}
		if fi == len(fields)-1 && f.Schema != nil && f.Schema.Unwrap().TypeName() == schema.TypeArray {
			rest := make([]any, 0, len(tokens)-i)
			for _, tok := range tokens[i:] {
				rest = append(rest, tok)
			}
			values[f.Name] = rest
			return values, nil
		}
		values[f.Name] = tokens[i]
		i++
	}
	if i < len(tokens) {
		return values, tokens[i:]
	}
	return values, nil
}

// run resolves jobs concurrently into index-addressed slots, writes the
// values into dst and returns errors in job order.
func (r *Resolver) run(ctx context.Context, jobs []job, dst map[string]any) []FieldError {
	results := make([]Resolution, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)
	for i, j := range jobs {
		g.Go(func() error {
			results[i] = r.Resolve(gctx, j.raw, j.s)
			return nil
		})
	}
	_ = g.Wait()

	var errs []FieldError
	for i, res := range results {
		dst[jobs[i].name] = res.Value
		if res.Err != nil {
			errs = append(errs, FieldError{Path: []string{jobs[i].name}, Err: res.Err})
		}
	}
	return errs
}
