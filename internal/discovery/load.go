// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"github.com/spf13/afero"

	"github.com/invowk/cmdkit/internal/commandtree"
	"github.com/invowk/cmdkit/internal/issue"
	"github.com/invowk/cmdkit/internal/scriptcmd"
	"github.com/invowk/cmdkit/pkg/command"
	"github.com/invowk/cmdkit/pkg/cueutil"
	"github.com/invowk/cmdkit/pkg/schema"
	"github.com/invowk/cmdkit/pkg/types"
)

//go:embed command_file.cue
var commandFileSchema string

// LoadCommandModule compiles the command file at path and returns its
// definition. Every invocation of the definition's constructor returns a
// fresh script command.
func (h *Hooks) LoadCommandModule(path string) (*command.Definition, error) {
	data, err := afero.ReadFile(h.fs, path)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("read command file").
			WithResource(path).
			WithIssue(issue.CommandFileInvalidId).
			Wrap(err).
			BuildError()
	}

	v, err := cueutil.Compile(commandFileSchema, data, "#CommandFile", cueutil.WithFilename(path))
	if err != nil {
		return nil, invalidFile(path, err)
	}

	spec := scriptcmd.Spec{Path: path}
	def := &command.Definition{Source: path}
	for field, dst := range map[string]*string{
		"description": &def.Description,
		"run":         &spec.Run,
		"init":        &spec.Init,
		"dryRun":      &spec.DryRun,
		"cleanup":     &spec.Cleanup,
		"workdir":     &spec.Workdir,
	} {
		if *dst, err = cueutil.OptionalString(v, field); err != nil {
			return nil, invalidFile(path, err)
		}
	}
	if err := types.DescriptionText(def.Description).Validate(); err != nil {
		return nil, invalidFile(path, err)
	}
	if spec.Run == "" {
		return nil, issue.NewErrorContext().
			WithOperation("load command file").
			WithResource(path).
			WithIssue(issue.MissingBuilderId).
			WithSuggestion("Add a 'run' script to the command file").
			Wrap(fmt.Errorf("%w: no run script", commandtree.ErrMissingBuilder)).
			BuildError()
	}

	if spec.Env, err = stringMap(v.LookupPath(cue.ParsePath("env"))); err != nil {
		return nil, invalidFile(path, err)
	}

	if args := v.LookupPath(cue.ParsePath("args")); args.Exists() {
		def.ArgsSchema = schema.FromValue(args)
	}
	if flags := v.LookupPath(cue.ParsePath("flags")); flags.Exists() {
		def.FlagsSchema = schema.FromValue(flags)
	}

	// Parse once here so script syntax errors surface at load time.
	if _, err := scriptcmd.New(spec); err != nil {
		return nil, invalidFile(path, err)
	}
	def.New = func() command.Command {
		cmd, _ := scriptcmd.New(spec)
		return cmd
	}
	return def, nil
}

func stringMap(v cue.Value) (map[string]string, error) {
	if !v.Exists() {
		return nil, nil
	}
	iter, err := v.Fields()
	if err != nil {
		return nil, err
	}
	out := make(map[string]string)
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, fmt.Errorf("env.%s: %w", iter.Selector().Unquoted(), err)
		}
		out[iter.Selector().Unquoted()] = s
	}
	return out, nil
}

func invalidFile(path string, err error) error {
	return issue.NewErrorContext().
		WithOperation("load command file").
		WithResource(path).
		WithIssue(issue.CommandFileInvalidId).
		WithSuggestion("Run 'cmdkit validate' to list every invalid command file").
		Wrap(err).
		BuildError()
}
