// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/invowk/cmdkit/pkg/schema"
)

// parsedInvocation is argv after the command key, split into positional
// tokens and flag values.
type parsedInvocation struct {
	Positional []string
	Flags      map[string]any
	DryRun     bool
}

// extractSwitches removes the framework switches named in names from the
// tokens before a "--" terminator, skipping names the command declares
// itself. It reports whether any switch was set to true.
func extractSwitches(tokens []string, names []string, declared func(string) bool) ([]string, bool, error) {
	reserved := make(map[string]bool, len(names))
	for _, n := range names {
		if declared == nil || !declared(n) {
			reserved[n] = true
		}
	}
	if len(reserved) == 0 {
		return tokens, false, nil
	}

	out := make([]string, 0, len(tokens))
	set := false
	for i, tok := range tokens {
		if tok == "--" {
			out = append(out, tokens[i:]...)
			break
		}
		name, value, hasValue, ok := splitFlagToken(tok)
		if !ok || !reserved[name] {
			out = append(out, tok)
			continue
		}
		if !hasValue {
			set = true
			continue
		}
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, false, fmt.Errorf("invalid value %q for --%s: must be a boolean", value, name)
		}
		set = set || b
	}
	return out, set, nil
}

// splitFlagToken parses "--name", "--name=value" and the single-letter
// form "-n".
func splitFlagToken(tok string) (name, value string, hasValue, ok bool) {
	switch {
	case strings.HasPrefix(tok, "--") && len(tok) > 2:
		name, value, hasValue = strings.Cut(tok[2:], "=")
		return name, value, hasValue, true
	case strings.HasPrefix(tok, "-") && len(tok) == 2 && tok[1] != '-':
		return tok[1:], "", false, true
	default:
		return "", "", false, false
	}
}

// parseInvocation parses the tokens following a command key. Declared flags
// come from the flags schema: bool fields take no value, array fields may
// repeat, everything else takes one string the resolver and validator
// interpret. Only flags present on the command line appear in Flags.
func parseInvocation(key string, flagsSchema schema.Schema, tokens []string, dryRunNames []string) (parsedInvocation, error) {
	declared := func(name string) bool {
		_, ok := schema.Lookup(flagsSchema, name)
		return ok
	}
	tokens, dryRun, err := extractSwitches(tokens, dryRunNames, declared)
	if err != nil {
		return parsedInvocation{}, err
	}

	if flagsSchema == nil {
		inv := parseLoose(tokens)
		inv.DryRun = dryRun
		return inv, nil
	}

	fs := pflag.NewFlagSet(key, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SetInterspersed(true)

	kinds := make(map[string]string)
	for _, f := range flagsSchema.Fields() {
		kind := schema.TypeString
		if f.Schema != nil {
			kind = f.Schema.Unwrap().TypeName()
		}
		switch kind {
		case schema.TypeBool:
			fs.Bool(f.Name, false, schema.DisplayName(f.Schema, f.Name))
		case schema.TypeArray:
			fs.StringArray(f.Name, nil, schema.DisplayName(f.Schema, f.Name))
		default:
			kind = schema.TypeString
			fs.String(f.Name, "", schema.DisplayName(f.Schema, f.Name))
		}
		kinds[f.Name] = kind
	}

	if err := fs.Parse(tokens); err != nil {
		return parsedInvocation{}, err
	}

	inv := parsedInvocation{
		Positional: fs.Args(),
		Flags:      make(map[string]any),
		DryRun:     dryRun,
	}
	var visitErr error
	fs.Visit(func(f *pflag.Flag) {
		var (
			v   any
			err error
		)
		switch kinds[f.Name] {
		case schema.TypeBool:
			v, err = fs.GetBool(f.Name)
		case schema.TypeArray:
			var vals []string
			vals, err = fs.GetStringArray(f.Name)
			v = arrayValue(vals)
		default:
			v, err = fs.GetString(f.Name)
		}
		if err != nil && visitErr == nil {
			visitErr = err
		}
		inv.Flags[f.Name] = v
	})
	if visitErr != nil {
		return parsedInvocation{}, visitErr
	}
	return inv, nil
}

// arrayValue keeps a single JSON array literal as a string so the resolver
// can parse it; repeated values become a list.
func arrayValue(vals []string) any {
	if len(vals) == 1 && strings.HasPrefix(strings.TrimSpace(vals[0]), "[") {
		return vals[0]
	}
	out := make([]any, len(vals))
	for i, s := range vals {
		out[i] = s
	}
	return out
}

// parseLoose handles commands without a flags schema: "--name=value" sets a
// string, a bare "--name" or "-n" sets true, anything else is positional.
func parseLoose(tokens []string) parsedInvocation {
	inv := parsedInvocation{Positional: []string{}, Flags: make(map[string]any)}
	for i, tok := range tokens {
		if tok == "--" {
			inv.Positional = append(inv.Positional, tokens[i+1:]...)
			break
		}
		name, value, hasValue, ok := splitFlagToken(tok)
		switch {
		case !ok:
			inv.Positional = append(inv.Positional, tok)
		case hasValue:
			inv.Flags[name] = value
		default:
			inv.Flags[name] = true
		}
	}
	return inv
}
