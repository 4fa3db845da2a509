// SPDX-License-Identifier: MPL-2.0

package schema

import (
	"slices"
	"strconv"

	"cuelang.org/go/cue"
)

// coerce converts CLI strings into the scalar kinds the schema expects, walking
// objects and lists. Values that cannot be converted are left for validation
// to reject.
func coerce(v cue.Value, x any) any {
	switch val := x.(type) {
	case string:
		return coerceScalar(v.IncompleteKind(), val)
	case map[string]any:
		if v.IncompleteKind()&cue.StructKind == 0 {
			return x
		}
		out := make(map[string]any, len(val))
		for k, item := range val {
			if fv, ok := lookupField(v, k); ok {
				out[k] = coerce(fv, item)
			} else {
				out[k] = item
			}
		}
		return out
	case []any:
		if v.IncompleteKind()&cue.ListKind == 0 {
			return x
		}
		out := make([]any, len(val))
		for i, item := range val {
			ev := v.LookupPath(cue.MakePath(cue.Index(i)))
			if !ev.Exists() {
				ev = v.LookupPath(cue.MakePath(cue.AnyIndex))
			}
			if ev.Exists() {
				out[i] = coerce(ev, item)
			} else {
				out[i] = item
			}
		}
		return out
	default:
		return x
	}
}

func lookupField(v cue.Value, name string) (cue.Value, bool) {
	for _, sel := range []cue.Selector{cue.Str(name), cue.Str(name).Optional(), cue.AnyString} {
		if fv := v.LookupPath(cue.MakePath(sel)); fv.Exists() {
			return fv, true
		}
	}
	return cue.Value{}, false
}

func coerceScalar(k cue.Kind, s string) any {
	if k&cue.StringKind != 0 {
		return s
	}
	if k&cue.IntKind != 0 {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
	}
	if k&cue.FloatKind != 0 {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	if k&cue.BoolKind != 0 {
		if b, err := strconv.ParseBool(s); err == nil {
			return b
		}
	}
	if k&cue.NullKind != 0 && s == "null" {
		return nil
	}
	return s
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
