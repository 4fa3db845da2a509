// SPDX-License-Identifier: MPL-2.0

package schema

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/invowk/cmdkit/pkg/cueutil"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

// AttrName is the CUE attribute carrying field metadata, as in
// `config?: {...} @cli(fileCheck=false, displayName="Config")`.
const AttrName = "cli"

// CUESchema adapts a cue.Value to the Schema capability.
type CUESchema struct {
	value     cue.Value
	unwrapped bool
}

var _ Schema = (*CUESchema)(nil)

// Compile compiles CUE source into a schema.
func Compile(src string) (*CUESchema, error) {
	v := cuecontext.New().CompileString(src, cue.Filename("schema.cue"))
	if v.Err() != nil {
		return nil, cueutil.FormatError(v.Err(), "schema.cue")
	}
	return FromValue(v), nil
}

// MustCompile is like Compile but panics on error. Intended for schemas
// declared as package-level literals.
func MustCompile(src string) *CUESchema {
	s, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return s
}

// FromValue wraps an existing CUE value.
func FromValue(v cue.Value) *CUESchema {
	return &CUESchema{value: v}
}

// Value returns the underlying CUE value.
func (s *CUESchema) Value() cue.Value { return s.value }

// TypeName implements Schema.
func (s *CUESchema) TypeName() string {
	k := s.kind()
	if k == cue.StructKind && s.isMap() {
		return TypeMap
	}
	return kindName(k)
}

// IsComplex implements Schema.
func (s *CUESchema) IsComplex() bool {
	return complexTypes[s.TypeName()]
}

// Meta implements Schema. Metadata may be declared as a field attribute or as
// a declaration attribute inside the struct body; field attributes win.
func (s *CUESchema) Meta() Meta {
	var m Meta
	for _, a := range s.value.Attributes(cue.DeclAttr) {
		if a.Name() == AttrName {
			applyAttr(&m, a)
		}
	}
	if a := s.value.Attribute(AttrName); a.Err() == nil {
		applyAttr(&m, a)
	}
	return m
}

// Unwrap implements Schema. Defaults and optionality do not change the kind of
// a CUE value, so unwrapping only drops a nullable disjunct.
func (s *CUESchema) Unwrap() Schema {
	if s.unwrapped {
		return s
	}
	return &CUESchema{value: s.value, unwrapped: true}
}

// Fields implements Schema.
func (s *CUESchema) Fields() []Field {
	if s.baseKind() != cue.StructKind {
		return nil
	}
	iter, err := s.value.Fields(cue.Optional(true))
	if err != nil {
		return nil
	}

	var fields []Field
	for iter.Next() {
		sel := iter.Selector()
		if sel.LabelType() != cue.StringLabel {
			continue
		}
		fv := iter.Value()
		_, hasDefault := fv.Default()
		fields = append(fields, Field{
			Name:       sel.Unquoted(),
			Schema:     FromValue(fv),
			Optional:   sel.ConstraintType() == cue.OptionalConstraint,
			HasDefault: hasDefault,
		})
	}
	return fields
}

// Validate implements Schema. Strings are coerced to the scalar kind the
// schema expects, unknown top-level keys are reported, absent fields take
// their declared defaults, and the remaining value is unified with the schema
// and checked for concreteness. Missing required fields are reported even when
// unification fails on another field.
func (s *CUESchema) Validate(value any) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{Issues: []Issue{{Message: fmt.Sprintf("schema evaluation failed: %v", r), Code: CodeInvalid}}}
		}
	}()

	value = coerce(s.value, value)
	value, issues := s.dropUnknownKeys(value)
	missing := s.missingRequired(value, nil)
	issues = append(issues, missing...)
	value = s.applyDefaults(value)

	data, err := json.Marshal(value)
	if err != nil {
		return Result{Issues: append(issues, Issue{Message: err.Error(), Code: CodeInvalidType})}
	}

	dataValue := s.value.Context().CompileBytes(data, cue.Filename("value.json"))
	if dataValue.Err() != nil {
		return Result{Issues: append(issues, issuesFromError(dataValue.Err(), nil)...)}
	}

	unified := s.value.Unify(dataValue)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		for _, is := range issuesFromError(err, s.pathPrefix()) {
			if is.Code == CodeRequired && coveredBy(is.Path, missing) {
				continue
			}
			issues = append(issues, is)
		}
	}
	if len(issues) > 0 {
		return Result{Issues: s.inDeclarationOrder(issues)}
	}

	out, err := decode(unified)
	if err != nil {
		return Result{Issues: []Issue{{Message: err.Error(), Code: CodeInvalid}}}
	}
	return Result{OK: true, Value: out}
}

// missingRequired reports every required field without a default that is
// absent from value, descending into nested objects that are present.
func (s *CUESchema) missingRequired(value any, prefix []string) []Issue {
	obj, ok := value.(map[string]any)
	if !ok {
		return nil
	}
	var issues []Issue
	for _, f := range s.Fields() {
		fs, ok := f.Schema.(*CUESchema)
		if !ok {
			continue
		}
		path := append(slices.Clone(prefix), f.Name)
		v, present := obj[f.Name]
		switch {
		case present:
			issues = append(issues, fs.missingRequired(v, path)...)
		case !f.Optional && !f.HasDefault && fs.value.Validate(cue.Concrete(true)) != nil:
			issues = append(issues, Issue{Path: path, Message: "required", Code: CodeRequired})
		}
	}
	return issues
}

// applyDefaults fills absent fields that declare a default, including
// optional ones, which CUE would otherwise leave out of the exported value.
func (s *CUESchema) applyDefaults(value any) any {
	obj, ok := value.(map[string]any)
	if !ok || s.baseKind() != cue.StructKind {
		return value
	}
	out := make(map[string]any, len(obj))
	for k, v := range obj {
		out[k] = v
	}
	for _, f := range s.Fields() {
		fs, ok := f.Schema.(*CUESchema)
		if !ok {
			continue
		}
		if v, present := out[f.Name]; present {
			out[f.Name] = fs.applyDefaults(v)
			continue
		}
		if !f.HasDefault {
			continue
		}
		d, _ := fs.value.Default()
		if dv, err := decode(d); err == nil {
			out[f.Name] = dv
		}
	}
	return out
}

// pathPrefix is the location of the schema inside its source file. CUE error
// paths are rooted at the file, so the prefix is stripped from issues.
func (s *CUESchema) pathPrefix() []string {
	sels := s.value.Path().Selectors()
	out := make([]string, 0, len(sels))
	for _, sel := range sels {
		if sel.LabelType() == cue.StringLabel {
			out = append(out, sel.Unquoted())
		} else {
			out = append(out, sel.String())
		}
	}
	return out
}

// inDeclarationOrder sorts issues by the declaration index of their top-level
// field. Issues for undeclared keys or without a path keep their relative
// order after the declared ones.
func (s *CUESchema) inDeclarationOrder(issues []Issue) []Issue {
	index := make(map[string]int)
	for i, f := range s.Fields() {
		index[f.Name] = i
	}
	rank := func(is Issue) int {
		if len(is.Path) > 0 {
			if i, ok := index[is.Path[0]]; ok {
				return i
			}
		}
		return len(index)
	}
	slices.SortStableFunc(issues, func(a, b Issue) int { return rank(a) - rank(b) })
	return issues
}

func coveredBy(path []string, missing []Issue) bool {
	for _, m := range missing {
		if len(m.Path) <= len(path) && slices.Equal(m.Path, path[:len(m.Path)]) {
			return true
		}
	}
	return false
}

func (s *CUESchema) kind() cue.Kind {
	if s.unwrapped {
		return s.baseKind()
	}
	return s.value.IncompleteKind()
}

// baseKind strips the null kind from nullable values.
func (s *CUESchema) baseKind() cue.Kind {
	k := s.value.IncompleteKind()
	if k != cue.NullKind && k&cue.NullKind != 0 {
		k &^= cue.NullKind
	}
	return k
}

// isMap reports whether a struct only declares a pattern constraint such as
// `[string]: int`.
func (s *CUESchema) isMap() bool {
	if len(s.Fields()) > 0 {
		return false
	}
	return s.value.LookupPath(cue.MakePath(cue.AnyString)).Exists()
}

// dropUnknownKeys removes keys the schema does not declare from a top-level
// object and reports them.
func (s *CUESchema) dropUnknownKeys(value any) (any, []Issue) {
	obj, ok := value.(map[string]any)
	if !ok || s.baseKind() != cue.StructKind || s.isMap() {
		return value, nil
	}
	if s.value.LookupPath(cue.MakePath(cue.AnyString)).Exists() {
		return value, nil
	}

	known := make(map[string]bool)
	for _, f := range s.Fields() {
		known[f.Name] = true
	}

	var issues []Issue
	kept := make(map[string]any, len(obj))
	for _, k := range sortedKeys(obj) {
		if !known[k] {
			issues = append(issues, Issue{Path: []string{k}, Message: "unknown field", Code: CodeUnrecognizedKeys})
			continue
		}
		kept[k] = obj[k]
	}
	return kept, issues
}

func kindName(k cue.Kind) string {
	switch k {
	case cue.BottomKind:
		return TypeInvalid
	case cue.StructKind:
		return TypeObject
	case cue.ListKind:
		return TypeArray
	case cue.StringKind:
		return TypeString
	case cue.IntKind:
		return TypeInt
	case cue.FloatKind, cue.NumberKind:
		return TypeNumber
	case cue.BoolKind:
		return TypeBool
	case cue.NullKind:
		return TypeNull
	case cue.BytesKind:
		return TypeBytes
	case cue.TopKind:
		return TypeAny
	default:
		return TypeUnion
	}
}

func applyAttr(m *Meta, a cue.Attribute) {
	if v, ok, err := a.Lookup(0, "fileCheck"); err == nil && ok {
		if v == "" {
			m.FileCheck = Bool(true)
		} else if b, perr := strconv.ParseBool(v); perr == nil {
			m.FileCheck = Bool(b)
		}
	}
	if v, ok, err := a.Lookup(0, "displayName"); err == nil && ok && v != "" {
		m.DisplayName = v
	}
}

func issuesFromError(err error, prefix []string) []Issue {
	seen := make(map[string]bool)
	var issues []Issue
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		msg := fmt.Sprintf(format, args...)
		path := cueerrors.Path(e)
		if len(prefix) > 0 && len(path) >= len(prefix) && slices.Equal(path[:len(prefix)], prefix) {
			path = path[len(prefix):]
		}
		code := issueCode(msg)
		if code == CodeRequired {
			msg = "required"
		}

		key := strings.Join(path, "\x00") + "\x00" + msg
		if seen[key] {
			continue
		}
		seen[key] = true
		issues = append(issues, Issue{Path: path, Message: msg, Code: code})
	}
	if len(issues) == 0 {
		issues = append(issues, Issue{Message: err.Error(), Code: CodeInvalid})
	}
	return issues
}

func issueCode(msg string) string {
	switch {
	case strings.Contains(msg, "incomplete value"):
		return CodeRequired
	case strings.Contains(msg, "mismatched types"), strings.Contains(msg, "conflicting values") && strings.Contains(msg, "types"):
		return CodeInvalidType
	case strings.Contains(msg, "not allowed"):
		return CodeUnrecognizedKeys
	case strings.Contains(msg, "invalid value"), strings.Contains(msg, "conflicting values"),
		strings.Contains(msg, "out of bound"), strings.Contains(msg, "disjunction"):
		return CodeInvalidValue
	default:
		return CodeInvalid
	}
}

func decode(v cue.Value) (any, error) {
	data, err := v.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to decode validated value: %w", err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode validated value: %w", err)
	}
	return out, nil
}
