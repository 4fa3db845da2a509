// SPDX-License-Identifier: MPL-2.0

package schema

import "strings"

// Type names reported by Schema.TypeName.
const (
	TypeObject  = "object"
	TypeArray   = "array"
	TypeMap     = "map"
	TypeString  = "string"
	TypeInt     = "int"
	TypeNumber  = "number"
	TypeBool    = "bool"
	TypeNull    = "null"
	TypeBytes   = "bytes"
	TypeUnion   = "union"
	TypeAny     = "any"
	TypeInvalid = "invalid"
)

// Issue codes produced by the CUE adapter.
const (
	CodeRequired         = "required"
	CodeInvalidType      = "invalid_type"
	CodeInvalidValue     = "invalid_value"
	CodeUnrecognizedKeys = "unrecognized_keys"
	CodeInvalid          = "invalid"
)

type (
	// Schema is the capability the runtime needs from a validation library.
	Schema interface {
		// TypeName returns the base type of the schema (see the Type* constants).
		TypeName() string
		// IsComplex reports whether this layer describes structured data
		// (object, array or map). It does not strip modifier layers itself;
		// use IsComplexType for that.
		IsComplex() bool
		// Meta returns the metadata declared on the schema, or the zero Meta.
		Meta() Meta
		// Unwrap strips optional, nullable and default layers. A schema without
		// such layers returns itself.
		Unwrap() Schema
		// Fields returns the fields of an object schema in declaration order.
		// Non-object schemas return nil.
		Fields() []Field
		// Validate checks value against the schema. It must not panic for
		// ordinary mismatches.
		Validate(value any) Result
	}

	// Meta holds the per-field metadata the runtime understands.
	Meta struct {
		// FileCheck overrides whether a raw string may be resolved from a file
		// or inline JSON. Nil means "use the type-based default".
		FileCheck *bool
		// DisplayName is a human label for help output.
		DisplayName string
	}

	// Field is a named member of an object schema.
	Field struct {
		Name     string
		Schema   Schema
		Optional bool
		// HasDefault reports whether the field declares a default value.
		HasDefault bool
	}

	// Issue is one validation problem. Path is relative to the validated value.
	Issue struct {
		Path    []string
		Message string
		Code    string
	}

	// Result is the discriminated outcome of Schema.Validate.
	Result struct {
		OK     bool
		Value  any
		Issues []Issue
	}
)

// Bool returns a pointer to b, for building Meta literals.
func Bool(b bool) *bool { return &b }

// String renders the issue as "path: message".
func (i Issue) String() string {
	if len(i.Path) == 0 {
		return i.Message
	}
	return strings.Join(i.Path, ".") + ": " + i.Message
}

// Lookup returns the field with the given name.
func Lookup(s Schema, name string) (Field, bool) {
	if s == nil {
		return Field{}, false
	}
	for _, f := range s.Fields() {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
