// SPDX-License-Identifier: MPL-2.0

// Package schema defines the narrow schema capability the runtime validates
// command args and flags against, plus the introspection helpers that decide
// how raw CLI values are resolved.
//
// The runtime never looks inside a validation library. It only needs a type
// name, a complex/primitive classification, field metadata, a way to strip
// optional/nullable/default layers, the ordered fields of an object, and a
// validate function. CUESchema adapts cuelang.org/go values to that contract:
//
//	flags := schema.MustCompile(`{
//		from:   string
//		to:     string
//		amount: int & >0
//		config?: {...} @cli(fileCheck=true, displayName="Transfer config")
//	}`)
package schema
