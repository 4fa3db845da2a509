// SPDX-License-Identifier: MPL-2.0

package command

import (
	"context"
	"strings"
)

type (
	// Values holds args and flags keyed by field name.
	Values struct {
		Args  map[string]any
		Flags map[string]any
	}

	// ValidationError is one problem found while resolving or validating.
	ValidationError struct {
		// Path starts with "args" or "flags" followed by the field path.
		Path    []string
		Message string
		Code    string
	}

	// ValidationResult is the outcome of the validation pipeline.
	ValidationResult struct {
		Success bool
		Data    *Values
		Errors  []ValidationError
	}

	// ValidateContext is handed to a custom ValidateFunc.
	ValidateContext struct {
		Key string
		// Args are the raw positional tokens and Flags the raw parsed flags.
		Args  []string
		Flags map[string]any
		Log   Log
		// RootValidate runs the default resolve-then-validate pipeline on a
		// copy of the raw input. It may be called any number of times.
		RootValidate func(ctx context.Context) ValidationResult
		// Params returns the data of the most recent successful RootValidate.
		Params func() (Values, bool)
	}

	// ValidateFunc replaces the default validation flow. Call RootValidate to
	// run the default flow before, after, or instead of custom checks.
	ValidateFunc func(ctx context.Context, vc *ValidateContext) ValidationResult
)

// DottedPath renders the error path as "flags.amount".
func (e ValidationError) DottedPath() string {
	return strings.Join(e.Path, ".")
}

// String renders "path: message".
func (e ValidationError) String() string {
	if len(e.Path) == 0 {
		return e.Message
	}
	return e.DottedPath() + ": " + e.Message
}

// Valid returns a successful result carrying v.
func Valid(v Values) ValidationResult {
	return ValidationResult{Success: true, Data: &v}
}

// Invalid returns a failed result with the given errors.
func Invalid(errs ...ValidationError) ValidationResult {
	return ValidationResult{Errors: errs}
}
