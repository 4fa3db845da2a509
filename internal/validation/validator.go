// SPDX-License-Identifier: MPL-2.0

package validation

import (
	"fmt"

	"github.com/invowk/cmdkit/pkg/command"
	"github.com/invowk/cmdkit/pkg/schema"
)

const (
	prefixArgs  = "args"
	prefixFlags = "flags"
)

// ValidateAll validates args and flags independently and concatenates the
// errors. A nil schema lets its raw value through. It never panics.
func ValidateAll(args, flags map[string]any, argsSchema, flagsSchema schema.Schema) command.ValidationResult {
	argsOut, argsErrs := validateOne(prefixArgs, args, argsSchema)
	flagsOut, flagsErrs := validateOne(prefixFlags, flags, flagsSchema)

	errs := append(argsErrs, flagsErrs...)
	if len(errs) > 0 {
		return command.Invalid(errs...)
	}
	return command.Valid(command.Values{Args: argsOut, Flags: flagsOut})
}

func validateOne(prefix string, value map[string]any, s schema.Schema) (out map[string]any, errs []command.ValidationError) {
	if value == nil {
		value = map[string]any{}
	}
	if s == nil {
		return value, nil
	}

	defer func() {
		if r := recover(); r != nil {
			out = nil
			errs = []command.ValidationError{{
				Path:    []string{prefix},
				Message: fmt.Sprintf("schema validation failed: %v", r),
				Code:    schema.CodeInvalid,
			}}
		}
	}()

	res := s.Validate(value)
	if !res.OK {
		for _, is := range res.Issues {
			errs = append(errs, command.ValidationError{
				Path:    append([]string{prefix}, is.Path...),
				Message: is.Message,
				Code:    is.Code,
			})
		}
		if len(errs) == 0 {
			errs = append(errs, command.ValidationError{Path: []string{prefix}, Message: "invalid value", Code: schema.CodeInvalid})
		}
		return nil, errs
	}

	switch v := res.Value.(type) {
	case map[string]any:
		return v, nil
	case nil:
		return map[string]any{}, nil
	default:
		return nil, []command.ValidationError{{
			Path:    []string{prefix},
			Message: fmt.Sprintf("expected an object, got %T", v),
			Code:    schema.CodeInvalidType,
		}}
	}
}
