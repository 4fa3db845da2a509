// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
)

const (
	// ExitSuccess is returned when a command completes without a numeric result.
	ExitSuccess ExitCode = 0
	// ExitFailure is returned for uncaught execution errors, lookup failures,
	// and validation failures.
	ExitFailure ExitCode = 1

	maxExitCode = 255
)

// ErrInvalidExitCode is the sentinel error wrapped by InvalidExitCodeError.
var ErrInvalidExitCode = errors.New("invalid exit code")

type (
	// ExitCode represents a process exit status code.
	// Exit codes are in the range 0-255 on POSIX systems.
	// The zero value (0) means success.
	ExitCode int

	// InvalidExitCodeError is returned when an ExitCode is outside the
	// valid range (0-255).
	InvalidExitCodeError struct {
		Value ExitCode
	}
)

// Error implements the error interface.
func (e *InvalidExitCodeError) Error() string {
	return fmt.Sprintf("invalid exit code %d (must be in range 0-255)", e.Value)
}

// Unwrap returns ErrInvalidExitCode so callers can use errors.Is for programmatic detection.
func (e *InvalidExitCodeError) Unwrap() error { return ErrInvalidExitCode }

// Validate returns an error if the ExitCode is outside the valid range (0-255).
func (c ExitCode) Validate() error {
	if c < 0 || c > maxExitCode {
		return &InvalidExitCodeError{Value: c}
	}
	return nil
}

// IsSuccess returns true if the exit code indicates successful execution.
func (c ExitCode) IsSuccess() bool { return c == 0 }

// Clamp maps codes outside 0-255 to ExitFailure so that a failure never
// wraps around into success.
func (c ExitCode) Clamp() ExitCode {
	if c.Validate() != nil {
		return ExitFailure
	}
	return c
}

// String returns the decimal string representation of the ExitCode.
func (c ExitCode) String() string { return strconv.Itoa(int(c)) }

// ExitCodeFromResult interprets the value returned by a command's Run or DryRun
// phase. Integer kinds and whole floats are exit codes; every other value
// (including nil) reports false.
func ExitCodeFromResult(v any) (ExitCode, bool) {
	if v == nil {
		return 0, false
	}
	if c, ok := v.(ExitCode); ok {
		return c.Clamp(), true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return clampInt64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if rv.Uint() > maxExitCode {
			return ExitFailure, true
		}
		return ExitCode(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
			return 0, false
		}
		return clampInt64(int64(f)), true
	default:
		return 0, false
	}
}

func clampInt64(n int64) ExitCode {
	if n < 0 || n > maxExitCode {
		return ExitFailure
	}
	return ExitCode(n)
}
