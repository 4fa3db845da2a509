// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *ActionableError
		want string
	}{
		{"operation only", &ActionableError{Operation: "merge command sources"}, "failed to merge command sources"},
		{
			"operation and resource",
			&ActionableError{Operation: "load command file", Resource: "commands/deploy.cue"},
			"failed to load command file: commands/deploy.cue",
		},
		{
			"every part",
			&ActionableError{Operation: "load command file", Resource: "commands/deploy.cue", Cause: errors.New("no such file")},
			"failed to load command file: commands/deploy.cue: no such file",
		},
		{"cause without operation", &ActionableError{Cause: errors.New("boom")}, "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestActionableError_Unwrap(t *testing.T) {
	t.Parallel()

	errSealed := errors.New("registry sealed")
	err := fmt.Errorf("register: %w", WrapWithOperation(errSealed, "register command"))

	if !errors.Is(err, errSealed) {
		t.Error("errors.Is should reach the cause through the actionable error")
	}
	var ae *ActionableError
	if !errors.As(err, &ae) || ae.Operation != "register command" {
		t.Errorf("errors.As = %+v", ae)
	}
	if WrapWithOperation(nil, "noop") != nil {
		t.Error("wrapping nil should return nil")
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	base := errors.New("unexpected token")
	wrapped := fmt.Errorf("commands/deploy.cue: %w", base)
	ae := NewErrorContext().
		WithOperation("load command file").
		WithSuggestions("Fix the syntax error", "Run 'cmdkit validate'").
		Wrap(wrapped).
		Build()

	t.Run("concise", func(t *testing.T) {
		t.Parallel()

		want := "failed to load command file: commands/deploy.cue: unexpected token\n" +
			"\n  • Fix the syntax error" +
			"\n  • Run 'cmdkit validate'"
		if diff := cmp.Diff(want, ae.Format(false)); diff != "" {
			t.Errorf("Format(false) mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("verbose lists each cause", func(t *testing.T) {
		t.Parallel()

		got := ae.Format(true)
		for _, want := range []string{"Error chain:", "1. commands/deploy.cue: unexpected token", "2. unexpected token"} {
			if !strings.Contains(got, want) {
				t.Errorf("Format(true) = %q, missing %q", got, want)
			}
		}
	})

	t.Run("verbose skips repeated causes", func(t *testing.T) {
		t.Parallel()

		repeated := &ActionableError{Operation: "run", Cause: passthrough{base}}
		got := repeated.Format(true)
		if strings.Contains(got, "2.") {
			t.Errorf("identical cause text should be listed once, got %q", got)
		}
	})
}

// passthrough wraps an error without adding text.
type passthrough struct{ err error }

func (p passthrough) Error() string { return p.err.Error() }
func (p passthrough) Unwrap() error { return p.err }

func TestErrorContext_Build(t *testing.T) {
	t.Parallel()

	if NewErrorContext().WithResource("x").Build() != nil {
		t.Error("Build without an operation should return nil")
	}
	if err := NewErrorContext().BuildError(); err != nil {
		t.Errorf("BuildError without an operation = %v, want a nil interface", err)
	}

	cause := errors.New("sealed")
	got := NewErrorContext().
		WithOperation("register command").
		WithResource("deploy").
		WithSuggestion("Register commands before the first Load").
		WithIssue(RegistrySealedId).
		Wrap(cause).
		Build()
	want := &ActionableError{
		Operation:   "register command",
		Resource:    "deploy",
		Suggestions: []string{"Register commands before the first Load"},
		Cause:       cause,
		Issue:       RegistrySealedId,
	}
	if diff := cmp.Diff(want, got, cmp.Comparer(func(a, b error) bool { return a == b })); diff != "" {
		t.Errorf("Build() mismatch (-want +got):\n%s", diff)
	}
	if !got.HasSuggestions() {
		t.Error("HasSuggestions() = false")
	}
}

func TestErrorContext_Reuse(t *testing.T) {
	t.Parallel()

	ctx := NewErrorContext().WithOperation("load command file").WithSuggestion("Check the file")
	first := ctx.Build()
	ctx.WithSuggestion("Run 'cmdkit validate'")
	second := ctx.Build()

	if len(first.Suggestions) != 1 || len(second.Suggestions) != 2 {
		t.Errorf("suggestions = %v and %v; earlier builds must not change", first.Suggestions, second.Suggestions)
	}
	if (&ActionableError{Operation: "x"}).HasSuggestions() {
		t.Error("HasSuggestions() should be false without suggestions")
	}
}
