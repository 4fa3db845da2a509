// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
)

type (
	// ActionableError is a user-facing failure: the operation that failed, the
	// command key or file it concerned, hints for fixing it and, optionally,
	// the catalog entry with longer guidance.
	//
	//	return issue.NewErrorContext().
	//		WithOperation("load command file").
	//		WithResource("commands/deploy.cue").
	//		WithIssue(issue.CommandFileInvalidId).
	//		Wrap(err).
	//		BuildError()
	ActionableError struct {
		// Operation is a verb phrase such as "merge command sources".
		Operation string
		// Resource is the command key, file or directory involved.
		Resource    string
		Suggestions []string
		Cause       error
		// Issue is the catalog entry rendered in verbose mode. Zero means none.
		Issue Id
	}

	// ErrorContext accumulates the parts of an ActionableError.
	ErrorContext struct {
		operation   string
		resource    string
		suggestions []string
		cause       error
		issue       Id
	}
)

// NewErrorContext starts an empty builder.
func NewErrorContext() *ErrorContext {
	return &ErrorContext{}
}

// WrapWithOperation attaches an operation to err. A nil err stays nil.
func WrapWithOperation(err error, operation string) *ActionableError {
	if err == nil {
		return nil
	}
	return &ActionableError{Operation: operation, Cause: err}
}

func (e *ActionableError) Error() string {
	parts := make([]string, 0, 3)
	if e.Operation != "" {
		parts = append(parts, "failed to "+e.Operation)
	}
	if e.Resource != "" {
		parts = append(parts, e.Resource)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *ActionableError) Unwrap() error {
	return e.Cause
}

// Format renders the error for the terminal. Suggestions follow the message
// as bullet lines. Verbose output also lists the wrapped causes, skipping a
// level whose text is identical to the one it wraps.
func (e *ActionableError) Format(verbose bool) string {
	var sb strings.Builder
	sb.WriteString(e.Error())

	if e.HasSuggestions() {
		sb.WriteString("\n")
		for _, s := range e.Suggestions {
			sb.WriteString("\n  • " + s)
		}
	}

	if !verbose || e.Cause == nil {
		return sb.String()
	}
	sb.WriteString("\n\nError chain:")
	depth, prev := 0, ""
	for err := e.Cause; err != nil; err = errors.Unwrap(err) {
		msg := err.Error()
		if msg == prev {
			continue
		}
		depth++
		fmt.Fprintf(&sb, "\n  %d. %s", depth, msg)
		prev = msg
	}
	return sb.String()
}

// HasSuggestions reports whether the error carries its own fix hints.
func (e *ActionableError) HasSuggestions() bool {
	return len(e.Suggestions) > 0
}

func (c *ErrorContext) WithOperation(op string) *ErrorContext {
	c.operation = op
	return c
}

func (c *ErrorContext) WithResource(res string) *ErrorContext {
	c.resource = res
	return c
}

// WithSuggestion appends one hint; repeated calls accumulate.
func (c *ErrorContext) WithSuggestion(sug string) *ErrorContext {
	c.suggestions = append(c.suggestions, sug)
	return c
}

func (c *ErrorContext) WithSuggestions(sugs ...string) *ErrorContext {
	c.suggestions = append(c.suggestions, sugs...)
	return c
}

func (c *ErrorContext) WithIssue(id Id) *ErrorContext {
	c.issue = id
	return c
}

func (c *ErrorContext) Wrap(err error) *ErrorContext {
	c.cause = err
	return c
}

// Build returns nil when no operation was set. The suggestions slice is
// copied so a builder can be reused for several errors.
func (c *ErrorContext) Build() *ActionableError {
	if c.operation == "" {
		return nil
	}
	return &ActionableError{
		Operation:   c.operation,
		Resource:    c.resource,
		Suggestions: append([]string(nil), c.suggestions...),
		Cause:       c.cause,
		Issue:       c.issue,
	}
}

// BuildError is Build typed as error, so that a missing operation yields a
// true nil interface.
func (c *ErrorContext) BuildError() error {
	if ae := c.Build(); ae != nil {
		return ae
	}
	return nil
}
