// SPDX-License-Identifier: MPL-2.0

package discovery

const (
	// SeverityWarning indicates a recoverable discovery warning.
	SeverityWarning Severity = "warning"
	// SeverityError indicates a non-fatal discovery error diagnostic.
	SeverityError Severity = "error"
)

const (
	CodeSourceMissing  = "source_missing"
	CodeEntrySkipped   = "entry_skipped"
	CodeCommandInvalid = "command_file_invalid"
)

type (
	// Severity represents discovery diagnostic severity.
	Severity string

	// Diagnostic is a non-fatal discovery finding returned to callers so the
	// CLI layer decides how to render it.
	Diagnostic struct {
		Severity Severity
		// Code is a machine-readable identifier (e.g., "source_missing").
		Code    string
		Message string
		Path    string
		Cause   error
	}
)

func (d Diagnostic) String() string {
	s := string(d.Severity) + ": " + d.Message
	if d.Path != "" {
		s += " (" + d.Path + ")"
	}
	return s
}
