// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// DefaultSourcePath is the command source used when none is configured.
	DefaultSourcePath = "commands"
	// DefaultMaxDistance bounds suggestion edit distance when unset.
	DefaultMaxDistance = 3
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidSource is the sentinel error wrapped by InvalidSourceError.
	ErrInvalidSource = errors.New("invalid command source")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// InvalidSourceError reports a source entry that cannot be scanned.
	InvalidSourceError struct {
		Index  int
		Source SourceEntry
		Reason string
	}

	// InvalidConfigError collects every invalid field of a Config.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// Sources lists command directories in merge order.
		Sources []SourceEntry `json:"sources" mapstructure:"sources" toml:"sources"`
		// DryRunFlags are the flag names that select the DryRun phase.
		DryRunFlags []string `json:"dry_run_flags" mapstructure:"dry_run_flags" toml:"dry_run_flags"`
		// HelpFlags are the flag names that request group help.
		HelpFlags []string `json:"help_flags" mapstructure:"help_flags" toml:"help_flags"`
		// Suggest configures unknown-key suggestions.
		Suggest SuggestConfig `json:"suggest" mapstructure:"suggest" toml:"suggest"`
		// UI configures the user interface.
		UI UIConfig `json:"ui" mapstructure:"ui" toml:"ui"`
	}

	// SourceEntry is one directory of command files. Root, when set, prefixes
	// every key found below Path.
	SourceEntry struct {
		Path string `json:"path" mapstructure:"path" toml:"path"`
		Root string `json:"root,omitempty" mapstructure:"root" toml:"root,omitempty"`
	}

	// SuggestConfig configures "Did you mean" suggestions.
	SuggestConfig struct {
		MaxDistance int `json:"max_distance" mapstructure:"max_distance" toml:"max_distance"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// Verbose enables framework diagnostics on stderr.
		Verbose bool `json:"verbose" mapstructure:"verbose" toml:"verbose"`
		// ColorScheme sets the color scheme
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme" toml:"color_scheme"`
	}
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Sources:     []SourceEntry{{Path: DefaultSourcePath}},
		DryRunFlags: []string{"dry-run", "dryRun", "dry_run"},
		HelpFlags:   []string{"help", "h"},
		Suggest:     SuggestConfig{MaxDistance: DefaultMaxDistance},
		UI: UIConfig{
			Verbose:     false,
			ColorScheme: ColorSchemeAuto,
		},
	}
}

// IsValid returns whether the ColorScheme is one of the defined schemes,
// and a list of validation errors if it is not.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// Error implements the error interface.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns ErrInvalidColorScheme so callers can use errors.Is for programmatic detection.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// IsValid reports whether the source names a directory and a well-formed root.
func (s SourceEntry) IsValid() (bool, []error) {
	if strings.TrimSpace(s.Path) == "" {
		return false, []error{&InvalidSourceError{Source: s, Reason: "path must not be empty"}}
	}
	if s.Root != "" && (strings.HasPrefix(s.Root, "/") || strings.HasSuffix(s.Root, "/") || strings.Contains(s.Root, "//")) {
		return false, []error{&InvalidSourceError{Source: s, Reason: "root must be a slash-delimited key"}}
	}
	return true, nil
}

// Error implements the error interface.
func (e *InvalidSourceError) Error() string {
	return fmt.Sprintf("sources[%d] (%q): %s", e.Index, e.Source.Path, e.Reason)
}

// Unwrap returns ErrInvalidSource for errors.Is() compatibility.
func (e *InvalidSourceError) Unwrap() error { return ErrInvalidSource }

// IsValid validates every field of the configuration and reports all
// problems at once.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	for i, src := range c.Sources {
		if valid, fieldErrs := src.IsValid(); !valid {
			for _, fe := range fieldErrs {
				var se *InvalidSourceError
				if errors.As(fe, &se) {
					se.Index = i
				}
				errs = append(errs, fe)
			}
		}
	}
	if c.Suggest.MaxDistance < 0 {
		errs = append(errs, fmt.Errorf("suggest.max_distance must be >= 0, got %d", c.Suggest.MaxDistance))
	}
	if valid, fieldErrs := c.UI.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, fe := range e.FieldErrors {
		msgs[i] = fe.Error()
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }
