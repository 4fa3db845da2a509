// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/invowk/cmdkit/pkg/schema"
)

// ErrYAMLNotSupported is returned for YAML files that are not also valid JSON.
var ErrYAMLNotSupported = errors.New("YAML is not fully supported; use JSON-compatible YAML")

type (
	// Resolution is the outcome of resolving one raw value. A soft failure
	// has Success false, Value equal to the raw input and no Err.
	Resolution struct {
		Success  bool
		Value    any
		FromFile bool
		// Err is set for hard file failures the user should see.
		Err error
	}

	// FileError wraps a failure to load a structured value from a file.
	FileError struct {
		Path string
		Err  error
	}

	// Resolver resolves raw values against schemas.
	Resolver struct {
		fs afero.Fs
	}
)

// New returns a resolver reading files from fs.
func New(fs afero.Fs) *Resolver {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Resolver{fs: fs}
}

func (e *FileError) Error() string {
	return fmt.Sprintf("cannot load %s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// Resolve resolves raw for s. Non-string values and fields that opt out of
// file checking pass through unchanged.
func (r *Resolver) Resolve(ctx context.Context, raw any, s schema.Schema) Resolution {
	str, ok := raw.(string)
	if !ok || !schema.ShouldFileCheck(s) {
		return Resolution{Success: true, Value: raw}
	}
	if err := ctx.Err(); err != nil {
		return Resolution{Value: raw, Err: err}
	}

	var fileErr error
	if LooksLikeFile(str) {
		if exists, _ := afero.Exists(r.fs, str); exists {
			v, err := r.loadFile(str)
			if err == nil {
				return Resolution{Success: true, Value: v, FromFile: true}
			}
			fileErr = &FileError{Path: str, Err: err}
		}
	}

	if v, ok := parseInlineJSON(str); ok {
		return Resolution{Success: true, Value: v}
	}
	return Resolution{Value: raw, Err: fileErr}
}

// LooksLikeFile reports whether s reads as a path to a structured file.
func LooksLikeFile(s string) bool {
	switch {
	case strings.HasPrefix(s, "./"), strings.HasPrefix(s, "../"), strings.HasPrefix(s, "/"):
		return true
	case hasDriveLetter(s):
		return true
	}
	switch strings.ToLower(filepath.Ext(s)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

func hasDriveLetter(s string) bool {
	if len(s) < 3 || s[1] != ':' || (s[2] != '\\' && s[2] != '/') {
		return false
	}
	c := s[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func (r *Resolver) loadFile(path string) (any, error) {
	data, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		v, jsonErr := decodeJSON(data)
		if jsonErr == nil {
			return v, nil
		}
		var probe any
		if yamlErr := yaml.Unmarshal(data, &probe); yamlErr != nil {
			return nil, fmt.Errorf("%w (file is not valid YAML either: %v)", ErrYAMLNotSupported, yamlErr)
		}
		return nil, ErrYAMLNotSupported
	}
	return decodeJSON(data)
}

func parseInlineJSON(s string) (any, bool) {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "{") && !strings.HasPrefix(trimmed, "[") {
		return nil, false
	}
	v, err := decodeJSON([]byte(trimmed))
	if err != nil {
		return nil, false
	}
	return v, true
}

// decodeJSON decodes exactly one JSON document.
func decodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if dec.More() {
		return nil, errors.New("invalid JSON: trailing data after document")
	}
	return v, nil
}
