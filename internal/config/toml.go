// SPDX-License-Identifier: MPL-2.0

package config

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
)

// Output formats understood by Render.
const (
	FormatCUE  = "cue"
	FormatTOML = "toml"
)

// Render encodes cfg in the requested format.
func Render(cfg *Config, format string) (string, error) {
	switch format {
	case "", FormatCUE:
		return GenerateCUE(cfg), nil
	case FormatTOML:
		return GenerateTOML(cfg)
	default:
		return "", fmt.Errorf("unsupported config format %q (valid: cue, toml)", format)
	}
}

// GenerateTOML generates a TOML representation of the configuration.
func GenerateTOML(cfg *Config) (string, error) {
	b, err := toml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to encode config as TOML: %w", err)
	}
	return string(b), nil
}
