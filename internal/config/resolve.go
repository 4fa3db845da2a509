// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"fmt"
	"strings"
)

// ConfigFlag is the framework flag selecting a config file.
const ConfigFlag = "config"

// Resolution is the outcome of ResolveConfig.
type Resolution struct {
	Config        *Config
	ResolvedPath  string
	RemainingArgv []string
}

// ResolveConfig strips --config <path> and --config=<path> from argv, loads
// the configuration through provider and returns the rest of argv untouched.
// Tokens after a "--" terminator are never inspected. When the flag repeats
// the last value wins.
func ResolveConfig(ctx context.Context, provider Provider, argv []string) (Resolution, error) {
	path, rest, err := stripConfigFlag(argv)
	if err != nil {
		return Resolution{}, err
	}

	cfg, resolved, err := provider.Load(ctx, LoadOptions{ConfigFilePath: path})
	if err != nil {
		return Resolution{}, err
	}

	return Resolution{Config: cfg, ResolvedPath: resolved, RemainingArgv: rest}, nil
}

func stripConfigFlag(argv []string) (path string, rest []string, err error) {
	long := "--" + ConfigFlag
	rest = make([]string, 0, len(argv))
	for i := 0; i < len(argv); i++ {
		tok := argv[i]
		switch {
		case tok == "--":
			rest = append(rest, argv[i:]...)
			return path, rest, nil
		case tok == long:
			if i+1 >= len(argv) {
				return "", nil, fmt.Errorf("flag --%s requires a path", ConfigFlag)
			}
			path = argv[i+1]
			i++
		case strings.HasPrefix(tok, long+"="):
			path = strings.TrimPrefix(tok, long+"=")
			if path == "" {
				return "", nil, fmt.Errorf("flag --%s requires a path", ConfigFlag)
			}
		default:
			rest = append(rest, tok)
		}
	}
	return path, rest, nil
}
