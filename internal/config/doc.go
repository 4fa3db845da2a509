// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from cmdkit.cue in the config directory (XDG on Linux,
// ~/Library/Application Support/cmdkit on macOS, %APPDATA%\cmdkit on Windows) or the
// working directory, or from the file named by --config. Values are validated against
// the embedded #Config CUE schema and may be overridden through CMDKIT_* environment
// variables.
package config
