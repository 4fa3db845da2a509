// SPDX-License-Identifier: MPL-2.0

// Package discovery finds command files in filesystem sources and loads them
// into command definitions.
//
// A source is a directory tree: every *.cue file is a command keyed by its
// path relative to the source without the extension, and every directory is
// a group. Names starting with "_" or "." are skipped.
package discovery
