// SPDX-License-Identifier: MPL-2.0

// Package resolve turns raw CLI strings for structured fields into values:
// a file path is loaded and decoded, inline JSON is parsed, and anything else
// passes through untouched for schema validation to judge.
package resolve
