// SPDX-License-Identifier: MPL-2.0

// Package logsink implements command.Log on top of charmbracelet/log and
// provides a Recorder for tests.
package logsink
