// SPDX-License-Identifier: MPL-2.0

// Package testutil holds helpers shared by cmdkit tests: working directory
// and environment overrides, and in-memory command source fixtures.
package testutil
