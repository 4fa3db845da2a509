// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the resource involved and
// suggestions; the catalog maps issue ids to Markdown guidance rendered with
// glamour for configuration and lookup failures.
package issue
