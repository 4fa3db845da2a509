// SPDX-License-Identifier: MPL-2.0

// Package command defines the contract between the cmdkit runtime and the
// commands it runs: the Command interface and its optional lifecycle hooks,
// the Definition a source produces for a key, the per-invocation Context, and
// the ValidationResult returned by the validation pipeline.
package command
