// SPDX-License-Identifier: MPL-2.0

// Package lifecycle drives a validated command through its phases
// (ConfigureContext, Init, Run or DryRun, Cleanup) and turns the outcome into
// an exit code.
package lifecycle
