// SPDX-License-Identifier: MPL-2.0

// Package validation resolves and validates a command's raw args and flags.
//
// ValidateAll checks resolved values against the args and flags schemas.
// Pipeline wires resolution and validation together and hands control to a
// command's custom validator when it declares one.
package validation
