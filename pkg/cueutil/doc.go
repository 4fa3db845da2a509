// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides shared CUE compilation utilities.
//
// Command files and the configuration file follow the same flow:
//
//  1. Compile the embedded schema
//  2. Compile user data and unify it with the schema definition
//  3. Validate (non-concrete: command files carry schemas, not data)
//
// Errors are formatted with the CUE path of the offending value:
//
//	commands/deploy.cue: flags.region: conflicting values "eu" and int
package cueutil
