// SPDX-License-Identifier: MPL-2.0

// Package scriptcmd runs the shell scripts of a command file in the embedded
// mvdan/sh interpreter, one script per lifecycle phase.
//
// Validated values reach the script as environment variables: args as
// ARG_<NAME> and flags as FLAG_<NAME>, with structured values JSON-encoded.
// Positional tokens are available as $1..$n. The builtin "cmdkit-invoke"
// runs another command of the same tree.
package scriptcmd
