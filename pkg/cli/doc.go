// SPDX-License-Identifier: MPL-2.0

// Package cli is the entry point for embedding the command runtime.
//
// A Runtime loads configuration, discovers command files, merges them with
// commands registered from Go code, and dispatches argv to a command, a group
// listing, or an "unknown command" report:
//
//	rt := cli.New()
//	_ = rt.Register("hello", command.Definition{New: func() command.Command { return hello{} }})
//	os.Exit(int(rt.Run(ctx, os.Args[1:])))
package cli
