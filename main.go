// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/invowk/cmdkit/cmd/cmdkit"

func main() {
	cmd.Execute()
}
