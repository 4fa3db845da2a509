// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

type Id int

const (
	CommandNotFoundId Id = iota + 1
	DuplicateCommandKeyId
	CommandFileInvalidId
	MissingBuilderId
	ValidationFailedId
	ConfigLoadFailedId
	RegistrySealedId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the issue as terminal markdown using the given glamour style
// ("dark", "light", "notty", ...).
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			md.WriteString("\n- <" + string(link) + ">")
		}
		for _, link := range i.extLinks {
			md.WriteString("\n- <" + string(link) + ">")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	commandNotFoundIssue = &Issue{
		id: CommandNotFoundId,
		mdMsg: `
# Command not found!

The key you typed does not match any command or group in the merged command tree.

## Things you can try:
- List every known key:
~~~
$ cmdkit list
~~~

- Check for typos; keys are case-sensitive and slash-delimited (` + "`scaffold/cloud/aws`" + `)
- Make sure the directory holding the command file is listed in ` + "`sources`" + ` of your config`,
	}

	duplicateCommandKeyIssue = &Issue{
		id: DuplicateCommandKeyId,
		mdMsg: `
# Duplicate command key!

Two command sources define the same key. Keys must be unique across all filesystem sources.

## Things you can try:
- Rename or remove one of the two command files named in the error
- Give one source a ` + "`root`" + ` prefix so its keys live under a separate group:
~~~cue
sources: [
  {path: "commands"},
  {path: "vendor/commands", root: "vendor"},
]
~~~

- Run the validator to see every collision at once:
~~~
$ cmdkit validate
~~~`,
		extLinks: []HttpLink{"https://cuelang.org/docs/tour/"},
	}

	commandFileInvalidIssue = &Issue{
		id: CommandFileInvalidId,
		mdMsg: `
# Invalid command file!

A command file contains CUE syntax errors or does not match the command file schema.

## Common issues:
- Missing ` + "`run`" + ` script
- ` + "`args`" + ` or ` + "`flags`" + ` is not a struct
- Unknown top-level fields

## Example of a valid command file:
~~~cue
description: "Say hello"
args: {
	name?: string | *"world"
}
flags: {
	loud?: bool
}
run: """
	echo "hello $ARG_NAME"
	"""
~~~`,
		extLinks: []HttpLink{"https://cuelang.org/docs/tour/"},
	}

	missingBuilderIssue = &Issue{
		id: MissingBuilderId,
		mdMsg: `
# Command cannot be built!

A command entry was found but it has nothing to execute.

## Things you can try:
- Add a ` + "`run`" + ` script to the command file
- When registering commands from Go, set ` + "`Definition.New`" + ``,
	}

	validationFailedIssue = &Issue{
		id: ValidationFailedId,
		mdMsg: `
# Invalid arguments or flags!

The values you passed do not match what the command declares.

## Things you can try:
- Show the command's arguments and flags:
~~~
$ cmdkit cmd <key> --help
~~~

- Pass structured values as inline JSON (` + "`--config '{\"a\":1}'`" + `) or as a path to a JSON file`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The configuration file could not be read or does not match the config schema.

## Things you can try:
- Print the effective configuration:
~~~
$ cmdkit config show
~~~

- Write a fresh default file and edit it:
~~~
$ cmdkit config init
~~~`,
	}

	registrySealedIssue = &Issue{
		id: RegistrySealedId,
		mdMsg: `
# Command registered too late!

In-process commands must be registered before the runtime resolves its first command.

## Things you can try:
- Move the ` + "`Register`" + ` call before ` + "`Runtime.Run`" + ``,
	}

	issues = map[Id]*Issue{
		commandNotFoundIssue.Id():     commandNotFoundIssue,
		duplicateCommandKeyIssue.Id(): duplicateCommandKeyIssue,
		commandFileInvalidIssue.Id():  commandFileInvalidIssue,
		missingBuilderIssue.Id():      missingBuilderIssue,
		validationFailedIssue.Id():    validationFailedIssue,
		configLoadFailedIssue.Id():    configLoadFailedIssue,
		registrySealedIssue.Id():      registrySealedIssue,
	}
)

// Values returns all catalog entries ordered by id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
