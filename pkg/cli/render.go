// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/invowk/cmdkit/internal/commandtree"
	"github.com/invowk/cmdkit/internal/config"
	"github.com/invowk/cmdkit/internal/issue"
	"github.com/invowk/cmdkit/internal/logsink"
	"github.com/invowk/cmdkit/pkg/command"
	"github.com/invowk/cmdkit/pkg/schema"
	"github.com/invowk/cmdkit/pkg/types"
)

// Actionable converts err into an ActionableError with catalog guidance.
// Errors that already are actionable are returned unchanged.
func Actionable(err error) *issue.ActionableError {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae
	}

	var dup *commandtree.DuplicateKeyError
	if errors.As(err, &dup) {
		return issue.NewErrorContext().
			WithOperation("merge command sources").
			WithIssue(issue.DuplicateCommandKeyId).
			WithSuggestion("Rename or remove one of the two definitions").
			WithSuggestion("Give one source a 'root' prefix in the config").
			Wrap(err).
			Build()
	}

	var missing *commandtree.MissingBuilderError
	if errors.As(err, &missing) {
		return issue.NewErrorContext().
			WithOperation("build command").
			WithIssue(issue.MissingBuilderId).
			Wrap(err).
			Build()
	}

	return issue.WrapWithOperation(err, "run cmdkit")
}

func reportError(log command.Log, w io.Writer, err error, verbose bool, scheme config.ColorScheme) {
	ae := Actionable(err)
	log.Error(ae.Format(verbose))
	switch {
	case ae.Issue == 0:
	case verbose:
		renderIssue(w, ae.Issue, scheme)
	case !ae.HasSuggestions():
		log.Info(verboseHint)
	}
}

// verboseHint points at the catalog guidance for errors that carry no hints
// of their own.
const verboseHint = "Set ui.verbose in the configuration for troubleshooting steps"

func renderIssue(w io.Writer, id issue.Id, scheme config.ColorScheme) {
	iss := issue.Get(id)
	if iss == nil {
		return
	}
	rendered, err := iss.Render(string(scheme))
	if err != nil {
		return
	}
	_, _ = fmt.Fprint(w, rendered)
}

type listingStyles struct {
	title lipgloss.Style
	key   lipgloss.Style
	muted lipgloss.Style
}

func newListingStyles(w io.Writer) listingStyles {
	r := lipgloss.NewRenderer(w)
	return listingStyles{
		title: r.NewStyle().Bold(true),
		key:   r.NewStyle().Foreground(logsink.ColorHighlight),
		muted: r.NewStyle().Foreground(logsink.ColorMuted),
	}
}

// printListing writes the children of a group, or the usage of a command
// when help was requested for it.
func (s *Session) printListing(m commandtree.GroupMatch) error {
	w := s.runtime.stdout
	st := newListingStyles(w)

	if m.Entry.IsCommand() {
		return s.printUsage(w, st, m.Entry)
	}

	title := "Available commands"
	if m.Entry.Key != "" {
		title = fmt.Sprintf("Commands in %s", m.Entry.Key)
	}
	if _, err := fmt.Fprintln(w, st.title.Render(title+":")); err != nil {
		return err
	}
	if len(m.Children) == 0 {
		_, err := fmt.Fprintln(w, st.muted.Render("  (none)"))
		return err
	}

	width := 0
	names := make([]string, len(m.Children))
	for i, child := range m.Children {
		names[i] = child.Key.Name()
		if !child.IsCommand() {
			names[i] += commandtree.Separator
		}
		width = max(width, len(names[i]))
	}
	for i, child := range m.Children {
		line := "  " + st.key.Render(names[i])
		if desc := types.DescriptionText(s.describe(child)).Summary(); desc != "" {
			line += strings.Repeat(" ", width-len(names[i])+2) + desc
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) printUsage(w io.Writer, st listingStyles, e commandtree.Entry) error {
	def, err := s.Definition(e)
	if err != nil {
		return err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s\n", st.title.Render("Usage:"), e.Key)
	if def.Description != "" {
		fmt.Fprintf(&sb, "\n%s\n", def.Description)
	}
	writeFields(&sb, st, "Arguments", def.ArgsSchema, "")
	writeFields(&sb, st, "Flags", def.FlagsSchema, "--")
	_, err = io.WriteString(w, sb.String())
	return err
}

func writeFields(sb *strings.Builder, st listingStyles, title string, s schema.Schema, prefix string) {
	if s == nil {
		return
	}
	fields := s.Fields()
	if len(fields) == 0 {
		return
	}
	fmt.Fprintf(sb, "\n%s\n", st.title.Render(title+":"))
	for _, f := range fields {
		typ := "any"
		if f.Schema != nil {
			typ = f.Schema.Unwrap().TypeName()
		}
		note := typ
		if f.Optional || f.HasDefault {
			note += ", optional"
		}
		label := schema.DisplayName(f.Schema, f.Name)
		fmt.Fprintf(sb, "  %s  %s\n", st.key.Render(prefix+f.Name), st.muted.Render(fmt.Sprintf("%s (%s)", label, note)))
	}
}

// describe returns the description of an entry, loading command files when
// needed. Load errors leave the description empty; they surface when the
// command runs or through Check.
func (s *Session) describe(e commandtree.Entry) string {
	if e.Description != "" || !e.IsCommand() {
		return e.Description
	}
	def, err := s.Definition(e)
	if err != nil {
		return ""
	}
	return def.Description
}
