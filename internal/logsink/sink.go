// SPDX-License-Identifier: MPL-2.0

package logsink

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/invowk/cmdkit/pkg/command"
)

// Palette shared with the CLI styles.
const (
	ColorSuccess   = lipgloss.Color("#10B981")
	ColorError     = lipgloss.Color("#EF4444")
	ColorWarning   = lipgloss.Color("#F59E0B")
	ColorHighlight = lipgloss.Color("#3B82F6")
	ColorMuted     = lipgloss.Color("#6B7280")
)

var successStyle = lipgloss.NewStyle().Foreground(ColorSuccess)

// Sink writes command output through a charm logger.
type Sink struct {
	logger *log.Logger
}

var _ command.Log = (*Sink)(nil)

// New returns a sink writing to w. The prefix, when set, is shown before
// every line.
func New(w io.Writer, prefix string) *Sink {
	logger := log.NewWithOptions(w, log.Options{
		Prefix: prefix,
		Level:  log.InfoLevel,
	})
	logger.SetStyles(styles())
	return &Sink{logger: logger}
}

func (s *Sink) Info(v ...any)  { s.logger.Info(join(v)) }
func (s *Sink) Warn(v ...any)  { s.logger.Warn(join(v)) }
func (s *Sink) Error(v ...any) { s.logger.Error(join(v)) }

// Success prints a level-less line rendered in the success color.
func (s *Sink) Success(v ...any) {
	s.logger.Print(successStyle.Render(join(v)))
}

// NewDiagnostics returns a structured logger for framework diagnostics such
// as skipped files and shadowed commands. Debug records are only shown when
// verbose is set.
func NewDiagnostics(w io.Writer, verbose bool) *slog.Logger {
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(w, log.Options{
		Prefix: "cmdkit",
		Level:  level,
	})
	logger.SetStyles(styles())
	return slog.New(logger)
}

// Discard returns a diagnostics logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func styles() *log.Styles {
	st := log.DefaultStyles()
	st.Levels[log.InfoLevel] = lipgloss.NewStyle().SetString("INFO").Bold(true).Foreground(ColorHighlight)
	st.Levels[log.WarnLevel] = lipgloss.NewStyle().SetString("WARN").Bold(true).Foreground(ColorWarning)
	st.Levels[log.ErrorLevel] = lipgloss.NewStyle().SetString("ERROR").Bold(true).Foreground(ColorError)
	st.Levels[log.DebugLevel] = lipgloss.NewStyle().SetString("DEBUG").Foreground(ColorMuted)
	return st
}

func join(v []any) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = fmt.Sprint(x)
	}
	return strings.Join(parts, " ")
}
