// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/invowk/cmdkit/internal/logsink"
)

// ColorPrimary is purple, used for titles. The rest of the palette is shared
// with the log sink.
const ColorPrimary = lipgloss.Color("#7C3AED")

var (
	// TitleStyle is for primary headers and section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// SubtitleStyle is for secondary headers and descriptions.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(logsink.ColorMuted)

	// SuccessStyle is for success messages and positive indicators.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(logsink.ColorSuccess)

	// ErrorStyle is for error messages and failure indicators.
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(logsink.ColorError)

	// WarningStyle is for warning messages and caution indicators.
	WarningStyle = lipgloss.NewStyle().
			Foreground(logsink.ColorWarning)

	// CmdStyle is for command keys and values.
	CmdStyle = lipgloss.NewStyle().
			Foreground(logsink.ColorHighlight)
)
