// Package console is the terminal shell of the chemistry assistant. It
// drives the same chat session loop as the browser UI.
package console

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	accent  = lipgloss.Color("#2563EB")
	success = lipgloss.Color("#059669")
	warning = lipgloss.Color("#D97706")
	danger  = lipgloss.Color("#DC2626")
	muted   = lipgloss.Color("#6B7280")
)

// Styles holds the lipgloss styles bound to one output.
type Styles struct {
	Title     lipgloss.Style
	Sidebar   lipgloss.Style
	Muted     lipgloss.Style
	UserTag   lipgloss.Style
	BotTag    lipgloss.Style
	Notice    lipgloss.Style
	Error     lipgloss.Style
	Prompt    lipgloss.Style
	MenuIndex lipgloss.Style
}

// NewStyles binds the palette to w so color output follows the terminal
// capabilities of w. Plain writers get unstyled text.
func NewStyles(w io.Writer) Styles {
	r := lipgloss.NewRenderer(w)
	return Styles{
		Title:     r.NewStyle().Bold(true).Foreground(accent),
		Sidebar:   r.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(muted).Padding(0, 1),
		Muted:     r.NewStyle().Foreground(muted),
		UserTag:   r.NewStyle().Bold(true).Foreground(accent),
		BotTag:    r.NewStyle().Bold(true).Foreground(success),
		Notice:    r.NewStyle().Foreground(warning),
		Error:     r.NewStyle().Foreground(danger),
		Prompt:    r.NewStyle().Bold(true),
		MenuIndex: r.NewStyle().Bold(true).Foreground(accent),
	}
}
