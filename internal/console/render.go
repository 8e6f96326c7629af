package console

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/chemassist/assistant/backend/internal/model/chat"
	"github.com/chemassist/assistant/backend/internal/service/assets"
	chatservice "github.com/chemassist/assistant/backend/internal/service/chat"
)

// RenderSidebar draws the descriptive sidebar as a boxed block. Images
// cannot be shown in a terminal, so assets are listed by name.
func RenderSidebar(s Styles, sidebar assets.Sidebar) string {
	var lines []string

	if sidebar.AssistantName != "" {
		lines = append(lines, s.Title.Render(sidebar.AssistantName))
	}
	if sidebar.Title != "" {
		lines = append(lines, s.Title.Render(sidebar.Title))
	}
	if sidebar.Caption != "" {
		lines = append(lines, s.Muted.Render(sidebar.Caption))
	}
	if sidebar.Bio != "" {
		lines = append(lines, sidebar.Bio)
	}
	if sidebar.CV != nil && sidebar.CV.Available {
		label := sidebar.CVLabel
		if label == "" {
			label = "CV"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", label, sidebar.CV.Path()))
	}
	if sidebar.About != "" {
		lines = append(lines, "", sidebar.About)
	}

	var sponsors []string
	for _, sponsor := range sidebar.Sponsors {
		if sponsor.Available {
			sponsors = append(sponsors, sponsor.Name)
		}
	}
	if len(sponsors) > 0 {
		lines = append(lines, s.Muted.Render("Sponsors: "+strings.Join(sponsors, ", ")))
	}

	for _, msg := range sidebar.Errors {
		lines = append(lines, s.Error.Render(msg))
	}

	return s.Sidebar.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// RenderMenu draws the welcome menu followed by its prompt.
func RenderMenu(s Styles, menu chatservice.Menu) string {
	var b strings.Builder

	b.WriteString(menu.Intro)
	b.WriteString("\n")
	for _, option := range menu.Options {
		fmt.Fprintf(&b, "%s %s\n", s.MenuIndex.Render(option.Choice+"."), option.Label)
	}
	return b.String()
}

// RenderEntries draws transcript entries with their role tag, one per line.
func RenderEntries(s Styles, entries []chat.Message) string {
	var b strings.Builder
	for _, entry := range entries {
		tag := s.BotTag.Render("Assistant:")
		if entry.Role == chat.RoleUser {
			tag = s.UserTag.Render("You:")
		}
		fmt.Fprintf(&b, "%s %s\n", tag, entry.Content)
	}
	return b.String()
}

// RenderNotice draws an inline notice; empty notices render nothing.
func RenderNotice(s Styles, notice string) string {
	if notice == "" {
		return ""
	}
	return s.Notice.Render(notice) + "\n"
}
