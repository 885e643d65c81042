package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// HelpModal lists keyboard shortcuts and commands
type HelpModal struct {
	Modal
}

// NewHelpModal creates a hidden help modal
func NewHelpModal() HelpModal {
	return HelpModal{Modal: Modal{width: 80, height: 30}}
}

// SetSize updates the modal size based on terminal dimensions
func (m *HelpModal) SetSize(width, height int) {
	m.resize(width, height, 0.75, 50, 20)
}

// Update handles input for the help modal
func (m HelpModal) Update(msg tea.Msg) (HelpModal, tea.Cmd) {
	if !m.visible {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q", "?":
			m.Hide()
		}
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
	}

	return m, nil
}

// View renders the help modal
func (m HelpModal) View(theme StyleTheme) string {
	if !m.visible {
		return ""
	}

	var content strings.Builder

	center := func(text string, style lipgloss.Style) string {
		pad := max(0, (m.width-4-lipgloss.Width(text))/2)
		return style.Render(strings.Repeat(" ", pad) + text)
	}

	content.WriteString(center("KEYBOARD SHORTCUTS", lipgloss.NewStyle().Foreground(theme.Cyan).Bold(true)))
	content.WriteString("\n\n")
	content.WriteString(center("Press : for commands like tag, goto, copy and theme", lipgloss.NewStyle().Foreground(theme.Gray).Italic(true)))
	content.WriteString("\n\n")

	keyStyle := lipgloss.NewStyle().Foreground(theme.Purple).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(theme.White)

	formatCmd := func(key, desc string) string {
		return "  " + keyStyle.Render(key) + strings.Repeat(" ", max(0, 14-lipgloss.Width(key))) + descStyle.Render(desc)
	}

	// Two columns when the modal is wide enough
	format2Col := func(key1, desc1, key2, desc2 string) string {
		col1 := formatCmd(key1, desc1)
		if key2 == "" {
			return col1
		}
		if m.width > 70 {
			spacing := max(2, m.width/2-lipgloss.Width(col1))
			return col1 + strings.Repeat(" ", spacing) + formatCmd(key2, desc2)
		}
		return col1 + "\n" + formatCmd(key2, desc2)
	}

	sections := []struct {
		title string
		rows  [][4]string
	}{
		{"GRID", [][4]string{
			{"h/j/k/l", "Move between cards", "g / G", "First / last card"},
			{"ctrl+d/u", "Half page down/up", "wheel", "Scroll"},
			{"Enter", "Play selected video", "m", "Load more"},
		}},
		{"TAGS", [][4]string{
			{"[ / ]", "Highlight tag", "t / Space", "Toggle tag"},
			{"c", "Clear filters", "", ""},
		}},
		{"COMMAND MODE (:)", [][4]string{
			{":tag <name>", "Toggle tag filter", ":clear", "View all"},
			{":refresh", "Refetch, skip cache", ":more", "Reveal next page"},
			{":open", "Open in browser", ":yank", "Copy video URL"},
			{":copy [what]", "summary, text, title", ":goto <slug>", "Play by slug"},
			{":theme [name]", "Switch theme", ":quit", "Exit"},
		}},
		{"PLAYER", [][4]string{
			{"j/k", "Scroll text", "h/l", "Previous / next"},
			{"o", "Open in browser", "y", "Copy video URL"},
			{"ESC / q", "Close player", "", ""},
		}},
		{"SYSTEM", [][4]string{
			{"r", "Refresh / retry", "?", "This help"},
			{"q", "Quit", "", ""},
		}},
	}

	for _, section := range sections {
		content.WriteString(m.sectionHeader(section.title, theme))
		content.WriteString("\n")
		for _, row := range section.rows {
			content.WriteString(format2Col(row[0], row[1], row[2], row[3]))
			content.WriteString("\n")
		}
		content.WriteString("\n")
	}

	content.WriteString(center("Press ESC or ? to close", lipgloss.NewStyle().Foreground(theme.Gray).Italic(true)))

	return m.frame(content.String(), theme)
}

// ViewWithOverlay renders the modal over a blanked background
func (m HelpModal) ViewWithOverlay(backgroundView string, width, height int, theme StyleTheme) string {
	if !m.visible {
		return backgroundView
	}
	return overlay(backgroundView, m.View(theme), m.width+4, width, height)
}
