package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Modal holds the visibility and size shared by every overlay
type Modal struct {
	width   int
	height  int
	visible bool
}

// Show makes the modal visible
func (m *Modal) Show() {
	m.visible = true
}

// Hide makes the modal invisible
func (m *Modal) Hide() {
	m.visible = false
}

// IsVisible returns whether the modal is currently visible
func (m Modal) IsVisible() bool {
	return m.visible
}

// resize fits the modal to a fraction of the terminal, within minimums
func (m *Modal) resize(termWidth, termHeight int, widthRatio float64, minWidth, minHeight int) {
	width := max(int(float64(termWidth)*widthRatio), minWidth)
	if width > termWidth-4 {
		width = termWidth - 4
	}
	m.width = width
	m.height = max(termHeight-8, minHeight)
}

// frame wraps content in the rounded modal border
func (m Modal) frame(content string, theme StyleTheme) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Cyan).
		Width(m.width).
		Height(m.height).
		Padding(1, 2).
		Align(lipgloss.Left).
		Render(content)
}

// sectionHeader renders "── TITLE ─────" across the modal width
func (m Modal) sectionHeader(title string, theme StyleTheme) string {
	text := "── " + title + " "
	rest := max(0, m.width-8-lipgloss.Width(text))
	return lipgloss.NewStyle().
		Foreground(theme.Cyan).
		Bold(true).
		Render(text + strings.Repeat("─", rest))
}

// overlay centers modalView over the background, keeping only the
// background's header line and blanking the rest
func overlay(backgroundView, modalView string, modalWidth, termWidth, termHeight int) string {
	bgLines := strings.Split(backgroundView, "\n")
	for i := 1; i < len(bgLines); i++ {
		bgLines[i] = strings.Repeat(" ", termWidth)
	}

	modalLines := strings.Split(modalView, "\n")
	startY := max(0, (termHeight-len(modalLines))/2)
	startX := max(0, (termWidth-modalWidth)/2)

	result := make([]string, max(len(bgLines), startY+len(modalLines)))
	copy(result, bgLines)

	padding := strings.Repeat(" ", startX)
	for i, line := range modalLines {
		result[startY+i] = padding + line
	}

	return strings.Join(result, "\n")
}
