package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/nickpending/newsreel/internal/commands"
	"github.com/nickpending/newsreel/internal/news"
)

// PlayerModal shows one record with its video links and full text
type PlayerModal struct {
	Modal
	records  news.Collection
	cursor   int
	viewport viewport.Model
	theme    StyleTheme
}

// NewPlayerModal creates a hidden player
func NewPlayerModal() PlayerModal {
	return PlayerModal{
		Modal:    Modal{width: 90, height: 30},
		viewport: viewport.New(0, 0),
		theme:    CleanCyberTheme,
	}
}

// Open shows records[cursor]
func (m *PlayerModal) Open(records news.Collection, cursor int, theme StyleTheme) {
	m.records = records
	m.cursor = min(max(cursor, 0), max(len(records)-1, 0))
	m.theme = theme
	m.Show()
	m.updateContent()
}

// SetSize updates the modal size based on terminal dimensions
func (m *PlayerModal) SetSize(width, height int) {
	m.resize(width, height, 0.85, 60, 15)
	// Header, link block and status bar take ten lines
	m.viewport.Width = m.width - 4
	m.viewport.Height = max(m.height-10, 3)
	if m.visible {
		m.updateContent()
	}
}

// Current returns the shown record
func (m PlayerModal) Current() (news.Record, bool) {
	if m.cursor < 0 || m.cursor >= len(m.records) {
		return news.Record{}, false
	}
	return m.records[m.cursor], true
}

// Update handles input for the player
func (m PlayerModal) Update(msg tea.Msg) (PlayerModal, tea.Cmd) {
	if !m.visible {
		return m, nil
	}

	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q":
			m.Hide()
		case "l", "right":
			if m.cursor < len(m.records)-1 {
				m.cursor++
				m.updateContent()
			}
		case "h", "left":
			if m.cursor > 0 {
				m.cursor--
				m.updateContent()
			}
		case "j", "down":
			m.viewport.LineDown(1)
		case "k", "up":
			m.viewport.LineUp(1)
		case "o":
			return m, func() tea.Msg { return commands.OpenMsg{} }
		case "y":
			return m, func() tea.Msg { return commands.YankMsg{} }
		case "c":
			return m, func() tea.Msg { return commands.CopyMsg{Target: "summary"} }
		default:
			m.viewport, cmd = m.viewport.Update(msg)
		}

	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
	}

	return m, cmd
}

// updateContent renders the current record's text into the viewport
func (m *PlayerModal) updateContent() {
	record, ok := m.Current()
	if !ok {
		m.viewport.SetContent("Nothing selected")
		return
	}

	text := record.FullText
	if text == "" {
		text = record.Summary
	}
	if text == "" {
		text = "No description available."
	}

	m.viewport.SetContent(renderMarkdown(text, m.viewport.Width, m.theme))
	m.viewport.GotoTop()
}

// renderMarkdown renders text with glamour, falling back to plain wrapping
func renderMarkdown(text string, width int, theme StyleTheme) string {
	if width <= 0 {
		return text
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStyles(theme.ToGlamourStyle()),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return lipgloss.NewStyle().Width(width).Render(text)
	}
	out, err := renderer.Render(text)
	if err != nil {
		return lipgloss.NewStyle().Width(width).Render(text)
	}
	return strings.Trim(out, "\n")
}

// View renders the player
func (m PlayerModal) View() string {
	if !m.visible {
		return ""
	}

	theme := m.theme
	record, ok := m.Current()
	if !ok {
		return m.frame("Nothing selected", theme)
	}

	var content strings.Builder

	// Title on the left, position on the right
	title := lipgloss.NewStyle().Foreground(theme.White).Bold(true).
		Render(truncate(record.DisplayTitle(), max(10, m.width-24)))
	position := lipgloss.NewStyle().Foreground(theme.Cyan).Bold(true).
		Render(fmt.Sprintf("%d of %d", m.cursor+1, len(m.records)))
	spacing := max(1, m.width-4-lipgloss.Width(title)-lipgloss.Width(position))
	content.WriteString(title + strings.Repeat(" ", spacing) + position)
	content.WriteString("\n")

	metaStyle := lipgloss.NewStyle().Foreground(theme.Gray)
	meta := []string{metaStyle.Render(formatDate(record.PublishedAt))}
	if record.AlternateTitle != "" && record.AlternateTitle != record.DisplayTitle() {
		meta = append(meta, metaStyle.Render(truncate(record.AlternateTitle, 60)))
	}
	if chips := renderTags(record.Tags, nil, theme); chips != "" {
		meta = append(meta, chips)
	}
	content.WriteString(strings.Join(meta, " | "))
	content.WriteString("\n\n")

	content.WriteString(m.sectionHeader("VIDEO", theme))
	content.WriteString("\n")
	if record.HasVideo() {
		linkStyle := lipgloss.NewStyle().Foreground(theme.Purple)
		content.WriteString("  ▶ " + linkStyle.Render(news.WatchURL(record.VideoRef)))
		content.WriteString("\n")
		content.WriteString("  ⧉ " + metaStyle.Render(news.EmbedURL(record.VideoRef)))
	} else {
		content.WriteString(metaStyle.Render("  No video for this story"))
		content.WriteString("\n")
	}
	content.WriteString("\n\n")

	content.WriteString(m.viewport.View())

	status := lipgloss.NewStyle().
		Background(theme.DarkGray).
		Foreground(theme.Gray).
		Width(m.width-4).
		Padding(0, 1).
		Render("[←→/h/l] prev/next  [↑↓/j/k] scroll  [o]pen  [y]ank URL  [c]opy  [ESC] close")

	return m.frame(lipgloss.JoinVertical(lipgloss.Left, content.String(), "", status), theme)
}

// ViewWithOverlay renders the player over a blanked background
func (m PlayerModal) ViewWithOverlay(backgroundView string, width, height int) string {
	if !m.visible {
		return backgroundView
	}
	return overlay(backgroundView, m.View(), m.width+4, width, height)
}
