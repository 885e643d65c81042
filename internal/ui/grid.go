package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/nickpending/newsreel/internal/news"
)

// Lines taken by chrome around the grid: header, tag bar, status line
const chromeLines = 3

// cardGap is the horizontal space between columns
const cardGap = 1

// buildViewStateString summarizes filter and reveal state for the header
func buildViewStateString(m Model) string {
	var states []string

	if selected := m.ctrl.SelectedTags(); len(selected) > 0 {
		states = append(states, "Tags: "+strings.Join(selected, ", "))
	} else {
		states = append(states, "Tags: ALL")
	}

	states = append(states, fmt.Sprintf("Showing %d of %d", m.ctrl.RevealCount(), len(m.ctrl.Filtered())))

	if m.ctrl.FromCache() {
		states = append(states, "cached")
	}
	if m.ctrl.Loading() && len(m.ctrl.Collection()) > 0 {
		states = append(states, "refreshing")
	}

	return strings.Join(states, " | ")
}

// RenderGrid renders the header, tag bar, card grid and status line
func RenderGrid(m Model) string {
	if m.width == 0 {
		return "Loading..."
	}

	theme := m.theme

	title := " NEWSREEL"
	stateTimeString := fmt.Sprintf("%s  ◆ %s ", buildViewStateString(m), time.Now().Format("15:04"))
	spacing := "  "
	if available := m.width - lipgloss.Width(title) - lipgloss.Width(stateTimeString); available > 0 {
		spacing = strings.Repeat(" ", available)
	}
	header := RenderWithGradientBackground(title+spacing+stateTimeString, m.width, "#00D9FF", "#9F4DFF")

	body := renderBody(m, theme)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		renderTagBar(m, theme),
		body,
		renderStatusLine(m, theme),
	)
}

// renderBody picks the loading, error or empty state, or the grid itself
func renderBody(m Model, theme StyleTheme) string {
	height := m.gridHeight()
	box := lipgloss.NewStyle().Width(m.width).Height(height).MaxHeight(height)

	switch {
	case m.ctrl.Loading() && len(m.ctrl.Collection()) == 0:
		return box.Render(renderLoading(m, theme))
	case m.ctrl.Err() != nil && len(m.ctrl.Collection()) == 0:
		return box.Render(renderError(m.ctrl.Err(), theme))
	case len(m.ctrl.Filtered()) == 0:
		return box.Render(renderEmptyState(m, theme))
	}

	return box.Render(renderCards(m, theme))
}

// renderCards draws the lines of the grid that fall inside the viewport.
// Rows outside the observer's range stay blank; the sentinel line sits
// right after the last revealed row.
func renderCards(m Model, theme StyleTheme) string {
	height := m.gridHeight()
	rowHeight := m.rowHeight
	columns := m.columns
	cardWidth := m.cardWidth()

	// Only the observer's range is materialized; visible[0] is item r.Start
	r := m.observer.Range()
	visible := m.ctrl.Visible(r)
	sentinelLine := int(m.ctrl.TotalRowHeight(columns, float64(rowHeight)))

	rendered := map[int][]string{}
	rowLines := func(row int) []string {
		if lines, ok := rendered[row]; ok {
			return lines
		}
		var cards []string
		for col := 0; col < columns; col++ {
			i := row*columns + col
			if i < r.Start {
				continue
			}
			if !r.Contains(i) || i-r.Start >= len(visible) {
				break
			}
			cards = append(cards, renderCard(visible[i-r.Start], i == m.cursor, cardWidth, rowHeight, theme))
		}
		var lines []string
		if len(cards) > 0 {
			gap := strings.Repeat(" ", cardGap)
			var joined []string
			for i, c := range cards {
				if i > 0 {
					joined = append(joined, gap)
				}
				joined = append(joined, c)
			}
			lines = strings.Split(lipgloss.JoinHorizontal(lipgloss.Top, joined...), "\n")
		}
		rendered[row] = lines
		return lines
	}

	out := make([]string, 0, height)
	for y := m.scrollOffset; y < m.scrollOffset+height; y++ {
		switch {
		case y < sentinelLine:
			lines := rowLines(y / rowHeight)
			if offset := y % rowHeight; offset < len(lines) {
				out = append(out, lines[offset])
			} else {
				out = append(out, "")
			}
		case y == sentinelLine:
			out = append(out, renderSentinel(m, theme))
		default:
			out = append(out, "")
		}
	}

	return strings.Join(out, "\n")
}

// renderCard renders one record as a bordered card exactly rowHeight lines tall
func renderCard(record news.Record, focused bool, width, rowHeight int, theme StyleTheme) string {
	innerWidth := max(width-4, 1)
	innerHeight := max(rowHeight-2, 1)

	titleStyle := theme.TextStyle().Bold(true)
	border := theme.DarkGray
	if focused {
		titleStyle = theme.SelectedStyle()
		border = theme.Cyan
	}

	metaStyle := theme.MutedStyle()
	var meta []string
	if record.HasVideo() {
		meta = append(meta, lipgloss.NewStyle().Foreground(theme.Green).Render("▶"))
	}
	meta = append(meta, metaStyle.Render(formatDate(record.PublishedAt)))

	lines := []string{
		titleStyle.Render(truncate(record.DisplayTitle(), innerWidth)),
		strings.Join(meta, " "),
	}

	// Summary fills whatever is left above the tag line
	summaryLines := innerHeight - len(lines) - 1
	if summaryLines > 0 && record.Summary != "" {
		wrapped := strings.Split(ansi.Wrap(record.Summary, innerWidth, ""), "\n")
		if len(wrapped) > summaryLines {
			wrapped = wrapped[:summaryLines]
			wrapped[summaryLines-1] = truncate(wrapped[summaryLines-1]+"...", innerWidth)
		}
		for _, line := range wrapped {
			lines = append(lines, metaStyle.Render(line))
		}
	}
	for len(lines) < innerHeight-1 {
		lines = append(lines, "")
	}
	lines = append(lines, ansi.Truncate(renderTags(record.Tags, nil, theme), innerWidth, "…"))
	if len(lines) > innerHeight {
		lines = lines[:innerHeight]
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Width(width-2).
		Height(innerHeight).
		MaxHeight(rowHeight).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

// renderSentinel shows the load-more affordance after the last revealed row
func renderSentinel(m Model, theme StyleTheme) string {
	style := lipgloss.NewStyle().Width(m.width).Align(lipgloss.Center)
	switch {
	case m.ctrl.LoadingMore():
		return style.Foreground(theme.Orange).Render(m.spinner.View() + " Loading more...")
	case m.ctrl.HasMore():
		return style.Foreground(theme.Orange).Render(fmt.Sprintf("▼ %d remaining (m to load more)", m.ctrl.Remaining()))
	default:
		return style.Foreground(theme.Gray).Render(fmt.Sprintf("── end of %d stories ──", len(m.ctrl.Filtered())))
	}
}

// renderTagBar lays out every tag as a chip, scrolled so the highlighted one stays visible
func renderTagBar(m Model, theme StyleTheme) string {
	allTags := m.ctrl.AllTags()
	label := lipgloss.NewStyle().Foreground(theme.Gray).Render(" TAGS ")
	if len(allTags) == 0 {
		return label
	}

	chips := make([]string, len(allTags))
	for i, tag := range allTags {
		text := "#" + tag
		if i == m.tagCursor {
			text = "[" + text + "]"
		} else {
			text = " " + text + " "
		}
		style := theme.TagStyle(tag, i, m.ctrl.IsSelected(tag))
		if i == m.tagCursor {
			style = style.Underline(true)
		}
		chips[i] = style.Render(text)
	}

	available := max(m.width-lipgloss.Width(label)-4, 1)

	// Move the window start forward until the cursor chip fits
	start := 0
	for start < m.tagCursor {
		width := 0
		for i := start; i <= m.tagCursor && i < len(chips); i++ {
			width += lipgloss.Width(chips[i])
		}
		if width <= available {
			break
		}
		start++
	}

	var b strings.Builder
	used := 0
	end := start
	for end < len(chips) && used+lipgloss.Width(chips[end]) <= available {
		b.WriteString(chips[end])
		used += lipgloss.Width(chips[end])
		end++
	}

	more := lipgloss.NewStyle().Foreground(theme.Gray)
	left, right := "  ", ""
	if start > 0 {
		left = more.Render("‹ ")
	}
	if end < len(chips) {
		right = more.Render(" ›")
	}
	return label + left + b.String() + right
}

// renderStatusLine shows the command line, a status message, or key hints
func renderStatusLine(m Model, theme StyleTheme) string {
	if m.commandMode.IsActive() {
		return m.commandMode.View(theme)
	}

	statusStyle := lipgloss.NewStyle().
		Background(theme.DarkGray).
		Foreground(theme.Gray).
		Width(m.width).
		MaxHeight(1).
		Padding(0, 1)

	var statusText string
	if m.statusMessage != "" {
		statusText = statusMessageStyle(m.statusMessage, theme).Render(m.statusMessage)
	} else {
		statusText = "h/j/k/l:move  enter:play  [/]:tag  t:toggle  c:clear  m:more  r:refresh  ::command  ?:help  q:quit"
	}
	return statusStyle.Render(statusText)
}

// statusMessageStyle colors outcomes: green for ✓, error color for ✗
func statusMessageStyle(msg string, theme StyleTheme) lipgloss.Style {
	switch {
	case strings.HasPrefix(msg, "✓"):
		return theme.SuccessStyle().Bold(true)
	case strings.HasPrefix(msg, "✗"):
		return theme.ErrorStyle()
	default:
		return theme.SelectedStyle()
	}
}

func renderLoading(m Model, theme StyleTheme) string {
	return lipgloss.NewStyle().
		Foreground(theme.Cyan).
		Bold(true).
		Padding(1, 2).
		Render(m.spinner.View() + " Loading news...")
}

func renderError(err error, theme StyleTheme) string {
	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(lipgloss.JoinVertical(lipgloss.Left,
			theme.ErrorStyle().Render(fmt.Sprintf("Error: %v", err)),
			"",
			theme.MutedStyle().Render("Press r to retry."),
		))
}

func renderEmptyState(m Model, theme StyleTheme) string {
	message := "No stories yet. Press r to refresh."
	if len(m.ctrl.SelectedTags()) > 0 {
		message = "No stories match the selected tags. Press c to clear filters and view all."
	}
	return lipgloss.NewStyle().
		Foreground(theme.Gray).
		Italic(true).
		Padding(1, 2).
		Render(message)
}

// renderTags renders tag chips; selected may be nil
func renderTags(tags []string, selected func(string) bool, theme StyleTheme) string {
	chips := make([]string, 0, len(tags))
	for i, tag := range tags {
		isSelected := selected != nil && selected(tag)
		chips = append(chips, theme.TagStyle(tag, i, isSelected).Render("#"+tag))
	}
	return strings.Join(chips, " ")
}

// truncate shortens s to max terminal cells, counting wide runes correctly
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if ansi.StringWidth(s) <= max {
		return s
	}
	if max <= 3 {
		return ansi.Truncate(s, max, "")
	}
	return ansi.Truncate(s, max, "...")
}

// formatDate renders YYYY-MM-DD as "Jan 2, 2006"; anything else passes through
func formatDate(published string) string {
	if published == "" {
		return "undated"
	}
	t, err := time.Parse("2006-01-02", published)
	if err != nil {
		return published
	}
	return t.Format("Jan 2, 2006")
}
