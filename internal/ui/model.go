package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/nickpending/newsreel/internal/collection"
	"github.com/nickpending/newsreel/internal/commands"
	"github.com/nickpending/newsreel/internal/config"
	"github.com/nickpending/newsreel/internal/loader"
	"github.com/nickpending/newsreel/internal/logging"
	"github.com/nickpending/newsreel/internal/news"
	"github.com/nickpending/newsreel/internal/scroll"
	"github.com/nickpending/newsreel/internal/window"
)

// fetchTimeout bounds one Load or Refresh, across all sources
const fetchTimeout = 60 * time.Second

// Desktop integrations, replaced in tests
var (
	copyToClipboard = CopyToClipboard
	openInBrowser   = OpenInBrowser
)

// Model represents the application state for the TUI
type Model struct {
	ctrl     *collection.Controller
	observer *scroll.Observer
	sub      *scroll.Subscription
	logger   *log.Logger
	theme    StyleTheme

	width        int // Terminal width
	height       int // Terminal height
	columns      int
	rowHeight    int // Lines per card row
	scrollOffset int // First grid line shown
	cursor       int // Focused card, index into Displayed
	tagCursor    int // Highlighted chip in the tag bar

	spinner       spinner.Model
	statusMessage string // Temporary status message to display

	helpModal   HelpModal
	playerModal PlayerModal
	commandMode CommandMode

	refreshInterval time.Duration // 0 disables auto-refresh
	loadMoreDelay   time.Duration
}

// Options tunes the grid and its timers
type Options struct {
	RefreshInterval time.Duration
	LoadMoreDelay   time.Duration
	RowHeight       int
	Observer        scroll.Options
	Theme           string
}

// OptionsFromConfig maps the [tui] section onto Options. The sentinel is
// one line tall and the root margin is measured in lines.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		RefreshInterval: time.Duration(cfg.GetRefreshInterval()) * time.Second,
		LoadMoreDelay:   cfg.LoadMoreDelay(),
		RowHeight:       cfg.TUI.RowHeight,
		Observer: scroll.Options{
			BufferRows:     cfg.TUI.BufferRows,
			RootMargin:     float64(cfg.TUI.SentinelMargin),
			Threshold:      cfg.TUI.SentinelThreshold,
			SentinelHeight: 1,
		},
		Theme: cfg.TUI.Theme,
	}
}

// collectionLoadedMsg carries a finished Load or Refresh
type collectionLoadedMsg struct {
	result        collection.Result
	manual        bool // Triggered by r or :refresh
	isAutoRefresh bool // Triggered by the auto-refresh timer
}

// frameMsg flushes the scroll observer
type frameMsg struct{}

// loadMoreDoneMsg completes a load-more after the reveal delay
type loadMoreDoneMsg struct {
	ticket loader.Ticket
}

// clearStatusMsg is sent to clear the status message after a delay
type clearStatusMsg struct{}

// autoRefreshMsg is sent by the timer to trigger automatic refresh
type autoRefreshMsg struct{}

// NewModel creates the grid model and subscribes it to scroll signals.
// Close releases the subscription.
func NewModel(ctrl *collection.Controller, opts Options, logger *log.Logger) Model {
	if logger == nil {
		logger = logging.Discard()
	}
	if opts.RowHeight <= 0 {
		opts.RowHeight = 7
	}
	theme, ok := ThemeByName(opts.Theme)
	if !ok && opts.Theme != "" {
		logger.Warn("unknown theme, using default", "theme", opts.Theme)
	}

	observer := scroll.New(opts.Observer)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(theme.Cyan)

	return Model{
		ctrl:            ctrl,
		observer:        observer,
		sub:             observer.Attach(),
		logger:          logger.WithPrefix("ui"),
		theme:           theme,
		columns:         1,
		rowHeight:       opts.RowHeight,
		spinner:         s,
		helpModal:       NewHelpModal(),
		playerModal:     NewPlayerModal(),
		commandMode:     NewCommandMode(),
		refreshInterval: opts.RefreshInterval,
		loadMoreDelay:   opts.LoadMoreDelay,
	}
}

// Close stops listening for scroll signals. Safe to call more than once.
func (m Model) Close() {
	m.sub.Release()
}

// Init starts the initial load and the auto-refresh timer
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.spinner.Tick,
		fetchCollection(m.ctrl, m.ctrl.Load(), false, false),
	}
	if m.refreshInterval > 0 {
		cmds = append(cmds, autoRefreshCmd(m.refreshInterval))
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model state
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m, m.resize(msg.Width, msg.Height)
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	}
	return m.handleMsg(msg)
}

// handleKey routes keys: command mode first, then modals, then the grid
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if m.commandMode.IsActive() {
		m.commandMode, cmd = m.commandMode.Update(msg)
		return m, cmd
	}

	if m.helpModal.IsVisible() {
		m.helpModal, cmd = m.helpModal.Update(msg)
		return m, cmd
	}

	if m.playerModal.IsVisible() {
		if msg.String() == "ctrl+c" {
			return m.quit()
		}
		m.playerModal, cmd = m.playerModal.Update(msg)
		return m, cmd
	}

	displayed := m.ctrl.Displayed()

	switch msg.String() {
	case ":":
		m.prepareCompletions()
		m.commandMode.Show()
		return m, nil

	case "q", "ctrl+c":
		return m.quit()

	case "?":
		m.helpModal.SetSize(m.width, m.height)
		m.helpModal.Show()

	case "enter":
		if m.cursor < len(displayed) {
			m.openPlayer(displayed, m.cursor)
		}

	// Grid navigation
	case "l", "right":
		return m, m.moveCursor(1)
	case "h", "left":
		return m, m.moveCursor(-1)
	case "j", "down":
		return m, m.moveCursor(m.columns)
	case "k", "up":
		return m, m.moveCursor(-m.columns)
	case "g", "home":
		m.cursor = 0
		m.scrollOffset = 0
		return m, m.signal()
	case "G", "end":
		if len(displayed) > 0 {
			m.cursor = len(displayed) - 1
		}
		m.scrollOffset = m.maxScroll()
		return m, m.signal()
	case "ctrl+d", "pgdown":
		return m, m.scrollBy(m.gridHeight() / 2)
	case "ctrl+u", "pgup":
		return m, m.scrollBy(-m.gridHeight() / 2)

	case "m":
		return m, m.loadMore(true)

	// Tag bar
	case "]":
		if m.tagCursor < len(m.ctrl.AllTags())-1 {
			m.tagCursor++
		}
	case "[":
		if m.tagCursor > 0 {
			m.tagCursor--
		}
	case "t", " ":
		if allTags := m.ctrl.AllTags(); m.tagCursor < len(allTags) {
			return m, m.toggleTag(allTags[m.tagCursor])
		}
	case "c":
		if len(m.ctrl.SelectedTags()) > 0 {
			return m, m.clearTags()
		}

	case "r":
		return m, m.refresh(true, false)

	case "o":
		return m.handleMsg(commands.OpenMsg{})
	case "y":
		return m.handleMsg(commands.YankMsg{})
	}

	return m, nil
}

// handleMouse scrolls the grid with the wheel
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.commandMode.IsActive() || m.helpModal.IsVisible() || m.playerModal.IsVisible() {
		return m, nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelDown:
		return m, m.scrollBy(3)
	case tea.MouseButtonWheelUp:
		return m, m.scrollBy(-3)
	}
	return m, nil
}

// handleMsg applies async results and command messages. These arrive
// whether or not an overlay is open.
func (m Model) handleMsg(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case collectionLoadedMsg:
		cmds = append(cmds, m.applyResult(msg))

	case frameMsg:
		frame := m.observer.Frame(m.ctrl)
		m.logger.Debug("frame", "start", frame.Range.Start, "items", frame.Range.Len(), "load_more", frame.LoadMore)
		if frame.LoadMore {
			cmds = append(cmds, m.loadMore(false))
		}

	case loadMoreDoneMsg:
		if m.ctrl.CompleteLoadMore(msg.ticket) {
			m.logger.Debug("revealed more", "reveal", m.ctrl.RevealCount(), "filtered", len(m.ctrl.Filtered()))
			cmds = append(cmds, m.resync())
		}

	case spinner.TickMsg:
		// The spinner stops ticking once nothing is loading
		if m.ctrl.Loading() || m.ctrl.LoadingMore() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case autoRefreshMsg:
		if !m.ctrl.Loading() && !m.playerModal.IsVisible() && !m.commandMode.IsActive() {
			cmds = append(cmds, m.refresh(false, true))
		}
		if m.refreshInterval > 0 {
			cmds = append(cmds, autoRefreshCmd(m.refreshInterval))
		}

	case clearStatusMsg:
		m.statusMessage = ""

	case clearErrorMsg:
		var cmd tea.Cmd
		m.commandMode, cmd = m.commandMode.Update(msg)
		cmds = append(cmds, cmd)

	case commands.RefreshMsg:
		cmds = append(cmds, m.refresh(true, false))

	case commands.ErrorMsg:
		cmds = append(cmds, m.commandMode.SetError(msg.Message))

	case commands.HelpMsg:
		m.helpModal.SetSize(m.width, m.height)
		m.helpModal.Show()

	case commands.TagMsg:
		tag, ok := m.findTag(msg.Tag)
		if !ok {
			cmds = append(cmds, m.commandMode.SetError(fmt.Sprintf("tag: unknown tag '#%s'", msg.Tag)))
			break
		}
		cmds = append(cmds, m.toggleTag(tag))

	case commands.ClearTagsMsg:
		cmds = append(cmds, m.clearTags())

	case commands.LoadMoreMsg:
		cmds = append(cmds, m.loadMore(true))

	case commands.OpenMsg:
		record, ok := m.currentRecord()
		switch {
		case !ok:
			m.statusMessage = "No story selected"
		case !record.HasVideo():
			m.statusMessage = "No video for this story"
		default:
			if err := openInBrowser(news.WatchURL(record.VideoRef)); err != nil {
				m.logger.Warn("open failed", "err", err)
				m.statusMessage = "Failed to open browser"
			} else {
				m.statusMessage = "Opened in browser"
			}
		}
		cmds = append(cmds, clearStatusAfterDelay(2*time.Second))

	case commands.YankMsg:
		record, ok := m.currentRecord()
		switch {
		case !ok:
			m.statusMessage = "No story selected"
		case !record.HasVideo():
			m.statusMessage = "No video URL to copy"
		default:
			m.statusMessage = m.copyWithStatus(news.WatchURL(record.VideoRef), "URL copied to clipboard")
		}
		cmds = append(cmds, clearStatusAfterDelay(2*time.Second))

	case commands.CopyMsg:
		record, ok := m.currentRecord()
		if !ok {
			m.statusMessage = "No story selected"
		} else if text := copyText(record, msg.Target); text == "" {
			m.statusMessage = "No content available"
		} else {
			m.statusMessage = m.copyWithStatus(text, "Copied "+msg.Target+" to clipboard")
		}
		cmds = append(cmds, clearStatusAfterDelay(3*time.Second))

	case commands.GotoMsg:
		record, ok := m.ctrl.FindBySlug(msg.Slug)
		if !ok {
			cmds = append(cmds, m.commandMode.SetError(fmt.Sprintf("goto: no story for '%s'", msg.Slug)))
			break
		}
		m.gotoRecord(record)

	case commands.ThemeMsg:
		next := NextTheme(m.theme)
		if msg.Name != "" {
			theme, ok := ThemeByName(msg.Name)
			if !ok {
				cmds = append(cmds, m.commandMode.SetError(fmt.Sprintf("theme: unknown theme '%s'", msg.Name)))
				break
			}
			next = theme
		}
		m.theme = next
		m.spinner.Style = lipgloss.NewStyle().Foreground(next.Cyan)
		m.statusMessage = "Theme: " + next.Name
		cmds = append(cmds, clearStatusAfterDelay(2*time.Second))

	default:
		// Cursor blink and other input-owned messages
		if m.commandMode.IsActive() {
			var cmd tea.Cmd
			m.commandMode, cmd = m.commandMode.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

// View renders the current model state
func (m Model) View() string {
	baseView := RenderGrid(m)

	if m.helpModal.IsVisible() {
		return m.helpModal.ViewWithOverlay(baseView, m.width, m.height, m.theme)
	}
	if m.playerModal.IsVisible() {
		return m.playerModal.ViewWithOverlay(baseView, m.width, m.height)
	}

	return baseView
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.Close()
	return m, tea.Quit
}

// resize lays the grid out for a new terminal size
func (m *Model) resize(width, height int) tea.Cmd {
	m.width = width
	m.height = height
	m.columns = window.Columns(width)
	m.helpModal.SetSize(width, height)
	m.playerModal.SetSize(width, height)
	m.commandMode.SetWidth(width)
	m.ensureCursorVisible()
	return m.signal()
}

// refresh starts a forced fetch that bypasses the cache
func (m *Model) refresh(manual, auto bool) tea.Cmd {
	m.logger.Debug("refresh", "manual", manual, "auto", auto)
	if manual {
		m.statusMessage = "Refreshing..."
	}
	return tea.Batch(fetchCollection(m.ctrl, m.ctrl.Refresh(), manual, auto), m.spinner.Tick)
}

// applyResult commits a fetch and resets the grid when the collection changed
func (m *Model) applyResult(msg collectionLoadedMsg) tea.Cmd {
	if !m.ctrl.Apply(msg.result) {
		return nil
	}

	if err := m.ctrl.Err(); err != nil {
		if len(m.ctrl.Collection()) == 0 {
			m.statusMessage = ""
			return m.resync()
		}
		m.statusMessage = fmt.Sprintf("✗ Refresh failed: %v", err)
		return tea.Batch(m.resync(), clearStatusAfterDelay(3*time.Second))
	}

	m.cursor = 0
	m.scrollOffset = 0
	m.tagCursor = min(m.tagCursor, max(len(m.ctrl.AllTags())-1, 0))

	count := len(m.ctrl.Collection())
	switch {
	case msg.isAutoRefresh:
		m.statusMessage = fmt.Sprintf("✓ Auto-refreshed (%d stories)", count)
	case msg.manual:
		m.statusMessage = fmt.Sprintf("✓ Refreshed (%d stories)", count)
	default:
		m.statusMessage = ""
		return m.resync()
	}
	return tea.Batch(m.resync(), clearStatusAfterDelay(3*time.Second))
}

// toggleTag flips tag in the filter; the grid starts over at the top
func (m *Model) toggleTag(tag string) tea.Cmd {
	if m.ctrl.SelectTag(tag) {
		m.statusMessage = "Filtering by #" + tag
	} else {
		m.statusMessage = "Removed #" + tag
	}
	m.cursor = 0
	m.scrollOffset = 0
	return tea.Batch(m.resync(), clearStatusAfterDelay(2*time.Second))
}

func (m *Model) clearTags() tea.Cmd {
	m.ctrl.ClearTags()
	m.statusMessage = "Showing all stories"
	m.cursor = 0
	m.scrollOffset = 0
	return tea.Batch(m.resync(), clearStatusAfterDelay(2*time.Second))
}

// loadMore begins revealing the next page after the configured delay
func (m *Model) loadMore(manual bool) tea.Cmd {
	ticket, ok := m.ctrl.LoadMore()
	if !ok {
		// Nothing to report while a load-more or the first fetch is still running
		if manual && !m.ctrl.LoadingMore() && !m.ctrl.Loading() {
			m.statusMessage = "All stories shown"
			return clearStatusAfterDelay(2 * time.Second)
		}
		return nil
	}
	m.logger.Debug("load more", "reveal", m.ctrl.RevealCount(), "manual", manual)
	return tea.Batch(
		tea.Tick(m.loadMoreDelay, func(time.Time) tea.Msg {
			return loadMoreDoneMsg{ticket: ticket}
		}),
		m.spinner.Tick,
	)
}

// moveCursor moves focus by delta cards and scrolls it into view
func (m *Model) moveCursor(delta int) tea.Cmd {
	count := len(m.ctrl.Displayed())
	if count == 0 {
		return nil
	}
	m.cursor = min(max(m.cursor+delta, 0), count-1)
	m.ensureCursorVisible()
	return m.signal()
}

// scrollBy scrolls the grid by delta lines and keeps the cursor on screen
func (m *Model) scrollBy(delta int) tea.Cmd {
	m.scrollOffset = min(max(m.scrollOffset+delta, 0), m.maxScroll())

	count := len(m.ctrl.Displayed())
	if count > 0 {
		firstRow := (m.scrollOffset + m.rowHeight - 1) / m.rowHeight
		lastRow := (m.scrollOffset+m.gridHeight())/m.rowHeight - 1
		row := m.cursor / m.columns
		if row < firstRow {
			m.cursor = min(firstRow*m.columns, count-1)
		} else if lastRow >= firstRow && row > lastRow {
			m.cursor = min(lastRow*m.columns, count-1)
		}
	}
	return m.signal()
}

// ensureCursorVisible adjusts the scroll offset so the focused row is on screen
func (m *Model) ensureCursorVisible() {
	if count := len(m.ctrl.Displayed()); m.cursor >= count {
		m.cursor = max(count-1, 0)
	}
	top := (m.cursor / m.columns) * m.rowHeight
	if top < m.scrollOffset {
		m.scrollOffset = top
	} else if bottom := top + m.rowHeight; bottom > m.scrollOffset+m.gridHeight() {
		m.scrollOffset = bottom - m.gridHeight()
	}
	m.scrollOffset = min(max(m.scrollOffset, 0), m.maxScroll())
}

// maxScroll lets the grid scroll just far enough to show the sentinel line
func (m Model) maxScroll() int {
	content := int(m.ctrl.TotalRowHeight(m.columns, float64(m.rowHeight))) + 1
	return max(content-m.gridHeight(), 0)
}

func (m Model) gridHeight() int {
	return max(m.height-chromeLines, 1)
}

func (m Model) cardWidth() int {
	return max((m.width-(m.columns-1)*cardGap)/m.columns, 8)
}

func (m Model) viewport() scroll.Viewport {
	return scroll.Viewport{
		Offset:    float64(m.scrollOffset),
		Height:    float64(m.gridHeight()),
		Columns:   m.columns,
		RowHeight: float64(m.rowHeight),
	}
}

// signal reports the viewport to the observer, scheduling a frame if none is pending
func (m *Model) signal() tea.Cmd {
	if m.width == 0 || !m.observer.Signal(m.viewport()) {
		return nil
	}
	return frameCmd()
}

// resync re-arms the sentinel after the reveal count or filter changed and
// reports the current viewport
func (m *Model) resync() tea.Cmd {
	m.ensureCursorVisible()
	rearmed := m.observer.Reobserve()
	signalled := m.width > 0 && m.observer.Signal(m.viewport())
	if rearmed || signalled {
		return frameCmd()
	}
	return nil
}

// currentRecord is the record shown in the player, or the focused card
func (m Model) currentRecord() (news.Record, bool) {
	if m.playerModal.IsVisible() {
		return m.playerModal.Current()
	}
	displayed := m.ctrl.Displayed()
	if m.cursor < 0 || m.cursor >= len(displayed) {
		return news.Record{}, false
	}
	return displayed[m.cursor], true
}

func (m *Model) openPlayer(records news.Collection, cursor int) {
	m.playerModal.SetSize(m.width, m.height)
	m.playerModal.Open(records, cursor, m.theme)
}

// gotoRecord opens the player on record, focusing its card when it is revealed
func (m *Model) gotoRecord(record news.Record) {
	displayed := m.ctrl.Displayed()
	for i, r := range displayed {
		if r.ID == record.ID {
			m.cursor = i
			m.ensureCursorVisible()
			m.openPlayer(displayed, i)
			return
		}
	}
	m.openPlayer(news.Collection{record}, 0)
}

// findTag resolves a typed tag name against the collection's tags, ignoring case
func (m Model) findTag(name string) (string, bool) {
	for _, tag := range m.ctrl.AllTags() {
		if strings.EqualFold(tag, name) {
			return tag, true
		}
	}
	return "", false
}

// prepareCompletions feeds current tags, slugs and themes to command mode
func (m *Model) prepareCompletions() {
	m.commandMode.SetArguments("tag", m.ctrl.AllTags())

	var slugs []string
	for _, r := range m.ctrl.Displayed() {
		slugs = append(slugs, news.RecordSlug(r))
	}
	m.commandMode.SetArguments("goto", slugs)

	themes := make([]string, len(AvailableThemes))
	for i, t := range AvailableThemes {
		themes[i] = t.Name
	}
	m.commandMode.SetArguments("theme", themes)
	m.commandMode.SetArguments("copy", []string{"summary", "text", "title"})
}

func (m Model) copyWithStatus(text, success string) string {
	if err := copyToClipboard(text); err != nil {
		m.logger.Warn("clipboard failed", "err", err)
		return "Failed to copy to clipboard"
	}
	return success
}

// copyText picks the record field named by target
func copyText(record news.Record, target string) string {
	switch target {
	case "title":
		return record.DisplayTitle()
	case "text":
		if record.FullText != "" {
			return record.FullText
		}
		return record.Summary
	default:
		if record.Summary != "" {
			return record.Summary
		}
		return record.FullText
	}
}

// fetchCollection runs the I/O half of a Load or Refresh off the UI loop
func fetchCollection(ctrl *collection.Controller, req collection.Request, manual, auto bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		return collectionLoadedMsg{
			result:        ctrl.Fetch(ctx, req),
			manual:        manual,
			isAutoRefresh: auto,
		}
	}
}

func frameCmd() tea.Cmd {
	return tea.Tick(scroll.FrameInterval, func(time.Time) tea.Msg {
		return frameMsg{}
	})
}

// autoRefreshCmd returns a command that triggers auto-refresh after the specified interval
func autoRefreshCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return autoRefreshMsg{}
	})
}

// clearStatusAfterDelay returns a command that clears the status message after a delay
func clearStatusAfterDelay(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}
