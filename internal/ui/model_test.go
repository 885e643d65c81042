package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nickpending/newsreel/internal/collection"
	"github.com/nickpending/newsreel/internal/commands"
	"github.com/nickpending/newsreel/internal/config"
	"github.com/nickpending/newsreel/internal/window"
)

func TestNewModel(t *testing.T) {
	ctrl := collection.New(&stubProvider{}, nil, collection.Options{}, nil)
	m := NewModel(ctrl, Options{Theme: "monokai_pro"}, nil)
	defer m.Close()

	if m.theme.Name != "monokai_pro" {
		t.Errorf("Expected theme monokai_pro, got %s", m.theme.Name)
	}
	if m.rowHeight != 7 {
		t.Errorf("Expected default row height 7, got %d", m.rowHeight)
	}
	if m.columns != 1 {
		t.Errorf("Expected 1 column before the first resize, got %d", m.columns)
	}
	if !m.observer.Active() {
		t.Error("Expected model to hold an observer subscription")
	}
}

func TestCloseReleasesObserver(t *testing.T) {
	m, _ := loadedModel(t, 5)
	m.Close()
	m.Close()

	if m.observer.Active() {
		t.Error("Expected observer to be released")
	}
	// INVARIANT: A released observer ignores scroll signals
	// BREAKS: Frames keep firing after the program quits
	if cmd := m.scrollBy(7); cmd != nil {
		t.Error("Expected no frame after release")
	}
}

func TestQuitReleasesObserver(t *testing.T) {
	m, _ := loadedModel(t, 5)
	_, cmd := send(m, key("q"))

	if cmd == nil {
		t.Fatal("Expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Expected tea.QuitMsg")
	}
	if m.observer.Active() {
		t.Error("Expected observer released on quit")
	}
}

func TestResizeSetsColumns(t *testing.T) {
	tests := []struct {
		width    int
		expected int
	}{
		{60, 1},
		{100, 2},
		{140, 3},
		{200, window.Columns(200)},
	}

	for _, tt := range tests {
		m, _ := loadedModel(t, 5)
		m, _ = send(m, tea.WindowSizeMsg{Width: tt.width, Height: 40})
		if m.columns != tt.expected {
			t.Errorf("Width %d: expected %d columns, got %d", tt.width, tt.expected, m.columns)
		}
	}
}

func TestInitialLoad(t *testing.T) {
	m, p := loadedModel(t, 45)

	if p.calls != 1 {
		t.Errorf("Expected 1 fetch, got %d", p.calls)
	}
	if m.ctrl.RevealCount() != 20 {
		t.Errorf("Expected 20 revealed, got %d", m.ctrl.RevealCount())
	}
	// 37 grid lines of 7-line rows plus two buffer rows, two columns
	if r := m.observer.Range(); r != (window.Range{Start: 0, End: 16}) {
		t.Errorf("Expected range [0,16), got %+v", r)
	}
	if m.ctrl.LoadingMore() {
		t.Error("Sentinel is off screen, expected no load-more")
	}
}

func TestGridNavigation(t *testing.T) {
	tests := []struct {
		name     string
		start    int
		keys     []string
		expected int
	}{
		{"right moves one card", 0, []string{"l"}, 1},
		{"down moves one row", 0, []string{"j"}, 2},
		{"left stops at first card", 0, []string{"h"}, 0},
		{"up from second row", 3, []string{"k"}, 1},
		{"bottom jumps to last revealed", 0, []string{"G"}, 19},
		{"top jumps back", 11, []string{"g"}, 0},
		{"down stops at last revealed", 19, []string{"j"}, 19},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := loadedModel(t, 45)
			m.cursor = tt.start
			for _, k := range tt.keys {
				m, _ = send(m, key(k))
			}
			if m.cursor != tt.expected {
				t.Errorf("Expected cursor %d, got %d", tt.expected, m.cursor)
			}
		})
	}
}

func TestCursorScrollsIntoView(t *testing.T) {
	m, _ := loadedModel(t, 45)

	// Row 6 starts at line 42, below the 37-line grid
	for i := 0; i < 6; i++ {
		m, _ = send(m, key("j"))
	}
	if m.cursor != 12 {
		t.Fatalf("Expected cursor 12, got %d", m.cursor)
	}
	if m.scrollOffset != 49-37 {
		t.Errorf("Expected scroll offset 12, got %d", m.scrollOffset)
	}
}

func TestMouseWheelScrolls(t *testing.T) {
	m, _ := loadedModel(t, 45)

	m, cmd := send(m, tea.MouseMsg{Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress})
	if m.scrollOffset != 3 {
		t.Errorf("Expected offset 3, got %d", m.scrollOffset)
	}
	if cmd == nil {
		t.Error("Expected a frame to be scheduled")
	}
	// The first row is now partly hidden, so focus moves to the next row
	if m.cursor != 2 {
		t.Errorf("Expected cursor to follow the scroll to 2, got %d", m.cursor)
	}

	m, _ = send(m, tea.MouseMsg{Button: tea.MouseButtonWheelUp, Action: tea.MouseActionPress})
	m, _ = send(m, tea.MouseMsg{Button: tea.MouseButtonWheelUp, Action: tea.MouseActionPress})
	if m.scrollOffset != 0 {
		t.Errorf("Expected offset clamped at 0, got %d", m.scrollOffset)
	}
}

func TestScrollBurstSchedulesOneFrame(t *testing.T) {
	m, _ := loadedModel(t, 45)

	var frames int
	for i := 0; i < 5; i++ {
		var cmd tea.Cmd
		m, cmd = send(m, key("ctrl+d"))
		if cmd != nil {
			frames++
		}
	}
	if frames != 1 {
		t.Errorf("Expected one pending frame for a burst, got %d", frames)
	}
}

// scrollToSentinel jumps to the bottom and flushes the frame, returning the load-more completion
func scrollToSentinel(t *testing.T, m Model) (Model, loadMoreDoneMsg) {
	t.Helper()
	m, cmd := send(m, key("G"))
	if cmd == nil {
		t.Fatal("Expected a frame after scrolling")
	}
	m, cmd = send(m, frameMsg{})
	if !m.ctrl.LoadingMore() {
		t.Fatal("Expected sentinel to start a load-more")
	}
	done, ok := findMsg[loadMoreDoneMsg](drain(cmd))
	if !ok {
		t.Fatal("Expected a load-more completion message")
	}
	return m, done
}

func TestScrollToSentinelRevealsNextPage(t *testing.T) {
	m, _ := loadedModel(t, 45)

	m, done := scrollToSentinel(t, m)
	m, cmd := send(m, done)
	if m.ctrl.RevealCount() != 40 {
		t.Errorf("Expected 40 revealed, got %d", m.ctrl.RevealCount())
	}
	if cmd == nil {
		t.Fatal("Expected the sentinel to be re-observed")
	}

	// The sentinel moved to line 140, out of view
	m, _ = send(m, frameMsg{})
	if m.ctrl.LoadingMore() {
		t.Error("Expected no load-more while the sentinel is off screen")
	}

	m, done = scrollToSentinel(t, m)
	m, _ = send(m, done)
	if m.ctrl.RevealCount() != 45 || m.ctrl.HasMore() {
		t.Errorf("Expected all 45 revealed, got %d (hasMore=%v)", m.ctrl.RevealCount(), m.ctrl.HasMore())
	}
}

func TestFilterChangeDropsLoadMore(t *testing.T) {
	m, _ := loadedModel(t, 45)
	m, done := scrollToSentinel(t, m)

	// Tag bar starts on AI, the first tag
	m, _ = send(m, key("t"))
	if !m.ctrl.IsSelected("AI") {
		t.Fatal("Expected AI to be selected")
	}
	if m.statusMessage != "Filtering by #AI" {
		t.Errorf("Unexpected status %q", m.statusMessage)
	}
	if m.cursor != 0 || m.scrollOffset != 0 {
		t.Errorf("Expected grid reset to top, got cursor %d offset %d", m.cursor, m.scrollOffset)
	}

	// INVARIANT: A load-more started before a filter change never applies after it
	// BREAKS: Reveal count jumps past the new page size
	m, _ = send(m, done)
	if m.ctrl.RevealCount() != 15 {
		t.Errorf("Expected 15 revealed AI stories, got %d", m.ctrl.RevealCount())
	}
}

func TestTagBarKeys(t *testing.T) {
	m, _ := loadedModel(t, 45)

	m, _ = send(m, key("]"))
	m, _ = send(m, key("]"))
	if m.tagCursor != 1 {
		t.Errorf("Expected tag cursor clamped at 1, got %d", m.tagCursor)
	}

	m, _ = send(m, key("space"))
	if !m.ctrl.IsSelected("Politics") {
		t.Error("Expected space to toggle Politics")
	}

	m, _ = send(m, key("c"))
	if len(m.ctrl.SelectedTags()) != 0 {
		t.Error("Expected c to clear the filter")
	}

	m, _ = send(m, key("["))
	if m.tagCursor != 0 {
		t.Errorf("Expected tag cursor 0, got %d", m.tagCursor)
	}
}

func TestManualLoadMore(t *testing.T) {
	m, _ := loadedModel(t, 25)

	m, cmd := send(m, key("m"))
	done, ok := findMsg[loadMoreDoneMsg](drain(cmd))
	if !ok {
		t.Fatal("Expected load-more to start")
	}
	m, _ = send(m, done)
	if m.ctrl.RevealCount() != 25 {
		t.Errorf("Expected 25 revealed, got %d", m.ctrl.RevealCount())
	}

	m, _ = send(m, commands.LoadMoreMsg{})
	if m.statusMessage != "All stories shown" {
		t.Errorf("Expected all-shown status, got %q", m.statusMessage)
	}
}

func TestLoadMoreDuringFirstLoad(t *testing.T) {
	m := newTestModel(t, &stubProvider{collection: makeRecords(45)})
	m.ctrl.Load()

	m, cmd := send(m, key("m"))
	if m.statusMessage != "" {
		t.Errorf("Expected no status while loading, got %q", m.statusMessage)
	}
	if cmd != nil {
		if _, ok := findMsg[loadMoreDoneMsg](drain(cmd)); ok {
			t.Error("Expected no load-more before the collection arrives")
		}
	}
}

func TestRefreshDropsStaleLoad(t *testing.T) {
	m, _ := loadedModel(t, 45)

	stale := fetchCollection(m.ctrl, m.ctrl.Load(), false, false)
	m, refresh := send(m, key("r"))
	if m.statusMessage != "Refreshing..." {
		t.Errorf("Expected refreshing status, got %q", m.statusMessage)
	}

	m, _ = send(m, stale())
	if !m.ctrl.Loading() {
		t.Error("Expected superseded load to be dropped while refresh is in flight")
	}

	loaded, ok := findMsg[collectionLoadedMsg](drain(refresh))
	if !ok {
		t.Fatal("Expected refresh result")
	}
	m, _ = send(m, loaded)
	if m.ctrl.Loading() {
		t.Error("Expected loading to finish")
	}
	if m.statusMessage != "✓ Refreshed (45 stories)" {
		t.Errorf("Unexpected status %q", m.statusMessage)
	}
}

func TestRefreshFailureKeepsGrid(t *testing.T) {
	m, p := loadedModel(t, 45)
	m, _ = send(m, key("]"))
	m, _ = send(m, key("t"))

	p.fail(errors.New("boom"))
	m, cmd := send(m, commands.RefreshMsg{})
	loaded, ok := findMsg[collectionLoadedMsg](drain(cmd))
	if !ok {
		t.Fatal("Expected refresh result")
	}
	m, _ = send(m, loaded)

	if !strings.HasPrefix(m.statusMessage, "✗ Refresh failed") {
		t.Errorf("Expected failure status, got %q", m.statusMessage)
	}
	if len(m.ctrl.Collection()) != 45 || !m.ctrl.IsSelected("Politics") {
		t.Error("Expected failed refresh to keep collection and filter")
	}
	if view := m.View(); !strings.Contains(view, "Story 44") {
		t.Error("Expected grid to stay visible after a failed refresh")
	}
}

func TestAutoRefresh(t *testing.T) {
	m, p := loadedModel(t, 10)
	m.refreshInterval = time.Minute

	m, cmd := send(m, autoRefreshMsg{})
	if !m.ctrl.Loading() {
		t.Fatal("Expected auto-refresh to start a fetch")
	}
	if cmd == nil {
		t.Fatal("Expected fetch and next tick")
	}

	// A tick while loading only reschedules
	m, _ = send(m, autoRefreshMsg{})
	if p.calls != 1 {
		t.Errorf("Expected no fetch to have run yet, got %d", p.calls)
	}

	m.Close()
}

func TestCommandMessages(t *testing.T) {
	m, _ := loadedModel(t, 45)

	m, _ = send(m, commands.TagMsg{Tag: "ai"})
	if !m.ctrl.IsSelected("AI") {
		t.Error("Expected :tag to match case-insensitively")
	}

	m, _ = send(m, commands.ClearTagsMsg{})
	if len(m.ctrl.SelectedTags()) != 0 {
		t.Error("Expected :clear to empty the filter")
	}

	m, _ = send(m, commands.TagMsg{Tag: "Sports"})
	if !m.commandMode.IsActive() || !strings.Contains(m.commandMode.View(m.theme), "unknown tag") {
		t.Error("Expected unknown tag error on the command line")
	}
	m.commandMode.Hide()

	m, _ = send(m, commands.HelpMsg{})
	if !m.helpModal.IsVisible() {
		t.Error("Expected :help to open help")
	}
}

func TestThemeMessages(t *testing.T) {
	m, _ := loadedModel(t, 5)

	m, _ = send(m, commands.ThemeMsg{})
	if m.theme.Name != "monokai_pro" {
		t.Errorf("Expected cycle to monokai_pro, got %s", m.theme.Name)
	}

	m, _ = send(m, commands.ThemeMsg{Name: "light"})
	if m.theme.Name != "light" {
		t.Errorf("Expected light, got %s", m.theme.Name)
	}

	m, _ = send(m, commands.ThemeMsg{Name: "neon"})
	if m.theme.Name != "light" || !m.commandMode.IsActive() {
		t.Error("Expected unknown theme to error and keep the current theme")
	}
}

func TestGoto(t *testing.T) {
	t.Run("revealed story focuses its card", func(t *testing.T) {
		m, _ := loadedModel(t, 45)
		m, _ = send(m, commands.GotoMsg{Slug: "story-30"})

		if !m.playerModal.IsVisible() {
			t.Fatal("Expected player to open")
		}
		if m.cursor != 15 {
			t.Errorf("Expected cursor 15, got %d", m.cursor)
		}
		if r, ok := m.playerModal.Current(); !ok || r.ID != "nocodb-30" {
			t.Errorf("Expected player on nocodb-30, got %q", r.ID)
		}
	})

	t.Run("unrevealed story opens alone", func(t *testing.T) {
		m, _ := loadedModel(t, 45)
		m, _ = send(m, commands.GotoMsg{Slug: "story-10"})

		record, ok := m.playerModal.Current()
		if !ok || record.ID != "nocodb-10" {
			t.Errorf("Expected player on nocodb-10, got %+v", record)
		}
		if len(m.playerModal.records) != 1 {
			t.Errorf("Expected single-record player, got %d", len(m.playerModal.records))
		}
	})

	t.Run("unknown slug", func(t *testing.T) {
		m, _ := loadedModel(t, 45)
		m, _ = send(m, commands.GotoMsg{Slug: "nope"})
		if m.playerModal.IsVisible() || !m.commandMode.IsActive() {
			t.Error("Expected error and no player")
		}
	})
}

func TestPlayerFlow(t *testing.T) {
	m, _ := loadedModel(t, 45)
	_, browser := stubDesktop(t)

	m, _ = send(m, key("enter"))
	if !m.playerModal.IsVisible() {
		t.Fatal("Expected enter to open the player")
	}

	m, cmd := send(m, key("o"))
	if cmd == nil {
		t.Fatal("Expected player to request open")
	}
	m, _ = send(m, cmd())
	if len(browser.got) != 1 || browser.got[0] != "https://www.youtube.com/watch?v=vid45" {
		t.Errorf("Expected watch URL opened, got %v", browser.got)
	}

	// Second story has no video
	m, _ = send(m, key("l"))
	m, _ = send(m, commands.OpenMsg{})
	if m.statusMessage != "No video for this story" {
		t.Errorf("Unexpected status %q", m.statusMessage)
	}

	m, _ = send(m, key("esc"))
	if m.playerModal.IsVisible() {
		t.Error("Expected esc to close the player")
	}
	// Grid keys work again once the player is closed
	m, _ = send(m, key("j"))
	if m.cursor != 2 {
		t.Errorf("Expected grid navigation after close, got cursor %d", m.cursor)
	}
}

func TestClipboardActions(t *testing.T) {
	tests := []struct {
		name       string
		cursor     int
		msg        tea.Msg
		wantCopied string
		wantStatus string
	}{
		{"yank video URL", 0, commands.YankMsg{}, "https://www.youtube.com/watch?v=vid45", "URL copied to clipboard"},
		{"yank without video", 1, commands.YankMsg{}, "", "No video URL to copy"},
		{"copy summary", 0, commands.CopyMsg{Target: "summary"}, "Summary of story 45", "Copied summary to clipboard"},
		{"copy text", 2, commands.CopyMsg{Target: "text"}, "Full text of story 43", "Copied text to clipboard"},
		{"copy title", 0, commands.CopyMsg{Target: "title"}, "Story 45", "Copied title to clipboard"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := loadedModel(t, 45)
			clip, _ := stubDesktop(t)
			m.cursor = tt.cursor

			m, _ = send(m, tt.msg)
			if m.statusMessage != tt.wantStatus {
				t.Errorf("Expected status %q, got %q", tt.wantStatus, m.statusMessage)
			}
			if tt.wantCopied == "" {
				if len(clip.got) != 0 {
					t.Errorf("Expected nothing copied, got %v", clip.got)
				}
				return
			}
			if len(clip.got) != 1 || clip.got[0] != tt.wantCopied {
				t.Errorf("Expected %q copied, got %v", tt.wantCopied, clip.got)
			}
		})
	}
}

func TestClipboardFailure(t *testing.T) {
	m, _ := loadedModel(t, 5)
	clip, _ := stubDesktop(t)
	clip.err = errors.New("no clipboard")

	m, _ = send(m, commands.YankMsg{})
	if m.statusMessage != "Failed to copy to clipboard" {
		t.Errorf("Unexpected status %q", m.statusMessage)
	}
}

func TestCommandModeRoutesToRegistry(t *testing.T) {
	m, _ := loadedModel(t, 45)

	m, _ = send(m, key(":"))
	if !m.commandMode.IsActive() {
		t.Fatal("Expected : to open command mode")
	}

	// Grid keys are swallowed while typing
	m, _ = send(m, key("tag AI"))
	if m.cursor != 0 {
		t.Error("Expected command input to not move the grid")
	}

	m, cmd := send(m, key("enter"))
	if m.commandMode.IsActive() {
		t.Error("Expected command mode to close on enter")
	}
	if cmd == nil {
		t.Fatal("Expected command to run")
	}
	m, _ = send(m, cmd())
	if !m.ctrl.IsSelected("AI") {
		t.Error("Expected :tag AI to select AI")
	}
}

func TestCommandModeCompletesTags(t *testing.T) {
	m, _ := loadedModel(t, 45)
	m, _ = send(m, key(":"))

	got := m.commandMode.Complete("tag po")
	if len(got) != 1 || got[0] != "tag Politics" {
		t.Errorf("Expected tag completion, got %v", got)
	}

	// Revealed stories 45 down to 26
	got = m.commandMode.Complete("goto story-4")
	if len(got) != 6 || got[0] != "goto story-45" {
		t.Errorf("Expected slug completions for revealed stories, got %v", got)
	}
}

func TestHelpModalToggle(t *testing.T) {
	m, _ := loadedModel(t, 5)

	m, _ = send(m, key("?"))
	if !m.helpModal.IsVisible() {
		t.Fatal("Expected ? to open help")
	}
	m, _ = send(m, key("j"))
	if m.cursor != 0 {
		t.Error("Expected help to swallow grid keys")
	}
	m, _ = send(m, key("esc"))
	if m.helpModal.IsVisible() {
		t.Error("Expected esc to close help")
	}
}

func TestAsyncMessagesReachModelUnderOverlay(t *testing.T) {
	m, _ := loadedModel(t, 45)
	m, _ = send(m, key("enter"))

	m, cmd := send(m, commands.RefreshMsg{})
	loaded, ok := findMsg[collectionLoadedMsg](drain(cmd))
	if !ok {
		t.Fatal("Expected refresh result")
	}
	m, _ = send(m, loaded)
	if m.ctrl.Loading() {
		t.Error("Expected refresh to apply while the player is open")
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.TUI.RefreshInterval = 90

	opts := OptionsFromConfig(cfg)
	if opts.RefreshInterval != 90*time.Second {
		t.Errorf("Expected 90s refresh, got %v", opts.RefreshInterval)
	}
	if opts.LoadMoreDelay != 300*time.Millisecond {
		t.Errorf("Expected 300ms delay, got %v", opts.LoadMoreDelay)
	}
	if opts.RowHeight != 7 || opts.Observer.SentinelHeight != 1 || opts.Observer.RootMargin != 4 {
		t.Errorf("Unexpected layout options %+v", opts)
	}
}
