package ui

import (
	"context"
	"fmt"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nickpending/newsreel/internal/collection"
	"github.com/nickpending/newsreel/internal/news"
	"github.com/nickpending/newsreel/internal/scroll"
)

// stubProvider returns a fixed collection or error
type stubProvider struct {
	mu         sync.Mutex
	collection news.Collection
	err        error
	calls      int
}

func (p *stubProvider) FetchNewsCollection(ctx context.Context) (news.Collection, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.collection, nil
}

func (p *stubProvider) fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

// makeRecords builds n records, newest first. Every third is tagged AI,
// the rest Politics, and the second record has no video.
func makeRecords(n int) news.Collection {
	c := make(news.Collection, n)
	for i := range c {
		id := n - i
		tag := "Politics"
		if i%3 == 0 {
			tag = "AI"
		}
		c[i] = news.Record{
			ID:          fmt.Sprintf("nocodb-%d", id),
			Title:       fmt.Sprintf("Story %d", id),
			VideoRef:    fmt.Sprintf("vid%d", id),
			PublishedAt: fmt.Sprintf("2024-03-%02d", id%28+1),
			Summary:     fmt.Sprintf("Summary of story %d", id),
			FullText:    fmt.Sprintf("Full text of story %d", id),
			Tags:        []string{tag},
		}
		if i == 1 {
			c[i].VideoRef = ""
		}
	}
	return c
}

// testOptions lays out 2 columns of 7-line rows at 100x40, with no load-more delay
func testOptions() Options {
	return Options{
		RowHeight: 7,
		Observer: scroll.Options{
			BufferRows:     2,
			RootMargin:     4,
			Threshold:      0.1,
			SentinelHeight: 1,
		},
	}
}

// newTestModel creates a sized model that has not loaded anything yet
func newTestModel(t *testing.T, p *stubProvider) Model {
	t.Helper()
	ctrl := collection.New(p, nil, collection.Options{PageSize: 20, Increment: 20}, nil)
	m := NewModel(ctrl, testOptions(), nil)
	t.Cleanup(m.Close)
	m, _ = send(m, tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

// loadedModel creates a sized model with n records loaded and the first frame flushed
func loadedModel(t *testing.T, n int) (Model, *stubProvider) {
	t.Helper()
	p := &stubProvider{collection: makeRecords(n)}
	m := newTestModel(t, p)
	m, _ = send(m, fetchCollection(m.ctrl, m.ctrl.Load(), false, false)())
	m, _ = send(m, frameMsg{})
	if m.ctrl.Err() != nil {
		t.Fatalf("Unexpected load error: %v", m.ctrl.Err())
	}
	return m, p
}

func send(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// key builds a key press from its bubbletea name
func key(name string) tea.KeyMsg {
	switch name {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+d":
		return tea.KeyMsg{Type: tea.KeyCtrlD}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(name)}
}

// drain runs cmd and everything it batches. Only use it on commands
// without long timers.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, drain(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// findMsg returns the first message of type T
func findMsg[T tea.Msg](msgs []tea.Msg) (T, bool) {
	for _, msg := range msgs {
		if typed, ok := msg.(T); ok {
			return typed, true
		}
	}
	var zero T
	return zero, false
}

// recorder stands in for the clipboard and the browser
type recorder struct {
	got []string
	err error
}

func (r *recorder) record(s string) error {
	r.got = append(r.got, s)
	return r.err
}

func stubDesktop(t *testing.T) (clip, browser *recorder) {
	t.Helper()
	clip, browser = &recorder{}, &recorder{}
	origCopy, origOpen := copyToClipboard, openInBrowser
	copyToClipboard, openInBrowser = clip.record, browser.record
	t.Cleanup(func() {
		copyToClipboard, openInBrowser = origCopy, origOpen
	})
	return clip, browser
}
