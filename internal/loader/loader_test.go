package loader

import "testing"

func TestNewDefaults(t *testing.T) {
	l := New(0, -1)
	if l.RevealCount() != 0 || l.HasMore() || l.LoadingMore() {
		t.Error("Expected empty loader before first reset")
	}
	l.Reset(100)
	if l.RevealCount() != DefaultPageSize {
		t.Errorf("Expected default page size %d, got %d", DefaultPageSize, l.RevealCount())
	}
}

func TestResetClampsToFilteredSize(t *testing.T) {
	tests := []struct {
		size     int
		expected int
	}{
		{5, 5},
		{20, 20},
		{45, 20},
		{0, 0},
		{-3, 0},
	}

	for _, tt := range tests {
		l := New(20, 20)
		l.Reset(tt.size)
		if l.RevealCount() != tt.expected {
			t.Errorf("Reset(%d): expected reveal count %d, got %d", tt.size, tt.expected, l.RevealCount())
		}
	}
}

// INVARIANT: 45 items reveal as 20 -> 40 -> 45 and a further load-more is a no-op
// BREAKS: Infinite scroll over- or under-reveals
func TestLoadMoreSequence(t *testing.T) {
	l := New(20, 20)
	l.Reset(45)

	if !l.HasMore() {
		t.Fatal("Expected hasMore with 45 items and 20 revealed")
	}

	for _, expected := range []int{40, 45} {
		ticket, ok := l.Begin()
		if !ok {
			t.Fatalf("Expected load-more to start at reveal count %d", l.RevealCount())
		}
		if !l.LoadingMore() {
			t.Error("Expected loadingMore while in flight")
		}
		if !l.Complete(ticket) {
			t.Fatal("Expected current ticket to complete")
		}
		if l.RevealCount() != expected {
			t.Errorf("Expected reveal count %d, got %d", expected, l.RevealCount())
		}
	}

	if l.HasMore() {
		t.Error("Expected hasMore=false after revealing everything")
	}
	if _, ok := l.Begin(); ok {
		t.Error("Expected load-more to be a no-op when everything is revealed")
	}
	if l.RevealCount() != 45 {
		t.Errorf("Expected reveal count to stay 45, got %d", l.RevealCount())
	}
}

func TestBeginWhileLoadingIsNoop(t *testing.T) {
	l := New(20, 20)
	l.Reset(100)

	first, ok := l.Begin()
	if !ok {
		t.Fatal("Expected first load-more to start")
	}
	if _, ok := l.Begin(); ok {
		t.Error("Expected second load-more to be rejected while one is in flight")
	}
	if l.RevealCount() != 20 {
		t.Errorf("Expected reveal count unchanged at 20, got %d", l.RevealCount())
	}

	l.Complete(first)
	if l.RevealCount() != 40 {
		t.Errorf("Expected 40 after completion, got %d", l.RevealCount())
	}
	if l.Complete(first) {
		t.Error("Expected a completed ticket not to apply twice")
	}
}

// INVARIANT: A load-more started before a reset never applies after it
// BREAKS: Late completions resurrect stale reveal counts after a refresh
func TestStaleTicketIgnored(t *testing.T) {
	l := New(20, 20)
	l.Reset(100)

	ticket, _ := l.Begin()
	l.Reset(30)

	if l.Complete(ticket) {
		t.Error("Expected stale ticket to be rejected")
	}
	if l.RevealCount() != 20 {
		t.Errorf("Expected reveal count 20 after reset, got %d", l.RevealCount())
	}
	if l.LoadingMore() {
		t.Error("Expected loadingMore cleared by reset")
	}
}

func TestCancel(t *testing.T) {
	l := New(10, 10)
	l.Reset(50)

	ticket, _ := l.Begin()
	l.Cancel()

	if l.LoadingMore() {
		t.Error("Expected loadingMore cleared by cancel")
	}
	if l.Complete(ticket) {
		t.Error("Expected cancelled ticket to be rejected")
	}
	if l.RevealCount() != 10 {
		t.Errorf("Expected reveal count untouched at 10, got %d", l.RevealCount())
	}

	if _, ok := l.Begin(); !ok {
		t.Error("Expected a new load-more to start after cancel")
	}
}
