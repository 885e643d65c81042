// Package scroll turns viewport signals into visible-range updates and
// load-more triggers for the news grid.
package scroll

import (
	"time"

	"github.com/nickpending/newsreel/internal/window"
)

// FrameInterval is how often coalesced scroll signals are flushed
const FrameInterval = time.Second / 60

// Default sentinel settings, in the same units as the viewport
const (
	DefaultRootMargin     = 100
	DefaultThreshold      = 0.1
	DefaultSentinelHeight = 80
)

// Viewport is one scroll/resize measurement
type Viewport struct {
	Offset    float64 // Scroll position of the top edge
	Height    float64
	Columns   int
	RowHeight float64
}

// Options configures an Observer. Zero values select the defaults,
// except BufferRows which is taken as given when non-negative.
type Options struct {
	BufferRows     int
	RootMargin     float64 // Lookahead added around the viewport when testing the sentinel
	Threshold      float64 // Minimum visible fraction of the sentinel
	SentinelHeight float64
}

// DefaultOptions returns the stock observer settings
func DefaultOptions() Options {
	return Options{
		BufferRows:     window.DefaultBufferRows,
		RootMargin:     DefaultRootMargin,
		Threshold:      DefaultThreshold,
		SentinelHeight: DefaultSentinelHeight,
	}
}

// Target is the reveal state the observer reads and drives
type Target interface {
	RevealCount() int
	HasMore() bool
	LoadingMore() bool
}

// Frame is the outcome of flushing the pending signal
type Frame struct {
	Viewport Viewport
	Range    window.Range
	LoadMore bool // Sentinel just entered the viewport and more items can be revealed
}

// Observer coalesces viewport signals into at most one recomputation per
// frame and watches the sentinel that follows the last revealed row.
// It is owned by the UI loop and is not safe for concurrent use.
type Observer struct {
	opts            Options
	subscribers     int
	latest          Viewport
	hasViewport     bool
	pending         bool
	sentinelVisible bool
	current         window.Range
}

// New creates an Observer
func New(opts Options) *Observer {
	if opts.BufferRows < 0 {
		opts.BufferRows = window.DefaultBufferRows
	}
	if opts.RootMargin < 0 {
		opts.RootMargin = 0
	}
	if opts.Threshold <= 0 || opts.Threshold > 1 {
		opts.Threshold = DefaultThreshold
	}
	if opts.SentinelHeight <= 0 {
		opts.SentinelHeight = DefaultSentinelHeight
	}
	return &Observer{opts: opts}
}

// Subscription keeps an Observer listening until released
type Subscription struct {
	o        *Observer
	released bool
}

// Attach starts delivering signals. Every Attach must be paired with Release.
func (o *Observer) Attach() *Subscription {
	o.subscribers++
	return &Subscription{o: o}
}

// Release stops delivering signals for this subscription. Safe to call more than once.
func (s *Subscription) Release() {
	if s == nil || s.released {
		return
	}
	s.released = true
	s.o.subscribers--
	if s.o.subscribers == 0 {
		s.o.pending = false
		s.o.sentinelVisible = false
	}
}

// Active reports whether anyone is subscribed
func (o *Observer) Active() bool {
	return o.subscribers > 0
}

// Signal records a scroll or resize measurement. It returns true when the
// caller should schedule a frame; bursts collapse into the frame already
// pending and the frame always sees the latest measurement.
func (o *Observer) Signal(v Viewport) bool {
	if !o.Active() {
		return false
	}
	o.latest = v
	o.hasViewport = true
	if o.pending {
		return false
	}
	o.pending = true
	return true
}

// Reobserve marks the sentinel as moved, so a sentinel that is still in
// view may trigger again. Returns true when a frame should be scheduled.
func (o *Observer) Reobserve() bool {
	o.sentinelVisible = false
	if !o.Active() || !o.hasViewport || o.pending {
		return false
	}
	o.pending = true
	return true
}

// Frame flushes the pending signal against the target's reveal state
func (o *Observer) Frame(t Target) Frame {
	o.pending = false
	if !o.Active() || !o.hasViewport {
		return Frame{Range: o.current}
	}

	v := o.latest
	reveal := t.RevealCount()
	o.current = window.ComputeVisibleRange(v.Offset, v.Height, reveal, v.Columns, v.RowHeight, o.opts.BufferRows)

	visible := o.sentinelInView(v, reveal)
	entered := visible && !o.sentinelVisible
	o.sentinelVisible = visible

	return Frame{
		Viewport: v,
		Range:    o.current,
		LoadMore: entered && t.HasMore() && !t.LoadingMore(),
	}
}

// Range returns the most recently computed visible range
func (o *Observer) Range() window.Range {
	return o.current
}

// sentinelInView tests the sentinel placed right after the last revealed row
// against the viewport grown by the root margin.
func (o *Observer) sentinelInView(v Viewport, reveal int) bool {
	top := window.TotalHeight(reveal, v.Columns, v.RowHeight)
	bottom := top + o.opts.SentinelHeight

	offset := v.Offset
	if offset < 0 {
		offset = 0
	}
	height := v.Height
	if height < 0 {
		height = 0
	}
	rootTop := offset - o.opts.RootMargin
	rootBottom := offset + height + o.opts.RootMargin

	overlap := min(bottom, rootBottom) - max(top, rootTop)
	if overlap <= 0 {
		return false
	}
	return overlap/o.opts.SentinelHeight >= o.opts.Threshold
}
