// Package collection owns the fetched news collection together with the
// tag filter and reveal state derived from it.
package collection

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/nickpending/newsreel/internal/cache"
	"github.com/nickpending/newsreel/internal/loader"
	"github.com/nickpending/newsreel/internal/logging"
	"github.com/nickpending/newsreel/internal/news"
	"github.com/nickpending/newsreel/internal/tags"
	"github.com/nickpending/newsreel/internal/window"
)

// Provider fetches the most recent collection
type Provider interface {
	FetchNewsCollection(ctx context.Context) (news.Collection, error)
}

// Options sets the reveal paging
type Options struct {
	PageSize  int
	Increment int
}

// Request describes a fetch started by Load or Refresh
type Request struct {
	generation uint64
	Force      bool // Skip and invalidate the cache
}

// Result is the outcome of Fetch, applied back with Apply
type Result struct {
	generation uint64
	Collection news.Collection
	FromCache  bool
	Err        error
}

// Controller is owned by the UI loop. Only Fetch may run on another goroutine.
type Controller struct {
	provider Provider
	cache    *cache.Cache
	logger   *log.Logger

	collection news.Collection
	allTags    []string
	selection  tags.Selection
	filtered   news.Collection
	loader     *loader.Loader

	generation uint64
	loading    bool
	fromCache  bool
	err        error
}

// New creates a controller. c may be nil to disable caching.
func New(p Provider, c *cache.Cache, opts Options, logger *log.Logger) *Controller {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Controller{
		provider: p,
		cache:    c,
		logger:   logger.WithPrefix("collection"),
		loader:   loader.New(opts.PageSize, opts.Increment),
	}
}

// Load starts the initial fetch; a fresh cached collection may satisfy it
func (c *Controller) Load() Request {
	return c.begin(false)
}

// Refresh starts a fetch that bypasses and replaces the cache
func (c *Controller) Refresh() Request {
	return c.begin(true)
}

func (c *Controller) begin(force bool) Request {
	c.generation++
	c.loading = true
	c.loader.Cancel()
	return Request{generation: c.generation, Force: force}
}

// Fetch performs the I/O for req. It does not touch controller state.
func (c *Controller) Fetch(ctx context.Context, req Request) Result {
	result := Result{generation: req.generation}

	if c.cache != nil {
		if req.Force {
			if err := c.cache.Invalidate(ctx); err != nil {
				c.logger.Warn("cache invalidate failed", "err", err)
			}
		} else {
			collection, ok, err := c.cache.Get(ctx)
			if err != nil {
				c.logger.Warn("cache read failed", "err", err)
			}
			if ok {
				c.logger.Debug("serving cached collection", "records", len(collection))
				result.Collection = collection
				result.FromCache = true
				return result
			}
		}
	}

	collection, err := c.provider.FetchNewsCollection(ctx)
	if err != nil {
		result.Err = fmt.Errorf("failed to fetch news: %w", err)
		return result
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, collection); err != nil {
			c.logger.Warn("cache write failed", "err", err)
		}
	}

	result.Collection = collection
	return result
}

// Apply commits a fetch result. Results from superseded requests are
// dropped and Apply returns false. A failed fetch keeps the previous collection.
func (c *Controller) Apply(r Result) bool {
	if r.generation != c.generation {
		c.logger.Debug("dropping stale fetch result", "generation", r.generation, "current", c.generation)
		return false
	}
	c.loading = false

	if r.Err != nil {
		c.err = r.Err
		c.logger.Error("fetch failed", "err", r.Err)
		return true
	}

	added := countNew(c.collection, r.Collection)
	c.err = nil
	c.fromCache = r.FromCache
	c.collection = r.Collection
	c.allTags = tags.AllTags(r.Collection)
	c.selection.Clear()
	c.refilter()

	c.logger.Info("collection loaded", "records", len(r.Collection), "new", added, "tags", len(c.allTags), "cached", r.FromCache)
	return true
}

// countNew counts records of next whose id is not in prev
func countNew(prev, next news.Collection) int {
	seen := make(map[string]struct{}, len(prev))
	for _, id := range prev.IDs() {
		seen[id] = struct{}{}
	}
	n := 0
	for _, id := range next.IDs() {
		if _, ok := seen[id]; !ok {
			n++
		}
	}
	return n
}

// SelectTag toggles tag in the filter and reports whether it is now selected
func (c *Controller) SelectTag(tag string) bool {
	selected := c.selection.Toggle(tag)
	c.refilter()
	return selected
}

// ClearTags empties the filter
func (c *Controller) ClearTags() {
	c.selection.Clear()
	c.refilter()
}

func (c *Controller) refilter() {
	c.filtered = tags.Filter(c.collection, c.selection.Tags())
	c.loader.Reset(len(c.filtered))
}

// LoadMore starts revealing the next page. The returned ticket must be
// passed to CompleteLoadMore; ok is false when nothing was started.
func (c *Controller) LoadMore() (loader.Ticket, bool) {
	return c.loader.Begin()
}

// CompleteLoadMore finishes a load-more unless a filter change or refresh made it stale
func (c *Controller) CompleteLoadMore(t loader.Ticket) bool {
	return c.loader.Complete(t)
}

// Collection is the full fetched collection
func (c *Controller) Collection() news.Collection {
	return c.collection
}

// AllTags lists the distinct tags of the collection in ascending order
func (c *Controller) AllTags() []string {
	return c.allTags
}

// SelectedTags lists selected tags in selection order
func (c *Controller) SelectedTags() []string {
	return c.selection.Tags()
}

// IsSelected reports whether tag is part of the filter
func (c *Controller) IsSelected(tag string) bool {
	return c.selection.Contains(tag)
}

// Filtered is the collection narrowed by the tag filter
func (c *Controller) Filtered() news.Collection {
	return c.filtered
}

// Displayed is the revealed prefix of Filtered
func (c *Controller) Displayed() news.Collection {
	return c.filtered[:c.loader.RevealCount()]
}

// Visible slices Displayed to r, clamped to the revealed items
func (c *Controller) Visible(r window.Range) news.Collection {
	displayed := c.Displayed()
	start := min(max(r.Start, 0), len(displayed))
	end := min(max(r.End, start), len(displayed))
	return displayed[start:end]
}

// TotalRowHeight is the scrollable height of the revealed items
func (c *Controller) TotalRowHeight(columns int, rowHeight float64) float64 {
	return window.TotalHeight(c.loader.RevealCount(), columns, rowHeight)
}

// RevealCount is the number of filtered items eligible for rendering
func (c *Controller) RevealCount() int {
	return c.loader.RevealCount()
}

// Remaining is how many filtered items are still unrevealed
func (c *Controller) Remaining() int {
	return c.loader.Size() - c.loader.RevealCount()
}

// HasMore reports whether filtered items remain unrevealed
func (c *Controller) HasMore() bool {
	return c.loader.HasMore()
}

// LoadingMore reports whether a load-more is in flight
func (c *Controller) LoadingMore() bool {
	return c.loader.LoadingMore()
}

// Loading reports whether a Load or Refresh is in flight
func (c *Controller) Loading() bool {
	return c.loading
}

// FromCache reports whether the current collection came from the cache
func (c *Controller) FromCache() bool {
	return c.fromCache
}

// Err is the last fetch error, cleared by the next successful fetch
func (c *Controller) Err() error {
	return c.err
}

// FindBySlug looks a record up by its title slug across the whole collection
func (c *Controller) FindBySlug(slug string) (news.Record, bool) {
	return news.FindBySlug(c.collection, slug)
}
