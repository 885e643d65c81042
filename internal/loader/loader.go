// Package loader tracks how many filtered items are revealed to the grid.
package loader

const (
	// DefaultPageSize is the initial reveal count after a filter or collection change
	DefaultPageSize = 20
	// DefaultIncrement is how many more items one load-more reveals
	DefaultIncrement = 20
)

// Ticket identifies an in-flight load-more. A ticket from an older
// generation is ignored on completion.
type Ticket struct {
	generation uint64
}

// Loader is the reveal state machine for the filtered collection.
// It is not safe for concurrent use; the UI loop owns it.
type Loader struct {
	pageSize    int
	increment   int
	size        int // size of the currently filtered collection
	revealCount int
	loadingMore bool
	generation  uint64
}

// New creates a Loader; non-positive sizes fall back to the defaults
func New(pageSize, increment int) *Loader {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if increment <= 0 {
		increment = DefaultIncrement
	}
	return &Loader{
		pageSize:  pageSize,
		increment: increment,
	}
}

// Reset starts over for a new filtered collection of the given size.
// Any in-flight load-more becomes stale.
func (l *Loader) Reset(filteredSize int) {
	if filteredSize < 0 {
		filteredSize = 0
	}
	l.size = filteredSize
	l.revealCount = min(l.pageSize, filteredSize)
	l.loadingMore = false
	l.generation++
}

// Begin starts a load-more. It returns false without changing anything
// when a load-more is already running or everything is revealed.
func (l *Loader) Begin() (Ticket, bool) {
	if l.loadingMore || !l.HasMore() {
		return Ticket{}, false
	}
	l.loadingMore = true
	return Ticket{generation: l.generation}, true
}

// Complete finishes the load-more identified by t.
// Returns false when t is stale or no load-more is running.
func (l *Loader) Complete(t Ticket) bool {
	if t.generation != l.generation || !l.loadingMore {
		return false
	}
	l.revealCount = min(l.revealCount+l.increment, l.size)
	l.loadingMore = false
	return true
}

// Cancel abandons an in-flight load-more and leaves the reveal count untouched
func (l *Loader) Cancel() {
	l.loadingMore = false
	l.generation++
}

// RevealCount is the number of filtered items eligible for rendering
func (l *Loader) RevealCount() int {
	return l.revealCount
}

// Size is the filtered collection size the loader was last reset with
func (l *Loader) Size() int {
	return l.size
}

// HasMore reports whether items remain to be revealed
func (l *Loader) HasMore() bool {
	return l.revealCount < l.size
}

// LoadingMore reports whether a load-more is in flight
func (l *Loader) LoadingMore() bool {
	return l.loadingMore
}
