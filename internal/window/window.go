// Package window maps a scroll position onto the slice of grid items worth rendering.
package window

import "math"

// DefaultBufferRows is the number of rows materialized above and below the viewport
const DefaultBufferRows = 2

// Range is a half-open index range [Start, End) into the revealed items
type Range struct {
	Start int
	End   int
}

// Len returns the number of items in the range
func (r Range) Len() int {
	return r.End - r.Start
}

// Contains reports whether index i falls inside the range
func (r Range) Contains(i int) bool {
	return i >= r.Start && i < r.End
}

// ComputeVisibleRange returns the items to render for a scroll position.
// Units are arbitrary but must agree between scrollOffset, viewportHeight and rowHeight.
// Invalid layout measurements are clamped rather than rejected: fewer than one
// column becomes one, a non-positive row height becomes 1, and negative
// heights or buffers become 0.
func ComputeVisibleRange(scrollOffset, viewportHeight float64, itemCount, columnCount int, rowHeight float64, bufferRows int) Range {
	if itemCount <= 0 {
		return Range{}
	}
	if columnCount < 1 {
		columnCount = 1
	}
	if !(rowHeight > 0) || math.IsInf(rowHeight, 0) {
		rowHeight = 1
	}
	if !(viewportHeight > 0) {
		viewportHeight = 0
	}
	if bufferRows < 0 {
		bufferRows = 0
	}
	if !(scrollOffset > 0) {
		scrollOffset = 0
	}

	totalRows := ceilDiv(itemCount, columnCount)

	// Rows past the end behave identically, so bound them before converting to int.
	// Sums saturate so counts near math.MaxInt cannot overflow.
	limit := saturatingAdd(saturatingAdd(totalRows, 1), bufferRows)
	startRow := clampRow(math.Floor(scrollOffset/rowHeight), limit)
	endRow := clampRow(math.Ceil((scrollOffset+viewportHeight)/rowHeight), limit)

	bufferedStart := max(0, startRow-bufferRows)
	bufferedEnd := totalRows
	if endRow < totalRows && bufferRows < totalRows-endRow {
		bufferedEnd = endRow + bufferRows
	}

	start := rowStart(bufferedStart, columnCount, itemCount, totalRows)
	end := rowStart(bufferedEnd, columnCount, itemCount, totalRows)
	if end < start {
		end = start
	}

	return Range{Start: start, End: end}
}

// ceilDiv is ceil(n/d) for positive d without the n+d-1 overflow
func ceilDiv(n, d int) int {
	q := n / d
	if n%d != 0 {
		q++
	}
	return q
}

// rowStart is the first item index of row; rows past the end map to itemCount
func rowStart(row, columnCount, itemCount, totalRows int) int {
	if row >= totalRows {
		return itemCount
	}
	return min(row*columnCount, itemCount)
}

// saturatingAdd adds non-negative a and b, capping at math.MaxInt
func saturatingAdd(a, b int) int {
	if b > math.MaxInt-a {
		return math.MaxInt
	}
	return a + b
}

func clampRow(row float64, limit int) int {
	if row >= float64(limit) {
		return limit
	}
	return int(row)
}

// TotalHeight is the scroll-container height for the revealed items
func TotalHeight(revealCount, columnCount int, rowHeight float64) float64 {
	if revealCount <= 0 {
		return 0
	}
	if columnCount < 1 {
		columnCount = 1
	}
	if !(rowHeight > 0) {
		rowHeight = 1
	}
	return float64(ceilDiv(revealCount, columnCount)) * rowHeight
}

// Columns picks a responsive column count for a terminal width
func Columns(width int) int {
	switch {
	case width < 80:
		return 1
	case width < 120:
		return 2
	case width < 160:
		return 3
	default:
		return 4
	}
}
