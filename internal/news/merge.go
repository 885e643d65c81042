package news

import "time"

// Merge interleaves individually reverse-chronological sources into one
// collection without a global sort. At each step the head with the most
// recent PublishedAt is taken; ties go to the leftmost source, and an
// exhausted source simply drops out.
func Merge(sources ...Collection) Collection {
	total := 0
	for _, src := range sources {
		total += len(src)
	}
	merged := make(Collection, 0, total)

	heads := make([]int, len(sources))
	for len(merged) < total {
		pick := -1
		for i, src := range sources {
			if heads[i] >= len(src) {
				continue
			}
			if pick == -1 || newer(src[heads[i]].PublishedAt, sources[pick][heads[pick]].PublishedAt) {
				pick = i
			}
		}
		merged = append(merged, sources[pick][heads[pick]])
		heads[pick]++
	}

	return merged
}

// newer reports whether date a is strictly more recent than date b.
// Empty dates sort as oldest; unparseable dates fall back to string order.
func newer(a, b string) bool {
	if a == b {
		return false
	}
	if a == "" {
		return false
	}
	if b == "" {
		return true
	}

	ta, errA := parseDate(a)
	tb, errB := parseDate(b)
	if errA == nil && errB == nil {
		return ta.After(tb)
	}
	return a > b
}

func parseDate(s string) (time.Time, error) {
	var err error
	for _, layout := range dateLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}
