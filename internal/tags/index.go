// Package tags derives tag sets from a news collection and filters by selected tags.
package tags

import (
	"sort"

	"github.com/nickpending/newsreel/internal/news"
)

// AllTags returns the distinct tags across the collection in ascending order
func AllTags(c news.Collection) []string {
	seen := make(map[string]struct{})
	for _, r := range c {
		for _, tag := range r.Tags {
			seen[tag] = struct{}{}
		}
	}

	all := make([]string, 0, len(seen))
	for tag := range seen {
		all = append(all, tag)
	}
	sort.Strings(all)
	return all
}

// Matches reports whether the record carries at least one selected tag.
// An empty selection matches everything.
func Matches(r news.Record, selected []string) bool {
	if len(selected) == 0 {
		return true
	}
	for _, tag := range r.Tags {
		for _, want := range selected {
			if tag == want {
				return true
			}
		}
	}
	return false
}

// Filter keeps the records matching the selection, preserving order
func Filter(c news.Collection, selected []string) news.Collection {
	if len(selected) == 0 {
		return c
	}

	out := make(news.Collection, 0, len(c))
	for _, r := range c {
		if Matches(r, selected) {
			out = append(out, r)
		}
	}
	return out
}
