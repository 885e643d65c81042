package tags

// Selection is the set of selected tags, kept in selection order for display
type Selection struct {
	tags []string
}

// Toggle adds the tag if absent, removes it otherwise.
// Returns true when the tag is selected afterwards.
func (s *Selection) Toggle(tag string) bool {
	for i, t := range s.tags {
		if t == tag {
			s.tags = append(s.tags[:i:i], s.tags[i+1:]...)
			return false
		}
	}
	s.tags = append(s.tags, tag)
	return true
}

// Clear empties the selection
func (s *Selection) Clear() {
	s.tags = nil
}

// Contains reports whether the tag is selected
func (s Selection) Contains(tag string) bool {
	for _, t := range s.tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Tags returns a copy of the selected tags in selection order
func (s Selection) Tags() []string {
	if len(s.tags) == 0 {
		return nil
	}
	out := make([]string, len(s.tags))
	copy(out, s.tags)
	return out
}
