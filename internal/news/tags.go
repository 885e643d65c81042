package news

import (
	"encoding/json"
	"regexp"
	"strings"
)

// hashtagPattern matches Thai and latin hashtags in free text
var hashtagPattern = regexp.MustCompile(`#([ก-๙a-zA-Z0-9_]+)`)

// ParseTags decodes the provider's tag encoding into clean tag names.
// The provider sends a brace-delimited pseudo-array like {"#Breaking","#AI"};
// plain JSON arrays are accepted too. Any parse failure yields nil.
func ParseTags(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	// Convert the array literal braces to JSON brackets
	if strings.HasPrefix(raw, "{") {
		raw = "[" + raw[1:]
	}
	if strings.HasSuffix(raw, "}") {
		raw = raw[:len(raw)-1] + "]"
	}

	var parsed []string
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil
	}

	tags := make([]string, 0, len(parsed))
	for _, tag := range parsed {
		tag = strings.TrimPrefix(strings.TrimSpace(tag), "#")
		if tag == "" {
			continue
		}
		tags = append(tags, tag)
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}

// HashtagsFromText extracts unique hashtags from free text, keeping first-seen order
func HashtagsFromText(text string) []string {
	var tags []string
	seen := make(map[string]bool)
	for _, m := range hashtagPattern.FindAllStringSubmatch(text, -1) {
		if seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		tags = append(tags, m[1])
	}
	return tags
}
