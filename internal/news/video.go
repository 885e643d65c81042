package news

import "regexp"

// Patterns tried in order; the first match wins.
var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/shorts/([a-zA-Z0-9_-]+)`), // https://www.youtube.com/shorts/XJPKrXiTtn8
	regexp.MustCompile(`[?&]v=([a-zA-Z0-9_-]+)`),   // https://www.youtube.com/watch?v=q1w2e3
	regexp.MustCompile(`youtu\.be/([a-zA-Z0-9_-]+)`),
}

// ExtractVideoID extracts a platform video id from an arbitrary URL.
// Returns an empty string when nothing matches.
func ExtractVideoID(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	for _, re := range videoIDPatterns {
		if m := re.FindStringSubmatch(rawURL); m != nil {
			return m[1]
		}
	}
	return ""
}
