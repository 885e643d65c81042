package news

import "net/url"

// Record is one displayable news/video entry.
// ID is never empty; every other field defaults to its zero value.
type Record struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	AlternateTitle string   `json:"alternate_title"` // Used for slug derivation
	VideoRef       string   `json:"video_ref"`       // Platform video id, empty means no video
	ThumbnailURL   string   `json:"thumbnail_url"`
	PublishedAt    string   `json:"published_at"` // YYYY-MM-DD or empty
	Summary        string   `json:"summary"`
	FullText       string   `json:"full_text"`
	Tags           []string `json:"tags"`
}

// Collection is an ordered, reverse-chronological sequence of records
type Collection []Record

// HasVideo reports whether the record can be played
func (r Record) HasVideo() bool {
	return r.VideoRef != ""
}

// DisplayTitle returns the title, falling back to the alternate title
func (r Record) DisplayTitle() string {
	if r.Title != "" {
		return r.Title
	}
	return r.AlternateTitle
}

// IDs returns the record ids in collection order
func (c Collection) IDs() []string {
	ids := make([]string, len(c))
	for i, r := range c {
		ids[i] = r.ID
	}
	return ids
}

// WatchURL returns the public watch page for a video id
func WatchURL(videoRef string) string {
	if videoRef == "" {
		return ""
	}
	return "https://www.youtube.com/watch?v=" + url.QueryEscape(videoRef)
}

// EmbedURL returns the autoplaying embed URL for a video id
func EmbedURL(videoRef string) string {
	if videoRef == "" {
		return ""
	}
	return "https://www.youtube.com/embed/" + url.PathEscape(videoRef) + "?autoplay=1&rel=0&showinfo=0&modestbranding=1"
}
