package news

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseTags(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected []string
	}{
		{"brace pseudo-array", `{"#Breaking","#AI"}`, []string{"Breaking", "AI"}},
		{"json array", `["#News","Kpop"]`, []string{"News", "Kpop"}},
		{"thai tags", `{"#ข่าว","#Shorts"}`, []string{"ข่าว", "Shorts"}},
		{"empty string", "", nil},
		{"empty braces", "{}", nil},
		{"malformed", `{"#Breaking",`, nil},
		{"not an array", `"#Breaking"`, nil},
		{"blank entries dropped", `{"#", " #AI "}`, []string{"AI"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTags(tt.raw)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"https://youtu.be/abc123", "abc123"},
		{"https://x.com/shorts/xyz789", "xyz789"},
		{"https://x.com/watch?v=q1w2e3", "q1w2e3"},
		{"https://www.youtube.com/watch?feature=share&v=Ab_-9", "Ab_-9"},
		{"https://www.youtube.com/shorts/XJPKrXiTtn8?v=other", "XJPKrXiTtn8"},
		{"https://example.com/video/123", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := ExtractVideoID(tt.url); got != tt.expected {
			t.Errorf("ExtractVideoID(%q): expected %q, got %q", tt.url, tt.expected, got)
		}
	}
}

func TestHashtagsFromText(t *testing.T) {
	got := HashtagsFromText("Update #AI and #ข่าว today #AI #Kpop_2")
	expected := []string{"AI", "ข่าว", "Kpop_2"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}

	if tags := HashtagsFromText("no tags here"); len(tags) != 0 {
		t.Errorf("Expected no tags, got %v", tags)
	}
}

func TestMerge(t *testing.T) {
	a := Collection{{ID: "a1", PublishedAt: "2024-01-03"}, {ID: "a2", PublishedAt: "2024-01-01"}}
	b := Collection{{ID: "b1", PublishedAt: "2024-01-02"}}

	got := Merge(a, b).IDs()
	expected := []string{"a1", "b1", "a2"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

func TestMergeTiesKeepLeftFirst(t *testing.T) {
	a := Collection{{ID: "a1", PublishedAt: "2024-01-02"}, {ID: "a2", PublishedAt: "2024-01-01"}}
	b := Collection{{ID: "b1", PublishedAt: "2024-01-02"}, {ID: "b2", PublishedAt: "2024-01-01"}}

	got := Merge(a, b).IDs()
	expected := []string{"a1", "b1", "a2", "b2"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

func TestMergeEdgeCases(t *testing.T) {
	tests := []struct {
		name     string
		sources  []Collection
		expected []string
	}{
		{"no sources", nil, []string{}},
		{"single source unchanged", []Collection{{{ID: "x"}, {ID: "y"}}}, []string{"x", "y"}},
		{"left exhausted drains right", []Collection{
			{{ID: "a1", PublishedAt: "2024-03-01"}},
			{{ID: "b1", PublishedAt: "2024-02-01"}, {ID: "b2", PublishedAt: "2024-01-01"}},
		}, []string{"a1", "b1", "b2"}},
		{"empty dates sort oldest", []Collection{
			{{ID: "a1"}},
			{{ID: "b1", PublishedAt: "2024-01-01"}},
		}, []string{"b1", "a1"}},
		{"three sources", []Collection{
			{{ID: "a1", PublishedAt: "2024-01-01"}},
			{{ID: "b1", PublishedAt: "2024-01-03"}},
			{{ID: "c1", PublishedAt: "2024-01-02"}},
		}, []string{"b1", "c1", "a1"}},
		{"mixed precision timestamps", []Collection{
			{{ID: "a1", PublishedAt: "2024-01-02"}},
			{{ID: "b1", PublishedAt: "2024-01-02T10:00:00Z"}},
		}, []string{"b1", "a1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(tt.sources...).IDs()
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestNormalizeRow(t *testing.T) {
	longDesc := strings.Repeat("ข", 200)
	row := Row{
		"Id":       float64(42),
		"thTitle":  "หัวข้อข่าว",
		"title":    "Headline",
		"url":      "https://www.youtube.com/shorts/XJPKrXiTtn8",
		"imageUrl": "https://img.example.com/1.jpg",
		"pubDate":  "2024-05-06T23:30:00+07:00",
		"thDesc":   longDesc,
		"hashtag":  `{"#Breaking","#AI"}`,
	}

	rec, ok := NormalizeRow(row)
	if !ok {
		t.Fatal("Expected row to normalize")
	}

	if rec.ID != "nocodb-42" {
		t.Errorf("Expected id nocodb-42, got %q", rec.ID)
	}
	if rec.Title != "หัวข้อข่าว" {
		t.Errorf("Expected Thai title, got %q", rec.Title)
	}
	if rec.AlternateTitle != "Headline" {
		t.Errorf("Expected alternate title Headline, got %q", rec.AlternateTitle)
	}
	if rec.VideoRef != "XJPKrXiTtn8" {
		t.Errorf("Expected video ref XJPKrXiTtn8, got %q", rec.VideoRef)
	}
	if rec.PublishedAt != "2024-05-06" {
		t.Errorf("Expected UTC date 2024-05-06, got %q", rec.PublishedAt)
	}
	if got := []rune(rec.Summary); len(got) != SummaryLength+3 || !strings.HasSuffix(rec.Summary, "...") {
		t.Errorf("Expected truncated summary of %d runes, got %d", SummaryLength+3, len(got))
	}
	if rec.FullText != longDesc {
		t.Error("Expected full text to keep the untruncated description")
	}
	if !reflect.DeepEqual(rec.Tags, []string{"Breaking", "AI"}) {
		t.Errorf("Expected tags [Breaking AI], got %v", rec.Tags)
	}
}

func TestNormalizeRowDefaults(t *testing.T) {
	rec, ok := NormalizeRow(Row{"Id": "7", "title": "Only title", "hashtag": "garbage"})
	if !ok {
		t.Fatal("Expected row to normalize")
	}

	if rec.Title != "Only title" {
		t.Errorf("Expected title fallback, got %q", rec.Title)
	}
	if rec.Summary != "Only title" || rec.FullText != "Only title" {
		t.Errorf("Expected summary and full text to fall back to title, got %q / %q", rec.Summary, rec.FullText)
	}
	if rec.VideoRef != "" || rec.ThumbnailURL != "" || rec.PublishedAt != "" {
		t.Errorf("Expected empty defaults, got %+v", rec)
	}
	if len(rec.Tags) != 0 {
		t.Errorf("Expected no tags for malformed input, got %v", rec.Tags)
	}
}

func TestNormalizeRowsDropsMissingID(t *testing.T) {
	rows := []Row{{"title": "no id"}, {"Id": 1.0, "title": "kept"}, {"Id": ""}}
	got := NormalizeRows(rows)
	if len(got) != 1 || got[0].ID != "nocodb-1" {
		t.Errorf("Expected one record nocodb-1, got %v", got.IDs())
	}
}

func TestPlainText(t *testing.T) {
	got := PlainText("<p>Hello &amp; <b>world</b></p><p>second   line</p>")
	expected := "Hello & world\nsecond line"
	if got != expected {
		t.Errorf("Expected %q, got %q", expected, got)
	}

	if got := PlainText("  plain  "); got != "plain" {
		t.Errorf("Expected trimmed plain text, got %q", got)
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Breaking News: AI Wins!", "breaking-news-ai-wins"},
		{"  --Hello   World--  ", "hello-world"},
		{"", "news-item"},
		{"!!!", "news-item"},
		{"กา", "ka"},
		{strings.Repeat("a", 150), strings.Repeat("a", 100)},
	}

	for _, tt := range tests {
		if got := Slug(tt.input); got != tt.expected {
			t.Errorf("Slug(%q): expected %q, got %q", tt.input, tt.expected, got)
		}
	}
}

func TestFindBySlug(t *testing.T) {
	c := Collection{
		{ID: "1", Title: "ข่าว", AlternateTitle: "First Story"},
		{ID: "2", Title: "Second Story"},
	}

	if rec, ok := FindBySlug(c, "first-story"); !ok || rec.ID != "1" {
		t.Errorf("Expected record 1, got %+v (found=%v)", rec, ok)
	}
	if rec, ok := FindBySlug(c, "second-story"); !ok || rec.ID != "2" {
		t.Errorf("Expected record 2, got %+v (found=%v)", rec, ok)
	}
	if _, ok := FindBySlug(c, "missing"); ok {
		t.Error("Expected no match for unknown slug")
	}
}

func TestEmbedURL(t *testing.T) {
	if got := EmbedURL("abc"); got != "https://www.youtube.com/embed/abc?autoplay=1&rel=0&showinfo=0&modestbranding=1" {
		t.Errorf("Unexpected embed URL %q", got)
	}
	if EmbedURL("") != "" || WatchURL("") != "" {
		t.Error("Expected empty URLs for empty video ref")
	}
}
