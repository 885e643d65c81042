package news

import (
	"regexp"
	"strings"
)

const (
	slugFallback  = "news-item"
	slugMaxLength = 100
)

// thaiToLatin is a rough transliteration table for slug building
var thaiToLatin = map[rune]string{
	'ก': "k", 'ข': "kh", 'ค': "kh", 'ง': "ng", 'จ': "j", 'ฉ': "ch", 'ช': "ch", 'ซ': "s",
	'ด': "d", 'ต': "t", 'ถ': "th", 'ท': "th", 'น': "n", 'บ': "b", 'ป': "p", 'ผ': "ph",
	'พ': "ph", 'ฟ': "f", 'ม': "m", 'ย': "y", 'ร': "r", 'ล': "l", 'ว': "w", 'ศ': "s",
	'ส': "s", 'ห': "h", 'อ': "o", 'ฮ': "h", 'ะ': "a", 'า': "a", 'ิ': "i", 'ี': "i",
	'ุ': "u", 'ู': "u", 'เ': "e", 'แ': "ae", 'โ': "o", 'ใ': "ai", 'ไ': "ai",
}

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaces  = regexp.MustCompile(`\s+`)
	slugDashes  = regexp.MustCompile(`-+`)
)

// Slug builds a URL-safe identifier from a title
func Slug(text string) string {
	if strings.TrimSpace(text) == "" {
		return slugFallback
	}

	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		if latin, ok := thaiToLatin[r]; ok {
			b.WriteString(latin)
			continue
		}
		b.WriteRune(r)
	}

	slug := slugInvalid.ReplaceAllString(b.String(), "")
	slug = slugSpaces.ReplaceAllString(slug, "-")
	slug = slugDashes.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > slugMaxLength {
		slug = slug[:slugMaxLength]
	}

	if slug == "" {
		return slugFallback
	}
	return slug
}

// RecordSlug derives the slug for a record, preferring the alternate title
func RecordSlug(r Record) string {
	return Slug(firstNonEmpty(r.AlternateTitle, r.Title))
}

// FindBySlug returns the first record whose slug matches
func FindBySlug(c Collection, slug string) (Record, bool) {
	for _, r := range c {
		if RecordSlug(r) == slug {
			return r, true
		}
	}
	return Record{}, false
}
