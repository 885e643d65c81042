package news

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Row is an untyped record as delivered by the table API.
// It never leaves the ingestion boundary; NormalizeRow turns it into a Record.
type Row map[string]any

// IDPrefix namespaces table record ids
const IDPrefix = "nocodb-"

// dateLayouts are the publish-date formats seen from upstream sources
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999-07:00",
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
}

// NormalizeRow maps a raw table row to a Record.
// Returns false when the row carries no usable id.
func NormalizeRow(row Row) (Record, bool) {
	id := row.str("Id")
	if id == "" {
		return Record{}, false
	}

	title := row.str("title")
	desc := PlainText(row.str("thDesc"))

	rec := Record{
		ID:             IDPrefix + id,
		Title:          firstNonEmpty(row.str("thTitle"), title),
		AlternateTitle: title,
		VideoRef:       ExtractVideoID(row.str("url")),
		ThumbnailURL:   row.str("imageUrl"),
		PublishedAt:    NormalizeDate(row.str("pubDate")),
		FullText:       firstNonEmpty(desc, title),
		Tags:           row.tags("hashtag"),
	}

	if desc != "" {
		rec.Summary = Truncate(desc, SummaryLength)
	} else {
		rec.Summary = Truncate(title, SummaryLength)
	}

	return rec, true
}

// NormalizeRows normalizes a page of rows, dropping rows without an id
func NormalizeRows(rows []Row) Collection {
	out := make(Collection, 0, len(rows))
	for _, row := range rows {
		if rec, ok := NormalizeRow(row); ok {
			out = append(out, rec)
		}
	}
	return out
}

// NormalizeDate converts a timestamp to a UTC YYYY-MM-DD date.
// Unparseable input yields an empty string.
func NormalizeDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC().Format("2006-01-02")
		}
	}
	return ""
}

// str reads a field as a string; numbers are formatted without exponent
func (r Row) str(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

// tags reads the hashtag field, which is either an encoded string or a JSON array
func (r Row) tags(key string) []string {
	switch v := r[key].(type) {
	case string:
		return ParseTags(v)
	case []any:
		var tags []string
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				continue
			}
			if s = strings.TrimPrefix(strings.TrimSpace(s), "#"); s != "" {
				tags = append(tags, s)
			}
		}
		return tags
	default:
		return nil
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
