// Package youtube reads a channel's public Atom feed as a news source.
package youtube

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"

	"github.com/nickpending/newsreel/internal/config"
	"github.com/nickpending/newsreel/internal/logging"
	"github.com/nickpending/newsreel/internal/news"
)

const (
	// FeedBaseURL is the channel feed endpoint; the channel id is appended
	FeedBaseURL = "https://www.youtube.com/feeds/videos.xml?channel_id="

	// IDPrefix namespaces feed records away from table records
	IDPrefix = "yt-"

	userAgent = "newsreel/1.0 (+https://github.com/nickpending/newsreel)"
)

// FeedClient fetches and normalizes a channel feed
type FeedClient struct {
	url    string
	limit  int
	client *http.Client
	parser *gofeed.Parser
	logger *log.Logger
}

// NewFeedClient creates a client for feedURL, keeping at most limit entries (0 keeps all)
func NewFeedClient(feedURL string, limit int, timeout time.Duration, logger *log.Logger) *FeedClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &FeedClient{
		url:    feedURL,
		limit:  limit,
		client: &http.Client{Timeout: timeout},
		parser: gofeed.NewParser(),
		logger: logger.WithPrefix("youtube"),
	}
}

// NewFeedClientFromConfig builds a client from the [youtube] section.
// feed_url wins over channel_id.
func NewFeedClientFromConfig(cfg *config.Config, logger *log.Logger) (*FeedClient, error) {
	feedURL := cfg.YouTube.FeedURL
	if feedURL == "" {
		if cfg.YouTube.ChannelID == "" {
			return nil, fmt.Errorf("youtube channel_id or feed_url is required")
		}
		feedURL = FeedBaseURL + cfg.YouTube.ChannelID
	}
	timeout := time.Duration(cfg.API.TimeoutSec) * time.Second
	return NewFeedClient(feedURL, cfg.YouTube.Limit, timeout, logger), nil
}

// Name identifies the source in logs and errors
func (c *FeedClient) Name() string {
	return "youtube"
}

// FetchNewsCollection downloads the feed and converts its entries to records
func (c *FeedClient) FetchNewsCollection(ctx context.Context) (news.Collection, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	feed, err := c.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	collection := make(news.Collection, 0, len(feed.Items))
	for _, item := range feed.Items {
		if c.limit > 0 && len(collection) >= c.limit {
			break
		}
		record, ok := convertItem(item)
		if !ok {
			c.logger.Debug("skipping entry without video id", "title", item.Title)
			continue
		}
		collection = append(collection, record)
	}

	c.logger.Debug("fetched feed", "entries", len(feed.Items), "records", len(collection))
	return collection, nil
}

// convertItem maps a feed entry to a record; entries without a video id are dropped
func convertItem(item *gofeed.Item) (news.Record, bool) {
	videoID := extensionValue(item.Extensions, "yt", "videoId")
	if videoID == "" {
		videoID = news.ExtractVideoID(item.Link)
	}
	if videoID == "" {
		return news.Record{}, false
	}

	title := strings.TrimSpace(html.UnescapeString(item.Title))

	description := item.Description
	thumbnail := ""
	if item.Image != nil {
		thumbnail = item.Image.URL
	}
	if group := mediaGroup(item.Extensions); group != nil {
		if description == "" {
			description = childValue(group, "description")
		}
		if thumbnail == "" {
			thumbnail = childAttr(group, "thumbnail", "url")
		}
	}
	description = news.PlainText(description)

	published := ""
	switch {
	case item.PublishedParsed != nil:
		published = item.PublishedParsed.UTC().Format("2006-01-02")
	case item.Published != "":
		published = news.NormalizeDate(item.Published)
	case item.UpdatedParsed != nil:
		published = item.UpdatedParsed.UTC().Format("2006-01-02")
	}

	fullText := description
	if fullText == "" {
		fullText = title
	}

	summary := description
	if summary == "" {
		summary = title
	}

	return news.Record{
		ID:             IDPrefix + videoID,
		Title:          title,
		AlternateTitle: title,
		VideoRef:       videoID,
		ThumbnailURL:   thumbnail,
		PublishedAt:    published,
		Summary:        news.Truncate(summary, news.SummaryLength),
		FullText:       fullText,
		Tags:           news.HashtagsFromText(title + "\n" + description),
	}, true
}

func extensionValue(exts ext.Extensions, namespace, name string) string {
	values := exts[namespace][name]
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0].Value)
}

func mediaGroup(exts ext.Extensions) *ext.Extension {
	groups := exts["media"]["group"]
	if len(groups) == 0 {
		return nil
	}
	return &groups[0]
}

func childValue(e *ext.Extension, name string) string {
	children := e.Children[name]
	if len(children) == 0 {
		return ""
	}
	return children[0].Value
}

func childAttr(e *ext.Extension, name, attr string) string {
	children := e.Children[name]
	if len(children) == 0 {
		return ""
	}
	return children[0].Attrs[attr]
}
