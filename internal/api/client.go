package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/nickpending/newsreel/internal/config"
	"github.com/nickpending/newsreel/internal/logging"
	"github.com/nickpending/newsreel/internal/news"
)

// ErrUnauthorized is returned when the API rejects the token
var ErrUnauthorized = errors.New("authentication failed: invalid API key")

// StatusError is returned for any non-success HTTP response
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("API error (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Body)
}

// Client reads news records from a table-backed HTTP API
type Client struct {
	baseURL    string
	tableID    string
	apiKey     string
	limit      int
	pageSize   int
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
}

// Options configures a Client
type Options struct {
	BaseURL     string
	TableID     string
	Key         string
	Limit       int           // Records per FetchNewsCollection
	PageSize    int           // Records per request
	MinInterval time.Duration // Minimum spacing between requests, 0 disables
	Timeout     time.Duration
	HTTPClient  *http.Client
	Logger      *log.Logger
}

// Page is one page of normalized records
type Page struct {
	Items      news.Collection
	NextCursor string // Empty when there are no more pages
}

// recordsResponse is the list endpoint payload
type recordsResponse struct {
	List     []news.Row `json:"list"`
	PageInfo struct {
		TotalRows  int  `json:"totalRows"`
		Page       int  `json:"page"`
		PageSize   int  `json:"pageSize"`
		IsLastPage bool `json:"isLastPage"`
	} `json:"pageInfo"`
}

// NewClient creates a table API client
func NewClient(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if opts.TableID == "" {
		return nil, fmt.Errorf("table id is required")
	}
	if opts.Key == "" {
		return nil, fmt.Errorf("API key not found in config")
	}
	if opts.Limit <= 0 {
		opts.Limit = 50
	}
	if opts.PageSize <= 0 {
		opts.PageSize = opts.Limit
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}

	// Burst of one: the first request goes out immediately, later ones are spaced
	limit := rate.Inf
	if opts.MinInterval > 0 {
		limit = rate.Every(opts.MinInterval)
	}

	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"), // endpoint paths start with "/"
		tableID:    opts.TableID,
		apiKey:     opts.Key,
		limit:      opts.Limit,
		pageSize:   opts.PageSize,
		httpClient: opts.HTTPClient,
		limiter:    rate.NewLimiter(limit, 1),
		logger:     opts.Logger.WithPrefix("api"),
	}, nil
}

// NewClientFromConfig creates a client from the [api] config section
func NewClientFromConfig(cfg *config.Config, logger *log.Logger) (*Client, error) {
	return NewClient(Options{
		BaseURL:     cfg.API.BaseURL,
		TableID:     cfg.API.TableID,
		Key:         cfg.API.Key,
		Limit:       cfg.API.Limit,
		PageSize:    cfg.API.PageSize,
		MinInterval: time.Duration(cfg.API.MinIntervalMS) * time.Millisecond,
		Timeout:     time.Duration(cfg.API.TimeoutSec) * time.Second,
		Logger:      logger,
	})
}

// Name identifies the source in logs and errors
func (c *Client) Name() string {
	return "table"
}

// FetchPage fetches one page of records starting at cursor.
// The cursor is an opaque offset; pass "" for the first page.
func (c *Client) FetchPage(ctx context.Context, cursor string) (Page, error) {
	offset := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil || n < 0 {
			return Page{}, fmt.Errorf("invalid cursor %q", cursor)
		}
		offset = n
	}
	return c.fetchPage(ctx, offset, c.pageSize)
}

// FetchNewsCollection fetches up to the configured limit of the most recent records
func (c *Client) FetchNewsCollection(ctx context.Context) (news.Collection, error) {
	var (
		collection news.Collection
		offset     int
	)

	for len(collection) < c.limit {
		// Never ask for more than the limit still needs
		size := min(c.pageSize, c.limit-len(collection))
		page, err := c.fetchPage(ctx, offset, size)
		if err != nil {
			return nil, err
		}
		collection = append(collection, page.Items...)
		if page.NextCursor == "" {
			break
		}
		if offset, err = strconv.Atoi(page.NextCursor); err != nil {
			return nil, fmt.Errorf("invalid cursor %q", page.NextCursor)
		}
	}

	// A server that ignores the limit parameter can overshoot
	if len(collection) > c.limit {
		collection = collection[:c.limit]
	}

	c.logger.Debug("fetched collection", "records", len(collection))
	return collection, nil
}

// fetchPage requests size records at offset, newest first
func (c *Client) fetchPage(ctx context.Context, offset, size int) (Page, error) {
	// Wait returns early with an error if ctx ends first
	if err := c.limiter.Wait(ctx); err != nil {
		return Page{}, fmt.Errorf("rate limiter: %w", err)
	}

	// Build query parameters; descending Id is newest first
	params := url.Values{}
	params.Set("sort", "-Id")
	params.Set("limit", strconv.Itoa(size))
	if offset > 0 {
		params.Set("offset", strconv.Itoa(offset))
	}
	endpoint := fmt.Sprintf("%s/api/v2/tables/%s/records?%s", c.baseURL, url.PathEscape(c.tableID), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Page{}, fmt.Errorf("failed to create request: %w", err)
	}
	// Add authentication header
	req.Header.Set("xc-token", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	// Read the whole body so error responses can be reported verbatim
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Page{}, fmt.Errorf("failed to read response: %w", err)
	}

	// Check status code
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return Page{}, ErrUnauthorized
	}
	if resp.StatusCode >= 300 {
		return Page{}, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var payload recordsResponse
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber() // Ids may arrive as numbers or strings
	if err := decoder.Decode(&payload); err != nil {
		return Page{}, fmt.Errorf("failed to parse response: %w", err)
	}
	// An empty page is "list": []; a missing list means a different payload
	if payload.List == nil {
		return Page{}, fmt.Errorf("failed to parse response: missing list")
	}

	items := news.NormalizeRows(payload.List)
	if dropped := len(payload.List) - len(items); dropped > 0 {
		c.logger.Warn("dropped records without id", "count", dropped)
	}

	// Short pages end pagination even if the server omits isLastPage
	page := Page{Items: items}
	if !payload.PageInfo.IsLastPage && len(payload.List) >= size {
		page.NextCursor = strconv.Itoa(offset + len(payload.List))
	}
	return page, nil
}
