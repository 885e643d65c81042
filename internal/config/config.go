package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// APIKeyEnv overrides [api].key when set
const APIKeyEnv = "NEWSREEL_API_KEY"

// Config represents the configuration from config.toml
type Config struct {
	API     APIConfig     `toml:"api"`
	YouTube YouTubeConfig `toml:"youtube"`
	TUI     TUIConfig     `toml:"tui"`
	Cache   CacheConfig   `toml:"cache"`
	Breaker BreakerConfig `toml:"breaker"`
	Log     LogConfig     `toml:"log"`
}

// APIConfig describes the table records API
type APIConfig struct {
	BaseURL       string `toml:"base_url"`
	TableID       string `toml:"table_id"`
	Key           string `toml:"key"`
	Limit         int    `toml:"limit"`           // Records fetched per refresh
	PageSize      int    `toml:"page_size"`       // Records per HTTP request
	MinIntervalMS int    `toml:"min_interval_ms"` // Minimum spacing between requests
	TimeoutSec    int    `toml:"timeout"`
}

// YouTubeConfig describes the optional channel feed source
type YouTubeConfig struct {
	ChannelID string `toml:"channel_id"`
	FeedURL   string `toml:"feed_url"` // Overrides the URL derived from channel_id
	Limit     int    `toml:"limit"`
}

// TUIConfig holds grid and paging settings
type TUIConfig struct {
	RefreshInterval   int     `toml:"refresh_interval"` // Auto-refresh interval in seconds, 0 disables
	PageSize          int     `toml:"page_size"`
	PageIncrement     int     `toml:"page_increment"`
	LoadMoreDelayMS   int     `toml:"load_more_delay_ms"`
	RowHeight         int     `toml:"row_height"` // Lines per card row
	BufferRows        int     `toml:"buffer_rows"`
	SentinelMargin    int     `toml:"sentinel_margin"` // Lookahead lines for load-more
	SentinelThreshold float64 `toml:"sentinel_threshold"`
	Theme             string  `toml:"theme"`
}

// CacheConfig selects and tunes the cache backend
type CacheConfig struct {
	Backend    string `toml:"backend"` // "memory", "sqlite" or "redis"
	TTLMinutes int    `toml:"ttl_minutes"`
	RedisAddr  string `toml:"redis_addr"`
	RedisDB    int    `toml:"redis_db"`
	DBPath     string `toml:"db_path"` // Overrides the XDG data path
}

// BreakerConfig tunes the per-source circuit breaker
type BreakerConfig struct {
	MaxFailures int `toml:"max_failures"`
	OpenSeconds int `toml:"open_seconds"`
}

// LogConfig controls the file logger
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"` // Overrides the XDG state path
}

// Default returns a Config populated with defaults
func Default() *Config {
	return &Config{
		API: APIConfig{
			Limit:         50,
			PageSize:      25,
			MinIntervalMS: 250,
			TimeoutSec:    10,
		},
		YouTube: YouTubeConfig{
			Limit: 25,
		},
		TUI: TUIConfig{
			RefreshInterval:   0,
			PageSize:          20,
			PageIncrement:     20,
			LoadMoreDelayMS:   300,
			RowHeight:         7,
			BufferRows:        2,
			SentinelMargin:    4,
			SentinelThreshold: 0.1,
			Theme:             "clean_cyber",
		},
		Cache: CacheConfig{
			Backend:    "sqlite",
			TTLMinutes: 120,
			RedisAddr:  "localhost:6379",
		},
		Breaker: BreakerConfig{
			MaxFailures: 3,
			OpenSeconds: 60,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Dir returns the newsreel config directory under XDG_CONFIG_HOME or ~/.config
func Dir() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "newsreel"), nil
}

// LoadConfig loads configuration from the standard XDG config path with sensible defaults
func LoadConfig() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return LoadFile(filepath.Join(dir, "config.toml"))
}

// LoadFile loads configuration from path. A missing file yields the defaults.
func LoadFile(path string) (*Config, error) {
	config := Default()

	if _, err := os.Stat(path); err == nil {
		configData, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		// Parse TOML config, merging with defaults
		if err := toml.Unmarshal(configData, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if key := os.Getenv(APIKeyEnv); key != "" {
		config.API.Key = key
	}

	config.sanitize()
	return config, nil
}

// sanitize replaces out-of-range values with defaults so layout math never sees them
func (c *Config) sanitize() {
	d := Default()

	if c.API.Limit <= 0 {
		c.API.Limit = d.API.Limit
	}
	if c.API.PageSize <= 0 {
		c.API.PageSize = d.API.PageSize
	}
	if c.API.MinIntervalMS < 0 {
		c.API.MinIntervalMS = 0
	}
	if c.API.TimeoutSec <= 0 {
		c.API.TimeoutSec = d.API.TimeoutSec
	}
	if c.YouTube.Limit <= 0 {
		c.YouTube.Limit = d.YouTube.Limit
	}
	if c.TUI.RefreshInterval < 0 {
		c.TUI.RefreshInterval = 0
	}
	if c.TUI.PageSize <= 0 {
		c.TUI.PageSize = d.TUI.PageSize
	}
	if c.TUI.PageIncrement <= 0 {
		c.TUI.PageIncrement = d.TUI.PageIncrement
	}
	if c.TUI.LoadMoreDelayMS < 0 {
		c.TUI.LoadMoreDelayMS = 0
	}
	if c.TUI.RowHeight < 3 {
		c.TUI.RowHeight = d.TUI.RowHeight
	}
	if c.TUI.BufferRows < 0 {
		c.TUI.BufferRows = d.TUI.BufferRows
	}
	if c.TUI.SentinelMargin < 0 {
		c.TUI.SentinelMargin = d.TUI.SentinelMargin
	}
	if c.TUI.SentinelThreshold <= 0 || c.TUI.SentinelThreshold > 1 {
		c.TUI.SentinelThreshold = d.TUI.SentinelThreshold
	}
	switch c.Cache.Backend {
	case "memory", "sqlite", "redis":
	default:
		c.Cache.Backend = d.Cache.Backend
	}
	if c.Cache.TTLMinutes <= 0 {
		c.Cache.TTLMinutes = d.Cache.TTLMinutes
	}
	if c.Breaker.MaxFailures <= 0 {
		c.Breaker.MaxFailures = d.Breaker.MaxFailures
	}
	if c.Breaker.OpenSeconds <= 0 {
		c.Breaker.OpenSeconds = d.Breaker.OpenSeconds
	}
}

// Validate reports settings required to fetch anything
func (c *Config) Validate() error {
	var errs []error
	hasTable := c.API.BaseURL != "" || c.API.TableID != ""
	if hasTable {
		if c.API.BaseURL == "" {
			errs = append(errs, errors.New("[api].base_url is required"))
		}
		if c.API.TableID == "" {
			errs = append(errs, errors.New("[api].table_id is required"))
		}
		if c.API.Key == "" {
			errs = append(errs, fmt.Errorf("[api].key or %s is required", APIKeyEnv))
		}
	}
	if !hasTable && !c.HasYouTube() {
		errs = append(errs, errors.New("no source configured: set [api] or [youtube]"))
	}
	return errors.Join(errs...)
}

// HasTableAPI reports whether the table records source is configured
func (c *Config) HasTableAPI() bool {
	return c.API.BaseURL != "" && c.API.TableID != ""
}

// HasYouTube reports whether the channel feed source is configured
func (c *Config) HasYouTube() bool {
	return c.YouTube.ChannelID != "" || c.YouTube.FeedURL != ""
}

// GetRefreshInterval returns the configured refresh interval in seconds
// Returns 0 if auto-refresh is disabled
func (c *Config) GetRefreshInterval() int {
	return c.TUI.RefreshInterval
}

// CacheTTL returns the cache time-to-live
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLMinutes) * time.Minute
}

// LoadMoreDelay returns the simulated latency of a load-more
func (c *Config) LoadMoreDelay() time.Duration {
	return time.Duration(c.TUI.LoadMoreDelayMS) * time.Millisecond
}
