package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"

	"github.com/nickpending/newsreel/internal/api"
	"github.com/nickpending/newsreel/internal/cache"
	"github.com/nickpending/newsreel/internal/collection"
	"github.com/nickpending/newsreel/internal/config"
	"github.com/nickpending/newsreel/internal/db"
	"github.com/nickpending/newsreel/internal/logging"
	"github.com/nickpending/newsreel/internal/news"
	"github.com/nickpending/newsreel/internal/provider"
	"github.com/nickpending/newsreel/internal/ui"
	"github.com/nickpending/newsreel/internal/youtube"
)

func main() {
	configPath := flag.String("config", "", "Path to config.toml (default: $XDG_CONFIG_HOME/newsreel/config.toml)")
	debug := flag.Bool("debug", false, "Log at debug level")
	printOnly := flag.Bool("print", false, "Fetch once, print the collection and exit")
	flag.Parse()

	if err := run(*configPath, *debug, *printOnly); err != nil {
		fmt.Fprintf(os.Stderr, "newsreel: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, debug, printOnly bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level := cfg.Log.Level
	if debug {
		level = "debug"
	}
	logger, err := logging.Open(cfg.Log.File, level)
	if err != nil {
		return err
	}
	defer logger.Close()
	logger.Info("newsreel starting", "cache", cfg.Cache.Backend, "table", cfg.HasTableAPI(), "youtube", cfg.HasYouTube())

	store, closeStore, err := openStore(cfg, logger.Logger)
	if err != nil {
		return err
	}
	defer closeStore()

	source, breakers, err := buildProvider(cfg, logger.Logger)
	if err != nil {
		return err
	}

	ctrl := collection.New(
		source,
		cache.New(store, cfg.CacheTTL()),
		collection.Options{PageSize: cfg.TUI.PageSize, Increment: cfg.TUI.PageIncrement},
		logger.Logger,
	)

	if printOnly {
		return printCollection(ctrl, breakers)
	}

	model := ui.NewModel(ctrl, ui.OptionsFromConfig(cfg), logger.Logger)
	defer model.Close()

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),       // Use alternate screen buffer
		tea.WithMouseCellMotion(), // Enable mouse wheel scrolling
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.LoadConfig()
}

// openStore picks the cache backend named in [cache]
func openStore(cfg *config.Config, logger *log.Logger) (cache.Store, func(), error) {
	switch cfg.Cache.Backend {
	case "memory":
		return cache.NewMemoryStore(), func() {}, nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr: cfg.Cache.RedisAddr,
			DB:   cfg.Cache.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Cache.RedisAddr, err)
		}
		// Redis expires the key a little after the cache would consider it stale
		store := cache.NewRedisStore(client, "newsreel:", cfg.CacheTTL()+time.Minute)
		return store, func() { client.Close() }, nil

	default:
		if cfg.Cache.DBPath != "" {
			db.SetPath(cfg.Cache.DBPath)
		}
		if _, err := db.GetDB(); err != nil {
			return nil, nil, err
		}
		return cache.NewSQLiteStore(), func() {
			if err := db.CloseDB(); err != nil {
				logger.Warn("failed to close database", "err", err)
			}
		}, nil
	}
}

// buildProvider wraps every configured source in a circuit breaker and fans out across them
func buildProvider(cfg *config.Config, logger *log.Logger) (*provider.Multi, []*provider.Breaker, error) {
	openFor := time.Duration(cfg.Breaker.OpenSeconds) * time.Second
	var breakers []*provider.Breaker

	if cfg.HasTableAPI() {
		client, err := api.NewClientFromConfig(cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		breakers = append(breakers, provider.NewBreaker(client, cfg.Breaker.MaxFailures, openFor, logger))
	}

	if cfg.HasYouTube() {
		feed, err := youtube.NewFeedClientFromConfig(cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		breakers = append(breakers, provider.NewBreaker(feed, cfg.Breaker.MaxFailures, openFor, logger))
	}

	sources := make([]provider.Source, len(breakers))
	for i, b := range breakers {
		sources[i] = b
	}
	return provider.NewMulti(logger, sources...), breakers, nil
}

// printCollection runs one Load outside the TUI and lists what it got
func printCollection(ctrl *collection.Controller, breakers []*provider.Breaker) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	ctrl.Apply(ctrl.Fetch(ctx, ctrl.Load()))
	fmt.Println(sourceSummary(breakers))
	if err := ctrl.Err(); err != nil {
		return err
	}

	source := "network"
	if ctrl.FromCache() {
		source = "cache"
	}
	fmt.Printf("=== %d stories (%s) ===\n\n", len(ctrl.Collection()), source)
	for i, r := range ctrl.Collection() {
		fmt.Printf("%3d. %s\n", i+1, r.DisplayTitle())
		fmt.Printf("     %s  %s  /%s\n", r.PublishedAt, news.WatchURL(r.VideoRef), news.RecordSlug(r))
		if len(r.Tags) > 0 {
			fmt.Printf("     #%s\n", strings.Join(r.Tags, " #"))
		}
	}
	fmt.Printf("\nTags: %v\n", ctrl.AllTags())
	return nil
}

// sourceSummary lists each source with its circuit breaker state
func sourceSummary(breakers []*provider.Breaker) string {
	states := make([]string, len(breakers))
	for i, b := range breakers {
		states[i] = fmt.Sprintf("%s (%s)", b.Name(), b.State())
	}
	return "Sources: " + strings.Join(states, ", ")
}
