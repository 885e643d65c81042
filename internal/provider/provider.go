// Package provider combines news sources into the single collection the grid shows.
package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/nickpending/newsreel/internal/logging"
	"github.com/nickpending/newsreel/internal/news"
)

// fetchTimeout bounds a single source fetch
const fetchTimeout = 30 * time.Second

// Source is anything that can produce a collection of records
type Source interface {
	Name() string
	FetchNewsCollection(ctx context.Context) (news.Collection, error)
}

// Multi fetches every source concurrently and merges the results newest first.
// Sources listed earlier win date ties.
type Multi struct {
	sources []Source
	logger  *log.Logger
}

// NewMulti creates a provider over sources in priority order
func NewMulti(logger *log.Logger, sources ...Source) *Multi {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Multi{sources: sources, logger: logger.WithPrefix("provider")}
}

// Name lists the combined sources
func (m *Multi) Name() string {
	return fmt.Sprintf("multi(%d)", len(m.sources))
}

// FetchNewsCollection fails as a whole if any source fails
func (m *Multi) FetchNewsCollection(ctx context.Context) (news.Collection, error) {
	if len(m.sources) == 0 {
		return nil, fmt.Errorf("no sources configured")
	}

	results := make([]news.Collection, len(m.sources))
	g, gctx := errgroup.WithContext(ctx)

	for i, src := range m.sources {
		g.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(gctx, fetchTimeout)
			defer cancel()

			start := time.Now()
			collection, err := src.FetchNewsCollection(fetchCtx)
			if err != nil {
				m.logger.Warn("source failed", "source", src.Name(), "err", err)
				return fmt.Errorf("%s: %w", src.Name(), err)
			}
			m.logger.Debug("source fetched", "source", src.Name(), "records", len(collection), "took", time.Since(start))
			results[i] = collection
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return news.Merge(results...), nil
}
