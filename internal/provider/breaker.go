package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sony/gobreaker"

	"github.com/nickpending/newsreel/internal/logging"
	"github.com/nickpending/newsreel/internal/news"
)

// ErrUnavailable is returned while a source's breaker is open
var ErrUnavailable = errors.New("source unavailable")

// Breaker stops calling a source after repeated consecutive failures
type Breaker struct {
	source Source
	cb     *gobreaker.CircuitBreaker
}

// NewBreaker wraps source; it opens after maxFailures consecutive errors
// and retries once openFor has elapsed.
func NewBreaker(source Source, maxFailures int, openFor time.Duration, logger *log.Logger) *Breaker {
	if maxFailures <= 0 {
		maxFailures = 3
	}
	if logger == nil {
		logger = logging.Discard()
	}
	logger = logger.WithPrefix("breaker")

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        source.Name(),
		MaxRequests: 1,
		Timeout:     openFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(maxFailures)
		},
		IsSuccessful: func(err error) bool {
			// Cancellation says nothing about the source's health
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("state change", "source", name, "from", from.String(), "to", to.String())
		},
	})

	return &Breaker{source: source, cb: cb}
}

// Name is the wrapped source's name
func (b *Breaker) Name() string {
	return b.source.Name()
}

// State reports the breaker state for status display
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

// FetchNewsCollection calls the source unless the breaker is open
func (b *Breaker) FetchNewsCollection(ctx context.Context) (news.Collection, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return b.source.FetchNewsCollection(ctx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %s", ErrUnavailable, b.source.Name())
		}
		return nil, err
	}
	return result.(news.Collection), nil
}
