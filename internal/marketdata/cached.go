package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/varcalc/pkg/logger"
	"github.com/wonny/varcalc/pkg/redis"
)

// Cached is a read-through cache in front of another Provider.
// With Redis disabled it simply forwards every call.
type Cached struct {
	next   Provider
	cache  *redis.Cache
	ttl    time.Duration
	logger *logger.Logger
}

// NewCached wraps next with cache
func NewCached(next Provider, cache *redis.Cache, ttl time.Duration, log *logger.Logger) *Cached {
	if ttl <= 0 {
		ttl = redis.TTLDaily
	}
	return &Cached{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: log.WithComponent("marketdata"),
	}
}

// History implements Provider
func (c *Cached) History(ctx context.Context, ticker string, start, end time.Time) (Series, error) {
	key := redis.HistoryKey(ticker, start.Format(DateLayout), end.Format(DateLayout))

	var series Series
	err := c.cache.GetOrSet(ctx, key, &series, c.ttl, func() (interface{}, error) {
		c.logger.WithField("ticker", ticker).Debug("history cache miss")
		s, err := c.next.History(ctx, ticker, start, end)
		if err != nil {
			return nil, err
		}
		// Empty answers are not cached
		if len(s.Points) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrNoData, ticker)
		}
		return s, nil
	})
	if err != nil {
		return Series{}, err
	}
	return series, nil
}
