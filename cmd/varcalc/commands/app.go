package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/wonny/varcalc/internal/external/yahoo"
	"github.com/wonny/varcalc/internal/marketdata"
	"github.com/wonny/varcalc/pkg/config"
	"github.com/wonny/varcalc/pkg/httputil"
	"github.com/wonny/varcalc/pkg/logger"
	"github.com/wonny/varcalc/pkg/redis"
)

// app holds the wired dependencies shared by every command
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	yahoo    *yahoo.Client
	redis    *redis.Client
	cache    *redis.Cache
	provider marketdata.Provider
}

// newApp loads config and wires logger, HTTP client, Yahoo client and the
// optional Redis cache. The caller must call close.
func newApp() (*app, error) {
	cfg, err := config.LoadFrom(configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	log := logger.New(cfg)

	httpClient := httputil.New(cfg, log)
	yahooClient := yahoo.NewClient(httpClient, cfg.Yahoo.BaseURL, log)

	redisClient, err := redis.New(cfg)
	if err != nil {
		// the cache is optional; run uncached rather than fail
		log.WithError(err).Warn("Redis unavailable, continuing without cache")
		cfg.Redis.Enabled = false
		redisClient, _ = redis.New(cfg)
	}
	cache := redis.NewCache(redisClient, "varcalc")

	var provider marketdata.Provider = yahooClient
	if redisClient.Enabled() {
		provider = marketdata.NewCached(yahooClient, cache, cfg.Redis.CacheTTL, log)
		log.Debug("Price history cache enabled")
	}

	return &app{
		cfg:      cfg,
		log:      log,
		yahoo:    yahooClient,
		redis:    redisClient,
		cache:    cache,
		provider: provider,
	}, nil
}

func (a *app) close() {
	if err := a.redis.Close(); err != nil {
		a.log.WithError(err).Warn("Failed to close redis")
	}
}

// fxRate resolves the conversion factor from base to currency, cached for
// a short TTL when Redis is enabled
func (a *app) fxRate(ctx context.Context, base, currency string) (float64, error) {
	base = strings.ToUpper(base)
	currency = strings.ToUpper(currency)
	if base == currency {
		return 1, nil
	}

	var rate float64
	err := a.cache.GetOrSet(ctx, redis.FXKey(base, currency), &rate, redis.TTLShort, func() (interface{}, error) {
		return a.yahoo.FXRate(ctx, base, currency)
	})
	if err != nil {
		return 0, err
	}

	a.log.WithFields(map[string]interface{}{
		"from": base,
		"to":   currency,
		"rate": rate,
	}).Info("Resolved FX rate")

	return rate, nil
}
