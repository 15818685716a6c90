package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/varcalc/pkg/config"
)

func disabledCache(t *testing.T) *Cache {
	t.Helper()
	client, err := New(&config.Config{Redis: config.RedisConfig{Enabled: false}})
	require.NoError(t, err)
	require.False(t, client.Enabled())
	return NewCache(client, "test")
}

func TestNewClient_Disabled(t *testing.T) {
	client, err := New(&config.Config{Redis: config.RedisConfig{Enabled: false}})
	require.NoError(t, err)

	assert.False(t, client.Enabled())
	assert.NoError(t, client.Close())
}

func TestCache_DisabledGetIsMiss(t *testing.T) {
	cache := disabledCache(t)

	var result string
	found, err := cache.Get(context.Background(), "key", &result)
	require.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, cache.Set(context.Background(), "key", "value", TTLShort))
	assert.NoError(t, cache.Delete(context.Background(), "key"))
}

func TestCache_DisabledGetOrSetCallsLoader(t *testing.T) {
	cache := disabledCache(t)

	type payload struct {
		Prices []float64 `json:"prices"`
	}

	calls := 0
	var got payload
	err := cache.GetOrSet(context.Background(), "k", &got, TTLDaily, func() (interface{}, error) {
		calls++
		return payload{Prices: []float64{1, 2, 3}}, nil
	})
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, []float64{1, 2, 3}, got.Prices)
}

func TestCache_GetOrSetPropagatesLoaderError(t *testing.T) {
	cache := disabledCache(t)

	boom := errors.New("provider down")
	var got []float64
	err := cache.GetOrSet(context.Background(), "k", &got, TTLDaily, func() (interface{}, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
}

// unreachableClient points at a closed port so every command fails fast
func unreachableClient(t *testing.T) *Client {
	t.Helper()
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	client := NewFromRedis(rdb)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestNewFromRedis(t *testing.T) {
	assert.False(t, NewFromRedis(nil).Enabled())

	client := unreachableClient(t)
	assert.True(t, client.Enabled())
	assert.NotNil(t, client.Redis())
}

func TestCache_UnreachableGetFails(t *testing.T) {
	cache := NewCache(unreachableClient(t), "test")

	var result string
	found, err := cache.Get(context.Background(), "key", &result)
	assert.Error(t, err)
	assert.False(t, found)
}

func TestCache_UnreachableGetOrSetStillLoads(t *testing.T) {
	cache := NewCache(unreachableClient(t), "test")

	calls := 0
	var got []float64
	err := cache.GetOrSet(context.Background(), "k", &got, TTLDaily, func() (interface{}, error) {
		calls++
		return []float64{4, 5}, nil
	})
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, []float64{4, 5}, got)
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "history:AAPL:2024-01-01:2024-06-30", HistoryKey("aapl", "2024-01-01", "2024-06-30"))
	assert.Equal(t, "fx:USDEUR", FXKey("usd", "eur"))
	assert.Equal(t, "p:cache:x", NewCache(&Client{}, "p").key("x"))
}
