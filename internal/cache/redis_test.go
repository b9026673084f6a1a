package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/outreach-monitor/internal/heyreach"
)

func setupTestCache(t *testing.T) (*ResultCache, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewWithClient(client, 15*time.Minute)
	t.Cleanup(func() { cache.Close() })

	return cache, mr
}

func sampleResult() *heyreach.AggregationResult {
	return &heyreach.AggregationResult{
		StartDate: "2025-01-18",
		EndDate:   "2025-01-24",
		Senders: map[string][]heyreach.WeekStats{
			"Alice": {{WeekStart: "2025-01-18", WeekEnd: "2025-01-24", ConnectionsSent: 12}},
		},
	}
}

func TestKey(t *testing.T) {
	assert.Equal(t, "performance:42:2025-01-18:2025-01-24", Key("42", "2025-01-18", "2025-01-24"))
	assert.Equal(t, "performance:all:2025-01-18:2025-01-24", Key("", "2025-01-18", "2025-01-24"))
}

func TestSetAndGet(t *testing.T) {
	cache, _ := setupTestCache(t)
	key := Key("", "2025-01-18", "2025-01-24")

	cache.Set(context.Background(), key, sampleResult())

	got, ok := cache.Get(context.Background(), key)
	require.True(t, ok)
	assert.Equal(t, sampleResult(), got)
}

func TestGetMiss(t *testing.T) {
	cache, _ := setupTestCache(t)

	_, ok := cache.Get(context.Background(), Key("", "2025-01-18", "2025-01-24"))
	assert.False(t, ok)
}

func TestGetExpiredEntry(t *testing.T) {
	cache, mr := setupTestCache(t)
	key := Key("", "2025-01-18", "2025-01-24")

	cache.Set(context.Background(), key, sampleResult())
	mr.FastForward(16 * time.Minute)

	_, ok := cache.Get(context.Background(), key)
	assert.False(t, ok)
}

func TestGetCorruptEntryDropped(t *testing.T) {
	cache, mr := setupTestCache(t)
	key := Key("", "2025-01-18", "2025-01-24")
	require.NoError(t, mr.Set(key, "{not json"))

	_, ok := cache.Get(context.Background(), key)
	assert.False(t, ok)

	// The corrupt entry is evicted
	assert.False(t, mr.Exists(key))
}

func TestNilCacheDegrades(t *testing.T) {
	var cache *ResultCache

	_, ok := cache.Get(context.Background(), "anything")
	assert.False(t, ok)
	cache.Set(context.Background(), "anything", sampleResult())
	assert.NoError(t, cache.Close())
	assert.Error(t, cache.Ping(context.Background()))
}
