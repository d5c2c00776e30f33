package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ecomind/tracker-service/internal/models"
)

const leaderboardKeyPrefix = "leaderboard:top"

// LeaderboardCache keeps the score ranking in Redis in front of MySQL. A nil
// client disables caching; lookups then always miss.
type LeaderboardCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewLeaderboardCache(rdb *redis.Client, ttl time.Duration) *LeaderboardCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &LeaderboardCache{rdb: rdb, ttl: ttl}
}

// Get returns the cached ranking for the given limit. ok is false on miss,
// on decode failure, and when Redis is unavailable.
func (c *LeaderboardCache) Get(ctx context.Context, limit int) ([]models.LeaderboardEntry, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}

	raw, err := c.rdb.Get(ctx, c.key(limit)).Result()
	if err != nil {
		return nil, false
	}

	var entries []models.LeaderboardEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, false
	}
	return entries, true
}

// Set stores the ranking with the cache TTL. Failures are ignored; the cache
// is an optimization, not a system of record.
func (c *LeaderboardCache) Set(ctx context.Context, limit int, entries []models.LeaderboardEntry) {
	if c == nil || c.rdb == nil {
		return
	}

	raw, err := json.Marshal(entries)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, c.key(limit), raw, c.ttl).Err()
}

// Invalidate drops all cached rankings. Called after any score mutation.
func (c *LeaderboardCache) Invalidate(ctx context.Context) {
	if c == nil || c.rdb == nil {
		return
	}

	iter := c.rdb.Scan(ctx, 0, leaderboardKeyPrefix+":*", 0).Iterator()
	for iter.Next(ctx) {
		_ = c.rdb.Del(ctx, iter.Val()).Err()
	}
}

func (c *LeaderboardCache) key(limit int) string {
	return fmt.Sprintf("%s:%d", leaderboardKeyPrefix, limit)
}
