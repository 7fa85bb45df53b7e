package cache

import (
	"context"
	"fmt"
	"time"

	"tftcrawler/ingestion/internal/metrics"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// storedMatchesKey is the Redis set holding ids of fully stored matches.
const storedMatchesKey = "tft:stored_match_ids"

// Config holds Redis connection configuration
type Config struct {
	Addr     string
	Password string
	DB       int
}

// MatchIDCache is an optional Redis fast-path for known-match-id checks.
// A miss always falls through to the database, so the worker runs fine
// without it.
type MatchIDCache struct {
	client *redis.Client
}

// NewMatchIDCache connects to Redis and verifies the connection.
func NewMatchIDCache(cfg Config) (*MatchIDCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	log.Info().Str("addr", cfg.Addr).Msg("Redis match-id cache connected")
	return &MatchIDCache{client: client}, nil
}

// Contains reports whether the match id is cached as stored. Errors are
// treated as a miss so a Redis outage never stalls the pipeline.
func (c *MatchIDCache) Contains(ctx context.Context, matchID string) bool {
	ok, err := c.client.SIsMember(ctx, storedMatchesKey, matchID).Result()
	if err != nil {
		log.Debug().Err(err).Msg("Cache lookup failed, treating as miss")
		metrics.RecordCacheMiss()
		return false
	}
	if ok {
		metrics.RecordCacheHit()
	} else {
		metrics.RecordCacheMiss()
	}
	return ok
}

// Add marks a match id as stored. Failures are logged and ignored.
func (c *MatchIDCache) Add(ctx context.Context, matchID string) {
	if err := c.client.SAdd(ctx, storedMatchesKey, matchID).Err(); err != nil {
		log.Debug().Err(err).Str("match_id", matchID).Msg("Failed to cache match id")
	}
}

// Warm seeds the cache with the full known-id set read from storage.
func (c *MatchIDCache) Warm(ctx context.Context, ids map[string]struct{}) {
	if len(ids) == 0 {
		return
	}
	members := make([]interface{}, 0, len(ids))
	for id := range ids {
		members = append(members, id)
	}
	if err := c.client.SAdd(ctx, storedMatchesKey, members...).Err(); err != nil {
		log.Warn().Err(err).Msg("Failed to warm match-id cache")
		return
	}
	log.Debug().Int("count", len(ids)).Msg("Match-id cache warmed")
}

// Close closes the Redis connection
func (c *MatchIDCache) Close() {
	if err := c.client.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close redis client")
	}
}
