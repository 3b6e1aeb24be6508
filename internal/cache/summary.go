package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/skillpath/interview-engine/internal/models"
)

// SummaryCache stores computed session summaries in Redis with a short
// TTL. Feedback submission invalidates the session's entry, so the TTL
// only bounds staleness against out-of-band writes.
type SummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// Config holds the Redis connection settings
type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// New connects to Redis and verifies the connection
func New(ctx context.Context, cfg Config) (*SummaryCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &SummaryCache{client: client, ttl: ttl}, nil
}

// NewWithClient wraps an existing client, mainly for tests
func NewWithClient(client *redis.Client, ttl time.Duration) *SummaryCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &SummaryCache{client: client, ttl: ttl}
}

func summaryKey(sessionID string) string {
	return "interview:summary:" + sessionID
}

// GetSessionSummary returns the cached summary, or (nil, nil) on a miss
func (c *SummaryCache) GetSessionSummary(ctx context.Context, sessionID string) (*models.SessionSummary, error) {
	data, err := c.client.Get(ctx, summaryKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read summary cache: %w", err)
	}

	var summary models.SessionSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		// Corrupt entry, treat as a miss
		c.client.Del(ctx, summaryKey(sessionID))
		return nil, nil
	}
	return &summary, nil
}

// SetSessionSummary stores the summary under the session's key
func (c *SummaryCache) SetSessionSummary(ctx context.Context, summary *models.SessionSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	if err := c.client.Set(ctx, summaryKey(summary.SessionID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write summary cache: %w", err)
	}
	return nil
}

// InvalidateSession drops the cached summary for a session
func (c *SummaryCache) InvalidateSession(ctx context.Context, sessionID string) error {
	if err := c.client.Del(ctx, summaryKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate summary cache: %w", err)
	}
	return nil
}

// Ping verifies the Redis connection
func (c *SummaryCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the Redis client
func (c *SummaryCache) Close() error {
	return c.client.Close()
}
