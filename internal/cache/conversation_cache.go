package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"greatlibrary/internal/model"
)

// ConversationCache keeps the bounded ask history, one serialized list per
// (user, session) key. Sessions with the same name never cross user accounts.
type ConversationCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewConversationCache(client *redisv9.Client, ttl time.Duration) *ConversationCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ConversationCache{client: client, ttl: ttl}
}

// Get returns the stored conversation for the user's session; missing or
// malformed history reads as empty.
func (c *ConversationCache) Get(ctx context.Context, userID uint, session string) ([]model.Turn, error) {
	raw, err := c.client.Get(ctx, c.key(userID, session)).Result()
	if err == redisv9.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get conversation failed: %w", err)
	}

	var turns []model.Turn
	if err := json.Unmarshal([]byte(raw), &turns); err != nil {
		return nil, nil
	}
	return turns, nil
}

func (c *ConversationCache) Set(ctx context.Context, userID uint, session string, turns []model.Turn) error {
	payload, err := json.Marshal(turns)
	if err != nil {
		return fmt.Errorf("marshal conversation failed: %w", err)
	}
	if err := c.client.Set(ctx, c.key(userID, session), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set conversation failed: %w", err)
	}
	return nil
}

func (c *ConversationCache) Clear(ctx context.Context, userID uint, session string) error {
	if err := c.client.Del(ctx, c.key(userID, session)).Err(); err != nil {
		return fmt.Errorf("redis delete conversation failed: %w", err)
	}
	return nil
}

func (c *ConversationCache) key(userID uint, session string) string {
	return "greatlibrary:history:" + strconv.FormatUint(uint64(userID), 10) + ":" + session
}
