package redis_adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"homiio/internal/core/domain"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "homiio:"

// SessionCache хранит проверенные Oxy-идентичности. Реализует port.SessionCachePort.
type SessionCache struct {
	client kv
}

func NewSessionCache(client *redis.Client) *SessionCache {
	return &SessionCache{client: client}
}

func (c *SessionCache) Get(ctx context.Context, key string) (*domain.Identity, bool, error) {
	data, err := c.client.Get(ctx, sessionKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("session cache get: %w", err)
	}

	var identity domain.Identity
	if err := json.Unmarshal(data, &identity); err != nil {
		// битая запись равна промаху
		return nil, false, nil
	}
	return &identity, true, nil
}

func (c *SessionCache) Set(ctx context.Context, key string, identity *domain.Identity, ttl time.Duration) error {
	data, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("session cache marshal: %w", err)
	}
	if err := c.client.Set(ctx, sessionKeyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("session cache set: %w", err)
	}
	return nil
}
