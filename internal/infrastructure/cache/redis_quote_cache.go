package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bibbank/rwa-lending/internal/domain/model"
)

// KeyPrefix namespaces cached results. Bump the version when QuoteResult's
// JSON shape changes.
const KeyPrefix = "rwa:quote:v1:"

// OpenRedis connects and pings with a short timeout.
func OpenRedis(addr, password string, db int) (*redis.Client, error) {
	r := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Ping(ctx).Err(); err != nil {
		_ = r.Close()
		return nil, err
	}
	return r, nil
}

// RedisQuoteCache implements port.QuoteCache on Redis strings holding JSON.
type RedisQuoteCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

// NewRedisQuoteCache creates a cache whose entries live for ttl.
func NewRedisQuoteCache(rdb redis.Cmdable, ttl time.Duration) *RedisQuoteCache {
	return &RedisQuoteCache{rdb: rdb, ttl: ttl}
}

// Get returns (result, true, nil) on a hit and (zero, false, nil) on a miss.
func (c *RedisQuoteCache) Get(ctx context.Context, key string) (model.QuoteResult, bool, error) {
	raw, err := c.rdb.Get(ctx, KeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.QuoteResult{}, false, nil
	}
	if err != nil {
		return model.QuoteResult{}, false, fmt.Errorf("redis get: %w", err)
	}

	var result model.QuoteResult
	if err := json.Unmarshal(raw, &result); err != nil {
		// A corrupt entry is treated as a miss and replaced on the next fill.
		return model.QuoteResult{}, false, fmt.Errorf("decode cached quote: %w", err)
	}
	return result, true, nil
}

// Set stores the result with the cache TTL.
func (c *RedisQuoteCache) Set(ctx context.Context, key string, result model.QuoteResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode quote: %w", err)
	}
	if err := c.rdb.Set(ctx, KeyPrefix+key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
