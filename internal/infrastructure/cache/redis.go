package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/labelscan/backend/internal/domain"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "product:"

// RedisStore keeps products in Redis as JSON, keyed by barcode.
// A zero TTL stores keys without expiry.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to the Redis server at redisURL and verifies it
// answers a PING within two seconds
func NewRedisStore(ctx context.Context, redisURL string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: %v", domain.ErrCacheUnavailable, err)
	}

	return NewRedisStoreWithClient(client, ttl), nil
}

// NewRedisStoreWithClient wraps an existing client
func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Get retrieves a product from Redis
func (s *RedisStore) Get(ctx context.Context, barcode string) (*domain.Product, error) {
	data, err := s.client.Get(ctx, redisKey(barcode)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrCacheMiss
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrCacheUnavailable, err)
	}

	var product domain.Product
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, fmt.Errorf("decode cached product %q: %w", barcode, err)
	}

	return &product, nil
}

// Set stores a product in Redis
func (s *RedisStore) Set(ctx context.Context, barcode string, product *domain.Product) error {
	if product == nil {
		return domain.ErrInvalidRequest
	}

	data, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("encode product %q: %w", barcode, err)
	}

	if err := s.client.Set(ctx, redisKey(barcode), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCacheUnavailable, err)
	}

	return nil
}

// Close releases the Redis connection pool
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func redisKey(barcode string) string {
	return redisKeyPrefix + barcode
}
