package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okian/podium/pkg/logger"
)

// RedisStore implements Store over a Redis server, matching the cache
// protocol: GET key -> value|absent, SET key value TTL. Redis owns
// deletion through the TTL; entries are never manually evicted.
type RedisStore struct {
	client *redis.Client
	logger logger.Logger
}

// NewRedisStore creates a store over the given Redis connection settings.
func NewRedisStore(addr, password string, db int) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		logger: logger.Get().Named("cache"),
	}
}

// Get returns the entry for key, or absent. Store errors are a miss.
func (s *RedisStore) Get(ctx context.Context, key string) (Entry, bool) {
	key = Key(key)
	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false
	}
	if err != nil {
		s.logger.Warn(ctx, "cache get failed, treating as miss",
			logger.String("key", key), logger.Error(err))
		return Entry{}, false
	}
	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		s.logger.Warn(ctx, "cache entry malformed, treating as miss",
			logger.String("key", key), logger.Error(err))
		return Entry{}, false
	}
	s.logger.Debug(ctx, "returned cache entry", logger.String("key", key))
	return e, true
}

// Set stores payload under key with the given lifespan. Failures are
// logged and swallowed; the next read simply misses.
func (s *RedisStore) Set(ctx context.Context, key string, payload any, lifespan time.Duration) {
	key = Key(key)
	body, err := json.Marshal(payload)
	if err != nil {
		s.logger.Warn(ctx, "cache payload not serializable",
			logger.String("key", key), logger.Error(err))
		return
	}
	raw, err := json.Marshal(Entry{Payload: body, CreatedAt: time.Now(), Lifespan: lifespan})
	if err != nil {
		s.logger.Warn(ctx, "cache entry not serializable",
			logger.String("key", key), logger.Error(err))
		return
	}
	if err := s.client.Set(ctx, key, raw, lifespan).Err(); err != nil {
		s.logger.Warn(ctx, "cache set failed",
			logger.String("key", key), logger.Error(err))
		return
	}
	s.logger.Debug(ctx, "registered cache entry", logger.String("key", key))
}

// Has reports whether key currently exists. Store errors read as absent.
func (s *RedisStore) Has(ctx context.Context, key string) bool {
	n, err := s.client.Exists(ctx, Key(key)).Result()
	if err != nil {
		return false
	}
	return n > 0
}

// Close releases the underlying connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
