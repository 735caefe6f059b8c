package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisStore is a Redis-backed KV implementation. Keys are namespaced under
// a prefix so several deployments can share one instance.
type RedisStore struct {
	client *redis.Client
	config *RedisConfig
	logger *zap.Logger
}

// RedisConfig contains Redis connection configuration
type RedisConfig struct {
	URL            string
	KeyPrefix      string
	MaxConnections int
	MinIdleConns   int
	MaxItemBytes   int64
}

// NewRedisStore creates a Redis-backed store and verifies connectivity
func NewRedisStore(config *RedisConfig, logger *zap.Logger) (*RedisStore, error) {
	opts, err := redis.ParseURL(config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opts.PoolSize = config.MaxConnections
	opts.MinIdleConns = config.MinIdleConns

	client := redis.NewClient(opts)

	s := &RedisStore{
		client: client,
		config: config,
		logger: logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis store initialized",
		zap.String("redis_url", maskRedisURL(config.URL)),
		zap.String("key_prefix", config.KeyPrefix),
		zap.Int("max_connections", config.MaxConnections))

	return s, nil
}

func (s *RedisStore) namespaced(key string) string {
	return s.config.KeyPrefix + ":" + key
}

func (s *RedisStore) Get(ctx context.Context, keys []string) (map[string][]byte, error) {
	if len(keys) == 0 {
		return map[string][]byte{}, nil
	}

	namespaced := make([]string, len(keys))
	for i, k := range keys {
		namespaced[i] = s.namespaced(k)
	}

	values, err := s.client.MGet(ctx, namespaced...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget failed: %w", err)
	}

	out := make(map[string][]byte)
	for i, v := range values {
		if v == nil {
			continue
		}
		str, ok := v.(string)
		if !ok {
			s.logger.Warn("Unexpected value type in Redis", zap.String("key", keys[i]))
			continue
		}
		out[keys[i]] = []byte(str)
	}
	return out, nil
}

func (s *RedisStore) Set(ctx context.Context, items map[string][]byte) error {
	if s.config.MaxItemBytes > 0 {
		for k, v := range items {
			if int64(len(k)+len(v)) > s.config.MaxItemBytes {
				return ErrItemTooLarge
			}
		}
	}

	pipe := s.client.Pipeline()
	for k, v := range items {
		pipe.Set(ctx, s.namespaced(k), v, 0)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis pipeline set failed: %w", err)
	}
	return nil
}

func (s *RedisStore) Remove(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	namespaced := make([]string, len(keys))
	for i, k := range keys {
		namespaced[i] = s.namespaced(k)
	}

	if err := s.client.Del(ctx, namespaced...).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}

func (s *RedisStore) BytesInUse(ctx context.Context, key string) (int64, error) {
	if key != "" {
		n, err := s.client.StrLen(ctx, s.namespaced(key)).Result()
		if err != nil {
			return 0, fmt.Errorf("redis strlen failed: %w", err)
		}
		if n == 0 {
			return 0, nil
		}
		return n + int64(len(key)), nil
	}

	var total int64
	iter := s.client.Scan(ctx, 0, s.config.KeyPrefix+":*", 0).Iterator()
	for iter.Next(ctx) {
		full := iter.Val()
		n, err := s.client.StrLen(ctx, full).Result()
		if err != nil {
			return 0, fmt.Errorf("redis strlen failed: %w", err)
		}
		total += n + int64(len(strings.TrimPrefix(full, s.config.KeyPrefix+":")))
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("redis scan failed: %w", err)
	}
	return total, nil
}

func (s *RedisStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// maskRedisURL masks credentials in a Redis URL for logging
func maskRedisURL(url string) string {
	if !strings.Contains(url, "@") {
		return url
	}
	parts := strings.SplitN(url, "@", 2)
	userPart := parts[0]
	if i := strings.LastIndex(userPart, ":"); i > strings.Index(userPart, "//") {
		userPart = userPart[:i+1] + "***"
	}
	return userPart + "@" + parts[1]
}
