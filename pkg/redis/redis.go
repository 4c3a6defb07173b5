package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ikkim/storefront-backend/config"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// Connect opens and pings a Redis connection
func Connect(cfg *config.RedisConfig) (*redis.Client, error) {
	logger.Info("Initializing Redis connection", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
	})

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", err, map[string]interface{}{
			"host": cfg.Host,
			"port": cfg.Port,
		})
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established successfully")
	return client, nil
}

const pendingMarker = "pending"

// IdempotencyStore remembers which order an Idempotency-Key produced.
// A key is first reserved as pending, then bound to the committed order id.
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{client: client, ttl: ttl, prefix: "idempotency:order:"}
}

func (s *IdempotencyStore) key(k string) string {
	return s.prefix + k
}

// Reserve claims key for a new order. It returns acquired=true when the
// caller now owns the key, the stored order id when the key already
// completed, and (0, false, nil) while another request still holds it.
func (s *IdempotencyStore) Reserve(ctx context.Context, key string) (uint, bool, error) {
	acquired, err := s.client.SetNX(ctx, s.key(key), pendingMarker, s.ttl).Result()
	if err != nil {
		logger.Error("Failed to reserve idempotency key", err)
		return 0, false, err
	}
	if acquired {
		return 0, true, nil
	}

	val, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		// expired between SETNX and GET; try once more
		acquired, err = s.client.SetNX(ctx, s.key(key), pendingMarker, s.ttl).Result()
		return 0, acquired, err
	}
	if err != nil {
		logger.Error("Failed to read idempotency key", err)
		return 0, false, err
	}
	if val == pendingMarker {
		return 0, false, nil
	}

	orderID, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt idempotency record %q: %w", val, err)
	}
	return uint(orderID), false, nil
}

// Complete binds key to the committed order.
func (s *IdempotencyStore) Complete(ctx context.Context, key string, orderID uint) error {
	return s.client.Set(ctx, s.key(key), strconv.FormatUint(uint64(orderID), 10), s.ttl).Err()
}

// Release drops a pending reservation after a failed attempt so the client
// may retry with the same key.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}
