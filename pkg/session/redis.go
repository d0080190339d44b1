package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "bountyhub:session:"
	stateKeyPrefix   = "bountyhub:oauth-state:"
)

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	// Addr is the Redis server address (host:port).
	Addr string

	// Password is optional.
	Password string

	// DB selects the Redis logical database.
	DB int
}

// RedisStore is a Redis-backed session store for multi-instance
// deployments. Expiration is delegated to Redis key TTLs.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	data, err := s.client.Get(ctx, sessionKeyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	if sess.IsExpired() {
		// Redis TTL should already have evicted it, but clock skew between
		// writer and Redis can leave a stale entry briefly alive.
		s.client.Del(ctx, sessionKeyPrefix+sessionID)
		return nil, ErrExpired
	}
	return &sess, nil
}

func (s *RedisStore) Set(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return ErrExpired
	}
	if err := s.client.Set(ctx, sessionKeyPrefix+sess.ID, data, ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Cleanup is a no-op: Redis evicts expired keys itself.
func (s *RedisStore) Cleanup(ctx context.Context) error { return nil }

// Close releases the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ Store = (*RedisStore)(nil)

// RedisStateStore stores OAuth state tokens in Redis so the callback can
// land on a different instance than the one that started the flow.
type RedisStateStore struct {
	client *redis.Client
}

// NewRedisStateStore creates a state store sharing the given Redis config.
func NewRedisStateStore(ctx context.Context, cfg RedisConfig) (*RedisStateStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return &RedisStateStore{client: client}, nil
}

func (s *RedisStateStore) Generate(ctx context.Context, ttl time.Duration) (string, error) {
	state, err := GenerateState()
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, stateKeyPrefix+state, "1", ttl).Err(); err != nil {
		return "", fmt.Errorf("store state token: %w", err)
	}
	return state, nil
}

func (s *RedisStateStore) Validate(ctx context.Context, state string) (bool, error) {
	// GETDEL makes validation atomic: two concurrent callbacks with the
	// same token can't both succeed.
	err := s.client.GetDel(ctx, stateKeyPrefix+state).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("validate state token: %w", err)
	}
	return true, nil
}

// Cleanup is a no-op: Redis evicts expired keys itself.
func (s *RedisStateStore) Cleanup(ctx context.Context) error { return nil }

// Close releases the Redis connection.
func (s *RedisStateStore) Close() error {
	return s.client.Close()
}

var _ StateStore = (*RedisStateStore)(nil)
