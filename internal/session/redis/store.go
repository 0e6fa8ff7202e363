package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"regnify/internal/config"
	"regnify/internal/port"
)

// incrWithTTL increments a counter and sets its expiry only when the key is new,
// so the failure window starts at the first failure.
var incrWithTTL = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`)

// Store is a Redis-backed SessionStore shared by all server instances.
type Store struct {
	client *redis.Client
	prefix string
}

// NewClient connects to Redis and verifies the connection.
func NewClient(cfg *config.SessionConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// New wraps an existing client. Keys are namespaced under prefix.
func New(client *redis.Client, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

var _ port.SessionStore = (*Store)(nil)

func (s *Store) failuresKey(username string) string { return s.prefix + ":login:fail:" + username }
func (s *Store) lockKey(username string) string     { return s.prefix + ":login:lock:" + username }
func (s *Store) revokedKey(tokenID string) string   { return s.prefix + ":jwt:revoked:" + tokenID }

func (s *Store) IncrementFailures(ctx context.Context, username string, ttl time.Duration) (int64, error) {
	n, err := incrWithTTL.Run(ctx, s.client, []string{s.failuresKey(username)}, ttl.Milliseconds()).Int64()
	if err != nil {
		return 0, fmt.Errorf("redis.IncrementFailures: %w", err)
	}
	return n, nil
}

func (s *Store) ResetFailures(ctx context.Context, username string) error {
	if err := s.client.Del(ctx, s.failuresKey(username)).Err(); err != nil {
		return fmt.Errorf("redis.ResetFailures: %w", err)
	}
	return nil
}

func (s *Store) Lock(ctx context.Context, username string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.lockKey(username), "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis.Lock: %w", err)
	}
	return nil
}

func (s *Store) Unlock(ctx context.Context, username string) error {
	if err := s.client.Del(ctx, s.lockKey(username)).Err(); err != nil {
		return fmt.Errorf("redis.Unlock: %w", err)
	}
	return nil
}

func (s *Store) LockedFor(ctx context.Context, username string) (time.Duration, error) {
	ttl, err := s.client.PTTL(ctx, s.lockKey(username)).Result()
	if err != nil {
		return 0, fmt.Errorf("redis.LockedFor: %w", err)
	}
	// -2 missing key, -1 no expiry; neither is an active lock here
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}

func (s *Store) RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if tokenID == "" || ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, s.revokedKey(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis.RevokeToken: %w", err)
	}
	return nil
}

func (s *Store) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	_, err := s.client.Get(ctx, s.revokedKey(tokenID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis.IsTokenRevoked: %w", err)
	}
	return true, nil
}
