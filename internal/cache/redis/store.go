// Package redis implements the key/value cache collaborator on Redis.
// Values are stored as JSON; TTL policy is supplied per call site.
package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/davidbz/porco/internal/domain"
	"github.com/davidbz/porco/internal/observability"
)

// TTL tiers for memoized artifacts: short for volatile data, long for
// stable reference data.
const (
	TTLShort = 5 * time.Minute
	TTLLong  = 24 * time.Hour
)

// Store implements domain.Cache on a Redis client.
type Store struct {
	client *redis.Client
	prefix string
}

// NewStore creates a cache store. The prefix namespaces every key.
func NewStore(client *redis.Client, prefix string) *Store {
	return &Store{
		client: client,
		prefix: prefix,
	}
}

// Key builds a deterministic cache key from its parts by hashing them.
func Key(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return hex.EncodeToString(hash[:])
}

// Get unmarshals the cached value for key into dest. Returns
// domain.ErrCacheMiss when the key is absent.
func (s *Store) Get(ctx context.Context, key string, dest any) error {
	data, err := s.client.Get(ctx, s.prefixed(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("cache get failed: %w", err)
	}

	if unmarshalErr := json.Unmarshal(data, dest); unmarshalErr != nil {
		return fmt.Errorf("failed to unmarshal cached value: %w", unmarshalErr)
	}

	return nil
}

// Set stores value under key with the given TTL.
func (s *Store) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	if setErr := s.client.Set(ctx, s.prefixed(key), data, ttl).Err(); setErr != nil {
		return fmt.Errorf("cache set failed: %w", setErr)
	}

	return nil
}

// Del removes key.
func (s *Store) Del(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefixed(key)).Err(); err != nil {
		return fmt.Errorf("cache del failed: %w", err)
	}
	return nil
}

// GetOrSet returns the cached value for key, or invokes fetch, stores the
// result with the given TTL and returns it through dest. A failing cache
// write is logged, not surfaced: the fetched value is still returned.
func (s *Store) GetOrSet(
	ctx context.Context,
	key string,
	ttl time.Duration,
	dest any,
	fetch func(context.Context) (any, error),
) error {
	err := s.Get(ctx, key, dest)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrCacheMiss) {
		observability.FromContext(ctx).Warn("cache get failed, fetching fresh value",
			observability.Error(err))
	}

	value, err := fetch(ctx)
	if err != nil {
		return err
	}

	if setErr := s.Set(ctx, key, value, ttl); setErr != nil {
		observability.FromContext(ctx).Warn("failed to store fetched value in cache",
			observability.Error(setErr))
	}

	// Round-trip through JSON so dest sees the same shape a cache hit would.
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal fetched value: %w", err)
	}
	if unmarshalErr := json.Unmarshal(data, dest); unmarshalErr != nil {
		return fmt.Errorf("failed to decode fetched value: %w", unmarshalErr)
	}

	return nil
}

func (s *Store) prefixed(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + ":" + key
}
