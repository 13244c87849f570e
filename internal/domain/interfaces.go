package domain

import (
	"context"
	"encoding/json"
	"time"
)

// Provider is the uniform contract over heterogeneous text-generation
// backends. Every successful Complete/Chat/GenerateJSON call increments the
// provider's usage stats exactly once, using the token counts reported by
// the backend response.
type Provider interface {
	// Complete sends a single-turn completion request.
	Complete(ctx context.Context, prompt string, opts GenerationOptions) (*CompletionResult, error)

	// Chat sends a multi-turn completion request. Backends that require an
	// isolated system channel concatenate all system-role messages in order
	// into a single preamble before dispatch.
	Chat(ctx context.Context, messages []ChatMessage, opts GenerationOptions) (*CompletionResult, error)

	// Stream sends a chat request and returns a finite stream of chunks.
	// The stream terminates with an explicit completion marker chunk; the
	// consumer may stop receiving early without leaking the connection.
	Stream(ctx context.Context, messages []ChatMessage, opts GenerationOptions) (<-chan StreamChunk, error)

	// GenerateJSON appends a JSON-only instruction to the final message,
	// requests the backend's structured-output mode when available, and
	// parses the response as JSON. A non-JSON response yields a
	// *MalformedOutputError; the calling chain decides on fallback policy.
	GenerateJSON(ctx context.Context, messages []ChatMessage, opts GenerationOptions) (json.RawMessage, error)

	// IsAvailable performs a minimal round-trip request. Any failure yields
	// false, never an error.
	IsAvailable(ctx context.Context) bool

	// Name returns the provider tag.
	Name() ProviderType

	// UsageStats returns the running totals for this provider instance.
	UsageStats() UsageStats

	// ResetUsageStats zeroes the running totals.
	ResetUsageStats()
}

// ProviderRegistry maps provider tags to implementations. The last
// registration for a tag wins.
type ProviderRegistry interface {
	Register(providerType ProviderType, provider Provider)
	Get(providerType ProviderType) (Provider, error)
	List() []ProviderType
}

// Cache is the key/value collaborator used to memoize provider calls and
// computed artifacts. TTL policy is supplied per call site, never by the
// cache itself.
type Cache interface {
	// Get unmarshals the cached value for key into dest. Returns
	// ErrCacheMiss when the key is absent.
	Get(ctx context.Context, key string, dest any) error

	// Set stores value under key with the given TTL.
	Set(ctx context.Context, key string, value any, ttl time.Duration) error

	// Del removes key.
	Del(ctx context.Context, key string) error

	// GetOrSet returns the cached value for key, or invokes fetch, stores
	// the result and returns it.
	GetOrSet(ctx context.Context, key string, ttl time.Duration, dest any, fetch func(context.Context) (any, error)) error
}
