package redis_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/porco/internal/cache/redis"
)

func TestKey(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		require.Equal(t,
			redis.Key("intent", "en", "visit auckland"),
			redis.Key("intent", "en", "visit auckland"))
	})

	t.Run("part boundaries matter", func(t *testing.T) {
		// "ab"+"c" must not collide with "a"+"bc".
		require.NotEqual(t, redis.Key("ab", "c"), redis.Key("a", "bc"))
	})

	t.Run("distinct inputs produce distinct keys", func(t *testing.T) {
		require.NotEqual(t,
			redis.Key("intent", "en", "visit auckland"),
			redis.Key("intent", "zh", "visit auckland"))
	})
}
