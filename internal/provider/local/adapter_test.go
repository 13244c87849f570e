package local_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/porco/internal/domain"
	"github.com/davidbz/porco/internal/provider/local"
)

func TestProvider_CannedResponses(t *testing.T) {
	ctx := context.Background()
	provider := local.NewProvider()

	provider.EnqueueResponse("first")
	provider.EnqueueResponse("second")

	messages := []domain.ChatMessage{{Role: domain.RoleUser, Content: "hello"}}

	result, err := provider.Chat(ctx, messages, domain.GenerationOptions{})
	require.NoError(t, err)
	require.Equal(t, "first", result.Content)

	result, err = provider.Chat(ctx, messages, domain.GenerationOptions{})
	require.NoError(t, err)
	require.Equal(t, "second", result.Content)

	// Empty queue echoes the input.
	result, err = provider.Chat(ctx, messages, domain.GenerationOptions{})
	require.NoError(t, err)
	require.Equal(t, "hello", result.Content)
}

func TestProvider_UsageRecordedPerCall(t *testing.T) {
	ctx := context.Background()
	provider := local.NewProvider()
	provider.EnqueueResponse("one two three")

	_, err := provider.Complete(ctx, "four five", domain.GenerationOptions{})
	require.NoError(t, err)

	stats := provider.UsageStats()
	require.Equal(t, 1, stats.RequestCount)
	require.Equal(t, 2, stats.PromptTokens)
	require.Equal(t, 3, stats.CompletionTokens)
	require.Equal(t, 5, stats.TotalTokens)
	require.Zero(t, stats.EstimatedCost)

	provider.ResetUsageStats()
	require.Equal(t, domain.UsageStats{}, provider.UsageStats())
}

func TestProvider_StreamTerminatesWithMarker(t *testing.T) {
	ctx := context.Background()
	provider := local.NewProvider()
	provider.EnqueueResponse("alpha beta")

	chunks, err := provider.Stream(ctx, nil, domain.GenerationOptions{})
	require.NoError(t, err)

	var collected []domain.StreamChunk
	for chunk := range chunks {
		collected = append(collected, chunk)
	}

	require.Len(t, collected, 3)
	require.Equal(t, "alpha ", collected[0].Content)
	require.Equal(t, "beta", collected[1].Content)

	last := collected[len(collected)-1]
	require.True(t, last.IsComplete)
	require.Empty(t, last.Content)
}

func TestProvider_GenerateJSON(t *testing.T) {
	ctx := context.Background()

	t.Run("valid payload passes through", func(t *testing.T) {
		provider := local.NewProvider()
		provider.EnqueueResponse(`{"type":"greeting"}`)

		raw, err := provider.GenerateJSON(ctx, nil, domain.GenerationOptions{})
		require.NoError(t, err)
		require.JSONEq(t, `{"type":"greeting"}`, string(raw))
	})

	t.Run("fenced payload is cleaned", func(t *testing.T) {
		provider := local.NewProvider()
		provider.EnqueueResponse("```json\n{\"ok\":true}\n```")

		raw, err := provider.GenerateJSON(ctx, nil, domain.GenerationOptions{})
		require.NoError(t, err)
		require.JSONEq(t, `{"ok":true}`, string(raw))
	})

	t.Run("non-JSON payload yields typed error", func(t *testing.T) {
		provider := local.NewProvider()
		provider.EnqueueResponse("I cannot answer that in JSON.")

		_, err := provider.GenerateJSON(ctx, nil, domain.GenerationOptions{})

		var malformed *domain.MalformedOutputError
		require.ErrorAs(t, err, &malformed)
		require.Equal(t, domain.ProviderLocal, malformed.Provider)
		require.Contains(t, malformed.Raw, "I cannot answer")
	})
}

func TestProvider_IsAvailable(t *testing.T) {
	provider := local.NewProvider()
	require.True(t, provider.IsAvailable(context.Background()))
	require.Equal(t, domain.ProviderLocal, provider.Name())
}
