package anthropic //nolint:testpackage // Need access to the unexported wire conversion

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/porco/internal/domain"
)

func TestToWireRequest(t *testing.T) {
	provider := &Provider{}

	t.Run("system messages concatenate into one preamble", func(t *testing.T) {
		messages := []domain.ChatMessage{
			{Role: domain.RoleSystem, Content: "You are a travel assistant."},
			{Role: domain.RoleSystem, Content: "Answer in JSON."},
			{Role: domain.RoleUser, Content: "Plan a trip."},
		}

		req := provider.toWireRequest(messages, domain.GenerationOptions{Model: "m"}.WithDefaults())

		require.Equal(t, "You are a travel assistant.\n\nAnswer in JSON.", req.System)
		require.Len(t, req.Messages, 1)
		require.Equal(t, "user", req.Messages[0].Role)
	})

	t.Run("function role folds into a user turn", func(t *testing.T) {
		messages := []domain.ChatMessage{
			{Role: domain.RoleUser, Content: "What's the weather?"},
			{Role: domain.RoleFunction, Content: `{"temp": 18}`},
			{Role: domain.RoleAssistant, Content: "It's mild."},
		}

		req := provider.toWireRequest(messages, domain.GenerationOptions{})

		require.Empty(t, req.System)
		require.Equal(t, []string{"user", "user", "assistant"}, []string{
			req.Messages[0].Role, req.Messages[1].Role, req.Messages[2].Role,
		})
	})

	t.Run("options map onto the wire request", func(t *testing.T) {
		opts := domain.GenerationOptions{
			Model:       "claude-3-5-sonnet-20241022",
			Temperature: 0.3,
			MaxTokens:   500,
			TopP:        0.9,
			Stop:        []string{"END"},
		}

		req := provider.toWireRequest(nil, opts)

		require.Equal(t, "claude-3-5-sonnet-20241022", req.Model)
		require.Equal(t, 0.3, req.Temperature)
		require.Equal(t, 500, req.MaxTokens)
		require.Equal(t, 0.9, req.TopP)
		require.Equal(t, []string{"END"}, req.StopSequences)
	})
}
