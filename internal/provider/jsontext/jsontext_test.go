package jsontext_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/porco/internal/domain"
	"github.com/davidbz/porco/internal/provider/jsontext"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "bare JSON unchanged",
			input:    `{"a":1}`,
			expected: `{"a":1}`,
		},
		{
			name:     "json fence stripped",
			input:    "```json\n{\"a\":1}\n```",
			expected: `{"a":1}`,
		},
		{
			name:     "anonymous fence stripped",
			input:    "```\n{\"a\":1}\n```",
			expected: `{"a":1}`,
		},
		{
			name:     "surrounding whitespace trimmed",
			input:    "  \n {\"a\":1} \n ",
			expected: `{"a":1}`,
		},
		{
			name:     "multiline payload survives",
			input:    "```json\n{\n  \"a\": 1,\n  \"b\": 2\n}\n```",
			expected: "{\n  \"a\": 1,\n  \"b\": 2\n}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, jsontext.Clean(tt.input))
		})
	}
}

func TestAppendInstruction(t *testing.T) {
	t.Run("appends to the final message", func(t *testing.T) {
		messages := []domain.ChatMessage{
			{Role: domain.RoleSystem, Content: "system"},
			{Role: domain.RoleUser, Content: "question"},
		}

		out := jsontext.AppendInstruction(messages)
		require.Len(t, out, 2)
		require.Equal(t, "system", out[0].Content)
		require.Contains(t, out[1].Content, "question")
		require.Contains(t, out[1].Content, jsontext.Instruction)

		// Input is not mutated.
		require.Equal(t, "question", messages[1].Content)
	})

	t.Run("empty input gains a user message", func(t *testing.T) {
		out := jsontext.AppendInstruction(nil)
		require.Len(t, out, 1)
		require.Equal(t, domain.RoleUser, out[0].Role)
		require.Equal(t, jsontext.Instruction, out[0].Content)
	})
}
