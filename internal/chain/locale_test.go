package chain_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/porco/internal/chain"
)

func TestResolveLocale(t *testing.T) {
	tests := []struct {
		name     string
		explicit string
		query    string
		expected string
	}{
		{
			name:     "explicit en wins",
			explicit: "en",
			query:    "我想去奥克兰",
			expected: "en",
		},
		{
			name:     "explicit zh wins",
			explicit: "zh",
			query:    "I want to visit Auckland",
			expected: "zh",
		},
		{
			name:     "CJK ideographs detected as zh",
			query:    "我想去皇后镇玩三天",
			expected: "zh",
		},
		{
			name:     "mixed text with any ideograph is zh",
			query:    "Queenstown 三天行程",
			expected: "zh",
		},
		{
			name:     "latin text defaults to en",
			query:    "I want to visit Auckland for 3 days",
			expected: "en",
		},
		{
			name:     "unsupported explicit locale falls back to detection",
			explicit: "fr",
			query:    "bonjour,请推荐餐厅",
			expected: "zh",
		},
		{
			name:     "empty query defaults to en",
			expected: "en",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, chain.ResolveLocale(tt.explicit, tt.query))
		})
	}
}
