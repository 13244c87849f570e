package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/porco/internal/domain"
)

func TestStandardCostCalculator_Calculate(t *testing.T) {
	registry := domain.NewInMemoryPricingRegistry()

	err := registry.RegisterPricing("test-model", domain.PricingConfig{
		InputCostPerMTok:  2.50,
		OutputCostPerMTok: 10.00,
	})
	require.NoError(t, err)

	calculator := domain.NewStandardCostCalculator(registry)

	tests := []struct {
		name         string
		model        string
		usage        domain.TokenUsage
		expectedCost float64
		expectError  bool
	}{
		{
			name:  "calculate cost for known model",
			model: "test-model",
			usage: domain.TokenUsage{
				PromptTokens:     1_000_000,
				CompletionTokens: 500_000,
			},
			expectedCost: 7.50, // (1M/1M * 2.50) + (0.5M/1M * 10.00)
			expectError:  false,
		},
		{
			name:  "unknown model returns zero cost",
			model: "unknown-model",
			usage: domain.TokenUsage{
				PromptTokens:     1_000_000,
				CompletionTokens: 500_000,
			},
			expectedCost: 0,
			expectError:  false,
		},
		{
			name:         "empty model returns error",
			model:        "",
			usage:        domain.TokenUsage{},
			expectedCost: 0,
			expectError:  true,
		},
		{
			name:  "zero tokens returns zero cost",
			model: "test-model",
			usage: domain.TokenUsage{
				PromptTokens:     0,
				CompletionTokens: 0,
			},
			expectedCost: 0,
			expectError:  false,
		},
		{
			name:  "partial tokens calculation",
			model: "test-model",
			usage: domain.TokenUsage{
				PromptTokens:     250_000,
				CompletionTokens: 100_000,
			},
			expectedCost: 1.625, // (0.25 * 2.50) + (0.1 * 10.00)
			expectError:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cost, err := calculator.Calculate(tt.model, tt.usage)
			if tt.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.InDelta(t, tt.expectedCost, cost, 1e-9)
		})
	}
}

func TestInMemoryPricingRegistry_DefaultTier(t *testing.T) {
	registry := domain.NewInMemoryPricingRegistry()

	require.NoError(t, registry.RegisterPricing("known", domain.PricingConfig{
		InputCostPerMTok:  1.00,
		OutputCostPerMTok: 2.00,
	}))
	require.NoError(t, registry.RegisterPricing(domain.DefaultPricingTier, domain.PricingConfig{
		InputCostPerMTok:  0.10,
		OutputCostPerMTok: 0.20,
	}))

	t.Run("known model resolves its own pricing", func(t *testing.T) {
		pricing, err := registry.GetPricing("known")
		require.NoError(t, err)
		require.Equal(t, 1.00, pricing.InputCostPerMTok)
	})

	t.Run("unknown model resolves the default tier", func(t *testing.T) {
		pricing, err := registry.GetPricing("brand-new-model")
		require.NoError(t, err)
		require.Equal(t, 0.10, pricing.InputCostPerMTok)
		require.Equal(t, 0.20, pricing.OutputCostPerMTok)
	})

	t.Run("empty model name is rejected on registration", func(t *testing.T) {
		require.Error(t, registry.RegisterPricing("", domain.PricingConfig{}))
	})

	t.Run("no default tier yields an error", func(t *testing.T) {
		empty := domain.NewInMemoryPricingRegistry()
		_, err := empty.GetPricing("anything")
		require.Error(t, err)
	})
}
