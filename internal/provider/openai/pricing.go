package openai

import "github.com/davidbz/porco/internal/domain"

// Pricing in USD per million tokens.
const (
	gpt4oInputCostPerMTok  = 2.50
	gpt4oOutputCostPerMTok = 10.00

	gpt4oMiniInputCostPerMTok  = 0.15
	gpt4oMiniOutputCostPerMTok = 0.60

	gpt4TurboInputCostPerMTok  = 10.00
	gpt4TurboOutputCostPerMTok = 30.00

	gpt35TurboInputCostPerMTok  = 0.50
	gpt35TurboOutputCostPerMTok = 1.50
)

// NewPricingRegistry builds the OpenAI pricing table. Unknown models fall
// back to the default tier, priced at the gpt-4o-mini rate.
func NewPricingRegistry() *domain.InMemoryPricingRegistry {
	registry := domain.NewInMemoryPricingRegistry()

	models := map[string]domain.PricingConfig{
		"gpt-4o": {
			InputCostPerMTok:  gpt4oInputCostPerMTok,
			OutputCostPerMTok: gpt4oOutputCostPerMTok,
		},
		"gpt-4o-mini": {
			InputCostPerMTok:  gpt4oMiniInputCostPerMTok,
			OutputCostPerMTok: gpt4oMiniOutputCostPerMTok,
		},
		"gpt-4-turbo": {
			InputCostPerMTok:  gpt4TurboInputCostPerMTok,
			OutputCostPerMTok: gpt4TurboOutputCostPerMTok,
		},
		"gpt-3.5-turbo": {
			InputCostPerMTok:  gpt35TurboInputCostPerMTok,
			OutputCostPerMTok: gpt35TurboOutputCostPerMTok,
		},
		domain.DefaultPricingTier: {
			InputCostPerMTok:  gpt4oMiniInputCostPerMTok,
			OutputCostPerMTok: gpt4oMiniOutputCostPerMTok,
		},
	}

	for model, config := range models {
		_ = registry.RegisterPricing(model, config)
	}

	return registry
}
