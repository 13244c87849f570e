package anthropic

import "github.com/davidbz/porco/internal/domain"

// Pricing in USD per million tokens.
const (
	sonnetInputCostPerMTok  = 3.00
	sonnetOutputCostPerMTok = 15.00

	haikuInputCostPerMTok  = 0.80
	haikuOutputCostPerMTok = 4.00

	opusInputCostPerMTok  = 15.00
	opusOutputCostPerMTok = 75.00
)

// NewPricingRegistry builds the Anthropic pricing table. Unknown models fall
// back to the default tier, priced at the sonnet rate.
func NewPricingRegistry() *domain.InMemoryPricingRegistry {
	registry := domain.NewInMemoryPricingRegistry()

	models := map[string]domain.PricingConfig{
		"claude-3-5-sonnet-20241022": {
			InputCostPerMTok:  sonnetInputCostPerMTok,
			OutputCostPerMTok: sonnetOutputCostPerMTok,
		},
		"claude-3-5-haiku-20241022": {
			InputCostPerMTok:  haikuInputCostPerMTok,
			OutputCostPerMTok: haikuOutputCostPerMTok,
		},
		"claude-3-opus-20240229": {
			InputCostPerMTok:  opusInputCostPerMTok,
			OutputCostPerMTok: opusOutputCostPerMTok,
		},
		domain.DefaultPricingTier: {
			InputCostPerMTok:  sonnetInputCostPerMTok,
			OutputCostPerMTok: sonnetOutputCostPerMTok,
		},
	}

	for model, config := range models {
		_ = registry.RegisterPricing(model, config)
	}

	return registry
}
