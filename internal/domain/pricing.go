package domain

import (
	"errors"
	"fmt"
	"sync"
)

const millionTokens = 1_000_000.0

// DefaultPricingTier is the designated fallback entry used for models
// missing from a pricing table.
const DefaultPricingTier = "default"

// PricingConfig contains model pricing in USD per million tokens.
type PricingConfig struct {
	InputCostPerMTok  float64
	OutputCostPerMTok float64
}

// PricingRegistry maintains pricing information for models.
type PricingRegistry interface {
	// GetPricing returns the pricing config for a model. Unknown models
	// resolve to the default tier when one is registered.
	GetPricing(model string) (PricingConfig, error)

	// RegisterPricing adds pricing for a model.
	RegisterPricing(model string, config PricingConfig) error
}

// CostCalculator estimates the monetary cost of a completed call.
type CostCalculator interface {
	Calculate(model string, usage TokenUsage) (float64, error)
}

// InMemoryPricingRegistry stores pricing configs in memory.
type InMemoryPricingRegistry struct {
	mu      sync.RWMutex
	pricing map[string]PricingConfig
}

// NewInMemoryPricingRegistry creates an empty in-memory pricing registry.
func NewInMemoryPricingRegistry() *InMemoryPricingRegistry {
	return &InMemoryPricingRegistry{
		pricing: make(map[string]PricingConfig),
	}
}

// GetPricing retrieves pricing for a model, falling back to the default
// tier for unknown models.
func (r *InMemoryPricingRegistry) GetPricing(model string) (PricingConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if config, exists := r.pricing[model]; exists {
		return config, nil
	}

	if config, exists := r.pricing[DefaultPricingTier]; exists {
		return config, nil
	}

	return PricingConfig{}, fmt.Errorf("pricing not found for model: %s", model)
}

// RegisterPricing adds pricing for a model.
func (r *InMemoryPricingRegistry) RegisterPricing(model string, config PricingConfig) error {
	if model == "" {
		return errors.New("model cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.pricing[model] = config
	return nil
}

// StandardCostCalculator implements token-based cost calculation against a
// pricing registry.
type StandardCostCalculator struct {
	pricingRegistry PricingRegistry
}

// NewStandardCostCalculator creates a new cost calculator.
func NewStandardCostCalculator(registry PricingRegistry) *StandardCostCalculator {
	return &StandardCostCalculator{
		pricingRegistry: registry,
	}
}

// Calculate computes the total cost for a model and token usage.
func (c *StandardCostCalculator) Calculate(model string, usage TokenUsage) (float64, error) {
	if model == "" {
		return 0, errors.New("model cannot be empty")
	}

	pricing, err := c.pricingRegistry.GetPricing(model)
	if err != nil {
		// Unknown pricing is not an error for the request itself.
		return 0, nil //nolint:nilerr
	}

	inputCost := float64(usage.PromptTokens) / millionTokens * pricing.InputCostPerMTok
	outputCost := float64(usage.CompletionTokens) / millionTokens * pricing.OutputCostPerMTok

	return inputCost + outputCost, nil
}
