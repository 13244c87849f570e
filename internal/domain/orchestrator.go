package domain

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/davidbz/porco/internal/observability"
)

// Default models tied to each provider tag.
const (
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultAnthropicModel = "claude-3-5-sonnet-20241022"
	DefaultLocalModel     = "local-echo"
)

// OrchestratorDefaults name the provider and model used when a caller does
// not request one explicitly.
type OrchestratorDefaults struct {
	Provider ProviderType
	Model    string
}

// Credentials reports which remote backends have a configured credential.
// The local provider needs none.
type Credentials struct {
	OpenAI    bool
	Anthropic bool
}

// SelectDefaults chooses the default provider by fixed preference order:
// the first backend type with a configured credential wins, with the local
// provider as terminal fallback.
func SelectDefaults(creds Credentials) OrchestratorDefaults {
	switch {
	case creds.OpenAI:
		return OrchestratorDefaults{Provider: ProviderOpenAI, Model: DefaultOpenAIModel}
	case creds.Anthropic:
		return OrchestratorDefaults{Provider: ProviderAnthropic, Model: DefaultAnthropicModel}
	default:
		return OrchestratorDefaults{Provider: ProviderLocal, Model: DefaultLocalModel}
	}
}

// Orchestrator dispatches completion, chat and JSON-generation calls to
// registered providers and aggregates usage statistics across them. It
// performs pure delegation plus option defaulting: no retry and no caching
// happen at this layer.
type Orchestrator struct {
	registry ProviderRegistry
	defaults OrchestratorDefaults
}

// NewOrchestrator creates an orchestrator over a provider registry.
func NewOrchestrator(registry ProviderRegistry, defaults OrchestratorDefaults) *Orchestrator {
	return &Orchestrator{
		registry: registry,
		defaults: defaults,
	}
}

// Defaults returns the configured default provider and model.
func (o *Orchestrator) Defaults() OrchestratorDefaults {
	return o.defaults
}

// Provider resolves an explicit provider tag, or the default when the tag
// is empty. Returns *ProviderNotRegisteredError when the resolved tag has
// no registered backend.
func (o *Orchestrator) Provider(providerType ProviderType) (Provider, error) {
	if providerType == "" {
		providerType = o.defaults.Provider
	}
	return o.registry.Get(providerType)
}

// Complete dispatches a single-turn completion to the resolved provider.
func (o *Orchestrator) Complete(
	ctx context.Context,
	providerType ProviderType,
	prompt string,
	opts GenerationOptions,
) (*CompletionResult, error) {
	provider, err := o.Provider(providerType)
	if err != nil {
		return nil, err
	}
	return provider.Complete(ctx, prompt, o.mergeOptions(opts))
}

// Chat dispatches a multi-turn completion to the resolved provider.
func (o *Orchestrator) Chat(
	ctx context.Context,
	providerType ProviderType,
	messages []ChatMessage,
	opts GenerationOptions,
) (*CompletionResult, error) {
	provider, err := o.Provider(providerType)
	if err != nil {
		return nil, err
	}
	return provider.Chat(ctx, messages, o.mergeOptions(opts))
}

// GenerateJSON dispatches a JSON-demanding chat call to the resolved
// provider and returns the raw parsed payload.
func (o *Orchestrator) GenerateJSON(
	ctx context.Context,
	providerType ProviderType,
	messages []ChatMessage,
	opts GenerationOptions,
) (json.RawMessage, error) {
	provider, err := o.Provider(providerType)
	if err != nil {
		return nil, err
	}
	return provider.GenerateJSON(ctx, messages, o.mergeOptions(opts))
}

// AllUsageStats aggregates usage across every registered provider, keyed by
// provider tag.
func (o *Orchestrator) AllUsageStats() map[ProviderType]UsageStats {
	stats := make(map[ProviderType]UsageStats)
	for _, providerType := range o.registry.List() {
		provider, err := o.registry.Get(providerType)
		if err != nil {
			continue
		}
		stats[providerType] = provider.UsageStats()
	}
	return stats
}

// ResetAllUsageStats resets the usage totals of every registered provider.
func (o *Orchestrator) ResetAllUsageStats() {
	for _, providerType := range o.registry.List() {
		provider, err := o.registry.Get(providerType)
		if err != nil {
			continue
		}
		provider.ResetUsageStats()
	}
}

// AvailableProviders probes every registered provider concurrently and
// returns the tags that respond as available, in stable order.
func (o *Orchestrator) AvailableProviders(ctx context.Context) []ProviderType {
	logger := observability.FromContext(ctx)
	providerTypes := o.registry.List()

	available := make([]bool, len(providerTypes))
	var wg sync.WaitGroup

	for i, providerType := range providerTypes {
		provider, err := o.registry.Get(providerType)
		if err != nil {
			continue
		}

		wg.Add(1)
		go func(slot int, p Provider) {
			defer wg.Done()
			available[slot] = p.IsAvailable(ctx)
		}(i, provider)
	}
	wg.Wait()

	result := make([]ProviderType, 0, len(providerTypes))
	for i, ok := range available {
		if ok {
			result = append(result, providerTypes[i])
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })

	logger.Debug("provider availability probe completed",
		observability.Int("registered", len(providerTypes)),
		observability.Int("available", len(result)),
	)
	return result
}

// mergeOptions applies the default model when the caller supplied none.
// Remaining defaults are provider-level.
func (o *Orchestrator) mergeOptions(opts GenerationOptions) GenerationOptions {
	if opts.Model == "" {
		opts.Model = o.defaults.Model
	}
	return opts
}
