package chain_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/porco/internal/chain"
	"github.com/davidbz/porco/internal/domain"
	"github.com/davidbz/porco/internal/observability"
	"github.com/davidbz/porco/internal/prompt"
	"github.com/davidbz/porco/internal/provider/registry"
	"github.com/davidbz/porco/internal/schema"
)

// scriptedProvider is an offline provider with scriptable JSON responses
// and a call counter.
type scriptedProvider struct {
	mu        sync.Mutex
	queue     []string
	respond   func(messages []domain.ChatMessage) string
	err       error
	jsonCalls int
}

func (p *scriptedProvider) GenerateJSON(_ context.Context, messages []domain.ChatMessage, _ domain.GenerationOptions) (json.RawMessage, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.jsonCalls++
	if p.err != nil {
		return nil, p.err
	}
	if p.respond != nil {
		return json.RawMessage(p.respond(messages)), nil
	}
	if len(p.queue) == 0 {
		return json.RawMessage(`{}`), nil
	}

	raw := p.queue[0]
	p.queue = p.queue[1:]
	return json.RawMessage(raw), nil
}

func (p *scriptedProvider) Complete(_ context.Context, _ string, opts domain.GenerationOptions) (*domain.CompletionResult, error) {
	return &domain.CompletionResult{Model: opts.Model}, nil
}

func (p *scriptedProvider) Chat(_ context.Context, _ []domain.ChatMessage, opts domain.GenerationOptions) (*domain.CompletionResult, error) {
	return &domain.CompletionResult{Model: opts.Model}, nil
}

func (p *scriptedProvider) Stream(_ context.Context, _ []domain.ChatMessage, _ domain.GenerationOptions) (<-chan domain.StreamChunk, error) {
	chunks := make(chan domain.StreamChunk, 1)
	chunks <- domain.StreamChunk{IsComplete: true}
	close(chunks)
	return chunks, nil
}

func (p *scriptedProvider) IsAvailable(_ context.Context) bool { return true }

func (p *scriptedProvider) Name() domain.ProviderType { return domain.ProviderLocal }

func (p *scriptedProvider) UsageStats() domain.UsageStats { return domain.UsageStats{} }

func (p *scriptedProvider) ResetUsageStats() {}

func (p *scriptedProvider) enqueue(payloads ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queue = append(p.queue, payloads...)
}

func (p *scriptedProvider) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.jsonCalls
}

func newTestIntentChain(t *testing.T, provider *scriptedProvider) *chain.IntentChain {
	t.Helper()
	orch, prompts, validator := testDependencies(t, provider)
	return chain.NewIntentChain(orch, prompts, validator, nil, observability.NewEventBus())
}

func newTestItineraryChain(t *testing.T, provider *scriptedProvider) *chain.ItineraryChain {
	t.Helper()
	orch, prompts, validator := testDependencies(t, provider)
	return chain.NewItineraryChain(orch, prompts, validator, nil, observability.NewEventBus())
}

func testDependencies(t *testing.T, provider *scriptedProvider) (*domain.Orchestrator, *prompt.Store, *schema.Validator) {
	t.Helper()

	reg := registry.NewRegistry()
	reg.Register(domain.ProviderLocal, provider)

	orch := domain.NewOrchestrator(reg, domain.OrchestratorDefaults{
		Provider: domain.ProviderLocal,
		Model:    domain.DefaultLocalModel,
	})

	prompts, err := prompt.NewStore("")
	require.NoError(t, err)

	return orch, prompts, schema.NewValidator()
}
