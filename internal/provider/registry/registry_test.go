package registry_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/porco/internal/domain"
	"github.com/davidbz/porco/internal/provider/registry"
)

type fakeProvider struct {
	name domain.ProviderType
}

func (f *fakeProvider) Complete(_ context.Context, _ string, _ domain.GenerationOptions) (*domain.CompletionResult, error) {
	return &domain.CompletionResult{}, nil
}

func (f *fakeProvider) Chat(_ context.Context, _ []domain.ChatMessage, _ domain.GenerationOptions) (*domain.CompletionResult, error) {
	return &domain.CompletionResult{}, nil
}

func (f *fakeProvider) Stream(_ context.Context, _ []domain.ChatMessage, _ domain.GenerationOptions) (<-chan domain.StreamChunk, error) {
	chunks := make(chan domain.StreamChunk)
	close(chunks)
	return chunks, nil
}

func (f *fakeProvider) GenerateJSON(_ context.Context, _ []domain.ChatMessage, _ domain.GenerationOptions) (json.RawMessage, error) {
	return json.RawMessage(`{}`), nil
}

func (f *fakeProvider) IsAvailable(_ context.Context) bool { return true }

func (f *fakeProvider) Name() domain.ProviderType { return f.name }

func (f *fakeProvider) UsageStats() domain.UsageStats { return domain.UsageStats{} }

func (f *fakeProvider) ResetUsageStats() {}

func TestRegistry_RegisterAndGet(t *testing.T) {
	reg := registry.NewRegistry()

	provider := &fakeProvider{name: domain.ProviderLocal}
	reg.Register(domain.ProviderLocal, provider)

	got, err := reg.Get(domain.ProviderLocal)
	require.NoError(t, err)
	require.Same(t, provider, got)
}

func TestRegistry_GetUnregistered(t *testing.T) {
	reg := registry.NewRegistry()

	_, err := reg.Get(domain.ProviderOpenAI)

	var notRegistered *domain.ProviderNotRegisteredError
	require.ErrorAs(t, err, &notRegistered)
	require.Equal(t, domain.ProviderOpenAI, notRegistered.Type)
}

func TestRegistry_LastRegistrationWins(t *testing.T) {
	reg := registry.NewRegistry()

	first := &fakeProvider{name: domain.ProviderLocal}
	second := &fakeProvider{name: domain.ProviderLocal}
	reg.Register(domain.ProviderLocal, first)
	reg.Register(domain.ProviderLocal, second)

	got, err := reg.Get(domain.ProviderLocal)
	require.NoError(t, err)
	require.Same(t, second, got)
}

func TestRegistry_IgnoresNilAndEmpty(t *testing.T) {
	reg := registry.NewRegistry()

	reg.Register(domain.ProviderLocal, nil)
	reg.Register("", &fakeProvider{name: domain.ProviderLocal})

	require.Empty(t, reg.List())
}

func TestRegistry_ListSorted(t *testing.T) {
	reg := registry.NewRegistry()

	reg.Register(domain.ProviderOpenAI, &fakeProvider{name: domain.ProviderOpenAI})
	reg.Register(domain.ProviderLocal, &fakeProvider{name: domain.ProviderLocal})
	reg.Register(domain.ProviderAnthropic, &fakeProvider{name: domain.ProviderAnthropic})

	require.Equal(t, []domain.ProviderType{
		domain.ProviderAnthropic,
		domain.ProviderLocal,
		domain.ProviderOpenAI,
	}, reg.List())
}
