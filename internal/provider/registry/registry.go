// Package registry maps provider tags to backend implementations.
package registry

import (
	"sort"
	"sync"

	"github.com/davidbz/porco/internal/domain"
)

// Registry implements domain.ProviderRegistry. The last registration for a
// given tag wins.
type Registry struct {
	mu        sync.RWMutex
	providers map[domain.ProviderType]domain.Provider
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[domain.ProviderType]domain.Provider),
	}
}

// Register associates a provider tag with a concrete backend, replacing any
// previous registration for that tag.
func (r *Registry) Register(providerType domain.ProviderType, provider domain.Provider) {
	if provider == nil || providerType == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.providers[providerType] = provider
}

// Get retrieves a provider by tag.
func (r *Registry) Get(providerType domain.ProviderType) (domain.Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	provider, exists := r.providers[providerType]
	if !exists {
		return nil, &domain.ProviderNotRegisteredError{Type: providerType}
	}

	return provider, nil
}

// List returns every registered tag in stable order.
func (r *Registry) List() []domain.ProviderType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]domain.ProviderType, 0, len(r.providers))
	for providerType := range r.providers {
		types = append(types, providerType)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	return types
}
