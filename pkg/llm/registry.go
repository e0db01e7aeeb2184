package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	// ErrDuplicateProvider is returned when a provider name is registered twice.
	ErrDuplicateProvider = errors.New("duplicate provider")
	// ErrProviderNotFound is returned when no provider is registered under a name.
	ErrProviderNotFound = errors.New("provider not found")
)

// Provider is a pluggable LLM backend implementation.
type Provider interface {
	// Name returns the registration name of the provider.
	Name() string

	// Generate produces a completion for the given prompt.
	Generate(ctx context.Context, prompt string) (string, error)
}

// Registry maps provider names to their implementations. Names are
// normalized to lower case, so lookups are case-insensitive. A Registry
// is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	order     []string
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
	}
}

// Register adds a provider under its normalized name.
// It returns ErrDuplicateProvider if the name is already taken.
func (r *Registry) Register(p Provider) error {
	name := strings.ToLower(p.Name())

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.providers[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateProvider, name)
	}
	r.providers[name] = p
	r.order = append(r.order, name)
	return nil
}

// Get returns the provider registered under the given name.
// The lookup is case-insensitive. It returns ErrProviderNotFound,
// carrying the normalized name, if no provider is registered.
func (r *Registry) Get(name string) (Provider, error) {
	normalized := strings.ToLower(name)

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[normalized]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, normalized)
	}
	return p, nil
}

// Providers returns all registered providers in registration order.
func (r *Registry) Providers() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Provider, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.providers[name])
	}
	return out
}

// Names returns the normalized names of all registered providers in
// registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Reset clears all registrations. Intended for test isolation.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.providers = make(map[string]Provider)
	r.order = nil
}
