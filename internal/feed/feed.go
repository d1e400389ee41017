package feed

import (
	"context"
	"fmt"
	"time"

	"NewsPulse/internal/domain"
)

// Request carries the parameters of one feed pull. Since enables server-side
// recency filtering; the orchestrator does not re-filter by time.
type Request struct {
	Query    string
	Language string
	Country  string
	Max      int
	Since    time.Time
}

// Provider captures a single feed strategy (JSON API, headline scraper, …).
type Provider interface {
	Name() string
	Fetch(ctx context.Context, req Request) ([]domain.Article, error)
}

// Registry keeps a mapping from provider names to their implementations.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: map[string]Provider{}}
}

// Register adds or replaces a provider implementation.
func (r *Registry) Register(provider Provider) {
	if r.providers == nil {
		r.providers = map[string]Provider{}
	}
	r.providers[provider.Name()] = provider
}

// Resolve returns a provider by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Provider, error) {
	if provider, ok := r.providers[name]; ok {
		return provider, nil
	}
	return nil, fmt.Errorf("feed provider %s is not registered", name)
}
