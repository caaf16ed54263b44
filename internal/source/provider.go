// Package source defines the source-provider contract and the
// rate-limited concurrent fan-out the collect phase runs over it.
package source

import (
	"context"
	"sort"
	"sync"
)

// RawResult is one unprocessed item returned by a provider search
type RawResult struct {
	Source  string `json:"source"`  // Provider name that produced it
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"` // Text the extractor mines for claims
}

// Filters narrows a provider search
type Filters struct {
	RequireAcademic bool
	Language        string
	MaxAgeDays      int
}

// Provider is one external information source. Implementations own their
// own timeouts; a slow or failing provider is a per-cycle failure for
// that source, never fatal to the session.
type Provider interface {
	// Name returns the stable source identifier (matches the quality table)
	Name() string

	// RateLimit returns the provider's allowed requests per second
	RateLimit() float64

	// Search queries the source; may fail or return empty
	Search(ctx context.Context, query string, maxResults int, filters Filters) ([]RawResult, error)

	// IsAvailable reports whether the provider is configured and reachable
	IsAvailable(ctx context.Context) bool
}

// Registry routes source names to providers
type Registry struct {
	providers map[string]Provider
	mu        sync.RWMutex
}

// NewRegistry creates a registry over the given providers
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		r.providers[p.Name()] = p
	}
	return r
}

// Register adds or replaces a provider
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
}

// Get returns the provider for a source name
func (r *Registry) Get(name string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	return p, ok
}

// Names returns all registered source names in stable order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered providers
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}
