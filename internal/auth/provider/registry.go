package provider

import "fmt"

// Registry resolves a provider name from the OAuth routes to its
// configured implementation. Which providers exist is fixed at startup.
type Registry struct {
	byName map[string]OAuthProvider
}

// NewRegistry indexes the given providers by Name(). Names must be
// unique; a later provider silently replaces an earlier one otherwise.
func NewRegistry(providers ...OAuthProvider) *Registry {
	byName := make(map[string]OAuthProvider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &Registry{byName: byName}
}

// Get returns the provider registered under name.
func (r *Registry) Get(name string) (OAuthProvider, error) {
	p, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("unknown oauth provider: %q", name)
	}
	return p, nil
}
