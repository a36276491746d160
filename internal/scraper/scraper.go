package scraper

import (
	"fmt"

	"ContentEngine/internal/ports"
)

// Registry keeps a mapping from source names to their implementations.
type Registry struct {
	sources map[string]ports.ContentSource
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{sources: map[string]ports.ContentSource{}}
}

// Register adds or replaces a content source implementation.
func (r *Registry) Register(source ports.ContentSource) {
	if r.sources == nil {
		r.sources = map[string]ports.ContentSource{}
	}
	r.sources[source.Name()] = source
}

// Resolve returns a source by name or an error if it is absent.
func (r *Registry) Resolve(name string) (ports.ContentSource, error) {
	if source, ok := r.sources[name]; ok {
		return source, nil
	}
	return nil, fmt.Errorf("content source %s is not registered", name)
}
