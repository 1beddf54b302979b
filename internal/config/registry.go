package config

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/zeusync/hazards/internal/core/physics"
	"github.com/zeusync/hazards/internal/hazard"
)

// Registry is an in-memory catalog of archetypes by name.
type Registry struct {
	mu         sync.RWMutex
	archetypes map[string]Archetype
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{archetypes: make(map[string]Archetype)}
}

// Register validates a and stores it under name, replacing any previous entry.
func (r *Registry) Register(name string, a Archetype) error {
	if name == "" {
		return fmt.Errorf("%w: empty archetype name", ErrInvalidValue)
	}
	if err := a.Validate(); err != nil {
		return fmt.Errorf("archetype %s: %w", name, err)
	}
	r.mu.Lock()
	r.archetypes[name] = a
	r.mu.Unlock()
	return nil
}

func (r *Registry) Lookup(name string) (Archetype, bool) {
	r.mu.RLock()
	a, ok := r.archetypes[name]
	r.mu.RUnlock()
	return a, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.archetypes))
}

// Build creates a hazard of the named archetype.
func (r *Registry) Build(name string, deps hazard.Deps, bodies physics.BodyFactory) (hazard.Hazard, error) {
	a, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownArchetype, name)
	}
	h, err := a.Build(name, deps, bodies)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", name, err)
	}
	return h, nil
}
