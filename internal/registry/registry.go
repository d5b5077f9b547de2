// Package registry maps lookup names to topology factories. The
// application creates one Registry at startup and registers every
// descriptor it wants to expose; nothing registers itself.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"natlab/internal/topology"
)

var (
	ErrUnknownTopology = errors.New("unknown topology")
	ErrDuplicateName   = errors.New("topology name already registered")
	ErrInvalidFactory  = errors.New("invalid topology factory")
)

// Factory builds a fresh topology on every call.
type Factory func() (*topology.Topology, error)

type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func New() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register binds name to f. Names cannot be rebound.
func (r *Registry) Register(name string, f Factory) error {
	if name == "" || f == nil {
		return fmt.Errorf("register %q: %w", name, ErrInvalidFactory)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("register %q: %w", name, ErrDuplicateName)
	}
	r.factories[name] = f
	return nil
}

func (r *Registry) Lookup(name string) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownTopology, name, r.namesLocked())
	}
	return f, nil
}

// Build looks up name and invokes its factory.
func (r *Registry) Build(name string) (*topology.Topology, error) {
	f, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}

	topo, err := f()
	if err != nil {
		return nil, fmt.Errorf("build topology %q: %w", name, err)
	}
	return topo, nil
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.namesLocked()
}

func (r *Registry) namesLocked() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
