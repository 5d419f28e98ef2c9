package detect

import (
	"fmt"
	"sync"
)

// Registry keeps detectors in registration order.
type Registry struct {
	mu        sync.RWMutex
	detectors map[string]Detector
	order     []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		detectors: make(map[string]Detector),
	}
}

// DefaultRegistry returns a registry with every built-in detector.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	if err := RegisterAll(r); err != nil {
		// Built-in names are unique, so this only fires on a programming error.
		panic(err)
	}
	return r
}

// RegisterAll registers the built-in detectors, security first.
func RegisterAll(r *Registry) error {
	for _, d := range []Detector{
		NewSecretScanner(),
		NewAuthHeuristics(),
		NewEndpointHeuristics(),
		NewNPlusOneDetector(),
		NewPaginationDetector(),
		NewSyncIODetector(),
	} {
		if err := r.Register(d); err != nil {
			return fmt.Errorf("registering %s: %w", d.Name(), err)
		}
	}
	return nil
}

// Register adds a detector. Names must be unique.
func (r *Registry) Register(d Detector) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := d.Name()
	if _, exists := r.detectors[name]; exists {
		return fmt.Errorf("detector %q already registered", name)
	}
	r.detectors[name] = d
	r.order = append(r.order, name)
	return nil
}

// Get returns a registered detector by name.
func (r *Registry) Get(name string) (Detector, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.detectors[name]
	return d, ok
}

// List returns all detectors in registration order.
func (r *Registry) List() []Detector {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Detector, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.detectors[name])
	}
	return out
}

// Resolve maps names to detectors, keeping registration order.
// An empty list selects everything.
func (r *Registry) Resolve(names []string) ([]Detector, error) {
	if len(names) == 0 {
		return r.List(), nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		if _, exists := r.detectors[name]; !exists {
			return nil, fmt.Errorf("detector %q not registered", name)
		}
		wanted[name] = true
	}

	out := make([]Detector, 0, len(wanted))
	for _, name := range r.order {
		if wanted[name] {
			out = append(out, r.detectors[name])
		}
	}
	return out, nil
}
