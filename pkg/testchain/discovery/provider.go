package discovery

import (
	"errors"
	"fmt"
	"sync"
)

// ErrDuplicate is returned when a name is registered twice.
var ErrDuplicate = errors.New("provider already registered")

// Factory constructs one provided value.
type Factory[T any] func() (T, error)

// Provider is a thread-safe, ordered registry of named factories.
// It uses sync.RWMutex for read-heavy workloads: registration normally
// happens once from init functions, loading happens per run.
type Provider[T any] struct {
	mu        sync.RWMutex
	names     []string
	factories map[string]Factory[T]
}

// NewProvider creates an empty provider.
func NewProvider[T any]() *Provider[T] {
	return &Provider[T]{
		factories: make(map[string]Factory[T]),
	}
}

// Register adds a named factory. Names must be unique.
func (p *Provider[T]) Register(name string, f Factory[T]) error {
	if f == nil {
		return fmt.Errorf("register %q: nil factory", name)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.factories[name]; ok {
		return fmt.Errorf("register %q: %w", name, ErrDuplicate)
	}
	p.names = append(p.names, name)
	p.factories[name] = f
	return nil
}

// MustRegister is Register that panics on error, for use in init functions.
func (p *Provider[T]) MustRegister(name string, f Factory[T]) {
	if err := p.Register(name, f); err != nil {
		panic("discovery: " + err.Error())
	}
}

// RegisterValue registers a factory that always returns v.
func (p *Provider[T]) RegisterValue(name string, v T) error {
	return p.Register(name, func() (T, error) { return v, nil })
}

// Has returns true if name is registered.
func (p *Provider[T]) Has(name string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.factories[name]
	return ok
}

// Names returns the registered names in registration order.
func (p *Provider[T]) Names() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]string(nil), p.names...)
}

// Len returns the number of registered factories.
func (p *Provider[T]) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.names)
}

// Load constructs every provided value in registration order.
//
// Load works on a snapshot, so factories may register further providers
// without deadlocking; those are picked up by the next Load. The first
// factory error stops loading and is returned wrapped with its name.
func (p *Provider[T]) Load() ([]T, error) {
	p.mu.RLock()
	names := append([]string(nil), p.names...)
	factories := make([]Factory[T], len(names))
	for i, n := range names {
		factories[i] = p.factories[n]
	}
	p.mu.RUnlock()

	out := make([]T, 0, len(factories))
	for i, f := range factories {
		v, err := f()
		if err != nil {
			return nil, fmt.Errorf("load %q: %w", names[i], err)
		}
		out = append(out, v)
	}
	return out, nil
}
