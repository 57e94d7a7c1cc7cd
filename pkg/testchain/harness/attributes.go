// Package harness models the objects a host test harness hands to listeners:
// suites, test contexts, classes, methods and invocation results.
//
// The host owns these values. testchain only reads their identity fields and
// reads/writes the attribute maps carried by suites and results.
package harness

import (
	"sort"
	"sync"
)

// Attributes is a concurrency-safe string-keyed attribute map.
// The zero value is ready to use.
type Attributes struct {
	mu     sync.RWMutex
	values map[string]any
}

// Attribute returns the value stored under name.
func (a *Attributes) Attribute(name string) (any, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	v, ok := a.values[name]
	return v, ok
}

// SetAttribute stores value under name, replacing any previous value.
func (a *Attributes) SetAttribute(name string, value any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.values == nil {
		a.values = make(map[string]any)
	}
	a.values[name] = value
}

// RemoveAttribute deletes name and returns the value it held.
func (a *Attributes) RemoveAttribute(name string) (any, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	v, ok := a.values[name]
	if ok {
		delete(a.values, name)
	}
	return v, ok
}

// AttributeNames returns the stored names in sorted order.
func (a *Attributes) AttributeNames() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	names := make([]string, 0, len(a.values))
	for k := range a.values {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns a copy of every stored attribute.
func (a *Attributes) Snapshot() map[string]any {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make(map[string]any, len(a.values))
	for k, v := range a.values {
		out[k] = v
	}
	return out
}
