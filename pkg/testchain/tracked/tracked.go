// Package tracked provides a reference-counted wrapper for values shared
// between the attribute maps of several invocation results.
//
// A Ref is stored in each holder's attributes under its key. Holders are
// released individually as each invocation finishes with the value, or all
// at once when the owner disposes of it.
package tracked

import (
	"sync"

	"github.com/randalmurphal/testchain/pkg/testchain/harness"
)

// Holder is implemented by values that track the results referencing them.
// Propagation calls AddRef instead of copying a Holder into a result.
type Holder interface {
	Key() string
	AddRef(r *harness.Result)
}

// Ref tracks the results holding a value under a fixed attribute key.
type Ref[T any] struct {
	mu       sync.Mutex
	key      string
	value    T
	present  bool
	holders  map[*harness.Result]struct{}
	released bool
}

// Compile-time interface check.
var _ Holder = (*Ref[int])(nil)

// New wraps value under key and registers r as its first holder.
func New[T any](r *harness.Result, key string, value T) *Ref[T] {
	t := &Ref[T]{
		key:     key,
		value:   value,
		present: true,
		holders: make(map[*harness.Result]struct{}),
	}
	t.AddRef(r)
	return t
}

// From returns the Ref stored in r under key.
func From[T any](r *harness.Result, key string) (*Ref[T], bool) {
	v, ok := r.Attribute(key)
	if !ok {
		return nil, false
	}
	t, ok := v.(*Ref[T])
	return t, ok
}

// Key returns the attribute key the value is stored under.
func (t *Ref[T]) Key() string {
	return t.key
}

// Value returns the tracked value. The second result is false once the
// value has been released.
func (t *Ref[T]) Value() (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.value, t.present
}

// AddRef records r as a holder and stores the Ref in r's attributes.
// It does nothing once the value has been released.
func (t *Ref[T]) AddRef(r *harness.Result) {
	if r == nil {
		return
	}
	t.mu.Lock()
	if t.released || !t.present {
		t.mu.Unlock()
		return
	}
	t.holders[r] = struct{}{}
	t.mu.Unlock()
	r.SetAttribute(t.key, t)
}

// Holders returns the number of results currently holding a reference.
func (t *Ref[T]) Holders() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.holders)
}

// Release drops r's reference and removes the attribute from r.
// held reports whether r had a reference. dispose reports that r was the
// last holder; the value has been cleared and the owner should dispose of
// the underlying resource.
func (t *Ref[T]) Release(r *harness.Result) (held, dispose bool) {
	t.mu.Lock()
	_, held = t.holders[r]
	if held {
		delete(t.holders, r)
		if len(t.holders) == 0 && t.present {
			var zero T
			t.value = zero
			t.present = false
			dispose = true
		}
	}
	t.mu.Unlock()

	if held {
		r.RemoveAttribute(t.key)
	}
	return held, dispose
}

// ReleaseAll removes the attribute from every holder and returns the value.
// Only the first call returns the value; later calls return the zero value
// and false.
func (t *Ref[T]) ReleaseAll() (T, bool) {
	t.mu.Lock()
	holders := t.holders
	t.holders = make(map[*harness.Result]struct{})
	value, ok := t.value, t.present && !t.released
	var zero T
	t.value = zero
	t.present = false
	t.released = true
	t.mu.Unlock()

	for r := range holders {
		r.RemoveAttribute(t.key)
	}
	return value, ok
}
