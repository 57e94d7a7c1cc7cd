// Package propagate moves attributes between the results of the routines
// that surround a test unit.
//
// Attributes set by before-method routines reach the unit, and attributes
// the unit leaves behind reach its after-method routines. The values travel
// in a Flow, which is carried by the context.Context of the worker running
// the unit. Contexts derived from a worker's context share its Flow; workers
// started with their own WithFlow context never see each other's values.
package propagate

import (
	"context"
	"sync"

	"github.com/randalmurphal/testchain/pkg/testchain/harness"
	"github.com/randalmurphal/testchain/pkg/testchain/tracked"
)

// Extract copies every attribute of r.
func Extract(r *harness.Result) map[string]any {
	if r == nil {
		return map[string]any{}
	}
	return r.Snapshot()
}

// Inject writes attrs into r. Tracked values gain r as a holder instead of
// being copied.
func Inject(attrs map[string]any, r *harness.Result) {
	if r == nil {
		return
	}
	for k, v := range attrs {
		if h, ok := v.(tracked.Holder); ok {
			h.AddRef(r)
			continue
		}
		r.SetAttribute(k, v)
	}
}

// Flow holds the entry and exit carriers of one worker.
type Flow struct {
	mu    sync.Mutex
	entry map[string]any
	exit  map[string]any
}

// NewFlow returns an empty flow.
func NewFlow() *Flow {
	return &Flow{entry: make(map[string]any)}
}

type flowKey struct{}

// WithFlow returns a context carrying a fresh Flow.
func WithFlow(ctx context.Context) context.Context {
	return context.WithValue(ctx, flowKey{}, NewFlow())
}

// FromContext returns the Flow carried by ctx.
func FromContext(ctx context.Context) (*Flow, bool) {
	if ctx == nil {
		return nil, false
	}
	f, ok := ctx.Value(flowKey{}).(*Flow)
	return f, ok && f != nil
}

// MergeEntry adds attrs to the entry carrier, overwriting equal keys.
func (f *Flow) MergeEntry(attrs map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, v := range attrs {
		f.entry[k] = v
	}
}

// InjectEntry writes the entry carrier into r and clears it.
func (f *Flow) InjectEntry(r *harness.Result) {
	f.mu.Lock()
	attrs := f.entry
	f.entry = make(map[string]any)
	f.mu.Unlock()
	Inject(attrs, r)
}

// CaptureExit replaces the exit carrier with attrs.
func (f *Flow) CaptureExit(attrs map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exit = attrs
}

// InjectExit writes the exit carrier into r. Unless preserve is set the
// carrier is cleared, so only the first exit routine receives it.
func (f *Flow) InjectExit(r *harness.Result, preserve bool) {
	f.mu.Lock()
	attrs := f.exit
	if !preserve {
		f.exit = nil
	}
	f.mu.Unlock()
	Inject(attrs, r)
}

// Entry returns a copy of the entry carrier.
func (f *Flow) Entry() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return copyAttrs(f.entry)
}

// Exit returns a copy of the exit carrier, nil when empty.
func (f *Flow) Exit() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.exit == nil {
		return nil
	}
	return copyAttrs(f.exit)
}

func copyAttrs(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
