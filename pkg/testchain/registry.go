package testchain

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/randalmurphal/testchain/pkg/testchain/harness"
)

// Registry holds attached listeners. Each attached value is probed once
// for every hook interface and appended to the matching per-kind slices in
// attach order. A concrete type is attached at most once.
//
// Registry is safe for concurrent use. Readers get snapshots, so a hook
// may attach further listeners while an event is being delivered.
type Registry struct {
	mu        sync.RWMutex
	types     map[reflect.Type]struct{}
	instances []any
	marked    map[*harness.Class]struct{}

	executionStart       []ExecutionStart
	executionFinish      []ExecutionFinish
	suiteStart           []SuiteStart
	suiteFinish          []SuiteFinish
	contextStart         []ContextStart
	contextFinish        []ContextFinish
	beforeClass          []BeforeClass
	afterClass           []AfterClass
	beforeConfiguration  []BeforeConfiguration
	configurationSuccess []ConfigurationSuccess
	configurationFailure []ConfigurationFailure
	configurationSkip    []ConfigurationSkip
	beforeInvocation     []BeforeInvocation
	afterInvocation      []AfterInvocation
	testStart            []TestStart
	testSuccess          []TestSuccess
	testFailure          []TestFailure
	testSkipped          []TestSkipped
	testWithinPercentage []TestFailedWithinSuccessPercentage
	interceptors         []Interceptor
	transformers         []Transformer
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		types:  make(map[reflect.Type]struct{}),
		marked: make(map[*harness.Class]struct{}),
	}
}

// Attach attaches a listener. When instance is non-nil its concrete type
// identifies it and typ is ignored; otherwise a value of typ is
// constructed. Attaching an already attached type does nothing.
func (r *Registry) Attach(typ reflect.Type, instance any) error {
	_, _, err := r.attach(typ, instance)
	return err
}

// Has reports whether a listener of exactly typ is attached.
func (r *Registry) Has(typ reflect.Type) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.types[typ]
	return ok
}

// Instances returns the attached listeners in attach order.
func (r *Registry) Instances() []any {
	return snapshot(r, &r.instances)
}

// Len returns the number of attached listeners.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.instances)
}

// attach returns the attached value and whether it was newly attached.
func (r *Registry) attach(typ reflect.Type, instance any) (any, bool, error) {
	if instance != nil {
		typ = reflect.TypeOf(instance)
	}
	if typ == nil {
		return nil, false, &ConfigError{Op: "attach", Err: ErrInvalidArgument}
	}

	// Claim the type before constructing, so concurrent attachers of the
	// same type construct it once.
	r.mu.Lock()
	if _, ok := r.types[typ]; ok {
		r.mu.Unlock()
		return nil, false, nil
	}
	r.types[typ] = struct{}{}
	r.mu.Unlock()

	if instance == nil {
		v, err := construct(typ)
		if err != nil {
			r.mu.Lock()
			delete(r.types, typ)
			r.mu.Unlock()
			return nil, false, &ConfigError{Op: "construct", Type: typ, Err: err}
		}
		instance = v
	}

	r.mu.Lock()
	r.instances = append(r.instances, instance)
	r.bind(instance)
	r.mu.Unlock()
	return instance, true, nil
}

// bind appends l to every per-kind slice whose interface it implements.
// Caller holds r.mu.
func (r *Registry) bind(l any) {
	if h, ok := l.(ExecutionStart); ok {
		r.executionStart = append(r.executionStart, h)
	}
	if h, ok := l.(ExecutionFinish); ok {
		r.executionFinish = append(r.executionFinish, h)
	}
	if h, ok := l.(SuiteStart); ok {
		r.suiteStart = append(r.suiteStart, h)
	}
	if h, ok := l.(SuiteFinish); ok {
		r.suiteFinish = append(r.suiteFinish, h)
	}
	if h, ok := l.(ContextStart); ok {
		r.contextStart = append(r.contextStart, h)
	}
	if h, ok := l.(ContextFinish); ok {
		r.contextFinish = append(r.contextFinish, h)
	}
	if h, ok := l.(BeforeClass); ok {
		r.beforeClass = append(r.beforeClass, h)
	}
	if h, ok := l.(AfterClass); ok {
		r.afterClass = append(r.afterClass, h)
	}
	if h, ok := l.(BeforeConfiguration); ok {
		r.beforeConfiguration = append(r.beforeConfiguration, h)
	}
	if h, ok := l.(ConfigurationSuccess); ok {
		r.configurationSuccess = append(r.configurationSuccess, h)
	}
	if h, ok := l.(ConfigurationFailure); ok {
		r.configurationFailure = append(r.configurationFailure, h)
	}
	if h, ok := l.(ConfigurationSkip); ok {
		r.configurationSkip = append(r.configurationSkip, h)
	}
	if h, ok := l.(BeforeInvocation); ok {
		r.beforeInvocation = append(r.beforeInvocation, h)
	}
	if h, ok := l.(AfterInvocation); ok {
		r.afterInvocation = append(r.afterInvocation, h)
	}
	if h, ok := l.(TestStart); ok {
		r.testStart = append(r.testStart, h)
	}
	if h, ok := l.(TestSuccess); ok {
		r.testSuccess = append(r.testSuccess, h)
	}
	if h, ok := l.(TestFailure); ok {
		r.testFailure = append(r.testFailure, h)
	}
	if h, ok := l.(TestSkipped); ok {
		r.testSkipped = append(r.testSkipped, h)
	}
	if h, ok := l.(TestFailedWithinSuccessPercentage); ok {
		r.testWithinPercentage = append(r.testWithinPercentage, h)
	}
	if h, ok := l.(Interceptor); ok {
		r.interceptors = append(r.interceptors, h)
	}
	if h, ok := l.(Transformer); ok {
		r.transformers = append(r.transformers, h)
	}
}

// mark records class as resolved. It reports false when class was
// already resolved.
func (r *Registry) mark(class *harness.Class) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.marked[class]; ok {
		return false
	}
	r.marked[class] = struct{}{}
	return true
}

// unmark forgets class, so a later resolution attaches its marker again.
func (r *Registry) unmark(class *harness.Class) {
	r.mu.Lock()
	delete(r.marked, class)
	r.mu.Unlock()
}

// snapshot returns a capacity-clipped view of *s, so appends made after
// the read never reach the caller.
func snapshot[H any](r *Registry, s *[]H) []H {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v := *s
	return v[:len(v):len(v)]
}

// construct creates a listener from its type. Pointer types get a new
// zero element; other types get their zero value.
func construct(typ reflect.Type) (any, error) {
	var v reflect.Value
	switch typ.Kind() {
	case reflect.Pointer:
		v = reflect.New(typ.Elem())
	case reflect.Interface, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return nil, fmt.Errorf("%w: %s kind", ErrNotConstructible, typ.Kind())
	default:
		v = reflect.New(typ).Elem()
	}

	l := v.Interface()
	if in, ok := l.(Initializer); ok {
		if err := in.Init(); err != nil {
			return nil, fmt.Errorf("init: %w", err)
		}
	}
	return l, nil
}
