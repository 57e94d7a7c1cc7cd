package testchain

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/randalmurphal/testchain/pkg/testchain/harness"
)

// Test listener types. probe is generic so that each tag yields a distinct
// concrete type, which the registry needs to keep them apart.

type first struct{}
type second struct{}
type third struct{}

// trace records hook calls across listeners.
type trace struct {
	mu    sync.Mutex
	calls []string
}

func (t *trace) add(call string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls = append(t.calls, call)
}

func (t *trace) get() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.calls...)
}

// probe implements one hook of each ordering discipline.
type probe[T any] struct {
	name  string
	trace *trace
}

func newProbe[T any](name string, tr *trace) *probe[T] {
	return &probe[T]{name: name, trace: tr}
}

func (p *probe[T]) record(kind string) {
	if p.trace != nil {
		p.trace.add(p.name + "." + kind)
	}
}

func (p *probe[T]) OnExecutionStart(context.Context)                    { p.record("execution_start") }
func (p *probe[T]) OnTestStart(context.Context, *harness.Result)        { p.record("test_start") }
func (p *probe[T]) OnTestSuccess(context.Context, *harness.Result)      { p.record("test_success") }
func (p *probe[T]) Transform(context.Context, *harness.Method)          { p.record("transform") }
func (p *probe[T]) OnSuiteStart(context.Context, *harness.Suite)        { p.record("suite_start") }
func (p *probe[T]) OnBeforeClass(context.Context, *harness.Class)       { p.record("before_class") }
func (p *probe[T]) OnBeforeInvocation(context.Context, *harness.Result) { p.record("before_invocation") }

// panicker panics on TestSuccess.
type panicker struct{}

func (panicker) OnTestSuccess(context.Context, *harness.Result) { panic("boom") }

// valueListener is attached by value type.
type valueListener struct{}

func (valueListener) OnTestStart(context.Context, *harness.Result) {}

// initListener records that Init ran.
type initListener struct {
	ready bool
}

func (l *initListener) Init() error {
	l.ready = true
	return nil
}

func (l *initListener) OnTestStart(context.Context, *harness.Result) {}

var errNoDriver = errors.New("no driver")

// failingInit cannot be constructed.
type failingInit struct{}

func (*failingInit) Init() error { return errNoDriver }

// attacher attaches a probe[third] while handling SuiteStart.
type attacher struct {
	d     *Dispatcher
	trace *trace
}

func (a *attacher) OnSuiteStart(context.Context, *harness.Suite) {
	if err := AttachInstance(a.d, newProbe[third]("third", a.trace)); err != nil {
		panic(err)
	}
}

// dropInterceptor removes units whose method name matches drop.
type dropInterceptor struct {
	drop string
}

func (i *dropInterceptor) Intercept(_ context.Context, _ *harness.Context, units []harness.MethodInstance) []harness.MethodInstance {
	var out []harness.MethodInstance
	for _, u := range units {
		if u.Method.Name != i.drop {
			out = append(out, u)
		}
	}
	return out
}

// reverseInterceptor reverses the unit order.
type reverseInterceptor struct{}

func (reverseInterceptor) Intercept(_ context.Context, _ *harness.Context, units []harness.MethodInstance) []harness.MethodInstance {
	out := make([]harness.MethodInstance, len(units))
	for i, u := range units {
		out[len(units)-1-i] = u
	}
	return out
}

// countingMetrics records calls made to it.
type countingMetrics struct {
	mu         sync.Mutex
	dispatches map[string]int
	fanout     map[string]int
	attached   []string
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{dispatches: map[string]int{}, fanout: map[string]int{}}
}

func (m *countingMetrics) RecordDispatch(_ context.Context, kind string, listeners int, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dispatches[kind]++
	m.fanout[kind] = listeners
}

func (m *countingMetrics) RecordAttach(_ context.Context, listenerType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attached = append(m.attached, listenerType)
}

func (m *countingMetrics) RecordRetry(context.Context, bool, bool) {}

// newDispatcher creates a Dispatcher without global discovery.
func newDispatcher(opts ...Option) *Dispatcher {
	d, err := New(append([]Option{WithDiscovery(nil)}, opts...)...)
	if err != nil {
		panic(err)
	}
	return d
}

// model returns a suite, context and class for driving a dispatcher.
func model() (*harness.Suite, *harness.Context, *harness.Class) {
	suite := harness.NewSuite("regression")
	return suite, harness.NewContext(suite, "checkout"), &harness.Class{Name: "shop.CheckoutTest"}
}
