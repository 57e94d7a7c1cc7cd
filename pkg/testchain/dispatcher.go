package testchain

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/google/uuid"

	"github.com/randalmurphal/testchain/pkg/testchain/discovery"
	"github.com/randalmurphal/testchain/pkg/testchain/event"
	"github.com/randalmurphal/testchain/pkg/testchain/harness"
	"github.com/randalmurphal/testchain/pkg/testchain/observability"
)

// Listeners is the global discovery source for listeners. New attaches
// every listener it provides unless WithDiscovery says otherwise.
var Listeners = discovery.NewProvider[any]()

// Dispatcher is the single listener a host registers. It implements every
// hook interface and fans each event out to the attached listeners:
// entry events in reverse attach order, exit and notification events in
// attach order.
//
// A listener that panics is not recovered: the panic reaches the host and
// the remaining listeners for that event do not run.
type Dispatcher struct {
	registry *Registry
	runID    string
	logger   *slog.Logger
	metrics  observability.MetricsRecorder
	spans    observability.SpanManager
}

// Compile-time interface checks.
var (
	_ ExecutionStart                    = (*Dispatcher)(nil)
	_ ExecutionFinish                   = (*Dispatcher)(nil)
	_ SuiteStart                        = (*Dispatcher)(nil)
	_ SuiteFinish                       = (*Dispatcher)(nil)
	_ ContextStart                      = (*Dispatcher)(nil)
	_ ContextFinish                     = (*Dispatcher)(nil)
	_ BeforeClass                       = (*Dispatcher)(nil)
	_ AfterClass                        = (*Dispatcher)(nil)
	_ BeforeConfiguration               = (*Dispatcher)(nil)
	_ ConfigurationSuccess              = (*Dispatcher)(nil)
	_ ConfigurationFailure              = (*Dispatcher)(nil)
	_ ConfigurationSkip                 = (*Dispatcher)(nil)
	_ BeforeInvocation                  = (*Dispatcher)(nil)
	_ AfterInvocation                   = (*Dispatcher)(nil)
	_ TestStart                         = (*Dispatcher)(nil)
	_ TestSuccess                       = (*Dispatcher)(nil)
	_ TestFailure                       = (*Dispatcher)(nil)
	_ TestSkipped                       = (*Dispatcher)(nil)
	_ TestFailedWithinSuccessPercentage = (*Dispatcher)(nil)
	_ Interceptor                       = (*Dispatcher)(nil)
	_ Transformer                       = (*Dispatcher)(nil)
)

// New creates a Dispatcher and attaches the discovered listeners followed
// by those given with WithListeners. Any attach failure is returned as a
// *ConfigError.
func New(opts ...Option) (*Dispatcher, error) {
	cfg := defaultDispatcherConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.runID == "" {
		cfg.runID = uuid.NewString()
	}

	d := &Dispatcher{
		registry: NewRegistry(),
		runID:    cfg.runID,
		logger:   observability.EnrichLogger(cfg.logger, cfg.runID),
		metrics:  cfg.metrics,
		spans:    cfg.spans,
	}

	if cfg.discovery != nil {
		discovered, err := cfg.discovery.Load()
		if err != nil {
			return nil, &ConfigError{Op: "discover", Err: err}
		}
		for _, l := range discovered {
			if _, err := d.attach(nil, l, "discovery"); err != nil {
				return nil, err
			}
		}
	}
	for _, l := range cfg.listeners {
		if _, err := d.attach(nil, l, "option"); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// RunID returns the dispatcher's run ID.
func (d *Dispatcher) RunID() string {
	return d.runID
}

// Registry returns the dispatcher's listener registry.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Attach attaches a listener by type, by instance, or both. See
// Registry.Attach.
func (d *Dispatcher) Attach(typ reflect.Type, instance any) error {
	_, err := d.attach(typ, instance, "explicit")
	return err
}

// Attach attaches a listener of type T, constructing it from its type.
func Attach[T any](d *Dispatcher) error {
	return d.Attach(reflect.TypeOf((*T)(nil)).Elem(), nil)
}

// AttachInstance attaches l keyed by its concrete type.
func AttachInstance(d *Dispatcher, l any) error {
	return d.Attach(nil, l)
}

func (d *Dispatcher) attach(typ reflect.Type, instance any, source string) (bool, error) {
	l, attached, err := d.registry.attach(typ, instance)
	if err != nil || !attached {
		return false, err
	}
	name := reflect.TypeOf(l).String()
	observability.LogAttach(d.logger, name, source)
	d.metrics.RecordAttach(context.Background(), name)
	return true, nil
}

// Resolve attaches the listeners named by the listener marker of class or
// its nearest marked ancestor. Each marked class is resolved once; later
// calls, including ones for other classes inheriting the same marker, do
// nothing. When a listed type cannot be attached the marker stays
// unresolved and the next call tries again; listeners attached before
// the failure are kept.
func (d *Dispatcher) Resolve(class *harness.Class) error {
	marked := class.Marked()
	if marked == nil || !d.registry.mark(marked) {
		return nil
	}

	count := 0
	for _, typ := range marked.Listeners.Types {
		attached, err := d.attach(typ, nil, "marker")
		if err != nil {
			d.registry.unmark(marked)
			return err
		}
		if attached {
			count++
		}
	}
	observability.LogMarkerResolved(d.logger, class.Name, marked.Name, count)
	return nil
}

// mustResolve is Resolve for hooks that cannot return an error.
func (d *Dispatcher) mustResolve(class *harness.Class) {
	if err := d.Resolve(class); err != nil {
		panic(err)
	}
}

// deliver calls call for each hook in the order kind requires.
func deliver[H any](ctx context.Context, d *Dispatcher, kind event.Kind, subject string, hooks []H, call func(context.Context, H)) {
	start := time.Now()
	ctx, span := d.spans.StartDispatchSpan(ctx, kind.String(), subject, len(hooks))
	defer func() {
		if p := recover(); p != nil {
			d.spans.EndSpanWithError(span, fmt.Errorf("listener panic: %v", p))
			panic(p)
		}
		d.spans.EndSpanWithError(span, nil)
		d.metrics.RecordDispatch(ctx, kind.String(), len(hooks), time.Since(start))
	}()

	if kind.Entry() {
		for i := len(hooks) - 1; i >= 0; i-- {
			call(ctx, hooks[i])
		}
		return
	}
	for _, h := range hooks {
		call(ctx, h)
	}
}

func methodName(m *harness.Method) string {
	if m == nil {
		return ""
	}
	if m.Class == nil {
		return m.Name
	}
	return m.Class.Name + "." + m.Name
}

func resultName(r *harness.Result) string {
	if r == nil {
		return ""
	}
	return methodName(r.Method)
}

// OnExecutionStart implements ExecutionStart.
func (d *Dispatcher) OnExecutionStart(ctx context.Context) {
	deliver(ctx, d, event.ExecutionStart, "", snapshot(d.registry, &d.registry.executionStart),
		func(ctx context.Context, h ExecutionStart) { h.OnExecutionStart(ctx) })
}

// OnExecutionFinish implements ExecutionFinish.
func (d *Dispatcher) OnExecutionFinish(ctx context.Context) {
	deliver(ctx, d, event.ExecutionFinish, "", snapshot(d.registry, &d.registry.executionFinish),
		func(ctx context.Context, h ExecutionFinish) { h.OnExecutionFinish(ctx) })
}

// OnSuiteStart stores d on the suite, so Find can locate it, and delivers
// the event.
func (d *Dispatcher) OnSuiteStart(ctx context.Context, s *harness.Suite) {
	if s != nil {
		s.SetAttribute(SuiteAttribute, d)
	}
	deliver(ctx, d, event.SuiteStart, suiteName(s), snapshot(d.registry, &d.registry.suiteStart),
		func(ctx context.Context, h SuiteStart) { h.OnSuiteStart(ctx, s) })
}

// OnSuiteFinish implements SuiteFinish.
func (d *Dispatcher) OnSuiteFinish(ctx context.Context, s *harness.Suite) {
	deliver(ctx, d, event.SuiteFinish, suiteName(s), snapshot(d.registry, &d.registry.suiteFinish),
		func(ctx context.Context, h SuiteFinish) { h.OnSuiteFinish(ctx, s) })
}

func suiteName(s *harness.Suite) string {
	if s == nil {
		return ""
	}
	return s.Name
}

func contextName(c *harness.Context) string {
	if c == nil {
		return ""
	}
	return c.Name
}

func className(c *harness.Class) string {
	if c == nil {
		return ""
	}
	return c.Name
}

// OnContextStart implements ContextStart.
func (d *Dispatcher) OnContextStart(ctx context.Context, c *harness.Context) {
	deliver(ctx, d, event.ContextStart, contextName(c), snapshot(d.registry, &d.registry.contextStart),
		func(ctx context.Context, h ContextStart) { h.OnContextStart(ctx, c) })
}

// OnContextFinish implements ContextFinish.
func (d *Dispatcher) OnContextFinish(ctx context.Context, c *harness.Context) {
	deliver(ctx, d, event.ContextFinish, contextName(c), snapshot(d.registry, &d.registry.contextFinish),
		func(ctx context.Context, h ContextFinish) { h.OnContextFinish(ctx, c) })
}

// OnBeforeClass resolves the class's listener marker and delivers the
// event, so listeners it names already see it. It panics with a
// *ConfigError when a marked listener cannot be attached.
func (d *Dispatcher) OnBeforeClass(ctx context.Context, c *harness.Class) {
	d.mustResolve(c)
	deliver(ctx, d, event.BeforeClass, className(c), snapshot(d.registry, &d.registry.beforeClass),
		func(ctx context.Context, h BeforeClass) { h.OnBeforeClass(ctx, c) })
}

// OnAfterClass implements AfterClass.
func (d *Dispatcher) OnAfterClass(ctx context.Context, c *harness.Class) {
	deliver(ctx, d, event.AfterClass, className(c), snapshot(d.registry, &d.registry.afterClass),
		func(ctx context.Context, h AfterClass) { h.OnAfterClass(ctx, c) })
}

// OnBeforeConfiguration implements BeforeConfiguration.
func (d *Dispatcher) OnBeforeConfiguration(ctx context.Context, r *harness.Result) {
	deliver(ctx, d, event.BeforeConfiguration, resultName(r), snapshot(d.registry, &d.registry.beforeConfiguration),
		func(ctx context.Context, h BeforeConfiguration) { h.OnBeforeConfiguration(ctx, r) })
}

// OnConfigurationSuccess implements ConfigurationSuccess.
func (d *Dispatcher) OnConfigurationSuccess(ctx context.Context, r *harness.Result) {
	deliver(ctx, d, event.ConfigurationSuccess, resultName(r), snapshot(d.registry, &d.registry.configurationSuccess),
		func(ctx context.Context, h ConfigurationSuccess) { h.OnConfigurationSuccess(ctx, r) })
}

// OnConfigurationFailure implements ConfigurationFailure.
func (d *Dispatcher) OnConfigurationFailure(ctx context.Context, r *harness.Result) {
	deliver(ctx, d, event.ConfigurationFailure, resultName(r), snapshot(d.registry, &d.registry.configurationFailure),
		func(ctx context.Context, h ConfigurationFailure) { h.OnConfigurationFailure(ctx, r) })
}

// OnConfigurationSkip implements ConfigurationSkip.
func (d *Dispatcher) OnConfigurationSkip(ctx context.Context, r *harness.Result) {
	deliver(ctx, d, event.ConfigurationSkip, resultName(r), snapshot(d.registry, &d.registry.configurationSkip),
		func(ctx context.Context, h ConfigurationSkip) { h.OnConfigurationSkip(ctx, r) })
}

// OnBeforeInvocation resolves the listener marker of the invoked method's
// class and delivers the event.
func (d *Dispatcher) OnBeforeInvocation(ctx context.Context, r *harness.Result) {
	if r != nil && r.Method != nil {
		d.mustResolve(r.Method.Class)
	}
	deliver(ctx, d, event.BeforeInvocation, resultName(r), snapshot(d.registry, &d.registry.beforeInvocation),
		func(ctx context.Context, h BeforeInvocation) { h.OnBeforeInvocation(ctx, r) })
}

// OnAfterInvocation implements AfterInvocation.
func (d *Dispatcher) OnAfterInvocation(ctx context.Context, r *harness.Result) {
	deliver(ctx, d, event.AfterInvocation, resultName(r), snapshot(d.registry, &d.registry.afterInvocation),
		func(ctx context.Context, h AfterInvocation) { h.OnAfterInvocation(ctx, r) })
}

// OnTestStart implements TestStart.
func (d *Dispatcher) OnTestStart(ctx context.Context, r *harness.Result) {
	deliver(ctx, d, event.TestStart, resultName(r), snapshot(d.registry, &d.registry.testStart),
		func(ctx context.Context, h TestStart) { h.OnTestStart(ctx, r) })
}

// OnTestSuccess implements TestSuccess.
func (d *Dispatcher) OnTestSuccess(ctx context.Context, r *harness.Result) {
	deliver(ctx, d, event.TestSuccess, resultName(r), snapshot(d.registry, &d.registry.testSuccess),
		func(ctx context.Context, h TestSuccess) { h.OnTestSuccess(ctx, r) })
}

// OnTestFailure implements TestFailure.
func (d *Dispatcher) OnTestFailure(ctx context.Context, r *harness.Result) {
	deliver(ctx, d, event.TestFailure, resultName(r), snapshot(d.registry, &d.registry.testFailure),
		func(ctx context.Context, h TestFailure) { h.OnTestFailure(ctx, r) })
}

// OnTestSkipped implements TestSkipped.
func (d *Dispatcher) OnTestSkipped(ctx context.Context, r *harness.Result) {
	deliver(ctx, d, event.TestSkipped, resultName(r), snapshot(d.registry, &d.registry.testSkipped),
		func(ctx context.Context, h TestSkipped) { h.OnTestSkipped(ctx, r) })
}

// OnTestFailedWithinSuccessPercentage implements TestFailedWithinSuccessPercentage.
func (d *Dispatcher) OnTestFailedWithinSuccessPercentage(ctx context.Context, r *harness.Result) {
	deliver(ctx, d, event.TestFailedWithinSuccessPercentage, resultName(r), snapshot(d.registry, &d.registry.testWithinPercentage),
		func(ctx context.Context, h TestFailedWithinSuccessPercentage) { h.OnTestFailedWithinSuccessPercentage(ctx, r) })
}

// Intercept passes units through every interceptor in attach order, each
// receiving the previous one's output, and returns the final list.
func (d *Dispatcher) Intercept(ctx context.Context, c *harness.Context, units []harness.MethodInstance) []harness.MethodInstance {
	deliver(ctx, d, event.Intercept, contextName(c), snapshot(d.registry, &d.registry.interceptors),
		func(ctx context.Context, h Interceptor) { units = h.Intercept(ctx, c, units) })
	return units
}

// Transform resolves the listener marker of m's class and lets every
// transformer adjust m. It panics with a *ConfigError when a marked
// listener cannot be attached.
func (d *Dispatcher) Transform(ctx context.Context, m *harness.Method) {
	if m != nil {
		d.mustResolve(m.Class)
	}
	deliver(ctx, d, event.Transform, methodName(m), snapshot(d.registry, &d.registry.transformers),
		func(ctx context.Context, h Transformer) { h.Transform(ctx, m) })
}
