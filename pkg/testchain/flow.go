package testchain

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/randalmurphal/testchain/pkg/testchain/config"
	"github.com/randalmurphal/testchain/pkg/testchain/harness"
	"github.com/randalmurphal/testchain/pkg/testchain/observability"
	"github.com/randalmurphal/testchain/pkg/testchain/propagate"
	"github.com/randalmurphal/testchain/pkg/testchain/retry"
)

// FlowController carries attributes from entry routines into test units
// and from test units into exit routines, using the propagate.Flow found
// in the invocation context. It also applies the configured test timeout
// and installs the retry coordinator on test units.
//
// Routing by phase:
//
//	after  BeforeMethod  merge the routine's attributes into the entry carrier
//	before Test          inject and clear the entry carrier
//	after  Test          replace the exit carrier with the unit's attributes
//	before AfterMethod   inject the exit carrier, clearing it unless preserved
//
// A FlowController attached by type reads its settings from the
// environment in Init.
type FlowController struct {
	settings config.Settings
	retry    harness.RetryAnalyzer
	logger   *slog.Logger
}

// Compile-time interface checks.
var (
	_ InvocationListener = (*FlowController)(nil)
	_ Transformer        = (*FlowController)(nil)
	_ Initializer        = (*FlowController)(nil)
)

// FlowOption configures a FlowController.
type FlowOption func(*FlowController)

// WithFlowLogger sets the controller's logger. Default: slog.Default().
func WithFlowLogger(logger *slog.Logger) FlowOption {
	return func(f *FlowController) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithRetryAnalyzer sets the analyzer installed on test units. Default: a
// retry.Coordinator built from the settings.
func WithRetryAnalyzer(a harness.RetryAnalyzer) FlowOption {
	return func(f *FlowController) {
		f.retry = a
	}
}

// NewFlowController creates a FlowController with the given settings.
func NewFlowController(settings config.Settings, opts ...FlowOption) (*FlowController, error) {
	f := &FlowController{settings: settings}
	for _, opt := range opts {
		opt(f)
	}
	if err := f.init(); err != nil {
		return nil, err
	}
	return f, nil
}

// Init loads settings from the TESTCHAIN_ environment variables.
func (f *FlowController) Init() error {
	settings, err := config.Load("")
	if err != nil {
		return err
	}
	f.settings = settings
	return f.init()
}

func (f *FlowController) init() error {
	if f.logger == nil {
		f.logger = slog.Default()
	}
	if f.retry == nil {
		c, err := retry.New(
			retry.WithMaxRetry(f.settings.MaxRetry),
			retry.WithMoreInfo(f.settings.RetryMoreInfo),
			retry.WithLogger(f.logger),
		)
		if err != nil {
			return fmt.Errorf("flow controller: %w", err)
		}
		f.retry = c
	}
	return nil
}

// Settings returns the controller's settings.
func (f *FlowController) Settings() config.Settings {
	return f.settings
}

// RetryAnalyzer returns the analyzer installed on test units.
func (f *FlowController) RetryAnalyzer() harness.RetryAnalyzer {
	return f.retry
}

// OnBeforeInvocation injects carried attributes into r, then forwards to
// r's test instance when it is an InvocationListener.
func (f *FlowController) OnBeforeInvocation(ctx context.Context, r *harness.Result) {
	if r == nil || r.Method == nil {
		return
	}
	switch r.Method.Phase {
	case harness.PhaseTest:
		if flow, ok := f.flow(ctx, r); ok {
			flow.InjectEntry(r)
		}
	case harness.PhaseAfterMethod:
		if flow, ok := f.flow(ctx, r); ok {
			flow.InjectExit(r, f.settings.PreserveExitAttributes)
		}
	}
	if l, ok := r.Instance.(InvocationListener); ok {
		l.OnBeforeInvocation(ctx, r)
	}
}

// OnAfterInvocation forwards to r's test instance when it is an
// InvocationListener, then captures r's attributes into the carriers.
func (f *FlowController) OnAfterInvocation(ctx context.Context, r *harness.Result) {
	if r == nil || r.Method == nil {
		return
	}
	if l, ok := r.Instance.(InvocationListener); ok {
		l.OnAfterInvocation(ctx, r)
	}
	switch r.Method.Phase {
	case harness.PhaseBeforeMethod:
		if flow, ok := f.flow(ctx, r); ok {
			flow.MergeEntry(propagate.Extract(r))
		}
	case harness.PhaseTest:
		if flow, ok := f.flow(ctx, r); ok {
			flow.CaptureExit(propagate.Extract(r))
		}
	}
}

func (f *FlowController) flow(ctx context.Context, r *harness.Result) (*propagate.Flow, bool) {
	flow, ok := propagate.FromContext(ctx)
	if !ok {
		observability.LogPropagationSkipped(f.logger, methodName(r.Method), r.Method.Phase.String())
	}
	return flow, ok
}

// Transform raises a test unit's timeout to the configured minimum and
// installs the retry analyzer when retry is enabled, the unit has no
// analyzer, and neither the unit nor its classes opt out.
func (f *FlowController) Transform(_ context.Context, m *harness.Method) {
	if m == nil || m.Phase != harness.PhaseTest {
		return
	}
	if limit := f.settings.TestTimeout; limit > m.Timeout {
		observability.LogTimeoutRaised(f.logger, methodName(m), m.Timeout, limit)
		m.Timeout = limit
	}
	if f.settings.MaxRetry > 0 && m.RetryAnalyzer == nil && !m.RetryDisabled() {
		m.RetryAnalyzer = f.retry
	}
}
