package testchain

import (
	"context"

	"github.com/randalmurphal/testchain/pkg/testchain/harness"
)

// Listeners implement any subset of the interfaces below. Each interface
// corresponds to one event.Kind; the registry probes an attached value for
// every interface once, when it is attached.

// ExecutionStart is notified once before the host starts running suites.
type ExecutionStart interface {
	OnExecutionStart(ctx context.Context)
}

// ExecutionFinish is notified once after the host has run every suite.
type ExecutionFinish interface {
	OnExecutionFinish(ctx context.Context)
}

// SuiteStart is notified when a suite starts.
type SuiteStart interface {
	OnSuiteStart(ctx context.Context, s *harness.Suite)
}

// SuiteFinish is notified when a suite finishes.
type SuiteFinish interface {
	OnSuiteFinish(ctx context.Context, s *harness.Suite)
}

// ContextStart is notified when a test context starts.
type ContextStart interface {
	OnContextStart(ctx context.Context, c *harness.Context)
}

// ContextFinish is notified when a test context finishes.
type ContextFinish interface {
	OnContextFinish(ctx context.Context, c *harness.Context)
}

// BeforeClass is notified before the first unit of a class runs.
type BeforeClass interface {
	OnBeforeClass(ctx context.Context, c *harness.Class)
}

// AfterClass is notified after the last unit of a class ran.
type AfterClass interface {
	OnAfterClass(ctx context.Context, c *harness.Class)
}

// BeforeConfiguration is notified before a configuration routine runs.
type BeforeConfiguration interface {
	OnBeforeConfiguration(ctx context.Context, r *harness.Result)
}

// ConfigurationSuccess is notified when a configuration routine passes.
type ConfigurationSuccess interface {
	OnConfigurationSuccess(ctx context.Context, r *harness.Result)
}

// ConfigurationFailure is notified when a configuration routine fails.
type ConfigurationFailure interface {
	OnConfigurationFailure(ctx context.Context, r *harness.Result)
}

// ConfigurationSkip is notified when a configuration routine is skipped.
type ConfigurationSkip interface {
	OnConfigurationSkip(ctx context.Context, r *harness.Result)
}

// BeforeInvocation is notified before any method, unit or routine, is invoked.
type BeforeInvocation interface {
	OnBeforeInvocation(ctx context.Context, r *harness.Result)
}

// AfterInvocation is notified after any method was invoked.
type AfterInvocation interface {
	OnAfterInvocation(ctx context.Context, r *harness.Result)
}

// TestStart is notified when a test unit starts.
type TestStart interface {
	OnTestStart(ctx context.Context, r *harness.Result)
}

// TestSuccess is notified when a test unit passes.
type TestSuccess interface {
	OnTestSuccess(ctx context.Context, r *harness.Result)
}

// TestFailure is notified when a test unit fails.
type TestFailure interface {
	OnTestFailure(ctx context.Context, r *harness.Result)
}

// TestSkipped is notified when a test unit is skipped.
type TestSkipped interface {
	OnTestSkipped(ctx context.Context, r *harness.Result)
}

// TestFailedWithinSuccessPercentage is notified when a test unit fails but
// stays within its allowed failure ratio.
type TestFailedWithinSuccessPercentage interface {
	OnTestFailedWithinSuccessPercentage(ctx context.Context, r *harness.Result)
}

// Interceptor may reorder or filter the units of a test context before
// they run. Interceptors are chained: each receives the previous output.
type Interceptor interface {
	Intercept(ctx context.Context, c *harness.Context, units []harness.MethodInstance) []harness.MethodInstance
}

// Transformer may adjust a method descriptor before the host schedules it.
type Transformer interface {
	Transform(ctx context.Context, m *harness.Method)
}

// InvocationListener is implemented by test instances that want to observe
// their own invocations. FlowController forwards to it.
type InvocationListener interface {
	BeforeInvocation
	AfterInvocation
}

// Initializer is implemented by listeners that need setup after being
// constructed from their type. A non-nil error aborts the attachment.
type Initializer interface {
	Init() error
}
