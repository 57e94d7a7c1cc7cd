package event

import (
	"context"

	"github.com/randalmurphal/testchain/pkg/testchain/harness"
)

// Recorder is a listener that appends every notification it receives to a
// Log. It handles every Kind.
type Recorder struct {
	name string
	log  *Log
}

// NewRecorder creates a Recorder writing to log under the given source name.
func NewRecorder(name string, log *Log) *Recorder {
	r := &Recorder{name: name, log: log}
	_ = r.Init()
	return r
}

// Init fills in defaults so a zero Recorder can be attached by type.
func (r *Recorder) Init() error {
	if r.name == "" {
		r.name = "recorder"
	}
	if r.log == nil {
		r.log = &Log{}
	}
	return nil
}

// Log returns the log the recorder writes to.
func (r *Recorder) Log() *Log {
	return r.log
}

func (r *Recorder) add(kind Kind, subject string) {
	r.log.Add(kind, subject, r.name)
}

func methodName(res *harness.Result) string {
	if res == nil || res.Method == nil {
		return ""
	}
	return res.Method.Name
}

func (r *Recorder) OnExecutionStart(context.Context)  { r.add(ExecutionStart, "") }
func (r *Recorder) OnExecutionFinish(context.Context) { r.add(ExecutionFinish, "") }

func (r *Recorder) OnSuiteStart(_ context.Context, s *harness.Suite)  { r.add(SuiteStart, s.Name) }
func (r *Recorder) OnSuiteFinish(_ context.Context, s *harness.Suite) { r.add(SuiteFinish, s.Name) }

func (r *Recorder) OnContextStart(_ context.Context, c *harness.Context) {
	r.add(ContextStart, c.Name)
}

func (r *Recorder) OnContextFinish(_ context.Context, c *harness.Context) {
	r.add(ContextFinish, c.Name)
}

func (r *Recorder) OnBeforeClass(_ context.Context, c *harness.Class) { r.add(BeforeClass, c.Name) }
func (r *Recorder) OnAfterClass(_ context.Context, c *harness.Class)  { r.add(AfterClass, c.Name) }

func (r *Recorder) OnBeforeConfiguration(_ context.Context, res *harness.Result) {
	r.add(BeforeConfiguration, methodName(res))
}

func (r *Recorder) OnConfigurationSuccess(_ context.Context, res *harness.Result) {
	r.add(ConfigurationSuccess, methodName(res))
}

func (r *Recorder) OnConfigurationFailure(_ context.Context, res *harness.Result) {
	r.add(ConfigurationFailure, methodName(res))
}

func (r *Recorder) OnConfigurationSkip(_ context.Context, res *harness.Result) {
	r.add(ConfigurationSkip, methodName(res))
}

func (r *Recorder) OnBeforeInvocation(_ context.Context, res *harness.Result) {
	r.add(BeforeInvocation, methodName(res))
}

func (r *Recorder) OnAfterInvocation(_ context.Context, res *harness.Result) {
	r.add(AfterInvocation, methodName(res))
}

func (r *Recorder) OnTestStart(_ context.Context, res *harness.Result) {
	r.add(TestStart, methodName(res))
}

func (r *Recorder) OnTestSuccess(_ context.Context, res *harness.Result) {
	r.add(TestSuccess, methodName(res))
}

func (r *Recorder) OnTestFailure(_ context.Context, res *harness.Result) {
	r.add(TestFailure, methodName(res))
}

func (r *Recorder) OnTestSkipped(_ context.Context, res *harness.Result) {
	r.add(TestSkipped, methodName(res))
}

func (r *Recorder) OnTestFailedWithinSuccessPercentage(_ context.Context, res *harness.Result) {
	r.add(TestFailedWithinSuccessPercentage, methodName(res))
}

// Intercept records the context and returns units unchanged.
func (r *Recorder) Intercept(_ context.Context, c *harness.Context, units []harness.MethodInstance) []harness.MethodInstance {
	r.add(Intercept, c.Name)
	return units
}

func (r *Recorder) Transform(_ context.Context, m *harness.Method) {
	r.add(Transform, m.Name)
}
