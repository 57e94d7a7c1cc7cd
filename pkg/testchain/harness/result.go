package harness

// Status is the outcome of a single invocation.
type Status int

const (
	StatusStarted Status = iota
	StatusSuccess
	StatusFailure
	StatusSkipped
	StatusFailedWithinSuccessPercentage
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusStarted:
		return "started"
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	case StatusSkipped:
		return "skipped"
	case StatusFailedWithinSuccessPercentage:
		return "failed_within_success_percentage"
	default:
		return "unknown"
	}
}

// Result is the record of one invocation of a method. It carries the
// per-invocation attribute map that propagation reads and writes.
type Result struct {
	Attributes

	Method  *Method
	Context *Context

	// Instance is the object the method runs on, nil for free functions.
	Instance any

	// Args are the actual arguments of this invocation.
	Args []any

	Status Status
	Err    error
}

// NewResult creates a result for one invocation of m inside c.
func NewResult(c *Context, m *Method, instance any, args ...any) *Result {
	return &Result{
		Method:   m,
		Context:  c,
		Instance: instance,
		Args:     args,
	}
}

// Suite returns the suite owning the result, nil when detached.
func (r *Result) Suite() *Suite {
	if r == nil || r.Context == nil {
		return nil
	}
	return r.Context.Suite
}
