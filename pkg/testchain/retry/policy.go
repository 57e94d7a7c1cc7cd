package retry

import (
	"context"

	"github.com/randalmurphal/testchain/pkg/testchain/discovery"
	chainerrors "github.com/randalmurphal/testchain/pkg/testchain/errors"
	"github.com/randalmurphal/testchain/pkg/testchain/harness"
)

// Policy decides whether a failed invocation deserves another attempt.
// Policies only run while the invocation still has budget.
type Policy interface {
	ShouldRetry(ctx context.Context, r *harness.Result) bool
}

// PolicyFunc adapts a function to Policy.
type PolicyFunc func(ctx context.Context, r *harness.Result) bool

// ShouldRetry calls f.
func (f PolicyFunc) ShouldRetry(ctx context.Context, r *harness.Result) bool {
	return f(ctx, r)
}

// Policies is the global discovery source for retry policies. Coordinators
// created without WithPolicies load it at construction.
var Policies = discovery.NewProvider[Policy]()

// TransientPolicy retries failures that categorize as transient.
type TransientPolicy struct{}

// ShouldRetry reports whether r's failure is transient.
func (TransientPolicy) ShouldRetry(_ context.Context, r *harness.Result) bool {
	return r != nil && chainerrors.IsRetryable(r.Err)
}

// Always grants every retry the budget allows.
var Always Policy = PolicyFunc(func(context.Context, *harness.Result) bool { return true })
