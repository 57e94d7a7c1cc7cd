// Package retry decides whether a failed test invocation is run again.
//
// Every distinct invocation (suite, context, class, method and arguments)
// gets its own budget, seeded from the configured maximum the first time it
// fails. Each failure consumes one unit; once the budget is spent the
// invocation is never retried again during the run. While budget remains,
// the configured policies are asked in order and the first one to agree
// grants the retry.
package retry

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	chainerrors "github.com/randalmurphal/testchain/pkg/testchain/errors"
	"github.com/randalmurphal/testchain/pkg/testchain/harness"
	"github.com/randalmurphal/testchain/pkg/testchain/invocation"
	"github.com/randalmurphal/testchain/pkg/testchain/observability"
)

// Coordinator is a harness.RetryAnalyzer backed by a per-invocation
// budget table and a policy chain. It is safe for concurrent use.
type Coordinator struct {
	maxRetry int
	moreInfo bool
	policies []Policy
	explicit bool
	budgets  *Budgets
	logger   *slog.Logger
	metrics  observability.MetricsRecorder
	spans    observability.SpanManager
}

// Compile-time interface check.
var _ harness.RetryAnalyzer = (*Coordinator)(nil)

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithMaxRetry sets the budget each invocation starts with. Default: 0,
// which disables retry.
func WithMaxRetry(n int) Option {
	return func(c *Coordinator) {
		if n >= 0 {
			c.maxRetry = n
		}
	}
}

// WithMoreInfo logs the failure with every granted retry even when debug
// logging is off.
func WithMoreInfo(enabled bool) Option {
	return func(c *Coordinator) {
		c.moreInfo = enabled
	}
}

// WithPolicies sets the policy chain, replacing the discovered policies.
func WithPolicies(policies ...Policy) Option {
	return func(c *Coordinator) {
		c.policies = append([]Policy(nil), policies...)
		c.explicit = true
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder. Default: no-op.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(c *Coordinator) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithSpanManager sets the span manager used to annotate granted retries.
func WithSpanManager(sm observability.SpanManager) Option {
	return func(c *Coordinator) {
		if sm != nil {
			c.spans = sm
		}
	}
}

// New creates a Coordinator. Unless WithPolicies is given, the policy chain
// is loaded from Policies; a failing policy factory is returned as an error.
func New(opts ...Option) (*Coordinator, error) {
	c := &Coordinator{
		budgets: NewBudgets(),
		logger:  slog.Default(),
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if !c.explicit {
		policies, err := Policies.Load()
		if err != nil {
			return nil, fmt.Errorf("load retry policies: %w", err)
		}
		c.policies = policies
	}
	return c, nil
}

// MaxRetry returns the budget each invocation starts with.
func (c *Coordinator) MaxRetry() int {
	return c.maxRetry
}

// Budgets returns the coordinator's budget table.
func (c *Coordinator) Budgets() *Budgets {
	return c.budgets
}

// ShouldRetry reports whether the failed invocation recorded by r should be
// run again. The failure on r is replaced by its root cause first.
func (c *Coordinator) ShouldRetry(ctx context.Context, r *harness.Result) bool {
	if r == nil {
		return false
	}
	r.Err = chainerrors.RootCause(r.Err)

	id := invocation.FromResult(r)
	var params []harness.Param
	if r.Method != nil {
		params = r.Method.Params
	}
	signature := id.Signature(params)

	ok, remaining := c.budgets.Take(id, c.maxRetry)
	if !ok {
		c.metrics.RecordRetry(ctx, false, true)
		observability.LogRetryDeclined(c.logger, signature, 0)
		return false
	}

	granted := false
	for _, p := range c.policies {
		if p.ShouldRetry(ctx, r) {
			granted = true
			break
		}
	}

	c.metrics.RecordRetry(ctx, granted, false)
	if !granted {
		observability.LogRetryDeclined(c.logger, signature, remaining)
		return false
	}

	observability.LogRetry(c.logger, id.Suite, id.Context, signature, r.Err, c.moreInfo)
	c.spans.AddSpanEvent(ctx, "retry.granted",
		attribute.String("invocation", signature),
		attribute.Int("remaining", remaining),
	)
	return true
}
