package testchain

import (
	"log/slog"

	"github.com/randalmurphal/testchain/pkg/testchain/discovery"
	"github.com/randalmurphal/testchain/pkg/testchain/observability"
)

// dispatcherConfig holds configuration for a Dispatcher.
type dispatcherConfig struct {
	logger    *slog.Logger
	metrics   observability.MetricsRecorder
	spans     observability.SpanManager
	discovery *discovery.Provider[any]
	listeners []any
	runID     string
}

// defaultDispatcherConfig returns the default Dispatcher configuration.
func defaultDispatcherConfig() dispatcherConfig {
	return dispatcherConfig{
		logger:    slog.Default(),
		metrics:   observability.NoopMetrics{},
		spans:     observability.NoopSpanManager{},
		discovery: Listeners,
	}
}

// Option configures a Dispatcher.
type Option func(*dispatcherConfig)

// WithLogger sets the logger. Default: slog.Default().
//
// The logger is enriched with the dispatcher's run ID.
func WithLogger(logger *slog.Logger) Option {
	return func(c *dispatcherConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder. Default: no-op.
//
// Example:
//
//	d, err := testchain.New(testchain.WithMetrics(observability.NewMetricsRecorder()))
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(c *dispatcherConfig) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithTracing enables a span per delivered event. Default: disabled.
func WithTracing(enabled bool) Option {
	return func(c *dispatcherConfig) {
		if enabled {
			c.spans = observability.NewSpanManager()
		} else {
			c.spans = observability.NoopSpanManager{}
		}
	}
}

// WithDiscovery sets the provider whose listeners are attached by New.
// Default: Listeners. A nil provider disables discovery.
func WithDiscovery(p *discovery.Provider[any]) Option {
	return func(c *dispatcherConfig) {
		c.discovery = p
	}
}

// WithListeners attaches the given listeners after discovered ones.
func WithListeners(listeners ...any) Option {
	return func(c *dispatcherConfig) {
		c.listeners = append(c.listeners, listeners...)
	}
}

// WithRunID sets the run ID. Default: a random UUID.
func WithRunID(id string) Option {
	return func(c *dispatcherConfig) {
		c.runID = id
	}
}
