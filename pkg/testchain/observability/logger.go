// Package observability provides logging, metrics and tracing for the
// listener chain.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"context"
	"log/slog"
	"time"
)

// EnrichLogger adds the dispatcher run ID to a logger.
//
// Example:
//
//	enriched := EnrichLogger(logger, "run-123")
//	enriched.Info("attached") // includes run_id
func EnrichLogger(logger *slog.Logger, runID string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(slog.String("run_id", runID))
}

// LogAttach logs a listener attachment.
func LogAttach(logger *slog.Logger, listenerType, source string) {
	if logger == nil {
		return
	}
	logger.Debug("listener attached",
		slog.String("listener", listenerType),
		slog.String("source", source),
	)
}

// LogMarkerResolved logs resolution of a class's declarative listener marker.
func LogMarkerResolved(logger *slog.Logger, class, markedBy string, count int) {
	if logger == nil {
		return
	}
	logger.Debug("listener marker resolved",
		slog.String("class", class),
		slog.String("marked_by", markedBy),
		slog.Int("listeners", count),
	)
}

// LogRetry logs a granted retry at WARN level. err is included only when
// verbose is set or the logger has debug enabled.
func LogRetry(logger *slog.Logger, suite, testContext, signature string, err error, verbose bool) {
	if logger == nil {
		return
	}
	attrs := []any{
		slog.String("suite", suite),
		slog.String("context", testContext),
		slog.String("invocation", signature),
	}
	if err != nil && (verbose || logger.Enabled(context.Background(), slog.LevelDebug)) {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	logger.Warn("### RETRY ###", attrs...)
}

// LogRetryDeclined logs a failure that will not be retried.
func LogRetryDeclined(logger *slog.Logger, signature string, remaining int) {
	if logger == nil {
		return
	}
	logger.Debug("retry declined",
		slog.String("invocation", signature),
		slog.Int("remaining", remaining),
	)
}

// LogPropagationSkipped logs a propagation step skipped because the
// context carries no flow.
func LogPropagationSkipped(logger *slog.Logger, method, phase string) {
	if logger == nil {
		return
	}
	logger.Debug("attribute propagation skipped: no flow in context",
		slog.String("method", method),
		slog.String("phase", phase),
	)
}

// LogTimeoutRaised logs a unit time limit raised to the configured default.
func LogTimeoutRaised(logger *slog.Logger, method string, from, to time.Duration) {
	if logger == nil {
		return
	}
	logger.Debug("test timeout raised",
		slog.String("method", method),
		slog.Duration("from", from),
		slog.Duration("to", to),
	)
}
