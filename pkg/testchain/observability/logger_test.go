package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testHandler captures log records as JSON lines.
type testHandler struct {
	buf   *bytes.Buffer
	level slog.Level
	attrs []slog.Attr
}

func newTestHandler(level slog.Level) *testHandler {
	return &testHandler{buf: &bytes.Buffer{}, level: level}
}

func (h *testHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *testHandler) Handle(_ context.Context, r slog.Record) error {
	data := map[string]any{
		"level": r.Level.String(),
		"msg":   r.Message,
	}
	for _, attr := range h.attrs {
		data[attr.Key] = attr.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		data[a.Key] = a.Value.Any()
		return true
	})
	return json.NewEncoder(h.buf).Encode(data)
}

func (h *testHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &testHandler{
		buf:   h.buf,
		level: h.level,
		attrs: append(append([]slog.Attr(nil), h.attrs...), attrs...),
	}
}

func (h *testHandler) WithGroup(string) slog.Handler {
	return h
}

func (h *testHandler) lastRecord() map[string]any {
	lines := bytes.Split(bytes.TrimSpace(h.buf.Bytes()), []byte("\n"))
	if len(lines) == 0 || len(lines[len(lines)-1]) == 0 {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(lines[len(lines)-1], &m); err != nil {
		return nil
	}
	return m
}

func TestEnrichLogger(t *testing.T) {
	t.Run("adds run_id", func(t *testing.T) {
		h := newTestHandler(slog.LevelDebug)
		EnrichLogger(slog.New(h), "run-123").Info("hello")

		record := h.lastRecord()
		require.NotNil(t, record)
		assert.Equal(t, "run-123", record["run_id"])
		assert.Equal(t, "hello", record["msg"])
	})

	t.Run("nil logger returns nil", func(t *testing.T) {
		assert.Nil(t, EnrichLogger(nil, "run"))
	})
}

func TestLogAttach(t *testing.T) {
	h := newTestHandler(slog.LevelDebug)
	LogAttach(slog.New(h), "*acme.Screenshots", "marker")

	record := h.lastRecord()
	require.NotNil(t, record)
	assert.Equal(t, "DEBUG", record["level"])
	assert.Equal(t, "listener attached", record["msg"])
	assert.Equal(t, "*acme.Screenshots", record["listener"])
	assert.Equal(t, "marker", record["source"])

	assert.NotPanics(t, func() { LogAttach(nil, "x", "y") })
}

func TestLogMarkerResolved(t *testing.T) {
	h := newTestHandler(slog.LevelDebug)
	LogMarkerResolved(slog.New(h), "acme.Leaf", "acme.Base", 2)

	record := h.lastRecord()
	require.NotNil(t, record)
	assert.Equal(t, "listener marker resolved", record["msg"])
	assert.Equal(t, "acme.Leaf", record["class"])
	assert.Equal(t, "acme.Base", record["marked_by"])
	assert.Equal(t, float64(2), record["listeners"])

	assert.NotPanics(t, func() { LogMarkerResolved(nil, "a", "b", 0) })
}

func TestLogRetry(t *testing.T) {
	failure := errors.New("element not found")

	t.Run("warns without error at info level", func(t *testing.T) {
		h := newTestHandler(slog.LevelInfo)
		LogRetry(slog.New(h), "regression", "accounts", "LoginTest.login(|:password:|)", failure, false)

		record := h.lastRecord()
		require.NotNil(t, record)
		assert.Equal(t, "WARN", record["level"])
		assert.Equal(t, "### RETRY ###", record["msg"])
		assert.Equal(t, "regression", record["suite"])
		assert.Equal(t, "accounts", record["context"])
		assert.Equal(t, "LoginTest.login(|:password:|)", record["invocation"])
		assert.NotContains(t, record, "error")
	})

	t.Run("includes error when debug enabled", func(t *testing.T) {
		h := newTestHandler(slog.LevelDebug)
		LogRetry(slog.New(h), "s", "c", "T.m()", failure, false)
		assert.Equal(t, "element not found", h.lastRecord()["error"])
	})

	t.Run("includes error when verbose", func(t *testing.T) {
		h := newTestHandler(slog.LevelInfo)
		LogRetry(slog.New(h), "s", "c", "T.m()", failure, true)
		assert.Equal(t, "element not found", h.lastRecord()["error"])
	})

	t.Run("nil error", func(t *testing.T) {
		h := newTestHandler(slog.LevelDebug)
		LogRetry(slog.New(h), "s", "c", "T.m()", nil, true)
		assert.NotContains(t, h.lastRecord(), "error")
	})

	t.Run("nil logger does not panic", func(t *testing.T) {
		assert.NotPanics(t, func() { LogRetry(nil, "s", "c", "x", failure, true) })
	})
}

func TestLogRetryDeclined(t *testing.T) {
	h := newTestHandler(slog.LevelDebug)
	LogRetryDeclined(slog.New(h), "T.m()", 0)

	record := h.lastRecord()
	require.NotNil(t, record)
	assert.Equal(t, "retry declined", record["msg"])
	assert.Equal(t, float64(0), record["remaining"])

	assert.NotPanics(t, func() { LogRetryDeclined(nil, "x", 1) })
}

func TestLogPropagationSkipped(t *testing.T) {
	h := newTestHandler(slog.LevelDebug)
	LogPropagationSkipped(slog.New(h), "login", "test")

	record := h.lastRecord()
	require.NotNil(t, record)
	assert.Equal(t, "login", record["method"])
	assert.Equal(t, "test", record["phase"])

	assert.NotPanics(t, func() { LogPropagationSkipped(nil, "m", "p") })
}

func TestLogTimeoutRaised(t *testing.T) {
	h := newTestHandler(slog.LevelDebug)
	LogTimeoutRaised(slog.New(h), "login", time.Second, time.Minute)

	record := h.lastRecord()
	require.NotNil(t, record)
	assert.Equal(t, "test timeout raised", record["msg"])
	assert.Equal(t, "login", record["method"])

	assert.NotPanics(t, func() { LogTimeoutRaised(nil, "m", 0, 0) })
}
