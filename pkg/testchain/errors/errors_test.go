package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type netTimeout struct{}

func (netTimeout) Error() string { return "i/o timeout" }
func (netTimeout) Timeout() bool { return true }

func TestCategoryString(t *testing.T) {
	tests := []struct {
		category Category
		expected string
	}{
		{CategoryTransient, "transient"},
		{CategoryPermanent, "permanent"},
		{CategorySkipped, "skipped"},
		{Category(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.category.String())
		})
	}
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Category
	}{
		{"nil error", nil, CategoryPermanent},
		{"timeout error", &TimeoutError{Operation: "login", Limit: time.Second}, CategoryTransient},
		{"wrapped timeout", fmt.Errorf("step: %w", &TimeoutError{}), CategoryTransient},
		{"deadline exceeded", context.DeadlineExceeded, CategoryTransient},
		{"net timeout", netTimeout{}, CategoryTransient},
		{"skip", &SkipError{Reason: "no browser"}, CategorySkipped},
		{"categorized", Transient(errors.New("flaky"), "upload"), CategoryTransient},
		{"categorized permanent", Permanent(&TimeoutError{}, "x"), CategoryPermanent},
		{"unknown", errors.New("assertion failed"), CategoryPermanent},
		{"canceled", context.Canceled, CategoryPermanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Categorize(tt.err))
		})
	}
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(&TimeoutError{}))
	assert.False(t, IsRetryable(errors.New("boom")))
	assert.False(t, IsRetryable(nil))
}

func TestIsSkip(t *testing.T) {
	assert.True(t, IsSkip(&SkipError{}))
	assert.False(t, IsSkip(&TimeoutError{}))
}

func TestCategorizedError(t *testing.T) {
	base := errors.New("connection reset")

	withCtx := Transient(base, "upload")
	assert.Equal(t, "upload: connection reset (category: transient)", withCtx.Error())
	assert.ErrorIs(t, withCtx, base)

	noCtx := NewCategorized(base, CategoryPermanent, "")
	assert.Equal(t, "connection reset (category: permanent)", noCtx.Error())
}

func TestTypedErrors(t *testing.T) {
	assert.Equal(t, "timeout after 2s: login", (&TimeoutError{Operation: "login", Limit: 2 * time.Second}).Error())
	assert.Equal(t, "skipped", (&SkipError{}).Error())
	assert.Equal(t, "skipped: no browser", (&SkipError{Reason: "no browser"}).Error())
}

func TestRootCause(t *testing.T) {
	root := errors.New("root")
	categorized := Transient(fmt.Errorf("x: %w", root), "ctx")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"unwrapped", root, root},
		{"single wrap", fmt.Errorf("a: %w", root), root},
		{"deep wrap", fmt.Errorf("a: %w", fmt.Errorf("b: %w", fmt.Errorf("c: %w", root))), root},
		{"categorized", categorized, categorized},
		{"wrapped categorized", fmt.Errorf("step: %w", categorized), categorized},
		{"joined follows first", errors.Join(fmt.Errorf("w: %w", root), errors.New("other")), root},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RootCause(tt.err))
		})
	}
}
