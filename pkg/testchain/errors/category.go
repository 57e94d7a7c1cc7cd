// Package errors classifies invocation failures so retry policies can
// decide whether running a unit again is likely to help.
//
// The package provides:
//   - Categorization: transient, permanent or skipped failures
//   - Root-cause normalization of wrapped failures
//   - Typed failures hosts and units can return
package errors

import (
	"context"
	"errors"
	"fmt"
)

// Category represents how a failure should be treated.
type Category int

const (
	// CategoryTransient indicates a rerun will likely pass.
	// Examples: timeouts, lost connections, flaky infrastructure.
	CategoryTransient Category = iota

	// CategoryPermanent indicates a rerun won't help.
	// Examples: assertion failures, invalid test data.
	CategoryPermanent

	// CategorySkipped indicates the unit asked to be skipped.
	CategorySkipped
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryTransient:
		return "transient"
	case CategoryPermanent:
		return "permanent"
	case CategorySkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// CategorizedError wraps a failure with its category.
type CategorizedError struct {
	// Err is the underlying error.
	Err error

	// Category indicates how this failure should be treated.
	Category Category

	// Context describes what the unit was doing.
	Context string
}

// Error implements the error interface.
func (e *CategorizedError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: %s (category: %s)", e.Context, e.Err, e.Category)
	}
	return fmt.Sprintf("%s (category: %s)", e.Err, e.Category)
}

// Unwrap returns the underlying error.
func (e *CategorizedError) Unwrap() error {
	return e.Err
}

// NewCategorized creates a new categorized error.
func NewCategorized(err error, category Category, context string) *CategorizedError {
	return &CategorizedError{
		Err:      err,
		Category: category,
		Context:  context,
	}
}

// Transient marks err as worth retrying.
func Transient(err error, context string) *CategorizedError {
	return NewCategorized(err, CategoryTransient, context)
}

// Permanent marks err as not worth retrying.
func Permanent(err error, context string) *CategorizedError {
	return NewCategorized(err, CategoryPermanent, context)
}

// Categorize determines how a failure should be treated.
func Categorize(err error) Category {
	if err == nil {
		return CategoryPermanent
	}

	var catErr *CategorizedError
	if errors.As(err, &catErr) {
		return catErr.Category
	}

	var skipErr *SkipError
	if errors.As(err, &skipErr) {
		return CategorySkipped
	}

	var timeoutErr *TimeoutError
	if errors.As(err, &timeoutErr) {
		return CategoryTransient
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return CategoryTransient
	}

	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return CategoryTransient
	}

	// Unknown failures are permanent (fail safe)
	return CategoryPermanent
}

// IsRetryable reports whether the failure is transient.
func IsRetryable(err error) bool {
	return Categorize(err) == CategoryTransient
}

// IsSkip reports whether the failure is a skip request.
func IsSkip(err error) bool {
	return Categorize(err) == CategorySkipped
}
