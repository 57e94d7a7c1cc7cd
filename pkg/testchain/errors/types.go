package errors

import (
	"fmt"
	"time"
)

// TimeoutError indicates a unit exceeded its time limit.
type TimeoutError struct {
	Operation string
	Limit     time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout after %s: %s", e.Limit, e.Operation)
}

// SkipError is returned by a unit that asks to be skipped.
type SkipError struct {
	Reason string
}

// Error implements the error interface.
func (e *SkipError) Error() string {
	if e.Reason == "" {
		return "skipped"
	}
	return "skipped: " + e.Reason
}

// RootCause unwraps err to the innermost error of its chain. For joined
// errors the first branch is followed. Unwrapping stops at a
// *CategorizedError, so the category given to a failure is kept.
func RootCause(err error) error {
	for err != nil {
		if _, ok := err.(*CategorizedError); ok {
			return err
		}
		var next error
		switch e := err.(type) {
		case interface{ Unwrap() error }:
			next = e.Unwrap()
		case interface{ Unwrap() []error }:
			if errs := e.Unwrap(); len(errs) > 0 {
				next = errs[0]
			}
		}
		if next == nil {
			return err
		}
		err = next
	}
	return nil
}
