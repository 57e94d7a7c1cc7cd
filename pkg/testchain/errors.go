package testchain

import (
	"errors"
	"fmt"
	"reflect"
)

// Sentinel errors.
var (
	// ErrInvalidArgument indicates Attach was called with neither a type
	// nor an instance.
	ErrInvalidArgument = errors.New("neither listener type nor instance was specified")

	// ErrNoDispatcher indicates a suite has not been started by a Dispatcher.
	ErrNoDispatcher = errors.New("no dispatcher attached to suite")

	// ErrNotConstructible indicates a listener type cannot be constructed
	// from its type alone.
	ErrNotConstructible = errors.New("listener type cannot be constructed")
)

// ConfigError reports a listener setup failure. Setup failures are fatal:
// the run cannot proceed with a partially attached chain.
type ConfigError struct {
	// Op is the operation that failed ("attach", "construct", "discover").
	Op string
	// Type is the listener type involved, nil when not applicable.
	Type reflect.Type
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Type != nil {
		return fmt.Sprintf("listener %s %s: %v", e.Op, e.Type, e.Err)
	}
	return fmt.Sprintf("listener %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ConfigError) Unwrap() error {
	return e.Err
}
