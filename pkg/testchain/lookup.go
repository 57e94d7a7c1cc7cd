package testchain

import (
	"reflect"

	"github.com/randalmurphal/testchain/pkg/testchain/harness"
)

// SuiteAttribute is the suite attribute under which OnSuiteStart stores
// the Dispatcher.
const SuiteAttribute = "testchain.dispatcher"

// DispatcherOf returns the Dispatcher that started the suite src belongs
// to. src is a *harness.Result, *harness.Context, *harness.Suite or
// *Dispatcher. It returns ErrNoDispatcher when none is found.
func DispatcherOf(src any) (*Dispatcher, error) {
	var suite *harness.Suite
	switch v := src.(type) {
	case *Dispatcher:
		if v != nil {
			return v, nil
		}
	case *harness.Result:
		suite = v.Suite()
	case *harness.Context:
		if v != nil {
			suite = v.Suite
		}
	case *harness.Suite:
		suite = v
	}
	if suite == nil {
		return nil, ErrNoDispatcher
	}
	raw, ok := suite.Attribute(SuiteAttribute)
	if !ok {
		return nil, ErrNoDispatcher
	}
	d, ok := raw.(*Dispatcher)
	if !ok {
		return nil, ErrNoDispatcher
	}
	return d, nil
}

// Find returns the attached listener whose concrete type is exactly T,
// looking up the Dispatcher from src as DispatcherOf does.
//
// Example:
//
//	rec, ok := testchain.Find[*event.Recorder](result)
func Find[T any](src any) (T, bool) {
	d, err := DispatcherOf(src)
	if err != nil {
		var zero T
		return zero, false
	}
	return Listener[T](d)
}

// Listener returns the listener attached to d whose concrete type is
// exactly T. Interface types never match.
func Listener[T any](d *Dispatcher) (T, bool) {
	var zero T
	if d == nil {
		return zero, false
	}
	want := reflect.TypeOf((*T)(nil)).Elem()
	for _, l := range d.registry.Instances() {
		if reflect.TypeOf(l) == want {
			return l.(T), true
		}
	}
	return zero, false
}
