package harness

import (
	"context"
	"reflect"
	"time"
)

// Suite is a top-level run of the host harness.
type Suite struct {
	Attributes

	// Name is the suite name as configured in the host.
	Name string
}

// NewSuite creates a suite with the given name.
func NewSuite(name string) *Suite {
	return &Suite{Name: name}
}

// Context is a named group of units inside a suite.
type Context struct {
	Name  string
	Suite *Suite
}

// NewContext creates a test context belonging to suite.
func NewContext(suite *Suite, name string) *Context {
	return &Context{Name: name, Suite: suite}
}

// ListenerMarker is the declarative marker a class carries to request that
// listeners be attached before any of its units run.
type ListenerMarker struct {
	// Types lists the concrete listener types to attach, in order.
	Types []reflect.Type
}

// Class is a declaring scope for units. Parent links to the scope it
// inherits from, which may carry the listener marker on its behalf.
type Class struct {
	Name   string
	Parent *Class

	// Listeners is the declarative listener marker, nil when absent.
	Listeners *ListenerMarker

	// NoRetry opts every unit declared by this class, and by classes that
	// inherit from it, out of automatic retry.
	NoRetry bool
}

// Marked returns the nearest class in the ancestor chain, starting with c,
// that carries a listener marker. It returns nil when none does.
func (c *Class) Marked() *Class {
	for cur := c; cur != nil; cur = cur.Parent {
		if cur.Listeners != nil {
			return cur
		}
	}
	return nil
}

// RetryDisabled reports whether c or any ancestor opts out of retry.
func (c *Class) RetryDisabled() bool {
	for cur := c; cur != nil; cur = cur.Parent {
		if cur.NoRetry {
			return true
		}
	}
	return false
}

// Phase identifies the routine kind of a method.
type Phase int

const (
	// PhaseTest is a test unit.
	PhaseTest Phase = iota

	// PhaseBeforeMethod runs before each test unit.
	PhaseBeforeMethod

	// PhaseAfterMethod runs after each test unit.
	PhaseAfterMethod

	// PhaseOther covers class, context and suite level configuration routines.
	PhaseOther
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseTest:
		return "test"
	case PhaseBeforeMethod:
		return "before_method"
	case PhaseAfterMethod:
		return "after_method"
	case PhaseOther:
		return "other"
	default:
		return "unknown"
	}
}

// Param describes a declared parameter of a method.
type Param struct {
	Name string

	// Redact hides the argument value in rendered signatures.
	Redact bool
}

// RetryAnalyzer decides whether a failed result should be run again.
type RetryAnalyzer interface {
	ShouldRetry(ctx context.Context, r *Result) bool
}

// Method describes a test unit or configuration routine.
type Method struct {
	Name   string
	Class  *Class
	Phase  Phase
	Params []Param

	// Timeout is the unit time limit, zero for none.
	Timeout time.Duration

	// RetryAnalyzer is consulted by the host when the unit fails.
	RetryAnalyzer RetryAnalyzer

	// NoRetry opts this unit out of automatic retry.
	NoRetry bool
}

// RetryDisabled reports whether the method or its declaring class chain
// opts out of retry.
func (m *Method) RetryDisabled() bool {
	return m.NoRetry || m.Class.RetryDisabled()
}

// MethodInstance pairs a method with the instance it will run on.
type MethodInstance struct {
	Method   *Method
	Instance any
}
