/*
Package testchain multiplexes test harness lifecycle events to a chain of
listeners.

# Overview

A host test harness registers exactly one listener, a Dispatcher. The
Dispatcher implements every hook interface in this package and forwards
each notification to the listeners attached to it. A listener is any Go
value; it receives the events whose hook interfaces it implements.

	d, err := testchain.New(testchain.WithListeners(reporter, screenshots))
	if err != nil {
	    log.Fatal(err)
	}
	host.Register(d)

# Ordering

Entry events (suite start, before class, test start and so on) reach
listeners in reverse attach order. Exit events reach them in attach order,
so the first listener attached wraps all the others. ExecutionStart,
ExecutionFinish, Intercept and Transform are delivered in attach order.

# Attaching Listeners

Listeners are identified by their concrete type; a second listener of an
attached type is ignored. Listeners come from four places:

  - the global Listeners provider, loaded by New
  - WithListeners
  - Attach, Attach[T] and AttachInstance at any time
  - a harness.ListenerMarker on a test class, resolved the first time a
    unit of that class (or of a class inheriting from it) is transformed,
    invoked or reaches BeforeClass

Attaching by type constructs the listener: a pointer type gets a new zero
element, then Init runs when the listener implements Initializer. Setup
failures are returned, or panicked from hooks, as *ConfigError.

# Lookup

OnSuiteStart stores the Dispatcher on the suite. Any code holding a
result, test context or suite can then reach an attached listener:

	rec, ok := testchain.Find[*event.Recorder](result)

# Propagation and Retry

FlowController moves attributes from before-method routines into test
units and from test units into after-method routines, using the
propagate.Flow carried by the invocation context. It also installs a
retry.Coordinator on test units when retry is configured.

# Failure Semantics

A panicking listener is not recovered. The panic reaches the host and the
remaining listeners for that event are skipped.
*/
package testchain
