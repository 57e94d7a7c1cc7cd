package event

// Order is the dispatch discipline of a Kind.
type Order int

const (
	// OrderNotify delivers in registration order.
	OrderNotify Order = iota

	// OrderEntry delivers in reverse registration order, so the listener
	// attached first is the outermost wrapper.
	OrderEntry

	// OrderExit delivers in registration order, unwinding the entry order.
	OrderExit
)

// String returns the order name.
func (o Order) String() string {
	switch o {
	case OrderNotify:
		return "notify"
	case OrderEntry:
		return "entry"
	case OrderExit:
		return "exit"
	default:
		return "unknown"
	}
}

// Kind identifies one lifecycle notification. The set is closed.
type Kind int

const (
	ExecutionStart Kind = iota
	ExecutionFinish
	SuiteStart
	SuiteFinish
	ContextStart
	ContextFinish
	BeforeClass
	AfterClass
	BeforeConfiguration
	ConfigurationSuccess
	ConfigurationFailure
	ConfigurationSkip
	BeforeInvocation
	AfterInvocation
	TestStart
	TestSuccess
	TestFailure
	TestSkipped
	TestFailedWithinSuccessPercentage
	Intercept
	Transform

	kindCount
)

var kindInfo = [kindCount]struct {
	name  string
	order Order
}{
	ExecutionStart:                    {"execution_start", OrderNotify},
	ExecutionFinish:                   {"execution_finish", OrderNotify},
	SuiteStart:                        {"suite_start", OrderEntry},
	SuiteFinish:                       {"suite_finish", OrderExit},
	ContextStart:                      {"context_start", OrderEntry},
	ContextFinish:                     {"context_finish", OrderExit},
	BeforeClass:                       {"before_class", OrderEntry},
	AfterClass:                        {"after_class", OrderExit},
	BeforeConfiguration:               {"before_configuration", OrderEntry},
	ConfigurationSuccess:              {"configuration_success", OrderExit},
	ConfigurationFailure:              {"configuration_failure", OrderExit},
	ConfigurationSkip:                 {"configuration_skip", OrderExit},
	BeforeInvocation:                  {"before_invocation", OrderEntry},
	AfterInvocation:                   {"after_invocation", OrderExit},
	TestStart:                         {"test_start", OrderEntry},
	TestSuccess:                       {"test_success", OrderExit},
	TestFailure:                       {"test_failure", OrderExit},
	TestSkipped:                       {"test_skipped", OrderExit},
	TestFailedWithinSuccessPercentage: {"test_failed_within_success_percentage", OrderExit},
	Intercept:                         {"intercept", OrderNotify},
	Transform:                         {"transform", OrderNotify},
}

// Kinds returns every Kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, kindCount)
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}

// Valid reports whether k is a member of the closed set.
func (k Kind) Valid() bool {
	return k >= 0 && k < kindCount
}

// String returns the snake_case kind name.
func (k Kind) String() string {
	if !k.Valid() {
		return "unknown"
	}
	return kindInfo[k].name
}

// Order returns the dispatch discipline of k.
func (k Kind) Order() Order {
	if !k.Valid() {
		return OrderNotify
	}
	return kindInfo[k].order
}

// Entry reports whether k is delivered in reverse registration order.
func (k Kind) Entry() bool {
	return k.Order() == OrderEntry
}
