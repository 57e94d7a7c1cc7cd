package testchain

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/randalmurphal/testchain/pkg/testchain/event"
	"github.com/randalmurphal/testchain/pkg/testchain/harness"
)

// Distinct recorder types, so both can be attached.
type outerRecorder struct{ *event.Recorder }
type innerRecorder struct{ *event.Recorder }

// TestLifecycleGolden drives one suite with a single unit and checks the
// complete delivery order against testdata/golden/lifecycle.golden.
func TestLifecycleGolden(t *testing.T) {
	log := &event.Log{}
	d := newDispatcher(WithListeners(
		outerRecorder{event.NewRecorder("outer", log)},
		innerRecorder{event.NewRecorder("inner", log)},
	))

	ctx := context.Background()
	suite, c, class := model()
	login := &harness.Method{Name: "login", Class: class, Phase: harness.PhaseBeforeMethod}
	pay := &harness.Method{Name: "pay", Class: class}

	d.OnExecutionStart(ctx)
	d.OnSuiteStart(ctx, suite)
	d.OnContextStart(ctx, c)
	units := d.Intercept(ctx, c, []harness.MethodInstance{{Method: pay}})
	for _, u := range units {
		d.Transform(ctx, u.Method)
	}
	d.OnBeforeClass(ctx, class)

	setup := harness.NewResult(c, login, nil)
	d.OnBeforeConfiguration(ctx, setup)
	d.OnBeforeInvocation(ctx, setup)
	d.OnAfterInvocation(ctx, setup)
	setup.Status = harness.StatusSuccess
	d.OnConfigurationSuccess(ctx, setup)

	test := harness.NewResult(c, pay, nil)
	d.OnTestStart(ctx, test)
	d.OnBeforeInvocation(ctx, test)
	d.OnAfterInvocation(ctx, test)
	test.Status = harness.StatusSuccess
	d.OnTestSuccess(ctx, test)

	d.OnAfterClass(ctx, class)
	d.OnContextFinish(ctx, c)
	d.OnSuiteFinish(ctx, suite)
	d.OnExecutionFinish(ctx)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "lifecycle", []byte(log.Render()))
}
