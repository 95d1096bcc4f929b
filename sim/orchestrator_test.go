package sim

import (
	"errors"
	"math"
	"testing"

	"github.com/hybridpetri/simcore/expr"
	"github.com/hybridpetri/simcore/net"
)

func mustBuild(t *testing.T, n *net.Net, err error) *net.Net {
	t.Helper()
	if err != nil {
		t.Fatalf("build net: %v", err)
	}
	return n
}

func TestStepImmediateChainFiresToExhaustion(t *testing.T) {
	n := mustBuild(t, net.Build().
		Place("A", 3).
		Place("B", 0).
		Place("C", 0).
		ImmediateTransition("move", 0).
		ImmediateTransition("finish", 0).
		Flow("A", "move", "B", 1).
		Flow("B", "finish", "C", 1).
		Done())

	o, err := New(n, DefaultSettings(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	progressed, err := o.Step(0.01)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if !progressed {
		t.Fatal("expected progress from immediate chain")
	}
	m := o.Marking()
	if m["A"] != 0 || m["B"] != 0 || m["C"] != 3 {
		t.Fatalf("expected all tokens drained to C, got %+v", m)
	}
}

func TestStepTimedTransitionFiresWithinWindow(t *testing.T) {
	n := mustBuild(t, net.Build().
		Place("P1", 1).
		Place("P2", 0).
		TimedTransition("T1", 2.0, 2.0).
		Flow("P1", "T1", "P2", 1).
		Done())

	settings := DefaultSettings()
	o, err := New(n, settings, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	const dt = 0.5
	fired := false
	for i := 0; i < 10; i++ {
		progressed, err := o.Step(dt)
		if err != nil {
			t.Fatalf("Step: %v", err)
		}
		if progressed {
			fired = true
			break
		}
	}
	if !fired {
		t.Fatal("expected T1 to fire within its deterministic window")
	}
	m := o.Marking()
	if m["P1"] != 0 || m["P2"] != 1 {
		t.Fatalf("expected token moved to P2, got %+v", m)
	}
	// fired in the step starting at 2.0s, so Now is at most one dt past it
	if math.Abs(o.Now()-2.0) > 0.5+1e-6 {
		t.Fatalf("fired at unexpected time %v", o.Now())
	}
}

func TestStepContinuousFlowClampsAtZero(t *testing.T) {
	n := mustBuild(t, net.Build().
		Place("Tank", 1).
		Place("Drain", 0).
		ContinuousTransition("leak", 10). // far exceeds available tokens per step
		Flow("Tank", "leak", "Drain", 1).
		Done())

	o, err := New(n, DefaultSettings(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	progressed, err := o.Step(1.0)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if !progressed {
		t.Fatal("expected continuous flow to register as progress")
	}
	m := o.Marking()
	if m["Tank"] < 0 {
		t.Fatalf("Tank went negative: %v", m["Tank"])
	}
	if math.Abs(m["Tank"]) > 1e-9 {
		t.Fatalf("expected Tank fully drained and clamped at 0, got %v", m["Tank"])
	}
	if math.Abs(m["Drain"]-1) > 1e-9 {
		t.Fatalf("expected Drain to receive exactly the clamped amount, got %v", m["Drain"])
	}
}

func TestStepPriorityConflictPicksHigherPriority(t *testing.T) {
	n := mustBuild(t, net.Build().
		Place("Shared", 1).
		Place("Low", 0).
		Place("High", 0).
		ImmediateTransition("takeLow", 0).
		ImmediateTransition("takeHigh", 5).
		InputArc("Shared", "takeLow", 1).
		OutputArc("takeLow", "Low", 1).
		InputArc("Shared", "takeHigh", 1).
		OutputArc("takeHigh", "High", 1).
		Done())

	o, err := New(n, DefaultSettings(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := o.Step(0.01); err != nil {
		t.Fatalf("Step: %v", err)
	}
	m := o.Marking()
	if m["High"] != 1 || m["Low"] != 0 {
		t.Fatalf("expected higher-priority transition to win the shared token, got %+v", m)
	}
}

func TestStepStochasticFiresAfterScheduledDelay(t *testing.T) {
	n := mustBuild(t, net.Build().
		Place("Idle", 1).
		Place("Done", 0).
		StochasticTransition("finish", 50, 1). // high rate -> short expected delay
		Flow("Idle", "finish", "Done", 1).
		Done())

	seed := int64(7)
	settings := DefaultSettings()
	settings.RngSeed = &seed
	o, err := New(n, settings, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	fired := false
	for i := 0; i < 2000; i++ {
		progressed, err := o.Step(0.01)
		if err != nil {
			t.Fatalf("Step: %v", err)
		}
		if progressed {
			fired = true
			break
		}
	}
	if !fired {
		t.Fatal("expected stochastic transition to fire eventually at this rate")
	}
	m := o.Marking()
	if m["Done"] != 1 || m["Idle"] != 0 {
		t.Fatalf("expected the single token to move to Done, got %+v", m)
	}
}

// TestStepFatalNegativeMarkingStopsUntilReset exercises the fatal path: an
// arc whose enablement threshold is set lower than its actual firing weight
// lets a transition read as enabled against a place that cannot cover the
// full consumption, driving the place negative on fire.
func TestStepFatalNegativeMarkingStopsUntilReset(t *testing.T) {
	threshold, err := expr.Compile("1")
	if err != nil {
		t.Fatalf("compile threshold: %v", err)
	}

	n := net.New()
	if err := n.AddPlace(&net.Place{ID: "P", Initial: 2}); err != nil {
		t.Fatalf("AddPlace P: %v", err)
	}
	if err := n.AddPlace(&net.Place{ID: "Q", Initial: 0}); err != nil {
		t.Fatalf("AddPlace Q: %v", err)
	}
	if err := n.AddTransition(net.NewImmediate("drain", "drain", 0)); err != nil {
		t.Fatalf("AddTransition: %v", err)
	}
	if err := n.AddArc(&net.Arc{
		Place: "P", Transition: "drain", Direction: net.ArcInput, Kind: net.ArcNormal,
		Weight: 5, ThresholdSource: "1", Threshold: threshold,
	}); err != nil {
		t.Fatalf("AddArc input: %v", err)
	}
	if err := n.AddArc(&net.Arc{
		Place: "Q", Transition: "drain", Direction: net.ArcOutput, Kind: net.ArcNormal, Weight: 5,
	}); err != nil {
		t.Fatalf("AddArc output: %v", err)
	}

	o, err := New(n, DefaultSettings(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = o.Step(0.01)
	if err == nil {
		t.Fatal("expected a fatal error when drain fires past its threshold")
	}
	if !errors.Is(err, ErrNegativeMarking) {
		t.Fatalf("expected ErrNegativeMarking, got %v", err)
	}
	var violation *NegativeMarkingViolation
	if !errors.As(err, &violation) {
		t.Fatalf("expected error to wrap *NegativeMarkingViolation, got %v", err)
	}
	if violation.Place != "P" {
		t.Fatalf("expected violation on place P, got %q", violation.Place)
	}

	if _, err := o.Step(0.01); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped once latched, got %v", err)
	}

	o.Reset()
	if o.Now() != 0 {
		t.Fatalf("expected Reset to rewind time, got %v", o.Now())
	}
	if _, err := o.Step(0.01); errors.Is(err, ErrStopped) {
		t.Fatal("expected Reset to clear the stopped latch")
	}
}

func TestStepInvalidDtRejected(t *testing.T) {
	n := mustBuild(t, net.Build().Place("P", 0).Done())
	o, err := New(n, DefaultSettings(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := o.Step(-1); err == nil {
		t.Fatal("expected an error for negative dt")
	}
}

func TestRegisterCollectorReceivesStepEvents(t *testing.T) {
	n := mustBuild(t, net.Build().
		Place("A", 1).
		Place("B", 0).
		ImmediateTransition("move", 0).
		Flow("A", "move", "B", 1).
		Done())

	o, err := New(n, DefaultSettings(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var got []StepEvent
	o.RegisterCollector(func(evt StepEvent) {
		got = append(got, evt)
	})
	if _, err := o.Step(0.01); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected exactly one collector notification, got %d", len(got))
	}
	if len(got[0].Firings) == 0 {
		t.Fatal("expected at least one firing reported")
	}
	if got[0].RunID == "" {
		t.Fatal("expected a non-empty run id")
	}
	if got[0].MarkingDelta["A"] != -1 || got[0].MarkingDelta["B"] != 1 {
		t.Fatalf("expected marking delta A:-1 B:+1, got %+v", got[0].MarkingDelta)
	}
}
