package net

import (
	"strings"
	"testing"
)

func TestBuilderImmediateChain(t *testing.T) {
	n, err := Build().
		Place("P1", 1).
		Place("P2", 0).
		Place("P3", 0).
		ImmediateTransition("T1", 0).
		ImmediateTransition("T2", 0).
		Flow("P1", "T1", "P2", 1).
		Flow("P2", "T2", "P3", 1).
		Done()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(n.Places) != 3 {
		t.Errorf("expected 3 places, got %d", len(n.Places))
	}
	if len(n.TransitionsByKind(Immediate)) != 2 {
		t.Errorf("expected 2 immediate transitions, got %d", len(n.TransitionsByKind(Immediate)))
	}
	in := n.InputArcs("T1")
	if len(in) != 1 || in[0].Place != "P1" {
		t.Errorf("expected T1 to have a single input arc from P1, got %+v", in)
	}
	out := n.OutputArcs("T1")
	if len(out) != 1 || out[0].Place != "P2" {
		t.Errorf("expected T1 to have a single output arc to P2, got %+v", out)
	}
}

func TestAddTransitionMissingPayload(t *testing.T) {
	n := New()
	n.AddPlace(&Place{ID: "P1"})
	err := n.AddTransition(&Transition{ID: "T1", Kind: Timed})
	if err == nil {
		t.Fatalf("expected error for timed transition with nil TimedProps")
	}
}

func TestAddTransitionInvalidWindow(t *testing.T) {
	n := New()
	err := n.AddTransition(&Transition{ID: "T1", Kind: Timed, TimedProps: &TimedProps{Earliest: 5, Latest: 1}})
	if err == nil {
		t.Fatalf("expected error for latest < earliest")
	}
}

func TestAddArcUnknownEndpoints(t *testing.T) {
	n := New()
	n.AddPlace(&Place{ID: "P1"})
	err := n.AddArc(&Arc{Place: "P1", Transition: "missing", Direction: ArcInput, Weight: 1})
	if err == nil || !strings.Contains(err.Error(), "unknown transition") {
		t.Errorf("expected unknown transition error, got %v", err)
	}
}

func TestDuplicateID(t *testing.T) {
	n := New()
	if err := n.AddPlace(&Place{ID: "A"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := n.AddTransition(NewImmediate("A", "A", 0)); err == nil {
		t.Errorf("expected duplicate id error reusing place id for a transition")
	}
}

func TestInhibitorArcMustBeInputSide(t *testing.T) {
	n := New()
	n.AddPlace(&Place{ID: "P1"})
	n.AddTransition(NewImmediate("T1", "T1", 0))
	err := n.AddArc(&Arc{Place: "P1", Transition: "T1", Direction: ArcOutput, Kind: ArcInhibitor, Weight: 1})
	if err == nil {
		t.Errorf("expected error placing an inhibitor arc on the output side")
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	n, err := Build().
		Place("P1", 5).
		ContinuousTransition("T1", 2).
		InputArc("P1", "T1", 1).
		Done()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var buf strings.Builder
	if err := Save(n, &buf); err != nil {
		t.Fatalf("unexpected error saving: %v", err)
	}

	loaded, err := Load(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("unexpected error loading: %v", err)
	}
	if len(loaded.Places) != 1 || loaded.Places["P1"].Initial != 5 {
		t.Errorf("expected round-tripped place P1 with initial 5, got %+v", loaded.Places)
	}
	tr, ok := loaded.TransitionByID("T1")
	if !ok || tr.Kind != Continuous || tr.ContinuousProps.Rate != 2 {
		t.Errorf("expected round-tripped continuous transition T1 with rate 2, got %+v", tr)
	}
}
