package ode

import "testing"

func TestSolveConstantRate(t *testing.T) {
	prob := NewProblem(map[string]float64{"x": 0}, [2]float64{0, 1}, func(t float64, u map[string]float64) map[string]float64 {
		return map[string]float64{"x": 2}
	})
	sol := Solve(prob, Tsit5(), DefaultOptions(1))
	final := sol.GetFinalState()
	if diff := final["x"] - 2; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("expected final x close to 2, got %v", final["x"])
	}
}

func TestSolveExponentialDecay(t *testing.T) {
	// dx/dt = -x, x(0) = 1 => x(1) = e^-1 ~= 0.3679
	prob := NewProblem(map[string]float64{"x": 1}, [2]float64{0, 1}, func(t float64, u map[string]float64) map[string]float64 {
		return map[string]float64{"x": -u["x"]}
	})
	sol := Solve(prob, Tsit5(), DefaultOptions(1))
	final := sol.GetFinalState()
	want := 0.36787944117
	if diff := final["x"] - want; diff > 1e-4 || diff < -1e-4 {
		t.Errorf("expected final x close to %v, got %v", want, final["x"])
	}
}

func TestTsit5TableauShapes(t *testing.T) {
	s := Tsit5()
	if len(s.C) != len(s.B) || len(s.B) != len(s.Bhat) {
		t.Errorf("expected C, B, Bhat to have matching lengths, got %d %d %d", len(s.C), len(s.B), len(s.Bhat))
	}
	if len(s.A) != len(s.C) {
		t.Errorf("expected A to have one row per stage, got %d rows for %d stages", len(s.A), len(s.C))
	}
}
