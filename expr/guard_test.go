package expr

import "testing"

func TestGuardAlwaysAndNever(t *testing.T) {
	ok, err := AlwaysGuard().Evaluate(nil, 0)
	if err != nil || !ok {
		t.Errorf("expected AlwaysGuard to evaluate true, got %v, %v", ok, err)
	}
	ok, err = NeverGuard().Evaluate(nil, 0)
	if err != nil || ok {
		t.Errorf("expected NeverGuard to evaluate false, got %v, %v", ok, err)
	}
}

func TestGuardExpressionZeroDisables(t *testing.T) {
	g, err := ExpressionGuard("P1 - 5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ok, err := g.Evaluate(map[string]float64{"P1": 5}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Errorf("expected zero expression result to disable the guard")
	}
	ok, err = g.Evaluate(map[string]float64{"P1": 6}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Errorf("expected non-zero expression result to enable the guard")
	}
}

func TestGuardNative(t *testing.T) {
	g := NativeGuardFrom(func(env map[string]float64) (bool, error) {
		return env["P1"] > 10, nil
	})
	ok, err := g.Evaluate(map[string]float64{"P1": 20}, 0)
	if err != nil || !ok {
		t.Errorf("expected native guard to pass, got %v, %v", ok, err)
	}
}

func TestGuardZeroValueIsAlways(t *testing.T) {
	var g Guard
	ok, err := g.Evaluate(nil, 0)
	if err != nil || !ok {
		t.Errorf("expected zero-value Guard to behave as Always, got %v, %v", ok, err)
	}
}
