package expr

import "testing"

func mustEval(t *testing.T, source string, vars map[string]float64, now float64) float64 {
	t.Helper()
	compiled, err := Compile(source)
	if err != nil {
		t.Fatalf("compile %q: %v", source, err)
	}
	v, err := compiled.Eval(NewEnv(vars, now))
	if err != nil {
		t.Fatalf("eval %q: %v", source, err)
	}
	return v
}

func TestEvalArithmetic(t *testing.T) {
	tests := []struct {
		name   string
		source string
		vars   map[string]float64
		want   float64
	}{
		{"addition", "1 + 2", nil, 3},
		{"precedence", "2 + 3 * 4", nil, 14},
		{"parens", "(2 + 3) * 4", nil, 20},
		{"power right assoc", "2 ^ 3 ^ 2", nil, 512},
		{"unary minus", "-5 + 2", nil, -3},
		{"place reference", "P1 * 0.5", map[string]float64{"P1": 10}, 5},
		{"time variable", "t * 2", nil, 0},
		{"division", "10 / 4", nil, 2.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustEval(t, tt.source, tt.vars, 0)
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestEvalBuiltins(t *testing.T) {
	vars := map[string]float64{"P1": 3, "P2": 7}
	tests := []struct {
		name   string
		source string
		want   float64
	}{
		{"min", "min(P1, P2)", 3},
		{"max", "max(P1, P2)", 7},
		{"abs", "abs(-4)", 4},
		{"if true", "if(P1 < P2, 1, 0)", 1},
		{"if false", "if(P1 > P2, 1, 0)", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustEval(t, tt.source, vars, 0)
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestEvalTimeVariable(t *testing.T) {
	got := mustEval(t, "exp(-t/10)", nil, 0)
	if got != 1 {
		t.Errorf("expected exp(0)=1 at t=0, got %v", got)
	}
}

func TestEvalUndefinedIdentifier(t *testing.T) {
	compiled, err := Compile("Unknown + 1")
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	if _, err := compiled.Eval(NewEnv(nil, 0)); err == nil {
		t.Errorf("expected error evaluating undefined identifier")
	}
}

func TestCompileEmptyExpression(t *testing.T) {
	if _, err := Compile(""); err == nil {
		t.Errorf("expected error compiling empty expression")
	}
}

func TestCompileSyntaxError(t *testing.T) {
	if _, err := Compile("1 +"); err == nil {
		t.Errorf("expected parse error for incomplete expression")
	}
	if _, err := Compile("(1 + 2"); err == nil {
		t.Errorf("expected parse error for unbalanced parens")
	}
}
