package expr

import "fmt"

// Compiled is a pre-parsed expression, ready for repeated evaluation against
// different environments.
type Compiled struct {
	source string
	ast    Node
}

// Compile parses source into a Compiled expression. An empty source is
// rejected; callers that want an "always true" guard should use Guard's
// zero value (Always) instead of compiling an empty string.
func Compile(source string) (*Compiled, error) {
	if source == "" {
		return nil, fmt.Errorf("expr: empty expression")
	}
	ast, err := Parse(source)
	if err != nil {
		return nil, fmt.Errorf("expr: parse error: %w", err)
	}
	return &Compiled{source: source, ast: ast}, nil
}

// String returns the original source text.
func (c *Compiled) String() string {
	return c.source
}

// AST returns the parsed tree.
func (c *Compiled) AST() Node {
	return c.ast
}

// Eval evaluates the compiled expression against env.
func (c *Compiled) Eval(env *Env) (float64, error) {
	return Eval(c.ast, env)
}

// EvalWith is a convenience wrapper that builds an Env from a flat variable
// map and a simulation time, then evaluates. Useful for callers (such as the
// continuous-integration substep solver) that construct ad-hoc environments
// rather than working from a Marking directly.
func (c *Compiled) EvalWith(vars map[string]float64, now float64) (float64, error) {
	return Eval(c.ast, NewEnv(vars, now))
}

// GuardKind tags the variant held by a Guard.
type GuardKind int

const (
	// GuardAlways is structurally enabled unconditionally; the GSPN default.
	GuardAlways GuardKind = iota
	// GuardNever is never structurally enabled.
	GuardNever
	// GuardExpression evaluates a compiled expression against the marking
	// and simulation time; zero disables, non-zero enables.
	GuardExpression
	// GuardNative calls a host-language closure over a marking snapshot.
	GuardNative
)

// NativeGuard is a host closure guard. It receives the flat variable
// environment (place values plus "t") and returns whether the guard passes.
type NativeGuard func(env map[string]float64) (bool, error)

// Guard is the sum type described by the design notes: Always, Never, a
// compiled Expression, or a Native closure. The zero value is GuardAlways.
type Guard struct {
	Kind       GuardKind
	Expression *Compiled
	Native     NativeGuard
}

// AlwaysGuard returns the "always enabled" guard.
func AlwaysGuard() Guard { return Guard{Kind: GuardAlways} }

// NeverGuard returns the "never enabled" guard.
func NeverGuard() Guard { return Guard{Kind: GuardNever} }

// ExpressionGuard compiles source and wraps it as a Guard.
func ExpressionGuard(source string) (Guard, error) {
	compiled, err := Compile(source)
	if err != nil {
		return Guard{}, err
	}
	return Guard{Kind: GuardExpression, Expression: compiled}, nil
}

// NativeGuardFrom wraps a host closure as a Guard.
func NativeGuardFrom(fn NativeGuard) Guard {
	return Guard{Kind: GuardNative, Native: fn}
}

// Evaluate evaluates the guard's structural enablement against a marking
// snapshot and the current simulation time. A guard-evaluation failure
// (expression error, or a native closure error) is reported through err;
// callers must treat that as "disabled" per the error taxonomy, not panic.
func (g Guard) Evaluate(marking map[string]float64, now float64) (bool, error) {
	switch g.Kind {
	case GuardAlways:
		return true, nil
	case GuardNever:
		return false, nil
	case GuardExpression:
		if g.Expression == nil {
			return true, nil
		}
		env := NewEnv(marking, now)
		v, err := g.Expression.Eval(env)
		if err != nil {
			return false, err
		}
		return v != 0, nil
	case GuardNative:
		if g.Native == nil {
			return true, nil
		}
		env := NewEnv(marking, now)
		return g.Native(env.Vars)
	default:
		return false, fmt.Errorf("expr: unknown guard kind %d", g.Kind)
	}
}
