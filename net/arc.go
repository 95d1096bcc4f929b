package net

import "github.com/hybridpetri/simcore/expr"

// ArcKind distinguishes a normal consuming/producing arc from the two
// input-side-only variants with non-consuming or consume-on-threshold
// semantics.
type ArcKind string

const (
	// ArcNormal: input arcs consume, output arcs produce, weight tokens.
	ArcNormal ArcKind = "normal"
	// ArcInhibitor: input-side only. Enables when tokens(source) >= weight;
	// when the transition fires, consumes weight tokens from the source
	// exactly like a normal arc ("living systems" semantics — this is not
	// the classical zero-test inhibitor).
	ArcInhibitor ArcKind = "inhibitor"
	// ArcRead: input-side only. Enables when tokens(source) >= weight; never
	// consumes.
	ArcRead ArcKind = "read"
)

// ArcDirection records which endpoint is the place.
type ArcDirection string

const (
	ArcInput  ArcDirection = "input"  // place -> transition
	ArcOutput ArcDirection = "output" // transition -> place
)

// Arc is a directed, weighted connector between a place and a transition.
type Arc struct {
	Place      string
	Transition string
	Direction  ArcDirection
	Kind       ArcKind
	Weight     float64

	// ThresholdSource, when non-empty, is an expression compiled to
	// Threshold that supersedes Weight for the enablement test only; Weight
	// is still the amount consumed/produced on firing.
	ThresholdSource string
	Threshold       *expr.Compiled
}

// EffectiveThreshold evaluates the arc's enablement threshold: the compiled
// Threshold expression if set, else the static Weight.
func (a *Arc) EffectiveThreshold(marking map[string]float64, now float64) (float64, error) {
	if a.Threshold == nil {
		return a.Weight, nil
	}
	return a.Threshold.Eval(expr.NewEnv(marking, now))
}

// IsInputSide reports whether this arc participates in the enablement test
// (input, inhibitor, and read arcs are all input-side by definition).
func (a *Arc) IsInputSide() bool {
	return a.Direction == ArcInput
}

// Consumes reports whether firing this arc removes tokens from its place.
// Normal input arcs and inhibitor arcs consume; read arcs and output arcs
// (which produce, not consume) do not.
func (a *Arc) Consumes() bool {
	return a.Direction == ArcInput && a.Kind != ArcRead
}
