package sim

import (
	"math"
	"math/rand"

	"github.com/hybridpetri/simcore/net"
)

// EnablementState is the per-transition mutable state the orchestrator
// tracks across steps. Both fields are nil exactly when the transition is
// not structurally enabled — callers must always test for nil, never treat
// a present-but-zero time as absent (the "zero enablement time" trap: a
// transition enabled at simulation time 0.0 must not be mistaken for one
// that was never enabled).
type EnablementState struct {
	EnablementTime *float64
	ScheduledTime  *float64
}

// Enabled reports whether the transition is currently considered
// structurally enabled by this state (i.e. EnablementTime is present).
func (s *EnablementState) Enabled() bool {
	return s != nil && s.EnablementTime != nil
}

// Elapsed returns now - *EnablementTime. Callers must check Enabled first.
func (s *EnablementState) Elapsed(now float64) float64 {
	return now - *s.EnablementTime
}

func ptr(v float64) *float64 { return &v }

// StructuralEnabled evaluates §4.3's structural enablement test for t: the
// source flag short-circuits to true; otherwise every input arc (normal,
// inhibitor, or read) must meet its effective threshold, and the guard must
// evaluate non-zero. A guard evaluation failure is reported through err and
// callers must treat that as "not enabled", never panic or default to true.
func StructuralEnabled(n *net.Net, marking Marking, t *net.Transition, now float64) (bool, error) {
	if !t.Source {
		for _, a := range n.InputArcs(t.ID) {
			threshold, err := a.EffectiveThreshold(marking, now)
			if err != nil {
				return false, err
			}
			if marking[a.Place] < threshold {
				return false, nil
			}
		}
	}
	ok, err := t.Guard.Evaluate(marking, now)
	if err != nil {
		return false, err
	}
	return ok, nil
}

// UpdateEnablementStates runs §4.3's per-step algorithm for every transition
// in n, given the current marking and clock. onGuardFailure is invoked
// (never more than once per transition per call) when a guard/threshold
// expression fails to evaluate, so the caller can log it without this
// function taking a logging dependency directly.
func UpdateEnablementStates(n *net.Net, marking Marking, states map[string]*EnablementState, now float64, rng *rand.Rand, onGuardFailure func(transitionID string, err error)) {
	for _, id := range n.TransitionIDs() {
		t := n.Transitions[id]
		st, ok := states[id]
		if !ok {
			st = &EnablementState{}
			states[id] = st
		}
		structural, err := StructuralEnabled(n, marking, t, now)
		if err != nil {
			if onGuardFailure != nil {
				onGuardFailure(id, err)
			}
			structural = false
		}
		switch {
		case structural && st.EnablementTime == nil:
			st.EnablementTime = ptr(now)
			if t.Kind == net.Stochastic {
				delay := sampleExponential(rng, t.StochasticProps.Rate)
				st.ScheduledTime = ptr(now + delay)
			}
		case !structural && st.EnablementTime != nil:
			st.EnablementTime = nil
			st.ScheduledTime = nil
		}
	}
}

// sampleExponential draws a delay from Exp(lambda) via inverse-CDF sampling:
// d = -ln(U)/lambda, U ~ Uniform(0,1).
func sampleExponential(rng *rand.Rand, lambda float64) float64 {
	u := rng.Float64()
	for u == 0 {
		u = rng.Float64()
	}
	return -math.Log(u) / lambda
}
