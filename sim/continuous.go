package sim

import (
	"github.com/hybridpetri/simcore/net"
	"github.com/hybridpetri/simcore/ode"
)

// continuousSnapshot freezes a continuous transition's eligibility and rate
// at Phase D, before any Phase E discrete firing, per the rationale that a
// transition's integrated flow this step should not depend on discrete
// firings that happen later in the same step.
type continuousSnapshot struct {
	Transition *net.Transition
	Rate       float64
}

// snapshotContinuous implements Phase D: determine which continuous
// transitions are structurally enabled against marking (the post-B/C state)
// and evaluate their rate against that same snapshot.
func snapshotContinuous(n *net.Net, marking Marking, now float64, onGuardFailure func(transitionID string, err error)) []continuousSnapshot {
	var out []continuousSnapshot
	for _, id := range n.TransitionsByKind(net.Continuous) {
		t := n.Transitions[id]
		structural, err := StructuralEnabled(n, marking, t, now)
		if err != nil {
			if onGuardFailure != nil {
				onGuardFailure(id, err)
			}
			continue
		}
		if !structural {
			continue
		}
		rate, err := t.EvalRate(marking, now)
		if err != nil {
			if onGuardFailure != nil {
				onGuardFailure(id, err)
			}
			continue
		}
		out = append(out, continuousSnapshot{Transition: t, Rate: rate})
	}
	return out
}

// integrateContinuous implements Phase F: for each snapshot, compute the
// clamped forward-Euler flow against the current (post Phase E) marking and
// commit it. A stiff-flagged, non-source transition with a rate expression
// and exactly one unit-weight input arc is instead integrated with the
// embedded Runge-Kutta solver in the ode package; every other shape
// (multi-input, weighted, constant-rate, source, or not flagged stiff) uses
// the contracted single Euler step.
func integrateContinuous(n *net.Net, marking Marking, snapshots []continuousSnapshot, dt float64) ([]FlowEvent, error) {
	var events []FlowEvent
	for _, snap := range snapshots {
		t := snap.Transition
		inputArcs := n.InputArcs(t.ID)
		outputArcs := n.OutputArcs(t.ID)

		delta := snap.Rate * dt
		if !t.Source {
			for _, a := range inputArcs {
				if a.Weight <= 0 {
					continue
				}
				maxAllowed := marking[a.Place] / a.Weight
				if maxAllowed < delta {
					delta = maxAllowed
				}
			}
		}
		if delta < 0 {
			delta = 0
		}

		if t.ContinuousProps.Stiff && t.ContinuousProps.RateExpr != nil && !t.Source && len(inputArcs) == 1 && inputArcs[0].Weight == 1 {
			if refined, ok := stiffRefine(marking, t, inputArcs[0].Place, dt, delta); ok {
				delta = refined
			}
		}

		consumed := map[string]float64{}
		produced := map[string]float64{}
		if !t.Source {
			for _, a := range inputArcs {
				consumed[a.Place] += delta * a.Weight
			}
		}
		if !t.Sink {
			for _, a := range outputArcs {
				produced[a.Place] += delta * a.Weight
			}
		}
		if err := marking.CommitTransfer(consumed, produced); err != nil {
			return events, err
		}
		events = append(events, FlowEvent{
			TransitionID: t.ID, Rate: snap.Rate, Delta: delta,
			Consumed: consumed, Produced: produced, Stiff: t.ContinuousProps.Stiff,
		})
	}
	return events, nil
}

// stiffRefine re-integrates a single-substrate continuous transition's
// consumption dP/dt = -rate(P, t) with an adaptive embedded Runge-Kutta
// solver instead of a single Euler step, returning the refined consumed
// amount for placeID. Falls back (ok=false) whenever the refined estimate
// would exceed the already-clamped Euler estimate by more than a small
// margin, so refinement can only improve accuracy, never relax the
// non-negativity guarantee plain clamping already provides.
func stiffRefine(marking Marking, t *net.Transition, placeID string, dt, eulerDelta float64) (float64, bool) {
	p0 := marking[placeID]
	snapshot := make(map[string]float64, len(marking))
	for k, v := range marking {
		snapshot[k] = v
	}
	prob := ode.NewProblem(map[string]float64{placeID: p0}, [2]float64{0, dt}, func(tt float64, u map[string]float64) map[string]float64 {
		if u[placeID] <= 0 {
			return map[string]float64{placeID: 0}
		}
		localEnv := make(map[string]float64, len(snapshot))
		for k, v := range snapshot {
			localEnv[k] = v
		}
		localEnv[placeID] = u[placeID]
		rate, err := t.ContinuousProps.RateExpr.EvalWith(localEnv, tt)
		if err != nil {
			return map[string]float64{placeID: 0}
		}
		return map[string]float64{placeID: -rate}
	})
	sol := ode.Solve(prob, ode.Tsit5(), ode.DefaultOptions(dt))
	final := sol.GetFinalState()
	consumed := p0 - final[placeID]
	if consumed < 0 {
		consumed = 0
	}
	if consumed > p0 {
		consumed = p0
	}
	if consumed > eulerDelta*1.5 {
		return 0, false
	}
	return consumed, true
}
