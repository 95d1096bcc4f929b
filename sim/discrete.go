package sim

import (
	"math/rand"

	"github.com/hybridpetri/simcore/net"
	"github.com/hybridpetri/simcore/timeutil"
)

// computeDiscreteTransfer builds the consumed/produced deltas for one firing
// of t, honoring the source/sink short-circuits and skipping read arcs
// (which gate but never consume).
func computeDiscreteTransfer(n *net.Net, t *net.Transition) (consumed, produced map[string]float64) {
	consumed = make(map[string]float64)
	produced = make(map[string]float64)
	if !t.Source {
		for _, a := range n.InputArcs(t.ID) {
			if a.Consumes() {
				consumed[a.Place] += a.Weight
			}
		}
	}
	if !t.Sink {
		for _, a := range n.OutputArcs(t.ID) {
			produced[a.Place] += a.Weight
		}
	}
	return consumed, produced
}

// accumulateMarkingDelta folds every firing's and flow's consumed/produced
// deltas into a single net per-place change for the step, for the
// marking_delta argument Phase H's collector notification requires.
func accumulateMarkingDelta(firings []FiringEvent, flows []FlowEvent) map[string]float64 {
	delta := make(map[string]float64)
	for _, f := range firings {
		for place, amount := range f.Consumed {
			delta[place] -= amount
		}
		for place, amount := range f.Produced {
			delta[place] += amount
		}
	}
	for _, f := range flows {
		for place, amount := range f.Consumed {
			delta[place] -= amount
		}
		for place, amount := range f.Produced {
			delta[place] += amount
		}
	}
	return delta
}

// fireOnce commits one firing of t against marking and returns the resulting
// event. The caller is responsible for having already established that t is
// eligible to fire.
func fireOnce(n *net.Net, marking Marking, t *net.Transition) (FiringEvent, error) {
	consumed, produced := computeDiscreteTransfer(n, t)
	if err := marking.CommitTransfer(consumed, produced); err != nil {
		return FiringEvent{}, err
	}
	return FiringEvent{TransitionID: t.ID, Consumed: consumed, Produced: produced}, nil
}

// exhaustImmediate implements Phase B: fire immediate transitions to
// exhaustion. Enablement is re-evaluated before each selection (a firing can
// enable or disable any transition, not only other immediates), capped at
// maxImmediateIterations — hitting the cap is reported via cycleWarning so
// the caller can log it without a logging dependency here.
func exhaustImmediate(n *net.Net, marking Marking, states map[string]*EnablementState, now float64, policy ConflictPolicy, rng *rand.Rand, onGuardFailure func(string, error)) (events []FiringEvent, cycleWarning bool, err error) {
	iterations := 0
	for {
		if iterations >= maxImmediateIterations {
			cycleWarning = true
			break
		}
		UpdateEnablementStates(n, marking, states, now, rng, onGuardFailure)

		var candidates []Candidate
		for _, id := range n.TransitionsByKind(net.Immediate) {
			st := states[id]
			if st.Enabled() {
				candidates = append(candidates, Candidate{Transition: n.Transitions[id], EnablementTime: *st.EnablementTime})
			}
		}
		winner, ok := Select(candidates, policy, rng)
		if !ok {
			break
		}
		evt, ferr := fireOnce(n, marking, winner.Transition)
		if ferr != nil {
			return events, cycleWarning, ferr
		}
		events = append(events, evt)
		iterations++
	}
	return events, cycleWarning, nil
}

// detectWindowCrossings implements Phase C: a timed transition whose window
// would close between now and now+dt without a discrete observation fires
// once at the crossing, bypassing the ordinary can-fire check, and its
// enablement epoch is cleared so it does not immediately re-trigger.
func detectWindowCrossings(n *net.Net, marking Marking, states map[string]*EnablementState, now, dt float64) ([]FiringEvent, error) {
	var events []FiringEvent
	for _, id := range n.TransitionsByKind(net.Timed) {
		st := states[id]
		if !st.Enabled() {
			continue
		}
		t := n.Transitions[id]
		elapsedBefore := st.Elapsed(now)
		elapsedAfter := st.Elapsed(now + dt)
		if timeutil.TooEarly(elapsedBefore, t.TimedProps.Earliest) && timeutil.TooLate(elapsedAfter, t.TimedProps.Latest) {
			evt, err := fireOnce(n, marking, t)
			if err != nil {
				return events, err
			}
			evt.WindowCrossed = true
			events = append(events, evt)
			st.EnablementTime = nil
			st.ScheduledTime = nil
		}
	}
	return events, nil
}

// selectDiscreteFiring implements Phase E: among timed and stochastic
// transitions currently eligible to fire at now, select a single winner per
// policy and fire it. A stochastic winner greedily bursts up to its
// max_burst cap while structural enablement persists; a timed winner fires
// once.
func selectDiscreteFiring(n *net.Net, marking Marking, states map[string]*EnablementState, now float64, policy ConflictPolicy, rng *rand.Rand) ([]FiringEvent, error) {
	var candidates []Candidate
	for _, id := range n.TransitionsByKind(net.Timed) {
		st := states[id]
		if !st.Enabled() {
			continue
		}
		t := n.Transitions[id]
		if timeutil.WithinWindow(st.Elapsed(now), t.TimedProps.Earliest, t.TimedProps.Latest) {
			candidates = append(candidates, Candidate{Transition: t, EnablementTime: *st.EnablementTime})
		}
	}
	for _, id := range n.TransitionsByKind(net.Stochastic) {
		st := states[id]
		if !st.Enabled() || st.ScheduledTime == nil {
			continue
		}
		if timeutil.AtOrAfter(now, *st.ScheduledTime) {
			candidates = append(candidates, Candidate{Transition: n.Transitions[id], EnablementTime: *st.EnablementTime})
		}
	}

	winner, ok := Select(candidates, policy, rng)
	if !ok {
		return nil, nil
	}

	var events []FiringEvent
	if winner.Transition.Kind == net.Stochastic {
		maxBurst := winner.Transition.StochasticProps.MaxBurst
		for i := 0; i < maxBurst; i++ {
			structural, err := StructuralEnabled(n, marking, winner.Transition, now)
			if err != nil || !structural {
				break
			}
			evt, err := fireOnce(n, marking, winner.Transition)
			if err != nil {
				return events, err
			}
			evt.BurstFiringIdx = i
			events = append(events, evt)
		}
		st := states[winner.Transition.ID]
		st.EnablementTime = nil
		st.ScheduledTime = nil
	} else {
		evt, err := fireOnce(n, marking, winner.Transition)
		if err != nil {
			return events, err
		}
		events = append(events, evt)
	}
	return events, nil
}
