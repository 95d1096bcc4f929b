package net

import "fmt"

// Builder provides a fluent API for constructing a Net, chaining calls the
// way petri nets are assembled throughout this toolkit's modeling packages.
//
// Example:
//
//	n, err := Build().
//	    Place("S", 999).
//	    Place("I", 1).
//	    Place("R", 0).
//	    ImmediateTransition("infect", 0).
//	    ImmediateTransition("recover", 0).
//	    InputArc("S", "infect", 1).
//	    InputArc("I", "infect", 1).
//	    OutputArc("infect", "I", 2).
//	    InputArc("I", "recover", 1).
//	    OutputArc("recover", "R", 1).
//	    Done()
type Builder struct {
	net *Net
	err error
}

// Build creates a new Builder.
func Build() *Builder {
	return &Builder{net: New()}
}

func (b *Builder) fail(err error) *Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// Place adds a place with the given id and initial token count.
func (b *Builder) Place(id string, initial float64) *Builder {
	return b.PlaceLabeled(id, id, initial)
}

// PlaceLabeled adds a place with a distinct display label.
func (b *Builder) PlaceLabeled(id, label string, initial float64) *Builder {
	if b.err != nil {
		return b
	}
	if err := b.net.AddPlace(&Place{ID: id, Label: label, Initial: initial}); err != nil {
		return b.fail(err)
	}
	return b
}

// ImmediateTransition adds an immediate transition.
func (b *Builder) ImmediateTransition(id string, priority int) *Builder {
	if b.err != nil {
		return b
	}
	if err := b.net.AddTransition(NewImmediate(id, id, priority)); err != nil {
		return b.fail(err)
	}
	return b
}

// TimedTransition adds a timed transition with window [earliest, latest].
func (b *Builder) TimedTransition(id string, earliest, latest float64) *Builder {
	if b.err != nil {
		return b
	}
	if err := b.net.AddTransition(NewTimed(id, id, earliest, latest)); err != nil {
		return b.fail(err)
	}
	return b
}

// StochasticTransition adds a stochastic transition with rate lambda and a
// burst cap.
func (b *Builder) StochasticTransition(id string, rate float64, maxBurst int) *Builder {
	if b.err != nil {
		return b
	}
	if err := b.net.AddTransition(NewStochastic(id, id, rate, maxBurst)); err != nil {
		return b.fail(err)
	}
	return b
}

// ContinuousTransition adds a continuous transition with a constant rate.
func (b *Builder) ContinuousTransition(id string, rate float64) *Builder {
	if b.err != nil {
		return b
	}
	if err := b.net.AddTransition(NewContinuous(id, id, rate)); err != nil {
		return b.fail(err)
	}
	return b
}

// ContinuousRateTransition adds a continuous transition whose rate is an
// expression over places and t.
func (b *Builder) ContinuousRateTransition(id, rateExpr string, stiff bool) *Builder {
	if b.err != nil {
		return b
	}
	t, err := NewContinuousRate(id, id, rateExpr, stiff)
	if err != nil {
		return b.fail(err)
	}
	if err := b.net.AddTransition(t); err != nil {
		return b.fail(err)
	}
	return b
}

// InputArc adds a normal consuming arc from place to transition.
func (b *Builder) InputArc(place, transition string, weight float64) *Builder {
	return b.arc(place, transition, ArcInput, ArcNormal, weight)
}

// OutputArc adds a normal producing arc from transition to place.
func (b *Builder) OutputArc(transition, place string, weight float64) *Builder {
	return b.arc(place, transition, ArcOutput, ArcNormal, weight)
}

// InhibitorArc adds an inhibitor input arc (consumes on fire; see ArcKind
// docs for the "living systems" semantics this toolkit contracts).
func (b *Builder) InhibitorArc(place, transition string, weight float64) *Builder {
	return b.arc(place, transition, ArcInput, ArcInhibitor, weight)
}

// ReadArc adds a non-consuming test arc.
func (b *Builder) ReadArc(place, transition string, weight float64) *Builder {
	return b.arc(place, transition, ArcInput, ArcRead, weight)
}

func (b *Builder) arc(place, transition string, dir ArcDirection, kind ArcKind, weight float64) *Builder {
	if b.err != nil {
		return b
	}
	if err := b.net.AddArc(&Arc{Place: place, Transition: transition, Direction: dir, Kind: kind, Weight: weight}); err != nil {
		return b.fail(err)
	}
	return b
}

// Flow adds the common place -> transition -> place pattern in one call.
func (b *Builder) Flow(fromPlace, transition, toPlace string, weight float64) *Builder {
	return b.InputArc(fromPlace, transition, weight).OutputArc(transition, toPlace, weight)
}

// Guard sets the guard expression on an already-added transition.
func (b *Builder) Guard(transitionID, source string) *Builder {
	if b.err != nil {
		return b
	}
	t, ok := b.net.Transitions[transitionID]
	if !ok {
		return b.fail(fmt.Errorf("%w: %q", ErrUnknownTransition, transitionID))
	}
	g, err := NewGuardFromSource(source)
	if err != nil {
		return b.fail(err)
	}
	t.GuardSource = source
	t.Guard = g
	return b
}

// Done finalizes construction and validates the net.
func (b *Builder) Done() (*Net, error) {
	if b.err != nil {
		return nil, b.err
	}
	if err := b.net.Validate(); err != nil {
		return nil, err
	}
	return b.net, nil
}
