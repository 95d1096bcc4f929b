package net

import (
	"math"

	"github.com/hybridpetri/simcore/expr"
)

// Kind tags which of the four firing semantics a Transition implements.
// Re-architected as a sum type (rather than attribute-sniffing across a
// single flat struct) per the source-language design notes. The sim package
// dispatches on Kind in its per-phase functions, selecting the transitions
// of each kind with Net.TransitionsByKind.
type Kind string

const (
	Immediate  Kind = "immediate"
	Timed      Kind = "timed"
	Stochastic Kind = "stochastic"
	Continuous Kind = "continuous"
)

// ImmediateProps holds the (empty) kind-specific payload for immediate
// transitions; priority and guard are common fields on Transition.
type ImmediateProps struct{}

// TimedProps holds the firing window for a timed transition. Latest may be
// +Inf for an unbounded window; Earliest == Latest is the deterministic-delay
// case.
type TimedProps struct {
	Earliest float64
	Latest   float64
}

// StochasticProps holds the exponential rate and burst cap for a stochastic
// transition.
type StochasticProps struct {
	Rate     float64
	MaxBurst int
}

// ContinuousProps holds the rate (constant or expression) and the stiff-
// integration opt-in for a continuous transition.
type ContinuousProps struct {
	Rate       float64
	RateSource string
	RateExpr   *expr.Compiled
	Stiff      bool
}

// Transition is a firing site with a kind tag and typed kind-specific
// payload.
type Transition struct {
	ID    string
	Label string
	Kind  Kind

	GuardSource string
	Guard       expr.Guard

	Priority int
	Source   bool // skip all input-arc checks/consumption
	Sink     bool // skip all output-arc production

	ImmediateProps  *ImmediateProps
	TimedProps      *TimedProps
	StochasticProps *StochasticProps
	ContinuousProps *ContinuousProps
}

// NewImmediate constructs an immediate transition.
func NewImmediate(id, label string, priority int) *Transition {
	return &Transition{
		ID: id, Label: label, Kind: Immediate, Priority: priority,
		Guard:          expr.AlwaysGuard(),
		ImmediateProps: &ImmediateProps{},
	}
}

// NewTimed constructs a timed transition with window [earliest, latest].
// latest may be math.Inf(1) for an unbounded window.
func NewTimed(id, label string, earliest, latest float64) *Transition {
	return &Transition{
		ID: id, Label: label, Kind: Timed,
		Guard:      expr.AlwaysGuard(),
		TimedProps: &TimedProps{Earliest: earliest, Latest: latest},
	}
}

// NewStochastic constructs a stochastic transition with rate lambda and a
// burst cap (minimum 1).
func NewStochastic(id, label string, rate float64, maxBurst int) *Transition {
	if maxBurst < 1 {
		maxBurst = 1
	}
	return &Transition{
		ID: id, Label: label, Kind: Stochastic,
		Guard:           expr.AlwaysGuard(),
		StochasticProps: &StochasticProps{Rate: rate, MaxBurst: maxBurst},
	}
}

// NewContinuous constructs a continuous transition with a constant rate.
func NewContinuous(id, label string, rate float64) *Transition {
	return &Transition{
		ID: id, Label: label, Kind: Continuous,
		Guard:           expr.AlwaysGuard(),
		ContinuousProps: &ContinuousProps{Rate: rate},
	}
}

// NewContinuousRate constructs a continuous transition whose rate is an
// expression over place tokens and simulation time t.
func NewContinuousRate(id, label, rateExpr string, stiff bool) (*Transition, error) {
	compiled, err := expr.Compile(rateExpr)
	if err != nil {
		return nil, err
	}
	return &Transition{
		ID: id, Label: label, Kind: Continuous,
		Guard: expr.AlwaysGuard(),
		ContinuousProps: &ContinuousProps{
			RateSource: rateExpr,
			RateExpr:   compiled,
			Stiff:      stiff,
		},
	}, nil
}

// EvalRate evaluates the transition's continuous rate against a marking
// snapshot and simulation time. Panics if called on a non-continuous
// transition — callers are expected to dispatch on Kind first.
func (t *Transition) EvalRate(marking map[string]float64, now float64) (float64, error) {
	if t.ContinuousProps.RateExpr != nil {
		return t.ContinuousProps.RateExpr.Eval(expr.NewEnv(marking, now))
	}
	return t.ContinuousProps.Rate, nil
}

// UnboundedLatest is the sentinel used for a timed transition with no upper
// bound on its firing window.
var UnboundedLatest = math.Inf(1)
