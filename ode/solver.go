// Package ode provides an adaptive embedded Runge-Kutta integrator, adapted
// from a mass-action Petri-net ODE solver and repurposed here as the optional
// stiff-subdivision strategy for a single continuous transition's flow
// variable (see the sim package's continuous behavior). The externally
// observed step contract of the orchestrator stays forward Euler; this
// package only improves the internal accuracy of one transition's flow
// estimate across a single orchestrator step when that transition opts in.
package ode

import "math"

// Func computes the derivative du/dt given time t and state u. u is a flat
// map of state-variable name to value; for the single-transition use in this
// module that map holds exactly one key, the transition's flow variable.
type Func func(t float64, u map[string]float64) map[string]float64

// Problem is an ODE initial value problem: integrate F from Tspan[0] to
// Tspan[1] starting at U0.
type Problem struct {
	U0    map[string]float64
	Tspan [2]float64
	F     Func

	stateLabels []string
}

// NewProblem builds a Problem, recording the ordered set of state labels
// from U0's keys.
func NewProblem(u0 map[string]float64, tspan [2]float64, f Func) *Problem {
	labels := make([]string, 0, len(u0))
	for k := range u0 {
		labels = append(labels, k)
	}
	return &Problem{U0: u0, Tspan: tspan, F: f, stateLabels: labels}
}

// Solution is the trajectory produced by Solve.
type Solution struct {
	T []float64
	U []map[string]float64
}

// GetFinalState returns the state at the last accepted step.
func (s *Solution) GetFinalState() map[string]float64 {
	if len(s.U) == 0 {
		return nil
	}
	return s.U[len(s.U)-1]
}

// Options configures the stepping behavior.
type Options struct {
	Dt       float64
	Dtmin    float64
	Dtmax    float64
	Abstol   float64
	Reltol   float64
	Maxiters int
	Adaptive bool
}

// DefaultOptions returns options sized for subdividing a single orchestrator
// step (a handful of internal stages, not thousands).
func DefaultOptions(dt float64) *Options {
	return &Options{
		Dt:       dt / 10,
		Dtmin:    1e-9,
		Dtmax:    dt,
		Abstol:   1e-9,
		Reltol:   1e-6,
		Maxiters: 1000,
		Adaptive: true,
	}
}

// Solver is a Butcher-tableau-described explicit Runge-Kutta method with an
// embedded lower-order error estimator.
type Solver struct {
	Name  string
	Order int
	C     []float64
	A     [][]float64
	B     []float64
	Bhat  []float64
}

// Solve integrates prob using solver (defaulting to Tsit5) and opts
// (defaulting to DefaultOptions(prob.Tspan[1]-prob.Tspan[0])), with adaptive
// step-size accept/reject control.
func Solve(prob *Problem, solver *Solver, opts *Options) *Solution {
	if solver == nil {
		solver = Tsit5()
	}
	if opts == nil {
		opts = DefaultOptions(prob.Tspan[1] - prob.Tspan[0])
	}

	dtmin := opts.Dtmin
	dtmax := opts.Dtmax
	abstol := opts.Abstol
	reltol := opts.Reltol
	maxiters := opts.Maxiters
	adaptive := opts.Adaptive

	t0 := prob.Tspan[0]
	tf := prob.Tspan[1]
	f := prob.F
	labels := prob.stateLabels

	t := []float64{t0}
	u := []map[string]float64{copyState(prob.U0)}
	tcur := t0
	ucur := copyState(prob.U0)
	dtcur := opts.Dt
	if dtcur <= 0 {
		dtcur = math.Max(dtmin, (tf-t0)/10)
	}
	nsteps := 0

	for tcur < tf && nsteps < maxiters {
		if tcur+dtcur > tf {
			dtcur = tf - tcur
		}

		K := make([]map[string]float64, len(solver.C))
		K[0] = f(tcur, ucur)

		for stage := 1; stage < len(solver.C); stage++ {
			tstage := tcur + solver.C[stage]*dtcur
			ustage := copyState(ucur)
			for _, key := range labels {
				for j := 0; j < stage; j++ {
					aj := 0.0
					if len(solver.A) > stage && len(solver.A[stage]) > j {
						aj = solver.A[stage][j]
					}
					ustage[key] += dtcur * aj * K[j][key]
				}
			}
			K[stage] = f(tstage, ustage)
		}

		unext := copyState(ucur)
		for _, key := range labels {
			for j := 0; j < len(solver.B); j++ {
				unext[key] += dtcur * solver.B[j] * K[j][key]
			}
		}

		errRatio := 0.0
		if adaptive {
			for _, key := range labels {
				errest := 0.0
				for j := 0; j < len(solver.Bhat); j++ {
					errest += dtcur * solver.Bhat[j] * K[j][key]
				}
				scale := abstol + reltol*math.Max(math.Abs(ucur[key]), math.Abs(unext[key]))
				if scale == 0 {
					scale = abstol
				}
				val := math.Abs(errest) / scale
				if val > errRatio {
					errRatio = val
				}
			}
		}

		if !adaptive || errRatio <= 1.0 || dtcur <= dtmin {
			tcur += dtcur
			ucur = unext
			t = append(t, tcur)
			u = append(u, copyState(ucur))
			nsteps++

			if adaptive && errRatio > 0 {
				factor := 0.9 * math.Pow(1.0/errRatio, 1.0/float64(solver.Order+1))
				factor = math.Min(factor, 5.0)
				dtcur = math.Min(dtmax, math.Max(dtmin, dtcur*factor))
			}
		} else {
			factor := 0.9 * math.Pow(1.0/errRatio, 1.0/float64(solver.Order+1))
			factor = math.Max(factor, 0.1)
			dtcur = math.Max(dtmin, dtcur*factor)
		}
	}

	return &Solution{T: t, U: u}
}

func copyState(s map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
