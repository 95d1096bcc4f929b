package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hybridpetri/simcore/net"
	"github.com/hybridpetri/simcore/timeutil"
)

// Orchestrator drives one run of a Net forward in fixed time steps,
// implementing the eight-phase per-step algorithm over the four transition
// kinds. A single Orchestrator is safe for concurrent Step/Run callers and
// concurrent reads (Marking, IsRunning, IsComplete); it serializes all
// mutation behind mu.
type Orchestrator struct {
	mu sync.RWMutex

	net      *net.Net
	settings Settings
	logger   *slog.Logger

	marking Marking
	states  map[string]*EnablementState
	now     float64

	rng   *rand.Rand
	runID string

	running     bool
	stopped     bool // set on a fatal ErrNegativeMarking, cleared by Reset
	cancel      context.CancelFunc
	guardWarned map[string]bool // transition ids already warned about this run
	collectors  []Collector
}

// New constructs an Orchestrator over n with settings, validating both. A
// nil logger defaults to slog.Default().
func New(n *net.Net, settings Settings, logger *slog.Logger) (*Orchestrator, error) {
	if n == nil {
		return nil, fmt.Errorf("%w: net must not be nil", ErrInvalidParameter)
	}
	if err := n.Validate(); err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	o := &Orchestrator{
		net:         n,
		settings:    settings,
		logger:      logger,
		guardWarned: make(map[string]bool),
	}
	o.Reset()
	return o, nil
}

// Reset rewinds the run to time zero: marking returns to each place's
// Initial, enablement state is cleared, a fresh run id is assigned, and any
// fatal-stopped latch is released. Registered collectors are preserved.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()

	marking := make(Marking, len(o.net.Places))
	for id, p := range o.net.Places {
		marking[id] = p.Initial
	}
	o.marking = marking
	o.clearEnablementStatesLocked()
	o.now = 0
	o.guardWarned = make(map[string]bool)
	o.stopped = false
	o.running = false

	var seed int64
	if o.settings.RngSeed != nil {
		seed = *o.settings.RngSeed
	} else {
		seed = time.Now().UnixNano()
	}
	o.rng = rand.New(rand.NewSource(seed))
	o.runID = uuid.NewString()

	o.logger.Info("orchestrator reset", "run_id", o.runID, "seed", seed)
}

// clearEnablementStatesLocked replaces every transition's EnablementState
// with a fresh zero value. Callers must hold mu.
func (o *Orchestrator) clearEnablementStatesLocked() {
	o.states = make(map[string]*EnablementState, len(o.net.Transitions))
	for _, id := range o.net.TransitionIDs() {
		o.states[id] = &EnablementState{}
	}
}

// Marking returns a read-only snapshot of the current marking.
func (o *Orchestrator) Marking() Marking {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.marking.Clone()
}

// Now returns the current simulation time.
func (o *Orchestrator) Now() float64 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.now
}

// RunID returns the uuid identifying the current run epoch (reassigned on
// every Reset).
func (o *Orchestrator) RunID() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.runID
}

// IsRunning reports whether Run's loop is currently active.
func (o *Orchestrator) IsRunning() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.running
}

// IsComplete reports whether the configured duration has elapsed. A run
// with no configured duration is never complete by this test.
func (o *Orchestrator) IsComplete() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.settings.DurationSeconds == nil {
		return false
	}
	return timeutil.AtOrPast(o.now, *o.settings.DurationSeconds)
}

// RegisterCollector adds fn to the set notified at the end of every step
// (Phase H).
func (o *Orchestrator) RegisterCollector(fn Collector) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.collectors = append(o.collectors, fn)
}

// onGuardFailure logs a guard/threshold evaluation failure at most once per
// transition per run, per the error taxonomy's "log once, don't spam every
// step" rule for GuardEvaluationFailure; the transition itself is always
// treated as disabled by the caller regardless of whether this warns.
func (o *Orchestrator) onGuardFailure(transitionID string, err error) {
	if o.guardWarned[transitionID] {
		return
	}
	o.guardWarned[transitionID] = true
	o.logger.Warn("guard evaluation failed, transition treated as disabled",
		"transition_id", transitionID, "run_id", o.runID, "now", o.now, "error", err)
}

// Step advances the simulation by exactly dt seconds, running Phases A
// through H once. It returns true iff some observable progress occurred
// (a discrete firing, a window crossing, or a non-zero continuous flow).
// Calling Step while the orchestrator is latched stopped (after a fatal
// ErrNegativeMarking) returns ErrStopped until Reset is called.
func (o *Orchestrator) Step(dt float64) (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if dt < 0 {
		return false, fmt.Errorf("%w: dt must be >= 0, got %v", ErrInvalidParameter, dt)
	}
	if o.stopped {
		return false, ErrStopped
	}
	if dt > 1.0 {
		o.logger.Warn("large dt", "dt", dt, "run_id", o.runID, "error", ErrLargeDt)
	}

	progressed := false

	// Phase A — update enablement at now.
	UpdateEnablementStates(o.net, o.marking, o.states, o.now, o.rng, o.onGuardFailure)

	// Phase B — immediate exhaustion.
	immediateFirings, cycleWarning, err := exhaustImmediate(o.net, o.marking, o.states, o.now, o.settings.ConflictPolicy, o.rng, o.onGuardFailure)
	if err != nil {
		return o.fatal(err)
	}
	if cycleWarning {
		o.logger.Warn("immediate exhaustion cap reached, suspected structural cycle",
			"run_id", o.runID, "now", o.now, "error", ErrStructuralCycle)
	}
	if len(immediateFirings) > 0 {
		progressed = true
	}

	// Phase C — window-crossing detection.
	crossingFirings, err := detectWindowCrossings(o.net, o.marking, o.states, o.now, dt)
	if err != nil {
		return o.fatal(err)
	}
	if len(crossingFirings) > 0 {
		progressed = true
	}

	// Phase D — snapshot continuous transitions eligible at now (post B/C).
	snapshots := snapshotContinuous(o.net, o.marking, o.now, o.onGuardFailure)

	// Phase E — single discrete firing among timed/stochastic candidates.
	discreteFirings, err := selectDiscreteFiring(o.net, o.marking, o.states, o.now, o.settings.ConflictPolicy, o.rng)
	if err != nil {
		return o.fatal(err)
	}
	if len(discreteFirings) > 0 {
		progressed = true
	}

	// Phase F — continuous integration against the post-E marking.
	flows, err := integrateContinuous(o.net, o.marking, snapshots, dt)
	if err != nil {
		return o.fatal(err)
	}
	for _, f := range flows {
		if f.Delta != 0 {
			progressed = true
		}
	}

	// Phase G — advance time.
	o.now += dt

	// Phase H — notify collectors.
	allFirings := make([]FiringEvent, 0, len(immediateFirings)+len(crossingFirings)+len(discreteFirings))
	allFirings = append(allFirings, immediateFirings...)
	allFirings = append(allFirings, crossingFirings...)
	allFirings = append(allFirings, discreteFirings...)

	if len(o.collectors) > 0 {
		evt := StepEvent{
			RunID:        o.runID,
			Now:          o.now,
			Firings:      allFirings,
			Flows:        flows,
			MarkingDelta: accumulateMarkingDelta(allFirings, flows),
			MarkingAfter: o.marking.Clone(),
		}
		for _, c := range o.collectors {
			c(evt)
		}
	}

	return progressed, nil
}

// fatal latches the orchestrator into the stopped state and logs the
// triggering error at Error level; only ErrNegativeMarking reaches here per
// the error taxonomy (the other kinds are warnings handled inline in Step).
func (o *Orchestrator) fatal(err error) (bool, error) {
	o.stopped = true
	o.running = false
	o.logger.Error("orchestrator stopped on fatal error", "run_id", o.runID, "now", o.now, "error", err)
	return false, err
}

// Run drives Step in a loop gated by a time.Ticker at observer-tick
// granularity, each tick executing a batch of steps sized by
// Settings.StepsPerTick (capped, logging a large-dt-style warning if
// capped), until ctx is cancelled, Stop is called, or the configured
// duration completes. timeStep is the effective per-step dt (typically
// Settings.EffectiveDt()); tObsSeconds is the wall-clock period of one
// observer tick.
func (o *Orchestrator) Run(ctx context.Context, tObsSeconds, timeStep float64) error {
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return fmt.Errorf("%w: orchestrator already running", ErrInvalidParameter)
	}
	runCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	o.running = true
	o.logger.Info("orchestrator run started", "run_id", o.runID, "t_obs_seconds", tObsSeconds, "time_step", timeStep)
	o.mu.Unlock()

	defer func() {
		cancel()
		o.mu.Lock()
		o.running = false
		o.mu.Unlock()
		o.logger.Info("orchestrator run stopped", "run_id", o.runID, "now", o.Now())
	}()

	steps, capped := StepsPerTick(tObsSeconds, o.settings.TimeScale, timeStep)
	if capped {
		o.logger.Warn("steps_per_tick capped", "run_id", o.runID, "error", ErrLargeDt)
	}

	ticker := time.NewTicker(time.Duration(tObsSeconds * float64(time.Second)))
	defer ticker.Stop()

	for {
		select {
		case <-runCtx.Done():
			return nil
		case <-ticker.C:
			for i := 0; i < steps; i++ {
				if _, err := o.Step(timeStep); err != nil {
					return err
				}
				if o.IsComplete() {
					return nil
				}
			}
		}
	}
}

// Stop cancels an in-flight Run loop and clears all enablement state, so a
// stopped-then-restarted run never carries forward a stale EnablementTime/
// ScheduledTime from before the stop — left uncleared, a timed transition
// would see an enormous elapsed time on the next Run and fire immediately
// regardless of its configured window. If no Run is active, it only clears
// the enablement state.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	cancel := o.cancel
	o.clearEnablementStatesLocked()
	o.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}
