package sim

import (
	"fmt"
	"math"

	"github.com/hybridpetri/simcore/timeutil"
)

// DtMode selects how the effective step size is derived.
type DtMode string

const (
	// DtAuto derives dt = duration_seconds / TargetSteps.
	DtAuto DtMode = "auto"
	// DtManual uses DtManual directly.
	DtManual DtMode = "manual"
)

const defaultTargetSteps = 1000

// maxStepsPerTick caps the batch of steps executed per observer tick,
// protecting the observer from unbounded wall-clock stalls under extreme
// time_scale.
const maxStepsPerTick = 1000

// maxImmediateIterations caps immediate exhaustion; exceeding it is a
// recoverable structural-cycle warning, not a fatal error.
const maxImmediateIterations = 1000

// Settings is the orchestrator's configuration (spec.md §4.10).
type Settings struct {
	TimeUnits       timeutil.Unit
	DurationSeconds *float64
	DtMode          DtMode
	DtManual        float64
	TargetSteps     int
	TimeScale       float64
	ConflictPolicy  ConflictPolicy
	RngSeed         *int64
}

// DefaultSettings returns settings with the documented defaults:
// target_steps = 1000, conflict_policy = priority, time_scale = 1,
// dt_mode = auto.
func DefaultSettings() Settings {
	return Settings{
		TimeUnits:      timeutil.Seconds,
		DtMode:         DtAuto,
		TargetSteps:    defaultTargetSteps,
		TimeScale:      1,
		ConflictPolicy: PriorityPolicy,
	}
}

// Validate checks the invariants from spec.md §4.10.
func (s Settings) Validate() error {
	if s.DurationSeconds != nil && *s.DurationSeconds <= 0 {
		return fmt.Errorf("%w: duration_seconds must be > 0", ErrInvalidParameter)
	}
	if s.DtMode == DtManual && s.DtManual <= 0 {
		return fmt.Errorf("%w: dt_manual must be > 0 in manual mode", ErrInvalidParameter)
	}
	if s.TimeScale <= 0 {
		return fmt.Errorf("%w: time_scale must be > 0", ErrInvalidParameter)
	}
	switch s.ConflictPolicy {
	case PriorityPolicy, RandomPolicy, OldestPolicy, YoungestPolicy, "":
	default:
		return fmt.Errorf("%w: unknown conflict_policy %q", ErrInvalidParameter, s.ConflictPolicy)
	}
	return nil
}

// EffectiveDt computes dt per dt_mode: auto divides duration by
// TargetSteps (defaulting TargetSteps to 1000 if unset); manual returns
// DtManual directly. An unset duration in auto mode is an invalid
// parameter — auto mode needs a horizon to divide.
func (s Settings) EffectiveDt() (float64, error) {
	switch s.DtMode {
	case DtManual:
		if s.DtManual <= 0 {
			return 0, fmt.Errorf("%w: dt_manual must be > 0", ErrInvalidParameter)
		}
		return s.DtManual, nil
	case DtAuto, "":
		if s.DurationSeconds == nil {
			return 0, fmt.Errorf("%w: dt_mode=auto requires duration_seconds", ErrInvalidParameter)
		}
		steps := s.TargetSteps
		if steps <= 0 {
			steps = defaultTargetSteps
		}
		return *s.DurationSeconds / float64(steps), nil
	default:
		return 0, fmt.Errorf("%w: unknown dt_mode %q", ErrInvalidParameter, s.DtMode)
	}
}

// StepsPerTick computes steps_per_tick := max(1, floor(tObs * TimeScale /
// timeStep)), capped at maxStepsPerTick. capped reports whether the cap was
// applied, so the caller can log a large-dt-style warning.
func StepsPerTick(tObs, timeScale, timeStep float64) (steps int, capped bool) {
	raw := math.Floor(tObs * timeScale / timeStep)
	if raw < 1 {
		raw = 1
	}
	if raw > maxStepsPerTick {
		return maxStepsPerTick, true
	}
	return int(raw), false
}
