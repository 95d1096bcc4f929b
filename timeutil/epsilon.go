package timeutil

// Epsilon is the absolute tolerance applied to every boundary, scheduled-time,
// and zero-width-interval comparison in the simulation core. A discrete step
// dt is typically >= 1e-4 seconds, so cumulative float drift stays well below
// this tolerance across simulations of billions of steps.
const Epsilon = 1e-9

// TooEarly reports whether elapsed has not yet reached earliest, beyond the
// epsilon tolerance.
func TooEarly(elapsed, earliest float64) bool {
	return elapsed+Epsilon < earliest
}

// TooLate reports whether elapsed has passed latest, beyond the epsilon
// tolerance.
func TooLate(elapsed, latest float64) bool {
	return elapsed > latest+Epsilon
}

// WithinWindow reports whether elapsed falls in [earliest, latest] under
// epsilon tolerance. latest may be +Inf for an unbounded window.
func WithinWindow(elapsed, earliest, latest float64) bool {
	return !TooEarly(elapsed, earliest) && !TooLate(elapsed, latest)
}

// AtOrAfter reports whether now has reached target, under epsilon tolerance.
func AtOrAfter(now, target float64) bool {
	return now+Epsilon >= target
}

// AtOrPast reports whether now has reached or passed target (an alias kept
// distinct from AtOrAfter for readability at call sites that compare against
// a completion threshold rather than a scheduled instant).
func AtOrPast(now, target float64) bool {
	return now+Epsilon >= target
}
