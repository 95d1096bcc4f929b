// Package timeutil provides the simulation clock's unit conversions and the
// centralized epsilon-tolerant comparisons used throughout the core.
package timeutil

import "fmt"

// Unit identifies a display time unit. Internal computation is always in
// seconds; Unit only affects formatting.
type Unit string

const (
	Nanoseconds  Unit = "ns"
	Microseconds Unit = "us"
	Milliseconds Unit = "ms"
	Seconds      Unit = "s"
	Minutes      Unit = "min"
	Hours        Unit = "hr"
	Days         Unit = "day"
)

// secondsPer maps a Unit to the number of seconds in one of that unit.
var secondsPer = map[Unit]float64{
	Nanoseconds:  1e-9,
	Microseconds: 1e-6,
	Milliseconds: 1e-3,
	Seconds:      1,
	Minutes:      60,
	Hours:        3600,
	Days:         86400,
}

// ToSeconds converts a value expressed in u to seconds.
func ToSeconds(value float64, u Unit) (float64, error) {
	factor, ok := secondsPer[u]
	if !ok {
		return 0, fmt.Errorf("timeutil: unknown unit %q", u)
	}
	return value * factor, nil
}

// FromSeconds converts a value in seconds to u.
func FromSeconds(seconds float64, u Unit) (float64, error) {
	factor, ok := secondsPer[u]
	if !ok {
		return 0, fmt.Errorf("timeutil: unknown unit %q", u)
	}
	return seconds / factor, nil
}

// orderedUnits lists units from largest to smallest, used by Humanize to
// find the most readable scale.
var orderedUnits = []Unit{Days, Hours, Minutes, Seconds, Milliseconds, Microseconds, Nanoseconds}

// Humanize formats a duration given in seconds using the largest unit for
// which the magnitude is at least 1, falling back to nanoseconds.
func Humanize(seconds float64) string {
	abs := seconds
	if abs < 0 {
		abs = -abs
	}
	for _, u := range orderedUnits {
		scaled := abs / secondsPer[u]
		if scaled >= 1 || u == Nanoseconds {
			v, _ := FromSeconds(seconds, u)
			return fmt.Sprintf("%.4g%s", v, u)
		}
	}
	return fmt.Sprintf("%gs", seconds)
}
