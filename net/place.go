package net

// Place holds a stable identifier and the net-construction-time parameters
// of a place. Actual token counts at runtime belong to a Marking (see the
// sim package) — the net graph itself is read-only for the duration of a
// run, so Place carries no mutable state.
type Place struct {
	ID      string
	Label   string
	Initial float64
}
