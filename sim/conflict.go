package sim

import (
	"math/rand"

	"github.com/hybridpetri/simcore/net"
)

// ConflictPolicy selects one transition among several simultaneously
// eligible discrete transitions.
type ConflictPolicy string

const (
	PriorityPolicy ConflictPolicy = "priority"
	RandomPolicy   ConflictPolicy = "random"
	OldestPolicy   ConflictPolicy = "oldest"
	YoungestPolicy ConflictPolicy = "youngest"
)

// Candidate is one eligible transition together with the context a conflict
// policy needs to rank it: its priority and its enablement time.
type Candidate struct {
	Transition     *net.Transition
	EnablementTime float64
}

// Select picks one candidate from candidates according to policy. Guards
// have already been applied by the caller — removing a disabled transition
// from the eligible set happens before candidates ever reaches Select, per
// the "guards before priority" rule. Returns false if candidates is empty.
func Select(candidates []Candidate, policy ConflictPolicy, rng *rand.Rand) (Candidate, bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}
	if len(candidates) == 1 {
		return candidates[0], true
	}
	switch policy {
	case RandomPolicy:
		return candidates[rng.Intn(len(candidates))], true
	case OldestPolicy:
		best := candidates[0]
		for _, c := range candidates[1:] {
			if c.EnablementTime < best.EnablementTime {
				best = c
			}
		}
		return best, true
	case YoungestPolicy:
		best := candidates[0]
		for _, c := range candidates[1:] {
			if c.EnablementTime > best.EnablementTime {
				best = c
			}
		}
		return best, true
	case PriorityPolicy:
		fallthrough
	default:
		best := candidates[0]
		for _, c := range candidates[1:] {
			switch {
			case c.Transition.Priority > best.Transition.Priority:
				best = c
			case c.Transition.Priority == best.Transition.Priority && c.EnablementTime < best.EnablementTime:
				// secondary rule on a priority tie: oldest enablement wins.
				best = c
			}
		}
		return best, true
	}
}
