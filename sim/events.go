package sim

// FiringEvent describes one discrete transition firing within a step.
type FiringEvent struct {
	TransitionID   string
	Consumed       map[string]float64
	Produced       map[string]float64
	WindowCrossed  bool
	BurstFiringIdx int // 0 for the first firing in a burst, 1 for the second, ...
}

// FlowEvent describes one continuous transition's integrated flow within a
// step.
type FlowEvent struct {
	TransitionID string
	Rate         float64
	Delta        float64
	Consumed     map[string]float64
	Produced     map[string]float64
	Stiff        bool
}

// StepEvent is delivered to every registered collector at the end of each
// step (Phase H), reporting everything that happened during the step plus
// the resulting marking delta.
type StepEvent struct {
	RunID         string
	Now           float64
	Firings       []FiringEvent
	Flows         []FlowEvent
	MarkingDelta  map[string]float64
	MarkingAfter  Marking
}

// Collector is a per-step callback. Collectors run synchronously within the
// step and must not mutate the net graph or marking; they may copy the
// delivered Marking/deltas and enqueue for external consumers.
type Collector func(evt StepEvent)
