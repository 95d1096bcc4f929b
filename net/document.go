package net

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/hybridpetri/simcore/expr"
)

// placeDoc, transitionDoc, and arcDoc are the plain-JSON wire shapes for a
// net document (SPEC_FULL.md §10). They mirror the field names of the data
// model in spec.md §3 so a saved-model file is self-describing without a
// schema library.
type placeDoc struct {
	ID      string  `json:"id"`
	Label   string  `json:"label,omitempty"`
	Initial float64 `json:"initial"`
}

type transitionDoc struct {
	ID       string  `json:"id"`
	Label    string  `json:"label,omitempty"`
	Kind     string  `json:"kind"`
	Guard    string  `json:"guard,omitempty"`
	Priority int     `json:"priority,omitempty"`
	Source   bool    `json:"source,omitempty"`
	Sink     bool    `json:"sink,omitempty"`
	Earliest float64 `json:"earliest,omitempty"`
	Latest   *float64 `json:"latest,omitempty"`
	Rate     float64 `json:"rate,omitempty"`
	RateExpr string  `json:"rate_expr,omitempty"`
	MaxBurst int     `json:"max_burst,omitempty"`
	Stiff    bool    `json:"stiff,omitempty"`
}

type arcDoc struct {
	Place      string  `json:"place"`
	Transition string  `json:"transition"`
	Direction  string  `json:"direction"`
	Kind       string  `json:"kind,omitempty"`
	Weight     float64 `json:"weight"`
	Threshold  string  `json:"threshold,omitempty"`
}

type netDoc struct {
	Places      []placeDoc      `json:"places"`
	Transitions []transitionDoc `json:"transitions"`
	Arcs        []arcDoc        `json:"arcs"`
}

// Load parses a net document from r.
func Load(r io.Reader) (*Net, error) {
	var doc netDoc
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("net: decode document: %w", err)
	}
	return fromDoc(&doc)
}

// LoadFile opens path and parses it as a net document.
func LoadFile(path string) (*Net, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("net: open %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

func fromDoc(doc *netDoc) (*Net, error) {
	n := New()
	for _, pd := range doc.Places {
		if err := n.AddPlace(&Place{ID: pd.ID, Label: pd.Label, Initial: pd.Initial}); err != nil {
			return nil, err
		}
	}
	for _, td := range doc.Transitions {
		t, err := transitionFromDoc(td)
		if err != nil {
			return nil, err
		}
		if err := n.AddTransition(t); err != nil {
			return nil, err
		}
	}
	for _, ad := range doc.Arcs {
		a, err := arcFromDoc(ad)
		if err != nil {
			return nil, err
		}
		if err := n.AddArc(a); err != nil {
			return nil, err
		}
	}
	if err := n.Validate(); err != nil {
		return nil, err
	}
	return n, nil
}

func transitionFromDoc(td transitionDoc) (*Transition, error) {
	guard, err := NewGuardFromSource(td.Guard)
	if err != nil {
		return nil, fmt.Errorf("net: transition %q guard: %w", td.ID, err)
	}
	t := &Transition{
		ID: td.ID, Label: td.Label, Kind: Kind(td.Kind),
		GuardSource: td.Guard, Guard: guard,
		Priority: td.Priority, Source: td.Source, Sink: td.Sink,
	}
	switch t.Kind {
	case Immediate:
		t.ImmediateProps = &ImmediateProps{}
	case Timed:
		latest := math.Inf(1)
		if td.Latest != nil {
			latest = *td.Latest
		}
		t.TimedProps = &TimedProps{Earliest: td.Earliest, Latest: latest}
	case Stochastic:
		maxBurst := td.MaxBurst
		if maxBurst < 1 {
			maxBurst = 1
		}
		t.StochasticProps = &StochasticProps{Rate: td.Rate, MaxBurst: maxBurst}
	case Continuous:
		cp := &ContinuousProps{Rate: td.Rate, Stiff: td.Stiff}
		if td.RateExpr != "" {
			compiled, err := compileRate(td.RateExpr)
			if err != nil {
				return nil, fmt.Errorf("net: transition %q rate_expr: %w", td.ID, err)
			}
			cp.RateSource = td.RateExpr
			cp.RateExpr = compiled
		}
		t.ContinuousProps = cp
	default:
		return nil, fmt.Errorf("%w: %q on transition %q", ErrInvalidKind, td.Kind, td.ID)
	}
	return t, nil
}

func arcFromDoc(ad arcDoc) (*Arc, error) {
	kind := ArcNormal
	if ad.Kind != "" {
		kind = ArcKind(ad.Kind)
	}
	a := &Arc{
		Place: ad.Place, Transition: ad.Transition,
		Direction: ArcDirection(ad.Direction), Kind: kind, Weight: ad.Weight,
	}
	if ad.Threshold != "" {
		compiled, err := compileRate(ad.Threshold)
		if err != nil {
			return nil, fmt.Errorf("net: arc %s-%s threshold: %w", ad.Place, ad.Transition, err)
		}
		a.ThresholdSource = ad.Threshold
		a.Threshold = compiled
	}
	return a, nil
}

// Save writes net as a JSON document to w.
func Save(n *Net, w io.Writer) error {
	doc := toDoc(n)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func toDoc(n *Net) *netDoc {
	doc := &netDoc{}
	for _, id := range n.PlaceIDs() {
		p := n.Places[id]
		doc.Places = append(doc.Places, placeDoc{ID: p.ID, Label: p.Label, Initial: p.Initial})
	}
	for _, id := range n.TransitionIDs() {
		t := n.Transitions[id]
		td := transitionDoc{
			ID: t.ID, Label: t.Label, Kind: string(t.Kind),
			Guard: t.GuardSource, Priority: t.Priority, Source: t.Source, Sink: t.Sink,
		}
		switch t.Kind {
		case Timed:
			td.Earliest = t.TimedProps.Earliest
			if !math.IsInf(t.TimedProps.Latest, 1) {
				latest := t.TimedProps.Latest
				td.Latest = &latest
			}
		case Stochastic:
			td.Rate = t.StochasticProps.Rate
			td.MaxBurst = t.StochasticProps.MaxBurst
		case Continuous:
			td.Rate = t.ContinuousProps.Rate
			td.RateExpr = t.ContinuousProps.RateSource
			td.Stiff = t.ContinuousProps.Stiff
		}
		doc.Transitions = append(doc.Transitions, td)
	}
	for _, a := range n.Arcs {
		doc.Arcs = append(doc.Arcs, arcDoc{
			Place: a.Place, Transition: a.Transition,
			Direction: string(a.Direction), Kind: string(a.Kind),
			Weight: a.Weight, Threshold: a.ThresholdSource,
		})
	}
	return doc
}

func compileRate(source string) (*expr.Compiled, error) {
	return expr.Compile(source)
}
