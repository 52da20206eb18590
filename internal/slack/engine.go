package slack

import (
	"sync"

	"github.com/san-kum/strucsim/internal/geom"
	"github.com/san-kum/strucsim/internal/material"
	"github.com/san-kum/strucsim/internal/parallel"
	"github.com/san-kum/strucsim/internal/structure"
)

// Spring is the mutable part of a live distance constraint.
type Spring interface {
	SetStiffness(k float64)
	SetRestLength(l float64)
}

// Member is a segment with a live constraint.
type Member struct {
	Segment         structure.SegmentID
	A, B            structure.NodeID
	RestLength      float64
	Stiffness       float64
	TensionOnly     bool
	CompressionOnly bool
	Contraction     material.Contraction
	Spring          Spring
}

func MemberFor(seg structure.Segment, spring Spring) Member {
	return Member{
		Segment:         seg.ID,
		A:               seg.A,
		B:               seg.B,
		RestLength:      seg.RestLength,
		Stiffness:       seg.Stiffness,
		TensionOnly:     seg.TensionOnly,
		CompressionOnly: seg.CompressionOnly,
		Contraction:     material.Resolve(seg.Material).Contraction,
		Spring:          spring,
	}
}

// Rider is a weight hung at fraction T along a segment by two springs:
// Near anchored at A and Far anchored at B.
type Rider struct {
	Weight    structure.WeightID
	Segment   structure.SegmentID
	A, B      structure.NodeID
	T         float64
	Near, Far Spring
}

// State is the per-segment runtime record produced every step.
type State struct {
	CurrentLength float64
	RestLength    float64 // rest length applied this step
	Deformation   Deformation
	Slack         bool
	Strain        float64
	Stress        float64
	Stiffness     float64 // stiffness applied this step
}

type Stats struct {
	Members int
	Skipped int
	Slack   int
	Riders  int
}

type result struct {
	state State
	ok    bool
}

type Engine struct {
	cfg Config

	mu      sync.RWMutex
	states  map[structure.SegmentID]State
	scratch []result
}

func NewEngine(cfg Config) *Engine {
	if cfg.ToleranceRatio < 0 {
		cfg.ToleranceRatio = 0
	}
	if cfg.MinChunk <= 0 {
		cfg.MinChunk = DefaultMinChunk
	}
	return &Engine{
		cfg:    cfg,
		states: make(map[structure.SegmentID]State),
	}
}

func (e *Engine) Config() Config { return e.cfg }

// Evaluate computes the state of one member at time t and drives its spring.
// It reports false when an endpoint is unresolved.
func (e *Engine) Evaluate(m Member, t float64, pos structure.PositionFunc) (State, bool) {
	pa, okA := pos(m.A)
	pb, okB := pos(m.B)
	if !okA || !okB {
		return State{}, false
	}

	st := State{
		CurrentLength: geom.Distance(pa, pb),
		RestLength:    m.RestLength,
		Stiffness:     m.Stiffness,
	}

	if m.Contraction.Active() {
		st.RestLength = ContractedLength(m.RestLength, m.Contraction.Ratio, m.Contraction.Period, t)
		if m.Spring != nil {
			m.Spring.SetRestLength(st.RestLength)
		}
	}

	if m.TensionOnly || m.CompressionOnly {
		st.Deformation = Classify(m.RestLength, st.CurrentLength, e.cfg.ToleranceRatio)
		st.Slack = IsSlack(m.TensionOnly, m.CompressionOnly, st.Deformation)
	} else {
		st.Deformation = Classify(st.RestLength, st.CurrentLength, e.cfg.ToleranceRatio)
	}

	if st.Slack {
		st.Stiffness = 0
	}
	if m.Spring != nil {
		m.Spring.SetStiffness(st.Stiffness)
	}

	st.Strain = Strain(st.RestLength, st.CurrentLength)
	st.Stress = Stress(st.Strain, e.cfg.StressScale, st.Slack)
	return st, true
}

// Step runs one pre-integration pass. A member or rider whose endpoints pos
// cannot resolve is skipped for this step; pos may be called from several
// goroutines at once. Members are independent, so they are
// evaluated in parallel chunks; riders run after them.
func (e *Engine) Step(t float64, members []Member, riders []Rider, pos structure.PositionFunc) Stats {
	if cap(e.scratch) < len(members) {
		e.scratch = make([]result, len(members))
	}
	results := e.scratch[:len(members)]

	parallel.For(len(members), e.cfg.MinChunk, func(start, end int) {
		for i := start; i < end; i++ {
			st, ok := e.Evaluate(members[i], t, pos)
			results[i] = result{state: st, ok: ok}
		}
	})

	stats := Stats{}
	e.mu.Lock()
	for i, r := range results {
		if !r.ok {
			stats.Skipped++
			continue
		}
		stats.Members++
		if r.state.Slack {
			stats.Slack++
		}
		e.states[members[i].Segment] = r.state
	}
	e.mu.Unlock()

	for _, r := range riders {
		if TrackRider(r, pos) {
			stats.Riders++
		}
	}
	return stats
}

// TrackRider splits the live segment length between the rider's two
// springs. It reports false when an endpoint is unresolved.
func TrackRider(r Rider, pos structure.PositionFunc) bool {
	pa, okA := pos(r.A)
	pb, okB := pos(r.B)
	if !okA || !okB {
		return false
	}
	l := geom.Distance(pa, pb)
	if r.Near != nil {
		r.Near.SetRestLength(r.T * l)
	}
	if r.Far != nil {
		r.Far.SetRestLength((1 - r.T) * l)
	}
	return true
}

func (e *Engine) State(id structure.SegmentID) (State, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	st, ok := e.states[id]
	return st, ok
}

// States returns a snapshot copy of every segment record.
func (e *Engine) States() map[structure.SegmentID]State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make(map[structure.SegmentID]State, len(e.states))
	for id, st := range e.states {
		out[id] = st
	}
	return out
}

// Reset forgets every record, which reads as "not slack" for all segments.
func (e *Engine) Reset() {
	e.mu.Lock()
	e.states = make(map[structure.SegmentID]State)
	e.mu.Unlock()
}
