package joint

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/strucsim/internal/structure"
)

type AnglePair struct {
	SegmentA, SegmentB structure.SegmentID
	Angle              float64
	RestAngle          float64
	Torque             float64
	NormalizedTorque   float64
	LoadPathStress     float64
}

type Joint struct {
	Node             structure.NodeID
	AngularStiffness float64
	Pairs            []AnglePair
}

// PeakTorque is the largest normalized torque of the joint.
func (j Joint) PeakTorque() float64 {
	peak := 0.0
	for _, p := range j.Pairs {
		if p.NormalizedTorque > peak {
			peak = p.NormalizedTorque
		}
	}
	return peak
}

// StressLookup yields a segment's stress; false means no value is set.
type StressLookup interface {
	Stress(id structure.SegmentID) (float64, bool)
}

// StoredStress reads the optional stress stored on each segment.
type StoredStress struct {
	S *structure.Structure
}

func (l StoredStress) Stress(id structure.SegmentID) (float64, bool) {
	seg, ok := l.S.Segment(id)
	if !ok || seg.Stress == nil {
		return 0, false
	}
	return *seg.Stress, true
}

type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	if cfg.TorqueScale <= 0 {
		cfg.TorqueScale = DefaultTorqueScale
	}
	return &Engine{cfg: cfg}
}

func (e *Engine) Config() Config { return e.cfg }

// Compute builds the joint map for s. pos supplies live positions and may
// be nil; unresolved nodes fall back to their stored position. stress may
// be nil, in which case the stress stored on the segments is used.
func (e *Engine) Compute(s *structure.Structure, pos structure.PositionFunc, stress StressLookup) map[structure.NodeID]Joint {
	stored := s.StoredPositions()
	resolve := func(id structure.NodeID) mgl64.Vec2 {
		if pos != nil {
			if p, ok := pos(id); ok {
				return p
			}
		}
		p, _ := stored(id)
		return p
	}
	if stress == nil {
		stress = StoredStress{S: s}
	}
	lookup := func(id structure.SegmentID) *float64 {
		if v, ok := stress.Stress(id); ok {
			return &v
		}
		return nil
	}

	out := make(map[structure.NodeID]Joint)
	for _, n := range s.Nodes() {
		segs := s.SegmentsAt(n.ID)
		if len(segs) < 2 {
			continue
		}

		pivot := resolve(n.ID)
		ends := make([]mgl64.Vec2, len(segs))
		for i, id := range segs {
			seg, _ := s.Segment(id)
			other, _ := seg.Other(n.ID)
			ends[i] = resolve(other)
		}

		j := Joint{
			Node:             n.ID,
			AngularStiffness: n.AngularStiffness,
			Pairs:            make([]AnglePair, 0, len(segs)*(len(segs)-1)/2),
		}
		for a := 0; a < len(segs); a++ {
			for b := a + 1; b < len(segs); b++ {
				angle := Angle(pivot, ends[a], ends[b])
				rest, ok := s.RestAngle(n.ID, segs[a], segs[b])
				if !ok {
					rest = angle
				}
				torque := Torque(angle, rest, n.AngularStiffness)
				j.Pairs = append(j.Pairs, AnglePair{
					SegmentA:         segs[a],
					SegmentB:         segs[b],
					Angle:            angle,
					RestAngle:        rest,
					Torque:           torque,
					NormalizedTorque: NormalizeTorque(torque, e.cfg.TorqueScale),
					LoadPathStress:   LoadPathStress(lookup(segs[a]), lookup(segs[b])),
				})
			}
		}
		out[n.ID] = j
	}
	return out
}

// SortedNodes lists the joint nodes in ID order.
func SortedNodes(joints map[structure.NodeID]Joint) []structure.NodeID {
	ids := make([]structure.NodeID, 0, len(joints))
	for id := range joints {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Peak finds the joint with the largest normalized torque. Ties go to the
// lower node ID.
func Peak(joints map[structure.NodeID]Joint) (structure.NodeID, float64) {
	var node structure.NodeID
	peak := -1.0
	for _, id := range SortedNodes(joints) {
		if v := joints[id].PeakTorque(); v > peak {
			node, peak = id, v
		}
	}
	if peak < 0 {
		return 0, 0
	}
	return node, peak
}
