package structure

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/strucsim/internal/geom"
)

func (s *Structure) AttachWeightToNode(n NodeID, mass, radius float64) (WeightID, error) {
	if _, ok := s.nodes[n]; !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownNode, n)
	}
	return s.addWeight(Weight{Node: n, Mass: mass, Radius: radius})
}

// AttachWeightToSegment hangs a weight at fraction t along seg. t is
// clamped to [0,1].
func (s *Structure) AttachWeightToSegment(seg SegmentID, t, mass, radius float64) (WeightID, error) {
	if _, ok := s.segments[seg]; !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownSegment, seg)
	}
	return s.addWeight(Weight{Segment: seg, T: geom.Clamp(t, 0, 1), Mass: mass, Radius: radius})
}

// AttachWeightNearest projects p onto the closest segment within maxDist and
// hangs the weight there.
func (s *Structure) AttachWeightNearest(p mgl64.Vec2, maxDist, mass, radius float64) (WeightID, error) {
	best := SegmentID(0)
	bestDist := math.Inf(1)
	bestT := 0.0
	for _, seg := range s.Segments() {
		t, closest := geom.ProjectOntoSegment(p, s.nodes[seg.A].Pos, s.nodes[seg.B].Pos)
		if d := geom.Distance(p, closest); d < bestDist {
			best, bestDist, bestT = seg.ID, d, t
		}
	}
	if best == 0 || bestDist > maxDist {
		return 0, ErrNoSegmentInRange
	}
	return s.AttachWeightToSegment(best, bestT, mass, radius)
}

func (s *Structure) addWeight(w Weight) (WeightID, error) {
	if w.Mass <= 0 || w.Radius <= 0 {
		return 0, ErrInvalidDimensions
	}
	s.nextWeight++
	w.ID = s.nextWeight
	s.weights[w.ID] = &w
	return w.ID, nil
}

func (s *Structure) Weight(id WeightID) (Weight, bool) {
	w, ok := s.weights[id]
	if !ok {
		return Weight{}, false
	}
	return *w, true
}

// Weights returns copies of all weights in ID order.
func (s *Structure) Weights() []Weight {
	out := make([]Weight, 0, len(s.weights))
	for _, w := range s.weights {
		out = append(out, *w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Structure) RemoveWeight(id WeightID) error {
	if _, ok := s.weights[id]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownWeight, id)
	}
	delete(s.weights, id)
	return nil
}

// WeightAnchor is the design-time point the weight hangs from.
func (s *Structure) WeightAnchor(w Weight) (mgl64.Vec2, error) {
	if err := s.checkAttachment(w); err != nil {
		return mgl64.Vec2{}, err
	}
	if w.OnSegment() {
		seg := s.segments[w.Segment]
		return geom.Lerp(s.nodes[seg.A].Pos, s.nodes[seg.B].Pos, w.T), nil
	}
	return s.nodes[w.Node].Pos, nil
}

func (s *Structure) checkAttachment(w Weight) error {
	switch {
	case (w.Node == 0) == (w.Segment == 0):
		return ErrBadAttachment
	case w.OnSegment():
		if _, ok := s.segments[w.Segment]; !ok {
			return fmt.Errorf("%w: %d", ErrUnknownSegment, w.Segment)
		}
		if w.T < 0 || w.T > 1 {
			return fmt.Errorf("%w: t=%v", ErrBadAttachment, w.T)
		}
	default:
		if _, ok := s.nodes[w.Node]; !ok {
			return fmt.Errorf("%w: %d", ErrUnknownNode, w.Node)
		}
	}
	return nil
}
