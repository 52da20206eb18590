package structure

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/strucsim/internal/geom"
	"github.com/san-kum/strucsim/internal/material"
)

type Structure struct {
	// Grid snaps new node positions when positive.
	Grid float64

	nodes      map[NodeID]*Node
	segments   map[SegmentID]*Segment
	weights    map[WeightID]*Weight
	incident   map[NodeID][]SegmentID
	restAngles map[pairKey]float64

	nextNode    NodeID
	nextSegment SegmentID
	nextWeight  WeightID
}

func New() *Structure {
	return &Structure{
		nodes:      make(map[NodeID]*Node),
		segments:   make(map[SegmentID]*Segment),
		weights:    make(map[WeightID]*Weight),
		incident:   make(map[NodeID][]SegmentID),
		restAngles: make(map[pairKey]float64),
	}
}

type NodeOption func(*Node)

func Fixed() NodeOption { return func(n *Node) { n.Fixed = true } }

func WithMass(m float64) NodeOption {
	return func(n *Node) {
		if m > 0 {
			n.Mass = m
		}
	}
}

func WithAngularStiffness(k float64) NodeOption {
	return func(n *Node) { n.AngularStiffness = geom.Clamp(k, 0, 1) }
}

func (s *Structure) AddNode(pos mgl64.Vec2, opts ...NodeOption) NodeID {
	s.nextNode++
	n := &Node{
		ID:   s.nextNode,
		Pos:  geom.SnapToGrid(pos, s.Grid),
		Mass: DefaultNodeMass,
	}
	for _, opt := range opts {
		opt(n)
	}
	s.nodes[n.ID] = n
	return n.ID
}

func (s *Structure) Node(id NodeID) (Node, bool) {
	n, ok := s.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// Nodes returns copies of all nodes in ID order.
func (s *Structure) Nodes() []Node {
	out := make([]Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		out = append(out, *n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Structure) SetNodePosition(id NodeID, pos mgl64.Vec2) error {
	n, ok := s.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownNode, id)
	}
	n.Pos = pos
	return nil
}

func (s *Structure) SetAngularStiffness(id NodeID, k float64) error {
	n, ok := s.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownNode, id)
	}
	n.AngularStiffness = geom.Clamp(k, 0, 1)
	return nil
}

type segmentOverrides struct {
	stiffness, damping, restLength *float64
	tensionOnly, compressionOnly   *bool
	stress                         *float64
}

type SegmentOption func(*segmentOverrides)

func WithStiffness(k float64) SegmentOption {
	return func(o *segmentOverrides) { o.stiffness = &k }
}

func WithDamping(d float64) SegmentOption {
	return func(o *segmentOverrides) { o.damping = &d }
}

func WithRestLength(l float64) SegmentOption {
	return func(o *segmentOverrides) { o.restLength = &l }
}

func TensionOnly(v bool) SegmentOption {
	return func(o *segmentOverrides) { o.tensionOnly = &v }
}

func CompressionOnly(v bool) SegmentOption {
	return func(o *segmentOverrides) { o.compressionOnly = &v }
}

func WithStress(v float64) SegmentOption {
	return func(o *segmentOverrides) { o.stress = &v }
}

// AddSegment connects a and b. Coefficients come from the material table
// unless overridden; the rest length defaults to the current node distance.
func (s *Structure) AddSegment(a, b NodeID, mat material.ID, opts ...SegmentOption) (SegmentID, error) {
	na, ok := s.nodes[a]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownNode, a)
	}
	nb, ok := s.nodes[b]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownNode, b)
	}
	if a == b {
		return 0, ErrSelfLoop
	}
	for _, id := range s.incident[a] {
		if s.segments[id].Touches(b) {
			return 0, fmt.Errorf("%w: %d-%d", ErrDuplicateSegment, a, b)
		}
	}

	var o segmentOverrides
	for _, opt := range opts {
		opt(&o)
	}

	m := material.Resolve(mat)
	seg := &Segment{
		A:               a,
		B:               b,
		Material:        m.ID,
		Stiffness:       m.Stiffness,
		Damping:         m.Damping,
		RestLength:      geom.Distance(na.Pos, nb.Pos),
		TensionOnly:     m.TensionOnly,
		CompressionOnly: m.CompressionOnly,
		Stress:          o.stress,
	}
	if o.stiffness != nil && *o.stiffness > 0 {
		seg.Stiffness = *o.stiffness
	}
	if o.damping != nil && *o.damping >= 0 {
		seg.Damping = *o.damping
	}
	if o.restLength != nil && *o.restLength > 0 {
		seg.RestLength = *o.restLength
	}
	if o.tensionOnly != nil {
		seg.TensionOnly = *o.tensionOnly
		if seg.TensionOnly && o.compressionOnly == nil {
			seg.CompressionOnly = false
		}
	}
	if o.compressionOnly != nil {
		seg.CompressionOnly = *o.compressionOnly
		if seg.CompressionOnly && o.tensionOnly == nil {
			seg.TensionOnly = false
		}
	}
	if seg.TensionOnly && seg.CompressionOnly {
		return 0, ErrConflictingModes
	}

	s.nextSegment++
	seg.ID = s.nextSegment
	s.segments[seg.ID] = seg

	s.captureRestAngles(seg, a)
	s.captureRestAngles(seg, b)
	s.incident[a] = append(s.incident[a], seg.ID)
	s.incident[b] = append(s.incident[b], seg.ID)
	return seg.ID, nil
}

func (s *Structure) captureRestAngles(seg *Segment, at NodeID) {
	pivot := s.nodes[at].Pos
	far, _ := seg.Other(at)
	dir := s.nodes[far].Pos.Sub(pivot)
	for _, id := range s.incident[at] {
		other := s.segments[id]
		otherFar, _ := other.Other(at)
		otherDir := s.nodes[otherFar].Pos.Sub(pivot)
		s.restAngles[makePairKey(at, seg.ID, id)] = geom.AngleBetween(dir, otherDir)
	}
}

func (s *Structure) Segment(id SegmentID) (Segment, bool) {
	seg, ok := s.segments[id]
	if !ok {
		return Segment{}, false
	}
	return *seg, true
}

// Segments returns copies of all segments in ID order.
func (s *Structure) Segments() []Segment {
	out := make([]Segment, 0, len(s.segments))
	for _, seg := range s.segments {
		out = append(out, *seg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SegmentsAt lists the segments incident to n in creation order.
func (s *Structure) SegmentsAt(n NodeID) []SegmentID {
	ids := s.incident[n]
	out := make([]SegmentID, len(ids))
	copy(out, ids)
	return out
}

// RestAngle is the design-time angle between a and b at node n.
func (s *Structure) RestAngle(n NodeID, a, b SegmentID) (float64, bool) {
	v, ok := s.restAngles[makePairKey(n, a, b)]
	return v, ok
}

// setRestAngle overrides an angle captured by AddSegment. Only pairs that
// already meet at n can be set.
func (s *Structure) setRestAngle(n NodeID, a, b SegmentID, angle float64) error {
	key := makePairKey(n, a, b)
	if _, ok := s.restAngles[key]; !ok {
		return fmt.Errorf("%w: segments %d and %d do not meet at node %d", ErrUnknownSegment, a, b, n)
	}
	s.restAngles[key] = angle
	return nil
}

func (s *Structure) SetSegmentStress(id SegmentID, v float64) error {
	seg, ok := s.segments[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownSegment, id)
	}
	seg.Stress = &v
	return nil
}

func (s *Structure) ClearSegmentStress(id SegmentID) {
	if seg, ok := s.segments[id]; ok {
		seg.Stress = nil
	}
}

// SegmentLength is the distance between the stored endpoint positions.
func (s *Structure) SegmentLength(id SegmentID) (float64, error) {
	seg, ok := s.segments[id]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownSegment, id)
	}
	return geom.Distance(s.nodes[seg.A].Pos, s.nodes[seg.B].Pos), nil
}

func (s *Structure) RemoveSegment(id SegmentID) error {
	seg, ok := s.segments[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownSegment, id)
	}
	for _, n := range []NodeID{seg.A, seg.B} {
		s.incident[n] = without(s.incident[n], id)
		for _, other := range s.incident[n] {
			delete(s.restAngles, makePairKey(n, id, other))
		}
	}
	for wid, w := range s.weights {
		if w.Segment == id {
			delete(s.weights, wid)
		}
	}
	delete(s.segments, id)
	return nil
}

// RemoveNode deletes n together with its segments and any weight hanging
// from it or from those segments.
func (s *Structure) RemoveNode(id NodeID) error {
	if _, ok := s.nodes[id]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownNode, id)
	}
	for _, seg := range s.SegmentsAt(id) {
		if err := s.RemoveSegment(seg); err != nil {
			return err
		}
	}
	for wid, w := range s.weights {
		if w.Node == id {
			delete(s.weights, wid)
		}
	}
	delete(s.incident, id)
	delete(s.nodes, id)
	return nil
}

func without(ids []SegmentID, drop SegmentID) []SegmentID {
	out := ids[:0]
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}

// Bounds is the axis-aligned box around all nodes.
func (s *Structure) Bounds() (lo, hi mgl64.Vec2) {
	first := true
	for _, n := range s.nodes {
		if first {
			lo, hi = n.Pos, n.Pos
			first = false
			continue
		}
		for i := 0; i < 2; i++ {
			if n.Pos[i] < lo[i] {
				lo[i] = n.Pos[i]
			}
			if n.Pos[i] > hi[i] {
				hi[i] = n.Pos[i]
			}
		}
	}
	return lo, hi
}

// Validate checks references and segment mode exclusivity.
func (s *Structure) Validate() error {
	for _, seg := range s.Segments() {
		if _, ok := s.nodes[seg.A]; !ok {
			return fmt.Errorf("segment %d: %w: %d", seg.ID, ErrUnknownNode, seg.A)
		}
		if _, ok := s.nodes[seg.B]; !ok {
			return fmt.Errorf("segment %d: %w: %d", seg.ID, ErrUnknownNode, seg.B)
		}
		if seg.TensionOnly && seg.CompressionOnly {
			return fmt.Errorf("segment %d: %w", seg.ID, ErrConflictingModes)
		}
	}
	for _, w := range s.Weights() {
		if err := s.checkAttachment(w); err != nil {
			return fmt.Errorf("weight %d: %w", w.ID, err)
		}
	}
	return nil
}

// StoredPositions resolves nodes to their stored (design or last synced)
// positions.
func (s *Structure) StoredPositions() PositionFunc {
	return func(id NodeID) (mgl64.Vec2, bool) {
		n, ok := s.nodes[id]
		if !ok {
			return mgl64.Vec2{}, false
		}
		return n.Pos, true
	}
}
