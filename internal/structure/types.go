package structure

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/strucsim/internal/material"
)

type (
	NodeID    int
	SegmentID int
	WeightID  int
)

const (
	DefaultNodeMass     = 2.0
	DefaultWeightMass   = 5.0
	DefaultWeightRadius = 10.0
)

type Node struct {
	ID    NodeID
	Pos   mgl64.Vec2
	Fixed bool
	Mass  float64
	// AngularStiffness is 0 for a free hinge and 1 for a fully locked joint.
	AngularStiffness float64
}

type Segment struct {
	ID              SegmentID
	A, B            NodeID
	Material        material.ID
	Stiffness       float64
	Damping         float64
	RestLength      float64
	TensionOnly     bool
	CompressionOnly bool
	// Stress is an optional externally supplied load value in [0,1].
	Stress *float64
}

// Other returns the endpoint of s that is not n.
func (s Segment) Other(n NodeID) (NodeID, bool) {
	switch n {
	case s.A:
		return s.B, true
	case s.B:
		return s.A, true
	}
	return 0, false
}

func (s Segment) Touches(n NodeID) bool { return s.A == n || s.B == n }

// Weight hangs from exactly one of Node or Segment. T is the position along
// the segment from A (0) to B (1) and is ignored for node weights.
type Weight struct {
	ID      WeightID
	Mass    float64
	Radius  float64
	Node    NodeID
	Segment SegmentID
	T       float64
}

func (w Weight) OnSegment() bool { return w.Segment != 0 }

type pairKey struct {
	node   NodeID
	lo, hi SegmentID
}

func makePairKey(n NodeID, a, b SegmentID) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{node: n, lo: a, hi: b}
}

// PositionFunc resolves a node to a position. false means the node cannot
// be resolved right now.
type PositionFunc func(NodeID) (mgl64.Vec2, bool)
