package structure

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/strucsim/internal/material"
	"gopkg.in/yaml.v3"
)

// Document is the YAML scenario layout. Segments refer to nodes, and
// weights to nodes or segments, by their zero-based position in the file.
type Document struct {
	Name     string        `yaml:"name,omitempty"`
	Grid     float64       `yaml:"grid,omitempty"`
	Nodes    []NodeSpec    `yaml:"nodes"`
	Segments []SegmentSpec `yaml:"segments"`
	Weights  []WeightSpec  `yaml:"weights,omitempty"`
	// RestAngles pins design-time angles. Pairs not listed are captured
	// from the node positions above.
	RestAngles []RestAngleSpec `yaml:"rest_angles,omitempty"`
}

type NodeSpec struct {
	Pos              []float64 `yaml:"pos,flow"`
	Fixed            bool      `yaml:"fixed,omitempty"`
	Mass             float64   `yaml:"mass,omitempty"`
	AngularStiffness float64   `yaml:"angular_stiffness,omitempty"`
}

type SegmentSpec struct {
	A               int         `yaml:"a"`
	B               int         `yaml:"b"`
	Material        material.ID `yaml:"material"`
	Stiffness       *float64    `yaml:"stiffness,omitempty"`
	Damping         *float64    `yaml:"damping,omitempty"`
	RestLength      *float64    `yaml:"rest_length,omitempty"`
	TensionOnly     *bool       `yaml:"tension_only,omitempty"`
	CompressionOnly *bool       `yaml:"compression_only,omitempty"`
	Stress          *float64    `yaml:"stress,omitempty"`
}

// RestAngleSpec is the rest angle at Node between segments A and B, all by
// file index.
type RestAngleSpec struct {
	Node  int     `yaml:"node"`
	A     int     `yaml:"a"`
	B     int     `yaml:"b"`
	Angle float64 `yaml:"angle"`
}

type WeightSpec struct {
	Node    *int    `yaml:"node,omitempty"`
	Segment *int    `yaml:"segment,omitempty"`
	T       float64 `yaml:"t,omitempty"`
	Mass    float64 `yaml:"mass"`
	Radius  float64 `yaml:"radius"`
}

func Load(path string) (*Structure, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Structure, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc.Build()
}

func Save(path string, s *Structure) error {
	data, err := yaml.Marshal(Encode(s))
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Build replays the document through the Add* operations so that rest
// angles are captured exactly as for interactive edits.
func (d Document) Build() (*Structure, error) {
	s := New()
	s.Grid = d.Grid

	nodes := make([]NodeID, len(d.Nodes))
	for i, ns := range d.Nodes {
		if len(ns.Pos) != 2 {
			return nil, fmt.Errorf("node %d: pos needs 2 coordinates, got %d", i, len(ns.Pos))
		}
		opts := []NodeOption{WithMass(ns.Mass), WithAngularStiffness(ns.AngularStiffness)}
		if ns.Fixed {
			opts = append(opts, Fixed())
		}
		nodes[i] = s.AddNode(mgl64.Vec2{ns.Pos[0], ns.Pos[1]}, opts...)
	}

	nodeAt := func(i int) (NodeID, error) {
		if i < 0 || i >= len(nodes) {
			return 0, fmt.Errorf("%w: index %d", ErrUnknownNode, i)
		}
		return nodes[i], nil
	}

	segments := make([]SegmentID, len(d.Segments))
	for i, ss := range d.Segments {
		a, err := nodeAt(ss.A)
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
		b, err := nodeAt(ss.B)
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
		var opts []SegmentOption
		if ss.Stiffness != nil {
			opts = append(opts, WithStiffness(*ss.Stiffness))
		}
		if ss.Damping != nil {
			opts = append(opts, WithDamping(*ss.Damping))
		}
		if ss.RestLength != nil {
			opts = append(opts, WithRestLength(*ss.RestLength))
		}
		if ss.TensionOnly != nil {
			opts = append(opts, TensionOnly(*ss.TensionOnly))
		}
		if ss.CompressionOnly != nil {
			opts = append(opts, CompressionOnly(*ss.CompressionOnly))
		}
		if ss.Stress != nil {
			opts = append(opts, WithStress(*ss.Stress))
		}
		id, err := s.AddSegment(a, b, ss.Material, opts...)
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
		segments[i] = id
	}

	for i, ra := range d.RestAngles {
		if ra.A < 0 || ra.A >= len(segments) || ra.B < 0 || ra.B >= len(segments) {
			return nil, fmt.Errorf("rest angle %d: %w: index %d/%d", i, ErrUnknownSegment, ra.A, ra.B)
		}
		n, err := nodeAt(ra.Node)
		if err != nil {
			return nil, fmt.Errorf("rest angle %d: %w", i, err)
		}
		if err := s.setRestAngle(n, segments[ra.A], segments[ra.B], ra.Angle); err != nil {
			return nil, fmt.Errorf("rest angle %d: %w", i, err)
		}
	}

	for i, ws := range d.Weights {
		var err error
		switch {
		case ws.Node != nil && ws.Segment == nil:
			var n NodeID
			if n, err = nodeAt(*ws.Node); err == nil {
				_, err = s.AttachWeightToNode(n, ws.Mass, ws.Radius)
			}
		case ws.Segment != nil && ws.Node == nil:
			if *ws.Segment < 0 || *ws.Segment >= len(segments) {
				err = fmt.Errorf("%w: index %d", ErrUnknownSegment, *ws.Segment)
			} else {
				_, err = s.AttachWeightToSegment(segments[*ws.Segment], ws.T, ws.Mass, ws.Radius)
			}
		default:
			err = ErrBadAttachment
		}
		if err != nil {
			return nil, fmt.Errorf("weight %d: %w", i, err)
		}
	}
	return s, nil
}

// Encode writes s back into the file layout. Node positions are the stored
// ones, so a stopped simulation saves its settled shape; rest angles are
// written out so that rebuilding does not capture them from that shape.
func Encode(s *Structure) Document {
	doc := Document{Grid: s.Grid}

	nodeIndex := make(map[NodeID]int)
	for i, n := range s.Nodes() {
		nodeIndex[n.ID] = i
		doc.Nodes = append(doc.Nodes, NodeSpec{
			Pos:              []float64{n.Pos[0], n.Pos[1]},
			Fixed:            n.Fixed,
			Mass:             n.Mass,
			AngularStiffness: n.AngularStiffness,
		})
	}

	segIndex := make(map[SegmentID]int)
	for i, seg := range s.Segments() {
		segIndex[seg.ID] = i
		stiffness, damping, rest := seg.Stiffness, seg.Damping, seg.RestLength
		tensionOnly, compressionOnly := seg.TensionOnly, seg.CompressionOnly
		doc.Segments = append(doc.Segments, SegmentSpec{
			A:               nodeIndex[seg.A],
			B:               nodeIndex[seg.B],
			Material:        seg.Material,
			Stiffness:       &stiffness,
			Damping:         &damping,
			RestLength:      &rest,
			TensionOnly:     &tensionOnly,
			CompressionOnly: &compressionOnly,
			Stress:          seg.Stress,
		})
	}

	for _, w := range s.Weights() {
		ws := WeightSpec{Mass: w.Mass, Radius: w.Radius}
		if w.OnSegment() {
			idx := segIndex[w.Segment]
			ws.Segment = &idx
			ws.T = w.T
		} else {
			idx := nodeIndex[w.Node]
			ws.Node = &idx
		}
		doc.Weights = append(doc.Weights, ws)
	}

	for _, n := range s.Nodes() {
		ids := s.SegmentsAt(n.ID)
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				angle, ok := s.RestAngle(n.ID, ids[i], ids[j])
				if !ok {
					continue
				}
				doc.RestAngles = append(doc.RestAngles, RestAngleSpec{
					Node:  nodeIndex[n.ID],
					A:     segIndex[ids[i]],
					B:     segIndex[ids[j]],
					Angle: angle,
				})
			}
		}
	}
	return doc
}
