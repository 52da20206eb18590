package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/strucsim/internal/joint"
	"github.com/san-kum/strucsim/internal/material"
	"github.com/san-kum/strucsim/internal/slack"
	"github.com/san-kum/strucsim/internal/structure"
)

func TestStructureSVG(t *testing.T) {
	s := structure.New()
	a := s.AddNode(mgl64.Vec2{100, 100}, structure.Fixed())
	b := s.AddNode(mgl64.Vec2{200, 100})
	c := s.AddNode(mgl64.Vec2{200, 200})
	taut, err := s.AddSegment(a, b, material.Beam)
	if err != nil {
		t.Fatal(err)
	}
	loose, err := s.AddSegment(b, c, material.Cable)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.AttachWeightToNode(c, 5, 10); err != nil {
		t.Fatal(err)
	}

	snap := Snapshot{
		Structure: s,
		States: map[structure.SegmentID]slack.State{
			taut:  {Stress: 0.5},
			loose: {Slack: true},
		},
		Joints:     joint.NewEngine(joint.DefaultConfig()).Compute(s, nil, nil),
		Width:      400,
		Height:     300,
		GroundY:    260,
		NodeRadius: 6,
	}

	var buf bytes.Buffer
	if err := StructureSVG(&buf, snap); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	out := buf.String()

	if !strings.HasPrefix(out, "<?xml") || !strings.HasSuffix(out, "</svg>\n") {
		t.Error("output is not a complete SVG document")
	}
	if got := strings.Count(out, "<line "); got != 2 {
		t.Errorf("expected 2 segment lines, got %d", got)
	}
	if got := strings.Count(out, "stroke-dasharray"); got != 1 {
		t.Errorf("expected 1 dashed segment, got %d", got)
	}
	if got := strings.Count(out, "data-node="); got != 3 {
		t.Errorf("expected 3 nodes, got %d", got)
	}
	if !strings.Contains(out, `data-weight="1"`) {
		t.Error("weight missing")
	}
	if !strings.Contains(out, `class="ground"`) {
		t.Error("ground missing")
	}
}

func TestStructureSVGMaterialColors(t *testing.T) {
	s := structure.New()
	a := s.AddNode(mgl64.Vec2{0, 0})
	b := s.AddNode(mgl64.Vec2{50, 0})
	if _, err := s.AddSegment(a, b, material.Muscle); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := StructureSVG(&buf, Snapshot{Structure: s, Width: 100, Height: 100}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), material.Resolve(material.Muscle).Color) {
		t.Error("segment without state should use its material color")
	}
}

func TestSeriesToSVG(t *testing.T) {
	if SeriesToSVG([]float64{0}, []float64{1}, 100, 50, "#fff") != "" {
		t.Error("expected empty output for a single point")
	}

	out := SeriesToSVG([]float64{0, 1, 2}, []float64{0, 1, 0}, 100, 50, "#00ff00")
	if !strings.Contains(out, `stroke="#00ff00"`) {
		t.Error("stroke color missing")
	}
	if got := strings.Count(out, " L"); got != 2 {
		t.Errorf("expected 2 line segments, got %d", got)
	}
}
