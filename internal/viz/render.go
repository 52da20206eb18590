package viz

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/strucsim/internal/slack"
	"github.com/san-kum/strucsim/internal/structure"
)

// Scene is everything one frame draws.
type Scene struct {
	Structure *structure.Structure
	// Positions resolves live node positions; nil uses stored positions.
	Positions structure.PositionFunc
	Weights   func(structure.WeightID) (mgl64.Vec2, bool)
	States    map[structure.SegmentID]slack.State
	// Torque returns the indicator value in [0, 1] for a joint node.
	Torque     func(structure.NodeID) float64
	GroundY    float64
	NodeRadius float64
}

// Draw renders sc onto c. Slack segments are dashed; joints carry a ring
// whose radius grows with torque.
func Draw(c *Canvas, v Viewport, sc Scene) {
	c.Clear()
	pos := sc.Positions
	if pos == nil {
		pos = sc.Structure.StoredPositions()
	}

	if sc.GroundY > 0 {
		w, _ := c.Dots()
		_, gy := v.Project(mgl64.Vec2{0, sc.GroundY})
		c.DrawLine(0, gy, w-1, gy)
	}

	for _, seg := range sc.Structure.Segments() {
		pa, okA := pos(seg.A)
		pb, okB := pos(seg.B)
		if !okA || !okB {
			continue
		}
		x0, y0 := v.Project(pa)
		x1, y1 := v.Project(pb)
		if st, ok := sc.States[seg.ID]; ok && st.Slack {
			c.DrawDashed(x0, y0, x1, y1, 1, 2)
		} else {
			c.DrawLine(x0, y0, x1, y1)
		}
	}

	r := max(v.Length(sc.NodeRadius)/2, 1)
	for _, n := range sc.Structure.Nodes() {
		p, ok := pos(n.ID)
		if !ok {
			continue
		}
		x, y := v.Project(p)
		if n.Fixed {
			c.FillCircle(x, y, r)
		} else {
			c.DrawCircle(x, y, r)
		}
		if sc.Torque != nil {
			if t := sc.Torque(n.ID); t > 0.05 {
				c.DrawCircle(x, y, r+1+int(t*4))
			}
		}
	}

	for _, w := range sc.Structure.Weights() {
		var (
			p  mgl64.Vec2
			ok bool
		)
		if sc.Weights != nil {
			p, ok = sc.Weights(w.ID)
		}
		if !ok {
			anchor, err := sc.Structure.WeightAnchor(w)
			if err != nil {
				continue
			}
			p = anchor
		}
		x, y := v.Project(p)
		c.FillCircle(x, y, max(v.Length(w.Radius), 1))
	}
}
