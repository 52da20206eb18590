package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/strucsim/internal/joint"
	"github.com/san-kum/strucsim/internal/material"
	"github.com/san-kum/strucsim/internal/slack"
	"github.com/san-kum/strucsim/internal/structure"
	"github.com/san-kum/strucsim/internal/viz"
)

// Snapshot is a structure at one instant plus its derived overlays. Node
// positions are the structure's stored positions.
type Snapshot struct {
	Structure *structure.Structure
	States    map[structure.SegmentID]slack.State
	Joints    map[structure.NodeID]joint.Joint

	Width, Height float64
	GroundY       float64
	NodeRadius    float64
}

// StructureSVG writes s as a standalone SVG document. Segments are coloured
// by stress (or by material when no state is known), slack segments are
// dashed and each joint gets a halo sized by its peak normalized torque.
func StructureSVG(w io.Writer, s Snapshot) error {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, s.Width, s.Height, s.Width, s.Height))

	if s.GroundY > 0 {
		sb.WriteString(fmt.Sprintf(`<rect class="ground" x="0" y="%.1f" width="%.0f" height="%.1f" fill="#2a2a2a"/>
`, s.GroundY, s.Width, s.Height-s.GroundY))
	}

	pos := s.Structure.StoredPositions()

	sb.WriteString(`<g class="joints">` + "\n")
	for _, id := range joint.SortedNodes(s.Joints) {
		p, ok := pos(id)
		if !ok {
			continue
		}
		t := s.Joints[id].PeakTorque()
		if t <= 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s" fill-opacity="0.35"/>
`, p[0], p[1], s.NodeRadius*(1+2*t), viz.StressColor(t)))
	}
	sb.WriteString("</g>\n")

	sb.WriteString(`<g class="segments" stroke-width="3" stroke-linecap="round">` + "\n")
	for _, seg := range s.Structure.Segments() {
		pa, okA := pos(seg.A)
		pb, okB := pos(seg.B)
		if !okA || !okB {
			continue
		}

		stroke := material.Resolve(seg.Material).Color
		dash := ""
		if st, ok := s.States[seg.ID]; ok {
			stroke = string(viz.StressColor(st.Stress))
			if st.Slack {
				dash = ` stroke-dasharray="6 6"`
			}
		}
		sb.WriteString(fmt.Sprintf(`<line data-segment="%d" x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s"%s/>
`, seg.ID, pa[0], pa[1], pb[0], pb[1], stroke, dash))
	}
	sb.WriteString("</g>\n")

	sb.WriteString(`<g class="nodes">` + "\n")
	for _, n := range s.Structure.Nodes() {
		fill := "#ffffff"
		if n.Fixed {
			fill = "#888888"
		}
		sb.WriteString(fmt.Sprintf(`<circle data-node="%d" cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, n.ID, n.Pos[0], n.Pos[1], s.NodeRadius, fill))
	}
	sb.WriteString("</g>\n")

	sb.WriteString(`<g class="weights" fill="#ffcc00">` + "\n")
	for _, wt := range s.Structure.Weights() {
		p, err := s.Structure.WeightAnchor(wt)
		if err != nil {
			continue
		}
		sb.WriteString(fmt.Sprintf(`<circle data-weight="%d" cx="%.1f" cy="%.1f" r="%.1f"/>
`, wt.ID, p[0], p[1], wt.Radius))
	}
	sb.WriteString("</g>\n</svg>\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

// SeriesToSVG plots ys against xs as a single polyline. It returns "" for
// fewer than two points.
func SeriesToSVG(xs, ys []float64, width, height int, strokeColor string) string {
	n := min(len(xs), len(ys))
	if n < 2 {
		return ""
	}

	minX, maxX := xs[0], xs[0]
	minY, maxY := ys[0], ys[0]
	for i := 0; i < n; i++ {
		minX, maxX = min(minX, xs[i]), max(maxX, xs[i])
		minY, maxY = min(minY, ys[i]), max(maxY, ys[i])
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	for i := 0; i < n; i++ {
		x := (xs[i] - minX) / rangeX * float64(width)
		y := float64(height) - (ys[i]-minY)/rangeY*float64(height)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
