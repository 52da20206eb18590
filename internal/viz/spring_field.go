package viz

import (
	"github.com/charmbracelet/harmonica"
	"github.com/san-kum/strucsim/internal/structure"
)

// springField eases per-joint torque indicators toward their latest value so
// the overlay does not flicker at render rate.
type springField struct {
	spring harmonica.Spring
	pos    map[structure.NodeID]float64
	vel    map[structure.NodeID]float64
}

func newSpringField(fps int, frequency, damping float64) *springField {
	return &springField{
		spring: harmonica.NewSpring(harmonica.FPS(fps), frequency, damping),
		pos:    make(map[structure.NodeID]float64),
		vel:    make(map[structure.NodeID]float64),
	}
}

func (s *springField) step(id structure.NodeID, target float64) float64 {
	p, v := s.spring.Update(s.pos[id], s.vel[id], target)
	s.pos[id] = p
	s.vel[id] = v
	return p
}

func (s *springField) value(id structure.NodeID) float64 { return s.pos[id] }

func (s *springField) reset() {
	s.pos = make(map[structure.NodeID]float64)
	s.vel = make(map[structure.NodeID]float64)
}
