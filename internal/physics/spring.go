package physics

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
)

// spring adapts a cp damped spring to slack.Spring. A slack spring must
// transmit no force at all, so damping is dropped together with stiffness.
type spring struct {
	*cp.DampedSpring
	damping float64
}

func newSpring(a, b *cp.Body, rest, stiffness, damping float64) *spring {
	c := cp.NewDampedSpring(a, b, cp.Vector{}, cp.Vector{}, rest, stiffness, damping)
	c.SetCollideBodies(false)
	return &spring{
		DampedSpring: c.Class.(*cp.DampedSpring),
		damping:      damping,
	}
}

func (s *spring) SetStiffness(k float64) {
	s.Stiffness = k
	if k == 0 {
		s.Damping = 0
	} else {
		s.Damping = s.damping
	}
}

func (s *spring) SetRestLength(l float64) {
	s.RestLength = l
}

func toCP(v mgl64.Vec2) cp.Vector { return cp.Vector{X: v[0], Y: v[1]} }

func fromCP(v cp.Vector) mgl64.Vec2 { return mgl64.Vec2{v.X, v.Y} }
