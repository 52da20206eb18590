package joint

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/strucsim/internal/geom"
)

// DefaultTorqueScale saturates the indicator at half a radian of deviation
// on a fully locked joint.
const DefaultTorqueScale = 10.0

type Config struct {
	TorqueScale float64 `yaml:"torque_scale"`
}

func DefaultConfig() Config {
	return Config{TorqueScale: DefaultTorqueScale}
}

// Angle is the unsigned angle at pivot between the directions to endA and
// endB, in [0, pi]. A coincident endpoint gives 0.
func Angle(pivot, endA, endB mgl64.Vec2) float64 {
	return geom.AngleBetween(endA.Sub(pivot), endB.Sub(pivot))
}

// Torque is linear in both the angular stiffness and the signed deviation.
func Torque(current, rest, stiffness float64) float64 {
	return stiffness * (current - rest)
}

func NormalizeTorque(torque, scale float64) float64 {
	return math.Min(math.Abs(torque)*scale, 1)
}

// LoadPathStress is the smaller of the two member stresses; a missing value
// counts as 0.
func LoadPathStress(a, b *float64) float64 {
	var sa, sb float64
	if a != nil {
		sa = *a
	}
	if b != nil {
		sb = *b
	}
	return math.Min(sa, sb)
}
