package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Epsilon below which a length is treated as zero.
const Epsilon = 1e-9

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func Lerp(a, b mgl64.Vec2, t float64) mgl64.Vec2 {
	return a.Add(b.Sub(a).Mul(t))
}

func Distance(a, b mgl64.Vec2) float64 {
	return b.Sub(a).Len()
}

// ProjectOntoSegment returns the parameter t in [0,1] of the point on ab
// closest to p, along with that point. A degenerate segment projects to a.
func ProjectOntoSegment(p, a, b mgl64.Vec2) (float64, mgl64.Vec2) {
	ab := b.Sub(a)
	lenSq := ab.LenSqr()
	if lenSq < Epsilon {
		return 0, a
	}
	t := Clamp(p.Sub(a).Dot(ab)/lenSq, 0, 1)
	return t, a.Add(ab.Mul(t))
}

func DistanceToSegment(p, a, b mgl64.Vec2) float64 {
	_, closest := ProjectOntoSegment(p, a, b)
	return Distance(p, closest)
}

// SnapToGrid rounds both coordinates to the nearest multiple of size.
func SnapToGrid(p mgl64.Vec2, size float64) mgl64.Vec2 {
	if size <= 0 {
		return p
	}
	return mgl64.Vec2{
		math.Round(p[0]/size) * size,
		math.Round(p[1]/size) * size,
	}
}

// Direction returns the unit vector from -> to. The second result is false
// (with a zero vector) when the points coincide.
func Direction(from, to mgl64.Vec2) (mgl64.Vec2, bool) {
	d := to.Sub(from)
	l := d.Len()
	if l < Epsilon {
		return mgl64.Vec2{}, false
	}
	return d.Mul(1 / l), true
}

// AngleBetween is the unsigned angle between u and v in [0, pi].
func AngleBetween(u, v mgl64.Vec2) float64 {
	lu, lv := u.Len(), v.Len()
	if lu < Epsilon || lv < Epsilon {
		return 0
	}
	cos := u.Dot(v) / (lu * lv)
	// acos is undefined just outside [-1,1] from rounding
	return math.Acos(Clamp(cos, -1, 1))
}
