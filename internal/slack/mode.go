package slack

import "math"

const (
	DefaultToleranceRatio = 0.005
	// DefaultStressScale maps 5% strain to full stress.
	DefaultStressScale = 20.0
	DefaultMinChunk    = 256
)

type Config struct {
	ToleranceRatio float64 `yaml:"tolerance_ratio"`
	StressScale    float64 `yaml:"stress_scale"`
	// MinChunk is the smallest number of members handed to one goroutine.
	MinChunk int `yaml:"min_chunk"`
}

func DefaultConfig() Config {
	return Config{
		ToleranceRatio: DefaultToleranceRatio,
		StressScale:    DefaultStressScale,
		MinChunk:       DefaultMinChunk,
	}
}

type Deformation int

const (
	Neutral Deformation = iota
	Tension
	Compression
)

func (d Deformation) String() string {
	switch d {
	case Tension:
		return "tension"
	case Compression:
		return "compression"
	}
	return "neutral"
}

func Tolerance(rest, ratio float64) float64 {
	return rest * ratio
}

// Classify compares current against rest with a symmetric band. Lengths
// exactly on the band edge are Neutral.
func Classify(rest, current, ratio float64) Deformation {
	tol := Tolerance(rest, ratio)
	switch {
	case current > rest+tol:
		return Tension
	case current < rest-tol:
		return Compression
	}
	return Neutral
}

// IsSlack reports whether a one-way member in state d transmits no force.
func IsSlack(tensionOnly, compressionOnly bool, d Deformation) bool {
	switch {
	case tensionOnly:
		return d == Compression
	case compressionOnly:
		return d == Tension
	}
	return false
}

// Strain is the signed relative elongation. A non-positive rest length has
// no meaningful strain and yields 0.
func Strain(rest, current float64) float64 {
	if rest <= 0 {
		return 0
	}
	return (current - rest) / rest
}

// Stress maps strain to [0,1]. Slack members carry none.
func Stress(strain, scale float64, slack bool) float64 {
	if slack {
		return 0
	}
	return math.Min(math.Abs(strain)*scale, 1)
}

// ContractedLength is the rest length of an active member at time t. It
// follows a raised cosine between rest and rest*(1-ratio).
func ContractedLength(rest, ratio, period, t float64) float64 {
	if ratio <= 0 || period <= 0 {
		return rest
	}
	phase := (1 - math.Cos(2*math.Pi*t/period)) / 2
	return rest * (1 - ratio*phase)
}
