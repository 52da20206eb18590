package metrics

import (
	"math"

	"github.com/san-kum/strucsim/internal/sim"
)

// PeakStrain is the largest absolute strain of any segment in any frame.
type PeakStrain struct {
	name string
	peak float64
}

func NewPeakStrain() *PeakStrain {
	return &PeakStrain{name: "peak_strain"}
}

func (p *PeakStrain) Name() string { return p.name }

func (p *PeakStrain) Observe(f *sim.Frame) {
	for _, e := range f.Strain {
		if a := math.Abs(e); a > p.peak {
			p.peak = a
		}
	}
}

func (p *PeakStrain) Value() float64 { return p.peak }

func (p *PeakStrain) Reset() { p.peak = 0 }

// Overload is the fraction of frames in which no segment reaches the stress
// threshold, 1 meaning the structure never saturated.
type Overload struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewOverload(threshold float64) *Overload {
	return &Overload{
		name:      "overload_free",
		threshold: threshold,
	}
}

func (o *Overload) Name() string { return o.name }

func (o *Overload) Observe(f *sim.Frame) {
	o.samples++
	for _, s := range f.Stress {
		if s >= o.threshold {
			o.violations++
			break
		}
	}
}

func (o *Overload) Value() float64 {
	if o.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(o.violations)/float64(o.samples)
}

func (o *Overload) Reset() {
	o.violations = 0
	o.samples = 0
}
