package metrics

import "github.com/san-kum/strucsim/internal/sim"

// PeakTorque is the largest normalized joint torque seen in any frame.
type PeakTorque struct {
	name string
	peak float64
}

func NewPeakTorque() *PeakTorque {
	return &PeakTorque{name: "peak_torque"}
}

func (p *PeakTorque) Name() string { return p.name }

func (p *PeakTorque) Observe(f *sim.Frame) {
	if f.PeakTorque > p.peak {
		p.peak = f.PeakTorque
	}
}

func (p *PeakTorque) Value() float64 { return p.peak }

func (p *PeakTorque) Reset() { p.peak = 0 }
