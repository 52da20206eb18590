package metrics

import "github.com/san-kum/strucsim/internal/sim"

// MaxSag is the largest downward displacement (+y) of any node relative to
// its position in the first observed frame.
type MaxSag struct {
	name     string
	baseline []float64
	sag      float64
}

func NewMaxSag() *MaxSag {
	return &MaxSag{name: "max_sag"}
}

func (m *MaxSag) Name() string { return m.name }

func (m *MaxSag) Observe(f *sim.Frame) {
	if m.baseline == nil {
		m.baseline = make([]float64, len(f.Positions))
		for i, p := range f.Positions {
			m.baseline[i] = p[1]
		}
		return
	}
	for i, p := range f.Positions {
		if i >= len(m.baseline) {
			break
		}
		if d := p[1] - m.baseline[i]; d > m.sag {
			m.sag = d
		}
	}
}

func (m *MaxSag) Value() float64 { return m.sag }

func (m *MaxSag) Reset() {
	m.baseline = nil
	m.sag = 0
}
