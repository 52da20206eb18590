package metrics

import "github.com/san-kum/strucsim/internal/sim"

// Standard is the metric set attached to every CLI run.
func Standard() []sim.Metric {
	return []sim.Metric{
		NewPeakTorque(),
		NewSlackFraction(),
		NewPeakStrain(),
		NewOverload(1.0),
		NewMaxSag(),
	}
}
