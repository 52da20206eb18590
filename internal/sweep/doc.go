// Package sweep runs a structure many times with one quantity varied.
//
// A [Sweep] steps a named parameter (gravity, slack tolerance, load
// scale and the others in [Params]) across a range and reports the
// standard metrics per value. [Best] picks the winning value for one
// metric. [MonteCarlo] instead jitters the free nodes of the structure
// and counts how many runs stay finite.
//
// Sweeps can be written as YAML:
//
//	name: bridge-tolerance
//	structure: cable-bridge
//	param: tolerance
//	min: 0.001
//	max: 0.02
//	steps: 8
//	metric: slack_fraction
package sweep
