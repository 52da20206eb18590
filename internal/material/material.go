// Package material is the static table of per-material physics coefficients.
package material

import "sort"

type ID string

const (
	Beam   ID = "beam"
	Spring ID = "spring"
	Cable  ID = "cable"
	Muscle ID = "muscle"
	Strut  ID = "strut"

	// Default is used whenever an identifier is not in the table.
	Default = Beam
)

// Contraction describes active shortening. A zero Ratio means passive.
type Contraction struct {
	Ratio  float64 `yaml:"ratio" json:"ratio"`   // fraction of rest length lost at full contraction
	Period float64 `yaml:"period" json:"period"` // seconds per contract/relax cycle
}

func (c Contraction) Active() bool { return c.Ratio > 0 && c.Period > 0 }

type Material struct {
	ID              ID
	Name            string
	Stiffness       float64
	Damping         float64
	TensionOnly     bool
	CompressionOnly bool
	Contraction     Contraction
	Color           string
}

var table = map[ID]Material{
	Beam: {
		ID: Beam, Name: "beam",
		Stiffness: 1200, Damping: 6,
		Color: "#c8a165",
	},
	Spring: {
		ID: Spring, Name: "spring",
		Stiffness: 120, Damping: 1,
		Color: "#66ccff",
	},
	Cable: {
		ID: Cable, Name: "cable",
		Stiffness: 900, Damping: 4,
		TensionOnly: true,
		Color:       "#bbbbbb",
	},
	Muscle: {
		ID: Muscle, Name: "muscle",
		Stiffness: 500, Damping: 5,
		Contraction: Contraction{Ratio: 0.3, Period: 2.0},
		Color:       "#ff6688",
	},
	Strut: {
		ID: Strut, Name: "strut",
		Stiffness: 1000, Damping: 5,
		CompressionOnly: true,
		Color:           "#88dd88",
	},
}

func Lookup(id ID) (Material, bool) {
	m, ok := table[id]
	return m, ok
}

// Resolve never fails: unknown identifiers get the Default coefficients.
func Resolve(id ID) Material {
	if m, ok := table[id]; ok {
		return m
	}
	return table[Default]
}

func IDs() []ID {
	ids := make([]ID, 0, len(table))
	for id := range table {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func All() []Material {
	ids := IDs()
	out := make([]Material, len(ids))
	for i, id := range ids {
		out[i] = table[id]
	}
	return out
}
