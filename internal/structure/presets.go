package structure

import (
	"fmt"
	"sort"

	"github.com/san-kum/strucsim/internal/material"
)

func ptr[T any](v T) *T { return &v }

var Presets = map[string]Document{
	"cable-bridge": {
		Name: "cable-stayed deck between two towers",
		Nodes: []NodeSpec{
			{Pos: []float64{200, 400}, Fixed: true},
			{Pos: []float64{350, 400}, AngularStiffness: 0.4},
			{Pos: []float64{500, 400}, AngularStiffness: 0.4},
			{Pos: []float64{650, 400}, AngularStiffness: 0.4},
			{Pos: []float64{800, 400}, Fixed: true},
			{Pos: []float64{200, 250}, Fixed: true},
			{Pos: []float64{800, 250}, Fixed: true},
		},
		Segments: []SegmentSpec{
			{A: 0, B: 1, Material: material.Beam},
			{A: 1, B: 2, Material: material.Beam},
			{A: 2, B: 3, Material: material.Beam},
			{A: 3, B: 4, Material: material.Beam},
			{A: 5, B: 1, Material: material.Cable},
			{A: 5, B: 2, Material: material.Cable},
			{A: 6, B: 2, Material: material.Cable},
			{A: 6, B: 3, Material: material.Cable},
		},
		Weights: []WeightSpec{
			{Segment: ptr(1), T: 0.5, Mass: 8, Radius: 12},
		},
	},
	"truss": {
		Name: "warren truss on two supports",
		Nodes: []NodeSpec{
			{Pos: []float64{200, 450}, Fixed: true},
			{Pos: []float64{350, 450}, AngularStiffness: 0.6},
			{Pos: []float64{500, 450}, AngularStiffness: 0.6},
			{Pos: []float64{650, 450}, AngularStiffness: 0.6},
			{Pos: []float64{800, 450}, Fixed: true},
			{Pos: []float64{275, 350}, AngularStiffness: 0.6},
			{Pos: []float64{425, 350}, AngularStiffness: 0.6},
			{Pos: []float64{575, 350}, AngularStiffness: 0.6},
			{Pos: []float64{725, 350}, AngularStiffness: 0.6},
		},
		Segments: []SegmentSpec{
			{A: 0, B: 1, Material: material.Beam},
			{A: 1, B: 2, Material: material.Beam},
			{A: 2, B: 3, Material: material.Beam},
			{A: 3, B: 4, Material: material.Beam},
			{A: 5, B: 6, Material: material.Beam},
			{A: 6, B: 7, Material: material.Beam},
			{A: 7, B: 8, Material: material.Beam},
			{A: 0, B: 5, Material: material.Beam},
			{A: 5, B: 1, Material: material.Beam},
			{A: 1, B: 6, Material: material.Beam},
			{A: 6, B: 2, Material: material.Beam},
			{A: 2, B: 7, Material: material.Beam},
			{A: 7, B: 3, Material: material.Beam},
			{A: 3, B: 8, Material: material.Beam},
			{A: 8, B: 4, Material: material.Beam},
		},
		Weights: []WeightSpec{
			{Node: ptr(2), Mass: 12, Radius: 14},
		},
	},
	"crane": {
		Name: "jib crane with a backstay cable and a strut brace",
		Nodes: []NodeSpec{
			{Pos: []float64{300, 540}, Fixed: true},
			{Pos: []float64{300, 240}, AngularStiffness: 0.8},
			{Pos: []float64{600, 240}, AngularStiffness: 0.3},
			{Pos: []float64{300, 150}, AngularStiffness: 0.5},
			{Pos: []float64{180, 540}, Fixed: true},
			{Pos: []float64{420, 540}, Fixed: true},
		},
		Segments: []SegmentSpec{
			{A: 0, B: 1, Material: material.Beam},
			{A: 1, B: 2, Material: material.Beam},
			{A: 1, B: 3, Material: material.Beam},
			{A: 3, B: 2, Material: material.Cable},
			{A: 3, B: 4, Material: material.Cable},
			{A: 5, B: 1, Material: material.Strut},
		},
		Weights: []WeightSpec{
			{Node: ptr(2), Mass: 6, Radius: 10},
		},
	},
	"muscle-arm": {
		Name: "two-link arm lifted by a contracting muscle",
		Nodes: []NodeSpec{
			{Pos: []float64{400, 200}, Fixed: true},
			{Pos: []float64{400, 350}, AngularStiffness: 0.2},
			{Pos: []float64{550, 350}},
			{Pos: []float64{450, 200}, Fixed: true},
		},
		Segments: []SegmentSpec{
			{A: 0, B: 1, Material: material.Beam},
			{A: 1, B: 2, Material: material.Beam},
			{A: 3, B: 2, Material: material.Muscle},
		},
		Weights: []WeightSpec{
			{Node: ptr(2), Mass: 3, Radius: 8},
		},
	},
}

func Preset(name string) (*Structure, error) {
	doc, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown preset: %s (available: %v)", name, ListPresets())
	}
	return doc.Build()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
