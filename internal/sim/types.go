package sim

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/strucsim/internal/slack"
	"github.com/san-kum/strucsim/internal/structure"
)

// Frame is one sample of a running structure. Node slices follow
// Result.Nodes and segment slices follow Result.Segments.
type Frame struct {
	Step int
	Time float64

	Positions []mgl64.Vec2

	Lengths []float64
	Strain  []float64
	Stress  []float64
	Slack   []bool

	PeakNode   structure.NodeID
	PeakTorque float64
	Stats      slack.Stats
}

// Valid reports whether every node position is finite.
func (f *Frame) Valid() bool {
	for _, p := range f.Positions {
		for _, v := range p {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

func (f *Frame) SlackCount() int {
	n := 0
	for _, s := range f.Slack {
		if s {
			n++
		}
	}
	return n
}

type Metric interface {
	Name() string
	Observe(f *Frame)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(f *Frame)
}

type Config struct {
	Dt       float64
	Duration float64
	// SampleEvery keeps one frame in the result per this many steps; the
	// first and last frames are always kept.
	SampleEvery   int
	ValidateState bool
}

type Result struct {
	Nodes    []structure.NodeID
	Segments []structure.SegmentID
	Frames   []Frame
	Metrics  map[string]float64

	StepsTaken int
	Errors     []error
}

// Final is the last recorded frame, or nil for an empty result.
func (r *Result) Final() *Frame {
	if len(r.Frames) == 0 {
		return nil
	}
	return &r.Frames[len(r.Frames)-1]
}

// Times lists the frame timestamps.
func (r *Result) Times() []float64 {
	out := make([]float64, len(r.Frames))
	for i := range r.Frames {
		out[i] = r.Frames[i].Time
	}
	return out
}

// Series extracts one value per frame.
func (r *Result) Series(fn func(*Frame) float64) []float64 {
	out := make([]float64, len(r.Frames))
	for i := range r.Frames {
		out[i] = fn(&r.Frames[i])
	}
	return out
}

func DefaultConfig() Config {
	return Config{
		Dt:            1.0 / 60,
		Duration:      5,
		SampleEvery:   1,
		ValidateState: true,
	}
}
