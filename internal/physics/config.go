package physics

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/strucsim/internal/slack"
)

const (
	CategoryGround uint = 1 << iota
	CategoryNode
	CategoryWeight
)

const (
	DefaultCanvasWidth  = 1000.0
	DefaultCanvasHeight = 600.0
)

type Config struct {
	// Gravity in world units per second squared; +y points down the canvas.
	Gravity mgl64.Vec2
	// Iterations is the solver iteration count, well above cp's default of 10
	// so heavy weights hang without sagging through their springs.
	Iterations int
	// Substeps splits every Advance into smaller integration steps, each
	// preceded by its own slack pass.
	Substeps int

	NodeRadius            float64
	NodeFriction          float64
	GroundWidthMultiplier float64
	GroundHeight          float64
	GroundFriction        float64

	// WeightStiffness and WeightDamping configure the springs that hang
	// weights from nodes and segments.
	WeightStiffness float64
	WeightDamping   float64

	// Canvas reports the current canvas size; the ground is laid along its
	// bottom edge.
	Canvas func() (width, height float64)

	Slack slack.Config
}

func DefaultConfig() Config {
	return Config{
		Gravity:               mgl64.Vec2{0, 980},
		Iterations:            30,
		Substeps:              4,
		NodeRadius:            8,
		NodeFriction:          0.8,
		GroundWidthMultiplier: 3,
		GroundHeight:          40,
		GroundFriction:        0.9,
		WeightStiffness:       1500,
		WeightDamping:         8,
		Canvas:                FixedCanvas(DefaultCanvasWidth, DefaultCanvasHeight),
		Slack:                 slack.DefaultConfig(),
	}
}

func FixedCanvas(w, h float64) func() (float64, float64) {
	return func() (float64, float64) { return w, h }
}

// CanvasSize is a canvas that can be resized while the manager runs. Pass
// its Size method as Config.Canvas and call UpdateGroundPosition after
// Resize.
type CanvasSize struct {
	mu   sync.RWMutex
	w, h float64
}

func NewCanvasSize(w, h float64) *CanvasSize {
	return &CanvasSize{w: w, h: h}
}

func (c *CanvasSize) Size() (float64, float64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.w, c.h
}

func (c *CanvasSize) Resize(w, h float64) {
	c.mu.Lock()
	c.w, c.h = w, h
	c.mu.Unlock()
}
