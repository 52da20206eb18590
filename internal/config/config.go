package config

import (
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/strucsim/internal/joint"
	"github.com/san-kum/strucsim/internal/physics"
	"github.com/san-kum/strucsim/internal/sim"
	"github.com/san-kum/strucsim/internal/slack"
	"gopkg.in/yaml.v3"
)

const (
	DefaultStructure = "truss"
	DefaultDt        = 1.0 / 60
	DefaultDuration  = 5.0
	DefaultFPS       = 30
	DefaultStoreDir  = ".strucsim/runs"
)

type Config struct {
	// Structure is a preset name or a path to a structure YAML file.
	Structure   string  `yaml:"structure"`
	Dt          float64 `yaml:"dt"`
	Duration    float64 `yaml:"duration"`
	SampleEvery int     `yaml:"sample_every"`
	FPS         int     `yaml:"fps"`
	StoreDir    string  `yaml:"store_dir"`

	Canvas  CanvasConfig  `yaml:"canvas"`
	Physics PhysicsConfig `yaml:"physics"`
	Slack   slack.Config  `yaml:"slack"`
	Joint   joint.Config  `yaml:"joint"`
}

type CanvasConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type PhysicsConfig struct {
	Gravity               float64 `yaml:"gravity"`
	Iterations            int     `yaml:"iterations"`
	Substeps              int     `yaml:"substeps"`
	NodeRadius            float64 `yaml:"node_radius"`
	GroundWidthMultiplier float64 `yaml:"ground_width_multiplier"`
	GroundHeight          float64 `yaml:"ground_height"`
	WeightStiffness       float64 `yaml:"weight_stiffness"`
	WeightDamping         float64 `yaml:"weight_damping"`
}

func DefaultConfig() *Config {
	p := physics.DefaultConfig()
	return &Config{
		Structure:   DefaultStructure,
		Dt:          DefaultDt,
		Duration:    DefaultDuration,
		SampleEvery: 1,
		FPS:         DefaultFPS,
		StoreDir:    DefaultStoreDir,
		Canvas: CanvasConfig{
			Width:  physics.DefaultCanvasWidth,
			Height: physics.DefaultCanvasHeight,
		},
		Physics: PhysicsConfig{
			Gravity:               p.Gravity[1],
			Iterations:            p.Iterations,
			Substeps:              p.Substeps,
			NodeRadius:            p.NodeRadius,
			GroundWidthMultiplier: p.GroundWidthMultiplier,
			GroundHeight:          p.GroundHeight,
			WeightStiffness:       p.WeightStiffness,
			WeightDamping:         p.WeightDamping,
		},
		Slack: slack.DefaultConfig(),
		Joint: joint.DefaultConfig(),
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		Dt:            c.Dt,
		Duration:      c.Duration,
		SampleEvery:   c.SampleEvery,
		ValidateState: true,
	}
}

// PhysicsConfig builds the manager config. Fields not carried in the file
// keep the physics package defaults.
func (c *Config) PhysicsConfig() physics.Config {
	p := physics.DefaultConfig()
	p.Gravity = mgl64.Vec2{0, c.Physics.Gravity}
	p.Iterations = c.Physics.Iterations
	p.Substeps = c.Physics.Substeps
	p.NodeRadius = c.Physics.NodeRadius
	p.GroundWidthMultiplier = c.Physics.GroundWidthMultiplier
	p.GroundHeight = c.Physics.GroundHeight
	p.WeightStiffness = c.Physics.WeightStiffness
	p.WeightDamping = c.Physics.WeightDamping
	p.Canvas = physics.FixedCanvas(c.Canvas.Width, c.Canvas.Height)
	p.Slack = c.Slack
	return p
}
