package sweep

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"sync"

	"github.com/san-kum/strucsim/internal/config"
	"github.com/san-kum/strucsim/internal/sim"
	"github.com/san-kum/strucsim/internal/structure"
	"gopkg.in/yaml.v3"
)

var ErrInvalidSweep = errors.New("invalid sweep")

// Param applies one swept value to a copy of the run config and structure
// document.
type Param func(cfg *config.Config, doc *structure.Document, v float64)

// Params are the sweepable quantities by name.
var Params = map[string]Param{
	"gravity": func(c *config.Config, _ *structure.Document, v float64) {
		c.Physics.Gravity = v
	},
	"tolerance": func(c *config.Config, _ *structure.Document, v float64) {
		c.Slack.ToleranceRatio = v
	},
	"weight_stiffness": func(c *config.Config, _ *structure.Document, v float64) {
		c.Physics.WeightStiffness = v
	},
	"weight_damping": func(c *config.Config, _ *structure.Document, v float64) {
		c.Physics.WeightDamping = v
	},
	"substeps": func(c *config.Config, _ *structure.Document, v float64) {
		c.Physics.Substeps = int(math.Round(v))
	},
	"load_scale": func(_ *config.Config, d *structure.Document, v float64) {
		for i := range d.Weights {
			d.Weights[i].Mass *= v
		}
	},
	"angular_stiffness": func(_ *config.Config, d *structure.Document, v float64) {
		for i := range d.Nodes {
			d.Nodes[i].AngularStiffness = v
		}
	},
}

func ListParams() []string {
	names := make([]string, 0, len(Params))
	for name := range Params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Sweep runs one structure across evenly spaced values of a parameter.
type Sweep struct {
	Name      string  `yaml:"name"`
	Structure string  `yaml:"structure"`
	Param     string  `yaml:"param"`
	Min       float64 `yaml:"min"`
	Max       float64 `yaml:"max"`
	Steps     int     `yaml:"steps"`
	// Metric ranks the points; empty keeps input order only.
	Metric   string `yaml:"metric,omitempty"`
	Maximize bool   `yaml:"maximize,omitempty"`
}

// Point is the outcome of one swept value.
type Point struct {
	Value      float64
	Metrics    map[string]float64
	StepsTaken int
}

// Builder returns a fresh simulator for a run config.
type Builder func(cfg *config.Config) *sim.Simulator

func Load(path string) (*Sweep, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sw Sweep
	if err := yaml.Unmarshal(data, &sw); err != nil {
		return nil, err
	}
	return &sw, sw.Validate()
}

func (s *Sweep) Validate() error {
	if _, ok := Params[s.Param]; !ok {
		return fmt.Errorf("%w: unknown param %q (available: %v)", ErrInvalidSweep, s.Param, ListParams())
	}
	if s.Steps < 1 {
		return fmt.Errorf("%w: steps must be at least 1", ErrInvalidSweep)
	}
	if s.Steps > 1 && s.Max < s.Min {
		return fmt.Errorf("%w: max %.4g below min %.4g", ErrInvalidSweep, s.Max, s.Min)
	}
	return nil
}

// Values returns Steps evenly spaced values from Min to Max inclusive.
func (s *Sweep) Values() []float64 {
	if s.Steps <= 1 {
		return []float64{s.Min}
	}
	step := (s.Max - s.Min) / float64(s.Steps-1)
	values := make([]float64, s.Steps)
	for i := range values {
		values[i] = s.Min + float64(i)*step
	}
	return values
}

// Run simulates doc once per swept value, concurrently, and returns the
// points in value order.
func (s *Sweep) Run(ctx context.Context, base *config.Config, doc structure.Document, build Builder) ([]Point, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	values := s.Values()
	apply := Params[s.Param]
	points := make([]Point, len(values))
	errs := make([]error, len(values))

	var wg sync.WaitGroup
	for i, v := range values {
		wg.Add(1)
		go func(idx int, v float64) {
			defer wg.Done()

			cfg := *base
			d := cloneDocument(doc)
			apply(&cfg, &d, v)

			st, err := d.Build()
			if err != nil {
				errs[idx] = fmt.Errorf("%s=%.4g: %w", s.Param, v, err)
				return
			}
			result, err := build(&cfg).Run(ctx, st, cfg.SimConfig())
			if err != nil {
				errs[idx] = fmt.Errorf("%s=%.4g: %w", s.Param, v, err)
				return
			}
			points[idx] = Point{Value: v, Metrics: result.Metrics, StepsTaken: result.StepsTaken}
		}(i, v)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return points, nil
}

// Best returns the point with the lowest value of metric, or the highest
// when maximize is set. Points missing the metric are skipped.
func Best(points []Point, metric string, maximize bool) (Point, bool) {
	var best Point
	found := false
	for _, p := range points {
		v, ok := p.Metrics[metric]
		if !ok || math.IsNaN(v) {
			continue
		}
		if !found {
			best, found = p, true
			continue
		}
		cur := best.Metrics[metric]
		if (maximize && v > cur) || (!maximize && v < cur) {
			best = p
		}
	}
	return best, found
}

func cloneDocument(d structure.Document) structure.Document {
	out := d
	out.Nodes = append([]structure.NodeSpec(nil), d.Nodes...)
	out.Segments = append([]structure.SegmentSpec(nil), d.Segments...)
	out.Weights = append([]structure.WeightSpec(nil), d.Weights...)
	out.RestAngles = append([]structure.RestAngleSpec(nil), d.RestAngles...)
	return out
}
