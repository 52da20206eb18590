package sweep

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/strucsim/internal/config"
	"github.com/san-kum/strucsim/internal/joint"
	"github.com/san-kum/strucsim/internal/material"
	"github.com/san-kum/strucsim/internal/metrics"
	"github.com/san-kum/strucsim/internal/physics"
	"github.com/san-kum/strucsim/internal/sim"
	"github.com/san-kum/strucsim/internal/structure"
)

func build(cfg *config.Config) *sim.Simulator {
	s := sim.New(physics.NewManager(cfg.PhysicsConfig()), joint.NewEngine(cfg.Joint))
	for _, m := range metrics.Standard() {
		s.AddMetric(m)
	}
	return s
}

func shortConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Dt = 0.05
	cfg.Duration = 0.2
	return cfg
}

func hanging() structure.Document {
	node := 1
	return structure.Document{
		Nodes: []structure.NodeSpec{
			{Pos: []float64{300, 100}, Fixed: true},
			{Pos: []float64{300, 200}},
		},
		Segments: []structure.SegmentSpec{
			{A: 0, B: 1, Material: material.Cable},
		},
		Weights: []structure.WeightSpec{
			{Node: &node, Mass: 2, Radius: 6},
		},
	}
}

func TestValues(t *testing.T) {
	sw := &Sweep{Param: "gravity", Min: 0, Max: 1, Steps: 5}
	want := []float64{0, 0.25, 0.5, 0.75, 1}
	got := sw.Values()
	if len(got) != len(want) {
		t.Fatalf("expected %d values, got %d", len(want), len(got))
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("value %d: expected %f, got %f", i, want[i], got[i])
		}
	}

	single := &Sweep{Param: "gravity", Min: 3, Max: 9, Steps: 1}
	if v := single.Values(); len(v) != 1 || v[0] != 3 {
		t.Errorf("expected [3], got %v", v)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		sw   Sweep
		ok   bool
	}{
		{"valid", Sweep{Param: "tolerance", Min: 0.001, Max: 0.01, Steps: 3}, true},
		{"unknown param", Sweep{Param: "wind", Steps: 3}, false},
		{"no steps", Sweep{Param: "gravity"}, false},
		{"reversed range", Sweep{Param: "gravity", Min: 5, Max: 1, Steps: 2}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sw.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidSweep) {
				t.Errorf("expected ErrInvalidSweep, got %v", err)
			}
		})
	}
}

func TestLoadScaleDoesNotTouchInput(t *testing.T) {
	doc := hanging()
	d := cloneDocument(doc)
	Params["load_scale"](config.DefaultConfig(), &d, 3)

	if d.Weights[0].Mass != 6 {
		t.Errorf("expected scaled mass 6, got %f", d.Weights[0].Mass)
	}
	if doc.Weights[0].Mass != 2 {
		t.Errorf("input document mutated: mass %f", doc.Weights[0].Mass)
	}
}

func TestRun(t *testing.T) {
	sw := &Sweep{Param: "gravity", Min: 0, Max: 980, Steps: 3}
	points, err := sw.Run(context.Background(), shortConfig(), hanging(), build)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}
	for i, p := range points {
		if p.Value != sw.Values()[i] {
			t.Errorf("point %d out of order: %f", i, p.Value)
		}
		if p.StepsTaken != 4 {
			t.Errorf("point %d: expected 4 steps, got %d", i, p.StepsTaken)
		}
		if _, ok := p.Metrics["peak_torque"]; !ok {
			t.Errorf("point %d missing peak_torque", i)
		}
	}
}

func TestBest(t *testing.T) {
	points := []Point{
		{Value: 1, Metrics: map[string]float64{"sag": 4}},
		{Value: 2, Metrics: map[string]float64{"sag": 1}},
		{Value: 3, Metrics: map[string]float64{}},
		{Value: 4, Metrics: map[string]float64{"sag": 7}},
	}

	best, ok := Best(points, "sag", false)
	if !ok || best.Value != 2 {
		t.Errorf("expected value 2, got %+v", best)
	}
	best, ok = Best(points, "sag", true)
	if !ok || best.Value != 4 {
		t.Errorf("expected value 4, got %+v", best)
	}
	if _, ok := Best(points, "missing", false); ok {
		t.Error("expected no best for an unknown metric")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sweep.yaml")
	data := []byte("name: tol\nstructure: cable-bridge\nparam: tolerance\nmin: 0.001\nmax: 0.02\nsteps: 4\nmetric: slack_fraction\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	sw, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if sw.Structure != "cable-bridge" || sw.Steps != 4 || sw.Metric != "slack_fraction" {
		t.Errorf("unexpected sweep: %+v", sw)
	}
}

func TestMonteCarlo(t *testing.T) {
	mc := &MonteCarlo{Trials: 4, Perturbation: 5, Seed: 7}
	trials := mc.Run(context.Background(), shortConfig(), hanging(), build)
	if len(trials) != 4 {
		t.Fatalf("expected 4 trials, got %d", len(trials))
	}
	stableCount, unstableCount := Stats(trials)
	if stableCount+unstableCount != 4 {
		t.Errorf("stats do not add up: %d + %d", stableCount, unstableCount)
	}
	for _, tr := range trials {
		if tr.Err != nil {
			t.Errorf("trial %d failed: %v", tr.ID, tr.Err)
		}
		if !tr.Stable {
			t.Errorf("trial %d unstable", tr.ID)
		}
	}
}

func TestPerturbKeepsFixedNodes(t *testing.T) {
	doc := hanging()
	out := perturb(doc, rand.New(rand.NewSource(1)), 10)

	if out.Nodes[0].Pos[0] != 300 || out.Nodes[0].Pos[1] != 100 {
		t.Errorf("fixed node moved: %v", out.Nodes[0].Pos)
	}
	if doc.Nodes[1].Pos[0] != 300 || doc.Nodes[1].Pos[1] != 200 {
		t.Errorf("input document mutated: %v", doc.Nodes[1].Pos)
	}
	dx := math.Abs(out.Nodes[1].Pos[0] - 300)
	dy := math.Abs(out.Nodes[1].Pos[1] - 200)
	if dx > 10 || dy > 10 {
		t.Errorf("perturbation out of range: %f, %f", dx, dy)
	}
}

func TestPerturbPinsRestAngles(t *testing.T) {
	doc := structure.Document{
		Nodes: []structure.NodeSpec{
			{Pos: []float64{300, 100}, Fixed: true},
			{Pos: []float64{400, 100}},
			{Pos: []float64{300, 200}},
		},
		Segments: []structure.SegmentSpec{
			{A: 0, B: 1, Material: material.Beam},
			{A: 0, B: 2, Material: material.Beam},
		},
	}
	out := perturb(doc, rand.New(rand.NewSource(3)), 30)

	st, err := out.Build()
	if err != nil {
		t.Fatal(err)
	}
	segs := st.Segments()
	got, ok := st.RestAngle(segs[0].A, segs[0].ID, segs[1].ID)
	if !ok || math.Abs(got-math.Pi/2) > 1e-9 {
		t.Errorf("rest angle = %.4f, want design angle %.4f", got, math.Pi/2)
	}
}
