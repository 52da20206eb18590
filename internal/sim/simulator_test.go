package sim

import (
	"context"
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/strucsim/internal/joint"
	"github.com/san-kum/strucsim/internal/material"
	"github.com/san-kum/strucsim/internal/physics"
	"github.com/san-kum/strucsim/internal/structure"
)

func newSimulator() *Simulator {
	return New(physics.NewManager(physics.DefaultConfig()), joint.NewEngine(joint.DefaultConfig()))
}

func hinge(t *testing.T) *structure.Structure {
	t.Helper()
	s := structure.New()
	a := s.AddNode(mgl64.Vec2{300, 100}, structure.Fixed())
	b := s.AddNode(mgl64.Vec2{400, 100})
	c := s.AddNode(mgl64.Vec2{400, 200})
	if _, err := s.AddSegment(a, b, material.Beam); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddSegment(b, c, material.Cable); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestSimulatorRun(t *testing.T) {
	sim := newSimulator()
	s := hinge(t)

	result, err := sim.Run(context.Background(), s, Config{Dt: 0.1, Duration: 1.0})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(result.Frames) != 11 {
		t.Errorf("expected 11 frames, got %d", len(result.Frames))
	}
	if result.StepsTaken != 10 {
		t.Errorf("expected 10 steps, got %d", result.StepsTaken)
	}
	if len(result.Nodes) != 3 || len(result.Segments) != 2 {
		t.Fatalf("unexpected layout: %d nodes, %d segments", len(result.Nodes), len(result.Segments))
	}

	final := result.Final()
	if len(final.Positions) != 3 || len(final.Lengths) != 2 {
		t.Fatalf("frame not aligned with layout: %+v", final)
	}
	if sim.Physics().Running() {
		t.Error("physics still running after Run")
	}

	n, _ := s.Node(result.Nodes[2])
	if n.Pos != final.Positions[2] {
		t.Errorf("final position not synced back: %v vs %v", n.Pos, final.Positions[2])
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	sim := newSimulator()

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero dt", Config{Dt: 0, Duration: 1.0}},
		{"negative dt", Config{Dt: -0.1, Duration: 1.0}},
		{"zero duration", Config{Dt: 0.1, Duration: 0}},
		{"negative duration", Config{Dt: 0.1, Duration: -1.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sim.Run(context.Background(), hinge(t), tt.cfg)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestSimulatorSampling(t *testing.T) {
	sim := newSimulator()

	result, err := sim.Run(context.Background(), hinge(t), Config{Dt: 0.1, Duration: 1.0, SampleEvery: 4})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	// 0, 4, 8 and the last step
	want := []int{0, 4, 8, 10}
	if len(result.Frames) != len(want) {
		t.Fatalf("expected %d frames, got %d", len(want), len(result.Frames))
	}
	for i, f := range result.Frames {
		if f.Step != want[i] {
			t.Errorf("frame %d: step %d, want %d", i, f.Step, want[i])
		}
	}
}

func TestSimulatorCanceled(t *testing.T) {
	sim := newSimulator()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := sim.Run(ctx, hinge(t), Config{Dt: 0.1, Duration: 1.0})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result.StepsTaken != 0 {
		t.Errorf("expected no steps, got %d", result.StepsTaken)
	}
	if sim.Physics().Running() {
		t.Error("physics still running after cancel")
	}
}

type testMetric struct {
	count int
	sum   float64
}

func (t *testMetric) Name() string { return "test" }
func (t *testMetric) Observe(f *Frame) {
	t.count++
	t.sum += f.Time
}
func (t *testMetric) Value() float64 {
	if t.count == 0 {
		return 0
	}
	return t.sum / float64(t.count)
}
func (t *testMetric) Reset() {
	t.count = 0
	t.sum = 0
}

func TestSimulatorMetrics(t *testing.T) {
	sim := newSimulator()

	metric := &testMetric{}
	sim.AddMetric(metric)

	result, err := sim.Run(context.Background(), hinge(t), Config{Dt: 0.1, Duration: 1.0})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if _, ok := result.Metrics["test"]; !ok {
		t.Error("metric not found in result")
	}
	if metric.count != 11 {
		t.Errorf("expected 11 observations, got %d", metric.count)
	}
}

type countingObserver struct{ steps []int }

func (o *countingObserver) OnStep(f *Frame) { o.steps = append(o.steps, f.Step) }

func TestRunWithCallbackStopsEarly(t *testing.T) {
	sim := newSimulator()
	obs := &countingObserver{}

	err := sim.RunWithCallback(context.Background(), hinge(t), Config{Dt: 0.1, Duration: 1.0}, func(f *Frame) bool {
		obs.OnStep(f)
		return f.Step < 3
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(obs.steps) != 4 {
		t.Errorf("expected 4 callbacks, got %v", obs.steps)
	}
	if sim.Physics().Running() {
		t.Error("physics still running")
	}
}

func TestBatch(t *testing.T) {
	jobs := []Job{
		{Name: "a", Structure: hinge(t)},
		{Name: "b", Structure: hinge(t)},
		{Name: "c", Structure: hinge(t)},
	}

	results, err := NewBatch(newSimulator).Run(context.Background(), jobs, Config{Dt: 0.1, Duration: 0.5})
	if err != nil {
		t.Fatalf("batch failed: %v", err)
	}
	if len(results) != len(jobs) {
		t.Fatalf("expected %d results, got %d", len(jobs), len(results))
	}
	for i, r := range results {
		if r.StepsTaken != 5 {
			t.Errorf("job %d: expected 5 steps, got %d", i, r.StepsTaken)
		}
	}
}
