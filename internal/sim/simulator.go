package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/strucsim/internal/geom"
	"github.com/san-kum/strucsim/internal/joint"
	"github.com/san-kum/strucsim/internal/physics"
	"github.com/san-kum/strucsim/internal/structure"
)

type Simulator struct {
	physics   *physics.Manager
	joints    *joint.Engine
	metrics   []Metric
	observers []Observer
}

func New(m *physics.Manager, j *joint.Engine) *Simulator {
	return &Simulator{
		physics:   m,
		joints:    j,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Physics() *physics.Manager { return s.physics }

// Run starts the physics world for st, advances it for cfg.Duration and
// stops it again, leaving the final node positions in st.
func (s *Simulator) Run(ctx context.Context, st *structure.Structure, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if cfg.SampleEvery <= 0 {
		cfg.SampleEvery = 1
	}

	steps := stepCount(cfg)
	result := &Result{
		Nodes:    nodeIDs(st),
		Segments: segmentIDs(st),
		Frames:   make([]Frame, 0, steps/cfg.SampleEvery+2),
		Metrics:  make(map[string]float64),
		Errors:   make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	if err := s.physics.Start(st); err != nil {
		return nil, err
	}
	defer s.physics.Stop(st)

	s.physics.PreStep()
	f := s.capture(st, result, 0)
	s.observe(&f)
	result.Frames = append(result.Frames, f)

	for i := 1; i <= steps; i++ {
		select {
		case <-ctx.Done():
			s.collect(result)
			return result, ctx.Err()
		default:
		}

		s.physics.Advance(cfg.Dt)
		result.StepsTaken++

		f := s.capture(st, result, i)
		if cfg.ValidateState && !f.Valid() {
			err := &SimError{Step: i, Time: f.Time, Message: "node position diverged", Wrapped: ErrInvalidState}
			result.Errors = append(result.Errors, err)
			s.collect(result)
			return result, err
		}

		s.observe(&f)
		if i%cfg.SampleEvery == 0 || i == steps {
			result.Frames = append(result.Frames, f)
		}
	}

	s.collect(result)
	return result, nil
}

// RunWithCallback advances like Run without recording frames. It returns
// early, without error, when callback returns false.
func (s *Simulator) RunWithCallback(ctx context.Context, st *structure.Structure, cfg Config, callback func(*Frame) bool) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}

	if err := s.physics.Start(st); err != nil {
		return err
	}
	defer s.physics.Stop(st)

	layout := &Result{Nodes: nodeIDs(st), Segments: segmentIDs(st)}
	steps := stepCount(cfg)
	for i := 0; i <= steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if i == 0 {
			s.physics.PreStep()
		} else {
			s.physics.Advance(cfg.Dt)
		}

		f := s.capture(st, layout, i)
		if cfg.ValidateState && !f.Valid() {
			return &SimError{Step: i, Time: f.Time, Message: "node position diverged", Wrapped: ErrInvalidState}
		}
		if !callback(&f) {
			return nil
		}
	}
	return nil
}

func (s *Simulator) observe(f *Frame) {
	for _, m := range s.metrics {
		m.Observe(f)
	}
	for _, obs := range s.observers {
		obs.OnStep(f)
	}
}

func (s *Simulator) collect(result *Result) {
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func (s *Simulator) capture(st *structure.Structure, layout *Result, step int) Frame {
	f := Frame{
		Step:      step,
		Time:      s.physics.Elapsed(),
		Positions: make([]mgl64.Vec2, len(layout.Nodes)),
		Lengths:   make([]float64, len(layout.Segments)),
		Strain:    make([]float64, len(layout.Segments)),
		Stress:    make([]float64, len(layout.Segments)),
		Slack:     make([]bool, len(layout.Segments)),
		Stats:     s.physics.Stats(),
	}

	index := make(map[structure.NodeID]int, len(layout.Nodes))
	for i, id := range layout.Nodes {
		index[id] = i
		if p, ok := s.physics.Position(id); ok {
			f.Positions[i] = p
		} else if n, ok := st.Node(id); ok {
			f.Positions[i] = n.Pos
		}
	}

	states := s.physics.SegmentStates()
	for i, id := range layout.Segments {
		if state, ok := states[id]; ok {
			f.Lengths[i] = state.CurrentLength
			f.Strain[i] = state.Strain
			f.Stress[i] = state.Stress
			f.Slack[i] = state.Slack
			continue
		}
		// members without a live spring never deform
		if seg, ok := st.Segment(id); ok {
			f.Lengths[i] = geom.Distance(f.Positions[index[seg.A]], f.Positions[index[seg.B]])
		}
	}

	if s.joints != nil {
		f.PeakNode, f.PeakTorque = joint.Peak(s.physics.Joints(st, s.joints))
	}
	return f
}

func validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidConfig, cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %f", ErrInvalidConfig, cfg.Duration)
	}
	return nil
}

func stepCount(cfg Config) int {
	return int(math.Round(cfg.Duration / cfg.Dt))
}

func nodeIDs(st *structure.Structure) []structure.NodeID {
	nodes := st.Nodes()
	ids := make([]structure.NodeID, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}

func segmentIDs(st *structure.Structure) []structure.SegmentID {
	segs := st.Segments()
	ids := make([]structure.SegmentID, len(segs))
	for i, seg := range segs {
		ids[i] = seg.ID
	}
	return ids
}
