package physics

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
	"github.com/san-kum/strucsim/internal/joint"
	"github.com/san-kum/strucsim/internal/slack"
	"github.com/san-kum/strucsim/internal/structure"
)

var (
	ErrNotRunning  = errors.New("physics: not running")
	ErrUnknownBody = errors.New("physics: no body for node")
)

// runtime is everything that exists only while the manager is running.
// It is swapped in and out as a whole.
type runtime struct {
	space       *cp.Space
	ground      *cp.Body
	groundShape *cp.Shape
	groundWidth float64

	nodes   map[structure.NodeID]*cp.Body
	weights map[structure.WeightID]*cp.Body
	springs map[structure.SegmentID]*spring

	members []slack.Member
	riders  []slack.Rider

	elapsed float64
	steps   int
	stats   slack.Stats
}

func (rt *runtime) position(id structure.NodeID) (mgl64.Vec2, bool) {
	b, ok := rt.nodes[id]
	if !ok {
		return mgl64.Vec2{}, false
	}
	return fromCP(b.Position()), true
}

type Manager struct {
	cfg   Config
	slack *slack.Engine

	mu sync.RWMutex
	rt *runtime
}

func NewManager(cfg Config) *Manager {
	if cfg.Iterations <= 0 {
		cfg.Iterations = DefaultConfig().Iterations
	}
	if cfg.Substeps <= 0 {
		cfg.Substeps = 1
	}
	if cfg.Canvas == nil {
		cfg.Canvas = FixedCanvas(DefaultCanvasWidth, DefaultCanvasHeight)
	}
	return &Manager{
		cfg:   cfg,
		slack: slack.NewEngine(cfg.Slack),
	}
}

func (m *Manager) Config() Config { return m.cfg }

func (m *Manager) Running() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rt != nil
}

// Start builds a fresh world from s. It is a no-op while running.
func (m *Manager) Start(s *structure.Structure) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.rt != nil {
		return nil
	}
	if err := s.Validate(); err != nil {
		return fmt.Errorf("physics start: %w", err)
	}

	space := cp.NewSpace()
	space.SetGravity(toCP(m.cfg.Gravity))
	space.Iterations = uint(m.cfg.Iterations)

	rt := &runtime{
		space:   space,
		nodes:   make(map[structure.NodeID]*cp.Body),
		weights: make(map[structure.WeightID]*cp.Body),
		springs: make(map[structure.SegmentID]*spring),
	}
	m.buildGround(rt)

	for _, n := range s.Nodes() {
		rt.nodes[n.ID] = m.addNode(space, n)
	}

	for _, seg := range s.Segments() {
		a, b := rt.nodes[seg.A], rt.nodes[seg.B]
		if a.GetType() == cp.BODY_STATIC && b.GetType() == cp.BODY_STATIC {
			// nothing can move, and cp refuses a spring between two static bodies
			continue
		}
		sp := newSpring(a, b, seg.RestLength, seg.Stiffness, seg.Damping)
		space.AddConstraint(sp.Constraint)
		rt.springs[seg.ID] = sp
		rt.members = append(rt.members, slack.MemberFor(seg, sp))
	}

	for _, w := range s.Weights() {
		if err := m.addWeight(s, rt, w); err != nil {
			return fmt.Errorf("physics start: weight %d: %w", w.ID, err)
		}
	}

	m.slack.Reset()
	m.rt = rt
	return nil
}

func (m *Manager) addNode(space *cp.Space, n structure.Node) *cp.Body {
	var body *cp.Body
	if n.Fixed {
		body = cp.NewStaticBody()
	} else {
		body = cp.NewBody(n.Mass, cp.MomentForCircle(n.Mass, 0, m.cfg.NodeRadius, cp.Vector{}))
	}
	body.SetPosition(toCP(n.Pos))
	space.AddBody(body)

	shape := cp.NewCircle(body, m.cfg.NodeRadius, cp.Vector{})
	shape.SetFriction(m.cfg.NodeFriction)
	shape.SetFilter(cp.NewShapeFilter(cp.NO_GROUP, CategoryNode, CategoryGround))
	space.AddShape(shape)
	return body
}

func (m *Manager) addWeight(s *structure.Structure, rt *runtime, w structure.Weight) error {
	anchor, err := s.WeightAnchor(w)
	if err != nil {
		return err
	}

	hang := 0.0
	if !w.OnSegment() {
		hang = m.cfg.NodeRadius + w.Radius
	}
	body := cp.NewBody(w.Mass, cp.MomentForCircle(w.Mass, 0, w.Radius, cp.Vector{}))
	body.SetPosition(toCP(anchor.Add(mgl64.Vec2{0, hang})))
	rt.space.AddBody(body)

	shape := cp.NewCircle(body, w.Radius, cp.Vector{})
	shape.SetFriction(m.cfg.NodeFriction)
	shape.SetFilter(cp.NewShapeFilter(cp.NO_GROUP, CategoryWeight, CategoryGround))
	rt.space.AddShape(shape)
	rt.weights[w.ID] = body

	if !w.OnSegment() {
		sp := newSpring(rt.nodes[w.Node], body, hang, m.cfg.WeightStiffness, m.cfg.WeightDamping)
		rt.space.AddConstraint(sp.Constraint)
		return nil
	}

	seg, _ := s.Segment(w.Segment)
	l, err := s.SegmentLength(seg.ID)
	if err != nil {
		return err
	}
	near := newSpring(rt.nodes[seg.A], body, w.T*l, m.cfg.WeightStiffness, m.cfg.WeightDamping)
	far := newSpring(rt.nodes[seg.B], body, (1-w.T)*l, m.cfg.WeightStiffness, m.cfg.WeightDamping)
	rt.space.AddConstraint(near.Constraint)
	rt.space.AddConstraint(far.Constraint)
	rt.riders = append(rt.riders, slack.Rider{
		Weight:  w.ID,
		Segment: seg.ID,
		A:       seg.A,
		B:       seg.B,
		T:       w.T,
		Near:    near,
		Far:     far,
	})
	return nil
}

func (m *Manager) groundPlacement() (center mgl64.Vec2, width float64) {
	w, h := m.cfg.Canvas()
	width = w * m.cfg.GroundWidthMultiplier
	center = mgl64.Vec2{w / 2, h - m.cfg.GroundHeight/2}
	return center, width
}

func (m *Manager) buildGround(rt *runtime) {
	center, width := m.groundPlacement()
	rt.ground = cp.NewStaticBody()
	rt.ground.SetPosition(toCP(center))
	rt.space.AddBody(rt.ground)
	rt.groundShape = m.groundBox(rt.ground, width)
	rt.space.AddShape(rt.groundShape)
	rt.groundWidth = width
}

func (m *Manager) groundBox(body *cp.Body, width float64) *cp.Shape {
	shape := cp.NewBox(body, width, m.cfg.GroundHeight, 0)
	shape.SetFriction(m.cfg.GroundFriction)
	shape.SetFilter(cp.NewShapeFilter(cp.NO_GROUP, CategoryGround, CategoryNode|CategoryWeight))
	return shape
}

// UpdateGroundPosition re-reads the canvas size and moves the ground to its
// bottom edge, resizing the box when the width changed.
func (m *Manager) UpdateGroundPosition() {
	m.mu.Lock()
	defer m.mu.Unlock()
	rt := m.rt
	if rt == nil {
		return
	}

	center, width := m.groundPlacement()
	if width != rt.groundWidth {
		rt.space.RemoveShape(rt.groundShape)
		rt.groundShape = m.groundBox(rt.ground, width)
		rt.space.AddShape(rt.groundShape)
		rt.groundWidth = width
	}
	rt.ground.SetPosition(toCP(center))
	rt.space.ReindexShapesForBody(rt.ground)
}

// Ground reports the current center and width of the ground box.
func (m *Manager) Ground() (mgl64.Vec2, float64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.rt == nil {
		return mgl64.Vec2{}, 0, false
	}
	return fromCP(m.rt.ground.Position()), m.rt.groundWidth, true
}

// Stop writes final node positions back into s and discards the world.
// It is a no-op while stopped.
func (m *Manager) Stop(s *structure.Structure) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rt := m.rt
	if rt == nil {
		return
	}
	for id, body := range rt.nodes {
		// nodes removed from s while running are simply not synced
		_ = s.SetNodePosition(id, fromCP(body.Position()))
	}
	m.rt = nil
	m.slack.Reset()
}

// PreStep runs the slack pass once without integrating.
func (m *Manager) PreStep() slack.Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rt == nil {
		return slack.Stats{}
	}
	return m.preStep(m.rt)
}

func (m *Manager) preStep(rt *runtime) slack.Stats {
	rt.stats = m.slack.Step(rt.elapsed, rt.members, rt.riders, rt.position)
	return rt.stats
}

// Advance moves the world forward by dt, split into Config.Substeps
// integration steps each preceded by a slack pass.
func (m *Manager) Advance(dt float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rt := m.rt
	if rt == nil || dt <= 0 {
		return
	}

	h := dt / float64(m.cfg.Substeps)
	for i := 0; i < m.cfg.Substeps; i++ {
		m.preStep(rt)
		rt.space.Step(h)
		rt.elapsed += h
	}
	rt.steps++
}

func (m *Manager) Elapsed() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.rt == nil {
		return 0
	}
	return m.rt.elapsed
}

func (m *Manager) Steps() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.rt == nil {
		return 0
	}
	return m.rt.steps
}

// Stats reports the most recent slack pass.
func (m *Manager) Stats() slack.Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.rt == nil {
		return slack.Stats{}
	}
	return m.rt.stats
}

func (m *Manager) Position(id structure.NodeID) (mgl64.Vec2, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.rt == nil {
		return mgl64.Vec2{}, false
	}
	return m.rt.position(id)
}

func (m *Manager) Positions() map[structure.NodeID]mgl64.Vec2 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.rt == nil {
		return nil
	}
	out := make(map[structure.NodeID]mgl64.Vec2, len(m.rt.nodes))
	for id, b := range m.rt.nodes {
		out[id] = fromCP(b.Position())
	}
	return out
}

func (m *Manager) WeightPosition(id structure.WeightID) (mgl64.Vec2, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.rt == nil {
		return mgl64.Vec2{}, false
	}
	b, ok := m.rt.weights[id]
	if !ok {
		return mgl64.Vec2{}, false
	}
	return fromCP(b.Position()), true
}

// MoveNode teleports a node's body and zeroes its velocity.
func (m *Manager) MoveNode(id structure.NodeID, pos mgl64.Vec2) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rt == nil {
		return ErrNotRunning
	}
	b, ok := m.rt.nodes[id]
	if !ok {
		return fmt.Errorf("%w %d", ErrUnknownBody, id)
	}
	b.SetPosition(toCP(pos))
	if b.GetType() == cp.BODY_STATIC {
		m.rt.space.ReindexShapesForBody(b)
	} else {
		b.SetVelocity(0, 0)
	}
	return nil
}

func (m *Manager) SegmentState(id structure.SegmentID) (slack.State, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.rt == nil {
		return slack.State{}, false
	}
	return m.slack.State(id)
}

func (m *Manager) SegmentStates() map[structure.SegmentID]slack.State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.rt == nil {
		return nil
	}
	return m.slack.States()
}

// Stress implements joint.StressLookup over the latest slack pass.
func (m *Manager) Stress(id structure.SegmentID) (float64, bool) {
	st, ok := m.SegmentState(id)
	return st.Stress, ok
}

// Stiffness is the stiffness currently applied to the segment's spring.
func (m *Manager) Stiffness(id structure.SegmentID) (float64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.rt == nil {
		return 0, false
	}
	sp, ok := m.rt.springs[id]
	if !ok {
		return 0, false
	}
	return sp.Stiffness, true
}

// slackStress reads stress straight from the slack engine. Joints already
// holds the read lock, so it cannot go through Manager.Stress.
type slackStress struct{ e *slack.Engine }

func (l slackStress) Stress(id structure.SegmentID) (float64, bool) {
	st, ok := l.e.State(id)
	return st.Stress, ok
}

// Joints computes joint data from live body positions and stress. While
// stopped it falls back to the stored positions and stresses in s.
func (m *Manager) Joints(s *structure.Structure, e *joint.Engine) map[structure.NodeID]joint.Joint {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.rt == nil {
		return e.Compute(s, nil, nil)
	}
	return e.Compute(s, m.rt.position, slackStress{m.slack})
}
