package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/strucsim/internal/joint"
	"github.com/san-kum/strucsim/internal/material"
	"github.com/san-kum/strucsim/internal/slack"
	"github.com/san-kum/strucsim/internal/structure"
)

var _ = Describe("Manager", func() {
	var (
		m *Manager
		s *structure.Structure
	)

	BeforeEach(func() {
		m = NewManager(DefaultConfig())
		s = structure.New()
	})

	AfterEach(func() {
		m.Stop(s)
	})

	Describe("lifecycle", func() {
		BeforeEach(func() {
			a := s.AddNode(mgl64.Vec2{100, 100}, structure.Fixed())
			b := s.AddNode(mgl64.Vec2{200, 100})
			_, err := s.AddSegment(a, b, material.Beam)
			Expect(err).NotTo(HaveOccurred())
		})

		It("ignores a second Start", func() {
			Expect(m.Start(s)).To(Succeed())
			m.Advance(1.0 / 60)
			Expect(m.Start(s)).To(Succeed())
			Expect(m.Running()).To(BeTrue())
			Expect(m.Steps()).To(Equal(1))
		})

		It("ignores a second Stop", func() {
			Expect(m.Start(s)).To(Succeed())
			m.Stop(s)
			Expect(func() { m.Stop(s) }).NotTo(Panic())
			Expect(m.Running()).To(BeFalse())
		})

		It("ignores Stop before Start", func() {
			Expect(func() { m.Stop(s) }).NotTo(Panic())
			Expect(m.Running()).To(BeFalse())
		})

		It("exposes nothing while stopped", func() {
			_, ok := m.Position(1)
			Expect(ok).To(BeFalse())
			Expect(m.SegmentStates()).To(BeNil())
			Expect(m.PreStep()).To(Equal(slack.Stats{}))
			Expect(m.MoveNode(1, mgl64.Vec2{})).To(MatchError(ErrNotRunning))
		})

		It("writes final positions back on Stop", func() {
			Expect(m.Start(s)).To(Succeed())
			for i := 0; i < 30; i++ {
				m.Advance(1.0 / 60)
			}
			live, ok := m.Position(2)
			Expect(ok).To(BeTrue())
			m.Stop(s)

			n, _ := s.Node(2)
			Expect(n.Pos).To(Equal(live))
			Expect(n.Pos[1]).To(BeNumerically(">", 100))
		})

		It("forgets slack state on Stop", func() {
			Expect(m.Start(s)).To(Succeed())
			m.PreStep()
			Expect(m.SegmentStates()).To(HaveLen(1))
			m.Stop(s)
			Expect(m.Start(s)).To(Succeed())
			Expect(m.SegmentStates()).To(BeEmpty())
		})
	})

	Describe("cable slack", func() {
		var (
			b   structure.NodeID
			seg structure.SegmentID
		)

		BeforeEach(func() {
			a := s.AddNode(mgl64.Vec2{100, 100}, structure.Fixed())
			b = s.AddNode(mgl64.Vec2{200, 100})
			var err error
			seg, err = s.AddSegment(a, b, material.Cable)
			Expect(err).NotTo(HaveOccurred())
			Expect(m.Start(s)).To(Succeed())
		})

		It("goes slack under compression and recovers under tension", func() {
			configured := material.Resolve(material.Cable).Stiffness

			Expect(m.MoveNode(b, mgl64.Vec2{195, 100})).To(Succeed())
			m.PreStep()
			st, ok := m.SegmentState(seg)
			Expect(ok).To(BeTrue())
			Expect(st.CurrentLength).To(BeNumerically("~", 95, 1e-9))
			Expect(st.Slack).To(BeTrue())
			Expect(st.Deformation).To(Equal(slack.Compression))
			k, _ := m.Stiffness(seg)
			Expect(k).To(BeZero())

			Expect(m.MoveNode(b, mgl64.Vec2{200.6, 100})).To(Succeed())
			m.PreStep()
			st, _ = m.SegmentState(seg)
			Expect(st.Slack).To(BeFalse())
			Expect(st.Deformation).To(Equal(slack.Tension))
			k, _ = m.Stiffness(seg)
			Expect(k).To(Equal(configured))
		})

		It("stays taut inside the tolerance band", func() {
			Expect(m.MoveNode(b, mgl64.Vec2{199.7, 100})).To(Succeed())
			m.PreStep()
			st, _ := m.SegmentState(seg)
			Expect(st.Deformation).To(Equal(slack.Neutral))
			Expect(st.Slack).To(BeFalse())
		})

		It("reports zero stress while slack", func() {
			Expect(m.MoveNode(b, mgl64.Vec2{180, 100})).To(Succeed())
			m.PreStep()
			v, ok := m.Stress(seg)
			Expect(ok).To(BeTrue())
			Expect(v).To(BeZero())
		})
	})

	Describe("segment riders", func() {
		It("splits the live length by t", func() {
			a := s.AddNode(mgl64.Vec2{100, 100}, structure.Fixed())
			b := s.AddNode(mgl64.Vec2{300, 100})
			seg, err := s.AddSegment(a, b, material.Beam)
			Expect(err).NotTo(HaveOccurred())
			_, err = s.AttachWeightToSegment(seg, 0.25, 5, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(m.Start(s)).To(Succeed())

			Expect(m.rt.riders).To(HaveLen(1))
			r := m.rt.riders[0]
			Expect(r.Near.(*spring).RestLength).To(BeNumerically("~", 50, 1e-9))
			Expect(r.Far.(*spring).RestLength).To(BeNumerically("~", 150, 1e-9))

			Expect(m.MoveNode(b, mgl64.Vec2{400, 100})).To(Succeed())
			stats := m.PreStep()
			Expect(stats.Riders).To(Equal(1))
			Expect(r.Near.(*spring).RestLength).To(BeNumerically("~", 75, 1e-9))
			Expect(r.Far.(*spring).RestLength).To(BeNumerically("~", 225, 1e-9))
		})

		It("hangs node weights below the node", func() {
			a := s.AddNode(mgl64.Vec2{100, 100}, structure.Fixed())
			w, err := s.AttachWeightToNode(a, 5, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(m.Start(s)).To(Succeed())

			p, ok := m.WeightPosition(w)
			Expect(ok).To(BeTrue())
			Expect(p[1]).To(BeNumerically(">", 100))
			Expect(m.rt.riders).To(BeEmpty())
		})
	})

	It("skips a segment between two fixed nodes", func() {
		a := s.AddNode(mgl64.Vec2{100, 100}, structure.Fixed())
		b := s.AddNode(mgl64.Vec2{200, 100}, structure.Fixed())
		seg, err := s.AddSegment(a, b, material.Beam)
		Expect(err).NotTo(HaveOccurred())

		Expect(m.Start(s)).To(Succeed())
		m.PreStep()
		_, ok := m.SegmentState(seg)
		Expect(ok).To(BeFalse())
		_, ok = m.Stiffness(seg)
		Expect(ok).To(BeFalse())
	})

	It("moves the ground with the canvas", func() {
		w, h := 800.0, 600.0
		cfg := DefaultConfig()
		cfg.Canvas = func() (float64, float64) { return w, h }
		m = NewManager(cfg)
		s.AddNode(mgl64.Vec2{100, 100})
		Expect(m.Start(s)).To(Succeed())
		Expect(m.rt.groundWidth).To(Equal(800 * cfg.GroundWidthMultiplier))

		w, h = 1200, 900
		m.UpdateGroundPosition()
		Expect(m.rt.groundWidth).To(Equal(1200 * cfg.GroundWidthMultiplier))
		pos := fromCP(m.rt.ground.Position())
		Expect(pos).To(Equal(mgl64.Vec2{600, 900 - cfg.GroundHeight/2}))
	})

	It("follows a resizable canvas", func() {
		size := NewCanvasSize(800, 600)
		cfg := DefaultConfig()
		cfg.Canvas = size.Size
		m = NewManager(cfg)
		s.AddNode(mgl64.Vec2{100, 100})
		Expect(m.Start(s)).To(Succeed())

		size.Resize(400, 500)
		m.UpdateGroundPosition()
		center, width, ok := m.Ground()
		Expect(ok).To(BeTrue())
		Expect(width).To(Equal(400 * cfg.GroundWidthMultiplier))
		Expect(center).To(Equal(mgl64.Vec2{200, 500 - cfg.GroundHeight/2}))
	})

	It("keeps a preset finite", func() {
		var err error
		s, err = structure.Preset("truss")
		Expect(err).NotTo(HaveOccurred())
		Expect(m.Start(s)).To(Succeed())

		for i := 0; i < 120; i++ {
			m.Advance(1.0 / 60)
		}
		Expect(m.Elapsed()).To(BeNumerically("~", 2, 1e-9))
		for _, p := range m.Positions() {
			Expect(math.IsNaN(p[0]) || math.IsNaN(p[1])).To(BeFalse())
		}

		joints := m.Joints(s, joint.NewEngine(joint.DefaultConfig()))
		Expect(joints).NotTo(BeEmpty())
		for _, j := range joints {
			n := len(s.SegmentsAt(j.Node))
			Expect(j.Pairs).To(HaveLen(n * (n - 1) / 2))
		}
	})

	It("stops nodes from resting below the ground", func() {
		s.AddNode(mgl64.Vec2{500, 500})
		Expect(m.Start(s)).To(Succeed())
		for i := 0; i < 180; i++ {
			m.Advance(1.0 / 60)
		}
		p, _ := m.Position(1)
		_, h := m.Config().Canvas()
		Expect(p[1]).To(BeNumerically("<", h-m.Config().GroundHeight+1))
	})
})
