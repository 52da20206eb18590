package joint

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/strucsim/internal/material"
	"github.com/san-kum/strucsim/internal/structure"
)

// star builds a hub with n spokes spread evenly around it.
func star(t *testing.T, n int, stiffness float64) (*structure.Structure, structure.NodeID, []structure.SegmentID) {
	t.Helper()
	s := structure.New()
	hub := s.AddNode(mgl64.Vec2{0, 0}, structure.WithAngularStiffness(stiffness))
	var segs []structure.SegmentID
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		end := s.AddNode(mgl64.Vec2{100 * math.Cos(a), 100 * math.Sin(a)})
		id, err := s.AddSegment(hub, end, material.Beam)
		if err != nil {
			t.Fatal(err)
		}
		segs = append(segs, id)
	}
	return s, hub, segs
}

func TestPairCombinatorics(t *testing.T) {
	e := NewEngine(DefaultConfig())
	for n := 0; n <= 6; n++ {
		s, hub, _ := star(t, n, 1)
		joints := e.Compute(s, nil, nil)
		j, ok := joints[hub]
		if n < 2 {
			if ok {
				t.Errorf("n=%d: hub should have no joint entry", n)
			}
			continue
		}
		if !ok {
			t.Fatalf("n=%d: hub missing from result", n)
		}
		if want := n * (n - 1) / 2; len(j.Pairs) != want {
			t.Errorf("n=%d: got %d pairs, want %d", n, len(j.Pairs), want)
		}
		// spoke ends each have a single segment
		if len(joints) != 1 {
			t.Errorf("n=%d: expected only the hub in the result, got %d entries", n, len(joints))
		}
	}
}

func TestPairOrderDeterministic(t *testing.T) {
	s, hub, segs := star(t, 4, 1)
	j := NewEngine(DefaultConfig()).Compute(s, nil, nil)[hub]
	want := [][2]structure.SegmentID{
		{segs[0], segs[1]}, {segs[0], segs[2]}, {segs[0], segs[3]},
		{segs[1], segs[2]}, {segs[1], segs[3]}, {segs[2], segs[3]},
	}
	for i, p := range j.Pairs {
		if p.SegmentA != want[i][0] || p.SegmentB != want[i][1] {
			t.Errorf("pair %d = (%d,%d), want (%d,%d)", i, p.SegmentA, p.SegmentB, want[i][0], want[i][1])
		}
	}
}

func TestTorqueFromLivePositions(t *testing.T) {
	s := structure.New()
	hub := s.AddNode(mgl64.Vec2{0, 0}, structure.WithAngularStiffness(1))
	east := s.AddNode(mgl64.Vec2{100, 0})
	north := s.AddNode(mgl64.Vec2{0, -100})
	if _, err := s.AddSegment(hub, east, material.Beam); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddSegment(hub, north, material.Beam); err != nil {
		t.Fatal(err)
	}

	// swing north to 45°
	live := func(id structure.NodeID) (mgl64.Vec2, bool) {
		if id == north {
			return mgl64.Vec2{100, -100}, true
		}
		return mgl64.Vec2{}, false
	}
	j := NewEngine(DefaultConfig()).Compute(s, live, nil)[hub]
	p := j.Pairs[0]
	if math.Abs(deg(p.RestAngle)-90) > degTol {
		t.Errorf("rest angle = %.2f°, want 90°", deg(p.RestAngle))
	}
	if math.Abs(deg(p.Angle)-45) > degTol {
		t.Errorf("angle = %.2f°, want 45°", deg(p.Angle))
	}
	if want := -math.Pi / 4; math.Abs(p.Torque-want) > 1e-9 {
		t.Errorf("torque = %v, want %v", p.Torque, want)
	}
	if p.NormalizedTorque != 1 {
		t.Errorf("normalized torque = %v, want saturated 1", p.NormalizedTorque)
	}
}

func TestFreeHingeHasNoTorque(t *testing.T) {
	s, hub, _ := star(t, 3, 0)
	squash := func(id structure.NodeID) (mgl64.Vec2, bool) {
		return mgl64.Vec2{float64(id) * 10, 5}, id != hub
	}
	for _, p := range NewEngine(DefaultConfig()).Compute(s, squash, nil)[hub].Pairs {
		if p.Torque != 0 || p.NormalizedTorque != 0 {
			t.Errorf("free hinge pair %+v has torque", p)
		}
	}
}

func TestLoadPathFromStoredStress(t *testing.T) {
	s, hub, segs := star(t, 2, 1)
	if err := s.SetSegmentStress(segs[0], 0.3); err != nil {
		t.Fatal(err)
	}
	if err := s.SetSegmentStress(segs[1], 0.7); err != nil {
		t.Fatal(err)
	}
	e := NewEngine(DefaultConfig())
	if got := e.Compute(s, nil, nil)[hub].Pairs[0].LoadPathStress; got != 0.3 {
		t.Errorf("load path stress = %v, want 0.3", got)
	}

	s.ClearSegmentStress(segs[1])
	if got := e.Compute(s, nil, nil)[hub].Pairs[0].LoadPathStress; got != 0 {
		t.Errorf("load path stress with a missing value = %v, want 0", got)
	}
}

type fixedStress map[structure.SegmentID]float64

func (f fixedStress) Stress(id structure.SegmentID) (float64, bool) {
	v, ok := f[id]
	return v, ok
}

func TestLoadPathFromLookup(t *testing.T) {
	s, hub, segs := star(t, 3, 1)
	lookup := fixedStress{segs[0]: 0.9, segs[1]: 0.4, segs[2]: 0.6}
	pairs := NewEngine(DefaultConfig()).Compute(s, nil, lookup)[hub].Pairs
	want := []float64{0.4, 0.6, 0.4}
	for i, p := range pairs {
		if p.LoadPathStress != want[i] {
			t.Errorf("pair %d load path = %v, want %v", i, p.LoadPathStress, want[i])
		}
	}
}

func TestZeroLengthSegmentDoesNotPoison(t *testing.T) {
	s := structure.New()
	hub := s.AddNode(mgl64.Vec2{0, 0}, structure.WithAngularStiffness(1))
	twin := s.AddNode(mgl64.Vec2{0, 0})
	east := s.AddNode(mgl64.Vec2{100, 0})
	if _, err := s.AddSegment(hub, twin, material.Beam); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddSegment(hub, east, material.Beam); err != nil {
		t.Fatal(err)
	}
	j := NewEngine(DefaultConfig()).Compute(s, nil, nil)[hub]
	if len(j.Pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(j.Pairs))
	}
	p := j.Pairs[0]
	if math.IsNaN(p.Angle) || math.IsNaN(p.Torque) || math.IsNaN(p.NormalizedTorque) {
		t.Errorf("NaN leaked into pair %+v", p)
	}
}

func TestPeak(t *testing.T) {
	joints := map[structure.NodeID]Joint{
		3: {Node: 3, Pairs: []AnglePair{{NormalizedTorque: 0.2}}},
		7: {Node: 7, Pairs: []AnglePair{{NormalizedTorque: 0.1}, {NormalizedTorque: 0.8}}},
	}
	node, v := Peak(joints)
	if node != 7 || v != 0.8 {
		t.Errorf("Peak = (%d, %v), want (7, 0.8)", node, v)
	}
	if node, v := Peak(nil); node != 0 || v != 0 {
		t.Errorf("Peak(nil) = (%d, %v)", node, v)
	}
}
