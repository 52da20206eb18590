// Package structure is the editable model of a sandbox build: nodes,
// material-typed segments between them, and weights hung from either.
//
// Entities live in an arena and are addressed by stable integer IDs
// ([NodeID], [SegmentID], [WeightID]); the zero value of each ID means
// "none". Accessors return copies, so callers never alias the arena.
//
// # Rest angles
//
// When a segment is added, the angle it makes with every segment already
// meeting it at either endpoint is captured from the design-time node
// positions. These rest angles are the baseline for joint torque and are
// never re-derived from later geometry.
//
//	s := structure.New()
//	a := s.AddNode(mgl64.Vec2{0, 0}, structure.Fixed())
//	b := s.AddNode(mgl64.Vec2{100, 0})
//	seg, err := s.AddSegment(a, b, material.Cable)
package structure
