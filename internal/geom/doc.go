// Package geom holds the small set of planar helpers shared by the
// structure model and the per-step engines.
//
// All functions are pure and operate on [mgl64.Vec2]. Degenerate inputs
// (coincident points, zero vectors) resolve to a defined value instead of
// NaN:
//
//	t, p := geom.ProjectOntoSegment(cursor, a, b)
//	angle := geom.AngleBetween(u, v) // 0 when either vector is zero
package geom
