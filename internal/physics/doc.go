// Package physics bridges a [structure.Structure] to a Chipmunk space
// (github.com/jakecoffman/cp).
//
// A [Manager] has two states, stopped and running. Start builds one circle
// body per node, a damped spring per segment and a body plus one or two
// springs per weight, over a static ground box. Advance runs the slack
// pre-step and then integrates; there is no callback registration, so tests
// drive it directly:
//
//	m := physics.NewManager(physics.DefaultConfig())
//	if err := m.Start(s); err != nil { ... }
//	for i := 0; i < 600; i++ {
//	    m.Advance(1.0 / 60)
//	}
//	m.Stop(s) // node positions are written back into s
//
// # Thread Safety
//
// All methods are safe for concurrent use. Readers either see a complete
// runtime or none: Stop tears everything down under the write lock.
package physics
