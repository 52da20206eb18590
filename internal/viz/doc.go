// Package viz draws structures in the terminal.
//
// [Canvas] is a Braille dot canvas; [Draw] renders a [Scene] onto it with
// slack segments dashed and joint torque shown as rings. [Model] is a Bubble
// Tea program that advances a physics manager at the render rate.
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	S     - Single step while paused
//	R     - Rebuild the structure and restart
//	J     - Toggle joint torque rings
//	T     - Cycle color themes
//	?     - Show help overlay
package viz
