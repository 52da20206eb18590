// Package joint computes angle and torque data for every pair of segments
// meeting at a node.
//
// For a node with n incident segments the engine reports n(n-1)/2 pairs.
// Each pair carries the current unsigned angle, the rest angle captured
// when the structure was built, the torque implied by the node's angular
// stiffness, a normalized indicator value in [0,1] and the load-path
// stress of the pair. The engine only reads positions; it never touches
// physics state.
package joint
