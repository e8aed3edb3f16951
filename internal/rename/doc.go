// Package rename implements the coordinated default-branch rename: the
// per-repository migration state machine that sequences branch creation, pull
// request retargeting, default-branch promotion, branch deletion, and content
// rewriting, plus the fleet control loop that drives the state machine across
// every selected repository while isolating per-repository skips.
package rename
