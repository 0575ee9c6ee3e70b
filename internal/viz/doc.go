// Package viz is the live terminal view of a teleoperation session, built
// on Bubble Tea.
//
// The view runs the session at a fixed control rate and redraws both peers,
// the link and a graph of the two device positions on every frame.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	D     - Drop/restore the link
//	←/→   - Push the local handle (manual operator only)
//	0     - Release the local handle
//	+/-   - Raise/lower the wave impedance on both peers
//	[/]   - Shorten/lengthen the link delay
//	T     - Cycle color themes
//	?     - Show more keys
package viz
