// Package wave implements one side of a bilateral teleoperation link using
// the wave-variable transform.
//
// Instead of exchanging force and position, each side exchanges the wave
// variable u and its time integral U. A [Controller] turns the received
// pair and the locally measured force into a velocity command for the
// controlled body, a position setpoint for the haptic axis, and the
// outgoing pair:
//
//	v_cmd = (sqrt(2b)·u − F) / b        v_out = u − sqrt(2/b)·F
//	x_cmd = (sqrt(2b)·U − p) / b        V_out = U − sqrt(2/b)·p
//
// where b is the wave impedance and p is the running integral of F. Because
// only wave variables cross the link, transmission delay cannot inject
// energy into the coupled loop.
//
// # Lifecycle
//
// A controller starts Disabled. [Controller.Enable] captures the body
// position as the session origin and zeroes p; [Controller.Disable] publishes
// a zero pair exactly once so the peer is released immediately. The host
// calls [Controller.Step] once per fixed tick and never concurrently.
package wave
