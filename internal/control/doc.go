// Package control provides operator models for the simulated haptic axis.
//
// An operator is a [dynamo.Controller] that maps the device state [x, v]
// to the force the hand applies to the handle:
//
//   - [PID]: a hand tracking a [Profile] target through a PID law
//   - [Manual]: force set from outside, e.g. by the live view
//   - [None]: hands off (zero force)
//
// # Usage
//
//	op := control.NewPID(20, 0, 2, control.Sine{Amplitude: 0.05, Freq: 0.5})
//	f := op.Compute(deviceState, t)[0]
//
// Operators implementing [dynamo.Configurable] support live tuning.
package control
