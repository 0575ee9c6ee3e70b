// Package physics provides the one-axis dynamical models driven by the
// teleoperation host.
//
// Each model implements the [dynamo.System] interface:
//
//   - [Device]: haptic handle held by the operator, a mass pulled toward
//     the commanded setpoint by helper stiffness and damping
//   - [Body]: the controlled rigid body whose velocity the wave controller
//     commands directly
//
// [Device] also implements [dynamo.Configurable] for runtime tuning and
// [dynamo.Hamiltonian] for energy bookkeeping:
//
//	dev := physics.NewDevice()
//	if h, ok := any(dev).(dynamo.Hamiltonian); ok {
//	    energy := h.Energy(state)
//	}
package physics
