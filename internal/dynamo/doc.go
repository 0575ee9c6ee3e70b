// Package dynamo provides the simulation primitives shared by the
// teleoperation host.
//
// The package defines the vector types and small interfaces that the
// simulated collaborators are built from:
//
//   - [State]: vector representing a state or a telemetry row
//   - [System]: interface for ODE systems (dX/dt = f(X, u, t))
//   - [Integrator]: fixed-step numerical integrator interface
//   - [Controller]: state feedback (used for operator models)
//   - [Metric]: running statistic over telemetry rows
//
// # Example
//
//	dev := physics.NewDevice()
//	integ := integrators.NewRK4()
//	x = integ.Step(dev, x, dynamo.Control{setpoint, force}, t, dt)
//
// # Thread Safety
//
// Nothing in this package is safe for concurrent mutation. Parallel work
// goes through [ParallelFor], with each worker owning its own values.
package dynamo
