package integrators

import "github.com/san-kum/wavelink/internal/dynamo"

// Euler is explicit forward Euler. It matches the force integrator used by
// the wave controller, which makes it the reference for consistency checks.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t float64, dt float64) dynamo.State {
	dx := dyn.Derive(x, u, t)
	result := make(dynamo.State, len(x))
	for i := range x {
		result[i] = x[i] + dt*dx[i]
	}
	return result
}
