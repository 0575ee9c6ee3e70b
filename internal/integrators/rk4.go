package integrators

import "github.com/san-kum/wavelink/internal/dynamo"

// RK4 is the classical fourth-order Runge-Kutta scheme. The control is held
// constant across the four stages, matching the zero-order hold of a fixed
// control tick.
type RK4 struct {
	k     [4]dynamo.State
	probe dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

// rk4Stages are the stage offsets as fractions of dt.
var rk4Stages = [4]float64{0, 0.5, 0.5, 1}

func (r *RK4) resize(n int) {
	if len(r.probe) == n {
		return
	}
	for i := range r.k {
		r.k[i] = make(dynamo.State, n)
	}
	r.probe = make(dynamo.State, n)
}

func (r *RK4) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	n := len(x)
	r.resize(n)

	copy(r.k[0], dyn.Derive(x, u, t))
	for s := 1; s < 4; s++ {
		h := rk4Stages[s] * dt
		for i := 0; i < n; i++ {
			r.probe[i] = x[i] + h*r.k[s-1][i]
		}
		copy(r.k[s], dyn.Derive(r.probe, u, t+h))
	}

	next := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		next[i] = x[i] + dt/6*(r.k[0][i]+2*r.k[1][i]+2*r.k[2][i]+r.k[3][i])
	}
	return next
}
