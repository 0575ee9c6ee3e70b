// Package integrators provides fixed-step integrators for the simulated
// device and body. Adaptive schemes are deliberately absent: the host runs
// one step per fixed tick.
package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/wavelink/internal/dynamo"
)

var constructors = map[string]func() dynamo.Integrator{
	"euler":  func() dynamo.Integrator { return NewEuler() },
	"rk4":    func() dynamo.Integrator { return NewRK4() },
	"verlet": func() dynamo.Integrator { return NewVerlet() },
}

// New returns a fresh integrator by name. Integrators hold scratch buffers,
// so each simulated system needs its own instance.
func New(name string) (dynamo.Integrator, error) {
	fn, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

// Names lists the registered integrators in sorted order.
func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
