package control

import "github.com/san-kum/wavelink/internal/dynamo"

// Manual passes a manually set force to the device.
// Used by the live view's push keys.
type Manual struct {
	Force float64
	Limit float64
}

func NewManual(limit float64) *Manual {
	return &Manual{Limit: limit}
}

// SetForce updates the applied force, saturating at Limit when set.
func (m *Manual) SetForce(f float64) {
	if m.Limit > 0 {
		if f > m.Limit {
			f = m.Limit
		} else if f < -m.Limit {
			f = -m.Limit
		}
	}
	m.Force = f
}

// Nudge adds df to the applied force.
func (m *Manual) Nudge(df float64) {
	m.SetForce(m.Force + df)
}

// Compute returns the stored force.
func (m *Manual) Compute(x dynamo.State, t float64) dynamo.Control {
	return dynamo.Control{m.Force}
}
