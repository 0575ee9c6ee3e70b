package control

import (
	"fmt"

	"github.com/san-kum/wavelink/internal/dynamo"
)

// PID models an operator hand pulling the handle toward Profile's target.
// Limit saturates the output force when positive.
type PID struct {
	Kp      float64
	Ki      float64
	Kd      float64
	Limit   float64
	Profile Profile

	integral float64
	prevErr  float64
	prevT    float64
	first    bool
}

func NewPID(kp, ki, kd float64, profile Profile) *PID {
	if profile == nil {
		profile = Hold{}
	}
	return &PID{
		Kp:      kp,
		Ki:      ki,
		Kd:      kd,
		Profile: profile,
		first:   true,
	}
}

func (p *PID) Compute(x dynamo.State, t float64) dynamo.Control {
	if len(x) < 2 {
		return dynamo.Control{0}
	}

	err := p.Profile.Target(t) - x[0]

	if p.first {
		p.prevErr = err
		p.prevT = t
		p.first = false
		return dynamo.Control{p.saturate(p.Kp * err)}
	}

	dt := t - p.prevT
	if dt > 0 {
		p.integral += err * dt
		derivative := (err - p.prevErr) / dt

		u := p.Kp*err + p.Ki*p.integral + p.Kd*derivative

		p.prevErr = err
		p.prevT = t

		return dynamo.Control{p.saturate(u)}
	}
	return dynamo.Control{p.saturate(p.Kp * err)}
}

func (p *PID) saturate(u float64) float64 {
	if p.Limit <= 0 {
		return u
	}
	if u > p.Limit {
		return p.Limit
	}
	if u < -p.Limit {
		return -p.Limit
	}
	return u
}

// Reset clears integral and derivative state
func (p *PID) Reset() {
	p.integral = 0
	p.prevErr = 0
	p.prevT = 0
	p.first = true
}

// GetParams returns tunable parameters for live adjustment
func (p *PID) GetParams() map[string]float64 {
	return map[string]float64{
		"Kp":    p.Kp,
		"Ki":    p.Ki,
		"Kd":    p.Kd,
		"Limit": p.Limit,
	}
}

// SetParam adjusts a PID parameter
func (p *PID) SetParam(name string, value float64) error {
	switch name {
	case "Kp":
		p.Kp = value
	case "Ki":
		p.Ki = value
	case "Kd":
		p.Kd = value
	case "Limit":
		p.Limit = value
	default:
		return fmt.Errorf("%s: %w", name, dynamo.ErrUnknownParameter)
	}
	return nil
}
