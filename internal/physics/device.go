package physics

import (
	"fmt"

	"github.com/san-kum/wavelink/internal/dynamo"
)

const (
	DefaultMass      = 0.5
	DefaultStiffness = 40.0
	DefaultDamping   = 4.0
)

// Device is a single-axis haptic handle. State is [x, v]; control is
// [setpoint, operatorForce] with setpoint in metres.
type Device struct {
	Mass      float64
	Stiffness float64
	Damping   float64
}

func NewDevice() *Device {
	return &Device{
		Mass:      DefaultMass,
		Stiffness: DefaultStiffness,
		Damping:   DefaultDamping,
	}
}

func (d *Device) StateDim() int   { return 2 }
func (d *Device) ControlDim() int { return 2 }

func (d *Device) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	pos, vel := x[0], x[1]

	var setpoint, force float64
	if len(u) > 0 {
		setpoint = u[0]
	}
	if len(u) > 1 {
		force = u[1]
	}

	total := d.Stiffness*(setpoint-pos) - d.Damping*vel + force
	return dynamo.State{vel, total / d.Mass}
}

// Energy is kinetic energy plus the helper spring energy about the origin.
func (d *Device) Energy(x dynamo.State) float64 {
	pos, vel := x[0], x[1]
	return 0.5*d.Mass*vel*vel + 0.5*d.Stiffness*pos*pos
}

func (d *Device) GetParams() map[string]float64 {
	return map[string]float64{
		"mass":      d.Mass,
		"stiffness": d.Stiffness,
		"damping":   d.Damping,
	}
}

func (d *Device) SetParam(name string, value float64) error {
	switch name {
	case "mass":
		if value <= 0 {
			return fmt.Errorf("mass %f: %w", value, dynamo.ErrParameterBounds)
		}
		d.Mass = value
	case "stiffness":
		if value < 0 {
			return fmt.Errorf("stiffness %f: %w", value, dynamo.ErrParameterBounds)
		}
		d.Stiffness = value
	case "damping":
		if value < 0 {
			return fmt.Errorf("damping %f: %w", value, dynamo.ErrParameterBounds)
		}
		d.Damping = value
	default:
		return fmt.Errorf("%s: %w", name, dynamo.ErrUnknownParameter)
	}
	return nil
}
