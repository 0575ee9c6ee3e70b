package axis

import (
	"fmt"
	"math"

	"github.com/san-kum/wavelink/internal/control"
	"github.com/san-kum/wavelink/internal/dynamo"
	"github.com/san-kum/wavelink/internal/physics"
)

// Sim is a simulated axis. The device frame is Orientation times the body
// frame: forces are flipped on the way in and setpoints are not flipped on
// the way out, since the controller already applied the orientation.
//
// The force reported to the controller is the reaction of the handle on
// the operator, so a positive push reads negative and drives the body
// forward through the wave transform.
//
// Sim is driven from a single loop. ScaledForce reports the operator force
// sampled at the end of the previous Advance.
type Sim struct {
	cfg Config

	device    *physics.Device
	body      *physics.Body
	deviceInt dynamo.Integrator
	bodyInt   dynamo.Integrator
	operator  dynamo.Controller

	deviceState dynamo.State
	bodyState   dynamo.State

	setpoint float64
	force    float64
	t        float64

	velocitySets int
}

// New builds a Sim at rest at the origin. Each system gets its own
// integrator instance; a nil operator means hands off.
func New(cfg Config, device *physics.Device, body *physics.Body, deviceInt, bodyInt dynamo.Integrator, operator dynamo.Controller) (*Sim, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if device == nil {
		device = physics.NewDevice()
	}
	if body == nil {
		body = physics.NewBody()
	}
	if operator == nil {
		operator = control.NewNone()
	}
	if deviceInt == nil || bodyInt == nil {
		return nil, fmt.Errorf("integrator required: %w", ErrConfig)
	}

	s := &Sim{
		cfg:         cfg,
		device:      device,
		body:        body,
		deviceInt:   deviceInt,
		bodyInt:     bodyInt,
		operator:    operator,
		deviceState: make(dynamo.State, device.StateDim()),
		bodyState:   make(dynamo.State, body.StateDim()),
	}
	s.sample()
	return s, nil
}

func (s *Sim) sample() {
	u := s.operator.Compute(s.deviceState, s.t)
	s.force = 0
	if len(u) > 0 {
		s.force = u[0]
	}
}

// ScaledForce implements wave.Axis.
func (s *Sim) ScaledForce() float64 {
	return -clamp(s.force/s.cfg.ForceRange, -1, 1) * s.cfg.Orientation
}

// SetScaledPosition implements wave.Axis. Values outside [-1, 1] are clamped.
func (s *Sim) SetScaledPosition(v float64) {
	if math.IsNaN(v) {
		return
	}
	s.setpoint = clamp(v, -1, 1)
}

func (s *Sim) SetHelperStiffness(v float64) {
	if v >= 0 {
		s.device.Stiffness = v
	}
}

func (s *Sim) SetHelperDamping(v float64) {
	if v >= 0 {
		s.device.Damping = v
	}
}

func (s *Sim) BodyPosition() float64 { return s.bodyState[0] }
func (s *Sim) BodyVelocity() float64 { return s.bodyState[1] }

func (s *Sim) SetBodyVelocity(v float64) {
	s.bodyState[1] = v
	s.velocitySets++
}

func (s *Sim) Range() float64       { return s.cfg.Range }
func (s *Sim) Orientation() float64 { return s.cfg.Orientation }

// Advance integrates the device toward the current setpoint under the
// operator force, integrates the body, then samples the operator again.
func (s *Sim) Advance(dt float64) error {
	u := dynamo.Control{s.setpoint * s.cfg.Range, s.force}
	nextDevice := s.deviceInt.Step(s.device, s.deviceState, u, s.t, dt)
	nextBody := s.bodyInt.Step(s.body, s.bodyState, nil, s.t, dt)

	if !nextDevice.IsValid() || !nextBody.IsValid() {
		return &dynamo.SimulationError{
			Time:    s.t,
			State:   append(s.deviceState.Clone(), s.bodyState...),
			Wrapped: dynamo.ErrInvalidState,
		}
	}

	s.deviceState = nextDevice
	s.bodyState = nextBody
	s.t += dt
	s.sample()
	return nil
}

// Reset returns device and body to rest at the origin and clears the clock.
func (s *Sim) Reset() {
	for i := range s.deviceState {
		s.deviceState[i] = 0
	}
	for i := range s.bodyState {
		s.bodyState[i] = 0
	}
	s.setpoint = 0
	s.t = 0
	s.velocitySets = 0
	if r, ok := s.operator.(interface{ Reset() }); ok {
		r.Reset()
	}
	s.sample()
}

func (s *Sim) Config() Config                { return s.cfg }
func (s *Sim) Time() float64                 { return s.t }
func (s *Sim) Setpoint() float64             { return s.setpoint }
func (s *Sim) OperatorForce() float64        { return s.force }
func (s *Sim) Operator() dynamo.Controller   { return s.operator }
func (s *Sim) Device() *physics.Device       { return s.device }
func (s *Sim) DeviceState() dynamo.State     { return s.deviceState.Clone() }
func (s *Sim) BodyState() dynamo.State       { return s.bodyState.Clone() }
func (s *Sim) DevicePosition() float64       { return s.deviceState[0] }
func (s *Sim) VelocityCommands() int         { return s.velocitySets }

// Energy is the combined mechanical energy of device and body.
func (s *Sim) Energy() float64 {
	return s.device.Energy(s.deviceState) + s.body.Energy(s.bodyState)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
