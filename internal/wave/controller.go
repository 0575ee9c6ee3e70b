package wave

import (
	"fmt"
	"log/slog"
	"math"
)

type Mode int

const (
	Disabled Mode = iota
	Enabled
)

func (m Mode) String() string {
	if m == Enabled {
		return "enabled"
	}
	return "disabled"
}

// Snapshot is a read-only copy of a controller's per-cycle values.
type Snapshot struct {
	Mode             Mode
	Force            float64
	Momentum         float64
	Origin           float64
	Position         float64
	AbsolutePosition float64
	Velocity         float64
	InputVelocity    float64
	InputPosition    float64
	WaveIn           float64
	WaveIntegralIn   float64
	WaveOut          float64
	WaveIntegralOut  float64
}

// Controller runs the wave-variable control law for one entity and axis.
// It is not safe for concurrent use; the host steps it from a single loop.
type Controller struct {
	id     EntityID
	label  AxisLabel
	ch     Channel
	axis   Axis
	params Params
	logger *slog.Logger

	mode     Mode
	stepping bool

	force    float64
	momentum float64
	origin   float64

	inputVelocity float64
	inputPosition float64

	waveIn, waveIntegralIn   float64
	waveOut, waveIntegralOut float64
}

type Option func(*Controller)

func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithAxis binds the axis at construction time.
func WithAxis(a Axis) Option {
	return func(c *Controller) { c.axis = a }
}

// New creates a disabled controller publishing on ch. Invalid parameters are
// rejected here so the control law never divides by a non-positive impedance.
func New(id EntityID, label AxisLabel, ch Channel, p Params, opts ...Option) (*Controller, error) {
	if ch == nil {
		return nil, ErrNoChannel
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	c := &Controller{
		id:     id,
		label:  label,
		ch:     ch,
		params: p,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("entity", int(id), "axis", string(label))
	return c, nil
}

// Bind attaches the local axis. Binding while enabled does not move the
// origin; re-enable to capture a new one.
func (c *Controller) Bind(a Axis) {
	c.axis = a
}

func (c *Controller) Bound() bool { return c.axis != nil }

// Enable captures the current body position as origin and zeroes the force
// integral. Calling it while enabled starts a fresh session.
func (c *Controller) Enable() error {
	if c.axis == nil {
		return ErrUnbound
	}
	c.origin = c.axis.BodyPosition()
	c.momentum = 0
	c.force = 0
	c.inputVelocity = 0
	c.inputPosition = 0
	c.mode = Enabled
	c.logger.Debug("wave controller enabled", "origin", c.origin)
	return nil
}

// Disable releases the peer by publishing a zero pair once, then stops
// stepping. It is a no-op when already disabled.
func (c *Controller) Disable() {
	if c.mode != Enabled {
		return
	}
	c.waveOut, c.waveIntegralOut = 0, 0
	c.publish()
	c.mode = Disabled
	c.logger.Debug("wave controller disabled", "momentum", c.momentum)
}

// Step executes one fixed tick of length dt. It does nothing while disabled.
func (c *Controller) Step(dt float64) {
	if c.mode != Enabled {
		return
	}
	if c.stepping {
		panic(fmt.Sprintf("wave: re-entrant Step on entity %d", c.id))
	}
	c.stepping = true
	defer func() { c.stepping = false }()

	b := c.params.Impedance

	c.waveIn = c.ch.RemoteValue(c.id, c.label, Wave)
	c.waveIntegralIn = c.ch.RemoteValue(c.id, c.label, WaveIntegral)

	c.force = c.axis.ScaledForce()
	if math.IsNaN(c.force) || math.IsInf(c.force, 0) {
		c.logger.Warn("non-finite force treated as zero", "force", c.force)
		c.force = 0
	}
	c.momentum += c.force * dt

	c.inputVelocity = CommandVelocity(c.waveIn, c.force, b)
	c.inputPosition = CommandVelocity(c.waveIntegralIn, c.momentum, b)

	rel := c.axis.BodyPosition() - c.origin

	// A zero wave means the peer is idle or gone; leave the body alone.
	if c.waveIn != 0 {
		c.axis.SetBodyVelocity(c.inputVelocity + c.params.DriftGain*(c.inputPosition-rel))
	}

	setpoint := 0.0
	if r := c.axis.Range(); r > 0 {
		setpoint = clamp(rel/r*c.axis.Orientation(), -1, 1)
	}
	c.axis.SetScaledPosition(setpoint)

	c.waveOut = OutgoingWave(c.waveIn, c.force, b)
	c.waveIntegralOut = OutgoingWave(c.waveIntegralIn, c.momentum, b)
	c.publish()
}

func (c *Controller) publish() {
	c.ch.SetLocalValue(c.id, c.label, Wave, c.waveOut)
	c.ch.SetLocalValue(c.id, c.label, WaveIntegral, c.waveIntegralOut)
}

func (c *Controller) ID() EntityID           { return c.id }
func (c *Controller) Label() AxisLabel       { return c.label }
func (c *Controller) Mode() Mode             { return c.mode }
func (c *Controller) Params() Params         { return c.params }
func (c *Controller) OutputForce() float64   { return c.force }
func (c *Controller) Momentum() float64      { return c.momentum }
func (c *Controller) Origin() float64        { return c.origin }
func (c *Controller) InputPosition() float64 { return c.inputPosition }
func (c *Controller) InputVelocity() float64 { return c.inputVelocity }

// Outgoing returns the pair published on the last step or disable.
func (c *Controller) Outgoing() (wave, integral float64) {
	return c.waveOut, c.waveIntegralOut
}

// Incoming returns the pair read on the last step.
func (c *Controller) Incoming() (wave, integral float64) {
	return c.waveIn, c.waveIntegralIn
}

func (c *Controller) RelativePosition() float64 {
	if c.axis == nil {
		return 0
	}
	return c.axis.BodyPosition() - c.origin
}

func (c *Controller) AbsolutePosition() float64 {
	if c.axis == nil {
		return 0
	}
	return c.axis.BodyPosition()
}

func (c *Controller) Velocity() float64 {
	if c.axis == nil {
		return 0
	}
	return c.axis.BodyVelocity()
}

func (c *Controller) Snapshot() Snapshot {
	return Snapshot{
		Mode:             c.mode,
		Force:            c.force,
		Momentum:         c.momentum,
		Origin:           c.origin,
		Position:         c.RelativePosition(),
		AbsolutePosition: c.AbsolutePosition(),
		Velocity:         c.Velocity(),
		InputVelocity:    c.inputVelocity,
		InputPosition:    c.inputPosition,
		WaveIn:           c.waveIn,
		WaveIntegralIn:   c.waveIntegralIn,
		WaveOut:          c.waveOut,
		WaveIntegralOut:  c.waveIntegralOut,
	}
}

func (c *Controller) SetHelperStiffness(v float64) {
	if c.axis != nil {
		c.axis.SetHelperStiffness(v)
	}
}

func (c *Controller) SetHelperDamping(v float64) {
	if c.axis != nil {
		c.axis.SetHelperDamping(v)
	}
}

// SetImpedance changes b at runtime, clamping to MinImpedance.
func (c *Controller) SetImpedance(b float64) {
	if math.IsNaN(b) || math.IsInf(b, 0) {
		return
	}
	c.params.Impedance = math.Max(b, MinImpedance)
}

// SetDriftGain changes g at runtime; negative values disable correction.
func (c *Controller) SetDriftGain(g float64) {
	if math.IsNaN(g) || math.IsInf(g, 0) {
		return
	}
	c.params.DriftGain = math.Max(g, 0)
}

// GetParams and SetParam expose the law for live tuning.
func (c *Controller) GetParams() map[string]float64 {
	return map[string]float64{
		"impedance":  c.params.Impedance,
		"drift_gain": c.params.DriftGain,
	}
}

func (c *Controller) SetParam(name string, value float64) error {
	switch name {
	case "impedance":
		c.SetImpedance(value)
	case "drift_gain":
		c.SetDriftGain(value)
	default:
		return fmt.Errorf("wave: unknown param: %s", name)
	}
	return nil
}
