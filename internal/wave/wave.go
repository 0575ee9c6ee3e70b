package wave

import (
	"fmt"
	"math"
)

// EntityID identifies the controlled entity on both ends of the link.
type EntityID uint8

// AxisLabel names the constrained motion axis, e.g. "z".
type AxisLabel string

const AxisZ AxisLabel = "z"

// Signal names one of the two values exchanged per entity and axis.
type Signal string

const (
	Wave         Signal = "wave"
	WaveIntegral Signal = "wave_integral"
)

// Signals lists every signal a controller publishes, in publish order.
var Signals = []Signal{Wave, WaveIntegral}

const (
	DefaultImpedance = 1.0
	// MinImpedance is the floor applied by runtime impedance changes.
	MinImpedance = 1e-3
)

// Axis is the local actuator. Force is returned already scaled and
// direction-corrected; the position command is normalised to [-1, 1].
type Axis interface {
	ScaledForce() float64
	SetScaledPosition(value float64)
	SetHelperStiffness(value float64)
	SetHelperDamping(value float64)
	BodyPosition() float64
	BodyVelocity() float64
	SetBodyVelocity(value float64)
	// Range is the body travel mapped to a full-scale position command.
	Range() float64
	// Orientation is +1 or -1 depending on how the axis is mounted.
	Orientation() float64
}

// Channel stores the latest values received from and queued for the peer.
// Both calls must be non-blocking.
type Channel interface {
	// RemoteValue returns the last received value, or 0 if none arrived yet.
	RemoteValue(id EntityID, axis AxisLabel, signal Signal) float64
	SetLocalValue(id EntityID, axis AxisLabel, signal Signal, value float64)
}

// Params are the tunable constants of the control law.
type Params struct {
	// Impedance is the wave impedance b.
	Impedance float64 `yaml:"impedance" json:"impedance"`
	// DriftGain is the position drift-correction gain g. Zero disables it.
	DriftGain float64 `yaml:"drift_gain" json:"drift_gain"`
}

func DefaultParams() Params {
	return Params{Impedance: DefaultImpedance}
}

func (p Params) Validate() error {
	if !(p.Impedance > 0) || math.IsInf(p.Impedance, 0) {
		return fmt.Errorf("impedance %v: %w", p.Impedance, ErrImpedance)
	}
	if !(p.DriftGain >= 0) || math.IsInf(p.DriftGain, 0) {
		return fmt.Errorf("drift gain %v: %w", p.DriftGain, ErrDriftGain)
	}
	return nil
}

// CommandVelocity decodes a received wave into the local motion command:
// (sqrt(2b)·u − F) / b. Applied to (U, p) it yields the position command.
func CommandVelocity(u, force, b float64) float64 {
	return (math.Sqrt(2*b)*u - force) / b
}

// OutgoingWave encodes the returning wave: u − sqrt(2/b)·F. Applied to
// (U, p) it yields the outgoing wave integral.
func OutgoingWave(u, force, b float64) float64 {
	return u - math.Sqrt(2/b)*force
}

// PortPower is the power flowing into a wave port, (u² − v²)/2.
func PortPower(in, out float64) float64 {
	return 0.5 * (in*in - out*out)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
