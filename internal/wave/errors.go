package wave

import "errors"

var (
	// ErrImpedance indicates a wave impedance that is not strictly positive and finite.
	ErrImpedance = errors.New("wave: impedance must be positive and finite")

	// ErrDriftGain indicates a negative or non-finite drift-correction gain.
	ErrDriftGain = errors.New("wave: drift gain must be non-negative and finite")

	// ErrUnbound indicates an operation that needs an axis before one was bound.
	ErrUnbound = errors.New("wave: no axis bound")

	// ErrNoChannel indicates a controller constructed without a remote channel.
	ErrNoChannel = errors.New("wave: nil channel")
)
