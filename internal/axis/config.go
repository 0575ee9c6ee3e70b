// Package axis simulates the actuator side of one teleoperation peer: a
// haptic handle pushed by an operator model, and the rigid body the wave
// controller drives. Sim satisfies wave.Axis.
package axis

import (
	"errors"
	"fmt"
	"math"
)

var ErrConfig = errors.New("axis: invalid config")

// Config maps between device units and the normalised values seen by the
// wave controller.
type Config struct {
	// Range is the body travel, in metres, that maps to a full-scale
	// position command.
	Range float64 `yaml:"range" json:"range"`
	// ForceRange is the operator force, in newtons, that maps to a
	// full-scale force reading.
	ForceRange float64 `yaml:"force_range" json:"force_range"`
	// Orientation is +1, or -1 for a device mounted mirrored.
	Orientation float64 `yaml:"orientation" json:"orientation"`
}

func DefaultConfig() Config {
	return Config{
		Range:       0.1,
		ForceRange:  10,
		Orientation: 1,
	}
}

func (c Config) Validate() error {
	if !(c.Range > 0) || math.IsInf(c.Range, 0) {
		return fmt.Errorf("range %v must be positive: %w", c.Range, ErrConfig)
	}
	if !(c.ForceRange > 0) || math.IsInf(c.ForceRange, 0) {
		return fmt.Errorf("force range %v must be positive: %w", c.ForceRange, ErrConfig)
	}
	if c.Orientation != 1 && c.Orientation != -1 {
		return fmt.Errorf("orientation %v must be +1 or -1: %w", c.Orientation, ErrConfig)
	}
	return nil
}

// Mirrored returns c with the orientation flipped.
func (c Config) Mirrored() Config {
	c.Orientation = -c.Orientation
	return c
}
