// Package config holds the YAML run configuration and its named presets.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/wavelink/internal/axis"
	"github.com/san-kum/wavelink/internal/session"
	"github.com/san-kum/wavelink/internal/wave"
)

const (
	DefaultDt         = 0.01
	DefaultDuration   = 10.0
	DefaultIntegrator = "rk4"
	DefaultDelay      = 5
	DefaultKp         = 60.0
	DefaultKd         = 3.0
	DefaultLimit      = 10.0
)

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Integrator string          `yaml:"integrator"`
	Dt         float64         `yaml:"dt"`
	Duration   float64         `yaml:"duration"`
	Seed       int64           `yaml:"seed"`
	Delay      int             `yaml:"delay"`
	Wave       wave.Params     `yaml:"wave"`
	Local      PeerConfig      `yaml:"local"`
	Remote     PeerConfig      `yaml:"remote"`
	Events     []session.Event `yaml:"events,omitempty"`
}

type PeerConfig struct {
	Axis     axis.Config    `yaml:"axis"`
	Device   DeviceConfig   `yaml:"device"`
	BodyDrag float64        `yaml:"body_drag"`
	Operator OperatorConfig `yaml:"operator"`
}

type DeviceConfig struct {
	Mass      float64 `yaml:"mass"`
	Stiffness float64 `yaml:"stiffness"`
	Damping   float64 `yaml:"damping"`
}

// OperatorConfig selects how the operator at one end behaves. Profile and
// ProfileParams only apply to "pid"; Force only to "manual".
type OperatorConfig struct {
	Kind          string             `yaml:"kind"`
	Kp            float64            `yaml:"kp"`
	Ki            float64            `yaml:"ki"`
	Kd            float64            `yaml:"kd"`
	Limit         float64            `yaml:"limit"`
	Force         float64            `yaml:"force,omitempty"`
	Profile       string             `yaml:"profile,omitempty"`
	ProfileParams map[string]float64 `yaml:"profile_params,omitempty"`
}

func defaultPeer() PeerConfig {
	return PeerConfig{
		Axis: axis.DefaultConfig(),
		Device: DeviceConfig{
			Mass:      0.5,
			Stiffness: 40,
			Damping:   4,
		},
		Operator: OperatorConfig{
			Kind:    "pid",
			Kp:      DefaultKp,
			Kd:      DefaultKd,
			Limit:   DefaultLimit,
			Profile: "hold",
		},
	}
}

func DefaultConfig() *Config {
	local := defaultPeer()
	local.Operator.Profile = "sine"
	local.Operator.ProfileParams = map[string]float64{"amplitude": 0.03, "freq": 0.5}

	remote := defaultPeer()
	remote.Operator.Kp = 20
	remote.Operator.Kd = 1

	return &Config{
		Integrator: DefaultIntegrator,
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		Delay:      DefaultDelay,
		Wave:       wave.DefaultParams(),
		Local:      local,
		Remote:     remote,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults, so a file only needs the fields
// it changes.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Events = append([]session.Event(nil), c.Events...)
	out.Local.Operator.ProfileParams = cloneParams(c.Local.Operator.ProfileParams)
	out.Remote.Operator.ProfileParams = cloneParams(c.Remote.Operator.ProfileParams)
	return &out
}

func cloneParams(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (c *Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f: %w", c.Dt, ErrInvalid)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f: %w", c.Duration, ErrInvalid)
	}
	if c.Delay < 0 {
		return fmt.Errorf("delay must not be negative, got %d: %w", c.Delay, ErrInvalid)
	}
	if err := c.Wave.Validate(); err != nil {
		return err
	}
	for name, p := range map[string]PeerConfig{"local": c.Local, "remote": c.Remote} {
		if err := p.Axis.Validate(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if p.Device.Mass <= 0 {
			return fmt.Errorf("%s: device mass must be positive: %w", name, ErrInvalid)
		}
	}
	for _, e := range c.Events {
		if err := e.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// SessionConfig returns the timing and events of a run.
func (c *Config) SessionConfig() session.Config {
	sc := session.DefaultConfig()
	sc.Dt = c.Dt
	sc.Duration = c.Duration
	sc.Seed = c.Seed
	sc.Events = append([]session.Event(nil), c.Events...)
	return sc
}

// OperatorParams flattens an operator config into the map form used by the
// registry.
func (o OperatorConfig) OperatorParams() map[string]float64 {
	return map[string]float64{
		"kp":    o.Kp,
		"ki":    o.Ki,
		"kd":    o.Kd,
		"limit": o.Limit,
		"force": o.Force,
	}
}
