package config

import (
	"sort"

	"github.com/san-kum/wavelink/internal/session"
)

// Presets are named link conditions. Each is a full config derived from
// the defaults.
var Presets = map[string]*Config{
	"ideal": preset(func(c *Config) {
		c.Delay = 0
	}),
	"lan": preset(func(c *Config) {
		c.Delay = 2
	}),
	"wan": preset(func(c *Config) {
		c.Delay = 20
		c.Duration = 20
	}),
	"satellite": preset(func(c *Config) {
		c.Delay = 60
		c.Duration = 30
		c.Wave.Impedance = 4
	}),
	"dropout": preset(func(c *Config) {
		c.Delay = 10
		c.Events = []session.Event{
			{At: 3, Kind: session.EventDrop},
			{At: 5, Kind: session.EventRestore},
		}
	}),
	"drift": preset(func(c *Config) {
		c.Delay = 10
		c.Wave.DriftGain = 2
		c.Local.Operator.Profile = "ramp"
		c.Local.Operator.ProfileParams = map[string]float64{"rate": 0.02, "max": 0.05}
	}),
	"push": preset(func(c *Config) {
		c.Delay = 5
		c.Duration = 5
		c.Local.Operator = OperatorConfig{Kind: "manual", Force: 2, Limit: DefaultLimit}
		c.Remote.Operator = OperatorConfig{Kind: "none"}
	}),
}

func preset(fn func(*Config)) *Config {
	c := DefaultConfig()
	fn(c)
	return c
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
