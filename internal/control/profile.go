package control

import (
	"fmt"
	"math"
	"sort"
)

// Profile is the position an operator is trying to reach at time t,
// in metres relative to where the session started.
type Profile interface {
	Target(t float64) float64
}

// Hold keeps a constant target.
type Hold struct {
	Value float64
}

func (h Hold) Target(t float64) float64 { return h.Value }

// Step jumps from From to To at time At.
type Step struct {
	At   float64
	From float64
	To   float64
}

func (s Step) Target(t float64) float64 {
	if t < s.At {
		return s.From
	}
	return s.To
}

// Sine oscillates around Offset.
type Sine struct {
	Amplitude float64
	Freq      float64
	Offset    float64
}

func (s Sine) Target(t float64) float64 {
	return s.Offset + s.Amplitude*math.Sin(2*math.Pi*s.Freq*t)
}

// Ramp moves at Rate starting at Start, saturating at Max when Max is non-zero.
type Ramp struct {
	Start float64
	Rate  float64
	Max   float64
}

func (r Ramp) Target(t float64) float64 {
	if t < r.Start {
		return 0
	}
	v := r.Rate * (t - r.Start)
	if r.Max != 0 && math.Abs(v) > math.Abs(r.Max) {
		return r.Max
	}
	return v
}

var profiles = map[string]func(p map[string]float64) Profile{
	"hold": func(p map[string]float64) Profile { return Hold{Value: p["value"]} },
	"step": func(p map[string]float64) Profile {
		return Step{At: p["at"], From: p["from"], To: p["to"]}
	},
	"sine": func(p map[string]float64) Profile {
		return Sine{Amplitude: p["amplitude"], Freq: p["freq"], Offset: p["offset"]}
	},
	"ramp": func(p map[string]float64) Profile {
		return Ramp{Start: p["start"], Rate: p["rate"], Max: p["max"]}
	},
}

// NewProfile builds a named profile; missing parameters read as zero.
func NewProfile(name string, params map[string]float64) (Profile, error) {
	fn, ok := profiles[name]
	if !ok {
		return nil, fmt.Errorf("unknown profile: %s", name)
	}
	return fn(params), nil
}

func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
