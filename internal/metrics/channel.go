package metrics

import (
	"github.com/san-kum/wavelink/internal/dynamo"
	"github.com/san-kum/wavelink/internal/wave"
)

// Port names the incoming and outgoing wave columns of one controller.
type Port struct {
	In, Out int
}

// ChannelEnergy integrates the net energy pushed into the link through a
// set of wave ports: sum of (out² - in²)/2 dt. A passive link can only
// store or lose energy, so the running total never drops below zero.
// Rows where the gate column is zero are skipped; a negative gate means
// every row counts.
type ChannelEnergy struct {
	name  string
	ports []Port
	gate  int

	energy  float64
	min     float64
	prevT   float64
	samples int
}

func NewChannelEnergy(gate int, ports ...Port) *ChannelEnergy {
	return &ChannelEnergy{name: "channel_energy", ports: ports, gate: gate}
}

func (c *ChannelEnergy) Name() string { return c.name }

func (c *ChannelEnergy) Observe(x dynamo.State, u dynamo.Control, t float64) {
	dt := t - c.prevT
	c.prevT = t
	if c.gate >= 0 && x.At(c.gate) == 0 {
		return
	}
	for _, p := range c.ports {
		c.energy -= wave.PortPower(x.At(p.In), x.At(p.Out)) * dt
	}
	if c.samples == 0 || c.energy < c.min {
		c.min = c.energy
	}
	c.samples++
}

func (c *ChannelEnergy) Value() float64 { return c.energy }

// Min is the lowest running total observed.
func (c *ChannelEnergy) Min() float64 { return c.min }

func (c *ChannelEnergy) Reset() {
	c.energy = 0
	c.min = 0
	c.prevT = 0
	c.samples = 0
}

// PortPower is the mean power entering one wave port from the link,
// (u² - v²)/2, equal to the measured force times the commanded velocity.
type PortPower struct {
	name    string
	port    Port
	sum     float64
	samples int
}

func NewPortPower(name string, p Port) *PortPower {
	return &PortPower{name: name, port: p}
}

func (p *PortPower) Name() string { return p.name }

func (p *PortPower) Observe(x dynamo.State, u dynamo.Control, t float64) {
	p.sum += wave.PortPower(x.At(p.port.In), x.At(p.port.Out))
	p.samples++
}

func (p *PortPower) Value() float64 {
	if p.samples == 0 {
		return 0
	}
	return p.sum / float64(p.samples)
}

func (p *PortPower) Reset() {
	p.sum = 0
	p.samples = 0
}
