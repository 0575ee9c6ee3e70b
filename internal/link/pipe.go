package link

import (
	"fmt"
	"sync"
)

type frame map[Key]float64

// Pipe couples two stores. Each Tick samples both sides' outgoing values
// and delivers the samples taken Delay ticks earlier to the opposite side.
// A delay of zero delivers within the same tick.
type Pipe struct {
	mu    sync.Mutex
	a, b  *Store
	delay int
	down  bool

	// queues hold frames in send order, oldest first
	toA []frame
	toB []frame

	sent, delivered int
}

func NewPipe(a, b *Store, delay int) (*Pipe, error) {
	if a == nil || b == nil {
		return nil, fmt.Errorf("link: pipe needs two stores")
	}
	if delay < 0 {
		return nil, fmt.Errorf("link: negative delay %d", delay)
	}
	return &Pipe{a: a, b: b, delay: delay}, nil
}

// Tick moves one frame in each direction.
func (p *Pipe) Tick() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.down {
		return
	}

	p.toB = append(p.toB, p.a.Outgoing())
	p.toA = append(p.toA, p.b.Outgoing())
	p.sent++

	for len(p.toB) > p.delay {
		deliver(p.b, p.toB[0])
		p.toB = p.toB[1:]
		deliver(p.a, p.toA[0])
		p.toA = p.toA[1:]
		p.delivered++
	}
}

func deliver(s *Store, f frame) {
	for k, v := range f {
		s.Deliver(k, v)
	}
}

// SetDelay changes the one-way delay in ticks. Frames already in flight
// beyond the new delay are delivered on the next Tick.
func (p *Pipe) SetDelay(n int) error {
	if n < 0 {
		return fmt.Errorf("link: negative delay %d", n)
	}
	p.mu.Lock()
	p.delay = n
	p.mu.Unlock()
	return nil
}

func (p *Pipe) Delay() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.delay
}

// SetDown simulates losing or restoring the connection. Going down drops
// everything in flight and zeroes what both sides last received.
func (p *Pipe) SetDown(down bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if down == p.down {
		return
	}
	p.down = down
	if down {
		p.toA, p.toB = nil, nil
		p.a.ClearRemote()
		p.b.ClearRemote()
	}
}

func (p *Pipe) Up() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.down
}

// InFlight returns the number of frames queued in each direction.
func (p *Pipe) InFlight() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.toB)
}

// Stats returns how many frames were sent and delivered per direction.
func (p *Pipe) Stats() (sent, delivered int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sent, p.delivered
}
