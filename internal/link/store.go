// Package link provides in-process implementations of the remote channel
// used by wave controllers: a keyed value store per side and a pipe that
// couples two stores with a fixed tick delay.
package link

import (
	"sync"

	"github.com/san-kum/wavelink/internal/wave"
)

// Key addresses one exchanged value.
type Key struct {
	Entity wave.EntityID
	Axis   wave.AxisLabel
	Signal wave.Signal
}

// Store holds the latest outgoing (local) and incoming (remote) values of
// one side. It is safe for concurrent use so a transport goroutine can
// deliver while the control loop reads.
type Store struct {
	mu       sync.RWMutex
	local    map[Key]float64
	remote   map[Key]float64
	received map[Key]bool
}

func NewStore() *Store {
	return &Store{
		local:    make(map[Key]float64),
		remote:   make(map[Key]float64),
		received: make(map[Key]bool),
	}
}

// RemoteValue implements wave.Channel.
func (s *Store) RemoteValue(id wave.EntityID, axis wave.AxisLabel, signal wave.Signal) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.remote[Key{id, axis, signal}]
}

// SetLocalValue implements wave.Channel.
func (s *Store) SetLocalValue(id wave.EntityID, axis wave.AxisLabel, signal wave.Signal, value float64) {
	s.mu.Lock()
	s.local[Key{id, axis, signal}] = value
	s.mu.Unlock()
}

// Deliver records a value received from the peer.
func (s *Store) Deliver(k Key, value float64) {
	s.mu.Lock()
	s.remote[k] = value
	s.received[k] = true
	s.mu.Unlock()
}

// Local returns the value queued for transmission under k.
func (s *Store) Local(k Key) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.local[k]
}

// Received reports whether anything was ever delivered under k.
func (s *Store) Received(k Key) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.received[k]
}

// Outgoing copies every queued local value.
func (s *Store) Outgoing() map[Key]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[Key]float64, len(s.local))
	for k, v := range s.local {
		out[k] = v
	}
	return out
}

// ClearRemote zeroes incoming values, as after a lost connection. Local
// values are kept so the next transmission carries the latest state.
func (s *Store) ClearRemote() {
	s.mu.Lock()
	for k := range s.remote {
		s.remote[k] = 0
	}
	s.mu.Unlock()
}

// Reset forgets everything.
func (s *Store) Reset() {
	s.mu.Lock()
	s.local = make(map[Key]float64)
	s.remote = make(map[Key]float64)
	s.received = make(map[Key]bool)
	s.mu.Unlock()
}
