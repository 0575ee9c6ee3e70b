// Package session hosts two wave-variable peers joined by a simulated link
// and steps them on a fixed tick.
//
// Each tick runs, strictly in order: every controller's Step, every axis's
// Advance, then one link Tick. A value published on tick k is therefore
// read by the peer on tick k+delay+1.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/san-kum/wavelink/internal/dynamo"
	"github.com/san-kum/wavelink/internal/link"
)

type Session struct {
	local, remote *Peer
	pipe          *link.Pipe
	metrics       []dynamo.Metric
	observers     []dynamo.Observer
	logger        *slog.Logger

	t    float64
	step int
}

type Option func(*Session)

func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// New links the two peers' stores with a pipe of the given one-way delay
// in ticks.
func New(local, remote *Peer, delay int, opts ...Option) (*Session, error) {
	if local == nil || remote == nil {
		return nil, fmt.Errorf("session: two peers required")
	}
	pipe, err := link.NewPipe(local.Store, remote.Store, delay)
	if err != nil {
		return nil, err
	}

	s := &Session{
		local:  local,
		remote: remote,
		pipe:   pipe,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Session) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Session) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

func (s *Session) Local() *Peer     { return s.local }
func (s *Session) Remote() *Peer    { return s.remote }
func (s *Session) Pipe() *link.Pipe { return s.pipe }
func (s *Session) Time() float64    { return s.t }

func (s *Session) peers() [2]*Peer { return [2]*Peer{s.local, s.remote} }

// Enable starts a fresh control session on both peers.
func (s *Session) Enable() error {
	for _, p := range s.peers() {
		if err := p.Controller.Enable(); err != nil {
			return fmt.Errorf("enable %s: %w", p.Name, err)
		}
	}
	return nil
}

// Disable releases both peers; each publishes its zero pair once.
func (s *Session) Disable() {
	for _, p := range s.peers() {
		p.Controller.Disable()
	}
}

// SetLinkDown drops or restores the link. Controllers are disabled while
// the link is down and re-enabled, with fresh origins, when it returns.
func (s *Session) SetLinkDown(down bool) error {
	if down == !s.pipe.Up() {
		return nil
	}
	if down {
		s.Disable()
		s.pipe.SetDown(true)
		s.logger.Info("link dropped", "t", s.t)
		return nil
	}
	s.pipe.SetDown(false)
	s.logger.Info("link restored", "t", s.t)
	return s.Enable()
}

// SetDelay changes the one-way link delay in ticks.
func (s *Session) SetDelay(n int) error {
	if err := s.pipe.SetDelay(n); err != nil {
		return err
	}
	s.logger.Info("link delay changed", "t", s.t, "ticks", n)
	return nil
}

// SetImpedance changes b on both peers; the wave transform needs both ends
// to agree.
func (s *Session) SetImpedance(b float64) {
	for _, p := range s.peers() {
		p.Controller.SetImpedance(b)
	}
}

// Tick advances the whole system by dt.
func (s *Session) Tick(dt float64) error {
	for _, p := range s.peers() {
		p.Controller.Step(dt)
	}
	for _, p := range s.peers() {
		if err := p.Axis.Advance(dt); err != nil {
			return fmt.Errorf("%s axis: %w", p.Name, err)
		}
	}
	s.pipe.Tick()
	s.t += dt
	s.step++
	return nil
}

// Row samples the telemetry row for the current instant.
func (s *Session) Row() dynamo.State {
	row := make(dynamo.State, NumColumns)
	l, r := s.local.Controller.Snapshot(), s.remote.Controller.Snapshot()

	row[LocalPos] = s.local.devicePos()
	row[LocalVel] = s.local.deviceVel()
	row[RemotePos] = s.remote.devicePos()
	row[RemoteVel] = s.remote.deviceVel()
	row[LocalForce] = l.Force
	row[RemoteForce] = r.Force
	row[LocalWaveIn] = l.WaveIn
	row[LocalWaveOut] = l.WaveOut
	row[RemoteWaveIn] = r.WaveIn
	row[RemoteWaveOut] = r.WaveOut
	row[LocalMomentum] = l.Momentum
	row[RemoteMomentum] = r.Momentum
	if s.pipe.Up() {
		row[LinkUp] = 1
	}
	return row
}

func (s *Session) controls() dynamo.Control {
	return dynamo.Control{s.local.Axis.OperatorForce(), s.remote.Axis.OperatorForce()}
}

// Frame samples everything the live view needs.
func (s *Session) Frame() Frame {
	return Frame{
		Time:   s.t,
		Row:    s.Row(),
		Ctrl:   s.controls(),
		Local:  s.local.frame(),
		Remote: s.remote.frame(),
		LinkUp: s.pipe.Up(),
		Delay:  s.pipe.Delay(),
	}
}

func (s *Session) apply(e Event) error {
	switch e.Kind {
	case EventDrop:
		return s.SetLinkDown(true)
	case EventRestore:
		return s.SetLinkDown(false)
	case EventDelay:
		return s.SetDelay(e.Delay)
	}
	return fmt.Errorf("kind %q: %w", e.Kind, ErrEvent)
}

// Run enables both peers, steps for cfg.Duration and disables them again.
// Rows are recorded after every tick, starting with the state at t=0.
func (s *Session) Run(ctx context.Context, cfg Config) (*dynamo.Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	next := func() error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			return nil
		}
	}
	return s.run(cfg, next, nil)
}

// RunRealtime is Run paced against the wall clock, one tick per cfg.Dt.
// callback sees a frame after every recorded tick; returning false ends
// the run early without error.
func (s *Session) RunRealtime(ctx context.Context, cfg Config, callback func(Frame) bool) (*dynamo.Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	period := max(time.Duration(cfg.Dt*float64(time.Second)), time.Microsecond)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	next := func() error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			return nil
		}
	}
	return s.run(cfg, next, callback)
}

// run is the shared tick loop. next blocks until the following tick may
// start and reports cancellation.
func (s *Session) run(cfg Config, next func() error, callback func(Frame) bool) (*dynamo.Result, error) {
	steps := cfg.Steps()
	result := &dynamo.Result{
		States:   make([]dynamo.State, 0, steps+1),
		Controls: make([]dynamo.Control, 0, steps+1),
		Times:    make([]float64, 0, steps+1),
		Metrics:  make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	if err := s.Enable(); err != nil {
		return nil, err
	}
	defer s.Disable()

	record := func() {
		result.States = append(result.States, s.Row())
		result.Controls = append(result.Controls, s.controls())
		result.Times = append(result.Times, s.t)
	}

	start := s.t
	record()

	events := cfg.schedule()
	pending := 0
	dt := cfg.Dt

	s.logger.Debug("session started", "steps", steps, "dt", dt, "delay", s.pipe.Delay())

	for i := 0; i < steps; i++ {
		if err := next(); err != nil {
			return result, err
		}

		elapsed := s.t - start
		for pending < len(events) && events[pending].At <= elapsed+dt/2 {
			if err := s.apply(events[pending]); err != nil {
				return result, err
			}
			pending++
		}

		if err := s.Tick(dt); err != nil {
			result.Errors = append(result.Errors, &dynamo.SimulationError{
				Step:    i,
				Time:    s.t,
				State:   s.Row(),
				Wrapped: err,
			})
			break
		}
		result.StepsTaken++

		row, u := s.Row(), s.controls()
		if cfg.ValidateState && !row.IsValid() {
			result.Errors = append(result.Errors, dynamo.SimError{Time: s.t, Step: i, Message: "invalid telemetry (NaN/Inf)"})
			break
		}
		for _, m := range s.metrics {
			m.Observe(row, u, s.t)
		}
		for _, obs := range s.observers {
			obs.OnStep(row, u, s.t)
		}
		result.States = append(result.States, row)
		result.Controls = append(result.Controls, u)
		result.Times = append(result.Times, s.t)

		if callback != nil && !callback(s.Frame()) {
			break
		}
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	sent, delivered := s.pipe.Stats()
	s.logger.Debug("session finished", "steps", result.StepsTaken, "sent", sent, "delivered", delivered)
	return result, nil
}
