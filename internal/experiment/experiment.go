// Package experiment turns a config into a ready-to-run session.
package experiment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/wavelink/internal/axis"
	"github.com/san-kum/wavelink/internal/config"
	"github.com/san-kum/wavelink/internal/dynamo"
	"github.com/san-kum/wavelink/internal/physics"
	"github.com/san-kum/wavelink/internal/session"
	"github.com/san-kum/wavelink/internal/wave"
)

// Entity is the id both peers use for the shared body.
const Entity wave.EntityID = 1

type Experiment struct {
	cfg      *config.Config
	registry *Registry
	logger   *slog.Logger
	session  *session.Session
}

func New(cfg *config.Config, logger *slog.Logger) *Experiment {
	if logger == nil {
		logger = slog.Default()
	}
	return &Experiment{cfg: cfg, registry: NewRegistry(), logger: logger}
}

// Setup validates the config and builds both peers, the link and the
// default metrics.
func (e *Experiment) Setup() error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}

	local, err := e.buildPeer("local", e.cfg.Local)
	if err != nil {
		return err
	}
	remote, err := e.buildPeer("remote", e.cfg.Remote)
	if err != nil {
		return err
	}

	s, err := session.New(local, remote, e.cfg.Delay, session.WithLogger(e.logger))
	if err != nil {
		return err
	}
	for _, m := range e.registry.DefaultMetrics() {
		s.AddMetric(m)
	}
	e.session = s
	return nil
}

func (e *Experiment) buildPeer(name string, pc config.PeerConfig) (*session.Peer, error) {
	deviceInt, err := e.registry.GetIntegrator(e.cfg.Integrator)
	if err != nil {
		return nil, err
	}
	bodyInt, err := e.registry.GetIntegrator(e.cfg.Integrator)
	if err != nil {
		return nil, err
	}

	profile, err := e.registry.GetProfile(pc.Operator.Profile, pc.Operator.ProfileParams)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	kind := pc.Operator.Kind
	if kind == "" {
		kind = "none"
	}
	op, err := e.registry.GetOperator(kind, pc.Operator.OperatorParams(), profile)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	device := &physics.Device{
		Mass:      pc.Device.Mass,
		Stiffness: pc.Device.Stiffness,
		Damping:   pc.Device.Damping,
	}
	body := physics.NewBody()
	body.Drag = pc.BodyDrag

	ax, err := axis.New(pc.Axis, device, body, deviceInt, bodyInt, op)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return session.NewPeer(name, Entity, e.cfg.Wave, ax, e.logger)
}

func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	if e.session == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.session.Run(ctx, e.cfg.SessionConfig())
}

// RunRealtime runs the configured session paced against the wall clock.
// onFrame, when set, sees every tick's frame and can stop the run early.
func (e *Experiment) RunRealtime(ctx context.Context, onFrame func(session.Frame) bool) (*dynamo.Result, error) {
	if e.session == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.session.RunRealtime(ctx, e.cfg.SessionConfig(), onFrame)
}

// Session returns the underlying session for observers and live control.
func (e *Experiment) Session() *session.Session {
	return e.session
}

func (e *Experiment) Config() *config.Config { return e.cfg }

// RunConfig builds and runs a config in one call.
func RunConfig(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*dynamo.Result, error) {
	exp := New(cfg, logger)
	if err := exp.Setup(); err != nil {
		return nil, err
	}
	return exp.Run(ctx)
}
