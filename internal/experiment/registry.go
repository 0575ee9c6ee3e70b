package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/wavelink/internal/control"
	"github.com/san-kum/wavelink/internal/dynamo"
	"github.com/san-kum/wavelink/internal/integrators"
	"github.com/san-kum/wavelink/internal/metrics"
	"github.com/san-kum/wavelink/internal/session"
)

// Registry maps config names to integrators, operators and metrics.
type Registry struct {
	operators map[string]func(params map[string]float64, profile control.Profile) dynamo.Controller
}

func NewRegistry() *Registry {
	r := &Registry{
		operators: make(map[string]func(map[string]float64, control.Profile) dynamo.Controller),
	}

	r.operators["none"] = func(params map[string]float64, _ control.Profile) dynamo.Controller {
		return control.NewNone()
	}
	r.operators["manual"] = func(params map[string]float64, _ control.Profile) dynamo.Controller {
		m := control.NewManual(params["limit"])
		m.SetForce(params["force"])
		return m
	}
	r.operators["pid"] = func(params map[string]float64, profile control.Profile) dynamo.Controller {
		pid := control.NewPID(params["kp"], params["ki"], params["kd"], profile)
		pid.Limit = params["limit"]
		return pid
	}

	return r
}

// GetIntegrator returns a fresh instance; integrators keep scratch space.
func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	return integrators.New(name)
}

func (r *Registry) GetProfile(name string, params map[string]float64) (control.Profile, error) {
	if name == "" {
		return control.Hold{}, nil
	}
	return control.NewProfile(name, params)
}

func (r *Registry) GetOperator(name string, params map[string]float64, profile control.Profile) (dynamo.Controller, error) {
	fn, ok := r.operators[name]
	if !ok {
		return nil, fmt.Errorf("unknown operator: %s", name)
	}
	return fn(params, profile), nil
}

func (r *Registry) ListIntegrators() []string { return integrators.Names() }
func (r *Registry) ListProfiles() []string    { return control.ProfileNames() }

func (r *Registry) ListOperators() []string {
	names := make([]string, 0, len(r.operators))
	for name := range r.operators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics returns fresh metrics over the session telemetry layout.
func (r *Registry) DefaultMetrics() []dynamo.Metric {
	return []dynamo.Metric{
		metrics.NewTrackingError(session.LocalPos, session.RemotePos),
		metrics.NewChannelEnergy(session.LinkUp,
			metrics.Port{In: session.LocalWaveIn, Out: session.LocalWaveOut},
			metrics.Port{In: session.RemoteWaveIn, Out: session.RemoteWaveOut},
		),
		metrics.NewPortPower("local_power", metrics.Port{In: session.LocalWaveIn, Out: session.LocalWaveOut}),
		metrics.NewPortPower("remote_power", metrics.Port{In: session.RemoteWaveIn, Out: session.RemoteWaveOut}),
		metrics.NewControlEffort(session.LocalOperator, session.RemoteOperator),
		metrics.NewStability(1.0, session.LocalPos, session.RemotePos),
	}
}
