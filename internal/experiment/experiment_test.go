package experiment

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/san-kum/wavelink/internal/config"
	"github.com/san-kum/wavelink/internal/control"
	"github.com/san-kum/wavelink/internal/session"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	for _, name := range r.ListIntegrators() {
		if _, err := r.GetIntegrator(name); err != nil {
			t.Errorf("integrator %s: %v", name, err)
		}
	}
	if _, err := r.GetIntegrator("rk45"); err == nil {
		t.Error("expected error for unknown integrator")
	}

	for _, name := range r.ListOperators() {
		if _, err := r.GetOperator(name, map[string]float64{"kp": 1}, control.Hold{}); err != nil {
			t.Errorf("operator %s: %v", name, err)
		}
	}
	if _, err := r.GetOperator("lqr", nil, nil); err == nil {
		t.Error("expected error for unknown operator")
	}

	m, err := r.GetOperator("manual", map[string]float64{"force": 5, "limit": 3}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if u := m.Compute(nil, 0); u[0] != 3 {
		t.Errorf("manual force = %f, want limited 3", u[0])
	}

	if p, err := r.GetProfile("", nil); err != nil || p.Target(5) != 0 {
		t.Errorf("empty profile should hold at zero: %v", err)
	}
}

func TestRunPresets(t *testing.T) {
	for _, name := range []string{"ideal", "lan", "dropout", "push"} {
		t.Run(name, func(t *testing.T) {
			cfg := config.GetPreset(name)
			cfg.Duration = 1
			result, err := RunConfig(context.Background(), cfg, quiet)
			if err != nil {
				t.Fatal(err)
			}
			if result.StepsTaken != 100 {
				t.Errorf("steps = %d, want 100", result.StepsTaken)
			}
			for _, key := range []string{"tracking_error", "channel_energy", "control_effort", "stability"} {
				if _, ok := result.Metrics[key]; !ok {
					t.Errorf("missing metric %s", key)
				}
			}
			if result.Metrics["channel_energy"] < -1e-9 {
				t.Errorf("channel energy %g", result.Metrics["channel_energy"])
			}
		})
	}
}

func TestSetupRejectsBadConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Integrator = "magic"
	if err := New(cfg, quiet).Setup(); err == nil {
		t.Error("expected unknown integrator error")
	}

	cfg = config.DefaultConfig()
	cfg.Local.Operator.Kind = "robot"
	if err := New(cfg, quiet).Setup(); err == nil {
		t.Error("expected unknown operator error")
	}

	if _, err := New(config.DefaultConfig(), quiet).Run(context.Background()); err == nil {
		t.Error("expected error running without setup")
	}
}

func TestRunRealtime(t *testing.T) {
	cfg := config.GetPreset("push")
	cfg.Duration = 0.05

	exp := New(cfg, quiet)
	if _, err := exp.RunRealtime(context.Background(), nil); err == nil {
		t.Error("expected error before setup")
	}
	if err := exp.Setup(); err != nil {
		t.Fatal(err)
	}

	frames := 0
	result, err := exp.RunRealtime(context.Background(), func(f session.Frame) bool {
		frames++
		return true
	})
	if err != nil {
		t.Fatal(err)
	}
	want := cfg.SessionConfig().Steps()
	if result.StepsTaken != want || frames != want {
		t.Errorf("steps = %d, frames = %d, want %d", result.StepsTaken, frames, want)
	}
	if _, ok := result.Metrics["tracking_error"]; !ok {
		t.Errorf("metrics missing tracking_error: %v", result.Metrics)
	}
}
