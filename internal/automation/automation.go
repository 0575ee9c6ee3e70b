// Package automation runs scripted sequences of sessions and delay sweeps.
package automation

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/wavelink/internal/config"
	"github.com/san-kum/wavelink/internal/dynamo"
	"github.com/san-kum/wavelink/internal/experiment"
	"github.com/san-kum/wavelink/internal/session"
	"github.com/san-kum/wavelink/internal/storage"
)

// Scenario is a scripted sequence of runs. Each step starts from Preset
// (or the defaults) and applies its overrides.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Preset      string         `yaml:"preset"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep overrides only the fields it sets.
type ScenarioStep struct {
	Name       string          `yaml:"name"`
	Preset     string          `yaml:"preset"`
	Integrator string          `yaml:"integrator"`
	Duration   float64         `yaml:"duration"`
	Dt         float64         `yaml:"dt"`
	Delay      *int            `yaml:"delay"`
	Impedance  *float64        `yaml:"impedance"`
	DriftGain  *float64        `yaml:"drift_gain"`
	Events     []session.Event `yaml:"events"`
	SaveAs     string          `yaml:"save_as"`
}

type StepResult struct {
	Name   string
	RunID  string
	Config *config.Config
	Result *dynamo.Result
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

// StepConfig resolves the config a step runs with.
func (sc *Scenario) StepConfig(step ScenarioStep) (*config.Config, error) {
	name := step.Preset
	if name == "" {
		name = sc.Preset
	}
	cfg := config.DefaultConfig()
	if name != "" {
		if cfg = config.GetPreset(name); cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", name)
		}
	}

	if step.Integrator != "" {
		cfg.Integrator = step.Integrator
	}
	if step.Duration > 0 {
		cfg.Duration = step.Duration
	}
	if step.Dt > 0 {
		cfg.Dt = step.Dt
	}
	if step.Delay != nil {
		cfg.Delay = *step.Delay
	}
	if step.Impedance != nil {
		cfg.Wave.Impedance = *step.Impedance
	}
	if step.DriftGain != nil {
		cfg.Wave.DriftGain = *step.DriftGain
	}
	if step.Events != nil {
		cfg.Events = append([]session.Event(nil), step.Events...)
	}
	return cfg, nil
}

// RunScenario executes the steps in order. Steps with SaveAs are written
// to store when it is not nil.
func RunScenario(ctx context.Context, sc *Scenario, store *storage.Store, logger *slog.Logger) ([]StepResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	results := make([]StepResult, 0, len(sc.Steps))

	for i, step := range sc.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step%d", i+1)
		}
		logger.Info("running scenario step", "scenario", sc.Name, "step", i+1, "of", len(sc.Steps), "name", name)

		cfg, err := sc.StepConfig(step)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		result, err := experiment.RunConfig(ctx, cfg, logger)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Name: name, Config: cfg, Result: result}
		if step.SaveAs != "" && store != nil {
			id, err := store.Save(Metadata(step.SaveAs, cfg), result)
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
			sr.RunID = id
		}
		results = append(results, sr)
	}

	return results, nil
}

// Metadata describes cfg for the run store.
func Metadata(name string, cfg *config.Config) storage.RunMetadata {
	return storage.RunMetadata{
		Name:           name,
		Seed:           cfg.Seed,
		Dt:             cfg.Dt,
		Duration:       cfg.Duration,
		Integrator:     cfg.Integrator,
		Delay:          cfg.Delay,
		Impedance:      cfg.Wave.Impedance,
		DriftGain:      cfg.Wave.DriftGain,
		LocalOperator:  cfg.Local.Operator.Kind,
		RemoteOperator: cfg.Remote.Operator.Kind,
		Columns:        append(append([]string(nil), session.ColumnNames...), session.ControlNames...),
	}
}

// DelaySweep runs the same config at several link delays.
type DelaySweep struct {
	Base   *config.Config
	Delays []int
}

type DelayResult struct {
	Delay         int
	TrackingError float64
	ChannelEnergy float64
	Stability     float64
	Errors        int
}

// RunDelaySweep runs every delay in parallel. Sessions log nothing so the
// parallel runs do not interleave output.
func RunDelaySweep(ctx context.Context, sweep *DelaySweep) ([]DelayResult, error) {
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))

	results, err := session.Sweep(ctx, len(sweep.Delays), func(i int) (*session.Session, session.Config, error) {
		cfg := sweep.Base.Clone()
		cfg.Delay = sweep.Delays[i]
		exp := experiment.New(cfg, quiet)
		if err := exp.Setup(); err != nil {
			return nil, session.Config{}, err
		}
		return exp.Session(), cfg.SessionConfig(), nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]DelayResult, len(results))
	for i, r := range results {
		out[i] = DelayResult{
			Delay:         sweep.Delays[i],
			TrackingError: r.Metrics["tracking_error"],
			ChannelEnergy: r.Metrics["channel_energy"],
			Stability:     r.Metrics["stability"],
			Errors:        len(r.Errors),
		}
	}
	return out, nil
}

// DelayRange returns delays from lo to hi inclusive in steps of step.
func DelayRange(lo, hi, step int) []int {
	if step <= 0 {
		step = 1
	}
	var out []int
	for d := lo; d <= hi; d += step {
		out = append(out, d)
	}
	return out
}
