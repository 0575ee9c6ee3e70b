package automation

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/san-kum/wavelink/internal/config"
	"github.com/san-kum/wavelink/internal/storage"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

const scenarioYAML = `
name: latency-ladder
description: same operator, growing delay
preset: lan
steps:
  - name: short
    duration: 0.5
    delay: 0
  - name: long
    duration: 0.5
    delay: 25
    impedance: 3
    save_as: long
  - preset: dropout
    duration: 0.5
    events:
      - at: 0.2
        kind: drop
`

func TestParseScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(scenarioYAML))
	if err != nil {
		t.Fatal(err)
	}
	if sc.Name != "latency-ladder" || len(sc.Steps) != 3 {
		t.Fatalf("parsed %+v", sc)
	}

	cfg, err := sc.StepConfig(sc.Steps[1])
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Delay != 25 || cfg.Wave.Impedance != 3 || cfg.Duration != 0.5 {
		t.Errorf("overrides not applied: delay %d b %f", cfg.Delay, cfg.Wave.Impedance)
	}
	if cfg.Wave.DriftGain != 0 {
		t.Errorf("unset drift gain changed: %f", cfg.Wave.DriftGain)
	}

	cfg, err = sc.StepConfig(sc.Steps[2])
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Delay != config.GetPreset("dropout").Delay || len(cfg.Events) != 1 {
		t.Errorf("step preset not used: delay %d events %v", cfg.Delay, cfg.Events)
	}

	if _, err := ParseScenario([]byte("name: empty\n")); err == nil {
		t.Error("expected error for scenario without steps")
	}
	if _, err := sc.StepConfig(ScenarioStep{Preset: "moon"}); err == nil {
		t.Error("expected unknown preset error")
	}
}

func TestRunScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(scenarioYAML))
	if err != nil {
		t.Fatal(err)
	}
	st := storage.New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	results, err := RunScenario(context.Background(), sc, st, quiet)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Name != "short" || results[2].Name != "step3" {
		t.Errorf("names = %s, %s", results[0].Name, results[2].Name)
	}
	if results[1].RunID == "" || results[0].RunID != "" {
		t.Errorf("only the save_as step should be stored: %q %q", results[0].RunID, results[1].RunID)
	}

	meta, err := st.Load(results[1].RunID)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Delay != 25 || meta.Column("link_up") < 0 || meta.Column("local_operator") < 0 {
		t.Errorf("stored metadata = %+v", meta)
	}
}

func TestRunDelaySweep(t *testing.T) {
	base := config.GetPreset("push")
	base.Duration = 0.5

	sweep := &DelaySweep{Base: base, Delays: DelayRange(0, 20, 10)}
	results, err := RunDelaySweep(context.Background(), sweep)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, r := range results {
		if r.Delay != i*10 {
			t.Errorf("result %d has delay %d", i, r.Delay)
		}
		if r.ChannelEnergy < -1e-9 {
			t.Errorf("delay %d: channel energy %g", r.Delay, r.ChannelEnergy)
		}
		if r.Errors != 0 {
			t.Errorf("delay %d: %d run errors", r.Delay, r.Errors)
		}
	}
	if base.Delay != config.GetPreset("push").Delay {
		t.Error("sweep modified its base config")
	}
}

func TestDelayRange(t *testing.T) {
	got := DelayRange(2, 9, 3)
	want := []int{2, 5, 8}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got %v, want %v", got, want)
		}
	}
}
