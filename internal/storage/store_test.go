package storage

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/wavelink/internal/dynamo"
)

func sampleResult() *dynamo.Result {
	return &dynamo.Result{
		States: []dynamo.State{
			{0.0, 0.0, 1},
			{0.01, -0.02, 1},
		},
		Controls: []dynamo.Control{
			{2.0},
			{2.0},
		},
		Times: []float64{0.0, 0.01},
		Metrics: map[string]float64{
			"tracking_error": 0.015,
		},
	}
}

func sampleMeta() RunMetadata {
	return RunMetadata{
		Name:       "lan",
		Seed:       42,
		Dt:         0.01,
		Duration:   1,
		Integrator: "rk4",
		Delay:      2,
		Impedance:  1,
		Columns:    []string{"local_pos", "remote_pos", "link_up", "local_operator"},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save(sampleMeta(), sampleResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Name != "lan" || meta.Delay != 2 || meta.Seed != 42 {
		t.Errorf("metadata mismatch: %+v", meta)
	}
	if meta.Metrics["tracking_error"] != 0.015 {
		t.Errorf("expected tracking error 0.015, got %f", meta.Metrics["tracking_error"])
	}
	if meta.Column("remote_pos") != 1 || meta.Column("missing") != -1 {
		t.Errorf("column lookup broken: %v", meta.Columns)
	}

	states, times, err := st.LoadStates(runID)
	if err != nil {
		t.Fatalf("load states failed: %v", err)
	}
	if len(states) != 2 || len(times) != 2 {
		t.Fatalf("expected 2 rows, got %d/%d", len(states), len(times))
	}
	if len(states[1]) != 4 || states[1][1] != -0.02 || states[1][3] != 2 {
		t.Errorf("row 1 = %v", states[1])
	}

	_, result, err := st.LoadResult(runID, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.States[0]) != 3 || len(result.Controls[0]) != 1 || result.StepsTaken != 1 {
		t.Errorf("split result: states %v controls %v", result.States[0], result.Controls[0])
	}
}

func TestStoreList(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "runs"))

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	if err := st.Init(); err != nil {
		t.Fatal(err)
	}
	if _, err := st.Save(sampleMeta(), sampleResult()); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("expected 1 run, got %d", len(runs))
	}
}

func TestStoreSaveFailureLeavesNoRun(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	// json cannot encode NaN, so the metadata write fails
	result := sampleResult()
	result.Metrics["tracking_error"] = math.NaN()
	if _, err := st.Save(sampleMeta(), result); err == nil {
		t.Fatal("expected save error")
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("failed save left %d entries behind", len(entries))
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save(sampleMeta(), sampleResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	for _, name := range []string{"metadata.json", "states.csv"} {
		if _, err := os.Stat(filepath.Join(tmpDir, runID, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}

	out := filepath.Join(tmpDir, "copy.csv")
	if err := st.ExportCSV(runID, out); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("time,local_pos,remote_pos,link_up,local_operator\n")) {
		t.Errorf("unexpected header: %q", data)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleMeta(), sampleResult()); err != nil {
		t.Fatal(err)
	}

	var decoded ExportData
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Steps != 2 || decoded.Delay != 2 || len(decoded.States) != 2 {
		t.Errorf("decoded export = %+v", decoded)
	}
	if decoded.Metrics["tracking_error"] != 0.015 {
		t.Errorf("metrics not exported: %v", decoded.Metrics)
	}
}
