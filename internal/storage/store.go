// Package storage keeps finished runs on disk: a metadata.json and a
// states.csv per run directory.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/wavelink/internal/dynamo"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunMetadata describes the link conditions a run was recorded under.
type RunMetadata struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	Timestamp      time.Time          `json:"timestamp"`
	Seed           int64              `json:"seed"`
	Dt             float64            `json:"dt"`
	Duration       float64            `json:"duration"`
	Integrator     string             `json:"integrator"`
	Delay          int                `json:"delay"`
	Impedance      float64            `json:"impedance"`
	DriftGain      float64            `json:"drift_gain"`
	LocalOperator  string             `json:"local_operator"`
	RemoteOperator string             `json:"remote_operator"`
	Columns        []string           `json:"columns"`
	Metrics        map[string]float64 `json:"metrics"`
}

// Column returns the index of a named column in a loaded row, or -1.
func (m *RunMetadata) Column(name string) int {
	for i, c := range m.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Save writes the run and returns its id. meta.ID, Timestamp and Metrics
// are filled in here; Columns names the state entries followed by the
// control entries.
func (s *Store) Save(meta RunMetadata, result *dynamo.Result) (string, error) {
	now := time.Now()
	meta.ID = fmt.Sprintf("%s_%d", meta.Name, now.UnixNano())
	meta.Timestamp = now
	meta.Metrics = result.Metrics
	runDir := filepath.Join(s.baseDir, meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	if err := s.write(runDir, meta, result); err != nil {
		os.RemoveAll(runDir)
		return "", fmt.Errorf("save %s: %w", meta.ID, err)
	}
	return meta.ID, nil
}

func (s *Store) write(runDir string, meta RunMetadata, result *dynamo.Result) error {
	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return err
	}

	csvFile, err := os.Create(s.csvPath(meta.ID))
	if err != nil {
		return err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := writeRows(w, meta.Columns, result); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return csvFile.Close()
}

func writeRows(w *csv.Writer, columns []string, result *dynamo.Result) error {
	if len(result.States) == 0 {
		return nil
	}

	numStates := len(result.States[0])
	numControls := 0
	if len(result.Controls) > 0 {
		numControls = len(result.Controls[0])
	}

	header := []string{"time"}
	for i := 0; i < numStates+numControls; i++ {
		if i < len(columns) {
			header = append(header, columns[i])
		} else if i < numStates {
			header = append(header, fmt.Sprintf("x%d", i))
		} else {
			header = append(header, fmt.Sprintf("u%d", i-numStates))
		}
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i := range result.States {
		row := []string{strconv.FormatFloat(result.Times[i], 'f', 6, 64)}
		for _, val := range result.States[i] {
			row = append(row, strconv.FormatFloat(val, 'g', 10, 64))
		}
		for j := 0; j < numControls; j++ {
			val := 0.0
			if i < len(result.Controls) && j < len(result.Controls[i]) {
				val = result.Controls[i][j]
			}
			row = append(row, strconv.FormatFloat(val, 'g', 10, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) csvPath(runID string) string {
	return filepath.Join(s.baseDir, runID, "states.csv")
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadStates reads the recorded rows. Each row holds the state entries
// followed by the control entries, matching RunMetadata.Columns.
func (s *Store) LoadStates(runID string) ([][]float64, []float64, error) {
	file, err := os.Open(s.csvPath(runID))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 2 {
		return [][]float64{}, []float64{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	states := make([][]float64, 0, len(records)-1)

	for _, record := range records[1:] {
		if len(record) == 0 {
			continue
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}

		state := make([]float64, 0, len(record)-1)
		for _, field := range record[1:] {
			val, err := strconv.ParseFloat(field, 64)
			if err != nil {
				val = 0
			}
			state = append(state, val)
		}
		times = append(times, t)
		states = append(states, state)
	}
	return states, times, nil
}
