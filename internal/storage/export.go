package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/wavelink/internal/dynamo"
)

type ExportData struct {
	RunMetadata
	Steps    int         `json:"steps"`
	Times    []float64   `json:"times"`
	States   [][]float64 `json:"states"`
	Controls [][]float64 `json:"controls"`
}

func NewExportData(meta RunMetadata, result *dynamo.Result) ExportData {
	meta.Metrics = result.Metrics
	data := ExportData{
		RunMetadata: meta,
		Steps:       len(result.Times),
		Times:       result.Times,
		States:      make([][]float64, len(result.States)),
		Controls:    make([][]float64, len(result.Controls)),
	}
	for i, s := range result.States {
		data.States[i] = s
	}
	for i, c := range result.Controls {
		data.Controls[i] = c
	}
	return data
}

// WriteJSON encodes a run as indented JSON.
func WriteJSON(w io.Writer, meta RunMetadata, result *dynamo.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewExportData(meta, result))
}

// ExportJSON writes a run to path, or to stdout when path is "-".
func ExportJSON(path string, meta RunMetadata, result *dynamo.Result) error {
	if path == "-" {
		return WriteJSON(os.Stdout, meta, result)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, meta, result)
}

// ExportCSV copies the stored rows of a run to path.
func (s *Store) ExportCSV(runID, path string) error {
	src, err := os.Open(s.csvPath(runID))
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}

// LoadResult rebuilds a result from a stored run, splitting each row back
// into states and controls using the metadata column count.
func (s *Store) LoadResult(runID string, numStates int) (*RunMetadata, *dynamo.Result, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	rows, times, err := s.LoadStates(runID)
	if err != nil {
		return nil, nil, err
	}

	result := &dynamo.Result{
		Times:      times,
		States:     make([]dynamo.State, len(rows)),
		Controls:   make([]dynamo.Control, len(rows)),
		Metrics:    meta.Metrics,
	}
	if len(rows) > 0 {
		result.StepsTaken = len(rows) - 1
	}
	for i, row := range rows {
		n := numStates
		if n > len(row) {
			n = len(row)
		}
		result.States[i] = dynamo.State(row[:n])
		result.Controls[i] = dynamo.Control(row[n:])
	}
	return meta, result, nil
}
