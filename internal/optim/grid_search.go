// Package optim searches wave parameters for the best value of a run metric.
package optim

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sort"

	"github.com/san-kum/wavelink/internal/config"
	"github.com/san-kum/wavelink/internal/dynamo"
	"github.com/san-kum/wavelink/internal/experiment"
)

// Builder returns an experiment that is set up and ready to run.
type Builder func(params map[string]float64) (*experiment.Experiment, error)

// Trial is one evaluated grid point.
type Trial struct {
	Params map[string]float64
	Value  float64
	Err    error
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// points enumerates the cartesian product of the ranges, last parameter
// varying fastest.
func (g *GridSearch) points() []map[string]float64 {
	points := []map[string]float64{{}}
	for depth, name := range g.paramNames {
		next := make([]map[string]float64, 0, len(points)*len(g.ranges[depth]))
		for _, p := range points {
			for _, val := range g.ranges[depth] {
				q := make(map[string]float64, len(p)+1)
				for k, v := range p {
					q[k] = v
				}
				q[name] = val
				next = append(next, q)
			}
		}
		points = next
	}
	return points
}

// Search runs every grid point in parallel and returns the parameters with
// the lowest metric value, plus all trials sorted best first. Failed or
// non-finite trials rank last.
func (g *GridSearch) Search(ctx context.Context, build Builder, metricName string) (map[string]float64, float64, []Trial, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, nil, fmt.Errorf("optim: %d names for %d ranges: %w", len(g.paramNames), len(g.ranges), dynamo.ErrDimensionMismatch)
	}

	points := g.points()
	trials := make([]Trial, len(points))

	dynamo.ParallelFor(len(points), 1, func(start, end int) {
		for i := start; i < end; i++ {
			trials[i] = evaluate(ctx, build, points[i], metricName)
		}
	})

	if err := ctx.Err(); err != nil {
		return nil, 0, trials, err
	}

	sort.SliceStable(trials, func(i, j int) bool { return rank(trials[i]) < rank(trials[j]) })
	if len(trials) == 0 || trials[0].Err != nil || math.IsNaN(trials[0].Value) {
		return nil, math.Inf(1), trials, fmt.Errorf("optim: no successful trial")
	}
	return trials[0].Params, trials[0].Value, trials, nil
}

func evaluate(ctx context.Context, build Builder, params map[string]float64, metricName string) Trial {
	trial := Trial{Params: params, Value: math.Inf(1)}
	exp, err := build(params)
	if err != nil {
		trial.Err = err
		return trial
	}
	result, err := exp.Run(ctx)
	if err != nil {
		trial.Err = err
		return trial
	}
	if len(result.Errors) > 0 {
		trial.Err = result.Errors[0]
		return trial
	}
	val, ok := result.Metrics[metricName]
	if !ok {
		trial.Err = fmt.Errorf("optim: metric %q not recorded", metricName)
		return trial
	}
	trial.Value = val
	return trial
}

func rank(t Trial) float64 {
	if t.Err != nil || math.IsNaN(t.Value) {
		return math.Inf(1)
	}
	return t.Value
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + step*float64(i)
	}
	return out
}

// WaveBuilder applies "impedance" and "drift_gain" grid values to copies of
// base. Runs are silent so parallel trials do not interleave logs.
func WaveBuilder(base *config.Config) Builder {
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	return func(params map[string]float64) (*experiment.Experiment, error) {
		cfg := base.Clone()
		if b, ok := params["impedance"]; ok {
			cfg.Wave.Impedance = b
		}
		if g, ok := params["drift_gain"]; ok {
			cfg.Wave.DriftGain = g
		}
		exp := experiment.New(cfg, quiet)
		if err := exp.Setup(); err != nil {
			return nil, err
		}
		return exp, nil
	}
}
