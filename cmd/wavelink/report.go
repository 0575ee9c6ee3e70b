package main

import (
	"fmt"
	"math"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/wavelink/internal/analysis"
	"github.com/san-kum/wavelink/internal/export"
	"github.com/san-kum/wavelink/internal/session"
	"github.com/san-kum/wavelink/internal/storage"
)

var (
	outPath    string
	columns    []string
	phase      bool
	svgWidth   int
	svgHeight  int
	settleBand float64
)

func reportCommands() []*cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot positions and forces of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&outPath, "out", "o", "-", "output file, - for stdout")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run telemetry to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default <run_id>.csv)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render run telemetry to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default <run_id>.svg)")
	exportSVGCmd.Flags().StringSliceVar(&columns, "columns", []string{"local_pos", "remote_pos"}, "columns to plot against time")
	exportSVGCmd.Flags().BoolVar(&phase, "phase", false, "plot remote against local position instead")
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", 400, "image height")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "tracking, spectrum and phase analysis of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().Float64Var(&settleBand, "band", 0.002, "settling band for the tracking error (m)")

	return []*cobra.Command{listCmd, plotCmd, exportCmd, exportCSVCmd, exportSVGCmd, analyzeCmd}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tDURATION\tDT\tDELAY\tB\tG\tLOCAL\tREMOTE")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%.2fs\t%.4fs\t%d\t%.3f\t%.3f\t%s\t%s\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Delay,
			run.Impedance,
			run.DriftGain,
			run.LocalOperator,
			run.RemoteOperator,
		)
	}

	return w.Flush()
}

// loadRun reads a stored run and checks that the named columns exist.
func loadRun(runID string, names ...string) (*storage.RunMetadata, [][]float64, []float64, []int, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	rows, times, err := st.LoadStates(runID)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, nil, nil, fmt.Errorf("run %s has no data", runID)
	}

	idx := make([]int, len(names))
	for i, n := range names {
		idx[i] = meta.Column(n)
		if idx[i] < 0 {
			return nil, nil, nil, nil, fmt.Errorf("run %s has no column %q (have %v)", runID, n, meta.Columns)
		}
	}
	return meta, rows, times, idx, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, rows, _, idx, err := loadRun(args[0], "local_pos", "remote_pos", "local_operator", "remote_operator", "link_up")
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("delay: %d ticks  b: %.3f  g: %.3f\n", meta.Delay, meta.Impedance, meta.DriftGain)
	fmt.Printf("samples: %d\n\n", len(rows))

	plots := []struct {
		caption string
		cols    []int
	}{
		{"device position (m): local / remote", idx[0:2]},
		{"operator force (N): local / remote", idx[2:4]},
	}
	for _, p := range plots {
		series := make([][]float64, len(p.cols))
		for i, c := range p.cols {
			series[i] = analysis.Column(rows, c)
		}
		fmt.Println(asciigraph.PlotMany(series,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.SeriesColors(asciigraph.Cyan, asciigraph.Magenta),
			asciigraph.Caption(p.caption),
		))
		fmt.Println()
	}

	if down := countDown(analysis.Column(rows, idx[4])); down > 0 {
		fmt.Printf("link down for %d of %d samples\n", down, len(rows))
	}
	return nil
}

func countDown(linkUp []float64) int {
	n := 0
	for _, v := range linkUp {
		if v == 0 {
			n++
		}
	}
	return n
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, result, err := st.LoadResult(args[0], session.NumColumns)
	if err != nil {
		return err
	}
	return storage.ExportJSON(outPath, *meta, result)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	path := outPath
	if path == "" {
		path = args[0] + ".csv"
	}
	st := storage.New(dataDir)
	if err := st.ExportCSV(args[0], path); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	names := columns
	if phase {
		names = []string{"local_pos", "remote_pos"}
	}
	_, rows, times, idx, err := loadRun(args[0], names...)
	if err != nil {
		return err
	}

	var svg string
	if phase {
		pts := make([]export.Point, len(rows))
		for i, row := range rows {
			pts[i] = export.Point{X: row[idx[0]], Y: row[idx[1]]}
		}
		svg = export.TrajectoryToSVG(pts, svgWidth, svgHeight, export.Palette[0])
	} else {
		traces := make([]export.Trace, len(names))
		for i, n := range names {
			traces[i] = export.Trace{Name: n, Values: analysis.Column(rows, idx[i])}
		}
		svg = export.TracesToSVG(times, traces, svgWidth, svgHeight)
	}
	if svg == "" {
		return fmt.Errorf("not enough samples to draw")
	}

	path := outPath
	if path == "" {
		path = args[0] + ".svg"
	}
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, rows, times, idx, err := loadRun(args[0], "local_pos", "remote_pos")
	if err != nil {
		return err
	}

	local := analysis.Column(rows, idx[0])
	remote := analysis.Column(rows, idx[1])
	diff := make([]float64, len(local))
	for i := range local {
		diff[i] = math.Abs(local[i] - remote[i])
	}

	fmt.Printf("analysis: %s\n", meta.ID)
	fmt.Printf("delay: %d ticks (%.0f ms one way)\n\n", meta.Delay, float64(meta.Delay+1)*meta.Dt*1000)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SIGNAL\tMEAN\tDOMINANT HZ\tMAGNITUDE")
	for _, s := range []struct {
		name string
		data []float64
	}{{"local_pos", local}, {"remote_pos", remote}, {"|error|", diff}} {
		f, mag := analysis.DominantFrequency(s.data, meta.Dt)
		fmt.Fprintf(w, "%s\t%+.5f\t%.3f\t%.4f\n", s.name, analysis.Mean(s.data), f, mag)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if t := analysis.Settle(diff, times, settleBand); t >= 0 {
		fmt.Printf("\ntracking error stays within %.4f m of its final %.5f m from t=%.2fs\n", settleBand, diff[len(diff)-1], t)
	}

	ps := analysis.PowerSpectrum(diff)
	if n := len(ps) / 4; n > 2 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(ps[1:n],
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("tracking error spectrum"),
		))
	}

	fmt.Println("\nremote vs local position:")
	fmt.Println(analysis.NewPhasePortrait(rows, idx[0], idx[1]).ASCII(60, 20))

	if len(meta.Metrics) > 0 {
		fmt.Println("metrics:")
		printMetrics(meta.Metrics)
	}
	return nil
}
