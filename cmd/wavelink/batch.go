package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/wavelink/internal/automation"
	"github.com/san-kum/wavelink/internal/optim"
	"github.com/san-kum/wavelink/internal/storage"
)

var (
	delayFrom, delayTo, delayStep int
	impMin, impMax                float64
	impPoints                     int
	gains                         []float64
	metricName                    string
)

func batchCommands() []*cobra.Command {
	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run the same session over a range of link delays",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addSessionFlags(sweepCmd)
	sweepCmd.Flags().IntVar(&delayFrom, "from", 0, "first delay (ticks)")
	sweepCmd.Flags().IntVar(&delayTo, "to", 50, "last delay (ticks)")
	sweepCmd.Flags().IntVar(&delayStep, "step", 5, "delay step (ticks)")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search impedance and drift gain",
		Args:  cobra.NoArgs,
		RunE:  runTune,
	}
	addSessionFlags(tuneCmd)
	tuneCmd.Flags().Float64Var(&impMin, "b-min", 0.25, "smallest impedance")
	tuneCmd.Flags().Float64Var(&impMax, "b-max", 8, "largest impedance")
	tuneCmd.Flags().IntVar(&impPoints, "b-points", 8, "impedance grid points")
	tuneCmd.Flags().Float64SliceVar(&gains, "gains", []float64{0}, "drift gains to try")
	tuneCmd.Flags().StringVar(&metricName, "metric", "tracking_error", "metric to minimise")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a yaml scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	return []*cobra.Command{sweepCmd, tuneCmd, scenarioCmd}
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	delays := automation.DelayRange(delayFrom, delayTo, delayStep)
	if len(delays) == 0 {
		return fmt.Errorf("empty delay range %d..%d", delayFrom, delayTo)
	}

	ctx, cancel := interruptible()
	defer cancel()

	fmt.Printf("sweeping %d delays (b=%.3f, g=%.3f)...\n\n", len(delays), cfg.Wave.Impedance, cfg.Wave.DriftGain)
	results, err := automation.RunDelaySweep(ctx, &automation.DelaySweep{Base: cfg, Delays: delays})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DELAY\tLATENCY\tTRACKING\tENERGY\tSTABLE\tERRORS")
	tracking := make([]float64, len(results))
	for i, r := range results {
		fmt.Fprintf(w, "%d\t%.0fms\t%.6f\t%.6f\t%.3f\t%d\n",
			r.Delay, float64(r.Delay+1)*cfg.Dt*1000, r.TrackingError, r.ChannelEnergy, r.Stability, r.Errors)
		tracking[i] = r.TrackingError
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(tracking) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(tracking,
			asciigraph.Height(10),
			asciigraph.Width(60),
			asciigraph.Caption("rms tracking error vs delay"),
		))
	}
	return nil
}

func runTune(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if impPoints < 1 || !(impMin > 0) || impMax < impMin {
		return fmt.Errorf("bad impedance range %g..%g (%d points)", impMin, impMax, impPoints)
	}

	gs := optim.NewGridSearch(
		[]string{"impedance", "drift_gain"},
		[][]float64{optim.Linspace(impMin, impMax, impPoints), gains},
	)

	ctx, cancel := interruptible()
	defer cancel()

	fmt.Printf("tuning %s over %d points (delay %d ticks)...\n\n", metricName, impPoints*len(gains), cfg.Delay)
	best, val, trials, err := gs.Search(ctx, optim.WaveBuilder(cfg), metricName)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "B\tG\t%s\n", metricName)
	for _, t := range trials {
		if t.Err != nil {
			fmt.Fprintf(w, "%.3f\t%.3f\terror: %v\n", t.Params["impedance"], t.Params["drift_gain"], t.Err)
			continue
		}
		fmt.Fprintf(w, "%.3f\t%.3f\t%.6f\n", t.Params["impedance"], t.Params["drift_gain"], t.Value)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nbest: impedance=%.3f drift_gain=%.3f %s=%.6f\n", best["impedance"], best["drift_gain"], metricName, val)
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, cancel := interruptible()
	defer cancel()

	fmt.Printf("scenario %s: %s\n\n", sc.Name, sc.Description)
	results, err := automation.RunScenario(ctx, sc, st, nil)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tDELAY\tB\tTRACKING\tENERGY\tRUN")
	for _, r := range results {
		runID := r.RunID
		if runID == "" {
			runID = "-"
		}
		fmt.Fprintf(w, "%s\t%d\t%.3f\t%.6f\t%.6f\t%s\n",
			r.Name, r.Config.Delay, r.Config.Wave.Impedance,
			r.Result.Metrics["tracking_error"], r.Result.Metrics["channel_energy"], runID)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(results) > 0 {
		fmt.Println("\nlast step metrics:")
		printMetrics(results[len(results)-1].Result.Metrics)
	}
	return nil
}
