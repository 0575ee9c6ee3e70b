package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/wavelink/internal/automation"
	"github.com/san-kum/wavelink/internal/config"
	"github.com/san-kum/wavelink/internal/dynamo"
	"github.com/san-kum/wavelink/internal/experiment"
	"github.com/san-kum/wavelink/internal/session"
	"github.com/san-kum/wavelink/internal/storage"
	"github.com/san-kum/wavelink/internal/viz"
)

var (
	dataDir    string
	verbose    bool
	configFile string
	preset     string
	name       string
	dt         float64
	duration   float64
	seed       int64
	integrator string
	delay      int
	impedance  float64
	driftGain  float64
	operator   string
	pushForce  float64
	realtime   bool
	// live view
	hz        float64
	frameRate int
	forceStep float64
	theme     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "wavelink",
		Short:         "wave-variable teleoperation over a delayed link",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			}))
			slog.SetDefault(logger)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".wavelink", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a session and store its telemetry",
		Args:  cobra.NoArgs,
		RunE:  runSession,
	}
	addSessionFlags(runCmd)
	runCmd.Flags().StringVar(&name, "name", "run", "run name")
	runCmd.Flags().BoolVar(&realtime, "realtime", false, "pace the run against the wall clock and print progress")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a session with live visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSessionFlags(liveCmd)
	liveCmd.Flags().Float64Var(&hz, "hz", 100, "control rate")
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")
	liveCmd.Flags().Float64Var(&forceStep, "force-step", 0.5, "manual push per key press (N)")
	liveCmd.Flags().StringVar(&theme, "theme", viz.ThemeCyberpunk.Name, fmt.Sprintf("color theme %v", viz.ThemeNames()))

	presetsCmd := &cobra.Command{
		Use:   "presets [name]",
		Short: "list presets, or print one as yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showPresets,
	}

	rootCmd.AddCommand(runCmd, liveCmd, presetsCmd)
	rootCmd.AddCommand(reportCommands()...)
	rootCmd.AddCommand(batchCommands()...)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addSessionFlags(cmd *cobra.Command) {
	def := config.DefaultConfig()
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().Float64Var(&dt, "dt", def.Dt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", def.Duration, "duration")
	cmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	cmd.Flags().StringVar(&integrator, "integrator", def.Integrator, "integrator")
	cmd.Flags().IntVar(&delay, "delay", def.Delay, "one-way link delay (ticks)")
	cmd.Flags().Float64Var(&impedance, "impedance", def.Wave.Impedance, "wave impedance b")
	cmd.Flags().Float64Var(&driftGain, "drift-gain", def.Wave.DriftGain, "position drift correction gain")
	cmd.Flags().StringVar(&operator, "operator", "", "local operator (none, manual, pid)")
	cmd.Flags().Float64Var(&pushForce, "force", 0, "initial force of a manual local operator (N)")
}

// loadConfig starts from the config file, else the preset, else the
// defaults. Flags set on the command line override all of them.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	switch {
	case configFile != "":
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
	case preset != "":
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("delay") {
		cfg.Delay = delay
	}
	if flags.Changed("impedance") {
		cfg.Wave.Impedance = impedance
	}
	if flags.Changed("drift-gain") {
		cfg.Wave.DriftGain = driftGain
	}
	if flags.Changed("operator") {
		cfg.Local.Operator.Kind = operator
		if operator == "manual" && cfg.Local.Operator.Limit <= 0 {
			cfg.Local.Operator.Limit = config.DefaultLimit
		}
	}
	if flags.Changed("force") {
		cfg.Local.Operator.Force = pushForce
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// interruptible returns a context cancelled on Ctrl-C.
func interruptible() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runSession(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp := experiment.New(cfg, slog.Default())
	if err := exp.Setup(); err != nil {
		return err
	}

	ctx, cancel := interruptible()
	defer cancel()

	fmt.Printf("running %s (delay %d ticks, b=%.3f)...\n", name, cfg.Delay, cfg.Wave.Impedance)
	start := time.Now()

	var result *dynamo.Result
	if realtime {
		result, err = exp.RunRealtime(ctx, progress(cfg.Dt))
		// Ctrl-C ends a paced run early; keep what was recorded.
		if errors.Is(err, context.Canceled) && result != nil {
			fmt.Println("interrupted")
			err = nil
		}
	} else {
		result, err = exp.Run(ctx)
	}
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(automation.Metadata(name, cfg), result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	for _, e := range result.Errors {
		fmt.Printf("error: %v\n", e)
	}
	fmt.Println("\nmetrics:")
	printMetrics(result.Metrics)
	return nil
}

// progress prints a status line every quarter second of simulated time.
func progress(dt float64) func(session.Frame) bool {
	every := max(1, int(math.Round(0.25/dt)))
	n := 0
	return func(f session.Frame) bool {
		n++
		if n%every == 0 {
			link := "up"
			if !f.LinkUp {
				link = "down"
			}
			fmt.Printf("t=%6.2fs  local=%+.4f m  remote=%+.4f m  force=%+.3f N  link=%s\n",
				f.Time, f.Row[session.LocalPos], f.Row[session.RemotePos], f.Local.OperatorForce, link)
		}
		return true
	}
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		fmt.Printf("  %s: %.6f\n", k, m[k])
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// The live view owns the terminal; keep logs out of it.
	exp := experiment.New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := exp.Setup(); err != nil {
		return err
	}

	// The control rate follows the config's dt unless --hz is given.
	rate := 1 / cfg.Dt
	if cmd.Flags().Changed("hz") {
		rate = hz
	}
	return viz.Run(exp.Session(), viz.Options{
		Hz:        rate,
		FPS:       frameRate,
		ForceStep: forceStep,
		Theme:     theme,
	})
}

func showPresets(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		fmt.Println("presets:")
		for _, p := range config.ListPresets() {
			cfg := config.GetPreset(p)
			fmt.Printf("  %-10s delay=%-3d b=%.2f g=%.2f events=%d\n", p, cfg.Delay, cfg.Wave.Impedance, cfg.Wave.DriftGain, len(cfg.Events))
		}
		return nil
	}

	cfg := config.GetPreset(args[0])
	if cfg == nil {
		return fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
	}
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(cfg)
}
