package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/orrery/internal/config"
	"github.com/san-kum/orrery/internal/dynamo"
	"github.com/san-kum/orrery/internal/sim"
	"github.com/san-kum/orrery/internal/viz"
)

var (
	dataDir    string
	configFile string
	debugLog   string
	dt         float64
	steps      int
	ordering   string
	degenerate string
	workers    int
	// Recorder stride
	every int
	// Live view
	frameRate     int
	stepsPerFrame int
	themeName     string
	maxTrail      int
	// Output file for svg, init and plot --svg
	outFile string
	size    int
	braille bool
	// Plot
	bodyName string
	stroke   string
	// Barnes-Hut opening angle
	theta float64
	// Sweep grid
	sweepDt          []float64
	sweepMinDistance []float64
	sweepMetric      string
)

// main registers the orrery commands and runs the root command. Without a
// subcommand it opens the preset launcher.
func main() {
	var logFile *os.File

	rootCmd := &cobra.Command{
		Use:   "orrery",
		Short: "gravitational n-body toy simulator",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if debugLog == "" {
				log.SetOutput(io.Discard)
				return nil
			}
			f, err := tea.LogToFile(debugLog, "orrery")
			if err != nil {
				return fmt.Errorf("debug log: %w", err)
			}
			logFile = f
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logFile != nil {
				logFile.Close()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunLauncher()
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".orrery", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "system file (yaml, or ini/gcfg)")
	rootCmd.PersistentFlags().StringVar(&debugLog, "debug-log", "", "write debug log to file")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a system and record it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	simFlags(runCmd)
	runCmd.Flags().IntVar(&every, "every", 1, "record every n steps")

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "run a system with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	simFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")
	liveCmd.Flags().IntVar(&stepsPerFrame, "speed", 1, "steps per frame")
	liveCmd.Flags().StringVar(&themeName, "theme", "deep-space", "color theme")
	liveCmd.Flags().IntVar(&maxTrail, "trail", 0, "trail points drawn per body (0 = all)")

	svgCmd := &cobra.Command{
		Use:   "svg [preset]",
		Short: "run a system and write an SVG snapshot",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSVG,
	}
	simFlags(svgCmd)
	svgCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	svgCmd.Flags().IntVar(&size, "size", viz.ReferenceSize, "image edge in pixels")
	svgCmd.Flags().BoolVar(&braille, "braille", false, "render the terminal canvas instead")
	svgCmd.Flags().StringVar(&themeName, "theme", "deep-space", "color theme for --braille")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot distance to anchor",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&bodyName, "body", "", "body to plot (default: all but the anchor)")
	plotCmd.Flags().StringVar(&outFile, "svg", "", "write the body's path as SVG to this file")
	plotCmd.Flags().StringVar(&stroke, "stroke", "", "SVG stroke color (default: body color)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "orbital periods from the recorded motion",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run samples to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and samples as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in systems",
		RunE:  listPresets,
	}

	initCmd := &cobra.Command{
		Use:   "init [preset]",
		Short: "write a preset as a YAML system file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  initConfig,
	}
	initCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default <preset>.yaml)")

	compareCmd := &cobra.Command{
		Use:   "compare [preset]",
		Short: "compare two-phase and sequential ordering",
		Args:  cobra.MaximumNArgs(1),
		RunE:  compareOrderings,
	}
	simFlags(compareCmd)

	forcesCmd := &cobra.Command{
		Use:   "forces [preset]",
		Short: "compare exact forces with Barnes-Hut",
		Args:  cobra.MaximumNArgs(1),
		RunE:  compareForces,
	}
	forcesCmd.Flags().Float64Var(&theta, "theta", 0.5, "Barnes-Hut opening angle")

	sweepCmd := &cobra.Command{
		Use:   "sweep [preset]",
		Short: "grid search settings for the lowest drift",
		Args:  cobra.MaximumNArgs(1),
		RunE:  sweepSettings,
	}
	simFlags(sweepCmd)
	sweepCmd.Flags().Float64SliceVar(&sweepDt, "dts", []float64{dynamo.Day / 4, dynamo.Day / 2, dynamo.Day}, "timesteps to try")
	sweepCmd.Flags().Float64SliceVar(&sweepMinDistance, "min-distances", nil, "clamp distances to try")
	sweepCmd.Flags().StringVar(&sweepMetric, "metric", "energy_drift", "metric to minimize (energy_drift, momentum_drift)")

	rootCmd.AddCommand(runCmd, liveCmd, svgCmd, listCmd, plotCmd, analyzeCmd,
		exportCSVCmd, exportJSONCmd, presetsCmd, initCmd, compareCmd, forcesCmd, sweepCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func simFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", dynamo.Day, "timestep in seconds")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	cmd.Flags().StringVar(&ordering, "ordering", "two-phase", "update ordering (two-phase, sequential)")
	cmd.Flags().StringVar(&degenerate, "degenerate", "reject", "zero distance policy (reject, skip, clamp)")
	cmd.Flags().IntVar(&workers, "workers", 1, "force workers (0 = all cpus)")
}

// loadSystem resolves the system from --config or a preset name, then
// applies the flags the user set explicitly.
func loadSystem(cmd *cobra.Command, args []string) (*config.Config, error) {
	var cfg *config.Config
	if configFile != "" {
		c, err := config.LoadAny(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
	} else {
		name := "solar"
		if len(args) > 0 {
			name = args[0]
		}
		cfg = config.GetPreset(name)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
		}
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("ordering") {
		o, err := dynamo.ParseOrdering(ordering)
		if err != nil {
			return nil, err
		}
		cfg.Ordering = o
	}
	if flags.Changed("degenerate") {
		p, err := dynamo.ParseDegeneratePolicy(degenerate)
		if err != nil {
			return nil, err
		}
		cfg.Degenerate = p
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}

	for _, w := range cfg.Warnings() {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	return cfg, nil
}

func newSimulator(cfg *config.Config) (*sim.Simulator, error) {
	bodies, sc, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return sim.New(bodies, sc)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadSystem(cmd, args)
	if err != nil {
		return err
	}
	s, err := newSimulator(cfg)
	if err != nil {
		return err
	}

	model := viz.NewLive(s, viz.LiveOptions{
		Title:         cfg.Name,
		StepsPerFrame: stepsPerFrame,
		FPS:           frameRate,
		Scale:         cfg.Scale,
		Theme:         themeName,
		MaxTrail:      maxTrail,
		Reset:         func() (*sim.Simulator, error) { return newSimulator(cfg) },
	})

	start := time.Now()
	final, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	if m, ok := final.(viz.Model); ok {
		s := m.Simulator()
		fmt.Printf("%s: %d steps, %s simulated in %s\n",
			cfg.Name, s.Steps(), viz.FormatTime(s.Time()), time.Since(start).Round(time.Millisecond))
	}
	return nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}
