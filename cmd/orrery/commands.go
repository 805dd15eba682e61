package main

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/orrery/internal/analysis"
	"github.com/san-kum/orrery/internal/compute"
	"github.com/san-kum/orrery/internal/config"
	"github.com/san-kum/orrery/internal/dynamo"
	"github.com/san-kum/orrery/internal/export"
	"github.com/san-kum/orrery/internal/metrics"
	"github.com/san-kum/orrery/internal/optim"
	"github.com/san-kum/orrery/internal/physics"
	"github.com/san-kum/orrery/internal/sim"
	"github.com/san-kum/orrery/internal/storage"
	"github.com/san-kum/orrery/internal/viz"
)

// Apsides are tracked per body only for small systems.
const maxApsisBodies = 10

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadSystem(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	s, err := newSimulator(cfg)
	if err != nil {
		return err
	}
	sc := s.Config()

	rec := sim.NewRecorder(every)
	s.AddObserver(rec)
	s.AddMetric(metrics.NewEnergyDrift(sc.G))
	s.AddMetric(metrics.NewMomentumDrift())
	if r := systemRadius(s); r > 0 {
		s.AddMetric(metrics.NewContainment(2 * r))
	}
	if len(s.Bodies()) <= maxApsisBodies {
		for _, b := range s.Bodies() {
			if b.IsAnchor() {
				continue
			}
			s.AddMetric(metrics.NewPerihelion(b.Name()))
			s.AddMetric(metrics.NewAphelion(b.Name()))
		}
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("running %s: %d bodies, %d steps of %s (%s, %s)\n",
		cfg.Name, len(s.Bodies()), cfg.Steps, viz.FormatTime(sc.Dt), sc.Ordering, sc.Degenerate)

	start := time.Now()
	result, runErr := s.Run(ctx, cfg.Steps)
	elapsed := time.Since(start)
	if result == nil {
		return runErr
	}

	meta := storage.RunMetadata{
		System:      cfg.Name,
		Dt:          sc.Dt,
		G:           sc.G,
		Steps:       result.StepsTaken,
		Ordering:    sc.Ordering.String(),
		Degenerate:  sc.Degenerate.String(),
		Bodies:      bodyNames(s.Bodies()),
		Masses:      make(map[string]float64, len(s.Bodies())),
		Colors:      make(map[string]string, len(s.Bodies())),
		EnergyDrift: result.EnergyDrift,
		Metrics:     result.Metrics,
	}
	if a := s.Anchor(); a != nil {
		meta.Anchor = a.Name()
	}
	for _, b := range s.Bodies() {
		meta.Masses[b.Name()] = b.Mass()
		meta.Colors[b.Name()] = config.FormatColor(b.Color())
	}

	runID, err := st.Save(meta, rec.Samples())
	if err != nil {
		return err
	}

	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d, simulated: %s, wall: %s\n",
		result.StepsTaken, viz.FormatTime(result.Time), elapsed.Round(time.Millisecond))
	fmt.Printf("energy drift: %.3e\n", result.EnergyDrift)

	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %-24s %.6g\n", name, result.Metrics[name])
	}

	for _, b := range s.Bodies() {
		if b.IsAnchor() {
			continue
		}
		peri, okP := result.Metrics[b.Name()+".perihelion"]
		aph, okA := result.Metrics[b.Name()+".aphelion"]
		if okP && okA {
			fmt.Printf("  %-24s %.4f\n", b.Name()+".eccentricity", metrics.Eccentricity(peri, aph))
		}
	}

	if runErr != nil {
		return fmt.Errorf("run stopped after %d steps (partial run saved): %w", result.StepsTaken, runErr)
	}
	return nil
}

// systemRadius is the largest initial distance of a body from the anchor,
// or from the origin when there is none.
func systemRadius(s *sim.Simulator) float64 {
	var center r2.Vec
	if a := s.Anchor(); a != nil {
		center = a.Position()
	}
	r := 0.0
	for _, b := range s.Bodies() {
		r = math.Max(r, r2.Norm(r2.Sub(b.Position(), center)))
	}
	return r
}

func bodyNames(bodies []*physics.Body) []string {
	names := make([]string, len(bodies))
	for i, b := range bodies {
		names[i] = b.Name()
	}
	return names
}

func runSVG(cmd *cobra.Command, args []string) error {
	cfg, err := loadSystem(cmd, args)
	if err != nil {
		return err
	}
	s, err := newSimulator(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()
	if _, err := s.Run(ctx, cfg.Steps); err != nil {
		return err
	}

	var out string
	if braille {
		c := viz.NewCanvas(size/8, size/16)
		w, h := c.PixelSize()
		viz.DrawScene(c, viz.NewViewport(cfg.Scale, w, h), s.Bodies(), viz.SceneOptions{
			Theme:  viz.GetTheme(themeName),
			Labels: true,
		})
		out = export.CanvasToSVG(c, 4)
	} else {
		out = export.SceneToSVG(s.Bodies(), viz.NewViewport(cfg.Scale, size, size), export.SVGOptions{})
	}

	if outFile == "" {
		fmt.Println(out)
		return nil
	}
	if err := os.WriteFile(outFile, []byte(out), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d steps, %s)\n", outFile, s.Steps(), viz.FormatTime(s.Time()))
	return nil
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
	fmt.Fprintln(w, "ID\tSYSTEM\tTIME\tBODIES\tSTEPS\tDT\tORDERING\tDRIFT")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t%s\t%.2e\n",
			run.ID,
			run.System,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			len(run.Bodies),
			run.Steps,
			viz.FormatTime(run.Dt),
			run.Ordering,
			run.EnergyDrift,
		)
	}

	return w.Flush()
}

// plotBodies returns the bodies plotRun and analyzeRun work on: the one
// named by --body, or every body except the anchor.
func plotBodies(meta *storage.RunMetadata) ([]string, error) {
	if bodyName != "" {
		for _, b := range meta.Bodies {
			if b == bodyName {
				return []string{b}, nil
			}
		}
		return nil, fmt.Errorf("no body %q in run %s (bodies: %s)", bodyName, meta.ID, strings.Join(meta.Bodies, ", "))
	}
	var names []string
	for _, b := range meta.Bodies {
		if b != meta.Anchor {
			names = append(names, b)
		}
	}
	return names, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}

	if len(samples) == 0 {
		return fmt.Errorf("no data to plot")
	}

	names, err := plotBodies(meta)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("system: %s\n", meta.System)
	fmt.Printf("samples: %d\n\n", len(samples))

	maxPlots := 6
	if len(names) > maxPlots {
		names = names[:maxPlots]
	}

	for _, name := range names {
		series := sim.FilterSamples(samples, name)
		if len(series) == 0 {
			continue
		}
		data := sim.Distances(series)
		for i := range data {
			data[i] /= 1000
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("%s distance to %s (km)", name, meta.Anchor)),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	if outFile == "" {
		return nil
	}

	series := sim.FilterSamples(samples, names[0])
	points := make([]r2.Vec, len(series))
	for i, smp := range series {
		points[i] = r2.Vec{X: smp.X, Y: smp.Y}
	}
	color := stroke
	if color == "" {
		color = meta.Colors[names[0]]
	}
	if color == "" {
		color = config.DefaultColor
	}
	svg := export.TrajectoryToSVG(points, viz.ReferenceSize, viz.ReferenceSize, color)
	if svg == "" {
		return fmt.Errorf("not enough samples of %s for a path", names[0])
	}
	if err := os.WriteFile(outFile, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outFile)
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}

	names, err := plotBodies(meta)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d\n\n", len(samples))

	anchorMass := meta.Masses[meta.Anchor]

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BODY\tMEAN DIST (km)\tFFT PERIOD\tKEPLER PERIOD\tERROR")

	for _, name := range names {
		series := sim.FilterSamples(samples, name)
		if len(series) == 0 {
			continue
		}
		mean := 0.0
		for _, d := range sim.Distances(series) {
			mean += d
		}
		mean /= float64(len(series))

		period, err := analysis.OrbitalPeriod(samples, name, meta.Anchor)
		if err != nil {
			fmt.Fprintf(w, "%s\t%.1f\t%v\t\t\n", name, mean/1000, err)
			continue
		}

		if anchorMass == 0 || mean == 0 {
			fmt.Fprintf(w, "%s\t%.1f\t%s\t-\t-\n", name, mean/1000, viz.FormatTime(period))
			continue
		}
		kepler := analysis.KeplerPeriod(meta.G, anchorMass+meta.Masses[name], mean)
		fmt.Fprintf(w, "%s\t%.1f\t%s\t%s\t%.1f%%\n",
			name, mean/1000, viz.FormatTime(period), viz.FormatTime(kepler),
			100*math.Abs(period-kepler)/kepler)
	}

	return w.Flush()
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	samples, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}
	return storage.WriteSamplesCSV(os.Stdout, samples)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, meta, samples)
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tBODIES\tDT\tSTEPS\tORDERING")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%s\t%d\t%s\n",
			name, len(cfg.Bodies), viz.FormatTime(cfg.Dt), cfg.Steps, cfg.Ordering)
	}
	return w.Flush()
}

func initConfig(cmd *cobra.Command, args []string) error {
	name := "solar"
	if len(args) > 0 {
		name = args[0]
	}
	cfg := config.GetPreset(name)
	if cfg == nil {
		return fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
	}

	path := outFile
	if path == "" {
		path = name + ".yaml"
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func compareOrderings(cmd *cobra.Command, args []string) error {
	cfg, err := loadSystem(cmd, args)
	if err != nil {
		return err
	}

	orderings := []dynamo.Ordering{dynamo.TwoPhase, dynamo.Sequential}
	recorders := make([]*sim.Recorder, len(orderings))
	members := make([]*sim.Simulator, len(orderings))
	for i, o := range orderings {
		c := *cfg
		c.Ordering = o
		s, err := newSimulator(&c)
		if err != nil {
			return err
		}
		recorders[i] = sim.NewRecorder(1)
		s.AddObserver(recorders[i])
		members[i] = s
	}

	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()
	results, runErr := sim.NewEnsemble(members...).Run(ctx, cfg.Steps)
	elapsed := time.Since(start)

	fmt.Printf("%s: %d steps of %s (%s)\n\n", cfg.Name, cfg.Steps, viz.FormatTime(cfg.Dt), elapsed.Round(time.Millisecond))
	fmt.Printf("%-12s  %-8s  %-12s\n", "ordering", "steps", "energy_drift")
	for i, o := range orderings {
		if results[i] == nil {
			fmt.Printf("%-12s  error\n", o)
			continue
		}
		fmt.Printf("%-12s  %8d  %12.3e\n", o, results[i].StepsTaken, results[i].EnergyDrift)
	}
	fmt.Println()

	div := analysis.Divergence(recorders[0].Samples(), recorders[1].Samples())
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BODY\tMAX SEPARATION (km)")
	for _, name := range recorders[0].Names() {
		fmt.Fprintf(w, "%s\t%.3f\n", name, div[name]/1000)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return runErr
}

func compareForces(cmd *cobra.Command, args []string) error {
	cfg, err := loadSystem(cmd, args)
	if err != nil {
		return err
	}
	bodies, sc, err := cfg.Build()
	if err != nil {
		return err
	}

	gravity := physics.NewGravity(sc)
	exact := make([]r2.Vec, len(bodies))
	for i, b := range bodies {
		for j, other := range bodies {
			if i == j {
				continue
			}
			f, err := gravity.Attraction(b, other)
			if err != nil {
				return err
			}
			exact[i] = r2.Add(exact[i], f)
		}
	}

	names := compute.Names()
	results := make([][]r2.Vec, len(names))
	fmt.Printf("%s: %d bodies\n\n", cfg.Name, len(bodies))
	fmt.Printf("%-12s  %-12s  %-12s\n", "backend", "time", "worst_error")
	for k, name := range names {
		backend, err := compute.Lookup(name)
		if err != nil {
			return err
		}
		if bh, ok := backend.(*compute.BarnesHut); ok {
			bh.Theta = theta
		}

		start := time.Now()
		forces, err := backend.Forces(bodies, sc.G)
		elapsed := time.Since(start)
		if err != nil {
			fmt.Printf("%-12s  error: %v\n", name, err)
			continue
		}
		results[k] = forces

		worst := 0.0
		for i := range bodies {
			worst = math.Max(worst, relError(forces[i], exact[i]))
		}
		fmt.Printf("%-12s  %-12s  %12.2e\n", name, elapsed, worst)
	}
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprint(w, "BODY\t|F| EXACT (N)")
	for _, name := range names {
		fmt.Fprintf(w, "\t%s", strings.ToUpper(name))
	}
	fmt.Fprintln(w)
	for i, b := range bodies {
		fmt.Fprintf(w, "%s\t%.4e", b.Name(), r2.Norm(exact[i]))
		for k := range names {
			if results[k] == nil {
				fmt.Fprint(w, "\t-")
				continue
			}
			fmt.Fprintf(w, "\t%.2e", relError(results[k][i], exact[i]))
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}

func relError(got, want r2.Vec) float64 {
	n := r2.Norm(want)
	if n == 0 {
		return r2.Norm(got)
	}
	return r2.Norm(r2.Sub(got, want)) / n
}

func sweepSettings(cmd *cobra.Command, args []string) error {
	cfg, err := loadSystem(cmd, args)
	if err != nil {
		return err
	}

	params := []string{"dt"}
	ranges := [][]float64{sweepDt}
	if len(sweepMinDistance) > 0 {
		params = append(params, "min_distance")
		ranges = append(ranges, sweepMinDistance)
	}
	grid, err := optim.NewGridSearch(params, ranges)
	if err != nil {
		return err
	}

	// Every trial covers the same simulated span as the configured run.
	span := float64(cfg.Steps) * cfg.Dt
	build := func(p map[string]float64) (*sim.Simulator, int, error) {
		c := *cfg
		c.Dt = p["dt"]
		if md, ok := p["min_distance"]; ok {
			c.MinDistance = md
		}
		s, err := newSimulator(&c)
		if err != nil {
			return nil, 0, err
		}
		s.AddMetric(metrics.NewEnergyDrift(c.G))
		s.AddMetric(metrics.NewMomentumDrift())
		return s, int(math.Round(span / c.Dt)), nil
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("%s: sweeping %s over %s\n\n", cfg.Name, strings.Join(params, ", "), viz.FormatTime(span))
	trials, best, searchErr := grid.Search(ctx, build, sweepMetric)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tSTEPS\t%s\n", strings.ToUpper(strings.Join(params, "\t")), strings.ToUpper(sweepMetric))
	for _, t := range trials {
		var cols []string
		for _, p := range params {
			cols = append(cols, fmt.Sprintf("%g", t.Params[p]))
		}
		value := fmt.Sprintf("%.3e", t.Value)
		if t.Err != nil {
			value = "error: " + t.Err.Error()
		}
		fmt.Fprintf(w, "%s\t%d\t%s\n", strings.Join(cols, "\t"), t.Steps, value)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if searchErr != nil {
		return searchErr
	}

	if best == nil {
		return fmt.Errorf("no successful trial")
	}
	fmt.Printf("\nbest: dt %s", viz.FormatTime(best.Params["dt"]))
	if md, ok := best.Params["min_distance"]; ok {
		fmt.Printf(", min distance %g m", md)
	}
	fmt.Printf(" (%s %.3e)\n", sweepMetric, best.Value)
	return nil
}
