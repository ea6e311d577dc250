package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/nbodysim/internal/analysis"
	"github.com/san-kum/nbodysim/internal/automation"
	"github.com/san-kum/nbodysim/internal/config"
	"github.com/san-kum/nbodysim/internal/export"
	"github.com/san-kum/nbodysim/internal/metrics"
	"github.com/san-kum/nbodysim/internal/physics"
	"github.com/san-kum/nbodysim/internal/sim"
	"github.com/san-kum/nbodysim/internal/storage"
	"github.com/san-kum/nbodysim/internal/viz"
)

const au = 1.495978707e11

var (
	dataDir    string
	logLevel   string
	configFile string

	preset        string
	inputFile     string
	minSeparation float64
	precision     int
	save          bool
	recordEvery   int
	progressEvery int
	summary       bool
	metricsFile   string

	// show / export-svg
	frameWidth  int
	frameHeight int
	themeName   string
	trails      bool
	svgOut      string
	svgSize     int
	braille     bool

	// analyze
	lyapunov     bool
	perturbation float64

	// montecarlo
	trials         int
	mcPerturbation float64
	seed           int64
	containment    float64
)

// app carries the streams the commands read from and write to. Only the
// final state and command reports go to stdout; cobra's own help and error
// text goes to stderr with the logs.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}

	rootCmd := &cobra.Command{
		Use:   "nbodysim T dt",
		Short: "two-dimensional n-body gravity simulator",
		Long: "nbodysim reads a universe from stdin, advances it for T seconds in steps\n" +
			"of dt (capped at one Julian year) and writes the final state to stdout.",
		Args: cobra.ExactArgs(2),
		RunE: a.runSimulation,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")

	rootCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	addInputFlags(rootCmd)
	rootCmd.Flags().Float64Var(&minSeparation, "min-separation", 0, "distance floor for the force law in metres (0 disables)")
	rootCmd.Flags().IntVar(&precision, "precision", config.DefaultPrecision, "digits after the decimal point in output")
	rootCmd.Flags().BoolVar(&save, "save", false, "store the run under the data directory")
	rootCmd.Flags().IntVar(&recordEvery, "record-every", config.DefaultRecordEvery, "record a trajectory sample every n steps when saving")
	rootCmd.Flags().IntVar(&progressEvery, "progress-every", config.DefaultProgressEvery, "log progress every n steps (0 disables)")
	rootCmd.Flags().BoolVar(&summary, "summary", false, "print a run summary to stderr")
	rootCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write prometheus textfile metrics for the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		Args:  cobra.NoArgs,
		RunE:  a.listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot body distances and energy drift of a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  a.plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "estimate orbital periods of a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  a.analyzeRun,
	}
	analyzeCmd.Flags().BoolVar(&lyapunov, "lyapunov", false, "also estimate the largest Lyapunov exponent")
	analyzeCmd.Flags().Float64Var(&perturbation, "perturbation", 1e3, "initial displacement for the Lyapunov estimate in metres")

	compareCmd := &cobra.Command{
		Use:   "compare T dt [dt...]",
		Short: "run one universe with several step sizes and compare drift",
		Args:  cobra.MinimumNArgs(2),
		RunE:  a.compareSteps,
	}
	addInputFlags(compareCmd)
	compareCmd.Flags().Float64Var(&minSeparation, "min-separation", 0, "distance floor for the force law in metres (0 disables)")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted sequence of simulations from yaml",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runScenario,
	}

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo T dt",
		Short: "run randomly perturbed copies of a universe and count stable outcomes",
		Args:  cobra.ExactArgs(2),
		RunE:  a.runMonteCarlo,
	}
	addInputFlags(monteCarloCmd)
	monteCarloCmd.Flags().Float64Var(&minSeparation, "min-separation", 0, "distance floor for the force law in metres (0 disables)")
	monteCarloCmd.Flags().IntVar(&trials, "trials", 20, "number of trials")
	monteCarloCmd.Flags().Float64Var(&mcPerturbation, "perturbation", 0.01, "largest relative change to each position and velocity component")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	monteCarloCmd.Flags().Float64Var(&containment, "containment", 1, "multiple of the world radius a body may reach and still count as stable")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  a.exportRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run trajectory to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  a.exportJSON,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export run orbits to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  a.exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&svgOut, "out", "o", "", "output file (default <run_id>.svg)")
	exportSVGCmd.Flags().IntVar(&svgSize, "size", 600, "image size in pixels")
	exportSVGCmd.Flags().BoolVar(&braille, "braille", false, "export the terminal frame instead of vector orbits")
	addFrameFlags(exportSVGCmd)

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "render a saved run, or a universe read from stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE:  a.showFrame,
	}
	addFrameFlags(showCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets [name]",
		Short: "list built-in universes, or print one",
		Args:  cobra.MaximumNArgs(1),
		RunE:  a.showPresets,
	}

	rootCmd.AddCommand(listCmd, plotCmd, analyzeCmd, compareCmd, scenarioCmd, monteCarloCmd, exportCmd, exportJSONCmd, exportSVGCmd, showCmd, presetsCmd)

	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stderr)
	rootCmd.SetErr(stderr)
	return rootCmd
}

func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&preset, "preset", "", "use a built-in universe instead of stdin")
	cmd.Flags().StringVarP(&inputFile, "input", "i", "", "read the universe from a file instead of stdin")
}

func addFrameFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&frameWidth, "width", 60, "frame width in cells")
	cmd.Flags().IntVar(&frameHeight, "height", 30, "frame height in cells")
	cmd.Flags().StringVar(&themeName, "theme", viz.ThemeDeepSpace.Name, "colour theme ("+strings.Join(viz.ThemeNames(), ", ")+")")
	cmd.Flags().BoolVar(&trails, "trails", true, "draw recorded trajectories")
}

func newLogger(w io.Writer, level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "nbodysim",
	}), nil
}

func parsePositive(name, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", name, s)
	}
	if !(v > 0) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s must be a positive number, got %s", name, s)
	}
	return v, nil
}

// resolveConfig layers flags over the config file. Without a file every
// flag applies; with one only flags given explicitly do.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	set := func(name string) bool {
		return configFile == "" || flags.Changed(name)
	}

	if set("preset") {
		cfg.Preset = preset
	}
	if set("input") {
		cfg.Input = inputFile
	}
	if set("min-separation") {
		cfg.MinSeparation = minSeparation
	}
	if set("precision") {
		cfg.Precision = precision
	}
	if set("save") {
		cfg.Save = save
	}
	if set("data") {
		cfg.DataDir = dataDir
	}
	if set("record-every") {
		cfg.RecordEvery = recordEvery
	}
	if set("progress-every") {
		cfg.ProgressEvery = progressEvery
	}
	if set("log-level") {
		cfg.LogLevel = logLevel
	}
	if set("metrics-file") {
		cfg.MetricsFile = metricsFile
	}
	return cfg, nil
}

// openUniverse picks the input source: --input, then --preset, then stdin.
// It returns the reader and a short name for the source.
func openUniverse(stdin io.Reader, input, presetName string) (io.ReadCloser, string, error) {
	switch {
	case input != "" && input != "-":
		f, err := os.Open(input)
		if err != nil {
			return nil, "", err
		}
		name := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
		return f, name, nil
	case presetName != "":
		p := config.GetPreset(presetName)
		if p == nil {
			return nil, "", fmt.Errorf("unknown preset: %s (available: %v)", presetName, config.ListPresets())
		}
		r, err := p.Open()
		if err != nil {
			return nil, "", err
		}
		return io.NopCloser(r), p.Name, nil
	default:
		return io.NopCloser(stdin), "stdin", nil
	}
}

func loadUniverse(stdin io.Reader, input, presetName string, opts ...physics.Option) (*physics.System, string, error) {
	rc, name, err := openUniverse(stdin, input, presetName)
	if err != nil {
		return nil, "", err
	}
	defer rc.Close()

	sys, err := physics.Load(rc, opts...)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", name, err)
	}
	return sys, name, nil
}

func defaultMetrics() []sim.Metric {
	ms := metrics.Defaults()
	out := make([]sim.Metric, len(ms))
	for i, m := range ms {
		out[i] = m
	}
	return out
}

func (a *app) runSimulation(cmd *cobra.Command, args []string) error {
	duration, err := parsePositive("T", args[0])
	if err != nil {
		return err
	}
	dt, err := parsePositive("dt", args[1])
	if err != nil {
		return err
	}

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	cfg.Duration, cfg.Dt = duration, dt
	if err := cfg.Validate(); err != nil {
		return err
	}
	cmd.SilenceUsage = true

	logger, err := newLogger(a.stderr, cfg.LogLevel)
	if err != nil {
		return err
	}

	sys, source, err := loadUniverse(a.stdin, cfg.Input, cfg.Preset, physics.WithMinSeparation(cfg.MinSeparation))
	if err != nil {
		return err
	}
	logger.Debug("universe loaded", "source", source, "bodies", sys.Len(), "radius", sys.Radius())
	initial := sys.Snapshot()

	s := sim.New()
	s.SetLogger(logger)
	for _, m := range defaultMetrics() {
		s.AddMetric(m)
	}
	if cfg.ProgressEvery > 0 {
		s.AddObserver(sim.NewProgressLogger(logger, cfg.ProgressEvery))
	}
	var exporter *metrics.Exporter
	if cfg.MetricsFile != "" {
		exporter = metrics.NewExporter()
		s.AddObserver(exporter)
	}

	simCfg := sim.DefaultConfig()
	simCfg.Duration = cfg.Duration
	simCfg.Dt = cfg.Dt
	if cfg.Save {
		simCfg.RecordEvery = cfg.RecordEvery
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	result, runErr := s.Run(ctx, sys, simCfg)
	if result == nil {
		return runErr
	}
	if duration > sim.JulianYear {
		logger.Warn("duration capped at one julian year", "requested", duration)
	}

	enc := physics.NewEncoder(a.stdout)
	enc.SetPrecision(cfg.Precision)
	if _, err := enc.Encode(sys); err != nil {
		return err
	}
	if runErr != nil {
		return runErr
	}

	logger.Info("run complete",
		"steps", result.StepsTaken,
		"elapsed", sim.FormatElapsed(result.Elapsed),
		"energy_drift", result.EnergyDrift,
		"wall", time.Since(start).Round(time.Millisecond))

	if summary {
		fmt.Fprintln(a.stderr, runSummary(source, sys.Len(), result))
	}

	if exporter != nil {
		exporter.Record(result.Metrics)
		if err := exporter.WriteTextfile(cfg.MetricsFile); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
		logger.Debug("metrics written", "path", cfg.MetricsFile)
	}

	if cfg.Save {
		st := storage.New(cfg.DataDir)
		runID, err := st.Save(storage.Run{
			Source:        source,
			Dt:            cfg.Dt,
			Duration:      cfg.Duration,
			MinSeparation: cfg.MinSeparation,
			Initial:       initial,
			Final:         sys.Snapshot(),
			Result:        result,
		})
		if err != nil {
			return fmt.Errorf("save run: %w", err)
		}
		logger.Info("run saved", "id", runID, "dir", cfg.DataDir)
	}

	return nil
}

func runSummary(source string, bodies int, result *sim.Result) string {
	rows := [][2]string{
		{"bodies", strconv.Itoa(bodies)},
		{"steps", strconv.Itoa(result.StepsTaken)},
		{"elapsed", sim.FormatElapsed(result.Elapsed)},
	}
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		rows = append(rows, [2]string{name, fmt.Sprintf("%.4e", result.Metrics[name])})
	}
	return viz.Table(viz.ThemeDeepSpace, source, rows)
}

func (a *app) listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(a.stdout, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSOURCE\tTIME\tBODIES\tDT\tELAPSED\tSTEPS\tDRIFT")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.0fs\t%s\t%d\t%.2e\n",
			run.ID,
			run.Source,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Bodies,
			run.Dt,
			sim.FormatElapsed(run.Elapsed),
			run.Steps,
			run.EnergyDrift,
		)
	}

	return w.Flush()
}

type savedRun struct {
	meta    *storage.RunMetadata
	traj    *storage.Trajectory
	initial *physics.System
}

func loadRun(runID string) (*savedRun, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, err
	}
	traj, err := st.LoadTrajectory(runID)
	if err != nil {
		return nil, err
	}
	initial, err := st.LoadInitial(runID)
	if err != nil {
		return nil, err
	}
	return &savedRun{meta: meta, traj: traj, initial: initial}, nil
}

func (r *savedRun) asset(i int) string {
	if i < len(r.meta.Assets) {
		return r.meta.Assets[i]
	}
	return fmt.Sprintf("body %d", i)
}

// energies recomputes total energy at every recorded sample using the masses
// of the initial state.
func (r *savedRun) energies() ([]float64, error) {
	snap := r.initial.Snapshot()
	out := make([]float64, len(r.traj.Positions))
	for n := range r.traj.Positions {
		pos, vel := r.traj.Positions[n], r.traj.Velocities[n]
		if len(pos) != len(snap.Bodies) {
			return nil, fmt.Errorf("sample %d has %d bodies, expected %d", n, len(pos), len(snap.Bodies))
		}
		bodies := make([]physics.Body, len(pos))
		for i, b := range snap.Bodies {
			nb, err := physics.NewBody(pos[i].X, pos[i].Y, vel[i].X, vel[i].Y, b.Mass(), b.Asset())
			if err != nil {
				return nil, err
			}
			bodies[i] = nb
		}
		out[n] = physics.New(snap.Radius, bodies, physics.WithMinSeparation(r.meta.MinSeparation)).Energy()
	}
	return out, nil
}

func (a *app) plotRun(cmd *cobra.Command, args []string) error {
	run, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if len(run.traj.Steps) == 0 {
		return fmt.Errorf("no trajectory recorded for %s", run.meta.ID)
	}

	fmt.Fprintf(a.stdout, "run: %s\n", run.meta.ID)
	fmt.Fprintf(a.stdout, "source: %s\n", run.meta.Source)
	fmt.Fprintf(a.stdout, "samples: %d\n\n", len(run.traj.Steps))

	maxPlots := min(run.meta.Bodies, 6)
	for i := 0; i < maxPlots; i++ {
		track := run.traj.Track(i)
		data := make([]float64, len(track))
		for n, p := range track {
			data[n] = p.Norm() / au
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Precision(3),
			asciigraph.Caption(fmt.Sprintf("%s distance from origin (AU)", run.asset(i))),
		)
		fmt.Fprintln(a.stdout, graph)
		fmt.Fprintln(a.stdout)
	}

	energies, err := run.energies()
	if err != nil {
		return err
	}
	if e0 := energies[0]; e0 != 0 {
		drift := make([]float64, len(energies))
		for n, e := range energies {
			drift[n] = (e - e0) / math.Abs(e0)
		}
		graph := asciigraph.Plot(drift,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Precision(6),
			asciigraph.Caption("relative energy drift"),
		)
		fmt.Fprintln(a.stdout, graph)
	}

	return nil
}

func (a *app) analyzeRun(cmd *cobra.Command, args []string) error {
	run, err := loadRun(args[0])
	if err != nil {
		return err
	}
	times := run.traj.Times
	if len(times) < 4 {
		return fmt.Errorf("not enough samples in %s to analyze", run.meta.ID)
	}

	// The last sample may follow a clipped step; keep only the evenly spaced
	// prefix.
	interval := times[1] - times[0]
	n := len(times)
	if last := times[n-1] - times[n-2]; math.Abs(last-interval) > interval*1e-6 {
		n--
	}

	snap := run.initial.Snapshot()
	center := 0
	for i, b := range snap.Bodies {
		if b.Mass() > snap.Bodies[center].Mass() {
			center = i
		}
	}

	rows := [][2]string{{"samples", strconv.Itoa(n)}, {"interval", sim.FormatElapsed(interval)}}
	for i := range snap.Bodies {
		if i == center {
			continue
		}
		dist := make([]float64, n)
		for k := 0; k < n; k++ {
			dist[k] = run.traj.Positions[k][i].Sub(run.traj.Positions[k][center]).Norm()
		}
		period := analysis.DominantPeriod(dist, interval)
		value := "none"
		if period > 0 {
			value = fmt.Sprintf("%.1f days", period/86400)
		}
		rows = append(rows, [2]string{run.asset(i) + " period", value})
	}

	if lyapunov {
		lambda, err := analysis.LyapunovExponent(run.initial, run.meta.Dt, run.meta.Elapsed, perturbation)
		if err != nil {
			return err
		}
		rows = append(rows, [2]string{"lyapunov exponent", fmt.Sprintf("%.4e 1/s", lambda)})
	}

	fmt.Fprintln(a.stdout, viz.Table(viz.ThemeDeepSpace, "analysis: "+run.meta.ID, rows))
	return nil
}

func (a *app) compareSteps(cmd *cobra.Command, args []string) error {
	duration, err := parsePositive("T", args[0])
	if err != nil {
		return err
	}
	cfgs := make([]sim.Config, 0, len(args)-1)
	for _, arg := range args[1:] {
		dt, err := parsePositive("dt", arg)
		if err != nil {
			return err
		}
		cfg := sim.DefaultConfig()
		cfg.Duration, cfg.Dt = duration, dt
		cfgs = append(cfgs, cfg)
	}
	cmd.SilenceUsage = true

	logger, err := newLogger(a.stderr, logLevel)
	if err != nil {
		return err
	}

	sys, source, err := loadUniverse(a.stdin, inputFile, preset)
	if err != nil {
		return err
	}

	ens := sim.NewEnsemble(defaultMetrics, physics.WithMinSeparation(minSeparation))
	ens.SetLogger(logger)

	start := time.Now()
	results, err := ens.Run(context.Background(), sys.Snapshot(), cfgs)
	if err != nil {
		logger.Warn("comparison incomplete", "err", err)
	}

	fmt.Fprintf(a.stdout, "comparing step sizes for %s (T=%s)\n\n", source, sim.FormatElapsed(min(duration, sim.JulianYear)))
	fmt.Fprintf(a.stdout, "%-12s  %-8s  %-12s  %-12s  %-12s\n", "dt", "steps", "energy_drift", "momentum", "closest")
	fmt.Fprintln(a.stdout, strings.Repeat("-", 64))

	for i, res := range results {
		if res == nil {
			fmt.Fprintf(a.stdout, "%-12g  error\n", cfgs[i].Dt)
			continue
		}
		fmt.Fprintf(a.stdout, "%-12g  %-8d  %12.2e  %12.2e  %12.2e\n",
			cfgs[i].Dt,
			res.StepsTaken,
			res.EnergyDrift,
			res.Metrics["momentum_drift"],
			res.Metrics["closest_approach"])
	}
	fmt.Fprintf(a.stdout, "\nwall time: %v\n", time.Since(start).Round(time.Millisecond))

	return nil
}

func (a *app) runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	cmd.SilenceUsage = true

	logger, err := newLogger(a.stderr, logLevel)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runner := &automation.Runner{
		Store:      storage.New(dataDir),
		Logger:     logger,
		NewMetrics: defaultMetrics,
	}
	results, err := runner.RunScenario(ctx, scenario)

	w := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tBODIES\tELAPSED\tSTEPS\tDRIFT\tRUN")
	for _, r := range results {
		runID := r.RunID
		if runID == "" {
			runID = "-"
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%d\t%.2e\t%s\n",
			r.Name,
			len(r.Final.Bodies),
			sim.FormatElapsed(r.Result.Elapsed),
			r.Result.StepsTaken,
			r.Result.EnergyDrift,
			runID,
		)
	}
	if ferr := w.Flush(); ferr != nil && err == nil {
		err = ferr
	}
	return err
}

func (a *app) runMonteCarlo(cmd *cobra.Command, args []string) error {
	duration, err := parsePositive("T", args[0])
	if err != nil {
		return err
	}
	dt, err := parsePositive("dt", args[1])
	if err != nil {
		return err
	}
	if trials < 1 {
		return fmt.Errorf("trials must be at least 1, got %d", trials)
	}
	cmd.SilenceUsage = true

	logger, err := newLogger(a.stderr, logLevel)
	if err != nil {
		return err
	}

	sys, source, err := loadUniverse(a.stdin, inputFile, preset)
	if err != nil {
		return err
	}

	simCfg := sim.DefaultConfig()
	simCfg.Duration, simCfg.Dt = duration, dt

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("monte carlo", "source", source, "trials", trials, "seed", seed)
	results, err := automation.RunMonteCarlo(ctx, sys.Snapshot(), automation.MonteCarloConfig{
		Perturbation: mcPerturbation,
		NumTrials:    trials,
		Sim:          simCfg,
		Seed:         seed,
		Containment:  containment,
	}, physics.WithMinSeparation(minSeparation))
	if err != nil {
		return err
	}

	stable, unstable := automation.MonteCarloStats(results)
	fmt.Fprintln(a.stdout, viz.Table(viz.ThemeDeepSpace, "monte carlo: "+source, [][2]string{
		{"trials", strconv.Itoa(len(results))},
		{"stable", strconv.Itoa(stable)},
		{"unstable", strconv.Itoa(unstable)},
		{"stability", fmt.Sprintf("%.1f%%", 100*float64(stable)/float64(len(results)))},
	}))
	return nil
}

func (a *app) exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func (a *app) exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	traj, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(a.stdout, meta, traj)
}

func (a *app) exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]
	run, err := loadRun(runID)
	if err != nil {
		return err
	}

	var svg string
	if braille {
		final, err := storage.New(dataDir).LoadFinal(runID)
		if err != nil {
			return err
		}
		canvas := newFrame(run.meta.Elapsed).Draw(final.Snapshot(), runTracks(run))
		svg = export.CanvasToSVG(canvas, 4)
	} else {
		snap := run.initial.Snapshot()
		masses := make([]float64, len(snap.Bodies))
		for i, b := range snap.Bodies {
			masses[i] = b.Mass()
		}
		svg = export.TrajectoriesToSVG(runTracks(run), masses, run.meta.Assets, run.meta.Radius, svgSize)
	}

	out := svgOut
	if out == "" {
		out = runID + ".svg"
	}
	if err := os.WriteFile(out, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "exported %s\n", out)
	return nil
}

func runTracks(run *savedRun) [][]physics.Vec2 {
	tracks := make([][]physics.Vec2, run.meta.Bodies)
	for i := range tracks {
		tracks[i] = run.traj.Track(i)
	}
	return tracks
}

func newFrame(elapsed float64) *viz.Frame {
	f := viz.NewFrame(frameWidth, frameHeight)
	f.Title = "Elapsed Time: " + sim.FormatElapsed(elapsed)
	if t, ok := viz.ThemeByName(themeName); ok {
		f.Theme = t
	}
	return f
}

func (a *app) showFrame(cmd *cobra.Command, args []string) error {
	if _, ok := viz.ThemeByName(themeName); !ok {
		return fmt.Errorf("unknown theme: %s (available: %v)", themeName, viz.ThemeNames())
	}

	if len(args) == 0 {
		sys, err := physics.Load(a.stdin)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.stdout, newFrame(0).Render(sys.Snapshot(), nil))
		return nil
	}

	runID := args[0]
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	final, err := st.LoadFinal(runID)
	if err != nil {
		return err
	}

	var tracks [][]physics.Vec2
	if trails {
		run, err := loadRun(runID)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if run != nil {
			tracks = runTracks(run)
		}
	}

	fmt.Fprintln(a.stdout, newFrame(meta.Elapsed).Render(final.Snapshot(), tracks))
	return nil
}

func (a *app) showPresets(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		p := config.GetPreset(args[0])
		if p == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
		}
		r, err := p.Open()
		if err != nil {
			return err
		}
		_, err = io.Copy(a.stdout, r)
		return err
	}

	w := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDT\tDESCRIPTION")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%.0fs\t%s\n", p.Name, p.Dt, p.Description)
	}
	return w.Flush()
}
