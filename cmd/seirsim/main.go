package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	kitlog "github.com/go-kit/kit/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/san-kum/seirsim/internal/analysis"
	"github.com/san-kum/seirsim/internal/config"
	"github.com/san-kum/seirsim/internal/experiment"
	"github.com/san-kum/seirsim/internal/logging"
	"github.com/san-kum/seirsim/internal/render"
	"github.com/san-kum/seirsim/internal/scenario"
	"github.com/san-kum/seirsim/internal/storage"
)

var (
	v        = viper.New()
	settings *config.Settings
	logger   kitlog.Logger = logging.Nop()

	settingsFile string
	configFile   string
	rendererName string
	outPath      string
	parallel     bool
	save         bool
	carve        bool

	integratorNames []string

	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int

	xAxis string
	yAxis string
)

// main registers the commands and their flags. Persistent flags are bound
// into viper so they layer over the settings file and SEIRSIM_* variables.
func main() {
	rootCmd := &cobra.Command{
		Use:           "seirsim",
		Short:         "SEIR outbreak simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if settings, err = config.LoadSettings(v, settingsFile); err != nil {
				return err
			}
			logger, err = logging.New(settings.LogLevel, settings.LogFormat, os.Stderr)
			return err
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&settingsFile, "settings", "", "settings file (default ./seirsim.yaml)")
	pf.String("data", ".seirsim/runs", "run directory")
	pf.String("log-level", "info", "debug, info, warn, error or none")
	pf.String("log-format", "logfmt", "logfmt or json")
	pf.String("integrator", config.DefaultIntegrator, "euler, rk4 or rk45")
	pf.Float64("rtol", config.DefaultRelTol, "relative tolerance")
	pf.Float64("atol", config.DefaultAbsTol, "absolute tolerance")
	pf.Int("workers", 0, "concurrent scenarios, 0 for unbounded")
	for key, flag := range map[string]string{
		"data_dir":    "data",
		"log.level":   "log-level",
		"log.format":  "log-format",
		"integrator":  "integrator",
		"solver.rtol": "rtol",
		"solver.atol": "atol",
		"workers":     "workers",
	} {
		if err := v.BindPFlag(key, pf.Lookup(flag)); err != nil {
			panic(err)
		}
	}

	runCmd := &cobra.Command{
		Use:   "run [preset...]",
		Short: "run scenarios (default: baseline and hygiene)",
		RunE:  runScenarios,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "scenario file (yaml)")
	runCmd.Flags().StringVar(&rendererName, "renderer", config.DefaultRenderer, "ascii, table, csv, chart or none")
	runCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file for chart")
	runCmd.Flags().BoolVar(&parallel, "parallel", false, "integrate scenarios concurrently")
	runCmd.Flags().BoolVar(&save, "save", true, "store runs in the data directory")
	runCmd.Flags().BoolVar(&carve, "carve", false, "take E0 out of S0")

	batchCmd := &cobra.Command{
		Use:   "batch [file]",
		Short: "run every scenario of a config file",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}

	compareCmd := &cobra.Command{
		Use:   "compare [preset]",
		Short: "compare integrators on one scenario",
		Args:  cobra.MaximumNArgs(1),
		RunE:  compareIntegrators,
	}
	compareCmd.Flags().StringSliceVar(&integratorNames, "integrators", []string{"rk45", "rk4", "euler"}, "integrators, first is the reference")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list scenario presets",
		RunE:  listPresets,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [preset]",
		Short: "vary one parameter and plot the infected peak",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&sweepParam, "param", "beta", "model parameter, or hygiene for the compliant fraction")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 1e-4, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 4e-4, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 11, "number of values")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVarP(&outPath, "out", "o", "", "write a chart instead of plotting to the terminal")

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase portrait of two compartments",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().StringVar(&xAxis, "x", "S", "compartment on the x axis")
	phaseCmd.Flags().StringVar(&yAxis, "y", "I", "compartment on the y axis")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	rootCmd.AddCommand(runCmd, batchCmd, compareCmd, presetsCmd, sweepCmd, listCmd, plotCmd, phaseCmd, exportCSVCmd, exportJSONCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func openStore() (*storage.Store, error) {
	st := storage.New(settings.DataDir)
	return st, st.Init()
}

func runScenarios(cmd *cobra.Command, args []string) error {
	cfg := settings.Config()
	if configFile != "" {
		loaded, err := config.LoadWith(configFile, cfg)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	} else {
		cfg.Output.Save = save
	}

	if len(args) > 0 || len(cfg.Scenarios) == 0 {
		names := args
		if len(names) == 0 {
			names = []string{"baseline", "hygiene"}
		}
		cfg.Scenarios = cfg.Scenarios[:0]
		for _, name := range names {
			spec, ok := config.GetPreset(name)
			if !ok {
				return fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
			}
			spec.CarveExposed = spec.CarveExposed || carve
			cfg.Scenarios = append(cfg.Scenarios, config.ScenarioEntry{Spec: spec})
		}
	}

	flags := cmd.Flags()
	if flags.Changed("renderer") || configFile == "" {
		cfg.Output.Renderer = rendererName
	}
	if flags.Changed("out") {
		cfg.Output.Path = outPath
	}
	if flags.Changed("parallel") {
		cfg.Parallel = parallel
	}
	if flags.Changed("save") {
		cfg.Output.Save = save
	}
	return execute(cmd.Context(), cfg)
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadWith(args[0], settings.Config())
	if err != nil {
		return err
	}
	return execute(cmd.Context(), cfg)
}

func execute(ctx context.Context, cfg *config.Config) error {
	extra := []experiment.Option{experiment.WithLogger(logger), experiment.WithWorkers(settings.Workers)}
	if cfg.Output.Save {
		st, err := openStore()
		if err != nil {
			return err
		}
		extra = append(extra, experiment.WithStore(st))
	}

	results, err := experiment.Batch(ctx, experiment.NewRegistry(), cfg, os.Stdout, extra...)
	if err != nil {
		return err
	}

	summaries := make([]analysis.Summary, len(results))
	for i, res := range results {
		summaries[i] = res.Summary
	}
	fmt.Println()
	if err := render.WriteSummaries(os.Stdout, summaries); err != nil {
		return err
	}
	for _, res := range results {
		if res.RunID != "" {
			fmt.Printf("%s %s\n", render.LabelStyle.Render("run id:"), res.RunID)
		}
	}
	return nil
}

func presetScenario(args []string, fallback string) (*scenario.Scenario, scenario.Spec, error) {
	name := fallback
	if len(args) > 0 {
		name = args[0]
	}
	spec, ok := config.GetPreset(name)
	if !ok {
		return nil, spec, fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
	}
	sc, err := spec.Build()
	return sc, spec, err
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	sc, _, err := presetScenario(args, "baseline")
	if err != nil {
		return err
	}

	cfg := settings.Config()
	results, err := experiment.CompareIntegrators(cmd.Context(), experiment.NewRegistry(), sc, integratorNames, cfg.Options())
	if err != nil {
		return err
	}

	fmt.Println(render.TitleStyle.Render(fmt.Sprintf("%s: integrators vs %s", sc.Label(), integratorNames[0])))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "integrator\tsteps\tpeak I\tmax |dI|\tmax rel\ttime_ms")
	for _, c := range results {
		if c.Err != nil {
			fmt.Fprintf(w, "%s\terror: %v\n", c.Integrator, c.Err)
			continue
		}
		peak, _ := c.Summary.Peak("I")
		fmt.Fprintf(w, "%s\t%d\t%.4f\t%.2e\t%.2e\t%.2f\n",
			c.Integrator, c.Steps, peak.Value, c.Diff.Abs["I"], c.Diff.Max(), float64(c.Elapsed.Microseconds())/1000)
	}
	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tLABEL\tR0\tDAYS")
	for _, name := range config.ListPresets() {
		spec, _ := config.GetPreset(name)
		sc, err := spec.Build()
		if err != nil {
			return fmt.Errorf("preset %s: %w", name, err)
		}
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%g\n", name, sc.Label(), sc.R0(), spec.Grid.Stop-spec.Grid.Start)
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	r := analysis.SweepRange{Min: sweepMin, Max: sweepMax, Steps: sweepSteps}
	reg := experiment.NewRegistry()
	cfg := settings.Config()

	factory, err := reg.IntegratorFactory(cfg.Integrator)
	if err != nil {
		return err
	}

	var (
		points []analysis.SweepPoint
		label  string
	)
	if sweepParam == "hygiene" {
		if !cmd.Flags().Changed("min") && !cmd.Flags().Changed("max") {
			r.Min, r.Max = 0, 1
		}
		sc, spec, err := presetScenario(args, "hygiene")
		if err != nil {
			return err
		}
		label = sc.Label() + ", compliant fraction"
		points, err = analysis.SweepHygiene(cmd.Context(), spec, r, factory, cfg.Options())
		if err != nil {
			return err
		}
	} else {
		sc, _, err := presetScenario(args, "baseline")
		if err != nil {
			return err
		}
		label = fmt.Sprintf("%s, %s", sc.Label(), sweepParam)
		points, err = analysis.Sweep(cmd.Context(), sc, sweepParam, r, factory, cfg.Options())
		if err != nil {
			return err
		}
	}

	fmt.Println(analysis.SweepToASCII(points, "peak I vs "+label, 60, 12))
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tpeak I\tpeak day\tfinal R\n", strings.ToLower(sweepParam))
	for _, p := range points {
		fmt.Fprintf(w, "%g\t%.3f\t%.2f\t%.3f\n", p.Param, p.Peak, p.PeakTime, p.FinalSize)
	}
	return w.Flush()
}
