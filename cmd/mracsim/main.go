package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/controldev/mracsim/internal/analysis"
	"github.com/controldev/mracsim/internal/config"
	"github.com/controldev/mracsim/internal/experiment"
	"github.com/controldev/mracsim/internal/export"
	"github.com/controldev/mracsim/internal/sim"
	"github.com/controldev/mracsim/internal/storage"
	"github.com/controldev/mracsim/internal/viz"
)

var (
	dataDir    string
	configFile string
	dt         float64
	duration   float64
	steps      int
	integrator string
	sigma      float64
	noSave     bool
	svgFile    string
	// Sweep axis
	sweepParam  string
	sweepValues string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mracsim",
		Short: "model-reference adaptive control simulation lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".mracsim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a scenario",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScenario,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "scenario file (yaml)")
	runCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	runCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	runCmd.Flags().IntVar(&steps, "steps", 0, "step count (overrides duration)")
	runCmd.Flags().StringVar(&integrator, "integrator", "rk4", "integrator (rk4, euler)")
	runCmd.Flags().Float64Var(&sigma, "sigma", 0, "sigma modification gain")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "skip persisting the run")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list scenario presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "chart a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&svgFile, "svg", "", "also write an svg chart to this path")

	sweepCmd := &cobra.Command{
		Use:   "sweep [preset]",
		Short: "sweep one parameter over a scenario",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&configFile, "config", "", "scenario file (yaml)")
	sweepCmd.Flags().StringVar(&sweepParam, "param", "gamma", "parameter to sweep")
	sweepCmd.Flags().StringVar(&sweepValues, "values", "", "comma-separated values")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a saved run as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "run a scenario with a live view",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&configFile, "config", "", "scenario file (yaml)")

	rootCmd.AddCommand(runCmd, presetsCmd, listCmd, plotCmd, sweepCmd, exportCmd, liveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveConfig loads the scenario from a preset name or a config file,
// then lets changed flags override the horizon and integrator.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	var cfg *config.Config
	var err error

	switch {
	case configFile != "":
		cfg, err = config.Load(configFile)
	case len(args) == 1:
		cfg, err = config.GetPreset(args[0])
	default:
		return nil, fmt.Errorf("need a preset name or --config (try: mracsim presets)")
	}
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("steps") {
		cfg.Steps = steps
	}
	if cmd.Flags().Changed("integrator") {
		cfg.Integrator = integrator
	}
	if cmd.Flags().Changed("sigma") {
		cfg.Adaptive.Sigma = sigma
	}
	return cfg, nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	s, err := experiment.Build(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("running %s...\n", cfg.Scenario)
	start := time.Now()
	result, runErr := s.Run(context.Background())
	elapsed := time.Since(start)

	if result == nil {
		return runErr
	}
	fmt.Printf("%s in %v (%d steps)\n", result.Status, elapsed, result.StepsTaken)
	if runErr != nil {
		fmt.Printf("  %v\n", runErr)
	}

	printMetrics(result.Metrics)

	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(cfg, result)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}
	return nil
}

func printMetrics(metrics map[string]float64) {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("\nmetrics:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, name := range names {
		fmt.Fprintf(w, "  %s\t%.6f\n", name, metrics[name])
	}
	w.Flush()
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tSTATUS\tSTEPS\tDT\tINTEG")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%.4f\t%s\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Status,
			run.StepsTaken,
			run.Dt,
			run.Integrator,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	records, err := st.LoadHistory(args[0])
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("run %s has no history", args[0])
	}

	fmt.Printf("run: %s (%s, %s)\n\n", meta.ID, meta.Scenario, meta.Status)
	fmt.Print(viz.Summary(records))

	resp := analysis.Analyze(records)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "peak error\t%.6f at t=%.2fs\n", resp.PeakError, resp.PeakTime)
	if resp.SettlingTime >= 0 {
		fmt.Fprintf(w, "settling time\t%.2fs\n", resp.SettlingTime)
	} else {
		fmt.Fprintf(w, "settling time\tnever\n")
	}
	fmt.Fprintf(w, "steady-state error\t%.6f\n", resp.SteadyStateError)
	fmt.Fprintf(w, "rms error\t%.6f\n", resp.ErrorL2)
	w.Flush()

	if svgFile != "" {
		svg := export.Chart(records, meta.Scenario)
		if err := os.WriteFile(svgFile, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("\nwrote %s\n", svgFile)
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	values, err := parseValues(sweepValues)
	if err != nil {
		return err
	}

	runs, err := experiment.Sweep(context.Background(), cfg, experiment.Axis{
		Param:  sweepParam,
		Values: values,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tSTATUS\tTRACKING_RMS\tPARAM_NORM\tCONTROL_EFFORT\n", strings.ToUpper(sweepParam))
	for _, run := range runs {
		if run.Err != nil {
			fmt.Fprintf(w, "%g\tfailed: %v\t\t\t\n", run.Value, run.Err)
			continue
		}
		fmt.Fprintf(w, "%g\t%s\t%.6f\t%.6f\t%.6f\n",
			run.Value,
			run.Result.Status,
			run.Result.Metrics["tracking_rms"],
			run.Result.Metrics["param_norm"],
			run.Result.Metrics["control_effort"],
		)
	}
	return w.Flush()
}

func parseValues(raw string) ([]float64, error) {
	if raw == "" {
		return nil, fmt.Errorf("--values is required (e.g. --values 0.1,1,10)")
	}
	parts := strings.Split(raw, ",")
	values := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("bad sweep value %q: %w", part, err)
		}
		values = append(values, v)
	}
	return values, nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	records, err := st.LoadHistory(args[0])
	if err != nil {
		return err
	}

	out := struct {
		Meta    *storage.RunMetadata `json:"meta"`
		Records []sim.Record         `json:"records"`
	}{meta, records}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	s, err := experiment.Build(cfg)
	if err != nil {
		return err
	}

	records := make(chan sim.Record)
	errs := make(chan error, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		defer close(records)
		errs <- s.Stream(ctx, func(rec sim.Record) bool {
			select {
			case records <- rec:
				return true
			case <-ctx.Done():
				return false
			}
		})
	}()

	p := tea.NewProgram(viz.NewLive(cfg.Scenario, records, errs))
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
