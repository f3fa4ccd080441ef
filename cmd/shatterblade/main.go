package main

import (
	"fmt"
	"os"

	"github.com/san-kum/shatterblade/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	dataDir    string
	configFile string
	verbose    bool

	dt         float64
	duration   float64
	seed       int64
	integrator string
	preset     string
	tutorial   bool
	flash      bool
	exclude    []string

	frameRate int
	theme     string
	numRuns   int
	limit     int

	xAxis     string
	yAxis     string
	settleTol float64
	svgOut    string
	snapOut   string
	snapAt    float64

	sweepParams []string
	sweepMetric string
)

var log = zap.NewNop()

func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopmentConfig().Build()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

// addRunFlags registers the flags that shape a single run.
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	cmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().BoolVar(&tutorial, "tutorial", false, "show tutorial labels")
	cmd.Flags().BoolVar(&flash, "flash", false, "flash when the blade assembles")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "modes to leave out")
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "shatterblade",
		Short: "fragmented blade weapon controller",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := newLogger()
			if err != nil {
				return err
			}
			log = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = log.Sync()
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".shatterblade", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run [scenario]",
		Short: "run a scripted scenario and save it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScenario,
	}
	addRunFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live [scenario]",
		Short: "run a scenario with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addRunFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")
	liveCmd.Flags().StringVar(&theme, "theme", "cyberpunk", "color theme")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble [scenario]",
		Short: "run a scenario over many seeds",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runEnsemble,
	}
	addRunFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&numRuns, "runs", 8, "number of runs")
	ensembleCmd.Flags().IntVar(&limit, "limit", 0, "concurrent runs (0 for all)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot locked fragments and residual velocity",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run samples to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and samples to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [scenario]",
		Short: "list available presets for a scenario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for scenario: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	scenariosCmd := &cobra.Command{
		Use:   "scenarios",
		Short: "list built-in scenarios",
		RunE:  listScenarios,
	}

	modesCmd := &cobra.Command{
		Use:   "modes",
		Short: "list weapon modes",
		RunE:  listModes,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "mode timeline, settle time and residual spectrum",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().Float64Var(&settleTol, "tol", 0.05, "residual velocity counted as settled")

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "plot one sampled series against another",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().StringVar(&xAxis, "x-axis", "locked", "series for the x-axis")
	phaseCmd.Flags().StringVar(&yAxis, "y-axis", "residual", "series for the y-axis")
	phaseCmd.Flags().StringVar(&svgOut, "svg", "", "also write the plot as SVG to this file")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot [scenario]",
		Short: "render the blade at a moment of a scenario as SVG",
		Args:  cobra.MaximumNArgs(1),
		RunE:  snapshot,
	}
	addRunFlags(snapshotCmd)
	snapshotCmd.Flags().Float64Var(&snapAt, "at", 3, "scenario time to render")
	snapshotCmd.Flags().StringVar(&snapOut, "out", "snapshot.svg", "output file")
	snapshotCmd.Flags().StringVar(&theme, "theme", "cyberpunk", "color theme")

	sweepCmd := &cobra.Command{
		Use:   "sweep [scenario]",
		Short: "grid search config parameters for the lowest metric",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().StringArrayVar(&sweepParams, "param", nil, "parameter grid as name=v1,v2,... (repeatable)")
	sweepCmd.Flags().StringVar(&sweepMetric, "metric", "residual_velocity", "metric to minimize")

	rootCmd.AddCommand(runCmd, liveCmd, ensembleCmd, sweepCmd, listCmd, plotCmd, analyzeCmd, phaseCmd, snapshotCmd, exportCmd, exportCSVCmd, exportJSONCmd, presetsCmd, scenariosCmd, modesCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
