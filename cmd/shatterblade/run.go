package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/san-kum/shatterblade/internal/config"
	"github.com/san-kum/shatterblade/internal/experiment"
	"github.com/san-kum/shatterblade/internal/export"
	"github.com/san-kum/shatterblade/internal/storage"
	"github.com/san-kum/shatterblade/internal/viz"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// resolveConfig layers defaults, the config file, the preset and then any
// flag the user set explicitly.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if len(args) > 0 {
		cfg.Scenario = args[0]
	}
	if preset != "" {
		p := config.GetPreset(cfg.Scenario, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(cfg.Scenario))
		}
		cfg = p
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
	if flags.Changed("tutorial") {
		cfg.Weapon.Tutorial = tutorial
	}
	if flags.Changed("flash") {
		cfg.Weapon.AssembledFlash = flash
	}
	if flags.Changed("exclude") {
		cfg.Exclude = exclude
	}
	return cfg, cfg.Validate()
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	reg, err := experiment.NewRegistry()
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg, reg, experiment.WithLogger(log))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s scenario...\n", cfg.Scenario)
	start := time.Now()

	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(cfg, result)
	if err != nil {
		return err
	}
	log.Info("run saved", zap.String("run", runID), zap.Duration("elapsed", elapsed))

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("events: %d\n", len(result.Events))
	fmt.Printf("haptic pulses: %d\n", result.Pulses)
	fmt.Println("\nmetrics:")
	printMetrics(result.Metrics)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	reg, err := experiment.NewRegistry()
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg, reg, experiment.WithLogger(log))
	if err != nil {
		return err
	}
	return viz.Run(exp, frameRate, theme)
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	reg, err := experiment.NewRegistry()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ens := experiment.NewEnsemble(reg, cfg, numRuns, cfg.Seed).SetLimit(limit).SetLogger(log)
	fmt.Printf("running %d x %s...\n", numRuns, cfg.Scenario)
	start := time.Now()
	results, err := ens.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v\n\n", time.Since(start))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tSESSION\tSTEPS\tLOCKED\tSWITCHES")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%s\t%d\t%.3f\t%.0f\n",
			r.Seed,
			r.Session.String()[:8],
			r.StepsTaken,
			r.Metrics["locked_fraction"],
			r.Metrics["mode_switches"],
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println("\nmean metrics:")
	printMetrics(experiment.Summary(results))
	return nil
}

func snapshot(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	reg, err := experiment.NewRegistry()
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg, reg, experiment.WithLogger(log))
	if err != nil {
		return err
	}
	for exp.Now()+cfg.Dt/2 < snapAt {
		if _, err := exp.Step(); err != nil {
			return err
		}
	}

	t := viz.GetTheme(theme)
	svg := export.CanvasToSVG(viz.Snapshot(exp), 6, string(t.Muted), func(g rune) string {
		return string(t.GlyphColor(g))
	})
	if err := os.WriteFile(snapOut, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s at %.2fs\n", snapOut, exp.Now())
	return nil
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
}
