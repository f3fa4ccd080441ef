package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/shatterblade/internal/analysis"
	"github.com/san-kum/shatterblade/internal/blade"
	"github.com/san-kum/shatterblade/internal/experiment"
	"github.com/san-kum/shatterblade/internal/export"
	"github.com/san-kum/shatterblade/internal/modes"
	"github.com/san-kum/shatterblade/internal/storage"
	"github.com/spf13/cobra"
)

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
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tDURATION\tDT\tINTEG\tSEED")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%s\t%d\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Integrator,
			run.Seed,
		)
	}

	return w.Flush()
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

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n", meta.Scenario)
	fmt.Printf("samples: %d\n\n", len(samples))

	locked := make([]float64, len(samples))
	residual := make([]float64, len(samples))
	for i, s := range samples {
		locked[i] = float64(s.Locked)
		residual[i] = s.Residual
	}

	for _, series := range []struct {
		caption string
		data    []float64
	}{
		{"locked fragments", locked},
		{"residual velocity (m/s)", residual},
	} {
		graph := asciigraph.Plot(series.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(series.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir).ExportJSON(os.Stdout, args[0])
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	samples, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}
	return storage.WriteSamples(os.Stdout, samples)
}

func listScenarios(cmd *cobra.Command, args []string) error {
	reg, err := experiment.NewRegistry()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCENARIO\tEVENTS\tDESCRIPTION")
	for _, name := range reg.ListScenarios() {
		s, err := reg.GetScenario(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%d\t%s\n", name, len(s.Events), s.Description)
	}
	return w.Flush()
}

func listModes(cmd *cobra.Command, args []string) error {
	for _, name := range modes.Names() {
		fmt.Println(name)
	}
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
	if len(samples) == 0 {
		return fmt.Errorf("no data")
	}

	fmt.Printf("analysis: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n\n", meta.Scenario)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODE\tSTART\tEND\tDURATION")
	for _, seg := range analysis.Timeline(samples) {
		mode := seg.Mode
		if mode == "" {
			mode = "-"
		}
		fmt.Fprintf(w, "%s\t%.2fs\t%.2fs\t%.2fs\n", mode, seg.Start, seg.End, seg.Duration())
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Println()

	if at := analysis.SettleTime(samples, blade.Count, settleTol); at >= 0 {
		fmt.Printf("settled at: %.3f s\n", at)
	} else {
		fmt.Println("settled at: never")
	}

	residual := analysis.Residual.Values(samples)
	ps := analysis.PowerSpectrum(residual)
	if len(ps) > 1 {
		graph := asciigraph.Plot(ps[1:],
			asciigraph.Height(15),
			asciigraph.Width(80),
			asciigraph.Caption("residual velocity spectrum"),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	freq, _ := analysis.DominantFrequency(residual, meta.Dt)
	fmt.Printf("dominant frequency: %.3f hz\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}
	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	x, err := analysis.GetSeries(xAxis)
	if err != nil {
		return fmt.Errorf("%w: %s (available: %v)", err, xAxis, analysis.SeriesNames())
	}
	y, err := analysis.GetSeries(yAxis)
	if err != nil {
		return fmt.Errorf("%w: %s (available: %v)", err, yAxis, analysis.SeriesNames())
	}

	st := storage.New(dataDir)
	samples, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}
	portrait := analysis.NewPortrait(samples, x, y)
	fmt.Printf("%s vs %s\n", yAxis, xAxis)
	fmt.Print(portrait.ASCII(80, 24))
	if svgOut == "" {
		return nil
	}
	return os.WriteFile(svgOut, []byte(export.PortraitToSVG(portrait, 800, 480, "#00ffff")), 0644)
}
