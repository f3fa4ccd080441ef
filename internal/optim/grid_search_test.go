package optim

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/shatterblade/internal/config"
	"github.com/san-kum/shatterblade/internal/experiment"
)

func TestNewGridSearchRejects(t *testing.T) {
	if _, err := NewGridSearch(nil, nil); !errors.Is(err, ErrEmptyGrid) {
		t.Errorf("expected ErrEmptyGrid, got %v", err)
	}
	if _, err := NewGridSearch([]string{"mass"}, [][]float64{{1}}); !errors.Is(err, ErrUnknownParam) {
		t.Errorf("expected ErrUnknownParam, got %v", err)
	}
	if _, err := NewGridSearch([]string{"dt"}, [][]float64{{}}); !errors.Is(err, ErrEmptyGrid) {
		t.Errorf("expected ErrEmptyGrid, got %v", err)
	}
}

func TestApply(t *testing.T) {
	cfg := config.DefaultConfig()
	if err := Apply(cfg, "substeps", 2); err != nil {
		t.Fatal(err)
	}
	if cfg.World.Substeps != 2 {
		t.Errorf("expected 2 substeps, got %d", cfg.World.Substeps)
	}
	if err := Apply(cfg, "tap_threshold", 0.5); err != nil || cfg.Weapon.TapThreshold != 0.5 {
		t.Errorf("tap threshold not applied: %v", err)
	}
	if len(ParamNames()) != len(setters) {
		t.Errorf("unexpected names %v", ParamNames())
	}
}

func TestSearch(t *testing.T) {
	reg, err := experiment.NewRegistry()
	if err != nil {
		t.Fatal(err)
	}
	base := config.DefaultConfig()
	base.Duration = 0.5

	g, err := NewGridSearch([]string{"substeps", "gravity"}, [][]float64{{1, 4}, {0, 9.81}})
	if err != nil {
		t.Fatal(err)
	}
	best, trials, err := g.Search(context.Background(), reg, base, "violations")
	if err != nil {
		t.Fatal(err)
	}
	if len(trials) != 4 {
		t.Fatalf("expected 4 trials, got %d", len(trials))
	}
	if trials[0].Params["substeps"] != 1 || trials[0].Params["gravity"] != 0 {
		t.Errorf("unexpected first trial %v", trials[0].Params)
	}
	if best.Value != 0 {
		t.Errorf("expected no joint violations, got %f", best.Value)
	}
	if base.World.Substeps != config.DefaultSubsteps {
		t.Error("search modified the base config")
	}

	if _, _, err := g.Search(context.Background(), reg, base, "lap_time"); !errors.Is(err, ErrUnknownMetric) {
		t.Errorf("expected ErrUnknownMetric, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := g.Search(ctx, reg, base, "violations"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
