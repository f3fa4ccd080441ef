package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/shatterblade/internal/config"
	"github.com/san-kum/shatterblade/internal/experiment"
)

var (
	ErrUnknownParam  = errors.New("optim: unknown parameter")
	ErrUnknownMetric = errors.New("optim: unknown metric")
	ErrEmptyGrid     = errors.New("optim: empty grid")
)

// setters are the config fields a grid can vary.
var setters = map[string]func(*config.Config, float64){
	"dt":              func(c *config.Config, v float64) { c.Dt = v },
	"substeps":        func(c *config.Config, v float64) { c.World.Substeps = int(v) },
	"gravity":         func(c *config.Config, v float64) { c.World.Gravity = v },
	"spawn_delay":     func(c *config.Config, v float64) { c.World.SpawnDelay = v },
	"tap_threshold":   func(c *config.Config, v float64) { c.Weapon.TapThreshold = v },
	"haptic_interval": func(c *config.Config, v float64) { c.Weapon.HapticInterval = v },
}

func ParamNames() []string {
	names := make([]string, 0, len(setters))
	for n := range setters {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Apply sets the named parameter on cfg.
func Apply(cfg *config.Config, name string, v float64) error {
	set, ok := setters[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownParam, name)
	}
	set(cfg, v)
	return nil
}

// Trial is one evaluated point of the grid.
type Trial struct {
	Params map[string]float64
	Value  float64
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) == 0 || len(params) != len(ranges) {
		return nil, ErrEmptyGrid
	}
	for i, p := range params {
		if _, ok := setters[p]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownParam, p)
		}
		if len(ranges[i]) == 0 {
			return nil, fmt.Errorf("%w: no values for %s", ErrEmptyGrid, p)
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Search runs base at every point of the grid and returns the trial with the
// lowest value of metricName, along with every trial in grid order.
func (g *GridSearch) Search(
	ctx context.Context,
	reg *experiment.Registry,
	base *config.Config,
	metricName string,
) (Trial, []Trial, error) {
	var trials []Trial
	err := g.searchRecursive(ctx, 0, make(map[string]float64), func(params map[string]float64) error {
		cfg := base.Clone()
		for k, v := range params {
			if err := Apply(cfg, k, v); err != nil {
				return err
			}
		}
		exp, err := experiment.New(cfg, reg)
		if err != nil {
			return fmt.Errorf("%v: %w", params, err)
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return err
		}
		val, ok := result.Metrics[metricName]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownMetric, metricName)
		}
		trials = append(trials, Trial{Params: params, Value: val})
		return nil
	})
	if err != nil {
		return Trial{}, trials, err
	}

	best := Trial{Value: math.Inf(1)}
	for _, t := range trials {
		if t.Value < best.Value {
			best = t
		}
	}
	return best, trials, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	eval func(map[string]float64) error,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.paramNames) {
		return eval(current)
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, eval); err != nil {
			return err
		}
	}
	return nil
}
