package experiment

import (
	"context"
	"runtime"

	"github.com/san-kum/shatterblade/internal/config"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Ensemble repeats one configuration across consecutive seeds. Each run
// gets its own world and weapon.
type Ensemble struct {
	reg       *Registry
	base      *config.Config
	numRuns   int
	seedStart int64
	limit     int
	log       *zap.Logger
}

func NewEnsemble(reg *Registry, base *config.Config, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{
		reg:       reg,
		base:      base,
		numRuns:   numRuns,
		seedStart: seedStart,
		limit:     runtime.GOMAXPROCS(0),
		log:       zap.NewNop(),
	}
}

// SetLimit caps the runs in flight.
func (e *Ensemble) SetLimit(n int) *Ensemble {
	if n > 0 {
		e.limit = n
	}
	return e
}

func (e *Ensemble) SetLogger(l *zap.Logger) *Ensemble {
	e.log = l
	return e
}

// Run returns results in seed order. The first failing run cancels the
// rest.
func (e *Ensemble) Run(ctx context.Context) ([]*Result, error) {
	if e.numRuns < 1 {
		return nil, ErrNoRuns
	}
	results := make([]*Result, e.numRuns)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.limit)
	for i := 0; i < e.numRuns; i++ {
		idx := i
		g.Go(func() error {
			cfg := e.base.Clone()
			cfg.Seed = e.seedStart + int64(idx)
			exp, err := New(cfg, e.reg, WithLogger(e.log))
			if err != nil {
				return err
			}
			res, err := exp.Run(ctx)
			if err != nil {
				return err
			}
			results[idx] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Summary averages each metric over the results.
func Summary(results []*Result) map[string]float64 {
	out := make(map[string]float64)
	if len(results) == 0 {
		return out
	}
	for _, r := range results {
		for name, v := range r.Metrics {
			out[name] += v
		}
	}
	for name := range out {
		out[name] /= float64(len(results))
	}
	return out
}
