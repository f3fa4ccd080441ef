package modes

import (
	"math/rand"

	"github.com/san-kum/shatterblade/internal/blade"
)

type options struct {
	seed    int64
	exclude map[string]bool
}

type Option func(*options)

// WithSeed seeds the random choices of the cannon and the lightning jitter.
func WithSeed(seed int64) Option {
	return func(o *options) { o.seed = seed }
}

// Without leaves the named modes out of the catalog.
func Without(names ...string) Option {
	return func(o *options) {
		for _, n := range names {
			o.exclude[n] = true
		}
	}
}

// Names lists every mode this package provides, fallback last.
func Names() []string {
	return []string{"flamethrower", "lightning", "gravity", "cannon", "saw", "swarm", "shield", "expanded", "sword"}
}

// Catalog builds a fresh catalog. Modes carry per-weapon state, so every
// weapon needs its own.
func Catalog(opts ...Option) (*blade.Catalog, error) {
	o := &options{seed: 1, exclude: make(map[string]bool)}
	for _, opt := range opts {
		opt(o)
	}
	rng := rand.New(rand.NewSource(o.seed))
	all := []blade.Mode{
		NewFlamethrower(),
		NewLightning(rng),
		NewGravity(),
		NewCannon(rng),
		NewSaw(),
		NewSwarm(),
		NewShield(),
		NewExpanded(),
	}
	var keep []blade.Mode
	for _, m := range all {
		if !o.exclude[m.Name()] {
			keep = append(keep, m)
		}
	}
	return blade.NewCatalog(NewSword(), keep...)
}
