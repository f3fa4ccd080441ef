package experiment

import (
	"errors"
	"fmt"
	"sort"

	"github.com/san-kum/shatterblade/internal/automation"
	"github.com/san-kum/shatterblade/internal/integrators"
	"github.com/san-kum/shatterblade/internal/metrics"
)

var (
	ErrUnknownScenario   = errors.New("experiment: unknown scenario")
	ErrUnknownIntegrator = errors.New("experiment: unknown integrator")
	ErrNoRuns            = errors.New("experiment: ensemble needs at least one run")
)

type Registry struct {
	scenarios   map[string]*automation.Script
	integrators map[string]func() integrators.Integrator
}

// NewRegistry loads the bundled scenarios and the body integrators.
func NewRegistry() (*Registry, error) {
	scripts, err := automation.Builtin()
	if err != nil {
		return nil, err
	}
	r := &Registry{
		scenarios:   scripts,
		integrators: make(map[string]func() integrators.Integrator),
	}

	r.integrators["euler"] = func() integrators.Integrator { return integrators.NewEuler() }
	r.integrators["verlet"] = func() integrators.Integrator { return integrators.NewVerlet() }
	r.integrators["leapfrog"] = func() integrators.Integrator { return integrators.NewLeapfrog() }
	r.integrators["rk4"] = func() integrators.Integrator { return integrators.NewRK4() }
	r.integrators["rk45"] = func() integrators.Integrator { return integrators.NewRK45() }

	return r, nil
}

// AddScenario registers or replaces a script under its name.
func (r *Registry) AddScenario(s *automation.Script) {
	r.scenarios[s.Name] = s
}

func (r *Registry) GetScenario(name string) (*automation.Script, error) {
	s, ok := r.scenarios[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownScenario, name)
	}
	return s, nil
}

func (r *Registry) GetIntegrator(name string) (integrators.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownIntegrator, name)
	}
	return fn(), nil
}

func (r *Registry) ListScenarios() []string {
	names := make([]string, 0, len(r.scenarios))
	for name := range r.scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) ListIntegrators() []string {
	names := make([]string, 0, len(r.integrators))
	for name := range r.integrators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics returns fresh metrics; every run needs its own.
func (r *Registry) DefaultMetrics() []metrics.Metric {
	return metrics.Default()
}
