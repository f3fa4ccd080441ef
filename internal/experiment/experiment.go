package experiment

import (
	"context"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/san-kum/shatterblade/internal/automation"
	"github.com/san-kum/shatterblade/internal/blade"
	"github.com/san-kum/shatterblade/internal/config"
	"github.com/san-kum/shatterblade/internal/engine"
	"github.com/san-kum/shatterblade/internal/input"
	"github.com/san-kum/shatterblade/internal/metrics"
	"github.com/san-kum/shatterblade/internal/modes"
	"github.com/san-kum/shatterblade/internal/physics"
	"github.com/san-kum/shatterblade/internal/present"
	"github.com/san-kum/shatterblade/internal/spatial"
	"go.uber.org/zap"
)

var (
	// Grip is where the hilt starts, in the right hand.
	Grip = mgl64.Vec3{0, 1.2, 0}
	// OffHand is the resting spot of the left hand.
	OffHand = mgl64.Vec3{-0.4, 1.2, 0.2}
	// PlayerAt is the player's body, behind the hands.
	PlayerAt = mgl64.Vec3{0, 1, 0.5}
)

// Observer sees every frame after the weapon updated.
type Observer interface {
	OnFrame(s metrics.Sample)
}

type ObserverFunc func(s metrics.Sample)

func (f ObserverFunc) OnFrame(s metrics.Sample) { f(s) }

type Result struct {
	Scenario   string
	Seed       int64
	Session    uuid.UUID
	Samples    []metrics.Sample
	Metrics    map[string]float64
	StepsTaken int
	// Events are the combat events the world recorded.
	Events []physics.Event
	// Pulses is the number of haptic requests.
	Pulses int
}

type Option func(*Experiment)

func WithLogger(l *zap.Logger) Option {
	return func(e *Experiment) { e.log = l }
}

func WithMetrics(ms ...metrics.Metric) Option {
	return func(e *Experiment) { e.metrics = append(e.metrics, ms...) }
}

func WithObserver(o Observer) Option {
	return func(e *Experiment) { e.observers = append(e.observers, o) }
}

// Experiment wires one weapon into a reference world and plays a scenario
// against it.
type Experiment struct {
	cfg    *config.Config
	log    *zap.Logger
	world  *physics.World
	dev    *input.Device
	fx     *present.Recorder
	weapon *blade.Weapon
	player *automation.Player
	sess   *engine.Session

	metrics   []metrics.Metric
	observers []Observer
	steps     int
}

// New builds the world for cfg. Scenario and integrator names are resolved
// through reg.
func New(cfg *config.Config, reg *Registry, opts ...Option) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	script, err := reg.GetScenario(cfg.Scenario)
	if err != nil {
		return nil, err
	}
	integ, err := reg.GetIntegrator(cfg.Integrator)
	if err != nil {
		return nil, err
	}
	e := &Experiment{cfg: cfg, log: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	log := e.log.With(zap.String("scenario", cfg.Scenario), zap.Int64("seed", cfg.Seed))

	worldOpts := []physics.Option{
		physics.WithIntegrator(integ),
		physics.WithSubsteps(cfg.World.Substeps),
		physics.WithGravity(mgl64.Vec3{0, -cfg.World.Gravity, 0}),
		physics.WithSeed(cfg.Seed),
		physics.WithSpawnDelay(cfg.World.SpawnDelay),
		physics.WithLogger(log.Named("physics")),
	}
	if cfg.World.Floor != nil {
		worldOpts = append(worldOpts, physics.WithFloor(*cfg.World.Floor))
	}
	e.world = physics.NewWorld(worldOpts...)
	e.dev = input.NewDevice()
	e.fx = present.NewRecorder(present.WithLogger(log.Named("present")))

	root := e.world.AddBody(physics.BodySpec{
		Name:      "core",
		Pose:      spatial.At(Grip),
		Mass:      2,
		Radius:    0.05,
		Kinematic: true,
	})
	body := e.world.AddBody(physics.BodySpec{
		Name:      "player",
		Pose:      spatial.At(PlayerAt),
		Mass:      70,
		Kinematic: true,
		Kind:      engine.HitCreature,
		Health:    100,
	})
	for _, s := range engine.Sides {
		e.dev.BindBody(s, e.world.CreateBody(spatial.Identity(), true))
	}
	e.dev.SetPose(engine.Right, spatial.At(Grip))
	e.dev.SetPose(engine.Left, spatial.At(OffHand))

	catalog, err := modes.Catalog(modes.WithSeed(cfg.Seed), modes.Without(cfg.Exclude...))
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	e.sess = engine.NewSession(body)
	rt := engine.Runtime{
		Physics: e.world,
		Input:   e.dev,
		Labels:  e.fx,
		Effects: e.fx,
		Combat:  e.world,
		Spawner: e.world,
		Clock:   e.world,
		Session: e.sess,
	}
	e.weapon = blade.New(rt, root, catalog, blade.WithConfig(cfg.Blade()), blade.WithLogger(log.Named("blade")))
	e.world.OnContact(func(a, b engine.BodyID, speed float64) {
		e.weapon.Impact(a, speed)
		e.weapon.Impact(b, speed)
	})
	e.player = automation.NewPlayer(script, log.Named("automation"))
	if len(e.metrics) == 0 {
		e.metrics = reg.DefaultMetrics()
	}
	log.Debug("experiment ready", zap.String("session", e.sess.ID.String()))
	e.log = log
	return e, nil
}

func (e *Experiment) Device() *input.Device        { return e.dev }
func (e *Experiment) World() *physics.World        { return e.world }
func (e *Experiment) Weapon() *blade.Weapon        { return e.weapon }
func (e *Experiment) Presenter() *present.Recorder { return e.fx }
func (e *Experiment) Session() *engine.Session     { return e.sess }
func (e *Experiment) Config() *config.Config       { return e.cfg }
func (e *Experiment) Now() float64                 { return e.world.Now() }

// Step advances one frame: physics, the script, hand motion, then the
// weapon. It returns the frame's sample.
func (e *Experiment) Step() (metrics.Sample, error) {
	dt := e.cfg.Dt
	if err := e.world.Step(dt); err != nil {
		return metrics.Sample{}, err
	}
	now := e.world.Now()
	if err := e.player.Advance(now, dt, e); err != nil {
		return metrics.Sample{}, err
	}
	e.dev.Apply(e.world, dt)
	e.weapon.Update(blade.Frame{Now: now, Dt: dt})
	e.steps++

	s := metrics.Capture(e.weapon, now)
	for _, m := range e.metrics {
		m.Observe(s)
	}
	for _, o := range e.observers {
		o.OnFrame(s)
	}
	return s, nil
}

// Run steps until the configured duration. A cancelled context stops the
// run and returns what was gathered so far.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	steps := int(e.cfg.Duration/e.cfg.Dt + 0.5)
	res := &Result{
		Scenario: e.cfg.Scenario,
		Seed:     e.cfg.Seed,
		Session:  e.sess.ID,
		Samples:  make([]metrics.Sample, 0, steps),
		Metrics:  make(map[string]float64),
	}
	for _, m := range e.metrics {
		m.Reset()
	}
	defer e.finish(res)

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}
		s, err := e.Step()
		if err != nil {
			e.log.Warn("run stopped", zap.Int("step", i), zap.Error(err))
			return res, fmt.Errorf("step %d: %w", i, err)
		}
		res.Samples = append(res.Samples, s)
		res.StepsTaken++
	}
	e.log.Info("run complete", zap.Int("steps", res.StepsTaken))
	return res, nil
}

func (e *Experiment) finish(res *Result) {
	for _, m := range e.metrics {
		res.Metrics[m.Name()] = m.Value()
	}
	res.Events = e.world.Events()
	res.Pulses = len(e.dev.Pulses())
}
