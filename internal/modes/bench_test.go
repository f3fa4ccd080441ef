package modes

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/shatterblade/internal/blade"
	"github.com/san-kum/shatterblade/internal/engine"
	"github.com/san-kum/shatterblade/internal/input"
	"github.com/san-kum/shatterblade/internal/physics"
	"github.com/san-kum/shatterblade/internal/present"
	"github.com/san-kum/shatterblade/internal/shard"
	"github.com/san-kum/shatterblade/internal/spatial"
	"github.com/stretchr/testify/require"
)

const dt = 1.0 / 60

type bench struct {
	world  *physics.World
	dev    *input.Device
	fx     *present.Recorder
	root   engine.BodyID
	player engine.BodyID
	weapon *blade.Weapon
}

func newBench(t *testing.T, tutorial bool) *bench {
	t.Helper()
	world := physics.NewWorld(physics.WithSpawnDelay(0.1), physics.WithSeed(3))
	dev := input.NewDevice()
	fx := present.NewRecorder()
	grip := spatial.At(mgl64.Vec3{0, 1.2, 0})
	root := world.AddBody(physics.BodySpec{Name: "core", Pose: grip, Mass: 2, Radius: 0.05, Kinematic: true})
	player := world.AddBody(physics.BodySpec{Name: "player", Pose: spatial.At(mgl64.Vec3{0, 1, 0.5}), Mass: 70, Kinematic: true, Kind: engine.HitCreature, Health: 100})
	for _, s := range engine.Sides {
		dev.BindBody(s, world.CreateBody(spatial.Identity(), true))
	}
	dev.SetPose(engine.Right, grip)
	dev.SetPose(engine.Left, spatial.At(mgl64.Vec3{-0.4, 1.2, 0.2}))
	dev.Grab(engine.Right, root, grip)

	catalog, err := Catalog(WithSeed(5))
	require.NoError(t, err)
	cfg := blade.DefaultConfig()
	cfg.Tutorial = tutorial
	rt := engine.Runtime{
		Physics: world,
		Input:   dev,
		Labels:  fx,
		Effects: fx,
		Combat:  world,
		Spawner: world,
		Clock:   world,
		Session: engine.NewSession(player),
	}
	b := &bench{
		world:  world,
		dev:    dev,
		fx:     fx,
		root:   root,
		player: player,
		weapon: blade.New(rt, root, catalog, blade.WithConfig(cfg)),
	}
	b.assemble(t)
	return b
}

func (b *bench) step(t *testing.T) {
	t.Helper()
	require.NoError(t, b.world.Step(dt))
	b.dev.Apply(b.world, dt)
	b.weapon.Update(blade.Frame{Now: b.world.Now(), Dt: dt})
}

func (b *bench) run(t *testing.T, seconds float64) {
	t.Helper()
	for i := 0; i < int(seconds/dt); i++ {
		b.step(t)
	}
}

func (b *bench) assemble(t *testing.T) {
	t.Helper()
	for i := 0; i < int(8/dt); i++ {
		b.step(t)
		if b.locked() == blade.Count {
			return
		}
	}
	t.Fatalf("blade never assembled: %d locked", b.locked())
}

func (b *bench) locked() int {
	n := 0
	for _, f := range b.weapon.Parts() {
		if f.IsLocked() {
			n++
		}
	}
	return n
}

// grab puts fragment i in the left hand at its current pose.
func (b *bench) grab(t *testing.T, i int) *shard.Fragment {
	t.Helper()
	f := b.weapon.Part(i)
	require.NotNil(t, f)
	p := f.Pose()
	b.dev.SetPose(engine.Left, p)
	b.dev.Grab(engine.Left, f.Body(), p)
	return f
}

// enter grabs the mode's target with the left hand, equips spell and
// steps once.
func (b *bench) enter(t *testing.T, name string, target int, spell engine.Spell) blade.Mode {
	t.Helper()
	b.dev.SetSpell(engine.Left, spell)
	b.grab(t, target)
	b.step(t)
	m := b.weapon.Mode()
	require.Equal(t, name, m.Name())
	return m
}

func (b *bench) events(kind physics.EventKind) []physics.Event {
	var out []physics.Event
	for _, e := range b.world.Events() {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func (b *bench) labelTexts() []string {
	var out []string
	for _, l := range b.fx.VisibleLabels() {
		out = append(out, l.Text)
	}
	return out
}
