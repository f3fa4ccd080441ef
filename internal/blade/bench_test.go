package blade_test

import (
	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/gomega"
	"github.com/san-kum/shatterblade/internal/blade"
	"github.com/san-kum/shatterblade/internal/engine"
	"github.com/san-kum/shatterblade/internal/input"
	"github.com/san-kum/shatterblade/internal/modes"
	"github.com/san-kum/shatterblade/internal/physics"
	"github.com/san-kum/shatterblade/internal/present"
	"github.com/san-kum/shatterblade/internal/shard"
	"github.com/san-kum/shatterblade/internal/spatial"
)

const dt = 1.0 / 60

var grip = spatial.At(mgl64.Vec3{0, 1, 0})

// bench is a weapon in a headless world with the root in the right hand.
type bench struct {
	world  *physics.World
	dev    *input.Device
	fx     *present.Recorder
	root   engine.BodyID
	weapon *blade.Weapon
}

func newBench(cfg blade.Config) *bench {
	world := physics.NewWorld(physics.WithSpawnDelay(0.2), physics.WithSeed(7))
	dev := input.NewDevice()
	fx := present.NewRecorder()
	root := world.AddBody(physics.BodySpec{Name: "core", Pose: grip, Mass: 2, Radius: 0.05, Kinematic: true})
	for _, s := range engine.Sides {
		dev.BindBody(s, world.CreateBody(spatial.Identity(), true))
	}
	dev.SetPose(engine.Right, grip)
	dev.SetPose(engine.Left, spatial.At(mgl64.Vec3{-0.4, 1, 0.3}))
	dev.Grab(engine.Right, root, grip)

	catalog, err := modes.Catalog()
	Expect(err).NotTo(HaveOccurred())
	rt := engine.Runtime{
		Physics: world,
		Input:   dev,
		Labels:  fx,
		Effects: fx,
		Combat:  world,
		Spawner: world,
		Clock:   world,
		Session: engine.NewSession(engine.NoBody),
	}
	return &bench{
		world:  world,
		dev:    dev,
		fx:     fx,
		root:   root,
		weapon: blade.New(rt, root, catalog, blade.WithConfig(cfg)),
	}
}

// step runs one frame and checks that every fragment owns a joint exactly
// when it is not free.
func (b *bench) step() {
	Expect(b.world.Step(dt)).To(Succeed())
	b.dev.Apply(b.world, dt)
	b.weapon.Update(blade.Frame{Now: b.world.Now(), Dt: dt})
	for _, f := range b.weapon.Parts() {
		want := 1
		if f.IsFree() {
			want = 0
		}
		ExpectWithOffset(1, f.HasJoint()).To(Equal(want == 1), "%v", f)
		ExpectWithOffset(1, b.world.JointsOn(f.Body())).To(Equal(want), "%v", f)
	}
}

// moving carries the right hand by v over one frame.
func (b *bench) moving(v mgl64.Vec3) {
	h := b.dev.Hand(engine.Right)
	h.Pose.Position = h.Pose.Position.Add(v.Mul(dt))
	b.dev.SetPose(engine.Right, h.Pose)
	b.step()
}

func (b *bench) run(seconds float64) {
	for i := 0; i < int(seconds/dt); i++ {
		b.step()
	}
}

// runUntil steps until cond holds or the time runs out and reports
// whether it held.
func (b *bench) runUntil(seconds float64, cond func() bool) bool {
	for i := 0; i < int(seconds/dt); i++ {
		b.step()
		if cond() {
			return true
		}
	}
	return false
}

func (b *bench) allLocked() bool {
	parts := b.weapon.Parts()
	if len(parts) != blade.Count {
		return false
	}
	for _, f := range parts {
		if !f.IsLocked() {
			return false
		}
	}
	return true
}

func (b *bench) assemble() {
	Expect(b.runUntil(8, b.allLocked)).To(BeTrue(), "blade never assembled")
}

func (b *bench) tap() {
	b.dev.SetButton(engine.Right, true)
	for i := 0; i < 3; i++ {
		b.step()
	}
	b.dev.SetButton(engine.Right, false)
}

// grab puts fragment i in a hand at its current pose.
func (b *bench) grab(s engine.Side, i int) *shard.Fragment {
	f := b.weapon.Part(i)
	Expect(f).NotTo(BeNil())
	p := f.Pose()
	b.dev.SetPose(s, p)
	b.dev.Grab(s, f.Body(), p)
	return f
}
