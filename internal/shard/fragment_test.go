package shard

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/go-cmp/cmp"
	"github.com/san-kum/shatterblade/internal/engine"
	"github.com/san-kum/shatterblade/internal/input"
	"github.com/san-kum/shatterblade/internal/joint"
	"github.com/san-kum/shatterblade/internal/physics"
	"github.com/san-kum/shatterblade/internal/present"
	"github.com/san-kum/shatterblade/internal/spatial"
	"github.com/san-kum/shatterblade/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frame = 1.0 / 60

type owner struct {
	root      engine.BodyID
	dead      bool
	noReform  bool
	noLock    bool
	toRoot    bool
	holstered bool
	hide      bool
	haptics   int
	tasks     *task.Runner
}

func (o *owner) Alive() bool                                          { return !o.dead }
func (o *owner) Root() engine.BodyID                                  { return o.root }
func (o *owner) ShouldReform(*Fragment) bool                          { return !o.noReform }
func (o *owner) ShouldLock(*Fragment) bool                            { return !o.noLock }
func (o *owner) LockToRoot() bool                                     { return o.toRoot }
func (o *owner) ModifyJoint(_ *Fragment, p joint.Params) joint.Params { return p }
func (o *owner) Holstered() bool                                      { return o.holstered }
func (o *owner) HideWhenHolstered(*Fragment) bool                     { return o.hide }
func (o *owner) LockHaptic(*Fragment)                                 { o.haptics++ }
func (o *owner) Tasks() *task.Runner                                  { return o.tasks }

type rig struct {
	w     *physics.World
	dev   *input.Device
	fx    *present.Recorder
	owner *owner
	guide engine.BodyID
	f     *Fragment
}

var guideAt = mgl64.Vec3{0, 1.2, 0}

func newRig(t *testing.T, start mgl64.Vec3) *rig {
	t.Helper()
	w := physics.NewWorld()
	root := w.AddBody(physics.BodySpec{Name: "root", Pose: spatial.At(mgl64.Vec3{0, 1, 0}), Mass: 2, Kinematic: true})
	guide := w.CreateBody(spatial.At(guideAt), true)
	w.SetParent(guide, root)

	spec := physics.DefaultFragment(1)
	spec.Pose = spatial.At(start)
	body := w.AddBody(spec)

	r := &rig{
		w:     w,
		dev:   input.NewDevice(),
		fx:    present.NewRecorder(),
		owner: &owner{root: root, toRoot: true, tasks: task.NewRunner()},
		guide: guide,
	}
	rt := engine.Runtime{
		Physics: w,
		Input:   r.dev,
		Labels:  r.fx,
		Effects: r.fx,
		Combat:  w,
		Spawner: w,
		Clock:   w,
	}
	r.f = New(rt, r.owner, 1, body, guide, mgl64.QuatIdent(), nil)
	return r
}

func (r *rig) step(t *testing.T) {
	t.Helper()
	require.NoError(t, r.w.Step(frame))
	r.dev.Apply(r.w, frame)
	r.f.Tick(r.w.Now(), frame)
	r.owner.tasks.Advance(r.w.Now())
	r.checkJoint(t)
}

func (r *rig) run(t *testing.T, seconds float64) {
	t.Helper()
	for i := 0; i < int(math.Round(seconds/frame)); i++ {
		r.step(t)
	}
}

func (r *rig) checkJoint(t *testing.T) {
	t.Helper()
	want := 0
	if r.f.State() != Free {
		want = 1
	}
	if r.f.HasJoint() != (want == 1) {
		t.Fatalf("%v: HasJoint = %v", r.f, r.f.HasJoint())
	}
	if got := r.w.JointsOn(r.f.Body()); got != want {
		t.Fatalf("%v: %d joints in world, expected %d", r.f, got, want)
	}
}

func TestFragmentAssembles(t *testing.T) {
	r := newRig(t, mgl64.Vec3{0.5, 1.5, 0})
	assert.Equal(t, Free, r.f.State())

	r.step(t)
	assert.Equal(t, Reforming, r.f.State())

	r.run(t, 3)
	require.Equal(t, Locked, r.f.State())
	assert.Equal(t, 1, r.owner.haptics)
	assert.True(t, r.f.Visible())

	js, ok := r.w.Joint(r.f.Joint().ID())
	require.True(t, ok)
	assert.Equal(t, r.owner.root, js.Connected)
	assert.InDelta(t, float64(joint.RootMassScale), js.MassScale, 1e-12)
	assert.InDelta(t, 0.2, js.ConnectedAnchor.Y(), 1e-9)

	p := r.f.Pose()
	assert.Less(t, spatial.Distance(p.Position, guideAt), 0.01)
	assert.Less(t, r.w.Velocity(r.f.Body()).Len(), 0.01)
}

func TestLockToGuide(t *testing.T) {
	r := newRig(t, mgl64.Vec3{0.2, 1.2, 0})
	r.owner.toRoot = false
	r.run(t, 2)
	require.Equal(t, Locked, r.f.State())
	js, _ := r.w.Joint(r.f.Joint().ID())
	assert.Equal(t, r.guide, js.Connected)
	assert.InDelta(t, 1.0, js.MassScale, 1e-12)
}

func TestAttachTolerances(t *testing.T) {
	tests := []struct {
		name     string
		offset   mgl64.Vec3
		angle    float64
		noLock   bool
		expected bool
	}{
		{"on slot", mgl64.Vec3{}, 0, false, true},
		{"inside position", mgl64.Vec3{0.09, 0, 0}, 0, false, true},
		{"outside position", mgl64.Vec3{0.11, 0, 0}, 0, false, false},
		{"inside rotation", mgl64.Vec3{}, 9, false, true},
		{"outside rotation", mgl64.Vec3{}, 11, false, false},
		{"mode refuses", mgl64.Vec3{}, 0, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRig(t, guideAt)
			r.owner.noLock = tt.noLock
			r.f.Reform()
			r.w.SetPose(r.f.Body(), spatial.Pose{
				Position: guideAt.Add(tt.offset),
				Rotation: spatial.AngleAxis(tt.angle, spatial.Up),
			})
			if got := r.f.Attach(); got != tt.expected {
				t.Errorf("Attach: got %v, expected %v", got, tt.expected)
			}
			want := Reforming
			if tt.expected {
				want = Locked
			}
			assert.Equal(t, want, r.f.State())
			r.checkJoint(t)
		})
	}
}

func TestAttachRequiresReforming(t *testing.T) {
	r := newRig(t, guideAt)
	assert.False(t, r.f.Attach())
	assert.Equal(t, Free, r.f.State())
	assert.Zero(t, r.owner.haptics)
}

func TestDetachIsIdempotent(t *testing.T) {
	r := newRig(t, guideAt)
	r.w.SetVelocity(r.f.Body(), mgl64.Vec3{0, 0, 1})
	ops := r.w.JointOps()

	r.f.Detach(true)
	r.f.Detach(false)

	assert.Equal(t, ops, r.w.JointOps())
	assert.Equal(t, Free, r.f.State())
	assert.InDelta(t, 1.0, r.w.Velocity(r.f.Body()).Z(), 1e-12)
	assert.True(t, math.IsInf(r.f.LastUnlock(), -1))
}

func TestThrowUsesRootPointVelocity(t *testing.T) {
	r := newRig(t, mgl64.Vec3{0.1, 1.3, 0})
	r.run(t, 2)
	require.Equal(t, Locked, r.f.State())

	rootPose, _ := r.w.Pose(r.owner.root)
	moved := rootPose
	moved.Position = moved.Position.Add(mgl64.Vec3{0.1, 0, 0})
	r.w.MoveKinematic(r.owner.root, moved, 0.1)

	r.f.Detach(true)
	assert.Equal(t, Free, r.f.State())
	assert.False(t, r.f.HasJoint())
	v := r.w.Velocity(r.f.Body())
	assert.InDelta(t, 3.0, v.X(), 1e-9)
	assert.InDelta(t, 0.0, v.Y(), 1e-9)
	assert.InDelta(t, r.w.Now(), r.f.LastUnlock(), 1e-12)

	s, err := r.w.Lookup(r.f.Body())
	require.NoError(t, err)
	assert.True(t, s.Telekinesis)
	assert.Nil(t, s.Modifier)
}

func TestReformIsIdempotent(t *testing.T) {
	r := newRig(t, mgl64.Vec3{0.4, 1.4, 0})
	r.f.Reform()
	first, ok := r.w.Joint(r.f.Joint().ID())
	require.True(t, ok)
	firstID := r.f.Joint().ID()
	params := r.f.Joint().Params()

	r.f.Reform()
	second, ok := r.w.Joint(r.f.Joint().ID())
	require.True(t, ok)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("joint after second Reform (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(params, r.f.Joint().Params()); diff != "" {
		t.Errorf("params (-first +second):\n%s", diff)
	}
	_, stale := r.w.Joint(firstID)
	assert.False(t, stale)
	assert.Equal(t, 1, r.w.JointsOn(r.f.Body()))
	assert.Equal(t, Reforming, r.f.State())

	s, _ := r.w.Lookup(r.f.Body())
	require.NotNil(t, s.Modifier)
	assert.Zero(t, s.Modifier.Gravity)
	assert.False(t, s.Telekinesis)
}

func TestGrabForcesFree(t *testing.T) {
	r := newRig(t, mgl64.Vec3{0.1, 1.3, 0})
	r.run(t, 2)
	require.Equal(t, Locked, r.f.State())

	r.dev.Grab(engine.Right, r.f.Body(), r.f.Pose())
	r.run(t, 0.5)
	assert.Equal(t, Free, r.f.State())
	assert.True(t, r.f.Held())

	r.dev.Release(engine.Right)
	r.step(t)
	assert.InDelta(t, r.w.Now(), r.f.LastUngrab(), 1e-12)
	assert.False(t, r.f.Held())
}

func TestHolsterRoundTrip(t *testing.T) {
	r := newRig(t, mgl64.Vec3{0.1, 1.3, 0})
	r.run(t, 2)
	require.Equal(t, Locked, r.f.State())

	r.owner.holstered = true
	r.run(t, 1)
	assert.True(t, r.f.Holstered())
	assert.True(t, r.w.Kinematic(r.f.Body()))
	assert.Equal(t, r.guide, r.w.Parent(r.f.Body()))
	assert.False(t, r.f.Visible())
	assert.Zero(t, r.fx.SpawnAmount(r.f.Body()))
	s, _ := r.w.Lookup(r.f.Body())
	assert.False(t, s.Collision)

	r.owner.holstered = false
	r.step(t)
	assert.False(t, r.f.Holstered())
	assert.False(t, r.w.Kinematic(r.f.Body()))
	assert.Equal(t, engine.NoBody, r.w.Parent(r.f.Body()))
	assert.Equal(t, Reforming, r.f.State())

	r.run(t, 1)
	assert.True(t, r.f.Visible())
	assert.Equal(t, Locked, r.f.State())
}

func TestFreeFragmentHiddenWhenHolstered(t *testing.T) {
	r := newRig(t, mgl64.Vec3{0.3, 1.3, 0})
	r.owner.holstered = true
	r.owner.noLock = true
	r.run(t, 0.5)
	assert.False(t, r.f.Holstered())

	r.owner.hide = true
	r.run(t, 1)
	assert.True(t, r.f.Holstered())
	assert.False(t, r.f.Visible())
}

func TestOwnerLostDegrades(t *testing.T) {
	r := newRig(t, mgl64.Vec3{0.1, 1.3, 0})
	r.run(t, 2)
	require.Equal(t, Locked, r.f.State())

	r.owner.dead = true
	r.step(t)
	assert.True(t, r.f.Removed())
	assert.Equal(t, Free, r.f.State())
	assert.Zero(t, r.w.JointsOn(r.f.Body()))

	s, _ := r.w.Lookup(r.f.Body())
	assert.True(t, s.Telekinesis)
	assert.Nil(t, s.Modifier)

	ops := r.w.JointOps()
	r.run(t, 0.5)
	assert.Equal(t, ops, r.w.JointOps())
}

func TestFlashIsGuarded(t *testing.T) {
	r := newRig(t, guideAt)
	r.owner.noReform = true
	r.f.Flash()
	r.f.Flash()
	assert.True(t, r.f.Flashing())
	assert.Contains(t, r.owner.tasks.Keys(), "flash/1")

	r.run(t, 0.25)
	assert.InDelta(t, 1.0, r.fx.Emission(r.f.Body()), 0.05)

	r.run(t, 0.5)
	assert.False(t, r.f.Flashing())
	assert.Zero(t, r.fx.Emission(r.f.Body()))
}

func TestIgnoreHandSkipsHolder(t *testing.T) {
	r := newRig(t, guideAt)
	hand := r.w.CreateBody(spatial.Identity(), true)
	r.dev.BindBody(engine.Left, hand)

	r.f.IgnoreHand(engine.Left, true, 0)
	assert.True(t, r.w.Ignored(r.f.Body(), hand))

	r.f.IgnoreHand(engine.Left, false, 0.1)
	assert.True(t, r.w.Ignored(r.f.Body(), hand))
	r.run(t, 0.2)
	assert.False(t, r.w.Ignored(r.f.Body(), hand))

	r.dev.Grab(engine.Left, r.f.Body(), r.f.Pose())
	r.f.IgnoreHand(engine.Left, true, 0)
	assert.False(t, r.w.Ignored(r.f.Body(), hand))
}

func TestIgnoreHandCancelsPendingToggle(t *testing.T) {
	r := newRig(t, guideAt)
	hand := r.w.CreateBody(spatial.Identity(), true)
	r.dev.BindBody(engine.Left, hand)

	r.f.IgnoreHand(engine.Left, true, 0)
	r.f.IgnoreHand(engine.Left, false, frame)
	assert.Contains(t, r.owner.tasks.Keys(), "ignore/1/left")

	r.f.IgnoreHand(engine.Left, true, 0)
	assert.NotContains(t, r.owner.tasks.Keys(), "ignore/1/left")
	r.run(t, 0.1)
	assert.True(t, r.w.Ignored(r.f.Body(), hand))
}

func TestRefusedLockFiresNoHaptic(t *testing.T) {
	r := newRig(t, guideAt)
	r.f.Reform()
	r.w.SetPose(r.f.Body(), spatial.At(guideAt))
	r.w.DestroyBody(r.owner.root)

	assert.False(t, r.f.Attach())
	assert.Equal(t, Free, r.f.State())
	assert.Zero(t, r.owner.haptics)

	r2 := newRig(t, guideAt)
	r2.f.Reform()
	r2.w.SetPose(r2.f.Body(), spatial.At(guideAt))
	require.True(t, r2.f.Attach())
	assert.Equal(t, 1, r2.owner.haptics)
}
