// Package shard implements the per-fragment state machine.
//
// A [Fragment] moves between [Free], [Reforming] and [Locked]. It holds at
// most one joint, and holds one exactly while Reforming or Locked. Every
// state change destroys the previous joint before installing the next.
package shard

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/shatterblade/internal/engine"
	"github.com/san-kum/shatterblade/internal/joint"
	"github.com/san-kum/shatterblade/internal/spatial"
	"github.com/san-kum/shatterblade/internal/task"
	"go.uber.org/zap"
)

// Owner is the weapon a fragment belongs to.
type Owner interface {
	// Alive reports whether the weapon root is still reachable.
	Alive() bool
	Root() engine.BodyID
	// ShouldReform reports whether f should seek its guide this frame.
	ShouldReform(f *Fragment) bool
	ShouldLock(f *Fragment) bool
	// LockToRoot reports whether locked joints anchor to the root.
	LockToRoot() bool
	ModifyJoint(f *Fragment, p joint.Params) joint.Params
	Holstered() bool
	// HideWhenHolstered reports whether f is stowed with the weapon even
	// when it is not locked.
	HideWhenHolstered(f *Fragment) bool
	// LockHaptic is called once each time f locks.
	LockHaptic(f *Fragment)
	Tasks() *task.Runner
}

type Fragment struct {
	rt    engine.Runtime
	owner Owner
	log   *zap.Logger

	index  int
	body   engine.BodyID
	guide  engine.BodyID
	flyRef mgl64.Quat

	state      State
	joint      *joint.Joint
	lastUnlock float64
	lastUngrab float64
	guideLocal spatial.Pose

	held      bool
	holstered bool
	visible   bool
	flashing  bool
	removed   bool
}

// New wires a freshly spawned fragment body to its guide. The fragment
// starts Free, without collision, and fades in.
func New(rt engine.Runtime, owner Owner, index int, body, guide engine.BodyID, flyRef mgl64.Quat, log *zap.Logger) *Fragment {
	if log == nil {
		log = zap.NewNop()
	}
	if flyRef == (mgl64.Quat{}) {
		flyRef = mgl64.QuatIdent()
	}
	f := &Fragment{
		rt:         rt,
		owner:      owner,
		log:        log.With(zap.Int("fragment", index)),
		index:      index,
		body:       body,
		guide:      guide,
		flyRef:     flyRef,
		lastUnlock: math.Inf(-1),
		holstered:  owner.Holstered(),
	}
	f.guideLocal = f.guideInRoot()
	rt.Effects.SetSpawnAmount(body, 0)
	rt.Physics.SetCollision(body, false)
	f.Show()
	return f
}

func (f *Fragment) Index() int             { return f.index }
func (f *Fragment) Body() engine.BodyID    { return f.body }
func (f *Fragment) Guide() engine.BodyID   { return f.guide }
func (f *Fragment) FlyRef() mgl64.Quat     { return f.flyRef }
func (f *Fragment) State() State           { return f.state }
func (f *Fragment) Joint() *joint.Joint    { return f.joint }
func (f *Fragment) HasJoint() bool         { return f.joint != nil }
func (f *Fragment) IsFree() bool           { return f.state == Free }
func (f *Fragment) IsReforming() bool      { return f.state == Reforming }
func (f *Fragment) IsLocked() bool         { return f.state == Locked }
func (f *Fragment) Held() bool             { return f.held }
func (f *Fragment) Holstered() bool        { return f.holstered }
func (f *Fragment) Visible() bool          { return f.visible }
func (f *Fragment) Flashing() bool         { return f.flashing }
func (f *Fragment) Removed() bool          { return f.removed }
func (f *Fragment) LastUnlock() float64    { return f.lastUnlock }
func (f *Fragment) LastUngrab() float64    { return f.lastUngrab }
func (f *Fragment) String() string         { return fmt.Sprintf("fragment %d (%s)", f.index, f.state) }
func (f *Fragment) phys() engine.Physics   { return f.rt.Physics }
func (f *Fragment) now() float64           { return f.rt.Clock.Now() }
func (f *Fragment) key(kind string) string { return fmt.Sprintf("%s/%d", kind, f.index) }
func (f *Fragment) modifier() joint.Modifier {
	return func(p joint.Params) joint.Params { return f.owner.ModifyJoint(f, p) }
}

// Pose returns the fragment body pose.
func (f *Fragment) Pose() spatial.Pose {
	p, _ := f.phys().Pose(f.body)
	return p
}

// GuidePose returns the pose of the slot the fragment converges on.
func (f *Fragment) GuidePose() spatial.Pose {
	p, _ := f.phys().Pose(f.guide)
	return p
}

// Reform starts converging on the guide with the weak reform joint. It is
// idempotent: the previous joint is always replaced.
func (f *Fragment) Reform() {
	phys := f.phys()
	f.state = Reforming
	phys.SetTelekinesis(f.body, false)
	phys.Depenetrate(f.body)
	phys.SetModifier(f.body, engine.Modifier{Gravity: 0, Mass: 1, Drag: -1, AngularDrag: -1})
	f.destroyJoint()
	f.joint = joint.Create(phys, f.body, f.guide, f.owner.Root(), false, joint.Reform, f.modifier())
	if f.joint == nil {
		f.log.Debug("reform joint refused")
		f.state = Free
		phys.ClearModifier(f.body)
		phys.SetTelekinesis(f.body, true)
	}
}

// Attach locks a reforming fragment that sits within tolerance of its
// guide. It reports whether the fragment locked.
func (f *Fragment) Attach() bool {
	if f.state != Reforming || !f.owner.ShouldLock(f) {
		return false
	}
	pose, guide := f.Pose(), f.GuidePose()
	if spatial.Distance(pose.Position, guide.Position) > PositionTolerance ||
		spatial.Angle(pose.Rotation, guide.Rotation) > RotationTolerance {
		return false
	}

	phys := f.phys()
	f.state = Locked
	phys.SetTelekinesis(f.body, false)
	phys.SetModifier(f.body, engine.Modifier{Gravity: 0, Mass: 1, Drag: LockedDrag, AngularDrag: LockedAngularDrag})
	phys.Depenetrate(f.body)
	f.destroyJoint()
	f.joint = joint.Create(phys, f.body, f.guide, f.owner.Root(), f.owner.LockToRoot(), joint.Lock, f.modifier())
	if f.joint == nil {
		f.log.Debug("lock joint refused")
		f.state = Free
		phys.ClearModifier(f.body)
		phys.SetTelekinesis(f.body, true)
		return false
	}
	f.owner.LockHaptic(f)
	f.guideLocal = f.guideInRoot()
	return true
}

// Detach frees the fragment. With throw set, it leaves at three times the
// root's velocity at its guide. Detaching a free fragment does nothing.
func (f *Fragment) Detach(throw bool) {
	if f.state == Free {
		return
	}
	phys := f.phys()
	f.state = Free
	phys.SetTelekinesis(f.body, true)
	phys.ClearModifier(f.body)
	if throw {
		v := phys.PointVelocity(f.owner.Root(), f.GuidePose().Position)
		phys.SetVelocity(f.body, v.Mul(ThrowFactor))
	}
	f.destroyJoint()
}

func (f *Fragment) destroyJoint() {
	if f.joint == nil {
		return
	}
	f.joint.Destroy()
	f.joint = nil
	f.lastUnlock = f.now()
}

func (f *Fragment) guideInRoot() spatial.Pose {
	root, ok := f.phys().Pose(f.owner.Root())
	if !ok {
		return spatial.Identity()
	}
	return root.Local(f.GuidePose())
}

// Tick advances the fragment by one presentation frame.
func (f *Fragment) Tick(now, dt float64) {
	if f.removed {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			f.log.Warn("fragment tick recovered", zap.Any("panic", r))
			f.degrade()
		}
	}()
	phys := f.phys()
	if !f.owner.Alive() || !phys.Exists(f.body) {
		f.degrade()
		return
	}

	held := len(f.rt.Input.Holders(f.body)) > 0
	if held && !f.held {
		f.Detach(false)
	} else if !held && f.held {
		f.lastUngrab = now
	}
	f.held = held

	guide, ok := phys.Pose(f.guide)
	if !ok {
		return
	}
	pose := f.Pose()
	d := spatial.Distance(pose.Position, guide.Position)
	reform := f.owner.ShouldReform(f)

	if f.joint != nil && f.state != Locked && reform {
		f.joint.Retune(joint.Converging(d), f.modifier())
		if d > FarPull {
			pose.Position = spatial.LerpVec(pose.Position, guide.Position, dt*math.Sqrt(d-FarPull))
			phys.SetPose(f.body, pose)
		}
		v := phys.Velocity(f.body)
		along := spatial.Project(v, pose.Position.Sub(guide.Position))
		phys.SetVelocity(f.body, spatial.LerpVec(v, along, dt*6))
	}

	if f.joint != nil && f.state == Locked {
		if d > LockedPull {
			pose.Position = spatial.LerpVec(pose.Position, guide.Position, dt*math.Sqrt(d))
			phys.SetPose(f.body, pose)
		}
		local := f.guideInRoot()
		if !spatial.SameRotation(local.Rotation, f.guideLocal.Rotation) ||
			!spatial.SamePosition(local.Position, f.guideLocal.Position) {
			f.joint.Refresh(f.owner.LockToRoot(), f.modifier())
			f.guideLocal = local
		}
	}

	if !reform {
		return
	}
	if !held {
		if f.owner.Holstered() && (f.state == Locked || f.owner.HideWhenHolstered(f)) {
			if !f.holstered {
				f.holster(guide)
			}
		} else if f.holstered {
			f.unholster()
		}
	}
	if f.state != Locked && now-f.lastUnlock > ReattachDelay {
		if f.joint == nil && !held {
			f.Reform()
		}
		f.Attach()
	}
}

func (f *Fragment) holster(guide spatial.Pose) {
	phys := f.phys()
	f.holstered = true
	phys.SetKinematic(f.body, true)
	phys.SetPose(f.body, guide)
	phys.SetParent(f.body, f.guide)
	f.Hide()
}

func (f *Fragment) unholster() {
	phys := f.phys()
	f.holstered = false
	phys.SetParent(f.body, engine.NoBody)
	phys.SetKinematic(f.body, false)
	f.Show()
	f.Reform()
}

// degrade drops every coupling after the weapon or the fragment's own
// entity became unreachable.
func (f *Fragment) degrade() {
	f.removed = true
	f.state = Free
	f.owner.Tasks().Cancel(f.key("fade"))
	f.owner.Tasks().Cancel(f.key("flash"))
	if f.joint != nil {
		f.joint.Destroy()
		f.joint = nil
	}
	phys := f.phys()
	if phys.Exists(f.body) {
		phys.SetTelekinesis(f.body, true)
		phys.ClearModifier(f.body)
		phys.SetParent(f.body, engine.NoBody)
	}
	f.log.Debug("fragment removed")
}

// Release detaches the fragment for good, as when the weapon despawns.
func (f *Fragment) Release() {
	f.Detach(false)
	f.removed = true
}

// Show fades the fragment in. Collision returns when the fade completes.
func (f *Fragment) Show() { f.fade(true) }

// Hide fades the fragment out and then disables its collision.
func (f *Fragment) Hide() { f.fade(false) }

func (f *Fragment) fade(in bool) {
	body := f.body
	f.owner.Tasks().Start(f.now(), task.Task{
		Key:      f.key("fade"),
		Duration: FadeDuration,
		Step: func(p float64) {
			if !in {
				p = 1 - p
			}
			f.rt.Effects.SetSpawnAmount(body, p)
		},
		Done: func() {
			f.visible = in
			if f.phys().Exists(body) {
				f.phys().SetCollision(body, in)
			}
		},
	})
}

// Flash pulses the fragment's emission. A flash already running is left
// alone.
func (f *Fragment) Flash() {
	if f.flashing {
		return
	}
	f.flashing = true
	body := f.body
	f.owner.Tasks().Start(f.now(), task.Task{
		Key:      f.key("flash"),
		Duration: FlashDuration,
		Step: func(p float64) {
			f.rt.Effects.SetEmission(body, math.Sin(math.Pi*p))
		},
		Done: func() {
			f.flashing = false
			f.rt.Effects.SetEmission(body, 0)
		},
	})
}

// IgnoreHand toggles collision between the fragment and a hand, after delay
// seconds when delay is positive. An immediate toggle cancels a pending
// delayed one for the same hand. A hand holding this fragment is skipped.
func (f *Fragment) IgnoreHand(side engine.Side, ignore bool, delay float64) {
	apply := func() {
		if f.removed {
			return
		}
		for _, s := range f.rt.Input.Holders(f.body) {
			if s == side {
				return
			}
		}
		f.phys().IgnoreCollision(f.body, f.rt.Input.Hand(side).Body, ignore)
	}
	key := fmt.Sprintf("ignore/%d/%s", f.index, side)
	if delay <= 0 {
		f.owner.Tasks().Cancel(key)
		apply()
		return
	}
	f.owner.Tasks().After(f.now(), delay, key, apply)
}
