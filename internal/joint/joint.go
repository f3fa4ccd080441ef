// Package joint installs and tunes the spring coupling between a fragment
// body and the slot it is converging on.
//
// A [Joint] leaves all six degrees of freedom free. Restoring force comes
// only from the linear and angular drives in [Params]. Two anchors exist:
// the fragment's guide body (1:1) and the weapon root ([RootMassScale]).
package joint

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/shatterblade/internal/engine"
	"github.com/san-kum/shatterblade/internal/spatial"
)

// RootMassScale keeps a heavy root from being dragged by locked fragments.
const RootMassScale = 20

// Params is the full drive configuration of a joint.
type Params struct {
	Linear    engine.Drive
	Angular   engine.Drive
	MassScale float64
}

var inf = math.Inf(1)

var (
	// Reform is the weak coupling used while converging.
	Reform = Params{
		Linear:    engine.Drive{Spring: 2000, Damper: 120, MaxForce: inf},
		Angular:   engine.Drive{Spring: 1000, Damper: 10, MaxForce: inf},
		MassScale: 1,
	}
	// Lock is the near-rigid coupling used once locked.
	Lock = Params{
		Linear:    engine.Drive{Spring: 1e6, Damper: 4000, MaxForce: inf},
		Angular:   engine.Drive{Spring: 1000, Damper: 10, MaxForce: inf},
		MassScale: 1,
	}
)

// Converging returns the reform drives retuned for a fragment at distance d
// from its slot: damping rises from 20 to 100 over the last 2 units.
func Converging(d float64) Params {
	p := Reform
	p.Linear.Damper = spatial.Lerp(20, 100, spatial.InverseLerp(2, 0, d))
	return p
}

// Strength scales a capped tether preset.
func Strength(s float64) Params {
	return Params{
		Linear:    engine.Drive{Spring: 100 * s, Damper: 10 * s, MaxForce: 1000},
		Angular:   engine.Drive{Spring: 10 * s, Damper: 1 * s, MaxForce: 100},
		MassScale: 1,
	}
}

// Modifier may override drive parameters after every create, refresh or
// retune.
type Modifier func(Params) Params

func (m Modifier) apply(p Params) Params {
	if m == nil {
		return p
	}
	return m(p)
}

// Joint is one installed coupling. The zero value is not usable; a nil
// *Joint means no joint.
type Joint struct {
	phys   engine.Physics
	id     engine.JointID
	body   engine.BodyID
	guide  engine.BodyID
	root   engine.BodyID
	toRoot bool
	params Params
}

// Create installs a joint from body toward guide, or toward root when
// toRoot is set. The body is momentarily rotated onto the guide so the
// joint's rest pose carries no rotational offset. Create returns nil when
// the engine refuses the joint.
func Create(phys engine.Physics, body, guide, root engine.BodyID, toRoot bool, p Params, mod Modifier) *Joint {
	j := &Joint{
		phys:   phys,
		body:   body,
		guide:  guide,
		root:   root,
		toRoot: toRoot,
	}
	connected, anchor, scale, ok := j.anchor()
	if !ok {
		return nil
	}
	p.MassScale = scale
	p = mod.apply(p)

	j.withGuideRotation(func() {
		j.id = phys.CreateJoint(engine.JointSpec{
			Body:            body,
			Connected:       connected,
			ConnectedAnchor: anchor,
			Linear:          p.Linear,
			Angular:         p.Angular,
			MassScale:       p.MassScale,
		})
	})
	if j.id == engine.NoJoint {
		return nil
	}
	j.params = p
	return j
}

// Simple tethers source to target's centre of mass with capped-free linear
// drives and the default angular drive.
func Simple(phys engine.Physics, source, target engine.BodyID, spring, damper float64) *Joint {
	p := Params{
		Linear:    engine.Drive{Spring: spring, Damper: damper, MaxForce: inf},
		Angular:   Reform.Angular,
		MassScale: 1,
	}
	return Create(phys, source, target, engine.NoBody, false, p, nil)
}

func (j *Joint) anchor() (engine.BodyID, mgl64.Vec3, float64, bool) {
	if !j.toRoot || j.root == engine.NoBody {
		if !j.phys.Exists(j.guide) {
			return engine.NoBody, mgl64.Vec3{}, 0, false
		}
		return j.guide, mgl64.Vec3{}, 1, true
	}
	rootPose, ok := j.phys.Pose(j.root)
	if !ok {
		return engine.NoBody, mgl64.Vec3{}, 0, false
	}
	guidePose, ok := j.phys.Pose(j.guide)
	if !ok {
		return engine.NoBody, mgl64.Vec3{}, 0, false
	}
	return j.root, rootPose.InverseTransformPoint(guidePose.Position), RootMassScale, true
}

func (j *Joint) withGuideRotation(fn func()) {
	orig, ok := j.phys.Pose(j.body)
	guide, gok := j.phys.Pose(j.guide)
	if !ok || !gok {
		fn()
		return
	}
	j.phys.SetPose(j.body, spatial.Pose{Position: orig.Position, Rotation: guide.Rotation})
	fn()
	j.phys.SetPose(j.body, orig)
}

func (j *Joint) ID() engine.JointID { return j.id }
func (j *Joint) Params() Params     { return j.params }
func (j *Joint) ToRoot() bool       { return j.toRoot }

// Retune replaces the drives in place.
func (j *Joint) Retune(p Params, mod Modifier) {
	p.MassScale = j.params.MassScale
	p = mod.apply(p)
	j.params = p
	j.phys.SetJointDrives(j.id, p.Linear, p.Angular)
}

// Refresh re-anchors the joint, recapturing the rest rotation, without
// destroying it.
func (j *Joint) Refresh(toRoot bool, mod Modifier) {
	j.toRoot = toRoot
	connected, anchor, scale, ok := j.anchor()
	if !ok {
		return
	}
	j.withGuideRotation(func() {
		j.phys.RebindJoint(j.id, connected, anchor, scale)
	})
	p := j.params
	p.MassScale = scale
	p = mod.apply(p)
	j.params = p
	j.phys.SetJointDrives(j.id, p.Linear, p.Angular)
}

func (j *Joint) Destroy() {
	j.phys.DestroyJoint(j.id)
	j.id = engine.NoJoint
}
