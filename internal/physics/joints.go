package physics

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/shatterblade/internal/engine"
	"github.com/san-kum/shatterblade/internal/integrators"
)

type joint struct {
	id        engine.JointID
	body      engine.BodyID
	connected engine.BodyID
	anchor    mgl64.Vec3
	linear    engine.Drive
	angular   engine.Drive
	massScale float64
	rest      mgl64.Quat
}

// JointState is a read-only view of an installed joint.
type JointState struct {
	Body            engine.BodyID
	Connected       engine.BodyID
	ConnectedAnchor mgl64.Vec3
	Linear          engine.Drive
	Angular         engine.Drive
	MassScale       float64
}

func (w *World) CreateJoint(spec engine.JointSpec) engine.JointID {
	w.jointOps++
	b, c := w.body(spec.Body), w.body(spec.Connected)
	if b == nil || c == nil || b == c {
		return engine.NoJoint
	}
	w.nextJnt++
	scale := spec.MassScale
	if scale <= 0 {
		scale = 1
	}
	j := &joint{
		id:        w.nextJnt,
		body:      spec.Body,
		connected: spec.Connected,
		anchor:    spec.ConnectedAnchor,
		linear:    spec.Linear,
		angular:   spec.Angular,
		massScale: scale,
		rest:      c.pose.Rotation.Inverse().Mul(b.pose.Rotation).Normalize(),
	}
	w.joints[j.id] = j
	w.jorder = append(w.jorder, j.id)
	return j.id
}

func (w *World) RebindJoint(id engine.JointID, connected engine.BodyID, anchor mgl64.Vec3, massScale float64) {
	w.jointOps++
	j := w.joints[id]
	if j == nil {
		w.log.Debug("rebind of unknown joint")
		return
	}
	b, c := w.body(j.body), w.body(connected)
	if b == nil || c == nil {
		return
	}
	if massScale <= 0 {
		massScale = 1
	}
	j.connected = connected
	j.anchor = anchor
	j.massScale = massScale
	j.rest = c.pose.Rotation.Inverse().Mul(b.pose.Rotation).Normalize()
}

func (w *World) SetJointDrives(id engine.JointID, linear, angular engine.Drive) {
	w.jointOps++
	if j := w.joints[id]; j != nil {
		j.linear = linear
		j.angular = angular
	}
}

func (w *World) DestroyJoint(id engine.JointID) {
	w.jointOps++
	w.removeJoint(id)
}

func (w *World) removeJoint(id engine.JointID) {
	if w.joints[id] == nil {
		return
	}
	delete(w.joints, id)
	for i, o := range w.jorder {
		if o == id {
			w.jorder = append(w.jorder[:i], w.jorder[i+1:]...)
			break
		}
	}
}

// Joint returns the current state of joint id.
func (w *World) Joint(id engine.JointID) (JointState, bool) {
	j := w.joints[id]
	if j == nil {
		return JointState{}, false
	}
	return JointState{
		Body:            j.body,
		Connected:       j.connected,
		ConnectedAnchor: j.anchor,
		Linear:          j.linear,
		Angular:         j.angular,
		MassScale:       j.massScale,
	}, true
}

// JointsOn counts the joints owned by body.
func (w *World) JointsOn(body engine.BodyID) int {
	n := 0
	for _, j := range w.joints {
		if j.body == body {
			n++
		}
	}
	return n
}

// JointOps counts every joint create, rebind, retune and destroy call.
func (w *World) JointOps() int { return w.jointOps }

// solveJoint applies one implicit step of the linear and angular drives.
// The owning body's inverse mass is multiplied by the joint mass scale, so
// a scaled joint moves the fragment and barely disturbs the connected body.
func (w *World) solveJoint(j *joint, h float64) {
	b, c := w.bodies[j.body], w.bodies[j.connected]
	if b == nil || c == nil {
		return
	}
	bDyn, cDyn := b.dynamic(), c.dynamic()
	if !bDyn && !cDyn {
		return
	}

	target := c.pose.TransformPoint(j.anchor)
	offset := b.pose.Position.Sub(target)
	rel := b.vel.Sub(pointVelocity(c, target))
	mb := b.effectiveMass() / j.massScale
	mu, fb, fc := split(mb, c.effectiveMass(), bDyn, cDyn)
	dv := integrators.Drive(mu, j.linear.Spring, j.linear.Damper, j.linear.MaxForce, offset, rel, h)
	b.vel = b.vel.Add(dv.Mul(fb))
	c.vel = c.vel.Sub(dv.Mul(fc))

	want := c.pose.Rotation.Mul(j.rest)
	angErr := integrators.RotationError(b.pose.Rotation, want).Mul(-1)
	relW := b.angVel.Sub(c.angVel)
	ib := b.inertia() / j.massScale
	imu, gb, gc := split(ib, c.inertia(), bDyn, cDyn)
	dw := integrators.Drive(imu, j.angular.Spring, j.angular.Damper, j.angular.MaxForce, angErr, relW, h)
	b.angVel = b.angVel.Add(dw.Mul(gb))
	c.angVel = c.angVel.Sub(dw.Mul(gc))
}

// split returns the reduced mass of a pair and the share of a relative
// velocity change each side takes.
func split(mb, mc float64, bDyn, cDyn bool) (mu, fb, fc float64) {
	switch {
	case bDyn && cDyn:
		mu = mb * mc / (mb + mc)
		return mu, mu / mb, mu / mc
	case bDyn:
		return mb, 1, 0
	default:
		return mc, 0, 1
	}
}
