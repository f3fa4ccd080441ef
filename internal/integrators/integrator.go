package integrators

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Accel returns a body's acceleration at the given position and velocity.
type Accel func(pos, vel mgl64.Vec3) mgl64.Vec3

type Integrator interface {
	Name() string
	Step(pos, vel mgl64.Vec3, acc Accel, dt float64) (mgl64.Vec3, mgl64.Vec3)
}

// Rotate advances q by angular velocity w (rad/s) over dt.
func Rotate(q mgl64.Quat, w mgl64.Vec3, dt float64) mgl64.Quat {
	speed := w.Len()
	if speed < 1e-12 || dt == 0 {
		return q
	}
	dq := mgl64.QuatRotate(speed*dt, w.Mul(1/speed))
	return dq.Mul(q).Normalize()
}

// RotationError returns the rotation vector (axis times radians) that takes
// from onto to along the short arc.
func RotationError(from, to mgl64.Quat) mgl64.Vec3 {
	d := to.Mul(from.Inverse()).Normalize()
	if d.W < 0 {
		d = mgl64.Quat{W: -d.W, V: d.V.Mul(-1)}
	}
	s := d.V.Len()
	if s < 1e-12 {
		return mgl64.Vec3{}
	}
	angle := 2 * math.Atan2(s, d.W)
	return d.V.Mul(angle / s)
}
