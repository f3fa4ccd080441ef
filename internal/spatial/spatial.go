package spatial

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	Zero    = mgl64.Vec3{}
	Up      = mgl64.Vec3{0, 1, 0}
	Forward = mgl64.Vec3{0, 0, 1}
	Right   = mgl64.Vec3{1, 0, 0}
)

// Pose is a rigid transform: rotation then translation.
type Pose struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

func Identity() Pose {
	return Pose{Rotation: mgl64.QuatIdent()}
}

func At(p mgl64.Vec3) Pose {
	return Pose{Position: p, Rotation: mgl64.QuatIdent()}
}

func (p Pose) TransformPoint(local mgl64.Vec3) mgl64.Vec3 {
	return p.Position.Add(p.Rotation.Rotate(local))
}

func (p Pose) TransformDirection(local mgl64.Vec3) mgl64.Vec3 {
	return p.Rotation.Rotate(local)
}

func (p Pose) InverseTransformPoint(world mgl64.Vec3) mgl64.Vec3 {
	return p.Rotation.Inverse().Rotate(world.Sub(p.Position))
}

func (p Pose) InverseTransformDirection(world mgl64.Vec3) mgl64.Vec3 {
	return p.Rotation.Inverse().Rotate(world)
}

// Mul composes p with a pose expressed in p's local frame.
func (p Pose) Mul(local Pose) Pose {
	return Pose{
		Position: p.TransformPoint(local.Position),
		Rotation: p.Rotation.Mul(local.Rotation).Normalize(),
	}
}

// Local expresses world in p's frame.
func (p Pose) Local(world Pose) Pose {
	inv := p.Rotation.Inverse()
	return Pose{
		Position: inv.Rotate(world.Position.Sub(p.Position)),
		Rotation: inv.Mul(world.Rotation).Normalize(),
	}
}

func (p Pose) Forward() mgl64.Vec3 { return p.Rotation.Rotate(Forward) }
func (p Pose) Up() mgl64.Vec3      { return p.Rotation.Rotate(Up) }
func (p Pose) Right() mgl64.Vec3   { return p.Rotation.Rotate(Right) }

// AngleAxis builds a rotation of deg degrees around axis.
func AngleAxis(deg float64, axis mgl64.Vec3) mgl64.Quat {
	if axis.LenSqr() == 0 {
		return mgl64.QuatIdent()
	}
	return mgl64.QuatRotate(mgl64.DegToRad(deg), axis.Normalize())
}

// LookRotation returns the rotation whose +Z is forward and whose +Y is as
// close to up as possible. Degenerate inputs fall back to identity or to an
// alternate up axis.
func LookRotation(forward, up mgl64.Vec3) mgl64.Quat {
	if forward.LenSqr() < 1e-12 {
		return mgl64.QuatIdent()
	}
	f := forward.Normalize()
	r := up.Cross(f)
	if r.LenSqr() < 1e-12 {
		alt := Up
		if math.Abs(f.Dot(Up)) > 0.99 {
			alt = Forward
		}
		r = alt.Cross(f)
	}
	r = r.Normalize()
	u := f.Cross(r)
	m := mgl64.Mat3FromCols(r, u, f)
	return mgl64.Mat4ToQuat(m.Mat4()).Normalize()
}

// LookRotationForward uses world up as the up hint.
func LookRotationForward(forward mgl64.Vec3) mgl64.Quat {
	return LookRotation(forward, Up)
}

// Angle returns the angle in degrees between two rotations.
func Angle(a, b mgl64.Quat) float64 {
	d := math.Abs(a.Normalize().Dot(b.Normalize()))
	if d > 1 {
		d = 1
	}
	return mgl64.RadToDeg(2 * math.Acos(d))
}

// VecAngle returns the unsigned angle in degrees between two vectors.
func VecAngle(a, b mgl64.Vec3) float64 {
	den := math.Sqrt(a.LenSqr() * b.LenSqr())
	if den < 1e-15 {
		return 0
	}
	c := mgl64.Clamp(a.Dot(b)/den, -1, 1)
	return mgl64.RadToDeg(math.Acos(c))
}

// SameRotation matches the engine notion of quaternion equality.
func SameRotation(a, b mgl64.Quat) bool {
	return math.Abs(a.Dot(b)) > 1-1e-6
}

// SamePosition matches the engine notion of vector equality.
func SamePosition(a, b mgl64.Vec3) bool {
	return a.Sub(b).LenSqr() < 1e-10
}

func Distance(a, b mgl64.Vec3) float64 {
	return a.Sub(b).Len()
}

// Project returns the component of v along onto.
func Project(v, onto mgl64.Vec3) mgl64.Vec3 {
	l := onto.LenSqr()
	if l < 1e-15 {
		return mgl64.Vec3{}
	}
	return onto.Mul(v.Dot(onto) / l)
}

func Clamp01(v float64) float64 {
	return mgl64.Clamp(v, 0, 1)
}

func Lerp(a, b, t float64) float64 {
	return a + (b-a)*Clamp01(t)
}

func LerpVec(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(Clamp01(t)))
}

// InverseLerp maps v from [a, b] onto [0, 1], clamped.
func InverseLerp(a, b, v float64) float64 {
	if a == b {
		return 0
	}
	return Clamp01((v - a) / (b - a))
}

// Facing reports whether two directions are within 50 degrees.
func Facing(a, b mgl64.Vec3) bool {
	return VecAngle(a, b) < 50
}

// UniqueVector returns a vector that is stable for a given seed and salt.
func UniqueVector(seed int64, min, max float64, salt int64) mgl64.Vec3 {
	r := rand.New(rand.NewSource(seed + salt))
	span := max - min
	return mgl64.Vec3{
		r.Float64()*span + min,
		r.Float64()*span + min,
		r.Float64()*span + min,
	}
}

// RandomVector draws a vector from src with each component in [min, max).
func RandomVector(src *rand.Rand, min, max float64) mgl64.Vec3 {
	span := max - min
	return mgl64.Vec3{
		src.Float64()*span + min,
		src.Float64()*span + min,
		src.Float64()*span + min,
	}
}

// Rotated rotates v by q around pivot.
func Rotated(v mgl64.Vec3, q mgl64.Quat, pivot mgl64.Vec3) mgl64.Vec3 {
	return q.Rotate(v.Sub(pivot)).Add(pivot)
}
