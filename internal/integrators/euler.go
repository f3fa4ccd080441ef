package integrators

import "github.com/go-gl/mathgl/mgl64"

// Euler is the semi-implicit variant: velocity first, then position with
// the new velocity.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Name() string { return "euler" }

func (e *Euler) Step(pos, vel mgl64.Vec3, acc Accel, dt float64) (mgl64.Vec3, mgl64.Vec3) {
	v := vel.Add(acc(pos, vel).Mul(dt))
	return pos.Add(v.Mul(dt)), v
}
