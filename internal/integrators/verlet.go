package integrators

import "github.com/go-gl/mathgl/mgl64"

type Verlet struct{}

func NewVerlet() *Verlet {
	return &Verlet{}
}

func (v *Verlet) Name() string { return "verlet" }

func (v *Verlet) Step(pos, vel mgl64.Vec3, acc Accel, dt float64) (mgl64.Vec3, mgl64.Vec3) {
	a0 := acc(pos, vel)
	next := pos.Add(vel.Mul(dt)).Add(a0.Mul(0.5 * dt * dt))
	a1 := acc(next, vel.Add(a0.Mul(dt)))
	return next, vel.Add(a0.Add(a1).Mul(0.5 * dt))
}

type Leapfrog struct{}

func NewLeapfrog() *Leapfrog {
	return &Leapfrog{}
}

func (l *Leapfrog) Name() string { return "leapfrog" }

func (l *Leapfrog) Step(pos, vel mgl64.Vec3, acc Accel, dt float64) (mgl64.Vec3, mgl64.Vec3) {
	halfDt := dt * 0.5
	half := vel.Add(acc(pos, vel).Mul(halfDt))
	next := pos.Add(half.Mul(dt))
	return next, half.Add(acc(next, half).Mul(halfDt))
}
