package integrators

import "github.com/go-gl/mathgl/mgl64"

type RK4 struct{}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Name() string { return "rk4" }

func (r *RK4) Step(pos, vel mgl64.Vec3, acc Accel, dt float64) (mgl64.Vec3, mgl64.Vec3) {
	halfDt := dt * 0.5

	p1, v1 := vel, acc(pos, vel)

	p2 := vel.Add(v1.Mul(halfDt))
	v2 := acc(pos.Add(p1.Mul(halfDt)), p2)

	p3 := vel.Add(v2.Mul(halfDt))
	v3 := acc(pos.Add(p2.Mul(halfDt)), p3)

	p4 := vel.Add(v3.Mul(dt))
	v4 := acc(pos.Add(p3.Mul(dt)), p4)

	dt6 := dt / 6.0
	nextPos := pos.Add(p1.Add(p2.Mul(2)).Add(p3.Mul(2)).Add(p4).Mul(dt6))
	nextVel := vel.Add(v1.Add(v2.Mul(2)).Add(v3.Mul(2)).Add(v4).Mul(dt6))
	return nextPos, nextVel
}
