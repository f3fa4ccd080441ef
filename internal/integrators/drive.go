package integrators

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Drive returns the velocity change one implicit step of a spring-damper
// applies to a body of effective mass m. offset is the body's displacement
// from the drive target and vel its velocity relative to the target. The
// impulse is clamped so the average force never exceeds maxForce.
func Drive(m, spring, damper, maxForce float64, offset, vel mgl64.Vec3, dt float64) mgl64.Vec3 {
	if m <= 0 || dt <= 0 || (spring == 0 && damper == 0) {
		return mgl64.Vec3{}
	}
	den := m + dt*damper + dt*dt*spring
	next := vel.Mul(m).Sub(offset.Mul(dt * spring)).Mul(1 / den)
	dv := next.Sub(vel)

	if !math.IsInf(maxForce, 1) {
		limit := maxForce * dt / m
		if l := dv.Len(); l > limit {
			dv = dv.Mul(limit / l)
		}
	}
	return dv
}
