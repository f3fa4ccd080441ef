package integrators

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// unit harmonic oscillator along x
func harmonic(pos, vel mgl64.Vec3) mgl64.Vec3 { return pos.Mul(-1) }

func TestRK4Accuracy(t *testing.T) {
	integ := NewRK4()

	pos, vel := mgl64.Vec3{1, 0, 0}, mgl64.Vec3{}
	dt := 0.01
	steps := 100

	for i := 0; i < steps; i++ {
		pos, vel = integ.Step(pos, vel, harmonic, dt)
	}

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(pos.X()-expectedX) > 1e-4 {
		t.Errorf("position error too large: got %.6f, expected %.6f", pos.X(), expectedX)
	}

	if math.Abs(vel.X()-expectedV) > 1e-4 {
		t.Errorf("velocity error too large: got %.6f, expected %.6f", vel.X(), expectedV)
	}
}

func TestIntegratorsConserveEnergy(t *testing.T) {
	tests := []struct {
		integ Integrator
		tol   float64
	}{
		{NewEuler(), 1e-2},
		{NewVerlet(), 1e-3},
		{NewLeapfrog(), 1e-3},
		{NewRK4(), 1e-6},
		{NewRK45(), 1e-6},
	}

	for _, tt := range tests {
		t.Run(tt.integ.Name(), func(t *testing.T) {
			pos, vel := mgl64.Vec3{1, 0, 0}, mgl64.Vec3{}
			for i := 0; i < 1000; i++ {
				pos, vel = tt.integ.Step(pos, vel, harmonic, 0.01)
			}
			if e := energy(pos, vel); math.Abs(e-0.5) > tt.tol {
				t.Errorf("energy drifted to %f", e)
			}
		})
	}
}

func TestRotate(t *testing.T) {
	q := Rotate(mgl64.QuatIdent(), mgl64.Vec3{0, math.Pi, 0}, 0.5)
	got := q.Rotate(mgl64.Vec3{0, 0, 1})
	if got.Sub(mgl64.Vec3{1, 0, 0}).Len() > 1e-9 {
		t.Errorf("expected quarter turn to +x, got %v", got)
	}
	if Rotate(q, mgl64.Vec3{}, 1) != q {
		t.Error("zero angular velocity should not rotate")
	}
}

func TestRotationError(t *testing.T) {
	from := mgl64.QuatIdent()
	to := mgl64.QuatRotate(0.3, mgl64.Vec3{0, 0, 1})
	err := RotationError(from, to)
	if err.Sub(mgl64.Vec3{0, 0, 0.3}).Len() > 1e-9 {
		t.Errorf("expected 0.3 rad about z, got %v", err)
	}
	if RotationError(to, to).Len() > 1e-9 {
		t.Error("expected zero error for equal rotations")
	}
}
