package integrators

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func energy(pos, vel mgl64.Vec3) float64 { return 0.5 * (pos.LenSqr() + vel.LenSqr()) }

func TestRK45EnergyConservation(t *testing.T) {
	integ := NewRK45()
	pos, vel := mgl64.Vec3{1, 0, 0}, mgl64.Vec3{}
	initial := energy(pos, vel)

	for i := 0; i < 10000; i++ {
		pos, vel = integ.Step(pos, vel, harmonic, 0.01)
	}

	drift := math.Abs(energy(pos, vel)-initial) / initial
	if drift > 1e-6 {
		t.Errorf("RK45 energy drift too high: %e", drift)
	}
}

func TestRK45AdaptiveStep(t *testing.T) {
	integ := NewRK45()

	_, _, coarse := integ.StepAdaptive(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{}, harmonic, 0.1, 1e-12)
	if coarse <= 0 || coarse >= 0.1 {
		t.Errorf("expected a smaller step under a tight tolerance, got %f", coarse)
	}

	_, _, loose := integ.StepAdaptive(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{}, harmonic, 0.001, 1e-2)
	if loose <= 0.001 {
		t.Errorf("expected a larger step under a loose tolerance, got %f", loose)
	}
}

func TestRK45VsRK4Accuracy(t *testing.T) {
	rk4, rk45 := NewRK4(), NewRK45()
	p4, v4 := mgl64.Vec3{1, 0, 0}, mgl64.Vec3{}
	p45, v45 := p4, v4
	dt := 0.1

	for i := 0; i < 100; i++ {
		p4, v4 = rk4.Step(p4, v4, harmonic, dt)
		p45, v45 = rk45.Step(p45, v45, harmonic, dt)
	}

	want := math.Cos(100 * dt)
	e4, e45 := math.Abs(p4.X()-want), math.Abs(p45.X()-want)
	if e45 > e4 {
		t.Errorf("rk45 error %e exceeds rk4 error %e", e45, e4)
	}
	if name := rk45.Name(); name != "rk45" {
		t.Errorf("unexpected name %s", name)
	}
}
