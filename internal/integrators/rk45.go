package integrators

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Dormand-Prince coefficients (RK45)
var (
	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

// phase is a body's position and velocity, or their derivatives.
type phase struct{ p, v mgl64.Vec3 }

func (s phase) add(o phase, k float64) phase {
	return phase{s.p.Add(o.p.Mul(k)), s.v.Add(o.v.Mul(k))}
}

func derive(acc Accel, s phase) phase { return phase{s.v, acc(s.p, s.v)} }

// combine returns x + dt * sum(w[i] * k[i]).
func combine(x phase, dt float64, ks []phase, ws ...float64) phase {
	out := x
	for i, w := range ws {
		if w != 0 {
			out = out.add(ks[i], dt*w)
		}
	}
	return out
}

type RK45 struct {
	safety   float64
	minScale float64
	maxScale float64
}

func NewRK45() *RK45 {
	return &RK45{
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
	}
}

func (r *RK45) Name() string { return "rk45" }

func (r *RK45) Step(pos, vel mgl64.Vec3, acc Accel, dt float64) (mgl64.Vec3, mgl64.Vec3) {
	p, v, _ := r.StepAdaptive(pos, vel, acc, dt, 1e-6)
	return p, v
}

// StepAdaptive takes one fifth-order step and returns the step size the
// embedded error estimate suggests for the next one.
func (r *RK45) StepAdaptive(pos, vel mgl64.Vec3, acc Accel, dt, tol float64) (mgl64.Vec3, mgl64.Vec3, float64) {
	x := phase{pos, vel}
	k := make([]phase, 7)

	k[0] = derive(acc, x)
	k[1] = derive(acc, combine(x, dt, k, b21))
	k[2] = derive(acc, combine(x, dt, k, b31, b32))
	k[3] = derive(acc, combine(x, dt, k, b41, b42, b43))
	k[4] = derive(acc, combine(x, dt, k, b51, b52, b53, b54))
	k[5] = derive(acc, combine(x, dt, k, b61, b62, b63, b64, b65))

	xNew := combine(x, dt, k, c1, 0, c3, c4, c5, c6)
	k[6] = derive(acc, xNew)

	errEst := combine(phase{}, dt, k, dc1, 0, dc3, dc4, dc5, dc6, dc7)
	errMax := 0.0
	for i := 0; i < 3; i++ {
		errMax = math.Max(errMax, math.Abs(errEst.p[i])/(math.Abs(x.p[i])+math.Abs(dt*k[0].p[i])+1e-10))
		errMax = math.Max(errMax, math.Abs(errEst.v[i])/(math.Abs(x.v[i])+math.Abs(dt*k[0].v[i])+1e-10))
	}

	errRatio := errMax / tol

	var dtNew float64
	if errRatio > 1 {
		scale := math.Max(r.minScale, r.safety*math.Pow(errRatio, -0.25))
		dtNew = dt * scale
	} else {
		if errRatio > 0 {
			scale := math.Min(r.maxScale, r.safety*math.Pow(errRatio, -0.2))
			dtNew = dt * scale
		} else {
			dtNew = dt * r.maxScale
		}
	}

	return xNew.p, xNew.v, dtNew
}
