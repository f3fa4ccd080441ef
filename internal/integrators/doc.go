// Package integrators advances rigid bodies in the reference world.
//
// Linear state is stepped by an [Integrator] over an [Accel] function so
// velocity-dependent drag is integrated consistently:
//
//   - [Euler]: semi-implicit (symplectic) Euler
//   - [Verlet]: velocity Verlet
//   - [Leapfrog]: kick-drift-kick leapfrog
//   - [RK4]: classic fourth-order Runge-Kutta
//   - [RK45]: Dormand-Prince fifth order with an embedded error estimate
//
// Joint drives are too stiff for any explicit scheme (the lock drive runs a
// 1e6 spring against fragments of a few hundred grams). [Drive] solves one
// spring-damper channel implicitly and is unconditionally stable.
package integrators
