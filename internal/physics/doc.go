// Package physics provides a headless reference world for the weapon core.
//
// [World] implements the engine ports the core consumes:
//
//   - [engine.Physics]: bodies, kinematic parenting, collision pairs,
//     six-DOF spring joints, sphere and ray queries
//   - [engine.Spawner]: fragment spawns delivered after a random delay in
//     shuffled order
//   - [engine.Combat]: damage, shocks, staggers and projectiles recorded as
//     [Event] values
//   - [engine.Clock]: simulation time
//
// # Joint drives
//
// Drives are solved implicitly per substep (see [integrators.Drive]) so the
// 1e6 lock spring stays stable at presentation-rate steps. The owning body's
// inverse mass is multiplied by the joint's mass scale, matching the usual
// game-engine meaning of that parameter.
//
// # Collisions
//
// Every body is a sphere. Contacts are resolved positionally with a single
// restitution impulse; pairs marked with IgnoreCollision never touch.
package physics
