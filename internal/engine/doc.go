// Package engine defines the ports the weapon core consumes from its host
// runtime.
//
// The core never talks to a physics engine, input device, renderer or
// entity spawner directly. It is handed an [engine.Runtime] holding:
//
//   - [Physics]: rigid bodies, spring joints, collision pairs, queries
//   - [Input]: per-hand controls, hand poses, holders, haptics
//   - [Labels]: floating tutorial annotations
//   - [Effects]: visual effect instances and per-fragment shader scalars
//   - [Combat]: damage, shocks, pushes and projectiles
//   - [Spawner]: asynchronous fragment entity creation
//   - [Clock]: simulation time
//
// Every handle is a small integer. Zero values ([NoBody], [NoJoint], ...)
// mean "none"; calls with them are ignored by well-behaved hosts.
package engine
