// Package modes holds the concrete weapon behaviours.
//
// The assembled modes ([Sword], [Expanded], [Shield]) keep the guides
// under the root and switch the rig layout. The grabbed modes are keyed off
// one held fragment:
//
//   - [Cannon] (fragment 10) fires the other fragments as rounds
//   - [Saw] (fragment 12) spins them in a disc
//   - [Swarm] (fragment 13) floats them in a loose cloud
//   - [Flamethrower], [Lightning] and [Gravity] (fragment 11) also need
//     the matching spell on the holding hand
//
// [Catalog] registers all of them with the sword as fallback.
package modes
