// Package viz is a terminal view of a running weapon built on Bubble Tea.
//
// The live view steps an [experiment.Experiment] once per tick and draws a
// side view of the fragments on a braille canvas, one glyph per fragment
// state, next to the active mode, the tutorial labels and a history of how
// much of the blade is locked.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	B     - Hold/release the hilt button
//	T     - Hold/release the hilt trigger
//	F     - Hold/release the off-hand trigger
//	1-4   - Equip none, fire, lightning or gravity in the off hand
//	←/→   - Pick a fragment
//	G     - Grab the picked fragment with the off hand
//	R     - Release the off hand
//	H     - Toggle holster
//	C     - Cycle color themes
//	?     - Show help
package viz
