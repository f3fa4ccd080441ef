// Package blade is the weapon aggregate: a root body, fifteen fragments and
// the mode that currently owns their target poses.
//
// Each frame [Weapon.Update] reconciles missing fragments, runs the
// one-time initialization once every fragment exists, selects the active
// [Mode] from the [Catalog] and ticks the fragments.
//
// # Modes
//
// A mode implements [Mode]; embedding [Base] supplies the defaults. Modes
// keyed off a fragment held in a hand compose a [Grabbed] value, which
// handles the shared input edges, labels and guide posing. A [Gate] adds
// a spell condition to a grabbed mode's predicate.
//
// # Selection
//
// Modes are evaluated in descending priority. The first whose predicate
// holds wins, and at most one switch happens per frame. When none match,
// the catalog's fallback (the assembled sword) is selected.
package blade
