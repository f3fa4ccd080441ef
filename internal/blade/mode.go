package blade

import (
	"github.com/san-kum/shatterblade/internal/joint"
	"github.com/san-kum/shatterblade/internal/shard"
)

// Frame is the timing of one presentation tick.
type Frame struct {
	Now float64
	Dt  float64
}

// Mode is a behaviour strategy that owns fragment target poses while
// active. The weapon is the only caller of Enter, Update and Exit.
type Mode interface {
	Name() string
	Priority() int
	// Test must not have side effects.
	Test(w *Weapon) bool
	Enter(w *Weapon)
	Update(f Frame)
	Exit()
	ShouldReform(f *shard.Fragment) bool
	ShouldLock(f *shard.Fragment) bool
	ShouldHideWhenHolstered(f *shard.Fragment) bool
	ModifyJoint(f *shard.Fragment, p joint.Params) joint.Params
}

// Quiet modes suppress lock and impact haptics.
type Quiet interface {
	Quiet() bool
}

// Base provides the default Mode behaviour. Embed it and call Base.Enter
// from an overriding Enter.
type Base struct {
	W *Weapon
}

func (b *Base) Enter(w *Weapon)                                            { b.W = w }
func (b *Base) Update(Frame)                                               {}
func (b *Base) Exit()                                                      {}
func (b *Base) Test(*Weapon) bool                                          { return false }
func (b *Base) ShouldReform(*shard.Fragment) bool                          { return true }
func (b *Base) ShouldLock(*shard.Fragment) bool                            { return true }
func (b *Base) ShouldHideWhenHolstered(*shard.Fragment) bool               { return false }
func (b *Base) ModifyJoint(_ *shard.Fragment, p joint.Params) joint.Params { return p }
