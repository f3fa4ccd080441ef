package blade

import "github.com/san-kum/shatterblade/internal/engine"

// Gate restricts a grabbed mode to a hand with a given spell equipped.
// The zero Gate allows every hand.
type Gate struct {
	Spell engine.Spell
}

func (g Gate) Allows(h engine.Hand) bool {
	switch g.Spell {
	case engine.SpellNone:
		return true
	case engine.SpellFire, engine.SpellLightning, engine.SpellGravity:
		return h.Spell == g.Spell
	}
	return false
}
