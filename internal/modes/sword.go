package modes

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/shatterblade/internal/blade"
	"github.com/san-kum/shatterblade/internal/engine"
	"github.com/san-kum/shatterblade/internal/present"
	"github.com/san-kum/shatterblade/internal/spatial"
)

// Sword is the assembled blade and the catalog fallback. While locking it
// coaches the player toward the other modes.
type Sword struct {
	blade.Base
}

func NewSword() *Sword { return &Sword{} }

func (s *Sword) Name() string  { return "sword" }
func (s *Sword) Priority() int { return 0 }

func (s *Sword) Enter(w *blade.Weapon) {
	s.Base.Enter(w)
	w.ReformParts()
}

func (s *Sword) Update(blade.Frame) {
	w := s.W
	holders := w.RootHolders()
	var main *engine.Side
	if len(holders) > 0 {
		main = &holders[0]
	}

	if w.Locking() {
		w.HandleA().SetText("Hold A/X to expand\nthe blade", main)
		w.GunShard().SetText("Grab this shard to\nmake a handgun!", main)
		if len(holders) == 1 {
			s.coach(holders[0].Other(), main)
		} else {
			w.OtherHand().Hide()
		}
	} else {
		w.HandleA().Hide()
	}
	verb := "Reform"
	if w.Locking() {
		verb = "Shatter"
	}
	w.HandleB().SetText(fmt.Sprintf("Tap A/X to %s\n the blade", verb), main)
}

// coach points the free hand at the spell-gated modes.
func (s *Sword) coach(other engine.Side, main *engine.Side) {
	w := s.W
	hand := w.Input().Hand(other)
	y := -1.0
	if other == engine.Right {
		y = 1
	}
	note := w.OtherHand()
	note.SetAnchor(hand.Body)
	note.SetOffset(mgl64.Vec3{-1, y, 0})

	var title, grab string
	switch hand.Spell {
	case engine.SpellLightning:
		title, grab = "Arc Cannon (Lightning spell)", "Arc Cannon"
	case engine.SpellFire:
		title, grab = "Flamethrower (Fire spell)", "Flamethrower"
	case engine.SpellGravity:
		title, grab = "Gravity Gun (Gravity spell)", "Gravity Gun"
	default:
		w.ImbueHandle().Hide()
		note.SetText("Select Fire, Lightning, or Gravity with\nthis hand to form a weapon", main)
		return
	}
	note.SetText(title+" selected!\nLook back at the blade", main)
	w.ImbueHandle().SetText("Grab this shard for "+grab+" mode", main)
}

// Expanded widens the blade while the root button is held.
type Expanded struct {
	blade.Base
}

func NewExpanded() *Expanded { return &Expanded{} }

func (e *Expanded) Name() string  { return "expanded" }
func (e *Expanded) Priority() int { return 10 }

func (e *Expanded) Test(w *blade.Weapon) bool { return w.ButtonHeld() }

func (e *Expanded) Enter(w *blade.Weapon) {
	e.Base.Enter(w)
	w.Rig().SetExpanded(true)
	w.ReformParts()
}

func (e *Expanded) Update(blade.Frame) {
	w := e.W
	main := mainHolder(w)
	w.HandleA().SetText("Release "+present.ButtonPlaceholder+" to retract the blade", main)
	w.HandleB().SetText("Hold Trigger to form a shield", main)
	w.ImbueHandle().Hide()
	w.OtherHand().Hide()
	w.GunShard().Hide()
}

func (e *Expanded) Exit() { e.W.Rig().SetExpanded(false) }

// Shield folds the fragments into a disc while the root button and a
// trigger are held. The disc faces away from the hand that pulled the
// trigger.
type Shield struct {
	blade.Base
}

func NewShield() *Shield { return &Shield{} }

func (s *Shield) Name() string  { return "shield" }
func (s *Shield) Priority() int { return 11 }

func (s *Shield) Test(w *blade.Weapon) bool { return w.ButtonHeld() && w.TriggerHeld() }

func (s *Shield) Enter(w *blade.Weapon) {
	s.Base.Enter(w)
	palm := w.Input().Hand(w.ButtonHand()).PalmDir()
	left := spatial.Facing(palm, w.RootPose().Forward())
	w.Rig().SetExpanded(false)
	w.Rig().SetShield(true, left)
	w.ReformParts()
	w.HandleA().Hide()
	w.HandleB().Hide()
	w.ImbueHandle().Hide()
	w.OtherHand().Hide()
	w.GunShard().Hide()
}

func (s *Shield) Exit() { s.W.Rig().SetShield(false, s.W.Rig().Left()) }

func mainHolder(w *blade.Weapon) *engine.Side {
	hs := w.RootHolders()
	if len(hs) == 0 {
		return nil
	}
	return &hs[0]
}
