package blade

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/shatterblade/internal/engine"
	"github.com/san-kum/shatterblade/internal/shard"
)

// Poser places the guides of the fragments a grabbed mode drives. i counts
// from 1 over the driven fragments in index order, skipping the target.
// Rot receives the guide position Pos just produced.
type Poser interface {
	Pos(i int, f *shard.Fragment) mgl64.Vec3
	Rot(i int, f *shard.Fragment, pos mgl64.Vec3) mgl64.Quat
}

// Labeler supplies the text of the trigger and button hints. An empty
// string hides the hint.
type Labeler interface {
	UseLabel() string
	AltLabel() string
}

// Grabbed is the shared part of every mode keyed off a held fragment. It
// detaches the target on Enter, hands the other guides to a Poser and
// turns the holding hand's controls into edges.
type Grabbed struct {
	Base
	Controls
	Gate Gate

	Poser   Poser
	Labeler Labeler

	name     string
	priority int
	target   int

	side    engine.Side
	parts   []int
	use     *Annotation
	alt     *Annotation
	lastUse string
	lastAlt string
	rig     RigState
}

func NewGrabbed(name string, priority, target int) *Grabbed {
	return &Grabbed{name: name, priority: priority, target: target}
}

func (g *Grabbed) Name() string  { return g.name }
func (g *Grabbed) Priority() int { return g.priority }
func (g *Grabbed) Target() int   { return g.target }

// Test holds while the target fragment is in a hand that passes the gate.
func (g *Grabbed) Test(w *Weapon) bool {
	side, ok := w.MainHolder(g.target)
	if !ok {
		return false
	}
	return g.Gate.Allows(w.Input().Hand(side))
}

// Part returns the target fragment.
func (g *Grabbed) Part() *shard.Fragment { return g.W.Part(g.target) }

// Hand is the hand holding the target. After a release it keeps returning
// the last holder.
func (g *Grabbed) Hand() engine.Hand {
	if s, ok := g.W.MainHolder(g.target); ok {
		g.side = s
	}
	return g.W.Input().Hand(g.side)
}

// Center is a point 0.2 in front of the hand.
func (g *Grabbed) Center() mgl64.Vec3 {
	h := g.Hand()
	return h.Position().Add(h.PointDir().Mul(0.2))
}

func (g *Grabbed) UpDir() mgl64.Vec3      { return g.Hand().ThumbDir() }
func (g *Grabbed) ForwardDir() mgl64.Vec3 { return g.Hand().PointDir() }
func (g *Grabbed) SideDir() mgl64.Vec3    { return g.Hand().PalmDir() }

// Parts lists the driven fragment indices.
func (g *Grabbed) Parts() []int { return g.parts }

func (g *Grabbed) UseOffset() mgl64.Vec3 {
	if g.Hand().Side == engine.Left {
		return mgl64.Vec3{1, -1, 1.5}
	}
	return mgl64.Vec3{1, -1, -1.5}
}

func (g *Grabbed) AltOffset() mgl64.Vec3 {
	if g.Hand().Side == engine.Left {
		return mgl64.Vec3{1, 1, 1.5}
	}
	return mgl64.Vec3{1, 1, -1.5}
}

func (g *Grabbed) Enter(w *Weapon) {
	g.Base.Enter(w)
	g.Controls.Trigger.Reset()
	g.Controls.Button.Reset()
	g.lastUse, g.lastAlt = "", ""

	g.rig = w.DetachRig()
	g.parts = g.parts[:0]
	for i := 1; i <= Count; i++ {
		if i != g.target {
			g.parts = append(g.parts, i)
		}
	}
	part := g.Part()
	if part != nil {
		for _, s := range w.Input().Holders(part.Body()) {
			w.IgnoreHand(s, true, 0)
		}
	}
	w.ReformParts()
	anchor := engine.NoBody
	if part != nil {
		part.Detach(false)
		anchor = part.Body()
	}
	g.use = w.NewAnnotation(anchor, g.UseOffset())
	g.alt = w.NewAnnotation(anchor, g.AltOffset())
	w.HideAllAnnotations()
}

// Update polls the controls, refreshes the hints and poses the guides.
func (g *Grabbed) Update(f Frame) {
	h := g.Hand()
	g.Controls.Poll(f.Now, h.Trigger, h.Button)

	g.use.SetOffset(g.UseOffset())
	g.alt.SetOffset(g.AltOffset())
	useText, altText := "", ""
	if g.Labeler != nil {
		useText, altText = g.Labeler.UseLabel(), g.Labeler.AltLabel()
	}
	g.lastUse = refresh(g.use, useText, g.lastUse, h.Side)
	g.lastAlt = refresh(g.alt, altText, g.lastAlt, h.Side)

	if g.Poser == nil {
		return
	}
	phys := g.W.Physics()
	for n, idx := range g.parts {
		part := g.W.Part(idx)
		if part == nil {
			continue
		}
		i := n + 1
		pos := g.Poser.Pos(i, part)
		rot := g.Poser.Rot(i, part, pos).Mul(part.FlyRef().Inverse()).Normalize()
		phys.SetPose(part.Guide(), poseOf(pos, rot))
	}
}

func refresh(a *Annotation, text, last string, side engine.Side) string {
	if text == "" {
		a.Hide()
		return ""
	}
	if text != last {
		a.SetText(text, &side)
	}
	return text
}

func (g *Grabbed) Exit() {
	g.use.Destroy()
	g.alt.Destroy()
	g.W.RestoreRig(g.rig)
}

// ShouldReform excludes the target fragment.
func (g *Grabbed) ShouldReform(f *shard.Fragment) bool { return f.Index() != g.target }

func (g *Grabbed) ShouldLock(f *shard.Fragment) bool { return f.Index() != g.target }
