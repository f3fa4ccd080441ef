package modes

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/shatterblade/internal/blade"
	"github.com/san-kum/shatterblade/internal/engine"
	"github.com/san-kum/shatterblade/internal/shard"
	"github.com/san-kum/shatterblade/internal/spatial"
)

const (
	CannonTarget   = 10
	CannonBarrel   = 1
	CannonFireRate = 0.4
	// CannonBurstLead shortens the refire delay while the button is held.
	CannonBurstLead  = 0.35
	CannonMuzzle     = 60.0
	CannonHoming     = 30.0
	CannonReloadWait = 1.0
)

const (
	EffectSpin  = "spin"
	EffectShoot = "shoot"
)

// Cannon turns the blade into a revolver while fragment 10 is held. The
// other fragments circle the hand as a magazine and are fired one at a
// time along the pointing direction.
type Cannon struct {
	blade.Base
	rng *rand.Rand

	magazine  []int
	chambered int
	reloading bool

	rotation   float64
	lastShot   float64
	lastReload float64
	lastButton float64
	buttonDown bool

	hand  engine.Side
	spin  engine.EffectID
	fire  *blade.Annotation
	burst *blade.Annotation
	rig   blade.RigState
}

func NewCannon(rng *rand.Rand) *Cannon {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Cannon{rng: rng}
}

func (c *Cannon) Name() string  { return "cannon" }
func (c *Cannon) Priority() int { return 20 }
func (c *Cannon) Target() int   { return CannonTarget }

// Quiet suppresses lock and impact haptics while firing.
func (c *Cannon) Quiet() bool { return true }

func (c *Cannon) Test(w *blade.Weapon) bool {
	_, ok := w.MainHolder(CannonTarget)
	return ok
}

// Magazine lists the loaded fragment indices.
func (c *Cannon) Magazine() []int { return c.magazine }

// Chambered is the fragment index ready to fire, or 0.
func (c *Cannon) Chambered() int { return c.chambered }

func (c *Cannon) Reloading() bool { return c.reloading }

func (c *Cannon) Enter(w *blade.Weapon) {
	c.Base.Enter(w)
	if s, ok := w.MainHolder(CannonTarget); ok {
		c.hand = s
	}
	h := w.Input().Hand(c.hand)
	c.spin = w.Effects().SpawnEffect(EffectSpin, spatial.At(c.spinPoint(h)))
	c.rotation, c.lastShot, c.lastReload, c.lastButton = 0, 0, 0, 0
	c.buttonDown, c.reloading = false, false

	c.rig = w.DetachRig()
	c.magazine = c.fullMagazine()
	c.chambered = 0
	w.ReformParts()
	target := w.Part(CannonTarget)
	anchor := engine.NoBody
	if target != nil {
		target.Detach(false)
		anchor = target.Body()
	}
	for _, s := range engine.Sides {
		w.IgnoreHand(s, true, 0)
	}
	c.chamber()
	c.fire = w.NewAnnotation(anchor, c.fireOffset())
	c.burst = w.NewAnnotation(anchor, c.burstOffset())
	w.HideAllAnnotations()
}

func (c *Cannon) fullMagazine() []int {
	var out []int
	for i := 1; i <= blade.Count; i++ {
		if i != CannonBarrel && i != CannonTarget {
			out = append(out, i)
		}
	}
	return out
}

func (c *Cannon) fireOffset() mgl64.Vec3 {
	if c.hand == engine.Left {
		return mgl64.Vec3{1, 0.7, 1}
	}
	return mgl64.Vec3{1, 0.7, -1}
}

func (c *Cannon) burstOffset() mgl64.Vec3 {
	if c.hand == engine.Left {
		return mgl64.Vec3{-1, 0.7, 1}
	}
	return mgl64.Vec3{-1, 0.7, -1}
}

func (c *Cannon) spinPoint(h engine.Hand) mgl64.Vec3 {
	return h.Position().Add(h.ThumbDir().Mul(0.1))
}

func (c *Cannon) chamber() {
	c.chambered = 0
	if len(c.magazine) == 0 {
		return
	}
	k := c.rng.Intn(len(c.magazine))
	c.chambered = c.magazine[k]
	c.magazine = append(c.magazine[:k], c.magazine[k+1:]...)
}

func (c *Cannon) reload(now float64) {
	if now-c.lastReload <= CannonReloadWait {
		return
	}
	c.lastReload = now
	c.reloading = true
	c.magazine = c.fullMagazine()
}

func (c *Cannon) shoot(h engine.Hand) {
	w := c.W
	round := w.Part(c.chambered)
	c.chambered = 0
	if round != nil {
		w.Effects().SpawnEffect(EffectShoot, round.Pose())
		round.Detach(false)
		from := round.Pose().Position
		v := HomingThrow(w.Physics(), w.Session(), from, h.PointDir().Mul(CannonMuzzle), CannonHoming)
		w.Physics().SetVelocity(round.Body(), v)
	}
	c.chamber()
}

func (c *Cannon) setGuide(f *shard.Fragment, pos mgl64.Vec3, rot mgl64.Quat) {
	if f == nil {
		return
	}
	rot = rot.Mul(f.FlyRef().Inverse()).Normalize()
	c.W.Physics().SetPose(f.Guide(), spatial.Pose{Position: pos, Rotation: rot})
}

func (c *Cannon) Update(f blade.Frame) {
	w := c.W
	if s, ok := w.MainHolder(CannonTarget); ok && s != c.hand {
		w.IgnoreHand(c.hand, false, 0)
		c.hand = s
		w.IgnoreHand(c.hand, true, 0)
	}
	h := w.Input().Hand(c.hand)
	aim, up := h.PointDir(), h.ThumbDir()

	c.fire.SetOffset(c.fireOffset())
	c.burst.SetOffset(c.burstOffset())
	side := c.hand
	if h.Button {
		c.rotation += f.Dt * spatial.Lerp(20, 400, spatial.Clamp01(f.Now-c.lastButton)*2)
		c.fire.SetText("Pull trigger to burst fire", &side)
		c.burst.Hide()
	} else {
		c.fire.SetText("Pull trigger to fire", &side)
		c.burst.SetText("Hold Oculus A/X to charge up a burst shot", &side)
		c.rotation += f.Dt * spatial.Lerp(400, 80, (f.Now-c.lastShot)*0.5)
	}

	radius := 0.3
	if h.Button {
		radius = 0.2
	}
	hub := h.Position().Add(up.Mul(0.1))
	for k, idx := range c.magazine {
		angle := float64(k)/float64(len(c.magazine))*360 + c.rotation
		pos := hub.Add(spatial.AngleAxis(angle, aim).Rotate(up).Mul(radius))
		c.setGuide(w.Part(idx), pos, spatial.LookRotation(aim, pos.Sub(h.Position())))
	}
	barrel := h.Position().Add(up.Mul(0.07)).Add(aim.Mul(0.2))
	c.setGuide(w.Part(CannonBarrel), barrel, spatial.LookRotation(aim, h.PalmDir()))
	if c.chambered != 0 {
		c.setGuide(w.Part(c.chambered), h.Position().Add(up.Mul(0.15)), spatial.LookRotation(aim, up))
	}
	w.Effects().SetEffectPose(c.spin, spatial.At(c.spinPoint(h)))

	if len(c.magazine) == 0 && c.chambered == 0 {
		c.reload(f.Now)
	}
	if c.reloading {
		if !c.loaded() {
			return
		}
		c.reloading = false
	}
	if c.chambered == 0 {
		c.chamber()
	}

	if h.Button {
		if !c.buttonDown {
			c.buttonDown = true
			c.lastButton = f.Now
			c.spin = w.Effects().SpawnEffect(EffectSpin, spatial.At(c.spinPoint(h)))
		}
	} else {
		c.buttonDown = false
		w.Effects().EndEffect(c.spin)
	}

	if !h.Trigger {
		c.lastShot = 0
		return
	}
	if f.Now-c.lastShot > CannonFireRate && c.chambered != 0 {
		c.shoot(h)
		c.lastShot = f.Now
		if h.Button {
			c.lastShot = f.Now - CannonBurstLead
		}
	}
}

// loaded reports whether every magazine fragment is back near the grip.
func (c *Cannon) loaded() bool {
	grip := c.W.Part(CannonTarget)
	if grip == nil {
		return true
	}
	at := grip.Pose().Position
	for _, idx := range c.magazine {
		p := c.W.Part(idx)
		if p != nil && spatial.Distance(p.Pose().Position, at) >= 1 {
			return false
		}
	}
	return true
}

func (c *Cannon) Exit() {
	w := c.W
	c.fire.Destroy()
	c.burst.Destroy()
	w.Effects().EndEffect(c.spin)
	for _, s := range engine.Sides {
		w.IgnoreHand(s, false, 0)
	}
	w.RestoreRig(c.rig)
}

// ShouldReform keeps the magazine and the barrel seeking their guides.
// Fired rounds stay free until the next reload.
func (c *Cannon) ShouldReform(f *shard.Fragment) bool {
	i := f.Index()
	if i == CannonBarrel {
		return true
	}
	if i == CannonTarget {
		return false
	}
	for _, m := range c.magazine {
		if m == i {
			return true
		}
	}
	return false
}
