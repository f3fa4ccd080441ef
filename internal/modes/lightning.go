package modes

import (
	"math"
	"math/rand"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/shatterblade/internal/blade"
	"github.com/san-kum/shatterblade/internal/engine"
	"github.com/san-kum/shatterblade/internal/shard"
	"github.com/san-kum/shatterblade/internal/spatial"
)

const (
	EffectLightningCharge = "lightning-charge"
	EffectLightning       = "lightning"
)

// Lightning charges an arc while the trigger is held on fragment 11 with
// the lightning spell equipped, and fires it on release.
type Lightning struct {
	*blade.Grabbed
	Cooldown        float64
	Damage          float64
	ShockDuration   float64
	ExplosionForce  float64
	ExplosionRadius float64
	Range           float64

	rng      *rand.Rand
	frame    blade.Frame
	rotation float64
	charge   engine.EffectID
	armed    bool
}

func NewLightning(rng *rand.Rand) *Lightning {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	m := &Lightning{
		Grabbed:         blade.NewGrabbed("lightning", 30, SpellTarget),
		Cooldown:        1,
		Damage:          50,
		ShockDuration:   5,
		ExplosionForce:  50,
		ExplosionRadius: 3,
		Range:           50,
		rng:             rng,
	}
	m.Gate = blade.Gate{Spell: engine.SpellLightning}
	m.Poser = m
	m.Labeler = m
	m.Trigger.Cooldown = func() float64 { return m.Cooldown }
	m.Trigger.OnPressed = m.triggerPressed
	m.Trigger.OnHeld = m.triggerHeld
	m.Trigger.OnNotHeld = func() { m.rotation += m.frame.Dt * 80 * (1 + m.recharge()*4) }
	m.Trigger.OnReleased = m.triggerReleased
	return m
}

func (m *Lightning) Rotation() float64 { return m.rotation }

// recharge falls from 1 to 0 over the cooldown after each shot.
func (m *Lightning) recharge() float64 {
	if !m.Trigger.Released() {
		return 0
	}
	return 1 - spatial.InverseLerp(0, m.Cooldown, m.frame.Now-m.Trigger.LastRelease())
}

func (m *Lightning) held() float64 {
	return spatial.Clamp01(m.frame.Now - m.Trigger.LastPress())
}

func (m *Lightning) jitter() float64 { return m.rng.Float64()*2 - 1 }

func (m *Lightning) Pos(i int, _ *shard.Fragment) mgl64.Vec3 {
	c, fwd, up := m.Center(), m.ForwardDir(), m.UpDir()
	cool := m.recharge()
	shake := 0.0
	if m.Trigger.Down() {
		shake = 0.1
	}
	palm := m.Hand().Palm()
	switch {
	case i == 1:
		return c.Add(fwd.Mul(0.1 + cool*0.1))
	case i == 2:
		return c.Add(fwd.Mul(0.3 + cool*0.2))
	case i < 10:
		q := spatial.AngleAxis(float64(i-2)/7*360+m.rotation, fwd)
		return palm.
			Add(q.Rotate(up).Mul(0.15 + cool*0.1)).
			Add(fwd.Mul(-0.2)).
			Add(fwd.Mul(m.jitter() * shake * cool))
	}
	q := spatial.AngleAxis(float64(i-10)/5*360-m.rotation, fwd)
	return palm.
		Add(q.Rotate(up).Mul(0.1 + cool*0.1)).
		Add(fwd.Mul(m.jitter() * shake * m.held()))
}

func (m *Lightning) Rot(i int, _ *shard.Fragment, pos mgl64.Vec3) mgl64.Quat {
	fwd := m.ForwardDir()
	palm := m.Hand().Palm()
	switch {
	case i == 1:
		return spatial.LookRotation(fwd, m.SideDir())
	case i == 2:
		return spatial.LookRotation(fwd, m.SideDir().Mul(-1))
	case i < 10:
		return spatial.LookRotation(pos.Sub(palm.Add(fwd.Mul(0.2))), fwd)
	}
	return spatial.LookRotation(fwd, pos.Sub(palm))
}

func (m *Lightning) UseLabel() string {
	if m.Trigger.Down() {
		return "Release to fire"
	}
	return "Hold Trigger to charge"
}

func (m *Lightning) AltLabel() string { return "" }

func (m *Lightning) triggerPressed() {
	m.charge = m.W.Effects().SpawnEffect(EffectLightningCharge, spatial.At(m.Center()))
}

func (m *Lightning) triggerHeld() {
	m.armed = true
	held := m.held()
	m.rotation += m.frame.Dt * spatial.Lerp(80, 300, held)
	fx := m.W.Effects()
	fx.SetEffectIntensity(m.charge, held)
	fx.SetEffectPose(m.charge, spatial.At(m.Center()))
	m.W.Input().Haptic(m.Hand().Side, held*0.5, 20)
}

func (m *Lightning) triggerReleased() {
	if !m.armed {
		return
	}
	m.armed = false
	w := m.W
	fx := w.Effects()
	center, fwd := m.Center(), m.ForwardDir()
	bolt := fx.SpawnEffect(EffectLightning, spatial.At(center))
	fx.EndEffect(m.charge)
	m.charge = engine.NoEffect

	victim, hit := m.victim()
	target := m.aimPoint()
	if hit {
		target = position(w.Physics(), victim.Body, victim.Point)
	}
	source := center
	if p := m.Part(); p != nil {
		source = p.Pose().Position
	}
	fx.SetEffectEndpoints(bolt, source, target)
	if hit {
		w.Combat().Damage(victim.Body, m.Damage, target)
		w.Combat().Shock(victim.Body, m.ShockDuration)
	}
	Explosion(w.Physics(), w.Combat(), w.Session(), target.Sub(fwd.Mul(0.5)), m.ExplosionForce, m.ExplosionRadius, true, true)
}

// victim picks the creature in the arc's cone that is both near and close
// to the aim line.
func (m *Lightning) victim() (engine.Hit, bool) {
	w := m.W
	center, fwd := m.Center(), m.ForwardDir()
	hits := Creatures(ConeCast(w.Physics(), center, 5, fwd, m.Range, 30), w.Session())
	if len(hits) == 0 {
		return engine.Hit{}, false
	}
	score := func(h engine.Hit) float64 {
		at := position(w.Physics(), h.Body, h.Point)
		return spatial.Distance(at, center) / 30 * 2 * spatial.VecAngle(fwd, at.Sub(center)) / 50
	}
	sort.SliceStable(hits, func(i, j int) bool { return score(hits[i]) < score(hits[j]) })
	return hits[0], true
}

// aimPoint is the nearest surface along the aim line that is neither a
// fragment nor the player.
func (m *Lightning) aimPoint() mgl64.Vec3 {
	w := m.W
	center, fwd := m.Center(), m.ForwardDir()
	best, found := math.Inf(1), false
	var at mgl64.Vec3
	for _, h := range w.Physics().Raycast(center, fwd, m.Range) {
		if h.Kind == engine.HitFragment || w.Session().IsPlayer(h) {
			continue
		}
		if d := spatial.Distance(h.Point, center); d < best {
			best, at, found = d, h.Point, true
		}
	}
	if !found {
		return center.Add(fwd.Mul(m.Range))
	}
	return at
}

func (m *Lightning) Enter(w *blade.Weapon) {
	m.Grabbed.Enter(w)
	m.armed = false
	m.charge = engine.NoEffect
}

func (m *Lightning) Update(f blade.Frame) {
	m.frame = f
	m.Grabbed.Update(f)
}

func (m *Lightning) Exit() {
	m.W.Effects().EndEffect(m.charge)
	m.charge = engine.NoEffect
	m.Grabbed.Exit()
}
