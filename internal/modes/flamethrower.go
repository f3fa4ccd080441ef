package modes

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/shatterblade/internal/blade"
	"github.com/san-kum/shatterblade/internal/engine"
	"github.com/san-kum/shatterblade/internal/shard"
	"github.com/san-kum/shatterblade/internal/spatial"
)

// SpellTarget is the fragment that selects a spell mode when grabbed.
const SpellTarget = 11

const (
	EffectFlames       = "flames"
	EffectFireCharge   = "fire-charge"
	ProjectileSphere   = "flame-sphere"
	ProjectileFireball = "fireball"

	FlameDamage    = 1.0
	FlameSpheres   = 10
	FireballSpeed  = 30.0
	FireballCharge = 1.0
)

// Flamethrower sprays fire from the hand holding fragment 11 with the fire
// spell equipped. Holding the button while pulling the trigger charges
// three fireballs instead.
type Flamethrower struct {
	*blade.Grabbed
	rotation float64
	frame    blade.Frame

	flame     engine.EffectID
	fireballs []engine.EffectID
}

func NewFlamethrower() *Flamethrower {
	m := &Flamethrower{Grabbed: blade.NewGrabbed("flamethrower", 30, SpellTarget)}
	m.Gate = blade.Gate{Spell: engine.SpellFire}
	m.Poser = m
	m.Labeler = m
	m.Trigger.OnPressed = m.triggerPressed
	m.Trigger.OnHeld = m.triggerHeld
	m.Trigger.OnNotHeld = func() { m.rotation += m.frame.Dt * 80 }
	m.Trigger.OnReleased = m.triggerReleased
	m.Button.OnReleased = m.buttonReleased
	return m
}

func (m *Flamethrower) Rotation() float64 { return m.rotation }

// Fireballs lists the charging fireball effects.
func (m *Flamethrower) Fireballs() []engine.EffectID { return m.fireballs }

func (m *Flamethrower) charging() bool { return m.Hand().Button }

func (m *Flamethrower) basePos(k int) mgl64.Vec3 {
	q := spatial.AngleAxis(float64(k)/3*360+m.rotation, m.ForwardDir())
	return m.Center().Add(q.Rotate(m.UpDir()).Mul(0.3))
}

func (m *Flamethrower) normalPos(i int) mgl64.Vec3 {
	c, fwd, up := m.Center(), m.ForwardDir(), m.UpDir()
	switch {
	case i == 1:
		return c
	case i == 2:
		return c.Add(up.Mul(0.5))
	case i < 10:
		q := spatial.AngleAxis(float64(i-2)/7*360+m.rotation, fwd)
		return c.Add(q.Rotate(up).Mul(0.3))
	}
	q := spatial.AngleAxis(float64(i-9)/5*360-m.rotation, fwd)
	return c.Add(q.Rotate(up).Mul(0.2))
}

func (m *Flamethrower) pressedPos(i int) mgl64.Vec3 {
	c, fwd, up := m.Center(), m.ForwardDir(), m.UpDir()
	switch i {
	case 1:
		return c.Add(fwd.Mul(0.2))
	case 2:
		return c
	}
	q := spatial.AngleAxis(float64((i-2)%4)/4*360-m.rotation*1.5, fwd)
	return m.basePos((i - 2) / 4).Add(fwd.Mul(0.15)).Add(q.Rotate(up).Mul(0.15))
}

func (m *Flamethrower) Pos(i int, _ *shard.Fragment) mgl64.Vec3 {
	if m.charging() {
		return m.pressedPos(i)
	}
	return m.normalPos(i)
}

func (m *Flamethrower) Rot(i int, _ *shard.Fragment, pos mgl64.Vec3) mgl64.Quat {
	fwd := m.ForwardDir()
	if i <= 2 {
		return spatial.LookRotation(fwd, m.UpDir())
	}
	if m.charging() {
		lead := 0.15
		if m.Trigger.Down() {
			lead = 0.25
		}
		return spatial.LookRotation(pos.Sub(m.basePos((i-2)/4)).Add(fwd.Mul(lead)), fwd)
	}
	return spatial.LookRotation(pos.Sub(m.Center()), fwd)
}

func (m *Flamethrower) UseLabel() string { return "Pull trigger to burn your foes" }
func (m *Flamethrower) AltLabel() string { return "" }

func (m *Flamethrower) nozzle() spatial.Pose {
	at := m.Center()
	if p := m.W.Part(1); p != nil {
		at = p.Pose().Position
	}
	return spatial.Pose{Position: at, Rotation: spatial.LookRotation(m.ForwardDir(), m.UpDir())}
}

func (m *Flamethrower) triggerPressed() {
	fx := m.W.Effects()
	if m.charging() {
		m.endFireballs()
		for k := 0; k < 3; k++ {
			id := fx.SpawnEffect(EffectFireCharge, spatial.At(m.fireballAt(k)))
			fx.SetEffectIntensity(id, 0)
			m.fireballs = append(m.fireballs, id)
		}
		return
	}
	m.flame = fx.SpawnEffect(EffectFlames, m.nozzle())
}

func (m *Flamethrower) fireballAt(k int) mgl64.Vec3 {
	return m.basePos(k).Add(m.ForwardDir().Mul(0.25))
}

func (m *Flamethrower) triggerHeld() {
	f := m.frame
	held := spatial.Clamp01(f.Now - m.Trigger.LastPress())
	m.rotation += f.Dt * spatial.Lerp(80, 300, held)
	fx := m.W.Effects()
	if m.charging() {
		for k, id := range m.fireballs {
			fx.SetEffectPose(id, spatial.At(m.fireballAt(k)))
			fx.SetEffectIntensity(id, held)
		}
		return
	}
	if m.flame != engine.NoEffect {
		fx.SetEffectPose(m.flame, m.nozzle())
		w := m.W
		hits := ConeCast(w.Physics(), m.Center(), 1, m.ForwardDir(), 5, 30)
		for _, h := range Creatures(hits, w.Session()) {
			w.Combat().Damage(h.Body, FlameDamage, h.Point)
		}
	}
	m.sprayed()
}

// sprayed launches the short-lived spheres that carry the flames' push.
func (m *Flamethrower) sprayed() {
	from := m.Center().Add(m.ForwardDir().Mul(0.3))
	for n := 0; n < FlameSpheres; n++ {
		m.W.Combat().SpawnProjectile(engine.Projectile{
			Kind:     ProjectileSphere,
			Position: from,
			Velocity: m.ForwardDir().Mul(FireballSpeed),
			Radius:   0.1,
			Lifetime: 1,
		})
	}
}

func (m *Flamethrower) triggerReleased() {
	m.W.Effects().EndEffect(m.flame)
	m.flame = engine.NoEffect
	if m.charging() {
		m.release()
	}
}

func (m *Flamethrower) buttonReleased() {
	if m.Trigger.Down() {
		m.release()
	}
}

// release throws the fireballs once they are fully charged and drops them
// otherwise.
func (m *Flamethrower) release() {
	if m.frame.Now-m.Trigger.LastPress() <= FireballCharge {
		m.endFireballs()
		return
	}
	m.endFireballs()
	for k := 0; k < 3; k++ {
		m.W.Combat().SpawnProjectile(engine.Projectile{
			Kind:     ProjectileFireball,
			Position: m.fireballAt(k),
			Velocity: m.ForwardDir().Mul(FireballSpeed),
			Radius:   0.15,
			Lifetime: 5,
		})
	}
}

func (m *Flamethrower) endFireballs() {
	for _, id := range m.fireballs {
		m.W.Effects().EndEffect(id)
	}
	m.fireballs = m.fireballs[:0]
}

func (m *Flamethrower) Enter(w *blade.Weapon) {
	m.Grabbed.Enter(w)
	m.fireballs = m.fireballs[:0]
	m.flame = engine.NoEffect
}

func (m *Flamethrower) Update(f blade.Frame) {
	m.frame = f
	m.Grabbed.Update(f)
}

func (m *Flamethrower) Exit() {
	m.Grabbed.Exit()
	m.W.Effects().EndEffect(m.flame)
	m.flame = engine.NoEffect
	m.endFireballs()
}
