package modes

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/shatterblade/internal/blade"
	"github.com/san-kum/shatterblade/internal/engine"
	"github.com/san-kum/shatterblade/internal/joint"
	"github.com/san-kum/shatterblade/internal/shard"
	"github.com/san-kum/shatterblade/internal/spatial"
	"github.com/san-kum/shatterblade/internal/task"
)

const (
	EffectGravity     = "gravity"
	EffectGravityFire = "gravity-fire"
	EffectGravityAoE  = "gravity-aoe"

	gravityThrowKey = "gravity/throw"
)

// Gravity tethers a loose object in front of the hand holding fragment 11
// with the gravity spell equipped. Releasing the trigger throws it; with
// the button held the trigger fires a push instead.
type Gravity struct {
	*blade.Grabbed
	Cooldown   float64
	ThrowForce float64
	BlastForce float64

	frame    blade.Frame
	rotation float64

	held       engine.BodyID
	heldRadius float64
	lastRadius float64
	tether     *joint.Joint
	anchor     engine.BodyID
	effect     engine.EffectID
	fading     engine.EffectID
	intensity  float64
}

func NewGravity() *Gravity {
	m := &Gravity{
		Grabbed:    blade.NewGrabbed("gravity", 30, SpellTarget),
		Cooldown:   1,
		ThrowForce: 30,
		BlastForce: 30,
	}
	m.Gate = blade.Gate{Spell: engine.SpellGravity}
	m.Poser = m
	m.Labeler = m
	m.Trigger.Cooldown = func() float64 {
		if m.buttonDown() {
			return m.Cooldown
		}
		return 0
	}
	m.Trigger.OnPressed = m.triggerPressed
	m.Trigger.OnHeld = m.triggerHeld
	m.Trigger.OnReleased = m.triggerReleased
	return m
}

func (m *Gravity) Rotation() float64 { return m.rotation }

// Held is the tethered body, or NoBody.
func (m *Gravity) Held() engine.BodyID { return m.held }

// Anchor is the kinematic point the tether pulls toward.
func (m *Gravity) Anchor() engine.BodyID { return m.anchor }

func (m *Gravity) holding() bool { return m.held != engine.NoBody }

func (m *Gravity) buttonDown() bool { return m.Hand().Button }

// HeldRadius is the held body's radius plus a margin, capped at 2. With
// nothing held it keeps the last value.
func (m *Gravity) HeldRadius() float64 {
	if m.holding() {
		m.lastRadius = math.Min(m.heldRadius+0.1, 2)
	}
	return m.lastRadius
}

func (m *Gravity) heldCenter() mgl64.Vec3 { return m.W.Physics().CenterOfMass(m.held) }

func (m *Gravity) anchorPoint() mgl64.Vec3 {
	return m.Center().Add(m.ForwardDir().Mul(0.2 + m.HeldRadius()*1.5))
}

func (m *Gravity) muzzle() mgl64.Vec3 {
	if p := m.W.Part(1); p != nil {
		return p.Pose().Position
	}
	return m.Center()
}

func (m *Gravity) pincer(i int) mgl64.Vec3 {
	c, fwd, up := m.Center(), m.ForwardDir(), m.UpDir()
	sign := 1.0
	if i != 1 {
		sign = -1
	}
	switch {
	case m.holding():
		hc := m.heldCenter()
		angle := m.rotation / 3
		if i != 1 {
			angle += 180
		}
		q := spatial.AngleAxis(angle, hc.Sub(c))
		return hc.Add(q.Rotate(up).Mul(0.1 + m.HeldRadius()))
	case m.buttonDown():
		return c.Add(m.SideDir().Mul(0.1 * sign)).Add(fwd.Mul(0.15))
	}
	return c.Add(up.Mul(0.1 * sign)).Add(fwd.Mul(0.15))
}

func (m *Gravity) inner(i int) mgl64.Vec3 {
	c, fwd, up := m.Center(), m.ForwardDir(), m.UpDir()
	q := spatial.AngleAxis(float64(i-10)/5*360+m.rotation, fwd)
	if m.buttonDown() {
		return c.Add(q.Rotate(up).Mul(0.1))
	}
	radius, lead := 0.3, -0.1
	if m.holding() {
		radius, lead = 0.1, 0.2
	}
	return c.Add(q.Rotate(up).Mul(radius)).Add(fwd.Mul(lead))
}

func (m *Gravity) outer(i int) mgl64.Vec3 {
	c, fwd, up := m.Center(), m.ForwardDir(), m.UpDir()
	q := spatial.AngleAxis(float64(i-2)/7*360-m.rotation, fwd)
	if !m.holding() && m.buttonDown() {
		return c.Add(q.Rotate(up).Mul(0.3)).Add(fwd.Mul(0.1))
	}
	radius, lead := 0.3, -0.2
	if m.holding() {
		radius, lead = 0.2, 0.1
	}
	return c.Add(q.Rotate(up).Mul(radius)).Add(fwd.Mul(lead))
}

func (m *Gravity) Pos(i int, _ *shard.Fragment) mgl64.Vec3 {
	switch {
	case i < 3:
		return m.pincer(i)
	case i < 10:
		return m.outer(i)
	}
	return m.inner(i)
}

func (m *Gravity) Rot(i int, _ *shard.Fragment, pos mgl64.Vec3) mgl64.Quat {
	c, fwd := m.Center(), m.ForwardDir()
	if i <= 2 {
		switch {
		case m.holding():
			held, _ := m.W.Physics().Pose(m.held)
			return spatial.LookRotation(held.Position.Sub(pos), c.Sub(pos))
		case m.buttonDown():
			return spatial.LookRotation(m.UpDir(), c.Sub(fwd.Mul(0.1)).Sub(pos))
		}
		return spatial.LookRotation(fwd, m.SideDir())
	}
	switch {
	case m.holding():
		return spatial.LookRotation(fwd, pos.Sub(c))
	case m.buttonDown():
		return spatial.LookRotation(c.Add(fwd.Mul(-0.2)).Sub(pos), c.Add(fwd.Mul(0.3)).Sub(pos))
	}
	return spatial.LookRotation(pos.Sub(c), fwd)
}

func (m *Gravity) UseLabel() string {
	switch {
	case m.buttonDown():
		return "Pull trigger for gravity blast"
	case m.holding():
		return "Release trigger to throw"
	}
	return "Pull trigger to attract an object"
}

func (m *Gravity) AltLabel() string {
	if m.buttonDown() || m.Trigger.Down() {
		return ""
	}
	return "Hold button to switch modes"
}

// acquire tethers the best loose object in the aim cone.
func (m *Gravity) acquire() {
	w := m.W
	phys := w.Physics()
	from, fwd := m.muzzle(), m.ForwardDir()
	var picks []engine.Hit
	for _, h := range ConeCast(phys, from, 5, fwd, 30, 50) {
		if h.Kind != engine.HitProp || h.Kinematic || h.Held || h.Body == w.Root() {
			continue
		}
		picks = append(picks, h)
	}
	if len(picks) == 0 {
		return
	}
	score := func(h engine.Hit) float64 {
		at := position(phys, h.Body, h.Point)
		return spatial.Distance(at, from) / 30 * 2 * spatial.VecAngle(fwd, at.Sub(from)) / 50
	}
	sort.SliceStable(picks, func(i, j int) bool { return score(picks[i]) < score(picks[j]) })
	pick := picks[0]

	m.held = pick.Body
	m.heldRadius = pick.Radius
	phys.Depenetrate(m.held)
	phys.SetModifier(m.held, engine.Modifier{Gravity: 0, Mass: 1, Drag: 5, AngularDrag: -1})
	if m.tether != nil {
		m.tether.Destroy()
	}
	mod := MassModifier(phys.Mass(m.held))
	m.tether = joint.Simple(phys, m.held, m.anchor, 100*mod, 5*mod)
	pose, _ := phys.Pose(m.held)
	m.effect = w.Effects().SpawnEffect(EffectGravity, spatial.Pose{Position: m.heldCenter(), Rotation: pose.Rotation})
}

func (m *Gravity) throw() {
	w := m.W
	phys := w.Physics()
	w.Input().Haptic(m.Hand().Side, 1, 5)
	pose, _ := phys.Pose(m.held)
	mod := MassModifier(phys.Mass(m.held))
	v := HomingThrow(phys, w.Session(), pose.Position, m.ForwardDir(), 30)
	phys.AddImpulse(m.held, v.Mul(mod*m.ThrowForce))
	w.Effects().SpawnEffect(EffectGravityFire, pose)

	m.endFade()
	effect := m.effect
	m.effect = engine.NoEffect
	m.fading = effect
	w.Tasks().Start(m.frame.Now, task.Task{
		Key:      gravityThrowKey,
		Duration: 0.5,
		Step: func(p float64) {
			m.shade(effect, p, spatial.At(m.Center()))
		},
		Done: func() {
			w.Effects().EndEffect(effect)
			m.fading = engine.NoEffect
		},
	})
}

// endFade stops the fade of the last thrown object's effect.
func (m *Gravity) endFade() {
	m.W.Tasks().Cancel(gravityThrowKey)
	m.W.Effects().EndEffect(m.fading)
	m.fading = engine.NoEffect
}

func (m *Gravity) shade(id engine.EffectID, intensity float64, at spatial.Pose) {
	if id == engine.NoEffect {
		return
	}
	fx := m.W.Effects()
	fx.SetEffectIntensity(id, intensity)
	fx.SetEffectScale(id, m.HeldRadius()*intensity*2)
	fx.SetEffectPose(id, at)
}

func (m *Gravity) push() {
	w := m.W
	h := m.Hand()
	fwd := m.ForwardDir()
	w.Input().Haptic(h.Side, 1, 5)
	w.Effects().SpawnEffect(EffectGravityAoE, spatial.Pose{
		Position: m.Center().Add(fwd.Mul(0.2)),
		Rotation: spatial.LookRotation(fwd, m.UpDir()),
	})
	PushForce(w.Physics(), w.Combat(), w.Session(), h.Position().Add(fwd), fwd, 1, 4, fwd.Mul(m.BlastForce), true, true)
}

func (m *Gravity) triggerPressed() {
	m.intensity = 0
	m.W.Effects().EndEffect(m.effect)
	m.effect = engine.NoEffect
	if m.buttonDown() {
		m.push()
	}
}

func (m *Gravity) triggerHeld() {
	if !m.buttonDown() && !m.holding() {
		m.acquire()
	}
	t := m.frame.Now - m.Trigger.LastPress()
	m.W.Input().Haptic(m.Hand().Side, (math.Sin(t*10)+1)/2*0.5, 20)
}

func (m *Gravity) triggerReleased() {
	if m.holding() {
		m.untether()
		m.throw()
	}
	m.W.Effects().EndEffect(m.effect)
	m.effect = engine.NoEffect
	m.held = engine.NoBody
}

func (m *Gravity) untether() {
	if m.tether != nil {
		m.tether.Destroy()
		m.tether = nil
	}
	if m.held != engine.NoBody {
		m.W.Physics().ClearModifier(m.held)
	}
}

func (m *Gravity) Enter(w *blade.Weapon) {
	m.Grabbed.Enter(w)
	m.held, m.tether, m.effect, m.fading = engine.NoBody, nil, engine.NoEffect, engine.NoEffect
	m.intensity = 0
	m.anchor = w.Physics().CreateBody(spatial.Pose{
		Position: m.anchorPoint(),
		Rotation: spatial.LookRotation(spatial.Up, spatial.Forward),
	}, true)
}

func (m *Gravity) Update(f blade.Frame) {
	m.frame = f
	m.Grabbed.Update(f)
	w := m.W
	phys := w.Physics()
	if m.holding() && !phys.Exists(m.held) {
		m.untether()
		m.held = engine.NoBody
	}
	target := m.anchorPoint()
	phys.SetPose(m.anchor, spatial.Pose{Position: target, Rotation: spatial.LookRotation(m.ForwardDir(), m.UpDir())})

	if !m.holding() {
		m.intensity = math.Max(m.intensity-f.Dt*3, 0)
		m.shade(m.effect, m.intensity, spatial.At(target))
		m.rotation += f.Dt * 80
		return
	}
	pose, _ := phys.Pose(m.held)
	v := phys.Velocity(m.held)
	v = v.Mul(spatial.Lerp(0.7, 1, spatial.InverseLerp(0, 4, spatial.Distance(pose.Position, target))))
	phys.SetVelocity(m.held, safeNormal(target.Sub(pose.Position)).Mul(v.Len()))
	if m.effect != engine.NoEffect {
		m.intensity = math.Min(m.intensity+f.Dt*3, 1)
		m.shade(m.effect, m.intensity, spatial.Pose{Position: m.heldCenter(), Rotation: pose.Rotation})
	}
	m.rotation += f.Dt * spatial.Lerp(80, 300, f.Now-m.Trigger.LastPress())
}

func (m *Gravity) Exit() {
	m.Grabbed.Exit()
	w := m.W
	m.untether()
	w.Physics().DestroyBody(m.anchor)
	m.anchor = engine.NoBody
	m.endFade()
	w.Effects().EndEffect(m.effect)
	m.effect = engine.NoEffect
	m.held = engine.NoBody
}
