// Package input provides a scripted player for the weapon: two hands whose
// poses, buttons and grabs are set by a timeline or a test, plus a log of
// haptic pulses.
package input

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/shatterblade/internal/engine"
	"github.com/san-kum/shatterblade/internal/spatial"
)

// Mover is the part of the world the device drives when it applies hand
// motion.
type Mover interface {
	MoveKinematic(b engine.BodyID, p spatial.Pose, dt float64)
	SetHeld(b engine.BodyID, held bool)
	Exists(b engine.BodyID) bool
}

// Pulse is one recorded haptic request.
type Pulse struct {
	Side      engine.Side
	Intensity float64
	Frequency float64
}

type grip struct {
	body   engine.BodyID
	offset spatial.Pose
}

type Device struct {
	hands     [2]engine.Hand
	grips     [2]*grip
	main      map[engine.BodyID]engine.Side
	holstered map[engine.BodyID]bool
	held      map[engine.BodyID]bool
	pulses    []Pulse
}

func NewDevice() *Device {
	d := &Device{
		main:      make(map[engine.BodyID]engine.Side),
		holstered: make(map[engine.BodyID]bool),
		held:      make(map[engine.BodyID]bool),
	}
	for _, s := range engine.Sides {
		d.hands[s] = engine.Hand{Side: s, Pose: spatial.Identity()}
	}
	return d
}

// BindBody attaches a hand to its kinematic body in the world.
func (d *Device) BindBody(s engine.Side, b engine.BodyID) { d.hands[s].Body = b }

func (d *Device) Hand(s engine.Side) engine.Hand { return d.hands[s] }

// SetPose places a hand. Velocity is left to Apply.
func (d *Device) SetPose(s engine.Side, p spatial.Pose) { d.hands[s].Pose = p }

func (d *Device) SetVelocity(s engine.Side, v mgl64.Vec3) { d.hands[s].Velocity = v }

func (d *Device) SetTrigger(s engine.Side, on bool) {
	d.hands[s].Trigger = on
	if on {
		d.hands[s].TriggerAxis = 1
	} else {
		d.hands[s].TriggerAxis = 0
	}
}

func (d *Device) SetTriggerAxis(s engine.Side, v float64) {
	d.hands[s].TriggerAxis = spatial.Clamp01(v)
	d.hands[s].Trigger = v > 0.5
}

func (d *Device) SetButton(s engine.Side, on bool) { d.hands[s].Button = on }

func (d *Device) SetSpell(s engine.Side, sp engine.Spell) { d.hands[s].Spell = sp }

// Grab puts b in a hand. The body keeps its current offset from the hand
// while held. The first hand to grab a body is its main handler.
func (d *Device) Grab(s engine.Side, b engine.BodyID, bodyPose spatial.Pose) {
	d.Release(s)
	d.grips[s] = &grip{body: b, offset: d.hands[s].Pose.Local(bodyPose)}
	if _, ok := d.main[b]; !ok {
		d.main[b] = s
	}
}

// Release empties a hand.
func (d *Device) Release(s engine.Side) {
	g := d.grips[s]
	if g == nil {
		return
	}
	d.grips[s] = nil
	if d.main[g.body] == s {
		delete(d.main, g.body)
		if o := d.grips[s.Other()]; o != nil && o.body == g.body {
			d.main[g.body] = s.Other()
		}
	}
}

// Holding returns the body held by a hand.
func (d *Device) Holding(s engine.Side) (engine.BodyID, bool) {
	if g := d.grips[s]; g != nil {
		return g.body, true
	}
	return engine.NoBody, false
}

func (d *Device) Holders(b engine.BodyID) []engine.Side {
	var out []engine.Side
	for _, s := range engine.Sides {
		if g := d.grips[s]; g != nil && g.body == b {
			out = append(out, s)
		}
	}
	if len(out) == 2 && d.main[b] == engine.Right {
		out[0], out[1] = out[1], out[0]
	}
	return out
}

func (d *Device) SetHolstered(b engine.BodyID, on bool) {
	if on {
		d.holstered[b] = true
		return
	}
	delete(d.holstered, b)
}

func (d *Device) Holstered(b engine.BodyID) bool { return d.holstered[b] }

func (d *Device) Haptic(s engine.Side, intensity, frequency float64) {
	d.pulses = append(d.pulses, Pulse{Side: s, Intensity: intensity, Frequency: frequency})
}

// Pulses returns the haptic requests since the last DrainPulses.
func (d *Device) Pulses() []Pulse { return append([]Pulse(nil), d.pulses...) }

func (d *Device) DrainPulses() []Pulse {
	p := d.pulses
	d.pulses = nil
	return p
}

// Apply moves the hand bodies to the scripted poses and carries held
// bodies along. Hand velocity is derived from the motion when dt > 0.
// A body that vanished is dropped from its hand.
func (d *Device) Apply(w Mover, dt float64) {
	for _, s := range engine.Sides {
		h := &d.hands[s]
		if h.Body != engine.NoBody && w.Exists(h.Body) {
			w.MoveKinematic(h.Body, h.Pose, dt)
		}
	}
	held := make(map[engine.BodyID]bool)
	for _, s := range engine.Sides {
		g := d.grips[s]
		if g == nil {
			continue
		}
		if !w.Exists(g.body) {
			d.Release(s)
			continue
		}
		if !held[g.body] {
			w.MoveKinematic(g.body, d.hands[s].Pose.Mul(g.offset), dt)
		}
		held[g.body] = true
	}
	for b := range d.held {
		if !held[b] && w.Exists(b) {
			w.SetHeld(b, false)
		}
	}
	for b := range held {
		w.SetHeld(b, true)
	}
	d.held = held
}

// Sweep rotates a hand about its position and updates its velocity as if
// it moved there over dt.
func (d *Device) Sweep(s engine.Side, to spatial.Pose, dt float64) {
	from := d.hands[s].Pose
	if dt > 0 {
		d.hands[s].Velocity = to.Position.Sub(from.Position).Mul(1 / dt)
	}
	d.hands[s].Pose = to
}

// HeldBodies lists every body currently in a hand, sorted.
func (d *Device) HeldBodies() []engine.BodyID {
	seen := make(map[engine.BodyID]bool)
	var out []engine.BodyID
	for _, g := range d.grips {
		if g != nil && !seen[g.body] {
			seen[g.body] = true
			out = append(out, g.body)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
