package physics

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/shatterblade/internal/engine"
	"github.com/san-kum/shatterblade/internal/spatial"
	"go.uber.org/zap"
)

type EventKind string

const (
	EventDamage     EventKind = "damage"
	EventShock      EventKind = "shock"
	EventStagger    EventKind = "stagger"
	EventDisarm     EventKind = "disarm"
	EventProjectile EventKind = "projectile"
)

// Event records one combat side effect for inspection by callers.
type Event struct {
	Kind   EventKind
	Time   float64
	Target engine.BodyID
	Amount float64
	At     mgl64.Vec3
	Label  string
}

// AddCreature adds a living target with the given health.
func (w *World) AddCreature(name string, pos mgl64.Vec3, radius, health float64) engine.BodyID {
	return w.AddBody(BodySpec{
		Name:      name,
		Pose:      spatial.At(pos),
		Mass:      70,
		Radius:    radius,
		Kinematic: true,
		Collision: true,
		Kind:      engine.HitCreature,
		Health:    health,
	})
}

// AddProp adds a loose dynamic object.
func (w *World) AddProp(name string, pos mgl64.Vec3, mass, radius float64) engine.BodyID {
	return w.AddBody(BodySpec{
		Name:      name,
		Pose:      spatial.At(pos),
		Mass:      mass,
		Radius:    radius,
		Collision: true,
		Kind:      engine.HitProp,
	})
}

func (w *World) creature(target engine.BodyID) *body {
	b := w.body(target)
	if b == nil {
		return nil
	}
	if r := w.bodies[b.root]; r != nil && r.kind == engine.HitCreature {
		return r
	}
	return nil
}

func (w *World) Damage(target engine.BodyID, amount float64, at mgl64.Vec3) {
	c := w.creature(target)
	if c == nil || !c.alive() {
		return
	}
	c.health -= amount
	w.record(Event{Kind: EventDamage, Target: c.id, Amount: amount, At: at})
	if !c.alive() {
		w.log.Debug("creature killed", zap.String("name", c.name))
	}
}

func (w *World) Shock(target engine.BodyID, duration float64) {
	if c := w.creature(target); c != nil && c.alive() {
		w.record(Event{Kind: EventShock, Target: c.id, Amount: duration})
	}
}

func (w *World) Stagger(target engine.BodyID, dir mgl64.Vec3) {
	if c := w.creature(target); c != nil && c.alive() {
		w.record(Event{Kind: EventStagger, Target: c.id, At: dir})
	}
}

func (w *World) Disarm(target engine.BodyID) {
	if c := w.creature(target); c != nil {
		w.record(Event{Kind: EventDisarm, Target: c.id})
	}
}

func (w *World) SpawnProjectile(p engine.Projectile) engine.BodyID {
	radius := p.Radius
	if radius <= 0 {
		radius = 0.1
	}
	id := w.AddBody(BodySpec{
		Name:      p.Kind,
		Pose:      spatial.At(p.Position),
		Velocity:  p.Velocity,
		Mass:      0.1,
		Radius:    radius,
		NoGravity: !p.Gravity,
		Collision: true,
		Kind:      engine.HitProp,
		Lifetime:  p.Lifetime,
	})
	w.projectileIDs = append(w.projectileIDs, id)
	w.record(Event{Kind: EventProjectile, Target: id, Amount: p.Damage, At: p.Position, Label: p.Kind})
	return id
}

func (w *World) record(e Event) {
	e.Time = w.time
	w.events = append(w.events, e)
}

// Events returns the combat events recorded so far.
func (w *World) Events() []Event {
	return append([]Event(nil), w.events...)
}

// Health returns a creature's remaining health.
func (w *World) Health(target engine.BodyID) float64 {
	if c := w.creature(target); c != nil {
		return c.health
	}
	return 0
}
