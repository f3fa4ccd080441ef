package physics

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/shatterblade/internal/engine"
	"github.com/san-kum/shatterblade/internal/integrators"
	"github.com/san-kum/shatterblade/internal/spatial"
	"go.uber.org/zap"
)

const (
	DefaultSubsteps    = 4
	DefaultAngularDrag = 0.05
	DefaultRestitution = 0.2
)

var DefaultGravity = mgl64.Vec3{0, -9.81, 0}

// BodySpec describes a body added with [World.AddBody].
type BodySpec struct {
	Name        string
	Pose        spatial.Pose
	Velocity    mgl64.Vec3
	Mass        float64
	Radius      float64
	Kinematic   bool
	NoGravity   bool
	Collision   bool
	Kind        engine.HitKind
	Root        engine.BodyID
	Drag        float64
	AngularDrag float64
	Health      float64
	Lifetime    float64
}

type body struct {
	id          engine.BodyID
	name        string
	pose        spatial.Pose
	vel         mgl64.Vec3
	angVel      mgl64.Vec3
	mass        float64
	radius      float64
	kinematic   bool
	gravity     bool
	collision   bool
	telekinesis bool
	held        bool
	kind        engine.HitKind
	root        engine.BodyID
	drag        float64
	angularDrag float64
	modifier    *engine.Modifier
	parent      engine.BodyID
	local       spatial.Pose
	health      float64
	expires     float64
}

func (b *body) dynamic() bool {
	return !b.kinematic && b.parent == engine.NoBody && b.mass > 0
}

func (b *body) effectiveMass() float64 {
	if b.modifier != nil && b.modifier.Mass > 0 {
		return b.mass * b.modifier.Mass
	}
	return b.mass
}

func (b *body) inertia() float64 {
	r := b.radius
	if r <= 0 {
		r = 0.05
	}
	return 0.4 * b.effectiveMass() * r * r
}

func (b *body) alive() bool {
	return b.kind == engine.HitCreature && b.health > 0
}

type pair struct{ a, b engine.BodyID }

func key(a, b engine.BodyID) pair {
	if a > b {
		a, b = b, a
	}
	return pair{a, b}
}

// World is a headless rigid-body world. It implements [engine.Physics],
// [engine.Spawner], [engine.Combat] and [engine.Clock]. It is not safe for
// concurrent use; an ensemble runs one World per goroutine.
type World struct {
	bodies   map[engine.BodyID]*body
	order    []engine.BodyID
	joints   map[engine.JointID]*joint
	jorder   []engine.JointID
	ignored  map[pair]bool
	nextBody engine.BodyID
	nextJnt  engine.JointID

	integ       integrators.Integrator
	substeps    int
	gravity     mgl64.Vec3
	floor       float64
	hasFloor    bool
	restitution float64
	time        float64

	rng        *rand.Rand
	spawnDelay float64
	pending    []pendingSpawn
	template   func(index int) BodySpec

	onContact func(a, b engine.BodyID, speed float64)
	log       *zap.Logger

	jointOps      int
	depenetrated  int
	events        []Event
	projectileIDs []engine.BodyID
}

type Option func(*World)

func WithIntegrator(i integrators.Integrator) Option {
	return func(w *World) { w.integ = i }
}

func WithSubsteps(n int) Option {
	return func(w *World) {
		if n > 0 {
			w.substeps = n
		}
	}
}

func WithGravity(g mgl64.Vec3) Option {
	return func(w *World) { w.gravity = g }
}

func WithFloor(y float64) Option {
	return func(w *World) {
		w.floor = y
		w.hasFloor = true
	}
}

func WithSeed(seed int64) Option {
	return func(w *World) { w.rng = rand.New(rand.NewSource(seed)) }
}

// WithSpawnDelay makes fragment spawns complete after a random delay in
// [0, d) seconds, in shuffled order.
func WithSpawnDelay(d float64) Option {
	return func(w *World) { w.spawnDelay = d }
}

func WithFragmentTemplate(fn func(index int) BodySpec) Option {
	return func(w *World) { w.template = fn }
}

func WithLogger(l *zap.Logger) Option {
	return func(w *World) { w.log = l }
}

func NewWorld(opts ...Option) *World {
	w := &World{
		bodies:      make(map[engine.BodyID]*body),
		joints:      make(map[engine.JointID]*joint),
		ignored:     make(map[pair]bool),
		integ:       integrators.NewEuler(),
		substeps:    DefaultSubsteps,
		gravity:     DefaultGravity,
		restitution: DefaultRestitution,
		rng:         rand.New(rand.NewSource(1)),
		template:    DefaultFragment,
		log:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// DefaultFragment is a 200 g shard with a 6 cm collision radius.
func DefaultFragment(index int) BodySpec {
	return BodySpec{
		Name:      fmt.Sprintf("fragment-%d", index),
		Pose:      spatial.Identity(),
		Mass:      0.2,
		Radius:    0.06,
		Collision: true,
		Kind:      engine.HitFragment,
	}
}

// OnContact registers a callback fired once per step for each touching
// pair that was approaching.
func (w *World) OnContact(fn func(a, b engine.BodyID, speed float64)) {
	w.onContact = fn
}

func (w *World) Now() float64 { return w.time }

func (w *World) AddBody(s BodySpec) engine.BodyID {
	w.nextBody++
	id := w.nextBody
	rot := s.Pose.Rotation
	if rot == (mgl64.Quat{}) {
		rot = mgl64.QuatIdent()
	}
	b := &body{
		id:          id,
		name:        s.Name,
		pose:        spatial.Pose{Position: s.Pose.Position, Rotation: rot},
		vel:         s.Velocity,
		mass:        s.Mass,
		radius:      s.Radius,
		kinematic:   s.Kinematic,
		gravity:     !s.NoGravity,
		collision:   s.Collision,
		telekinesis: true,
		kind:        s.Kind,
		root:        s.Root,
		drag:        s.Drag,
		angularDrag: s.AngularDrag,
		health:      s.Health,
	}
	if b.angularDrag == 0 {
		b.angularDrag = DefaultAngularDrag
	}
	if b.root == engine.NoBody {
		b.root = id
	}
	if s.Lifetime > 0 {
		b.expires = w.time + s.Lifetime
	}
	w.bodies[id] = b
	w.order = append(w.order, id)
	return id
}

func (w *World) body(id engine.BodyID) *body {
	if id == engine.NoBody {
		return nil
	}
	b := w.bodies[id]
	if b == nil {
		w.log.Debug("unknown body", zap.Int32("body", int32(id)))
	}
	return b
}

// BodyState is a read-only view of a body for callers outside the engine
// ports.
type BodyState struct {
	Name        string
	Pose        spatial.Pose
	Velocity    mgl64.Vec3
	Kinematic   bool
	Collision   bool
	Telekinesis bool
	Held        bool
	Parent      engine.BodyID
	Modifier    *engine.Modifier
	Health      float64
}

func (w *World) Lookup(id engine.BodyID) (BodyState, error) {
	b := w.bodies[id]
	if b == nil {
		return BodyState{}, fmt.Errorf("%w: %d", ErrUnknownBody, id)
	}
	s := BodyState{
		Name:        b.name,
		Pose:        b.pose,
		Velocity:    b.vel,
		Kinematic:   b.kinematic,
		Collision:   b.collision,
		Telekinesis: b.telekinesis,
		Held:        b.held,
		Parent:      b.parent,
		Health:      b.health,
	}
	if b.modifier != nil {
		m := *b.modifier
		s.Modifier = &m
	}
	return s, nil
}

func (w *World) Exists(id engine.BodyID) bool {
	return w.bodies[id] != nil
}

func (w *World) Pose(id engine.BodyID) (spatial.Pose, bool) {
	b := w.body(id)
	if b == nil {
		return spatial.Identity(), false
	}
	return b.pose, true
}

func (w *World) SetPose(id engine.BodyID, p spatial.Pose) {
	b := w.body(id)
	if b == nil {
		return
	}
	b.pose = p
	if b.parent != engine.NoBody {
		if parent := w.bodies[b.parent]; parent != nil {
			b.local = parent.pose.Local(p)
		}
	}
	w.propagate(b)
}

// MoveKinematic sets a pose and derives the velocities that would have
// carried the body there over dt.
func (w *World) MoveKinematic(id engine.BodyID, p spatial.Pose, dt float64) {
	b := w.body(id)
	if b == nil {
		return
	}
	if dt > 0 {
		b.vel = p.Position.Sub(b.pose.Position).Mul(1 / dt)
		b.angVel = integrators.RotationError(b.pose.Rotation, p.Rotation).Mul(1 / dt)
	}
	w.SetPose(id, p)
}

func (w *World) Velocity(id engine.BodyID) mgl64.Vec3 {
	if b := w.body(id); b != nil {
		return b.vel
	}
	return mgl64.Vec3{}
}

func (w *World) SetVelocity(id engine.BodyID, v mgl64.Vec3) {
	if b := w.body(id); b != nil {
		b.vel = v
	}
}

func (w *World) AngularVelocity(id engine.BodyID) mgl64.Vec3 {
	if b := w.body(id); b != nil {
		return b.angVel
	}
	return mgl64.Vec3{}
}

func (w *World) SetAngularVelocity(id engine.BodyID, v mgl64.Vec3) {
	if b := w.body(id); b != nil {
		b.angVel = v
	}
}

func (w *World) PointVelocity(id engine.BodyID, p mgl64.Vec3) mgl64.Vec3 {
	b := w.body(id)
	if b == nil {
		return mgl64.Vec3{}
	}
	return pointVelocity(b, p)
}

func pointVelocity(b *body, p mgl64.Vec3) mgl64.Vec3 {
	return b.vel.Add(b.angVel.Cross(p.Sub(b.pose.Position)))
}

func (w *World) CenterOfMass(id engine.BodyID) mgl64.Vec3 {
	if b := w.body(id); b != nil {
		return b.pose.Position
	}
	return mgl64.Vec3{}
}

func (w *World) Mass(id engine.BodyID) float64 {
	if b := w.body(id); b != nil {
		return b.effectiveMass()
	}
	return 0
}

func (w *World) SetKinematic(id engine.BodyID, on bool) {
	if b := w.body(id); b != nil {
		b.kinematic = on
		if on {
			b.vel = mgl64.Vec3{}
			b.angVel = mgl64.Vec3{}
		}
	}
}

func (w *World) Kinematic(id engine.BodyID) bool {
	if b := w.body(id); b != nil {
		return b.kinematic
	}
	return false
}

func (w *World) SetParent(child, parent engine.BodyID) {
	c := w.body(child)
	if c == nil {
		return
	}
	if parent == engine.NoBody {
		c.parent = engine.NoBody
		return
	}
	p := w.body(parent)
	if p == nil || parent == child {
		return
	}
	c.parent = parent
	c.local = p.pose.Local(c.pose)
}

func (w *World) Parent(child engine.BodyID) engine.BodyID {
	if c := w.body(child); c != nil {
		return c.parent
	}
	return engine.NoBody
}

// propagate moves every descendant of b with it.
func (w *World) propagate(b *body) {
	for _, id := range w.order {
		c := w.bodies[id]
		if c == nil || c.parent != b.id {
			continue
		}
		c.pose = b.pose.Mul(c.local)
		c.vel = pointVelocity(b, c.pose.Position)
		c.angVel = b.angVel
		w.propagate(c)
	}
}

func (w *World) SetCollision(id engine.BodyID, on bool) {
	if b := w.body(id); b != nil {
		b.collision = on
	}
}

func (w *World) IgnoreCollision(a, b engine.BodyID, ignore bool) {
	if a == b {
		return
	}
	if ignore {
		w.ignored[key(a, b)] = true
		return
	}
	delete(w.ignored, key(a, b))
}

// Ignored reports whether collisions between a and b are suppressed.
func (w *World) Ignored(a, b engine.BodyID) bool {
	return w.ignored[key(a, b)]
}

func (w *World) SetModifier(id engine.BodyID, m engine.Modifier) {
	if b := w.body(id); b != nil {
		b.modifier = &m
	}
}

func (w *World) ClearModifier(id engine.BodyID) {
	if b := w.body(id); b != nil {
		b.modifier = nil
	}
}

func (w *World) Depenetrate(id engine.BodyID) {
	if w.body(id) != nil {
		w.depenetrated++
	}
}

func (w *World) SetTelekinesis(id engine.BodyID, on bool) {
	if b := w.body(id); b != nil {
		b.telekinesis = on
	}
}

// SetHeld marks a body as held by a hand; held bodies are reported in query
// hits.
func (w *World) SetHeld(id engine.BodyID, held bool) {
	if b := w.body(id); b != nil {
		b.held = held
	}
}

func (w *World) AddImpulse(id engine.BodyID, impulse mgl64.Vec3) {
	b := w.body(id)
	if b == nil || !b.dynamic() {
		return
	}
	b.vel = b.vel.Add(impulse.Mul(1 / b.effectiveMass()))
}

// CreateBody adds a massless kinematic-style marker or a unit-mass dynamic
// body with collision disabled.
func (w *World) CreateBody(p spatial.Pose, kinematic bool) engine.BodyID {
	mass := 1.0
	if kinematic {
		mass = 0
	}
	return w.AddBody(BodySpec{
		Pose:      p,
		Mass:      mass,
		Radius:    0.01,
		Kinematic: kinematic,
		NoGravity: kinematic,
		Kind:      engine.HitStatic,
	})
}

func (w *World) DestroyBody(id engine.BodyID) {
	if w.bodies[id] == nil {
		return
	}
	delete(w.bodies, id)
	for i, o := range w.order {
		if o == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	for _, jid := range append([]engine.JointID(nil), w.jorder...) {
		j := w.joints[jid]
		if j.body == id || j.connected == id {
			w.removeJoint(jid)
		}
	}
	for _, b := range w.bodies {
		if b.parent == id {
			b.parent = engine.NoBody
		}
	}
}

// Bodies returns the live body ids in creation order.
func (w *World) Bodies() []engine.BodyID {
	return append([]engine.BodyID(nil), w.order...)
}

// Step advances the world by dt using the configured number of substeps.
func (w *World) Step(dt float64) error {
	if dt <= 0 {
		return nil
	}
	h := dt / float64(w.substeps)
	contacts := make(map[pair]float64)
	for s := 0; s < w.substeps; s++ {
		for _, jid := range w.jorder {
			w.solveJoint(w.joints[jid], h)
		}
		w.integrate(h)
		w.collide(contacts)
		w.time += h
	}
	w.expire()
	w.pumpSpawns()

	if w.onContact != nil {
		keys := make([]pair, 0, len(contacts))
		for k := range contacts {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			if keys[i].a != keys[j].a {
				return keys[i].a < keys[j].a
			}
			return keys[i].b < keys[j].b
		})
		for _, k := range keys {
			w.onContact(k.a, k.b, contacts[k])
		}
	}

	for _, id := range w.order {
		b := w.bodies[id]
		if math.IsNaN(b.pose.Position.X()) || math.IsInf(b.pose.Position.Len(), 0) {
			return fmt.Errorf("%w: body %d (%s) at t=%.3f", ErrDiverged, id, b.name, w.time)
		}
	}
	return nil
}

func (w *World) integrate(h float64) {
	for _, id := range w.order {
		b := w.bodies[id]
		// kinematic bodies only move when posed
		if !b.dynamic() {
			continue
		}
		g := w.gravity
		if !b.gravity {
			g = mgl64.Vec3{}
		}
		drag, angDrag := b.drag, b.angularDrag
		if m := b.modifier; m != nil {
			g = g.Mul(m.Gravity)
			if m.Drag >= 0 {
				drag = m.Drag
			}
			if m.AngularDrag >= 0 {
				angDrag = m.AngularDrag
			}
		}
		acc := func(pos, vel mgl64.Vec3) mgl64.Vec3 {
			return g.Sub(vel.Mul(drag))
		}
		b.pose.Position, b.vel = w.integ.Step(b.pose.Position, b.vel, acc, h)
		b.angVel = b.angVel.Mul(1 / (1 + angDrag*h))
		b.pose.Rotation = integrators.Rotate(b.pose.Rotation, b.angVel, h)
		w.propagate(b)
	}
}

func (w *World) collide(contacts map[pair]float64) {
	for i, ia := range w.order {
		a := w.bodies[ia]
		if !a.collision || a.radius <= 0 {
			continue
		}
		for _, ib := range w.order[i+1:] {
			b := w.bodies[ib]
			if !b.collision || b.radius <= 0 || w.ignored[key(ia, ib)] {
				continue
			}
			if !a.dynamic() && !b.dynamic() {
				continue
			}
			if a.parent == ib || b.parent == ia {
				continue
			}
			w.resolve(a, b, contacts)
		}
		if w.hasFloor && a.dynamic() {
			if pen := w.floor + a.radius - a.pose.Position.Y(); pen > 0 {
				a.pose.Position[1] += pen
				if a.vel.Y() < 0 {
					a.vel[1] = -a.vel.Y() * w.restitution
					a.vel[0] *= 0.9
					a.vel[2] *= 0.9
				}
			}
		}
	}
}

func (w *World) resolve(a, b *body, contacts map[pair]float64) {
	d := b.pose.Position.Sub(a.pose.Position)
	dist := d.Len()
	pen := a.radius + b.radius - dist
	if pen <= 0 {
		return
	}
	n := mgl64.Vec3{0, 1, 0}
	if dist > 1e-9 {
		n = d.Mul(1 / dist)
	}
	ia, ib := invMass(a), invMass(b)
	total := ia + ib
	if total == 0 {
		return
	}
	a.pose.Position = a.pose.Position.Sub(n.Mul(pen * ia / total))
	b.pose.Position = b.pose.Position.Add(n.Mul(pen * ib / total))

	approach := pointVelocity(a, a.pose.Position).Sub(pointVelocity(b, b.pose.Position)).Dot(n)
	if approach <= 0 {
		return
	}
	j := (1 + w.restitution) * approach / total
	a.vel = a.vel.Sub(n.Mul(j * ia))
	b.vel = b.vel.Add(n.Mul(j * ib))
	k := key(a.id, b.id)
	if approach > contacts[k] {
		contacts[k] = approach
	}
}

func invMass(b *body) float64 {
	if !b.dynamic() {
		return 0
	}
	return 1 / b.effectiveMass()
}

func (w *World) expire() {
	for _, id := range append([]engine.BodyID(nil), w.order...) {
		b := w.bodies[id]
		if b.expires > 0 && w.time >= b.expires {
			w.DestroyBody(id)
		}
	}
}
