package blade

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/shatterblade/internal/engine"
	"github.com/san-kum/shatterblade/internal/joint"
	"github.com/san-kum/shatterblade/internal/shard"
	"github.com/san-kum/shatterblade/internal/spatial"
	"github.com/san-kum/shatterblade/internal/task"
	"go.uber.org/zap"
)

// Config tunes a weapon.
type Config struct {
	// Tutorial enables the floating control hints.
	Tutorial bool
	// AssembledFlash pulses every fragment once the blade is fully locked,
	// staggered by distance to the nearest hand.
	AssembledFlash bool
	// SpawnOnGrab defers spawning the fragments until the root is held.
	SpawnOnGrab bool
	// TapThreshold separates a button tap from a hold, in seconds.
	TapThreshold float64
	// HapticInterval rate-limits impact haptics, in seconds.
	HapticInterval float64
}

func DefaultConfig() Config {
	return Config{
		TapThreshold:   0.3,
		HapticInterval: 0.01,
	}
}

const (
	// FlashStagger is the spread of the assembled flash across fragments.
	FlashStagger = 0.2

	LockHapticIntensity = 1.0
	HapticFrequency     = 10.0
)

// Targeted modes are keyed off one held fragment.
type Targeted interface {
	Target() int
}

type Option func(*Weapon)

func WithConfig(c Config) Option {
	return func(w *Weapon) { w.cfg = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(w *Weapon) { w.log = l }
}

// Weapon is the aggregate root. It implements [shard.Owner] for its
// fragments. It is not safe for concurrent use.
type Weapon struct {
	rt      engine.Runtime
	cfg     Config
	log     *zap.Logger
	catalog *Catalog
	root    engine.BodyID
	rig     *Rig
	tasks   *task.Runner

	parts    [Count + 1]*shard.Fragment
	spawning [Count + 1]bool

	mode        Mode
	switches    int
	ready       bool
	initialized bool
	despawned   bool

	locking    bool
	wasLocking bool
	lockToRoot bool

	buttonHeld       bool
	triggerHeld      bool
	buttonHand       engine.Side
	buttonWasPressed bool
	lastButtonPress  float64

	handlers    []engine.Side
	lastHaptic  float64
	hasFlashed  bool
	frame       Frame
	wasAssigned bool

	handleA, handleB *Annotation
	imbueShard       *Annotation
	gunShard         *Annotation
	imbueHandle      *Annotation
	otherHand        *Annotation
}

// New builds a weapon around an existing root body. Fragments are requested
// from the runtime's spawner on the first Update.
func New(rt engine.Runtime, root engine.BodyID, catalog *Catalog, opts ...Option) *Weapon {
	w := &Weapon{
		rt:         rt,
		cfg:        DefaultConfig(),
		log:        zap.NewNop(),
		catalog:    catalog,
		root:       root,
		tasks:      task.NewRunner(),
		wasLocking: true,
		lockToRoot: true,
		lastHaptic: math.Inf(-1),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.rig = NewRig(rt.Physics, root)
	w.handleA = w.NewAnnotation(root, mgl64.Vec3{0, 1, -1})
	w.handleB = w.NewAnnotation(root, mgl64.Vec3{0, -1, 1})
	w.otherHand = w.NewAnnotation(engine.NoBody, mgl64.Vec3{})
	w.mode = catalog.Fallback()
	w.mode.Enter(w)
	w.log.Debug("weapon created", zap.Int32("root", int32(root)))
	return w
}

func (w *Weapon) Runtime() engine.Runtime { return w.rt }
func (w *Weapon) Physics() engine.Physics { return w.rt.Physics }
func (w *Weapon) Input() engine.Input     { return w.rt.Input }
func (w *Weapon) Effects() engine.Effects { return w.rt.Effects }
func (w *Weapon) Combat() engine.Combat   { return w.rt.Combat }
func (w *Weapon) Session() *engine.Session {
	return w.rt.Session
}
func (w *Weapon) Config() Config    { return w.cfg }
func (w *Weapon) Log() *zap.Logger  { return w.log }
func (w *Weapon) Rig() *Rig         { return w.rig }
func (w *Weapon) Catalog() *Catalog { return w.catalog }
func (w *Weapon) Mode() Mode        { return w.mode }
func (w *Weapon) Switches() int     { return w.switches }
func (w *Weapon) Ready() bool       { return w.ready }
func (w *Weapon) Despawned() bool   { return w.despawned }
func (w *Weapon) Locking() bool     { return w.locking }
func (w *Weapon) WasLocking() bool  { return w.wasLocking }
func (w *Weapon) ButtonHeld() bool  { return w.buttonHeld }
func (w *Weapon) TriggerHeld() bool { return w.triggerHeld }
func (w *Weapon) ButtonHand() engine.Side {
	return w.buttonHand
}
func (w *Weapon) Now() float64 { return w.rt.Clock.Now() }
func (w *Weapon) Frame() Frame { return w.frame }

// SetLockToRoot selects whether locked fragments anchor to the root.
func (w *Weapon) SetLockToRoot(on bool) { w.lockToRoot = on }

// RigState is the guide rig setup a mode takes over while active.
type RigState struct {
	Enabled    bool
	Parented   bool
	LockToRoot bool
}

// DetachRig records the rig setup and hands the guides to the caller:
// the rig stops posing them, they move in world space and locked
// fragments anchor to their guides.
func (w *Weapon) DetachRig() RigState {
	saved := RigState{Enabled: w.rig.Enabled(), Parented: w.rig.Parented(), LockToRoot: w.lockToRoot}
	w.SetLockToRoot(false)
	w.rig.SetEnabled(false)
	w.rig.Unparent()
	return saved
}

// RestoreRig puts back a setup recorded by DetachRig.
func (w *Weapon) RestoreRig(s RigState) {
	if s.Parented {
		w.rig.Reparent()
	}
	w.rig.SetEnabled(s.Enabled)
	w.SetLockToRoot(s.LockToRoot)
}

func (w *Weapon) RootPose() spatial.Pose {
	p, _ := w.rt.Physics.Pose(w.root)
	return p
}

// Part returns fragment i, or nil while it is missing.
func (w *Weapon) Part(i int) *shard.Fragment {
	if i < 1 || i > Count {
		return nil
	}
	f := w.parts[i]
	if f == nil || f.Removed() {
		return nil
	}
	return f
}

// Parts lists the present fragments by index.
func (w *Weapon) Parts() []*shard.Fragment {
	out := make([]*shard.Fragment, 0, Count)
	for i := 1; i <= Count; i++ {
		if f := w.Part(i); f != nil {
			out = append(out, f)
		}
	}
	return out
}

// RootHolders lists the hands holding the root, main handler first.
func (w *Weapon) RootHolders() []engine.Side { return w.rt.Input.Holders(w.root) }

// MainHolder returns the main handler of fragment i.
func (w *Weapon) MainHolder(i int) (engine.Side, bool) {
	f := w.Part(i)
	if f == nil {
		return engine.Left, false
	}
	hs := w.rt.Input.Holders(f.Body())
	if len(hs) == 0 {
		return engine.Left, false
	}
	return hs[0], true
}

// shard.Owner

func (w *Weapon) Alive() bool         { return !w.despawned && w.rt.Physics.Exists(w.root) }
func (w *Weapon) Root() engine.BodyID { return w.root }
func (w *Weapon) LockToRoot() bool    { return w.lockToRoot }
func (w *Weapon) Tasks() *task.Runner { return w.tasks }
func (w *Weapon) Holstered() bool     { return w.rt.Input.Holstered(w.root) }

// ShouldReform reports whether f should seek its guide: the weapon must be
// locking and the active mode must not exclude f.
func (w *Weapon) ShouldReform(f *shard.Fragment) bool {
	return w.locking && (w.mode == nil || w.mode.ShouldReform(f))
}

func (w *Weapon) ShouldLock(f *shard.Fragment) bool {
	return w.mode == nil || w.mode.ShouldLock(f)
}

func (w *Weapon) HideWhenHolstered(f *shard.Fragment) bool {
	return w.mode != nil && w.mode.ShouldHideWhenHolstered(f)
}

func (w *Weapon) ModifyJoint(f *shard.Fragment, p joint.Params) joint.Params {
	if w.mode == nil {
		return p
	}
	return w.mode.ModifyJoint(f, p)
}

func (w *Weapon) LockHaptic(*shard.Fragment) {
	if w.quiet() {
		return
	}
	for _, s := range w.RootHolders() {
		w.rt.Input.Haptic(s, LockHapticIntensity, HapticFrequency)
	}
}

func (w *Weapon) quiet() bool {
	q, ok := w.mode.(Quiet)
	return ok && q.Quiet()
}

// Impact reports a collision on body at the given relative speed. Locked
// fragments pass it on to the holding hands.
func (w *Weapon) Impact(body engine.BodyID, speed float64) {
	if w.despawned || w.quiet() {
		return
	}
	locked := false
	for _, f := range w.Parts() {
		if f.Body() == body && f.IsLocked() {
			locked = true
			break
		}
	}
	if !locked {
		return
	}
	now := w.Now()
	if now-w.lastHaptic <= w.cfg.HapticInterval {
		return
	}
	w.lastHaptic = now
	intensity := spatial.InverseLerp(0, 10, speed) * 0.5
	for _, s := range w.RootHolders() {
		w.rt.Input.Haptic(s, intensity, HapticFrequency)
	}
}

// ReformParts sets the weapon locking and reforms every fragment the
// active mode allows. It does nothing before the weapon is ready.
func (w *Weapon) ReformParts() {
	if !w.ready {
		return
	}
	w.locking = true
	for _, f := range w.Parts() {
		if w.mode == nil || w.mode.ShouldReform(f) {
			f.Reform()
		}
	}
}

func (w *Weapon) DetachParts(throw bool) {
	for _, f := range w.Parts() {
		f.Detach(throw)
	}
}

// IgnoreHand toggles collision between every fragment and a hand.
func (w *Weapon) IgnoreHand(s engine.Side, ignore bool, delay float64) {
	for _, f := range w.Parts() {
		f.IgnoreHand(s, ignore, delay)
	}
}

// NewAnnotation creates a label tied to this weapon's tutorial setting.
func (w *Weapon) NewAnnotation(anchor engine.BodyID, offset mgl64.Vec3) *Annotation {
	return NewAnnotation(w.rt.Labels, anchor, offset, w.cfg.Tutorial)
}

func (w *Weapon) HandleA() *Annotation     { return w.handleA }
func (w *Weapon) HandleB() *Annotation     { return w.handleB }
func (w *Weapon) ImbueShard() *Annotation  { return w.imbueShard }
func (w *Weapon) GunShard() *Annotation    { return w.gunShard }
func (w *Weapon) ImbueHandle() *Annotation { return w.imbueHandle }
func (w *Weapon) OtherHand() *Annotation   { return w.otherHand }

func (w *Weapon) HideAllAnnotations() {
	for _, a := range w.annotations() {
		a.Hide()
	}
}

func (w *Weapon) annotations() []*Annotation {
	return []*Annotation{w.imbueHandle, w.imbueShard, w.gunShard, w.handleA, w.handleB, w.otherHand}
}

// Update runs one presentation frame.
func (w *Weapon) Update(f Frame) {
	if w.despawned {
		return
	}
	w.frame = f
	if !w.rt.Physics.Exists(w.root) {
		w.log.Info("root lost, despawning")
		w.Despawn()
		return
	}
	w.trackHandlers(f)
	w.reconcile()
	if !w.ready && w.present() == Count {
		w.ready = true
		if !w.initialized {
			w.postInit()
		}
	}
	if w.ready {
		w.flashPass()
		w.selectMode(f)
		w.mode.Update(f)
	}
	w.rig.Update(f.Dt)
	for i := 1; i <= Count; i++ {
		if p := w.parts[i]; p != nil {
			p.Tick(f.Now, f.Dt)
		}
	}
	w.tasks.Advance(f.Now)
}

func (w *Weapon) present() int {
	n := 0
	for i := 1; i <= Count; i++ {
		if w.Part(i) != nil {
			n++
		}
	}
	return n
}

func (w *Weapon) trackHandlers(f Frame) {
	now := w.RootHolders()
	held := func(list []engine.Side, s engine.Side) bool {
		for _, o := range list {
			if o == s {
				return true
			}
		}
		return false
	}
	for _, s := range now {
		if !held(w.handlers, s) {
			w.IgnoreHand(s, true, 0)
		}
	}
	for _, s := range w.handlers {
		if !held(now, s) {
			w.IgnoreHand(s, false, f.Dt)
		}
	}
	w.handlers = append(w.handlers[:0], now...)
}

// reconcile requests a spawn for every missing fragment that has no spawn
// in flight.
func (w *Weapon) reconcile() {
	if w.cfg.SpawnOnGrab && !w.wasAssigned {
		if len(w.handlers) == 0 {
			return
		}
		w.wasAssigned = true
	}
	for i := 1; i <= Count; i++ {
		if w.Part(i) != nil || w.spawning[i] {
			continue
		}
		if old := w.parts[i]; old != nil {
			if w.rt.Physics.Exists(old.Body()) {
				w.rt.Physics.DestroyBody(old.Body())
			}
			w.parts[i] = nil
		}
		w.spawning[i] = true
		w.ready = false
		w.log.Debug("spawning fragment", zap.Int("index", i))
		w.rt.Spawner.SpawnFragment(i, w.spawned)
	}
}

func (w *Weapon) spawned(s engine.Spawned) {
	phys := w.rt.Physics
	if s.Index < 1 || s.Index > Count {
		phys.DestroyBody(s.Body)
		return
	}
	w.spawning[s.Index] = false
	if w.despawned || w.Part(s.Index) != nil {
		phys.DestroyBody(s.Body)
		return
	}
	guide := w.rig.Guide(s.Index)
	if gp, ok := phys.Pose(guide); ok {
		phys.SetPose(s.Body, gp)
	}
	f := shard.New(w.rt, w, s.Index, s.Body, guide, s.FlyRef, w.log)
	w.parts[s.Index] = f

	switch s.Index {
	case 1:
		w.imbueShard.Destroy()
		w.imbueShard = w.NewAnnotation(s.Body, mgl64.Vec3{1, -1, 0})
	case 10:
		w.gunShard.Destroy()
		w.gunShard = w.NewAnnotation(s.Body, mgl64.Vec3{1, -2, 0})
	case 11:
		w.imbueHandle.Destroy()
		w.imbueHandle = w.NewAnnotation(s.Body, mgl64.Vec3{-1, -2, 0})
	}

	if w.initialized {
		w.wire(f)
		for _, h := range w.handlers {
			f.IgnoreHand(h, true, 0)
		}
		if w.ShouldReform(f) {
			f.Reform()
		}
	}
}

// wire stops f colliding with the other fragments and with the root.
func (w *Weapon) wire(f *shard.Fragment) {
	phys := w.rt.Physics
	for _, o := range w.Parts() {
		if o != f {
			phys.IgnoreCollision(f.Body(), o.Body(), true)
		}
	}
	phys.IgnoreCollision(f.Body(), w.root, true)
}

func (w *Weapon) postInit() {
	w.initialized = true
	for _, f := range w.Parts() {
		w.wire(f)
	}
	for _, s := range w.handlers {
		w.IgnoreHand(s, true, 0)
	}
	w.locking = true
	w.ReformParts()
	w.log.Info("weapon ready", zap.Int("fragments", Count))
}

// flashPass pulses the fragments once each time the blade becomes fully
// locked.
func (w *Weapon) flashPass() {
	if !w.cfg.AssembledFlash {
		return
	}
	parts := w.Parts()
	for _, f := range parts {
		if !f.IsLocked() {
			w.hasFlashed = false
			return
		}
	}
	if w.hasFlashed {
		return
	}
	w.hasFlashed = true
	dist := make([]float64, len(parts))
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, f := range parts {
		dist[i] = w.closestHand(f.Pose().Position)
		lo, hi = math.Min(lo, dist[i]), math.Max(hi, dist[i])
	}
	for i, f := range parts {
		delay := 0.0
		if hi > lo {
			delay = (dist[i] - lo) / (hi - lo) * FlashStagger
		}
		w.tasks.After(w.Now(), delay, fmt.Sprintf("assembled/%d", f.Index()), f.Flash)
	}
}

func (w *Weapon) closestHand(p mgl64.Vec3) float64 {
	d := math.Inf(1)
	for _, s := range engine.Sides {
		d = math.Min(d, spatial.Distance(p, w.rt.Input.Hand(s).Position()))
	}
	return d
}

// selectMode reads the root controls, lets the catalog pick a mode and
// applies the tap gesture.
func (w *Weapon) selectMode(f Frame) {
	w.buttonHeld, w.triggerHeld = false, false
	var triggers []engine.Side
	for _, s := range w.handlers {
		h := w.rt.Input.Hand(s)
		w.buttonHeld = w.buttonHeld || h.Button
		if h.Trigger {
			triggers = append(triggers, s)
		}
	}
	w.triggerHeld = len(triggers) > 0
	switch {
	case len(triggers) > 1:
		w.buttonHand = w.handlers[0]
	case len(triggers) == 1:
		w.buttonHand = triggers[0]
	}

	next := w.catalog.Select(w)
	if next != w.mode {
		w.ChangeMode(next)
	}

	if _, grabbed := next.(Targeted); w.buttonHeld && !grabbed && next != w.catalog.Fallback() {
		if !w.buttonWasPressed {
			w.buttonWasPressed = true
			w.lastButtonPress = f.Now
		}
		w.locking = true
		return
	}
	if next != w.catalog.Fallback() {
		return
	}
	if w.buttonWasPressed {
		if f.Now-w.lastButtonPress < w.cfg.TapThreshold {
			w.locking = !w.wasLocking
			if w.locking {
				w.ReformParts()
			} else {
				w.DetachParts(true)
			}
			w.wasLocking = w.locking
			w.log.Debug("tap", zap.Bool("locking", w.locking))
		} else {
			w.wasLocking = true
		}
	}
	w.buttonWasPressed = false
}

// ChangeMode exits the active mode and enters next. Switching to the
// active mode does nothing.
func (w *Weapon) ChangeMode(next Mode) {
	if next == w.mode {
		return
	}
	prev := "none"
	if w.mode != nil {
		prev = w.mode.Name()
		w.mode.Exit()
	}
	for _, s := range w.handlers {
		w.IgnoreHand(s, true, 0)
	}
	w.mode = next
	w.switches++
	next.Enter(w)
	w.log.Debug("mode changed", zap.String("from", prev), zap.String("to", next.Name()))
}

// Despawn tears the weapon down: the mode exits, fragments are released
// without a throw and every label is destroyed. Further updates are
// ignored.
func (w *Weapon) Despawn() {
	if w.despawned {
		return
	}
	w.despawned = true
	if w.mode != nil {
		w.mode.Exit()
		w.mode = nil
	}
	for i := 1; i <= Count; i++ {
		if p := w.parts[i]; p != nil {
			p.Release()
		}
	}
	for _, a := range w.annotations() {
		a.Destroy()
	}
	w.handlers = nil
	w.log.Info("weapon despawned")
}
