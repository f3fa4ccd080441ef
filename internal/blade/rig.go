package blade

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/shatterblade/internal/engine"
	"github.com/san-kum/shatterblade/internal/spatial"
)

// Count is the number of fragments in a weapon.
const Count = 15

// Layout names an assembled arrangement of the guides.
type Layout uint8

const (
	LayoutSword Layout = iota
	LayoutExpanded
	LayoutShieldLeft
	LayoutShieldRight
)

func (l Layout) String() string {
	switch l {
	case LayoutSword:
		return "sword"
	case LayoutExpanded:
		return "expanded"
	case LayoutShieldLeft:
		return "shield-left"
	case LayoutShieldRight:
		return "shield-right"
	}
	return "unknown"
}

// Slot returns guide i's pose in the root frame for a layout. The blade
// runs along the root's +Y axis in three columns of five rows.
func Slot(l Layout, i int) spatial.Pose {
	row := float64((i - 1) / 3)
	col := float64((i-1)%3 - 1)
	switch l {
	case LayoutExpanded:
		return spatial.Pose{
			Position: mgl64.Vec3{col * 0.09, 0.25 + 0.16*row, 0},
			Rotation: spatial.AngleAxis(-col*12, spatial.Forward),
		}
	case LayoutShieldLeft, LayoutShieldRight:
		side := 1.0
		if l == LayoutShieldLeft {
			side = -1
		}
		frame := spatial.Pose{
			Position: mgl64.Vec3{side * 0.05, 0.3, 0},
			Rotation: spatial.AngleAxis(side*90, spatial.Up),
		}
		if i == 1 {
			return frame
		}
		a := float64(i-2) * 2 * math.Pi / (Count - 1)
		return frame.Mul(spatial.Pose{
			Position: mgl64.Vec3{0.22 * math.Cos(a), 0.22 * math.Sin(a), 0},
			Rotation: spatial.AngleAxis(mgl64.RadToDeg(a), spatial.Forward),
		})
	}
	return spatial.Pose{
		Position: mgl64.Vec3{col * 0.035 * (1 - 0.15*row), 0.2 + 0.13*row, 0},
		Rotation: mgl64.QuatIdent(),
	}
}

// DefaultBlendRate is how fast the animator moves guides toward a new
// layout, per second.
const DefaultBlendRate = 12.0

// Rig is the weapon skeleton: one kinematic guide body per fragment slot,
// parented to the root and posed by a small animator that blends toward
// the layout selected by its flags.
type Rig struct {
	phys   engine.Physics
	root   engine.BodyID
	guides [Count + 1]engine.BodyID

	enabled  bool
	parented bool
	expanded bool
	shield   bool
	left     bool
	rate     float64
}

func NewRig(phys engine.Physics, root engine.BodyID) *Rig {
	r := &Rig{phys: phys, root: root, enabled: true, parented: true, rate: DefaultBlendRate}
	rootPose, _ := phys.Pose(root)
	for i := 1; i <= Count; i++ {
		g := phys.CreateBody(rootPose.Mul(Slot(LayoutSword, i)), true)
		phys.SetParent(g, root)
		r.guides[i] = g
	}
	return r
}

func (r *Rig) Guide(i int) engine.BodyID {
	if i < 1 || i > Count {
		return engine.NoBody
	}
	return r.guides[i]
}

func (r *Rig) Enabled() bool  { return r.enabled }
func (r *Rig) Parented() bool { return r.parented }

// SetEnabled toggles the animator. A disabled animator leaves the guides
// wherever they were last posed.
func (r *Rig) SetEnabled(on bool) { r.enabled = on }

func (r *Rig) SetExpanded(on bool) { r.expanded = on }

// SetShield selects the shield layout on the given side of the root.
func (r *Rig) SetShield(on, left bool) {
	r.shield = on
	if on {
		r.left = left
	}
}

func (r *Rig) Expanded() bool { return r.expanded }
func (r *Rig) Shield() bool   { return r.shield }
func (r *Rig) Left() bool     { return r.left }

func (r *Rig) Layout() Layout {
	switch {
	case r.shield && r.left:
		return LayoutShieldLeft
	case r.shield:
		return LayoutShieldRight
	case r.expanded:
		return LayoutExpanded
	}
	return LayoutSword
}

// Unparent detaches every guide into world space.
func (r *Rig) Unparent() {
	for i := 1; i <= Count; i++ {
		r.phys.SetParent(r.guides[i], engine.NoBody)
	}
	r.parented = false
}

// Reparent puts every guide back under the root, keeping its world pose.
func (r *Rig) Reparent() {
	for i := 1; i <= Count; i++ {
		r.phys.SetParent(r.guides[i], r.root)
	}
	r.parented = true
}

// Update blends the guides toward the current layout. Guides snap once
// they are within engine equality of their slot so locked fragments stop
// refreshing.
func (r *Rig) Update(dt float64) {
	if !r.enabled {
		return
	}
	root, ok := r.phys.Pose(r.root)
	if !ok {
		return
	}
	layout := r.Layout()
	t := spatial.Clamp01(dt * r.rate)
	for i := 1; i <= Count; i++ {
		g := r.guides[i]
		cur, ok := r.phys.Pose(g)
		if !ok {
			continue
		}
		local := root.Local(cur)
		slot := Slot(layout, i)
		if spatial.SamePosition(local.Position, slot.Position) && spatial.SameRotation(local.Rotation, slot.Rotation) {
			continue
		}
		next := spatial.Pose{
			Position: spatial.LerpVec(local.Position, slot.Position, t),
			Rotation: mgl64.QuatSlerp(local.Rotation, slot.Rotation, t),
		}
		if spatial.Distance(next.Position, slot.Position) < 1e-4 && spatial.Angle(next.Rotation, slot.Rotation) < 0.05 {
			next = slot
		}
		r.phys.SetPose(g, root.Mul(next))
	}
}

// Settle snaps every guide onto its slot.
func (r *Rig) Settle() {
	root, ok := r.phys.Pose(r.root)
	if !ok {
		return
	}
	layout := r.Layout()
	for i := 1; i <= Count; i++ {
		r.phys.SetPose(r.guides[i], root.Mul(Slot(layout, i)))
	}
}

// Destroy removes the guide bodies.
func (r *Rig) Destroy() {
	for i := 1; i <= Count; i++ {
		r.phys.DestroyBody(r.guides[i])
		r.guides[i] = engine.NoBody
	}
}

func poseOf(p mgl64.Vec3, q mgl64.Quat) spatial.Pose {
	return spatial.Pose{Position: p, Rotation: q}
}
