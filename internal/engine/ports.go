package engine

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/shatterblade/internal/spatial"
)

type Bodies interface {
	Exists(b BodyID) bool
	Pose(b BodyID) (spatial.Pose, bool)
	SetPose(b BodyID, p spatial.Pose)
	Velocity(b BodyID) mgl64.Vec3
	SetVelocity(b BodyID, v mgl64.Vec3)
	AngularVelocity(b BodyID) mgl64.Vec3
	PointVelocity(b BodyID, world mgl64.Vec3) mgl64.Vec3
	CenterOfMass(b BodyID) mgl64.Vec3
	Mass(b BodyID) float64
	SetKinematic(b BodyID, on bool)
	Kinematic(b BodyID) bool
	SetParent(child, parent BodyID)
	Parent(child BodyID) BodyID
	SetCollision(b BodyID, on bool)
	IgnoreCollision(a, b BodyID, ignore bool)
	SetModifier(b BodyID, m Modifier)
	ClearModifier(b BodyID)
	Depenetrate(b BodyID)
	// SetTelekinesis toggles whether b can be pulled at range.
	SetTelekinesis(b BodyID, on bool)
	AddImpulse(b BodyID, impulse mgl64.Vec3)
	CreateBody(p spatial.Pose, kinematic bool) BodyID
	DestroyBody(b BodyID)
}

type Joints interface {
	CreateJoint(spec JointSpec) JointID
	// RebindJoint moves the connected side and recaptures the rest rotation
	// from the current body poses.
	RebindJoint(j JointID, connected BodyID, anchor mgl64.Vec3, massScale float64)
	SetJointDrives(j JointID, linear, angular Drive)
	DestroyJoint(j JointID)
}

type Queries interface {
	OverlapSphere(center mgl64.Vec3, radius float64) []Hit
	SphereCast(origin mgl64.Vec3, radius float64, dir mgl64.Vec3, distance float64) []Hit
	Raycast(origin, dir mgl64.Vec3, distance float64) []Hit
}

// Physics is the rigid-body engine seen by the core.
type Physics interface {
	Bodies
	Joints
	Queries
}

// Input exposes the player's hands.
type Input interface {
	Hand(s Side) Hand
	// Holders lists the hands holding b, main handler first.
	Holders(b BodyID) []Side
	Holstered(b BodyID) bool
	Haptic(s Side, intensity, frequency float64)
}

type Labels interface {
	CreateLabel(anchor BodyID, offset mgl64.Vec3) LabelID
	SetLabelAnchor(id LabelID, anchor BodyID)
	SetLabelOffset(id LabelID, offset mgl64.Vec3)
	SetLabelText(id LabelID, text string)
	ShowLabel(id LabelID)
	HideLabel(id LabelID)
	DestroyLabel(id LabelID)
}

type Effects interface {
	SpawnEffect(name string, p spatial.Pose) EffectID
	SetEffectPose(id EffectID, p spatial.Pose)
	SetEffectIntensity(id EffectID, intensity float64)
	SetEffectScale(id EffectID, scale float64)
	SetEffectEndpoints(id EffectID, from, to mgl64.Vec3)
	EndEffect(id EffectID)
	// SetSpawnAmount drives a fragment's materialize shader, 0 hidden to 1 shown.
	SetSpawnAmount(b BodyID, amount float64)
	// SetEmission blends a fragment's emission toward the flash color.
	SetEmission(b BodyID, weight float64)
}

type Combat interface {
	Damage(target BodyID, amount float64, at mgl64.Vec3)
	Shock(target BodyID, duration float64)
	Stagger(target BodyID, dir mgl64.Vec3)
	Disarm(target BodyID)
	SpawnProjectile(p Projectile) BodyID
}

// Spawner creates fragment entities. Callbacks may arrive in any order and
// after any delay.
type Spawner interface {
	SpawnFragment(index int, done func(Spawned))
}

type Clock interface {
	Now() float64
}

// Runtime bundles the ports handed to a weapon.
type Runtime struct {
	Physics Physics
	Input   Input
	Labels  Labels
	Effects Effects
	Combat  Combat
	Spawner Spawner
	Clock   Clock
	Session *Session
}
