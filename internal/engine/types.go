package engine

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type (
	BodyID   int32
	JointID  int32
	LabelID  int32
	EffectID int32
)

const (
	NoBody   BodyID   = 0
	NoJoint  JointID  = 0
	NoLabel  LabelID  = 0
	NoEffect EffectID = 0
)

type Side uint8

const (
	Left Side = iota
	Right
)

var Sides = [2]Side{Left, Right}

func (s Side) Other() Side {
	if s == Left {
		return Right
	}
	return Left
}

func (s Side) String() string {
	if s == Left {
		return "left"
	}
	return "right"
}

// Spell is the elemental resource a hand can have equipped.
type Spell uint8

const (
	SpellNone Spell = iota
	SpellFire
	SpellLightning
	SpellGravity
)

func (s Spell) String() string {
	switch s {
	case SpellNone:
		return "none"
	case SpellFire:
		return "fire"
	case SpellLightning:
		return "lightning"
	case SpellGravity:
		return "gravity"
	}
	return "unknown"
}

// ParseSpell is the inverse of Spell.String.
func ParseSpell(name string) (Spell, bool) {
	switch name {
	case "", "none":
		return SpellNone, true
	case "fire":
		return SpellFire, true
	case "lightning":
		return SpellLightning, true
	case "gravity":
		return SpellGravity, true
	}
	return SpellNone, false
}

// Drive is one spring-damper channel of a joint. MaxForce of +Inf is uncapped.
type Drive struct {
	Spring   float64
	Damper   float64
	MaxForce float64
}

func (d Drive) Capped() bool { return !math.IsInf(d.MaxForce, 1) }

// JointSpec describes a six-DOF spring joint. Every axis is free; the
// linear and angular drives pull Body toward ConnectedAnchor (in the
// connected body's frame) and toward the relative rotation captured when
// the joint is created or rebound.
type JointSpec struct {
	Body            BodyID
	Connected       BodyID
	ConnectedAnchor mgl64.Vec3
	Linear          Drive
	Angular         Drive
	MassScale       float64
}

// Modifier overrides a body's response while installed. Negative drag
// values keep the body default.
type Modifier struct {
	Gravity     float64
	Mass        float64
	Drag        float64
	AngularDrag float64
}

type HitKind uint8

const (
	HitStatic HitKind = iota
	HitProp
	HitCreature
	HitFragment
)

// Hit is a query result.
type Hit struct {
	Body      BodyID
	Root      BodyID
	Kind      HitKind
	Point     mgl64.Vec3
	Distance  float64
	Alive     bool
	Kinematic bool
	Held      bool
	Mass      float64
	Radius    float64
}

// Projectile is a short-lived body spawned by an ability.
type Projectile struct {
	Kind     string
	Position mgl64.Vec3
	Velocity mgl64.Vec3
	Radius   float64
	Lifetime float64
	Gravity  bool
	Damage   float64
}

// Spawned is delivered to a fragment spawn callback.
type Spawned struct {
	Index  int
	Body   BodyID
	FlyRef mgl64.Quat
}
