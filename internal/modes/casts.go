package modes

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/shatterblade/internal/engine"
	"github.com/san-kum/shatterblade/internal/spatial"
)

const (
	homingRadius   = 10.0
	homingDistance = 10.0
	homingPrefer   = 5.0
)

// ConeCast sweeps a sphere of radius along dir and keeps the hits whose
// contact point or body centre lies within angle degrees of dir.
func ConeCast(phys engine.Physics, origin mgl64.Vec3, radius float64, dir mgl64.Vec3, distance, angle float64) []engine.Hit {
	var out []engine.Hit
	for _, h := range phys.SphereCast(origin, radius, dir, distance) {
		if spatial.VecAngle(dir, h.Point.Sub(origin)) < angle {
			out = append(out, h)
			continue
		}
		if p, ok := phys.Pose(h.Body); ok && spatial.VecAngle(dir, p.Position.Sub(origin)) < angle {
			out = append(out, h)
		}
	}
	return out
}

// Creatures keeps one hit per live creature that is not the player.
func Creatures(hits []engine.Hit, s *engine.Session) []engine.Hit {
	seen := make(map[engine.BodyID]bool)
	var out []engine.Hit
	for _, h := range hits {
		if h.Kind != engine.HitCreature || !h.Alive || s.IsPlayer(h) {
			continue
		}
		key := h.Root
		if key == engine.NoBody {
			key = h.Body
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, h)
	}
	return out
}

// MassModifier scales tether and throw strength by a body's mass, boosting
// very light bodies.
func MassModifier(mass float64) float64 {
	if mass < 1 {
		return mass * 3
	}
	return mass
}

func compensation(mass float64) float64 {
	if mass < 1 {
		return mass * 2
	}
	return mass
}

func position(phys engine.Physics, b engine.BodyID, fallback mgl64.Vec3) mgl64.Vec3 {
	if p, ok := phys.Pose(b); ok {
		return p.Position
	}
	return fallback
}

// HomingThrow bends velocity toward the creature best aligned with it.
// The acceptance cone widens by three degrees per unit of distance between
// from and the player; creatures within five degrees win by distance.
func HomingThrow(phys engine.Physics, s *engine.Session, from, velocity mgl64.Vec3, homingAngle float64) mgl64.Vec3 {
	if velocity.LenSqr() < 1e-12 {
		return velocity
	}
	slack := 0.0
	if s != nil && s.Player != engine.NoBody {
		slack = 3 * spatial.Distance(from, position(phys, s.Player, from))
	}

	type candidate struct {
		at    mgl64.Vec3
		angle float64
		dist  float64
	}
	var targets []candidate
	for _, h := range Creatures(phys.SphereCast(from, homingRadius, velocity, homingDistance), s) {
		at := position(phys, h.Body, h.Point)
		angle := spatial.VecAngle(velocity, at.Sub(from))
		if angle < homingAngle+slack {
			targets = append(targets, candidate{at: at, angle: angle, dist: spatial.Distance(from, at)})
		}
	}
	if len(targets) == 0 {
		return velocity
	}
	sort.SliceStable(targets, func(i, j int) bool { return targets[i].angle < targets[j].angle })
	var near []candidate
	for _, t := range targets {
		if t.angle < homingPrefer {
			near = append(near, t)
		}
	}
	if len(near) > 0 {
		sort.SliceStable(near, func(i, j int) bool { return near[i].dist < near[j].dist })
		targets = near
	}
	return targets[0].at.Sub(from).Normalize().Mul(velocity.Len())
}

// Explosion pushes every body within radius of origin away from it, with
// linear falloff. Creatures are staggered instead and, with disarm set,
// drop what they hold. The player is never affected.
func Explosion(phys engine.Physics, combat engine.Combat, s *engine.Session, origin mgl64.Vec3, force, radius float64, massComp, disarm bool) {
	below := origin.Sub(spatial.Up)
	bodies := make(map[engine.BodyID]bool)
	creatures := make(map[engine.BodyID]bool)
	for _, h := range phys.OverlapSphere(origin, radius) {
		if s.IsPlayer(h) {
			continue
		}
		if h.Kind == engine.HitCreature {
			if creatures[h.Root] || !h.Alive {
				continue
			}
			creatures[h.Root] = true
			at := position(phys, h.Body, h.Point)
			combat.Stagger(h.Body, safeNormal(at.Sub(origin)))
			if disarm {
				combat.Disarm(h.Body)
			}
			continue
		}
		if h.Kinematic || bodies[h.Body] {
			continue
		}
		bodies[h.Body] = true
		at := position(phys, h.Body, h.Point)
		scale := 1.0
		if massComp {
			scale = compensation(h.Mass)
		}
		falloff := 1 - math.Min(spatial.Distance(at, origin)/radius, 1)
		phys.AddImpulse(h.Body, safeNormal(at.Sub(below)).Mul(force*scale*falloff))
	}
}

// PushForce sweeps a sphere from origin along dir and applies force to
// every body it touches. Creatures are staggered along dir.
func PushForce(phys engine.Physics, combat engine.Combat, s *engine.Session, origin, dir mgl64.Vec3, radius, distance float64, force mgl64.Vec3, massComp, disarm bool) {
	bodies := make(map[engine.BodyID]bool)
	creatures := make(map[engine.BodyID]bool)
	for _, h := range phys.SphereCast(origin, radius, dir, distance) {
		if s.IsPlayer(h) {
			continue
		}
		if h.Kind == engine.HitCreature {
			if creatures[h.Root] || !h.Alive {
				continue
			}
			creatures[h.Root] = true
			combat.Stagger(h.Body, safeNormal(dir))
			if disarm {
				combat.Disarm(h.Body)
			}
			continue
		}
		if h.Kinematic || bodies[h.Body] {
			continue
		}
		bodies[h.Body] = true
		scale := 1.0
		if massComp {
			scale = compensation(h.Mass)
		}
		phys.AddImpulse(h.Body, force.Mul(scale))
	}
}

func safeNormal(v mgl64.Vec3) mgl64.Vec3 {
	if v.LenSqr() < 1e-12 {
		return spatial.Up
	}
	return v.Normalize()
}
